package service

import (
	"context"
	"fmt"
	"time"

	"jonglaw/internal/models"
	"jonglaw/pkg/lawapi"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WatchUpdate summarizes one detected law change during a scan.
type WatchUpdate struct {
	UserID        uuid.UUID `json:"user_id"`
	LawName       string    `json:"law_name"`
	Status        string    `json:"status"`
	NewDate       string    `json:"new_date"`
	AmendmentType string    `json:"amendment_type"`
}

// Narrow store interfaces so the scan and subscription flows are
// testable with fakes.
type subscriptionStore interface {
	Create(ctx context.Context, sub *models.Subscription) error
	GetByUserAndLaw(ctx context.Context, userID uuid.UUID, lawName string) (*models.Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Subscription, error)
	ListAll(ctx context.Context) ([]*models.Subscription, error)
	Delete(ctx context.Context, userID uuid.UUID, lawName string) (bool, error)
}

type notificationStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type scanCommitter interface {
	CommitScan(ctx context.Context, notifications []*models.Notification, updated []*models.Subscription) error
}

// WatchService manages law subscriptions and runs the update scan that
// turns changed enforcement dates into user notifications.
type WatchService struct {
	lawAPI        lawSearcher
	subscriptions subscriptionStore
	notifications notificationStore
	watchRepo     scanCommitter
	logger        *zap.Logger
}

func NewWatchService(
	lawAPI lawSearcher,
	subscriptions subscriptionStore,
	notifications notificationStore,
	watchRepo scanCommitter,
	logger *zap.Logger,
) *WatchService {
	return &WatchService{
		lawAPI:        lawAPI,
		subscriptions: subscriptions,
		notifications: notifications,
		watchRepo:     watchRepo,
		logger:        logger,
	}
}

// Subscribe adds a law watch for a user. Subscribing twice to the same
// law returns the existing entry. The current enforcement date from the
// law search becomes the baseline for future scans.
func (s *WatchService) Subscribe(ctx context.Context, userID uuid.UUID, lawName string) (*models.Subscription, error) {
	existing, err := s.subscriptions.GetByUserAndLaw(ctx, userID, lawName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	results, err := s.lawAPI.SearchLaws(ctx, lawName, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to look up law %q: %w", lawName, err)
	}
	match := lawapi.BestMatch(results, lawName)

	sub := &models.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		LawName:   lawName,
		CreatedAt: time.Now(),
	}
	if match != nil {
		sub.MST = match.MST
		sub.LastEnforcedDate = match.EnforcementDate
	}

	if err := s.subscriptions.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Unsubscribe removes a user's watch on a law. Returns false when no
// such subscription exists.
func (s *WatchService) Unsubscribe(ctx context.Context, userID uuid.UUID, lawName string) (bool, error) {
	return s.subscriptions.Delete(ctx, userID, lawName)
}

func (s *WatchService) ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]*models.Subscription, error) {
	return s.subscriptions.ListByUser(ctx, userID)
}

func (s *WatchService) ListNotifications(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	return s.notifications.ListByUser(ctx, userID)
}

func (s *WatchService) MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	return s.notifications.MarkRead(ctx, userID, notificationID)
}

func (s *WatchService) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

// CheckUpdates scans every subscription across all users. For each one
// it looks up the latest enforcement date; a changed date stages a
// notification and a subscription bump. A lookup failure skips that
// subscription without aborting the scan, and all staged mutations
// commit together once the full scan is done.
func (s *WatchService) CheckUpdates(ctx context.Context) ([]WatchUpdate, error) {
	subs, err := s.subscriptions.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var updates []WatchUpdate
	var staged []*models.Notification
	var bumped []*models.Subscription

	for _, sub := range subs {
		results, err := s.lawAPI.SearchLaws(ctx, sub.LawName, 1)
		if err != nil {
			s.logger.Warn("update check failed for subscription",
				zap.String("law", sub.LawName), zap.Error(err))
			continue
		}

		match := lawapi.BestMatch(results, sub.LawName)
		if match == nil {
			continue
		}

		if match.EnforcementDate == sub.LastEnforcedDate {
			continue
		}

		staged = append(staged, newUpdateNotification(sub, match))

		sub.LastEnforcedDate = match.EnforcementDate
		sub.MST = match.MST
		bumped = append(bumped, sub)

		updates = append(updates, WatchUpdate{
			UserID:        sub.UserID,
			LawName:       sub.LawName,
			Status:        "updated",
			NewDate:       match.EnforcementDate,
			AmendmentType: match.AmendmentType,
		})
	}

	if err := s.watchRepo.CommitScan(ctx, staged, bumped); err != nil {
		return nil, err
	}
	return updates, nil
}

// newUpdateNotification renders the amendment notification for one
// subscription against the latest search result.
func newUpdateNotification(sub *models.Subscription, match *lawapi.LawSummary) *models.Notification {
	return &models.Notification{
		ID:     uuid.New(),
		UserID: sub.UserID,
		Type:   models.NotificationTypeLawUpdate,
		Title:  fmt.Sprintf("🔔 법령 개정 알림: %s", sub.LawName),
		Message: fmt.Sprintf(
			"사용자님께서 구독하신 '%s' 법령이 %s부로 개정(%s)되었습니다. 이전 상담 내용과 관련된 변경 사항이 있는지 확인해보세요.",
			sub.LawName, match.EnforcementDate, match.AmendmentType),
		Link:      fmt.Sprintf("/laws/detail/%s", match.MST),
		CreatedAt: time.Now(),
	}
}
