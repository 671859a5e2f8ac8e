package handlers

import (
	"fmt"
	"time"

	"jonglaw/internal/dto"
	"jonglaw/internal/models"
	"jonglaw/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WatchHandler struct {
	watchService *service.WatchService
	logger       *zap.Logger
}

func NewWatchHandler(watchService *service.WatchService, logger *zap.Logger) *WatchHandler {
	return &WatchHandler{
		watchService: watchService,
		logger:       logger,
	}
}

// ListSubscriptions godoc
// @Summary List law subscriptions
// @Tags watch
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.SubscriptionResponse
// @Router /subscriptions [get]
func (h *WatchHandler) ListSubscriptions(c *fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	subs, err := h.watchService.ListSubscriptions(c.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list subscriptions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list subscriptions"})
	}

	resp := make([]dto.SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, toSubscriptionResponse(sub))
	}
	return c.JSON(resp)
}

// Subscribe godoc
// @Summary Subscribe to a law
// @Description Watch a law for amendment notifications
// @Tags watch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubscribeRequest true "Law to watch"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 400 {object} map[string]string
// @Router /subscriptions [post]
func (h *WatchHandler) Subscribe(c *fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req dto.SubscribeRequest
	if err := c.BodyParser(&req); err != nil || req.LawName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "law_name is required"})
	}

	sub, err := h.watchService.Subscribe(c.Context(), userID, req.LawName)
	if err != nil {
		h.logger.Error("subscription failed", zap.String("law", req.LawName), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to subscribe. Law might not exist."})
	}
	return c.JSON(toSubscriptionResponse(sub))
}

// Unsubscribe godoc
// @Summary Unsubscribe from a law
// @Tags watch
// @Produce json
// @Security BearerAuth
// @Param law_name query string true "Law name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /subscriptions [delete]
func (h *WatchHandler) Unsubscribe(c *fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	lawName := c.Query("law_name")
	if lawName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "law_name is required"})
	}

	removed, err := h.watchService.Unsubscribe(c.Context(), userID, lawName)
	if err != nil {
		h.logger.Error("unsubscribe failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unsubscribe"})
	}
	if !removed {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subscription not found"})
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Successfully unsubscribed from %s", lawName)})
}

// ListNotifications godoc
// @Summary List notifications
// @Tags watch
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.NotificationResponse
// @Router /notifications [get]
func (h *WatchHandler) ListNotifications(c *fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	notifications, err := h.watchService.ListNotifications(c.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list notifications", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list notifications"})
	}

	resp := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, toNotificationResponse(n))
	}
	return c.JSON(resp)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags watch
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /notifications/{id}/read [patch]
func (h *WatchHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	notificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification id"})
	}

	marked, err := h.watchService.MarkNotificationRead(c.Context(), userID, notificationID)
	if err != nil {
		h.logger.Error("failed to mark notification read", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notification"})
	}
	if !marked {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// MarkAllRead godoc
// @Summary Mark all notifications as read
// @Tags watch
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Router /notifications/read-all [post]
func (h *WatchHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	count, err := h.watchService.MarkAllNotificationsRead(c.Context(), userID)
	if err != nil {
		h.logger.Error("failed to mark notifications read", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notifications"})
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("%d notifications marked as read", count)})
}

// Check godoc
// @Summary Run the legal watch scan
// @Description Check every subscription for law amendments and create notifications
// @Tags watch
// @Produce json
// @Success 200 {object} dto.WatchCheckResponse
// @Router /legal-watch/check [post]
func (h *WatchHandler) Check(c *fiber.Ctx) error {
	updates, err := h.watchService.CheckUpdates(c.Context())
	if err != nil {
		h.logger.Error("watch scan failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Watch scan failed"})
	}

	details := make([]dto.WatchUpdate, 0, len(updates))
	for _, u := range updates {
		details = append(details, dto.WatchUpdate{
			UserID:        u.UserID.String(),
			LawName:       u.LawName,
			Status:        u.Status,
			NewDate:       u.NewDate,
			AmendmentType: u.AmendmentType,
		})
	}
	return c.JSON(dto.WatchCheckResponse{
		Status:       "success",
		UpdatesFound: len(details),
		Details:      details,
	})
}

func toSubscriptionResponse(sub *models.Subscription) dto.SubscriptionResponse {
	return dto.SubscriptionResponse{
		ID:               sub.ID.String(),
		LawName:          sub.LawName,
		MST:              sub.MST,
		LastEnforcedDate: sub.LastEnforcedDate,
		CreatedAt:        sub.CreatedAt.Format(time.RFC3339),
	}
}

func toNotificationResponse(n *models.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID.String(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		Link:      n.Link,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}
