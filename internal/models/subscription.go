package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription tracks one (user, law) watch entry. LastEnforcedDate always
// holds the most recently observed enforcement date; the watch scan only
// advances it together with emitting a notification.
type Subscription struct {
	ID               uuid.UUID `db:"id"`
	UserID           uuid.UUID `db:"user_id"`
	LawName          string    `db:"law_name"`
	MST              string    `db:"mst"`
	LastEnforcedDate string    `db:"last_enforced_date"`
	CreatedAt        time.Time `db:"created_at"`
}
