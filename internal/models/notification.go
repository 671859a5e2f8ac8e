package models

import (
	"time"

	"github.com/google/uuid"
)

const NotificationTypeLawUpdate = "LAW_UPDATE"

type Notification struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	IsRead    bool      `db:"is_read"`
	Link      string    `db:"link"`
	CreatedAt time.Time `db:"created_at"`
}
