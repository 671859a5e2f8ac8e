package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `db:"id"`
	Username  string    `db:"username"`
	Nickname  string    `db:"nickname"`
	Password  string    `db:"password"`
	CreatedAt time.Time `db:"created_at"`
}
