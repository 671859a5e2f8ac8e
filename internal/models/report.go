package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatTurn is one entry of a report's follow-up conversation. The history is
// append-only: the follow-up endpoint adds a user turn and an assistant turn.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SourceRef is one cited source of a generated answer.
type SourceRef struct {
	Source string `json:"source"`
	Type   string `json:"type"`
}

type Report struct {
	ID          uuid.UUID   `db:"id"`
	UserID      uuid.UUID   `db:"user_id"`
	Query       string      `db:"query"`
	Answer      string      `db:"answer"`
	Engine      string      `db:"engine"`
	Sources     []SourceRef `db:"sources"`
	ChatHistory []ChatTurn  `db:"chat_history"`
	CreatedAt   time.Time   `db:"created_at"`
}
