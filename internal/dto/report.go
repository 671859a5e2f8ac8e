package dto

import "jonglaw/internal/models"

type ReportResponse struct {
	ID          string             `json:"id"`
	Query       string             `json:"query"`
	Answer      string             `json:"answer"`
	Engine      string             `json:"engine"`
	Sources     []models.SourceRef `json:"sources"`
	ChatHistory []models.ChatTurn  `json:"chat_history"`
	CreatedAt   string             `json:"created_at"`
}

type FollowupRequest struct {
	Query string `json:"query" validate:"required"`
}

type FollowupResponse struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
}
