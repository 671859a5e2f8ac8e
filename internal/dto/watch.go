package dto

type SubscribeRequest struct {
	LawName string `json:"law_name" validate:"required"`
}

type SubscriptionResponse struct {
	ID               string `json:"id"`
	LawName          string `json:"law_name"`
	MST              string `json:"mst"`
	LastEnforcedDate string `json:"last_enforced_date"`
	CreatedAt        string `json:"created_at"`
}

type NotificationResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	Link      string `json:"link"`
	CreatedAt string `json:"created_at"`
}

type WatchCheckResponse struct {
	Status       string        `json:"status"`
	UpdatesFound int           `json:"updates_found"`
	Details      []WatchUpdate `json:"details"`
}

type WatchUpdate struct {
	UserID        string `json:"user_id"`
	LawName       string `json:"law_name"`
	Status        string `json:"status"`
	NewDate       string `json:"new_date"`
	AmendmentType string `json:"amendment_type"`
}
