package dto

import "jonglaw/internal/models"

type QueryRequest struct {
	Query string `json:"query" validate:"required"`
}

type QueryResponse struct {
	Answer   string             `json:"answer"`
	Sources  []models.SourceRef `json:"sources"`
	Intent   string             `json:"intent"`
	Engine   string             `json:"engine"`
	ReportID string             `json:"report_id,omitempty"`
}

type RecommendLawsRequest struct {
	Case string `json:"case" validate:"required"`
}

type ArticleResponse struct {
	Text string `json:"text"`
}

type AnalyzeDocumentResponse struct {
	DocumentType   string        `json:"document_type"`
	ToxicClauses   []ToxicClause `json:"toxic_clauses"`
	MissingItems   []string      `json:"missing_items"`
	OverallOpinion string        `json:"overall_opinion"`
	RiskLevel      string        `json:"risk_level"`
}

type ToxicClause struct {
	Clause     string `json:"clause"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion"`
}
