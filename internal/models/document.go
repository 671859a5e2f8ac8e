package models

// SourceType classifies where an indexed document came from.
type SourceType string

const (
	SourceTypeLaw       SourceType = "law"
	SourceTypePrecedent SourceType = "precedent"
	SourceTypeUpload    SourceType = "user_upload"
)

// DocumentMetadata is stored alongside each indexed chunk as JSONB. For
// statutes MST and ArticleNo are set, for precedents PrecID and CaseNo,
// for user uploads only Source (the file name) and Type.
type DocumentMetadata struct {
	Source    string     `json:"source"`
	Type      SourceType `json:"type"`
	MST       string     `json:"mst,omitempty"`
	ArticleNo string     `json:"article_no,omitempty"`
	PrecID    string     `json:"prec_id,omitempty"`
	CaseNo    string     `json:"case_no,omitempty"`
	Court     string     `json:"court,omitempty"`
	Date      string     `json:"date,omitempty"`
	URL       string     `json:"url,omitempty"`
}

// Document is a normalized text+metadata record produced by the document
// processor. Immutable once indexed except for deletion.
type Document struct {
	Content  string
	Metadata DocumentMetadata
}

// DocumentMatch is a retrieval candidate returned by the vector store,
// carrying the keyword boost assigned during re-ranking.
type DocumentMatch struct {
	Document
	Similarity float64
	Boost      int
}
