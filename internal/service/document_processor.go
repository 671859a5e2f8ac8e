package service

import (
	"fmt"
	"regexp"
	"strings"

	"jonglaw/internal/models"
	"jonglaw/pkg/lawapi"

	"github.com/gen2brain/go-fitz"
)

var articleNoRe = regexp.MustCompile(`제\d+조(의\d+)?`)

// DocumentProcessor flattens raw source material into normalized
// documents ready for chunking and indexing.
type DocumentProcessor struct{}

func NewDocumentProcessor() *DocumentProcessor {
	return &DocumentProcessor{}
}

// ProcessLaw turns a statute into one document per article. Paragraphs,
// items and sub-items are flattened into the article text with
// increasing indentation so the hierarchy survives as plain text.
func (p *DocumentProcessor) ProcessLaw(detail *lawapi.LawDetail, mst string) []*models.Document {
	lawName := detail.Name
	if lawName == "" {
		lawName = "Unknown Law"
	}

	docs := make([]*models.Document, 0, len(detail.Articles))
	for _, article := range detail.Articles {
		var b strings.Builder
		fmt.Fprintf(&b, "[%s] %s\n%s", lawName, article.Title, article.Content)

		for _, para := range article.Paragraphs {
			fmt.Fprintf(&b, "\n%s. %s", para.No, para.Content)
			for _, item := range para.Items {
				fmt.Fprintf(&b, "\n  %s. %s", item.No, item.Content)
				for _, sub := range item.SubItems {
					fmt.Fprintf(&b, "\n    %s. %s", sub.No, sub.Content)
				}
			}
		}

		docs = append(docs, &models.Document{
			Content: b.String(),
			Metadata: models.DocumentMetadata{
				Source:    lawName,
				Type:      models.SourceTypeLaw,
				MST:       mst,
				ArticleNo: articleNoRe.FindString(article.Title),
				URL:       "https://www.law.go.kr/법령/" + lawName,
			},
		})
	}

	return docs
}

// ProcessPrecedent turns a court decision into a single document. The
// holdings, summary and full text sections are labeled and appended in
// that order, skipping empty ones.
func (p *DocumentProcessor) ProcessPrecedent(detail *lawapi.PrecedentDetail, precID string) []*models.Document {
	caseName := detail.CaseName
	if caseName == "" {
		caseName = "Unknown Case"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s (%s)] %s %s %s\n", caseName, detail.CaseNo, detail.Court, detail.Date, detail.JudgmentType)
	if detail.Holdings != "" {
		fmt.Fprintf(&b, "\n[판시사항]\n%s", detail.Holdings)
	}
	if detail.Summary != "" {
		fmt.Fprintf(&b, "\n[판결요지]\n%s", detail.Summary)
	}
	if detail.FullText != "" {
		fmt.Fprintf(&b, "\n[전문]\n%s", detail.FullText)
	}

	return []*models.Document{{
		Content: b.String(),
		Metadata: models.DocumentMetadata{
			Source: caseName,
			Type:   models.SourceTypePrecedent,
			PrecID: precID,
			CaseNo: detail.CaseNo,
			Court:  detail.Court,
			Date:   detail.Date,
			URL:    "https://www.law.go.kr/판례/" + precID,
		},
	}}
}

// ProcessPDF extracts the text of every page into a single document
// keyed by the uploaded file name.
func (p *DocumentProcessor) ProcessPDF(fileContent []byte, filename string) ([]*models.Document, error) {
	doc, err := fitz.NewFromMemory(fileContent)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", i+1, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return []*models.Document{{
		Content: sanitizeUTF8(b.String()),
		Metadata: models.DocumentMetadata{
			Source: filename,
			Type:   models.SourceTypeUpload,
		},
	}}, nil
}
