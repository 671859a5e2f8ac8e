package service

import (
	"testing"

	"jonglaw/internal/models"
	"jonglaw/pkg/lawapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessLaw_FlattensArticleHierarchy(t *testing.T) {
	p := NewDocumentProcessor()

	detail := &lawapi.LawDetail{
		Name: "민법",
		Articles: []lawapi.Article{
			{
				Title:   "제750조(불법행위의 내용)",
				Content: "고의 또는 과실로 인한 위법행위로 타인에게 손해를 가한 자는 그 손해를 배상할 책임이 있다.",
			},
			{
				Title:   "제751조(재산 이외의 손해의 배상)",
				Content: "본문",
				Paragraphs: []lawapi.Paragraph{
					{
						No:      "①",
						Content: "타인의 신체, 자유 또는 명예를 해하거나...",
						Items: []lawapi.Item{
							{
								No:      "1",
								Content: "첫 번째 호",
								SubItems: []lawapi.SubItem{
									{No: "가", Content: "첫 번째 목"},
								},
							},
						},
					},
				},
			},
		},
	}

	docs := p.ProcessLaw(detail, "248929")

	require.Len(t, docs, 2)

	first := docs[0]
	assert.Contains(t, first.Content, "[민법] 제750조(불법행위의 내용)")
	assert.Equal(t, "민법", first.Metadata.Source)
	assert.Equal(t, models.SourceTypeLaw, first.Metadata.Type)
	assert.Equal(t, "248929", first.Metadata.MST)
	assert.Equal(t, "제750조", first.Metadata.ArticleNo)
	assert.Equal(t, "https://www.law.go.kr/법령/민법", first.Metadata.URL)

	second := docs[1]
	assert.Equal(t, "제751조", second.Metadata.ArticleNo)
	assert.Contains(t, second.Content, "\n①. 타인의 신체")
	assert.Contains(t, second.Content, "\n  1. 첫 번째 호")
	assert.Contains(t, second.Content, "\n    가. 첫 번째 목")
}

func TestProcessLaw_ArticleNoVariants(t *testing.T) {
	p := NewDocumentProcessor()

	detail := &lawapi.LawDetail{
		Name: "상법",
		Articles: []lawapi.Article{
			{Title: "제398조의2(이사의 자기거래)", Content: "본문"},
			{Title: "부칙", Content: "본문"},
		},
	}

	docs := p.ProcessLaw(detail, "1")

	require.Len(t, docs, 2)
	assert.Equal(t, "제398조의2", docs[0].Metadata.ArticleNo)
	assert.Equal(t, "", docs[1].Metadata.ArticleNo)
}

func TestProcessPrecedent_LabeledSections(t *testing.T) {
	p := NewDocumentProcessor()

	detail := &lawapi.PrecedentDetail{
		CaseName:     "손해배상(기)",
		CaseNo:       "2020다12345",
		Court:        "대법원",
		Date:         "2021.03.15",
		JudgmentType: "선고",
		Holdings:     "판시사항 내용",
		Summary:      "판결요지 내용",
		FullText:     "전문 내용",
	}

	docs := p.ProcessPrecedent(detail, "98765")

	require.Len(t, docs, 1)
	doc := docs[0]
	assert.Contains(t, doc.Content, "[손해배상(기) (2020다12345)] 대법원 2021.03.15 선고")
	assert.Contains(t, doc.Content, "[판시사항]\n판시사항 내용")
	assert.Contains(t, doc.Content, "[판결요지]\n판결요지 내용")
	assert.Contains(t, doc.Content, "[전문]\n전문 내용")

	assert.Equal(t, "손해배상(기)", doc.Metadata.Source)
	assert.Equal(t, models.SourceTypePrecedent, doc.Metadata.Type)
	assert.Equal(t, "98765", doc.Metadata.PrecID)
	assert.Equal(t, "2020다12345", doc.Metadata.CaseNo)
	assert.Equal(t, "https://www.law.go.kr/판례/98765", doc.Metadata.URL)
}

func TestProcessPrecedent_SkipsEmptySections(t *testing.T) {
	p := NewDocumentProcessor()

	detail := &lawapi.PrecedentDetail{
		CaseName: "사건",
		CaseNo:   "2020다1",
		Court:    "대법원",
		Summary:  "요지만 있음",
	}

	docs := p.ProcessPrecedent(detail, "1")

	require.Len(t, docs, 1)
	assert.NotContains(t, docs[0].Content, "[판시사항]")
	assert.NotContains(t, docs[0].Content, "[전문]")
	assert.Contains(t, docs[0].Content, "[판결요지]\n요지만 있음")
}
