package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVision struct {
	reply   string
	prompts []string
	images  [][]byte
}

func (f *fakeVision) AnalyzeImage(ctx context.Context, prompt, mimeType string, data []byte) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.images = append(f.images, data)
	return f.reply, nil
}

const analysisJSON = `{
	"document_type": "근로계약서",
	"toxic_clauses": [
		{"clause": "제5조", "reason": "위약금 예정 조항", "suggestion": "삭제 요청"}
	],
	"missing_items": ["연차휴가 조항"],
	"overall_opinion": "수정 후 체결을 권장합니다.",
	"risk_level": "중"
}`

func TestAnalyzeContract_Image(t *testing.T) {
	vision := &fakeVision{reply: "```json\n" + analysisJSON + "\n```"}
	svc := NewVisionService(vision, &fakeModel{name: "chat"}, zap.NewNop())

	result, err := svc.AnalyzeContract(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg", "", "근로계약서입니다")

	require.NoError(t, err)
	assert.Equal(t, "근로계약서", result.DocumentType)
	require.Len(t, result.ToxicClauses, 1)
	assert.Equal(t, "제5조", result.ToxicClauses[0].Clause)
	assert.Equal(t, []string{"연차휴가 조항"}, result.MissingItems)
	assert.Equal(t, "중", result.RiskLevel)

	require.Len(t, vision.prompts, 1)
	assert.Contains(t, vision.prompts[0], "근로계약서입니다")
}

func TestAnalyzeContract_TextGoesToTextModel(t *testing.T) {
	text := &fakeModel{name: "chat", reply: analysisJSON}
	svc := NewVisionService(&fakeVision{}, text, zap.NewNop())

	result, err := svc.AnalyzeContract(context.Background(), nil, "", "계약서 전문 텍스트", "")

	require.NoError(t, err)
	assert.Equal(t, "근로계약서", result.DocumentType)

	require.Len(t, text.prompts, 1)
	assert.Contains(t, text.prompts[0], "[계약서 텍스트 내용]\n계약서 전문 텍스트")
	// An empty description renders as the Korean "none" placeholder.
	assert.Contains(t, text.prompts[0], "사용자 추가 설명: 없음")
}

func TestAnalyzeContract_MalformedJSON(t *testing.T) {
	text := &fakeModel{name: "chat", reply: "분석 결과를 드리자면..."}
	svc := NewVisionService(&fakeVision{}, text, zap.NewNop())

	_, err := svc.AnalyzeContract(context.Background(), nil, "", "텍스트", "")

	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, stripCodeFence("설명\n```json\n{\"a\":1}\n```\n끝"))
}
