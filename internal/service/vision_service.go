package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"jonglaw/internal/dto"

	"go.uber.org/zap"
)

const contractAnalysisPrompt = `당신은 대한민국 전문 변호사입니다. 제공된 계약서(또는 법률 문서)를 정밀 분석하여 다음 정보를 추출하고 분석하십시오.

사용자 추가 설명: %s

분석 요구사항:
1. **문서 종류 식별**: 이 문서가 어떤 종류의 계약서인지 파악하십시오.
2. **독소 조항(Toxic Clauses) 추출**: 사용자에게 일방적으로 불리하거나, 법적으로 문제가 될 소지가 있는 조항을 모두 찾아내어 설명하십시오.
3. **누락된 필수 항목**: 해당 계약 종류에서 통상적으로 포함되어야 하나 누락된 중요한 항목이 있다면 지적하십시오.
4. **종합 의견 및 권고 사항**: 이 계약을 체결할 때 주의해야 할 점과 수정 제안을 제공하십시오.

출력 형식 (JSON):
{
    "document_type": "문서 종류",
    "toxic_clauses": [
        {"clause": "조항 내용 (또는 위치)", "reason": "불리하거나 위험한 이유", "suggestion": "수정 제안"}
    ],
    "missing_items": ["누락된 항목 1", "누락된 항목 2"],
    "overall_opinion": "종합적인 변호사 의견",
    "risk_level": "고/중/저"
}

반드시 유효한 JSON 형식으로만 답변하십시오. 한국어로 작성하십시오.`

// VisionService reviews contract documents for toxic clauses. Images go
// through the multimodal model, extracted PDF text through the chat tier.
type VisionService struct {
	vision VisionModel
	text   TextModel
	logger *zap.Logger
}

func NewVisionService(vision VisionModel, text TextModel, logger *zap.Logger) *VisionService {
	return &VisionService{
		vision: vision,
		text:   text,
		logger: logger,
	}
}

// AnalyzeContract inspects a contract supplied as an image or as plain
// text. Exactly one of imageData and textContent should be set.
func (s *VisionService) AnalyzeContract(ctx context.Context, imageData []byte, mimeType, textContent, userDescription string) (*dto.AnalyzeDocumentResponse, error) {
	description := userDescription
	if description == "" {
		description = "없음"
	}
	prompt := fmt.Sprintf(contractAnalysisPrompt, description)

	var raw string
	var err error
	if len(imageData) > 0 {
		raw, err = s.vision.AnalyzeImage(ctx, prompt, mimeType, imageData)
	} else {
		prompt += fmt.Sprintf("\n\n[계약서 텍스트 내용]\n%s", textContent)
		raw, err = s.text.Generate(ctx, "", prompt)
	}
	if err != nil {
		return nil, fmt.Errorf("document analysis failed: %w", err)
	}

	var result dto.AnalyzeDocumentResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &result); err != nil {
		s.logger.Warn("model returned malformed analysis JSON", zap.Error(err))
		return nil, fmt.Errorf("failed to parse analysis result: %w", err)
	}
	return &result, nil
}

// stripCodeFence unwraps a ```json ... ``` (or bare ```) block if the
// model wrapped its answer in one.
func stripCodeFence(content string) string {
	if idx := strings.Index(content, "```json"); idx >= 0 {
		rest := content[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(content)
}
