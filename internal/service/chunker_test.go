package service

import (
	"strings"
	"testing"

	"jonglaw/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestChunker_ShortTextSingleChunk(t *testing.T) {
	c := NewChunker(1000, 100)

	chunks := c.SplitText("짧은 법령 조문입니다.")

	assert.Len(t, chunks, 1)
	assert.Equal(t, "짧은 법령 조문입니다.", chunks[0])
}

func TestChunker_LongTextRespectsSize(t *testing.T) {
	c := NewChunker(100, 20)

	var parts []string
	for i := 0; i < 30; i++ {
		parts = append(parts, "이 조항은 계약의 해지에 관한 내용을 담고 있습니다")
	}
	text := strings.Join(parts, "\n")

	chunks := c.SplitText(text)

	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 100)
		assert.NotEqual(t, "", strings.TrimSpace(chunk))
	}
}

func TestChunker_PartsNearSizeStayWithinSize(t *testing.T) {
	c := NewChunker(100, 20)

	// Paragraphs just under Size leave no room for the carried
	// overlap tail, which must be dropped rather than overflow.
	para := strings.Repeat("법", 95)
	text := para + "\n\n" + para

	chunks := c.SplitText(text)

	assert.Len(t, chunks, 2)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 100)
	}
}

func TestChunker_NoSeparatorFallsBackToRunes(t *testing.T) {
	c := NewChunker(50, 10)

	text := strings.Repeat("가", 120)
	chunks := c.SplitText(text)

	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 50)
	}
	// Adjacent chunks share the overlap window.
	first := []rune(chunks[0])
	second := []rune(chunks[1])
	assert.Equal(t, string(first[len(first)-10:]), string(second[:10]))
}

func TestChunker_SplitDocumentsCopiesMetadata(t *testing.T) {
	c := NewChunker(50, 10)

	docs := []*models.Document{{
		Content: strings.Repeat("민법 제750조 불법행위 손해배상 책임 요건. ", 20),
		Metadata: models.DocumentMetadata{
			Source: "민법",
			Type:   models.SourceTypeLaw,
			MST:    "12345",
		},
	}}

	chunks := c.SplitDocuments(docs)

	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.Equal(t, "민법", chunk.Metadata.Source)
		assert.Equal(t, "12345", chunk.Metadata.MST)
	}
}

func TestChunker_EmptyTextProducesNoChunks(t *testing.T) {
	c := NewChunker(100, 10)

	assert.Empty(t, c.SplitText(""))
	assert.Empty(t, c.SplitText("   \n\n  "))
}
