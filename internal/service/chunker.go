package service

import (
	"strings"

	"jonglaw/internal/models"
)

// Chunker splits documents into overlapping chunks for embedding. It
// splits recursively on paragraph, line, word and finally rune
// boundaries so a chunk never exceeds Size runes.
type Chunker struct {
	Size    int
	Overlap int
}

func NewChunker(size, overlap int) *Chunker {
	return &Chunker{Size: size, Overlap: overlap}
}

var separators = []string{"\n\n", "\n", " ", ""}

// SplitDocuments chunks each document, copying its metadata onto every
// chunk.
func (c *Chunker) SplitDocuments(docs []*models.Document) []*models.Document {
	var out []*models.Document
	for _, doc := range docs {
		for _, piece := range c.SplitText(doc.Content) {
			out = append(out, &models.Document{
				Content:  piece,
				Metadata: doc.Metadata,
			})
		}
	}
	return out
}

func (c *Chunker) SplitText(text string) []string {
	return c.split(text, 0)
}

func (c *Chunker) split(text string, sepIdx int) []string {
	if len([]rune(text)) <= c.Size {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}
	if sepIdx >= len(separators) {
		return c.splitRunes(text)
	}

	sep := separators[sepIdx]
	if sep == "" {
		return c.splitRunes(text)
	}

	parts := strings.Split(text, sep)
	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunk := current.String()
			if strings.TrimSpace(chunk) != "" {
				chunks = append(chunks, chunk)
			}
			// Carry the tail over so adjacent chunks overlap.
			tail := tailRunes(chunk, c.Overlap)
			current.Reset()
			current.WriteString(tail)
			currentLen = len([]rune(tail))
		}
	}

	for _, part := range parts {
		partLen := len([]rune(part))
		if partLen > c.Size {
			flush()
			current.Reset()
			currentLen = 0
			chunks = append(chunks, c.split(part, sepIdx+1)...)
			continue
		}
		sepLen := 0
		if currentLen > 0 {
			sepLen = len([]rune(sep))
		}
		if currentLen+sepLen+partLen > c.Size {
			flush()
			// The carried tail can leave too little room for a part
			// close to Size. Drop it rather than overflow the chunk.
			if currentLen > 0 && currentLen+len([]rune(sep))+partLen > c.Size {
				current.Reset()
				currentLen = 0
			}
		}
		if currentLen > 0 {
			current.WriteString(sep)
			currentLen += len([]rune(sep))
		}
		current.WriteString(part)
		currentLen += partLen
	}
	flush()

	return chunks
}

// splitRunes is the last resort for text with no usable separator.
func (c *Chunker) splitRunes(text string) []string {
	runes := []rune(text)
	step := c.Size - c.Overlap
	if step <= 0 {
		step = c.Size
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.Size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
