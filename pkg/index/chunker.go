package index

import (
	"strings"
	"unicode"
)

// Span is a chunk of document text with its source offsets, measured in
// runes from the start of the cleaned document.
type Span struct {
	Text  string
	Start int
	End   int
}

// SplitText splits a long string into spans of approximately 'chunkSize'
// runes. It includes an 'overlap' to preserve context at boundaries.
func SplitText(text string, chunkSize int, overlap int) []Span {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	totalLen := len(runes)
	if totalLen <= chunkSize {
		return []Span{{Text: trimmed, Start: 0, End: totalLen}}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var spans []Span
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		// Trim whitespace at the window edges and keep the offsets in
		// step, so Start/End always delimit exactly the stored text.
		s, e := i, end
		for s < e && unicode.IsSpace(runes[s]) {
			s++
		}
		for e > s && unicode.IsSpace(runes[e-1]) {
			e--
		}
		if s < e {
			spans = append(spans, Span{
				Text:  string(runes[s:e]),
				Start: s,
				End:   e,
			})
		}

		if end == totalLen {
			break
		}
	}

	return spans
}
