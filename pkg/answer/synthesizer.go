// Package answer composes grounded answers from retrieved chunks. The
// answer body is built only from extracted chunk spans, never free
// generation, so every statement traces back to a cited chunk.
package answer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"hr-assistant-be/pkg/index"
)

// RefusalText is the canonical reply when retrieval confidence is too low
// to ground an answer.
const RefusalText = "I don't know — please check with HR."

// Answer is the synthesized response for a policy question.
type Answer struct {
	Text          string   `json:"text"`
	CitedChunkIDs []string `json:"cited_chunk_ids"`
	Confidence    float64  `json:"confidence"`
	Refused       bool     `json:"refused"`
}

type Synthesizer struct {
	refusalThreshold float64
	sentenceRe       *regexp.Regexp
	tokenRe          *regexp.Regexp
}

func NewSynthesizer(refusalThreshold float64) *Synthesizer {
	return &Synthesizer{
		refusalThreshold: refusalThreshold,
		sentenceRe:       regexp.MustCompile(`[^.!?\n]+[.!?]?`),
		tokenRe:          regexp.MustCompile(`\p{L}+|\p{N}+`),
	}
}

// Refusal returns the canonical low-confidence answer.
func (s *Synthesizer) Refusal(confidence float64) Answer {
	return Answer{
		Text:       RefusalText,
		Confidence: confidence,
		Refused:    true,
	}
}

// Confidence derives answer confidence from the top retrieval score and the
// gap to the runner-up: a clear winner raises confidence, a near-tie lowers
// it. Monotone in the top score.
func (s *Synthesizer) Confidence(result index.RetrievalResult) float64 {
	if result.Empty() {
		return 0
	}
	conf := 0.8*result.TopScore() + 0.2*result.Gap()
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// Synthesize composes a grounded answer from the retrieved chunks, citing
// every chunk whose text contributes a span. Deterministic for a fixed
// corpus and configuration.
func (s *Synthesizer) Synthesize(queryText string, result index.RetrievalResult, chunks []index.Chunk) Answer {
	confidence := s.Confidence(result)
	if result.Empty() || confidence < s.refusalThreshold {
		return s.Refusal(confidence)
	}

	queryTerms := s.termSet(queryText)

	type cited struct {
		chunk index.Chunk
		spans []string
	}
	var used []cited

	// Keep chunks that stay within reach of the best score; stragglers add
	// noise, not grounding.
	cutoff := result.TopScore() * 0.5
	byID := make(map[string]index.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	for _, sc := range result.Scored {
		if sc.Score < cutoff {
			continue
		}
		chunk, ok := byID[sc.ChunkID]
		if !ok {
			continue
		}
		spans := s.extractSpans(chunk.Text, queryTerms)
		if len(spans) == 0 {
			continue
		}
		used = append(used, cited{chunk: chunk, spans: spans})
	}

	if len(used) == 0 {
		return s.Refusal(confidence)
	}

	var body strings.Builder
	citedIDs := make([]string, 0, len(used))
	for i, u := range used {
		if i > 0 {
			body.WriteString("\n\n")
		}
		body.WriteString(strings.Join(u.spans, " "))
		body.WriteString(fmt.Sprintf("\n[source: %s | chunk: %d]", u.chunk.Source, u.chunk.Index))
		citedIDs = append(citedIDs, u.chunk.ID)
	}
	sort.Strings(citedIDs)

	return Answer{
		Text:          body.String(),
		CitedChunkIDs: citedIDs,
		Confidence:    confidence,
	}
}

// extractSpans returns up to two sentences of the chunk that share terms
// with the query, in document order.
func (s *Synthesizer) extractSpans(text string, queryTerms map[string]struct{}) []string {
	sentences := s.sentenceRe.FindAllString(text, -1)

	type ranked struct {
		pos     int
		overlap int
		text    string
	}
	var matches []ranked
	for i, sentence := range sentences {
		trimmed := strings.TrimSpace(sentence)
		if trimmed == "" {
			continue
		}
		overlap := 0
		for _, tok := range s.tokenRe.FindAllString(strings.ToLower(trimmed), -1) {
			if _, ok := queryTerms[tok]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			matches = append(matches, ranked{pos: i, overlap: overlap, text: trimmed})
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].overlap > matches[j].overlap })
	if len(matches) > 2 {
		matches = matches[:2]
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	spans := make([]string, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, m.text)
	}
	return spans
}

func (s *Synthesizer) termSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range s.tokenRe.FindAllString(strings.ToLower(text), -1) {
		set[tok] = struct{}{}
	}
	return set
}
