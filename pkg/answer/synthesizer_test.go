package answer

import (
	"strings"
	"testing"

	"hr-assistant-be/pkg/index"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeGroundedAnswer(t *testing.T) {
	s := NewSynthesizer(0.25)

	chunk := index.Chunk{
		ID:     "leave_policy.md#0",
		Source: "leave_policy.md",
		Index:  0,
		Text:   "Leave policy: employees get 20 days of annual leave per year. Approval goes via the line manager.",
	}
	result := index.RetrievalResult{Scored: []index.ScoredChunk{
		{ChunkID: chunk.ID, Score: 0.5},
	}}

	ans := s.Synthesize("How many leave days do I get?", result, []index.Chunk{chunk})

	require.False(t, ans.Refused)
	assert.Contains(t, ans.Text, "20 days")
	assert.Contains(t, ans.Text, "[source: leave_policy.md | chunk: 0]")
	assert.Equal(t, []string{"leave_policy.md#0"}, ans.CitedChunkIDs)
	assert.Greater(t, ans.Confidence, 0.25)
}

func TestSynthesizeRefusesBelowThreshold(t *testing.T) {
	s := NewSynthesizer(0.25)

	chunk := index.Chunk{ID: "a#0", Source: "a", Text: "Something unrelated entirely."}
	result := index.RetrievalResult{Scored: []index.ScoredChunk{
		{ChunkID: chunk.ID, Score: 0.05},
	}}

	ans := s.Synthesize("quantum travel budget", result, []index.Chunk{chunk})

	assert.True(t, ans.Refused)
	assert.Equal(t, RefusalText, ans.Text)
	assert.Empty(t, ans.CitedChunkIDs)
}

func TestSynthesizeRefusesOnEmptyResult(t *testing.T) {
	s := NewSynthesizer(0.25)
	ans := s.Synthesize("anything", index.RetrievalResult{}, nil)
	assert.True(t, ans.Refused)
	assert.Equal(t, RefusalText, ans.Text)
}

func TestSynthesizeRefusesWhenNoSpanOverlaps(t *testing.T) {
	s := NewSynthesizer(0.25)

	// High score but the chunk text shares no terms with the query: nothing
	// can be grounded, so the synthesizer refuses rather than invent.
	chunk := index.Chunk{ID: "a#0", Source: "a", Text: "Totally unrelated prose."}
	result := index.RetrievalResult{Scored: []index.ScoredChunk{
		{ChunkID: chunk.ID, Score: 0.9},
	}}

	ans := s.Synthesize("pension contribution matching", result, []index.Chunk{chunk})
	assert.True(t, ans.Refused)
}

func TestConfidenceMonotoneInTopScore(t *testing.T) {
	s := NewSynthesizer(0.25)

	low := s.Confidence(index.RetrievalResult{Scored: []index.ScoredChunk{
		{ChunkID: "a", Score: 0.3}, {ChunkID: "b", Score: 0.2},
	}})
	high := s.Confidence(index.RetrievalResult{Scored: []index.ScoredChunk{
		{ChunkID: "a", Score: 0.6}, {ChunkID: "b", Score: 0.2},
	}})

	assert.Greater(t, high, low)
	assert.Zero(t, s.Confidence(index.RetrievalResult{}))
}

func TestSynthesizeCitesEveryContributingChunk(t *testing.T) {
	s := NewSynthesizer(0.25)

	chunks := []index.Chunk{
		{ID: "policy.md#0", Source: "policy.md", Index: 0, Text: "Annual leave is 20 days per year."},
		{ID: "policy.md#1", Source: "policy.md", Index: 1, Text: "Unused leave days can be carried over."},
	}
	result := index.RetrievalResult{Scored: []index.ScoredChunk{
		{ChunkID: "policy.md#0", Score: 0.6},
		{ChunkID: "policy.md#1", Score: 0.5},
	}}

	ans := s.Synthesize("how many leave days carry over", result, chunks)

	require.False(t, ans.Refused)
	assert.Equal(t, []string{"policy.md#0", "policy.md#1"}, ans.CitedChunkIDs)
	assert.Equal(t, 2, strings.Count(ans.Text, "[source: policy.md | chunk:"))
}
