package index

import (
	"context"
	"testing"

	"hr-assistant-be/internal/pkg/logger"
	"hr-assistant-be/pkg/docs"
	"hr-assistant-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

func testIndex(t *testing.T) *Index {
	t.Helper()
	return New(embedding.NewTfidfProvider(), Config{
		ChunkSize:    1200,
		ChunkOverlap: 200,
		DefaultTopK:  3,
	}, nopLogger{})
}

func policyCorpus() []*docs.RawDocument {
	return []*docs.RawDocument{
		{Name: "leave_policy.md", Text: "Leave policy: employees get 20 days of annual leave per year. Approval goes via the line manager."},
		{Name: "benefits.md", Text: "Health insurance covers employees and dependents. Dental is included from the second year."},
		{Name: "hours.md", Text: "Working hours are 9 to 17 with flexible start between 8 and 10."},
	}
}

func TestRetrieveBeforeIngest(t *testing.T) {
	ix := testIndex(t)
	_, err := ix.Retrieve(context.Background(), "leave days", 3)
	assert.ErrorIs(t, err, ErrIndexEmpty)
	assert.False(t, ix.Ready())
}

func TestIngestAndRetrieve(t *testing.T) {
	ix := testIndex(t)

	chunks, err := ix.Ingest(context.Background(), policyCorpus())
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
	assert.True(t, ix.Ready())

	result, err := ix.Retrieve(context.Background(), "How many leave days do I get?", 3)
	require.NoError(t, err)
	require.False(t, result.Empty())

	assert.Equal(t, "leave_policy.md#0", result.Scored[0].ChunkID)
	assert.Greater(t, result.TopScore(), 0.0)

	// Scores are in descending order
	for i := 1; i < len(result.Scored); i++ {
		assert.GreaterOrEqual(t, result.Scored[i-1].Score, result.Scored[i].Score)
	}
}

func TestRetrieveDeterministic(t *testing.T) {
	ix := testIndex(t)
	_, err := ix.Ingest(context.Background(), policyCorpus())
	require.NoError(t, err)

	first, err := ix.Retrieve(context.Background(), "health insurance for dependents", 3)
	require.NoError(t, err)
	second, err := ix.Retrieve(context.Background(), "health insurance for dependents", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestIngestReplacesCorpus(t *testing.T) {
	ix := testIndex(t)
	_, err := ix.Ingest(context.Background(), policyCorpus())
	require.NoError(t, err)

	_, err = ix.Ingest(context.Background(), []*docs.RawDocument{
		{Name: "travel.md", Text: "Travel expenses are reimbursed within 30 days of filing a report."},
	})
	require.NoError(t, err)

	// Old generation is gone
	_, ok := ix.Chunk("leave_policy.md#0")
	assert.False(t, ok)

	docsList := ix.Documents()
	require.Len(t, docsList, 1)
	assert.Equal(t, "travel.md", docsList[0].Name)
}

func TestFailedIngestKeepsActiveCorpus(t *testing.T) {
	ix := testIndex(t)
	_, err := ix.Ingest(context.Background(), policyCorpus())
	require.NoError(t, err)

	query := "How many leave days do I get?"
	before, err := ix.Retrieve(context.Background(), query, 3)
	require.NoError(t, err)
	require.Equal(t, "leave_policy.md#0", before.Scored[0].ChunkID)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ix.Ingest(cancelled, []*docs.RawDocument{
		{Name: "travel.md", Text: "Travel expenses are reimbursed within 30 days of filing a report."},
	})
	require.Error(t, err)

	// The failed ingest must not disturb the active generation: same
	// query, same scores, same corpus.
	after, err := ix.Retrieve(context.Background(), query, 3)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, ok := ix.Chunk("leave_policy.md#0")
	assert.True(t, ok)
	assert.Len(t, ix.Documents(), 3)
}

func TestRetrieveUsesSnapshotVocabulary(t *testing.T) {
	provider := embedding.NewTfidfProvider()
	ix := New(provider, Config{ChunkSize: 1200, ChunkOverlap: 200, DefaultTopK: 3}, nopLogger{})
	_, err := ix.Ingest(context.Background(), policyCorpus())
	require.NoError(t, err)

	query := "health insurance for dependents"
	before, err := ix.Retrieve(context.Background(), query, 3)
	require.NoError(t, err)

	// Re-preparing the provider handed to New rebinds its vocabulary, but
	// the active snapshot embeds through its own corpus-bound provider.
	require.NoError(t, provider.Prepare([]string{"completely unrelated travel budget accounting terms"}))

	after, err := ix.Retrieve(context.Background(), query, 3)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestIngestEmptyInput(t *testing.T) {
	ix := testIndex(t)
	_, err := ix.Ingest(context.Background(), nil)
	assert.Error(t, err)
}

func TestSplitTextOffsets(t *testing.T) {
	text := "abcdefghij"
	spans := SplitText(text, 4, 1)

	require.NotEmpty(t, spans)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 4, spans[0].End)
	assert.Equal(t, "abcd", spans[0].Text)

	// Adjacent spans overlap by one rune
	assert.Equal(t, 3, spans[1].Start)

	last := spans[len(spans)-1]
	assert.Equal(t, len([]rune(text)), last.End)
}

func TestSplitTextOffsetsDelimitText(t *testing.T) {
	text := "abc def ghi jkl"
	runes := []rune(text)
	spans := SplitText(text, 4, 0)

	require.Len(t, spans, 4)
	assert.Equal(t, Span{Text: "abc", Start: 0, End: 3}, spans[0])
	assert.Equal(t, Span{Text: "def", Start: 4, End: 7}, spans[1])

	// Offsets delimit exactly the stored text, trimming included
	for _, span := range spans {
		assert.Equal(t, span.Text, string(runes[span.Start:span.End]))
	}
}

func TestSplitTextSkipsWhitespaceOnlyWindows(t *testing.T) {
	text := "ab      cd"
	spans := SplitText(text, 3, 0)

	require.Len(t, spans, 3)
	assert.Equal(t, Span{Text: "ab", Start: 0, End: 2}, spans[0])
	assert.Equal(t, Span{Text: "c", Start: 8, End: 9}, spans[1])
	assert.Equal(t, Span{Text: "d", Start: 9, End: 10}, spans[2])
}

func TestSplitTextShortInput(t *testing.T) {
	spans := SplitText("  short  ", 1200, 200)
	require.Len(t, spans, 1)
	assert.Equal(t, "short", spans[0].Text)
}
