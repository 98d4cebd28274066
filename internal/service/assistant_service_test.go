package service

import (
	"context"
	"testing"
	"time"

	"hr-assistant-be/internal/config"
	"hr-assistant-be/internal/dto"
	"hr-assistant-be/internal/pkg/logger"
	"hr-assistant-be/internal/repository/memory"
	"hr-assistant-be/pkg/answer"
	"hr-assistant-be/pkg/docs"
	"hr-assistant-be/pkg/embedding"
	"hr-assistant-be/pkg/index"
	"hr-assistant-be/pkg/intent"
	"hr-assistant-be/pkg/schedule"
	"hr-assistant-be/pkg/session"
	"hr-assistant-be/pkg/store"

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

var fixedNow = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Assistant: config.AssistantConfig{
			TopK:                  3,
			RefusalThreshold:      0.25,
			IntentConfidenceFloor: 0.35,
			ChunkSize:             1200,
			ChunkOverlap:          200,
			SessionTTL:            time.Hour,
		},
		Schedule: config.ScheduleConfig{
			SlotGranularity: 30 * time.Minute,
			MaxSlotResults:  5,
			SearchBudget:    50000,
			PreferredStart:  9,
			PreferredEnd:    17,
		},
	}
}

func testAssistant(t *testing.T, ingest bool) (*assistantService, *schedule.Directory) {
	t.Helper()
	cfg := testConfig()

	idx := index.New(embedding.NewTfidfProvider(), index.Config{
		ChunkSize:    cfg.Assistant.ChunkSize,
		ChunkOverlap: cfg.Assistant.ChunkOverlap,
		DefaultTopK:  cfg.Assistant.TopK,
	}, nopLogger{})

	if ingest {
		_, err := idx.Ingest(context.Background(), []*docs.RawDocument{
			{Name: "leave_policy.md", Text: "Leave policy: employees get 20 days of annual leave per year. Approval goes via the line manager."},
			{Name: "benefits.md", Text: "Health insurance covers employees and their dependents."},
		})
		require.NoError(t, err)
	}

	engine := schedule.NewEngine(schedule.Config{
		Granularity:    cfg.Schedule.SlotGranularity,
		MaxResults:     cfg.Schedule.MaxSlotResults,
		SearchBudget:   cfg.Schedule.SearchBudget,
		PreferredStart: cfg.Schedule.PreferredStart,
		PreferredEnd:   cfg.Schedule.PreferredEnd,
	})

	directory := schedule.NewDirectory()
	day := func(h int) time.Time { return time.Date(2025, 6, 2, h, 0, 0, 0, time.UTC) }
	directory.Upsert("int-1", []schedule.Window{{Start: day(13), End: day(17)}})
	directory.Upsert("emp-1", []schedule.Window{{Start: day(9), End: day(17)}})

	sessionManager := session.NewManager(memory.NewSessionRepository(cfg.Assistant.SessionTTL))

	svc := NewAssistantService(
		idx,
		intent.NewRouter(cfg.Assistant.IntentConfidenceFloor),
		answer.NewSynthesizer(cfg.Assistant.RefusalThreshold),
		engine,
		directory,
		sessionManager,
		cfg,
		nopLogger{},
	).(*assistantService)
	svc.now = func() time.Time { return fixedNow }

	return svc, directory
}

func TestHandleTurnPolicyQuestion(t *testing.T) {
	svc, _ := testAssistant(t, true)

	resp, err := svc.HandleTurn(context.Background(), &dto.TurnRequest{
		SessionId: "s1",
		Text:      "How many leave days do I get?",
	})
	require.NoError(t, err)

	assert.Equal(t, string(intent.PolicyQuestion), resp.Intent.Type)
	assert.Equal(t, store.ResultAnswer, resp.Kind)
	require.NotNil(t, resp.Answer)
	assert.False(t, resp.Answer.Refused)
	assert.Contains(t, resp.Answer.Text, "20 days")
	assert.Contains(t, resp.Answer.Text, "[source: leave_policy.md | chunk: 0]")
	assert.Equal(t, 1, resp.Session.Turns)
}

func TestHandleTurnUnknownIntent(t *testing.T) {
	svc, _ := testAssistant(t, true)

	resp, err := svc.HandleTurn(context.Background(), &dto.TurnRequest{
		SessionId: "s1",
		Text:      "florble womp zzz",
	})
	require.NoError(t, err)

	assert.Equal(t, string(intent.Unknown), resp.Intent.Type)
	assert.Equal(t, store.ResultMessage, resp.Kind)
	assert.NotEmpty(t, resp.Message)
	assert.Nil(t, resp.Answer)
}

func TestHandleTurnEmptyIndex(t *testing.T) {
	svc, _ := testAssistant(t, false)

	resp, err := svc.HandleTurn(context.Background(), &dto.TurnRequest{
		SessionId: "s1",
		Text:      "How many leave days do I get?",
	})
	require.NoError(t, err)

	assert.Equal(t, store.ResultMessage, resp.Kind)
	assert.Contains(t, resp.Message, "No policy documents")
}

func TestHandleTurnLeaveRequestSlotFilling(t *testing.T) {
	svc, _ := testAssistant(t, true)

	resp, err := svc.HandleTurn(context.Background(), &dto.TurnRequest{
		SessionId: "s1",
		Text:      "I'd like to request leave",
	})
	require.NoError(t, err)
	assert.Equal(t, store.ResultMessage, resp.Kind)
	assert.Contains(t, resp.Message, "start date")
	assert.Equal(t, string(intent.LeaveRequest), resp.Session.PendingFlow)

	resp, err = svc.HandleTurn(context.Background(), &dto.TurnRequest{
		SessionId: "s1",
		Text:      "from 2025-07-01 to 2025-07-04",
	})
	require.NoError(t, err)
	assert.Equal(t, store.ResultMessage, resp.Kind)
	assert.Contains(t, resp.Message, "reason")

	resp, err = svc.HandleTurn(context.Background(), &dto.TurnRequest{
		SessionId: "s1",
		Text:      "it's for a family event",
	})
	require.NoError(t, err)
	assert.Equal(t, store.ResultTemplate, resp.Kind)
	assert.Contains(t, resp.Message, "Subject: Leave Request (2025-07-01 to 2025-07-04)")
	assert.Contains(t, resp.Message, "family event")
	assert.Empty(t, resp.Session.PendingFlow)
}

func TestHandleTurnLeaveRequestSingleTurn(t *testing.T) {
	svc, _ := testAssistant(t, true)

	resp, err := svc.HandleTurn(context.Background(), &dto.TurnRequest{
		SessionId: "s1",
		Text:      "I need to request leave from 2025-07-01 to 2025-07-04 for a family event",
	})
	require.NoError(t, err)
	assert.Equal(t, store.ResultTemplate, resp.Kind)
	assert.Contains(t, resp.Message, "Reason: family event.")
}

func TestHandleTurnScheduling(t *testing.T) {
	svc, _ := testAssistant(t, true)

	resp, err := svc.HandleTurn(context.Background(), &dto.TurnRequest{
		SessionId:   "s1",
		Text:        "Schedule a 60 minute interview with int-1",
		RequesterId: "emp-1",
	})
	require.NoError(t, err)

	assert.Equal(t, string(intent.InterviewScheduling), resp.Intent.Type)
	assert.Equal(t, store.ResultSlots, resp.Kind)
	require.NotEmpty(t, resp.Slots)

	// Shared availability starts at 13:00 on the fixed test day
	first := resp.Slots[0]
	assert.Equal(t, time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC), first.Start)
	assert.Equal(t, time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC), first.End)
	assert.Equal(t, 1, first.Rank)
	assert.ElementsMatch(t, []string{"emp-1", "int-1"}, first.ParticipantIds)
}

func TestHandleTurnSchedulingNoInterviewer(t *testing.T) {
	svc, _ := testAssistant(t, true)

	resp, err := svc.HandleTurn(context.Background(), &dto.TurnRequest{
		SessionId:   "s1",
		Text:        "Schedule an interview sometime",
		RequesterId: "emp-1",
	})
	require.NoError(t, err)

	assert.Equal(t, store.ResultMessage, resp.Kind)
	assert.Contains(t, resp.Message, "interviewers")
}

func TestHandleTurnSessionsAreIsolated(t *testing.T) {
	svc, _ := testAssistant(t, true)

	_, err := svc.HandleTurn(context.Background(), &dto.TurnRequest{
		SessionId: "a",
		Text:      "I'd like to request leave",
	})
	require.NoError(t, err)

	resp, err := svc.HandleTurn(context.Background(), &dto.TurnRequest{
		SessionId: "b",
		Text:      "How many leave days do I get?",
	})
	require.NoError(t, err)

	assert.Equal(t, store.ResultAnswer, resp.Kind)
	assert.Empty(t, resp.Session.PendingFlow)
}

func TestParseDurationVariants(t *testing.T) {
	svc, _ := testAssistant(t, true)

	tests := []struct {
		text string
		want time.Duration
	}{
		{text: "a 30 minute chat", want: 30 * time.Minute},
		{text: "90 mins with the panel", want: 90 * time.Minute},
		{text: "a 2 hour deep dive", want: 2 * time.Hour},
		{text: "no duration given", want: 60 * time.Minute},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.parseDuration(tt.text), tt.text)
	}
}
