package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"hr-assistant-be/internal/repository/memory"
	"hr-assistant-be/pkg/leave"
	"hr-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(ttl time.Duration) *Manager {
	return NewManager(memory.NewSessionRepository(ttl))
}

func TestGetOrCreate(t *testing.T) {
	m := newManager(time.Hour)

	sess := m.GetOrCreate("s1")
	require.NotNil(t, sess)
	assert.Equal(t, "s1", sess.ID)
	assert.Empty(t, sess.Turns)

	again := m.GetOrCreate("s1")
	assert.Equal(t, sess.CreatedAt, again.CreatedAt)
}

func TestAppendTurn(t *testing.T) {
	m := newManager(time.Hour)
	m.GetOrCreate("s1")

	query := store.Query{SessionID: "s1", RawText: "hello", Timestamp: time.Now()}
	result := store.TurnResult{Kind: store.ResultMessage, Message: "hi"}

	err := m.AppendTurn(context.Background(), "s1", query, result)
	require.NoError(t, err)

	sess, found := m.Get("s1")
	require.True(t, found)
	require.Len(t, sess.Turns, 1)
	assert.Equal(t, "hello", sess.Turns[0].Query.RawText)
	assert.Equal(t, "hi", sess.Turns[0].Result.Message)
}

func TestAppendTurnMissingSession(t *testing.T) {
	m := newManager(time.Hour)
	err := m.AppendTurn(context.Background(), "nope", store.Query{}, store.TurnResult{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAppendTurnCancelledContextWritesNothing(t *testing.T) {
	m := newManager(time.Hour)
	m.GetOrCreate("s1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.AppendTurn(ctx, "s1", store.Query{RawText: "late"}, store.TurnResult{})
	assert.Error(t, err)

	sess, _ := m.Get("s1")
	assert.Empty(t, sess.Turns)
}

func TestSessionIsolation(t *testing.T) {
	m := newManager(time.Hour)
	m.GetOrCreate("a")
	m.GetOrCreate("b")

	require.NoError(t, m.SetPending("a", "leave_request", &leave.PartialRequest{StartDate: "2025-04-01"}))

	a, _ := m.Get("a")
	b, _ := m.Get("b")
	assert.Equal(t, "leave_request", a.PendingFlow)
	assert.Empty(t, b.PendingFlow)
	assert.Nil(t, b.PendingLeave)
}

func TestSetPendingClear(t *testing.T) {
	m := newManager(time.Hour)
	m.GetOrCreate("s1")

	require.NoError(t, m.SetPending("s1", "leave_request", &leave.PartialRequest{StartDate: "2025-04-01"}))
	require.NoError(t, m.SetPending("s1", "", nil))

	sess, _ := m.Get("s1")
	assert.Empty(t, sess.PendingFlow)
	assert.Nil(t, sess.PendingLeave)
}

func TestExpiredSessionIsGone(t *testing.T) {
	m := newManager(30 * time.Millisecond)
	m.GetOrCreate("s1")

	time.Sleep(60 * time.Millisecond)
	m.SweepExpired()

	_, found := m.Get("s1")
	assert.False(t, found)

	err := m.AppendTurn(context.Background(), "s1", store.Query{}, store.TurnResult{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestWithLockSerializesPerSession(t *testing.T) {
	m := newManager(time.Hour)
	m.GetOrCreate("s1")

	const workers = 8
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithLock("s1", func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}
