package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nutribridge-api/internal/domain"
	"github.com/nutribridge-api/internal/pkg/clock"
	"github.com/nutribridge-api/internal/pkg/triage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 8, 24, 12, 0, 0, 0, time.UTC)

func newTestService(clk clock.Clock) *service {
	return NewService(ServiceDeps{Clock: clk, TTL: 10 * time.Minute, Brand: "NB"}).(*service)
}

func TestStart_GreetsAndOpensSession(t *testing.T) {
	svc := newTestService(clock.NewFixed(t0))
	r, err := svc.Start(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, r.SessionID)
	assert.Equal(t, triage.AskSymptom, r.State)
	require.Len(t, r.Messages, 1)
	assert.Equal(t, RoleBot, r.Messages[0].Role)
	assert.Contains(t, r.Messages[0].Text, "NB")
}

func TestSend_AdvancesDialogueAndRecordsHistory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(clock.NewFixed(t0))
	start, _ := svc.Start(ctx)

	r, err := svc.Send(ctx, start.SessionID, "  cough  ")
	require.NoError(t, err)
	assert.Equal(t, triage.AskDuration, r.State)
	require.NotEmpty(t, r.Messages)

	h, err := svc.History(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Cough", h.Context.Symptom)
	require.Len(t, h.Messages, 2+len(r.Messages))
	assert.Equal(t, Message{Role: RoleUser, Text: "cough", At: t0}, h.Messages[1])
}

func TestSend_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(clock.NewFixed(t0))
	start, _ := svc.Start(ctx)

	_, err := svc.Send(ctx, start.SessionID, "   ")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.Send(ctx, "unknown", "fever")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestHistory_IsASnapshot(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(clock.NewFixed(t0))
	start, _ := svc.Start(ctx)

	h, err := svc.History(ctx, start.SessionID)
	require.NoError(t, err)
	h.Messages[0].Text = "tampered"

	again, _ := svc.History(ctx, start.SessionID)
	assert.NotEqual(t, "tampered", again.Messages[0].Text)
}

func TestEnd_RemovesSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(clock.NewFixed(t0))
	start, _ := svc.Start(ctx)

	require.NoError(t, svc.End(ctx, start.SessionID))
	_, err := svc.History(ctx, start.SessionID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(svc.End(ctx, start.SessionID), domain.ErrNotFound))
}

func TestEvictIdle_DropsOnlyStaleSessions(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(t0)
	svc := newTestService(clk)
	stale, _ := svc.Start(ctx)
	clk.Advance(8 * time.Minute)
	fresh, _ := svc.Start(ctx)
	clk.Advance(5 * time.Minute)

	assert.Equal(t, 1, svc.evictIdle(clk.Now()))
	_, err := svc.History(ctx, stale.SessionID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = svc.History(ctx, fresh.SessionID)
	assert.NoError(t, err)
}

func TestSend_KeepsSessionAlive(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(t0)
	svc := newTestService(clk)
	s, _ := svc.Start(ctx)
	clk.Advance(9 * time.Minute)
	_, err := svc.Send(ctx, s.SessionID, "fever")
	require.NoError(t, err)
	clk.Advance(9 * time.Minute)

	assert.Equal(t, 0, svc.evictIdle(clk.Now()))
}

func TestRun_StopsOnCancel(t *testing.T) {
	svc := newTestService(clock.NewFixed(t0))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSessionsAreIndependentUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(clock.NewSystem())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := svc.Start(ctx)
			if !assert.NoError(t, err) {
				return
			}
			_, err = svc.Send(ctx, s.SessionID, "headache")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, svc.sessions, 16)
}
