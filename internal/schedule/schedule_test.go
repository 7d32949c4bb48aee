package schedule

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valetapp/valet/internal/llm"
	"github.com/valetapp/valet/internal/logging"
	"github.com/valetapp/valet/internal/store"
)

func testStore(t *testing.T) *EventStore {
	t.Helper()
	db, err := store.Open(":memory:", logging.New(io.Discard, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEventStore(db)
}

func TestEventCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	created, err := s.Create(ctx, Event{
		Title: "standup",
		Start: start,
		End:   start.Add(30 * time.Minute),
		Notes: "daily sync",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "standup", got.Title)
	assert.True(t, got.Start.Equal(start))
	assert.Equal(t, "daily sync", got.Notes)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEventListOrdering(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{4 * time.Hour, 0, 2 * time.Hour} {
		_, err := s.Create(ctx, Event{
			Title: "slot",
			Start: base.Add(offset),
			End:   base.Add(offset + time.Hour),
		})
		require.NoError(t, err)
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].Start.Before(list[1].Start))
	assert.True(t, list[1].Start.Before(list[2].Start))
}

func TestEventValidation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := s.Create(ctx, Event{Start: now, End: now.Add(time.Hour)})
	assert.ErrorContains(t, err, "title")

	_, err = s.Create(ctx, Event{Title: "x", Start: now, End: now})
	assert.ErrorContains(t, err, "end must be after start")
}

func TestAdvisorSuggest(t *testing.T) {
	mock := &llm.MockClient{
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: `{
				"suggestedSlots": [{"start": "2026-09-02T10:00:00Z", "end": "2026-09-02T11:00:00Z", "reason": "morning free"}],
				"messageDraft": "Does Wednesday 10am work?"
			}`}, nil
		},
	}
	a := NewAdvisor(mock, "llama-3.3-70b-versatile", logging.New(io.Discard, "error"))

	out, err := a.Suggest(context.Background(), "sync with design", "mornings only",
		[]Slot{{Start: "2026-09-02T10:00:00Z", End: "2026-09-02T11:00:00Z"}}, nil)
	require.NoError(t, err)
	require.Len(t, out.SuggestedSlots, 1)
	assert.Equal(t, "morning free", out.SuggestedSlots[0].Reason)
	assert.Equal(t, "Does Wednesday 10am work?", out.MessageDraft)

	require.Len(t, mock.Requests, 1)
	req := mock.Requests[0]
	assert.True(t, req.JSONObject)
	require.NotNil(t, req.Temperature)
	assert.Equal(t, 0.5, *req.Temperature)
	assert.Contains(t, req.Messages[0].Content, "sync with design")
}

func TestAdvisorErrorsPropagate(t *testing.T) {
	mock := &llm.MockClient{
		CompleteFunc: func(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, errors.New("provider down")
		},
	}
	a := NewAdvisor(mock, "", logging.New(io.Discard, "error"))

	_, err := a.Suggest(context.Background(), "intent", "", nil, nil)
	assert.ErrorContains(t, err, "provider down")
}

func TestAdvisorMalformedDecision(t *testing.T) {
	mock := &llm.MockClient{
		CompleteFunc: func(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: "not json"}, nil
		},
	}
	a := NewAdvisor(mock, "", logging.New(io.Discard, "error"))

	_, err := a.Suggest(context.Background(), "intent", "", nil, nil)
	assert.ErrorContains(t, err, "decoding slot suggestion")
}
