package routing

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valetapp/valet/internal/action"
	"github.com/valetapp/valet/internal/chat"
	"github.com/valetapp/valet/internal/config"
	"github.com/valetapp/valet/internal/domain"
	"github.com/valetapp/valet/internal/hooks"
	"github.com/valetapp/valet/internal/llm"
	"github.com/valetapp/valet/internal/logging"
	"github.com/valetapp/valet/internal/workflow"
)

type fixture struct {
	orch          *Orchestrator
	router        *chat.IntentRouter
	urls          []string
	workflowCalls int64
}

func newFixture(t *testing.T, completion string, workflowURL string) *fixture {
	t.Helper()
	log := logging.New(io.Discard, "error")
	cfg := config.Defaults()

	workflows := map[string]config.WorkflowEntry{}
	if workflowURL != "" {
		workflows[workflow.IDMOMGenerator] = config.WorkflowEntry{URL: workflowURL}
	}
	reg := workflow.NewRegistry(workflows, log)

	mock := &llm.MockClient{
		CompleteFunc: func(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: completion}, nil
		},
	}
	router := chat.NewIntentRouter(mock, reg, cfg.Assistant, cfg.LLM, log)

	f := &fixture{router: router}
	dispatcher := action.NewDispatcher(cfg.Actions, log,
		action.WithURLOpener(func(_ context.Context, rawURL string) error {
			f.urls = append(f.urls, rawURL)
			return nil
		}),
		action.WithCommandRunner(func(_ context.Context, _ string, _ ...string) error {
			return nil
		}))

	client := workflow.NewClient(reg, log)
	f.orch = NewOrchestrator(router, dispatcher, client, nil, log)
	return f
}

func (f *fixture) countingEndpoint(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.workflowCalls, 1)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleTurnWebSearch(t *testing.T) {
	f := newFixture(t,
		`{"type":"action","action":{"type":"web_search","params":{"query":"rust async patterns"}},"reply":"Searching now."}`,
		"")

	msg := f.orch.HandleTurn(context.Background(), "s1", "search for rust async patterns")
	require.NotNil(t, msg)
	assert.Equal(t, "Searching now.", msg.Content)
	assert.Equal(t, domain.KindActionRequest, msg.Kind)
	require.Len(t, f.urls, 1)
	assert.Contains(t, f.urls[0], "rust+async+patterns")
	assert.Zero(t, atomic.LoadInt64(&f.workflowCalls))
}

func TestHandleTurnWorkflowSuccess(t *testing.T) {
	var f *fixture
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.workflowCalls, 1)
		io.WriteString(w, `{"summary":"quarterly sync","decisions":["A"],"action_items":["B"]}`)
	}))
	defer srv.Close()

	f = newFixture(t,
		`{"type":"workflow","workflow_id":"MOM_GENERATOR","params":{"meeting_notes":"we discussed"},"reply":"Generating minutes."}`,
		srv.URL)

	msg := f.orch.HandleTurn(context.Background(), "s1", "here are my meeting notes")
	assert.Equal(t, "Generating minutes.", msg.Content)
	assert.False(t, msg.Failed)
	assert.JSONEq(t,
		`{"summary":"quarterly sync","decisions":["A"],"action_items":["B"]}`,
		string(msg.WorkflowResult))
	assert.Equal(t, int64(1), atomic.LoadInt64(&f.workflowCalls))

	// The stored history entry carries the workflow output too.
	history := f.router.History("s1")
	require.Len(t, history, 2)
	assert.JSONEq(t,
		`{"summary":"quarterly sync","decisions":["A"],"action_items":["B"]}`,
		string(history[1].WorkflowResult))
}

func TestHandleTurnWorkflowRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "internal error")
	}))
	defer srv.Close()

	f := newFixture(t,
		`{"type":"workflow","workflow_id":"MOM_GENERATOR","params":{"meeting_notes":"notes"},"reply":"Generating minutes."}`,
		srv.URL)

	msg := f.orch.HandleTurn(context.Background(), "s1", "notes")
	assert.True(t, msg.Failed)
	assert.Contains(t, msg.Content, "SYSTEM ERROR:")
	assert.Contains(t, msg.Content, "internal error")
	require.NotNil(t, msg.Original)
	assert.Equal(t, workflow.IDMOMGenerator, msg.Original.WorkflowID)
	assert.Empty(t, msg.WorkflowResult)
}

func TestHandleTurnWorkflowFailureReachesHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "internal error")
	}))
	defer srv.Close()

	f := newFixture(t,
		`{"type":"workflow","workflow_id":"MOM_GENERATOR","params":{"meeting_notes":"notes"},"reply":"Generating minutes."}`,
		srv.URL)

	f.orch.HandleTurn(context.Background(), "s1", "notes")

	// The next turn's context must see the failure, not the optimistic reply.
	history := f.router.History("s1")
	require.Len(t, history, 2)
	stored := history[1]
	assert.True(t, stored.Failed)
	assert.Contains(t, stored.Content, "SYSTEM ERROR:")
	assert.Contains(t, stored.Content, "internal error")
	require.NotNil(t, stored.Original)
	assert.Equal(t, workflow.IDMOMGenerator, stored.Original.WorkflowID)
}

func TestHandleTurnWorkflowUnconfigured(t *testing.T) {
	f := newFixture(t,
		`{"type":"workflow","workflow_id":"MOM_GENERATOR","params":{},"reply":"On it."}`,
		"")

	msg := f.orch.HandleTurn(context.Background(), "s1", "notes")
	assert.True(t, msg.Failed)
	assert.Contains(t, msg.Content, "SYSTEM ERROR:")
	assert.Contains(t, msg.Content, "not configured")
}

func TestHandleTurnWorkflowBlankID(t *testing.T) {
	f := newFixture(t, `{"type":"workflow","reply":"On it."}`, "")

	msg := f.orch.HandleTurn(context.Background(), "s1", "notes")
	assert.Equal(t, domain.KindWorkflowRequest, msg.Kind)
	assert.True(t, msg.Failed)
	assert.Contains(t, msg.Content, "SYSTEM ERROR:")
	assert.Contains(t, msg.Content, "not configured")
	assert.Zero(t, atomic.LoadInt64(&f.workflowCalls))
}

func TestHandleTurnPlainChat(t *testing.T) {
	f := newFixture(t, `{"type":"chat","reply":"Hello!"}`, "")

	msg := f.orch.HandleTurn(context.Background(), "s1", "hey")
	assert.Equal(t, domain.KindPlainText, msg.Kind)
	assert.Equal(t, "Hello!", msg.Content)
	assert.Empty(t, f.urls)
	assert.Zero(t, atomic.LoadInt64(&f.workflowCalls))
}

func TestHandleTurnActionFailureDoesNotAlterReply(t *testing.T) {
	log := logging.New(io.Discard, "error")
	cfg := config.Defaults()
	reg := workflow.NewRegistry(nil, log)
	mock := &llm.MockClient{
		CompleteFunc: func(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{
				Content: `{"type":"action","action":{"type":"teleport"},"reply":"Done!"}`,
			}, nil
		},
	}
	router := chat.NewIntentRouter(mock, reg, cfg.Assistant, cfg.LLM, log)
	dispatcher := action.NewDispatcher(cfg.Actions, log)
	orch := NewOrchestrator(router, dispatcher, workflow.NewClient(reg, log), nil, log)

	msg := orch.HandleTurn(context.Background(), "s1", "teleport me")
	assert.Equal(t, "Done!", msg.Content)
	assert.False(t, msg.Failed)
}

func TestHandleTurnEmitsHooks(t *testing.T) {
	log := logging.New(io.Discard, "error")
	cfg := config.Defaults()
	reg := workflow.NewRegistry(nil, log)
	mock := &llm.MockClient{
		CompleteFunc: func(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{
				Content: `{"type":"action","action":{"type":"web_search","params":{"query":"q"}},"reply":"ok"}`,
			}, nil
		},
	}
	router := chat.NewIntentRouter(mock, reg, cfg.Assistant, cfg.LLM, log)
	dispatcher := action.NewDispatcher(cfg.Actions, log,
		action.WithURLOpener(func(_ context.Context, _ string) error { return nil }))

	hookMgr := hooks.NewManager(log)
	var events []string
	for _, ev := range hooks.AllEvents {
		ev := ev
		hookMgr.On(ev, "recorder", func(_ context.Context, p hooks.Payload) error {
			events = append(events, p.Event)
			return nil
		})
	}

	orch := NewOrchestrator(router, dispatcher, workflow.NewClient(reg, log), hookMgr, log)
	orch.HandleTurn(context.Background(), "s1", "search q")

	assert.Equal(t, []string{hooks.EventActionExecuted, hooks.EventTurnCompleted}, events)
}

func TestClearSession(t *testing.T) {
	f := newFixture(t, `{"type":"chat","reply":"hi"}`, "")
	f.orch.HandleTurn(context.Background(), "s1", "hello")
	f.orch.ClearSession("s1")

	// A fresh turn starts from an empty window.
	msg := f.orch.HandleTurn(context.Background(), "s1", "again")
	require.NotNil(t, msg)
}
