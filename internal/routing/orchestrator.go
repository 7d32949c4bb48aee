// Package routing coordinates one conversation turn end to end: intent
// classification, side-effect dispatch, and result merging.
package routing

import (
	"context"
	"fmt"

	"github.com/valetapp/valet/internal/action"
	"github.com/valetapp/valet/internal/chat"
	"github.com/valetapp/valet/internal/domain"
	"github.com/valetapp/valet/internal/hooks"
	"github.com/valetapp/valet/internal/logging"
	"github.com/valetapp/valet/internal/workflow"
)

// Orchestrator is the per-turn request handler. It always returns exactly
// one assistant message; every failure path is rendered into that message.
type Orchestrator struct {
	router     *chat.IntentRouter
	dispatcher *action.Dispatcher
	workflows  *workflow.Client
	hooks      *hooks.Manager
	log        *logging.Logger
}

// NewOrchestrator wires the per-turn pipeline. The hook manager may be nil.
func NewOrchestrator(router *chat.IntentRouter, dispatcher *action.Dispatcher,
	workflows *workflow.Client, hookMgr *hooks.Manager, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		router:     router,
		dispatcher: dispatcher,
		workflows:  workflows,
		hooks:      hookMgr,
		log:        log.Sub("routing"),
	}
}

// HandleTurn processes one user message and returns the assistant's reply.
// Action failures are logged and never change the reply text. Workflow
// failures rewrite the reply into a system-error message with the original
// request preserved.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionKey, text string) *domain.ConversationMessage {
	msg := o.router.Process(ctx, sessionKey, text)

	switch msg.Kind {
	case domain.KindActionRequest:
		o.runAction(ctx, sessionKey, msg)
	case domain.KindWorkflowRequest:
		o.runWorkflow(ctx, msg)
		// The stored history entry must match what the caller sees, so
		// the next turn's context reflects the workflow outcome.
		o.router.CommitReply(sessionKey, msg)
	}

	o.emit(ctx, hooks.EventTurnCompleted, map[string]any{
		"session": sessionKey,
		"kind":    string(msg.Kind),
		"failed":  msg.Failed,
	})
	return msg
}

// runAction dispatches the classified local action. The reply text is never
// altered: local actions are convenience side effects, not contract-critical.
func (o *Orchestrator) runAction(ctx context.Context, sessionKey string, msg *domain.ConversationMessage) {
	if msg.Action == nil {
		o.log.Warn().Str("session", sessionKey).Msg("action message without action payload")
		return
	}

	res := o.dispatcher.Execute(ctx, *msg.Action)
	if !res.Success {
		o.log.Warn().Str("type", msg.Action.Type).Err(res.Err).Msg("local action failed")
	}

	data := map[string]any{
		"type":    msg.Action.Type,
		"success": res.Success,
	}
	if res.Err != nil {
		data["error"] = res.Err.Error()
	}
	o.emit(ctx, hooks.EventActionExecuted, data)
}

func (o *Orchestrator) runWorkflow(ctx context.Context, msg *domain.ConversationMessage) {
	if msg.Workflow == nil {
		o.log.Warn().Msg("workflow message without workflow payload")
		return
	}

	result, err := o.workflows.Run(ctx, msg.Workflow.WorkflowID, msg.Workflow.Params)
	if err != nil {
		o.log.Error().Str("workflow", msg.Workflow.WorkflowID).Err(err).Msg("workflow execution failed")
		msg.Original = msg.Workflow
		msg.Failed = true
		msg.Content = fmt.Sprintf("SYSTEM ERROR: %s. Please check your configuration or the workflow endpoint.", err)
		return
	}
	msg.WorkflowResult = result
}

func (o *Orchestrator) emit(ctx context.Context, event string, data map[string]any) {
	if o.hooks == nil {
		return
	}
	o.hooks.Emit(ctx, event, data)
}

// ClearSession resets one session's conversation window.
func (o *Orchestrator) ClearSession(sessionKey string) {
	o.router.ClearHistory(sessionKey)
}
