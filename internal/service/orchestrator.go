// Package service implements the conversation core and the operations built
// around it: sessions, one-shot prompts and the saved content library.
package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/contentpilot/internal/llm"
	"github.com/raphaelgruber/contentpilot/internal/metrics"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/raphaelgruber/contentpilot/internal/parser"
	"github.com/raphaelgruber/contentpilot/internal/prompt"
)

// State is one conversation: its committed messages and the selections that
// apply to the next turn.
type State struct {
	Messages []models.ChatMessage `json:"messages"`
	Mode     models.Mode          `json:"mode"`
	Platform *models.Platform     `json:"platform,omitempty"`
}

// NewState returns an empty conversation in mode with an optional platform.
func NewState(mode models.Mode, platform *models.Platform) State {
	if mode == "" {
		mode = models.DefaultMode
	}
	return State{Messages: []models.ChatMessage{}, Mode: mode, Platform: platform}
}

// IsFirstTurn reports whether no message has been committed yet.
func (s State) IsFirstTurn() bool {
	return len(s.Messages) == 0
}

// Turn is one user submission against a State.
type Turn struct {
	Prompt string        `json:"prompt"`
	Image  *models.Image `json:"image,omitempty"`
}

// Outcome is the result of a turn. Err is set on failure; Reply is nil then.
type Outcome struct {
	User      *models.ChatMessage `json:"user,omitempty"`
	Reply     *models.ChatMessage `json:"reply,omitempty"`
	Extracted bool                `json:"extracted"`
	Usage     llm.Usage           `json:"usage"`
	Err       error               `json:"-"`
}

// Request is a prepared turn waiting for dispatch.
type Request struct {
	SystemPrompt string
	History      []models.HistoryTurn
	Instruction  string
	Image        *models.Image
	Mode         models.Mode
	Profile      prompt.Profile
	User         models.ChatMessage

	started time.Time
}

// OrchestratorConfig holds optional collaborators. Zero values get defaults.
type OrchestratorConfig struct {
	Composer *prompt.Composer
	Limits   Limits
	Metrics  *metrics.Collector
	Logger   *slog.Logger
}

// Orchestrator runs turns against a model adapter. It holds no conversation
// state and is safe for concurrent use.
type Orchestrator struct {
	adapter  llm.Adapter
	composer *prompt.Composer
	limits   Limits
	metrics  *metrics.Collector
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(adapter llm.Adapter, cfg OrchestratorConfig) *Orchestrator {
	if cfg.Composer == nil {
		cfg.Composer = prompt.Default()
	}
	cfg.Limits = cfg.Limits.withDefaults()
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Orchestrator{
		adapter:  adapter,
		composer: cfg.Composer,
		limits:   cfg.Limits,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// Limits returns the turn limits in effect.
func (o *Orchestrator) Limits() Limits {
	return o.limits
}

// Prepare validates the turn, composes the request and appends the user
// message. On error the state is returned unchanged and nothing is dispatched.
func (o *Orchestrator) Prepare(state State, turn Turn) (State, *Request, error) {
	profile, err := o.composer.Profile(state.Mode)
	if err != nil {
		return state, nil, err
	}

	image, err := o.limits.validateTurn(turn)
	if err != nil {
		o.count(metrics.CountValidationRejected)
		return state, nil, err
	}
	if state.IsFirstTurn() && profile.RequiresImageOnFirstTurn && image == nil {
		o.count(metrics.CountValidationRejected)
		return state, nil, ErrImageRequired
	}

	var platform *models.Platform
	if profile.UsesPlatform {
		platform = state.Platform
	}

	user := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Content:   turn.Prompt,
		Image:     image,
		CreatedAt: o.now(),
	}

	req := &Request{
		SystemPrompt: profile.SystemPrompt,
		History:      ToHistoryTurns(state.Messages),
		Instruction:  prompt.UserInstruction(turn.Prompt, platform),
		Image:        image,
		Mode:         state.Mode,
		Profile:      profile,
		User:         user,
		started:      o.now(),
	}

	next := state
	next.Messages = append(slices.Clone(state.Messages), user)
	return next, req, nil
}

// Dispatch performs the single adapter call for a prepared turn.
// Adapter failures are returned as *AdapterError.
func (o *Orchestrator) Dispatch(ctx context.Context, req *Request) (llm.Response, error) {
	resp, err := o.adapter.ChatWithContext(ctx, req.SystemPrompt, req.History, req.Instruction, req.Image)
	if err != nil {
		return llm.Response{}, &AdapterError{Err: err}
	}
	return resp, nil
}

// Complete post-processes the adapter result and commits the assistant
// message. On a dispatch error the state is returned unchanged.
func (o *Orchestrator) Complete(state State, req *Request, resp llm.Response, dispatchErr error) (State, Outcome) {
	user := req.User
	out := Outcome{User: &user}

	if o.metrics != nil {
		o.metrics.RecordTurn(string(req.Mode), o.now().Sub(req.started))
	}

	if dispatchErr != nil {
		o.count(metrics.CountTurnFailed)
		o.logger.Warn("turn failed", "mode", req.Mode, "error", dispatchErr)
		out.Err = dispatchErr
		return state, out
	}

	reply := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleAssistant,
		Content:   resp.Data,
		CreatedAt: o.now(),
	}

	if req.Profile.AttemptsExtraction {
		if sc, ok := parser.TryParseStructured(resp.Data); ok {
			reply.Content = parser.FormatDisplay(sc)
			reply.Structured = &sc
			out.Extracted = true
			o.count(metrics.CountExtractionHit)
		} else {
			o.count(metrics.CountExtractionMiss)
			o.logger.Debug("structured extraction missed, keeping raw reply", "reply_len", len(resp.Data))
		}
	}

	next := state
	next.Messages = append(slices.Clone(state.Messages), reply)

	out.Reply = &reply
	out.Usage = resp.Usage

	o.logger.Info("turn completed",
		"mode", req.Mode,
		"history", len(req.History),
		"image", req.Image != nil,
		"extracted", out.Extracted,
	)
	return next, out
}

// Step runs a whole turn as a transition from state to the next state.
// Errors never escape: they are carried on the Outcome.
func (o *Orchestrator) Step(ctx context.Context, state State, turn Turn) (State, Outcome) {
	next, req, err := o.Prepare(state, turn)
	if err != nil {
		return state, Outcome{Err: err}
	}

	resp, err := o.Dispatch(ctx, req)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return next, o.abandon(req, ctxErr)
	}

	return o.Complete(next, req, resp, err)
}

// Submit runs a stateless submission: the conversation is rebuilt from the
// supplied history and the resulting state is returned to the caller.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) (State, Outcome) {
	if err := sub.Validate(); err != nil {
		o.count(metrics.CountValidationRejected)
		return State{}, Outcome{Err: err}
	}

	state := NewState(sub.Mode, sub.Platform)
	state.Messages = MessagesFromHistory(sub.History)

	return o.Step(ctx, state, Turn{Prompt: sub.Prompt, Image: sub.Image})
}

func (o *Orchestrator) abandon(req *Request, cause error) Outcome {
	user := req.User
	o.logger.Info("turn abandoned", "mode", req.Mode, "cause", cause)
	return Outcome{User: &user, Err: errors.Join(ErrTurnAbandoned, cause)}
}

func (o *Orchestrator) count(name string) {
	if o.metrics != nil {
		o.metrics.Increment(name)
	}
}
