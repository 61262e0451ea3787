package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/devashram/callseva/internal/model/call"
	"github.com/devashram/callseva/internal/observability/metrics"
	"github.com/devashram/callseva/pkg/logging"
)

const (
	clarificationPrompt = "Sorry, I didn't catch that. Could you please say that again?"
	transferPrompt      = "Of course, let me connect you with our front desk. Please hold."
	declinePrompt       = "I'm sorry, our front desk is not reachable at the moment. Please call us again a little later. Namaste."
	dialFailedPrompt    = "I'm sorry, I couldn't reach the front desk. Is there anything else I can help you with?"
	storageApology      = "I'm sorry, I couldn't record your booking just now. Could you bear with me and try once more?"
)

// fieldPrompts maps the draft's missing-field names to how the assistant asks
// for them, in the caller-facing wording.
var fieldPrompts = map[string]string{
	"name":         "your name",
	"email":        "your email address",
	"phone":        "your phone number",
	"service name": "which puja you'd like to book",
}

// Result is what one processed turn hands back to the telephony layer.
type Result struct {
	AssistantText string
	Directive     call.Directive
}

// Engine orchestrates a single dialogue turn: it feeds the transcript to the
// language model, folds extracted booking fields into the draft, persists
// completed bookings, and applies the escalation policy. Every turn ends in a
// spoken response, a transfer, or a hangup; no path leaves the caller in
// silence.
type Engine struct {
	model        LanguageModel
	sink         BookingSink
	policy       *Policy
	historyLimit int
	metrics      *metrics.CallMetrics
	logger       *logging.Logger
}

// NewEngine wires the dialogue engine. model may be nil when the assistant
// backend is not configured; every turn then escalates toward a human.
func NewEngine(model LanguageModel, sink BookingSink, policy *Policy, historyLimit int, m *metrics.CallMetrics, logger *logging.Logger) *Engine {
	if policy == nil {
		policy = NewPolicy(MaxTransferAttempts)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		model:        model,
		sink:         sink,
		policy:       policy,
		historyLimit: historyLimit,
		metrics:      m,
		logger:       logger,
	}
}

// ProcessTurn advances the call by one turn. It mutates state in place:
// exactly one User turn is appended for a non-empty utterance, and at most
// one Assistant turn regardless of the branch taken. An empty utterance is
// answered with a clarification prompt without touching the transcript or
// invoking the model.
func (e *Engine) ProcessTurn(ctx context.Context, state *call.State, utterance string) Result {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return e.finish(state, Result{AssistantText: clarificationPrompt, Directive: call.DirectiveSpeak})
	}

	state.AppendUser(utterance)

	reply, err := e.converse(ctx, state)
	if err != nil {
		e.logger.WithCall(state.CallID).Warn("model unavailable, escalating", "error", err)
		return e.finish(state, e.escalate(state))
	}

	switch reply.Kind {
	case ReplyFields:
		return e.finish(state, e.applyExtraction(ctx, state, reply.Fields))
	case ReplyEscalation:
		return e.finish(state, e.escalate(state))
	default:
		state.AppendAssistant(reply.Text)
		state.Phase = call.PhaseActive
		return e.finish(state, Result{AssistantText: reply.Text, Directive: call.DirectiveSpeak})
	}
}

// HandleDialOutcome applies the telephony layer's transfer result. A
// completed transfer ends the call; a failed one puts the caller back into
// the conversation with a re-prompt, keeping the session alive.
func (e *Engine) HandleDialOutcome(state *call.State, completed bool) Result {
	if completed {
		state.Phase = call.PhaseEnded
		return Result{Directive: call.DirectiveHangup}
	}

	state.Phase = call.PhaseActive
	return Result{AssistantText: dialFailedPrompt, Directive: call.DirectiveSpeak}
}

func (e *Engine) converse(ctx context.Context, state *call.State) (Reply, error) {
	if e.model == nil {
		return Reply{}, fmt.Errorf("%w: no model configured", ErrModelUnavailable)
	}

	start := time.Now()
	reply, err := e.model.Converse(ctx, state.Window(e.historyLimit))
	e.metrics.ObserveModelLatency(time.Since(start).Seconds())
	return reply, err
}

func (e *Engine) applyExtraction(ctx context.Context, state *call.State, fields call.Draft) Result {
	state.Draft = call.Merge(state.Draft, fields)

	if !state.Draft.IsComplete() {
		question := askFor(state.Draft.Missing())
		state.AppendAssistant(question)
		state.Phase = call.PhaseAwaitingBookingInfo
		return Result{AssistantText: question, Directive: call.DirectiveSpeak}
	}

	draft := state.Draft
	if err := e.sink.Save(ctx, state.CallID, draft); err != nil {
		// The caller must not be told of false success; the draft stays.
		e.logger.WithCall(state.CallID).Error("booking save failed", "error", err)
		e.metrics.BookingSaved("error")
		state.AppendAssistant(storageApology)
		state.Phase = call.PhaseActive
		return Result{AssistantText: storageApology, Directive: call.DirectiveSpeak}
	}

	e.metrics.BookingSaved("ok")
	state.Draft = call.Draft{}
	confirmation := fmt.Sprintf(
		"Wonderful, %s. Your booking for %s is confirmed. We'll send the details to %s. Is there anything else I can help you with?",
		draft.Name, draft.ServiceName, draft.Email,
	)
	state.AppendAssistant(confirmation)
	state.Phase = call.PhaseActive
	return Result{AssistantText: confirmation, Directive: call.DirectiveSpeak}
}

func (e *Engine) escalate(state *call.State) Result {
	action := e.policy.Decide(state)
	e.metrics.Escalation(string(action))

	if action == ActionDecline {
		state.AppendAssistant(declinePrompt)
		state.Phase = call.PhaseEnded
		return Result{AssistantText: declinePrompt, Directive: call.DirectiveHangup}
	}

	state.AppendAssistant(transferPrompt)
	state.Phase = call.PhaseTransferring
	return Result{AssistantText: transferPrompt, Directive: call.DirectiveTransfer}
}

func (e *Engine) finish(state *call.State, res Result) Result {
	e.metrics.TurnProcessed(string(res.Directive))
	return res
}

// askFor phrases a single question covering every missing booking field in
// fixed order. With exactly one field missing the question names only it.
func askFor(missing []string) string {
	parts := make([]string, 0, len(missing))
	for _, field := range missing {
		parts = append(parts, fieldPrompts[field])
	}

	var list string
	switch len(parts) {
	case 1:
		list = parts[0]
	case 2:
		list = parts[0] + " and " + parts[1]
	default:
		list = strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}

	return fmt.Sprintf("I'd be glad to arrange that. Could you tell me %s?", list)
}
