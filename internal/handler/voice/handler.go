package voice

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devashram/callseva/internal/config"
	"github.com/devashram/callseva/internal/model/call"
	"github.com/devashram/callseva/internal/observability/metrics"
	"github.com/devashram/callseva/internal/service/assistant"
	"github.com/devashram/callseva/internal/service/dialogue"
	"github.com/devashram/callseva/internal/service/speech"
	"github.com/devashram/callseva/internal/session"
	"github.com/devashram/callseva/pkg/logging"
)

const retryPrompt = "I'm sorry, something went wrong on our side. Please call us again. Namaste."

// Handler terminates the telephony vendor's webhooks: it owns no dialogue
// logic, only session lookup, engine invocation, and markup rendering.
type Handler struct {
	sessions session.Store
	engine   *dialogue.Engine
	tts      *speech.Service
	cfg      config.TelephonyConfig
	metrics  *metrics.CallMetrics
	logger   *logging.Logger
}

// New creates the voice webhook handler. tts may be nil; every prompt then
// uses the vendor's native voice.
func New(sessions session.Store, engine *dialogue.Engine, tts *speech.Service, cfg config.TelephonyConfig, m *metrics.CallMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		sessions: sessions,
		engine:   engine,
		tts:      tts,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
	}
}

// RegisterRoutes mounts the vendor webhook endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/voice/answer", h.handleAnswer)
	r.Post("/voice/turn", h.handleTurn)
	r.Post("/voice/dial", h.handleDialStatus)
	r.Post("/voice/status", h.handleCallStatus)
	r.Get("/voice/audio/{audioID}", h.handleAudio)
}

// handleAnswer runs when the vendor answers an inbound call: it creates the
// session and speaks the greeting.
func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	callID := r.FormValue("CallSid")
	if callID == "" {
		http.Error(w, "CallSid is required", http.StatusBadRequest)
		return
	}

	state := call.NewState(callID, assistant.SystemPrompt(), assistant.Greeting)
	if err := h.sessions.Create(r.Context(), state); err != nil {
		h.logger.WithCall(callID).Error("session create failed", "error", err)
		h.metrics.CallStarted("error")
		h.renderEndCall(r.Context(), w, callID, retryPrompt, "session_error")
		return
	}

	h.metrics.CallStarted("ok")
	say, play := h.voicePrompt(r.Context(), callID, assistant.Greeting)
	h.render(w, Response{Gather: gatherPrompt(say, play, "/voice/turn")})
}

// handleTurn runs on every transcribed caller utterance.
func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	callID := r.FormValue("CallSid")
	if callID == "" {
		http.Error(w, "CallSid is required", http.StatusBadRequest)
		return
	}

	state, err := h.sessions.Get(r.Context(), callID)
	if err != nil {
		h.logger.WithCall(callID).Error("turn for unknown session", "error", err)
		h.renderEndCall(r.Context(), w, callID, retryPrompt, "unknown_session")
		return
	}

	res := h.engine.ProcessTurn(r.Context(), state, r.FormValue("SpeechResult"))

	if err := h.sessions.Save(r.Context(), state); err != nil {
		if errors.Is(err, session.ErrUnknownSession) {
			// The session expired or was destroyed mid-turn; drop the result.
			h.renderEndCall(r.Context(), w, callID, retryPrompt, "unknown_session")
			return
		}
		h.logger.WithCall(callID).Error("session save failed", "error", err)
	}

	switch res.Directive {
	case call.DirectiveTransfer:
		say, play := h.voicePrompt(r.Context(), callID, res.AssistantText)
		h.render(w, Response{
			Say:  say,
			Play: play,
			Dial: &Dial{
				Timeout: h.cfg.DialTimeoutSeconds,
				Action:  "/voice/dial",
				Method:  "POST",
				Number:  Number{Text: h.cfg.OperatorNumber},
			},
		})
	case call.DirectiveHangup:
		h.endSession(r.Context(), callID, "declined")
		say, play := h.voicePrompt(r.Context(), callID, res.AssistantText)
		h.render(w, Response{Say: say, Play: play, Hangup: &Hangup{}})
	default:
		say, play := h.voicePrompt(r.Context(), callID, res.AssistantText)
		h.render(w, Response{Gather: gatherPrompt(say, play, "/voice/turn")})
	}
}

// handleDialStatus runs after an operator dial attempt finishes.
func (h *Handler) handleDialStatus(w http.ResponseWriter, r *http.Request) {
	callID := r.FormValue("CallSid")
	if callID == "" {
		http.Error(w, "CallSid is required", http.StatusBadRequest)
		return
	}

	state, err := h.sessions.Get(r.Context(), callID)
	if err != nil {
		h.logger.WithCall(callID).Error("dial status for unknown session", "error", err)
		h.renderEndCall(r.Context(), w, callID, retryPrompt, "unknown_session")
		return
	}

	completed := r.FormValue("DialCallStatus") == "completed"
	res := h.engine.HandleDialOutcome(state, completed)

	if completed {
		h.endSession(r.Context(), callID, "transferred")
		h.render(w, Response{Hangup: &Hangup{}})
		return
	}

	if err := h.sessions.Save(r.Context(), state); err != nil {
		h.logger.WithCall(callID).Error("session save failed", "error", err)
	}
	say, play := h.voicePrompt(r.Context(), callID, res.AssistantText)
	h.render(w, Response{Gather: gatherPrompt(say, play, "/voice/turn")})
}

// handleCallStatus runs when the vendor reports the call has left the line:
// hangup, failure, or cancellation. In-flight capability calls for the call
// are abandoned through their request contexts; here we only reap state.
func (h *Handler) handleCallStatus(w http.ResponseWriter, r *http.Request) {
	callID := r.FormValue("CallSid")
	if callID == "" {
		http.Error(w, "CallSid is required", http.StatusBadRequest)
		return
	}

	switch r.FormValue("CallStatus") {
	case "completed", "busy", "failed", "no-answer", "canceled":
		h.endSession(r.Context(), callID, "disconnected")
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAudio serves one synthesized utterance and releases it.
func (h *Handler) handleAudio(w http.ResponseWriter, r *http.Request) {
	store := h.tts.Audio()
	if store == nil {
		http.NotFound(w, r)
		return
	}

	audio, ok := store.Take(chi.URLParam(r, "audioID"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", audio.MIME)
	_, _ = w.Write(audio.Data)
}

// voicePrompt synthesizes text when TTS is available, otherwise leaves
// speaking to the vendor. Exactly one of the results is non-nil for a
// non-empty text.
func (h *Handler) voicePrompt(ctx context.Context, callID, text string) (*Say, *Play) {
	if text == "" {
		return nil, nil
	}
	if audio := h.tts.Synthesize(ctx, callID, text); audio != nil {
		return nil, &Play{URL: h.cfg.PublicBaseURL + "/voice/audio/" + audio.ID}
	}
	return &Say{Text: text}, nil
}

func (h *Handler) endSession(ctx context.Context, callID, outcome string) {
	if err := h.sessions.Destroy(ctx, callID); err != nil {
		h.logger.WithCall(callID).Error("session destroy failed", "error", err)
	}
	h.tts.ReleaseCall(callID)
	h.metrics.CallEnded(outcome)
}

func (h *Handler) renderEndCall(ctx context.Context, w http.ResponseWriter, callID, text, outcome string) {
	h.endSession(ctx, callID, outcome)
	say, play := h.voicePrompt(ctx, callID, text)
	h.render(w, Response{Say: say, Play: play, Hangup: &Hangup{}})
}

func (h *Handler) render(w http.ResponseWriter, resp Response) {
	body, err := resp.Render()
	if err != nil {
		http.Error(w, "failed to render response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(body)
}
