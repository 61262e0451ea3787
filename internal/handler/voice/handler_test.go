package voice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devashram/callseva/internal/config"
	"github.com/devashram/callseva/internal/model/call"
	"github.com/devashram/callseva/internal/service/dialogue"
	"github.com/devashram/callseva/internal/session"
)

type scriptedModel struct {
	replies []dialogue.Reply
	calls   int
}

func (m *scriptedModel) Converse(_ context.Context, _ []call.Turn) (dialogue.Reply, error) {
	idx := m.calls
	m.calls++
	if idx >= len(m.replies) {
		return dialogue.Reply{Kind: dialogue.ReplyText, Text: "namaste"}, nil
	}
	return m.replies[idx], nil
}

type noopSink struct{}

func (noopSink) Save(_ context.Context, _ string, _ call.Draft) error { return nil }

func setup(t *testing.T, model dialogue.LanguageModel) (*chi.Mux, session.Store) {
	t.Helper()

	sessions := session.NewMemoryStore(time.Minute)
	engine := dialogue.NewEngine(model, noopSink{}, dialogue.NewPolicy(3), 10, nil, nil)
	cfg := config.TelephonyConfig{OperatorNumber: "+15550123", DialTimeoutSeconds: 20}
	handler := New(sessions, engine, nil, cfg, nil, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, sessions
}

func post(t *testing.T, r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func answerCall(t *testing.T, r http.Handler, callID string) *httptest.ResponseRecorder {
	t.Helper()
	return post(t, r, "/voice/answer", url.Values{"CallSid": {callID}})
}

func TestAnswerCreatesSessionAndGreets(t *testing.T) {
	r, sessions := setup(t, &scriptedModel{})

	resp := answerCall(t, r, "call-1")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/xml", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Body.String(), "<Gather")
	assert.Contains(t, resp.Body.String(), "Namaste")

	state, err := sessions.Get(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, call.PhaseGreeting, state.Phase)
}

func TestAnswerRequiresCallSid(t *testing.T) {
	r, _ := setup(t, &scriptedModel{})

	resp := post(t, r, "/voice/answer", url.Values{})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAnswerDuplicateCallEndsCall(t *testing.T) {
	r, _ := setup(t, &scriptedModel{})

	answerCall(t, r, "call-1")
	resp := answerCall(t, r, "call-1")

	assert.Contains(t, resp.Body.String(), "<Hangup")
}

func TestTurnSpeaksAndGathersAgain(t *testing.T) {
	model := &scriptedModel{replies: []dialogue.Reply{{Kind: dialogue.ReplyText, Text: "we open at six"}}}
	r, sessions := setup(t, model)
	answerCall(t, r, "call-1")

	resp := post(t, r, "/voice/turn", url.Values{
		"CallSid":      {"call-1"},
		"SpeechResult": {"when do you open?"},
	})

	assert.Contains(t, resp.Body.String(), "we open at six")
	assert.Contains(t, resp.Body.String(), `action="/voice/turn"`)

	state, err := sessions.Get(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, call.PhaseActive, state.Phase)
	assert.Len(t, state.Transcript, 4)
}

func TestTurnUnknownSessionEndsCall(t *testing.T) {
	r, _ := setup(t, &scriptedModel{})

	resp := post(t, r, "/voice/turn", url.Values{
		"CallSid":      {"ghost"},
		"SpeechResult": {"hello?"},
	})

	assert.Contains(t, resp.Body.String(), "<Hangup")
	assert.Contains(t, resp.Body.String(), "something went wrong")
}

func TestTurnEscalationDialsOperator(t *testing.T) {
	model := &scriptedModel{replies: []dialogue.Reply{{Kind: dialogue.ReplyEscalation}}}
	r, sessions := setup(t, model)
	answerCall(t, r, "call-1")

	resp := post(t, r, "/voice/turn", url.Values{
		"CallSid":      {"call-1"},
		"SpeechResult": {"I need a person"},
	})

	body := resp.Body.String()
	assert.Contains(t, body, "<Dial")
	assert.Contains(t, body, "+15550123")
	assert.Contains(t, body, `timeout="20"`)
	assert.Contains(t, body, `action="/voice/dial"`)

	state, err := sessions.Get(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, call.PhaseTransferring, state.Phase)
}

func TestDialStatusFailedResumesConversation(t *testing.T) {
	model := &scriptedModel{replies: []dialogue.Reply{{Kind: dialogue.ReplyEscalation}}}
	r, sessions := setup(t, model)
	answerCall(t, r, "call-1")
	post(t, r, "/voice/turn", url.Values{"CallSid": {"call-1"}, "SpeechResult": {"a person please"}})

	resp := post(t, r, "/voice/dial", url.Values{
		"CallSid":        {"call-1"},
		"DialCallStatus": {"no-answer"},
	})

	assert.Contains(t, resp.Body.String(), "<Gather")

	state, err := sessions.Get(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, call.PhaseActive, state.Phase)
}

func TestDialStatusCompletedDestroysSession(t *testing.T) {
	model := &scriptedModel{replies: []dialogue.Reply{{Kind: dialogue.ReplyEscalation}}}
	r, sessions := setup(t, model)
	answerCall(t, r, "call-1")
	post(t, r, "/voice/turn", url.Values{"CallSid": {"call-1"}, "SpeechResult": {"a person please"}})

	resp := post(t, r, "/voice/dial", url.Values{
		"CallSid":        {"call-1"},
		"DialCallStatus": {"completed"},
	})

	assert.Contains(t, resp.Body.String(), "<Hangup")

	_, err := sessions.Get(context.Background(), "call-1")
	assert.ErrorIs(t, err, session.ErrUnknownSession)
}

func TestCallStatusCompletedReapsSession(t *testing.T) {
	r, sessions := setup(t, &scriptedModel{})
	answerCall(t, r, "call-1")

	resp := post(t, r, "/voice/status", url.Values{
		"CallSid":    {"call-1"},
		"CallStatus": {"completed"},
	})

	assert.Equal(t, http.StatusNoContent, resp.Code)

	_, err := sessions.Get(context.Background(), "call-1")
	assert.ErrorIs(t, err, session.ErrUnknownSession)
}

func TestTurnAfterDisconnectRejected(t *testing.T) {
	r, _ := setup(t, &scriptedModel{})
	answerCall(t, r, "call-1")
	post(t, r, "/voice/status", url.Values{"CallSid": {"call-1"}, "CallStatus": {"completed"}})

	resp := post(t, r, "/voice/turn", url.Values{
		"CallSid":      {"call-1"},
		"SpeechResult": {"still there?"},
	})

	assert.Contains(t, resp.Body.String(), "<Hangup")
}

func TestAudioMissing(t *testing.T) {
	r, _ := setup(t, &scriptedModel{})

	req := httptest.NewRequest(http.MethodGet, "/voice/audio/nope", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}
