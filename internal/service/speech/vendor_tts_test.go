package speech

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devashram/callseva/internal/config"
)

type ttsScript func(t *testing.T, conn *websocket.Conn, req ttsRequest)

func newTTSServer(t *testing.T, script ttsScript) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var req ttsRequest
		require.NoError(t, conn.ReadJSON(&req))
		script(t, conn, req)
	}))
}

func testSpeechConfig(url string) config.SpeechConfig {
	return config.SpeechConfig{
		Enabled:        true,
		BaseURL:        "ws" + strings.TrimPrefix(url, "http"),
		AccessToken:    "token",
		Voice:          "en_female_warm",
		Format:         "mp3",
		SampleRate:     24000,
		TimeoutSeconds: 5,
	}
}

func TestSynthesizeAssemblesChunks(t *testing.T) {
	srv := newTTSServer(t, func(t *testing.T, conn *websocket.Conn, req ttsRequest) {
		assert.Equal(t, "hello caller", req.Text)
		assert.Equal(t, "en_female_warm", req.Voice)

		chunks := []struct {
			seq  int
			data string
		}{
			{1, "first-"},
			{2, "second-"},
			{-1, "last"},
		}
		for _, c := range chunks {
			msg := ttsServerMessage{
				ReqID:    req.ReqID,
				Sequence: c.seq,
				Data:     base64.StdEncoding.EncodeToString([]byte(c.data)),
			}
			require.NoError(t, conn.WriteJSON(msg))
		}
	})
	defer srv.Close()

	client := newVendorTTSClient(testSpeechConfig(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	audio, err := client.synthesize(ctx, "hello caller")
	require.NoError(t, err)
	assert.Equal(t, "first-second-last", string(audio))
}

func TestSynthesizeVendorError(t *testing.T) {
	srv := newTTSServer(t, func(t *testing.T, conn *websocket.Conn, req ttsRequest) {
		msg := ttsServerMessage{ReqID: req.ReqID, Code: 4001, Message: "quota exceeded"}
		require.NoError(t, conn.WriteJSON(msg))
	})
	defer srv.Close()

	client := newVendorTTSClient(testSpeechConfig(srv.URL))
	_, err := client.synthesize(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4001")
}

func TestSynthesizeEmptyText(t *testing.T) {
	client := newVendorTTSClient(config.SpeechConfig{Enabled: true})
	_, err := client.synthesize(context.Background(), "   ")
	require.Error(t, err)
}

func TestSynthesizeNoAudio(t *testing.T) {
	srv := newTTSServer(t, func(t *testing.T, conn *websocket.Conn, req ttsRequest) {
		msg := ttsServerMessage{ReqID: req.ReqID, Sequence: -1}
		require.NoError(t, conn.WriteJSON(msg))
	})
	defer srv.Close()

	client := newVendorTTSClient(testSpeechConfig(srv.URL))
	_, err := client.synthesize(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no audio")
}

func TestServiceFallsBackWhenDisabled(t *testing.T) {
	svc := NewService(config.SpeechConfig{Enabled: false}, nil)
	assert.Nil(t, svc.Synthesize(context.Background(), "call-1", "hello"))
}

func TestServiceFallsBackWhenVendorUnreachable(t *testing.T) {
	cfg := testSpeechConfig("http://127.0.0.1:1")
	svc := NewService(cfg, nil)
	assert.Nil(t, svc.Synthesize(context.Background(), "call-1", "hello"))
}

func TestServiceStoresSynthesizedAudio(t *testing.T) {
	srv := newTTSServer(t, func(t *testing.T, conn *websocket.Conn, req ttsRequest) {
		msg := ttsServerMessage{
			ReqID:    req.ReqID,
			Sequence: -1,
			Data:     base64.StdEncoding.EncodeToString([]byte("mp3-bytes")),
		}
		require.NoError(t, conn.WriteJSON(msg))
	})
	defer srv.Close()

	svc := NewService(testSpeechConfig(srv.URL), nil)
	audio := svc.Synthesize(context.Background(), "call-1", "hello")
	require.NotNil(t, audio)
	assert.Equal(t, "audio/mpeg", audio.MIME)

	stored, ok := svc.Audio().Take(audio.ID)
	require.True(t, ok)
	assert.Equal(t, []byte("mp3-bytes"), stored.Data)
}
