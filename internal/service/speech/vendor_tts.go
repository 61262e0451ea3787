package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/devashram/callseva/internal/config"
)

// vendorTTSClient synthesizes speech over the vendor's websocket streaming
// API: one JSON request per connection, audio returned as base64 chunks, a
// negative sequence marking the final chunk.
type vendorTTSClient struct {
	cfg    config.SpeechConfig
	dialer *websocket.Dialer
}

func newVendorTTSClient(cfg config.SpeechConfig) *vendorTTSClient {
	return &vendorTTSClient{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

type ttsRequest struct {
	ReqID      string  `json:"reqid"`
	Text       string  `json:"text"`
	Voice      string  `json:"voice"`
	Format     string  `json:"format"`
	SampleRate int     `json:"sample_rate"`
	SpeedRatio float32 `json:"speed_ratio,omitempty"`
}

type ttsServerMessage struct {
	ReqID    string `json:"reqid"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Data     string `json:"data"`
}

// synthesize runs one request/response cycle against the vendor. The
// context's deadline bounds the whole exchange.
func (c *vendorTTSClient) synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("tts: text is empty")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	conn, resp, err := c.dialer.DialContext(ctx, c.cfg.BaseURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("tts: dial failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("tts: dial failed: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	req := ttsRequest{
		ReqID:      uuid.NewString(),
		Text:       text,
		Voice:      c.cfg.Voice,
		Format:     c.cfg.Format,
		SampleRate: c.cfg.SampleRate,
		SpeedRatio: c.cfg.Speed,
	}
	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("tts: send request: %w", err)
	}

	var audio []byte
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("tts: read response: %w", err)
		}

		var msg ttsServerMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			return nil, fmt.Errorf("tts: decode response: %w", err)
		}
		if msg.Code != 0 {
			return nil, fmt.Errorf("tts: vendor error %d: %s", msg.Code, msg.Message)
		}

		if msg.Data != "" {
			chunk, err := base64.StdEncoding.DecodeString(msg.Data)
			if err != nil {
				return nil, fmt.Errorf("tts: decode audio chunk: %w", err)
			}
			audio = append(audio, chunk...)
		}

		// A negative sequence marks the final chunk.
		if msg.Sequence < 0 {
			break
		}
	}

	if len(audio) == 0 {
		return nil, fmt.Errorf("tts: vendor returned no audio")
	}
	return audio, nil
}
