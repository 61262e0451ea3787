package speech

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devashram/callseva/internal/config"
	"github.com/devashram/callseva/pkg/logging"
)

// Service is the text-to-speech capability. Synthesis failure is never fatal:
// a nil result tells the telephony layer to fall back to its native voice.
type Service struct {
	cfg    config.SpeechConfig
	client *vendorTTSClient
	store  *AudioStore
	logger *logging.Logger
}

// NewService creates the speech service. With synthesis disabled in the
// configuration every request takes the fallback path.
func NewService(cfg config.SpeechConfig, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		cfg:    cfg,
		client: newVendorTTSClient(cfg),
		store:  NewAudioStore(),
		logger: logger,
	}
}

// Synthesize renders text to audio and parks it in the audio store for the
// telephony layer to fetch. It returns nil when synthesis is disabled or
// fails; the caller then speaks via the telephony vendor's own voice.
func (s *Service) Synthesize(ctx context.Context, callID, text string) *Audio {
	if s == nil || !s.cfg.Enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	data, err := s.client.synthesize(ctx, text)
	if err != nil {
		s.logger.WithCall(callID).Warn("tts synthesis failed, falling back to native voice", "error", err)
		return nil
	}

	audio := &Audio{
		ID:     uuid.NewString(),
		CallID: callID,
		MIME:   mimeFor(s.cfg.Format),
		Data:   data,
	}
	s.store.Put(audio)
	return audio
}

// Audio exposes the store so the handler layer can serve and release entries.
func (s *Service) Audio() *AudioStore {
	if s == nil {
		return nil
	}
	return s.store
}

// ReleaseCall drops any audio still pending for an ended call.
func (s *Service) ReleaseCall(callID string) {
	if s == nil {
		return
	}
	if released := s.store.ReleaseCall(callID); released > 0 {
		s.logger.WithCall(callID).Debug("released pending audio", "count", released)
	}
}

func mimeFor(format string) string {
	switch format {
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	default:
		return "audio/mpeg"
	}
}
