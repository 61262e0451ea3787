// Package booking hands completed booking drafts to the front desk. Bookings
// are not stored by this service; the desk owns its own records, so the sink
// notifies rather than persists.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/devashram/callseva/internal/model/call"
	"github.com/devashram/callseva/pkg/logging"
)

// ErrStorage reports that a completed booking could not be handed off.
var ErrStorage = errors.New("booking could not be stored")

// FormatSummary renders a booking draft as the one-line summary sent to the
// front desk.
func FormatSummary(callID string, draft call.Draft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New puja booking (call %s)\n", callID)
	fmt.Fprintf(&b, "Name: %s\n", draft.Name)
	fmt.Fprintf(&b, "Email: %s\n", draft.Email)
	fmt.Fprintf(&b, "Phone: %s\n", draft.Phone)
	fmt.Fprintf(&b, "Service: %s", draft.ServiceName)
	return b.String()
}

// DeskNotifier implements the dialogue engine's BookingSink by posting the
// booking to the front desk webhook. Without a configured webhook the booking
// is only logged, which suits single-desk deployments where staff read the
// structured log feed.
type DeskNotifier struct {
	webhookURL string
	client     *http.Client
	logger     *logging.Logger
}

// NewDeskNotifier creates a sink that notifies the front desk.
func NewDeskNotifier(webhookURL string, logger *logging.Logger) *DeskNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &DeskNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type deskPayload struct {
	CallID      string `json:"callId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ServiceName string `json:"serviceName"`
	Summary     string `json:"summary"`
}

// Save hands the booking to the front desk. A webhook failure surfaces as
// ErrStorage so the engine can apologize instead of confirming falsely.
func (n *DeskNotifier) Save(ctx context.Context, callID string, draft call.Draft) error {
	summary := FormatSummary(callID, draft)
	n.logger.WithCall(callID).Info("booking completed",
		"name", draft.Name,
		"service", draft.ServiceName,
	)

	if n.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(deskPayload{
		CallID:      callID,
		Name:        draft.Name,
		Email:       draft.Email,
		Phone:       draft.Phone,
		ServiceName: draft.ServiceName,
		Summary:     summary,
	})
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrStorage, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrStorage, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: desk webhook returned %d", ErrStorage, resp.StatusCode)
	}
	return nil
}

// MemorySink collects bookings in memory for tests and local runs.
type MemorySink struct {
	Bookings []call.Draft
}

func (s *MemorySink) Save(_ context.Context, _ string, draft call.Draft) error {
	s.Bookings = append(s.Bookings, draft)
	return nil
}
