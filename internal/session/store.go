package session

import (
	"context"
	"errors"

	"github.com/devashram/callseva/internal/model/call"
)

var (
	// ErrDuplicateSession means a call identifier is already live.
	ErrDuplicateSession = errors.New("session already exists")
	// ErrUnknownSession means no live session exists for the identifier,
	// either because it was never created, was destroyed, or has expired.
	ErrUnknownSession = errors.New("session not found")
)

// Store owns dialogue state keyed by call identifier. Implementations must
// apply an inactivity expiry so no turn is ever processed against a stale
// state, and must serialize create/get/destroy per call.
type Store interface {
	// Create registers state for a new call. Fails with ErrDuplicateSession
	// if the call is already live.
	Create(ctx context.Context, state *call.State) error
	// Get returns the state for a live call, refreshing its activity
	// timestamp. Fails with ErrUnknownSession if absent or expired.
	Get(ctx context.Context, callID string) (*call.State, error)
	// Save persists state mutated by the dialogue engine.
	Save(ctx context.Context, state *call.State) error
	// Destroy removes the session. Destroying an unknown session is a no-op.
	Destroy(ctx context.Context, callID string) error
}
