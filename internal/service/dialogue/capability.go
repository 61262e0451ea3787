package dialogue

import (
	"context"
	"errors"

	"github.com/devashram/callseva/internal/model/call"
)

// ErrModelUnavailable reports that the language model could not produce a
// usable reply: transport failure, timeout, or malformed output. The engine
// recovers by escalating, never by surfacing the error to the caller.
var ErrModelUnavailable = errors.New("language model unavailable")

// ReplyKind discriminates the model capability's tagged result. The engine
// never inspects natural-language text for control signals; the capability
// boundary translates the exact escalation sentinel into ReplyEscalation.
type ReplyKind int

const (
	// ReplyText is a plain conversational answer to speak to the caller.
	ReplyText ReplyKind = iota
	// ReplyEscalation means the model emitted the escalation sentinel and a
	// human should take over.
	ReplyEscalation
	// ReplyFields carries booking field values extracted via the declared
	// function schema.
	ReplyFields
)

// Reply is the language model's answer for one turn.
type Reply struct {
	Kind   ReplyKind
	Text   string
	Fields call.Draft
}

// LanguageModel is the conversational capability the engine drives. Converse
// receives the capped transcript, already ending with the caller's newest
// utterance, and must respect ctx for its bounded per-turn timeout.
type LanguageModel interface {
	Converse(ctx context.Context, transcript []call.Turn) (Reply, error)
}

// BookingSink persists a completed booking draft.
type BookingSink interface {
	Save(ctx context.Context, callID string, draft call.Draft) error
}
