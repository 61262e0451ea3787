package call

import "time"

// Phase tracks where a call is in its lifecycle.
type Phase string

const (
	PhaseGreeting             Phase = "greeting"
	PhaseActive               Phase = "active"
	PhaseAwaitingBookingInfo  Phase = "awaiting_booking_info"
	PhaseTransferring         Phase = "transferring"
	PhaseEnded                Phase = "ended"
)

// Role attributes a transcript turn to its speaker.
type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Turn is a single message in the call transcript.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Directive tells the telephony layer what to do after a turn.
type Directive string

const (
	DirectiveSpeak    Directive = "speak"
	DirectiveTransfer Directive = "transfer"
	DirectiveHangup   Directive = "hangup"
)

// State is the per-call dialogue state. It is owned by the session store for
// the lifetime of one call and mutated only by the dialogue engine, one turn
// at a time.
type State struct {
	CallID           string    `json:"callId"`
	Phase            Phase     `json:"phase"`
	Transcript       []Turn    `json:"transcript"`
	Draft            Draft     `json:"draft"`
	TransferAttempts int       `json:"transferAttempts"`
	StartedAt        time.Time `json:"startedAt"`
	LastActivityAt   time.Time `json:"lastActivityAt"`
}

// NewState creates the state for a freshly answered call. The transcript
// always starts with the system instruction followed by the spoken greeting.
func NewState(callID, systemPrompt, greeting string) *State {
	now := time.Now().UTC()
	return &State{
		CallID: callID,
		Phase:  PhaseGreeting,
		Transcript: []Turn{
			{Role: RoleSystem, Text: systemPrompt},
			{Role: RoleAssistant, Text: greeting},
		},
		StartedAt:      now,
		LastActivityAt: now,
	}
}

// AppendUser records the caller's utterance on the transcript.
func (s *State) AppendUser(text string) {
	s.Transcript = append(s.Transcript, Turn{Role: RoleUser, Text: text})
}

// AppendAssistant records the assistant's utterance on the transcript.
func (s *State) AppendAssistant(text string) {
	s.Transcript = append(s.Transcript, Turn{Role: RoleAssistant, Text: text})
}

// Window returns the transcript capped for a model invocation: the system
// turn plus at most limit of the most recent turns. A limit <= 0 returns the
// full transcript.
func (s *State) Window(limit int) []Turn {
	if limit <= 0 || len(s.Transcript) <= limit+1 {
		return s.Transcript
	}

	window := make([]Turn, 0, limit+1)
	window = append(window, s.Transcript[0])
	window = append(window, s.Transcript[len(s.Transcript)-limit:]...)
	return window
}
