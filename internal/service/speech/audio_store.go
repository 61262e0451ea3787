package speech

import "sync"

// Audio is a synthesized utterance held until the telephony layer fetches it.
type Audio struct {
	ID     string
	CallID string
	MIME   string
	Data   []byte
}

// AudioStore holds synthesized audio between synthesis and playback. An entry
// is acquired on synthesize and released when served once, or when its call
// ends, so a dropped call never leaks audio.
type AudioStore struct {
	mu     sync.Mutex
	audios map[string]*Audio
}

// NewAudioStore creates an empty store.
func NewAudioStore() *AudioStore {
	return &AudioStore{audios: make(map[string]*Audio)}
}

// Put registers synthesized audio under its identifier.
func (s *AudioStore) Put(a *Audio) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audios[a.ID] = a
}

// Take returns the audio and removes it from the store. Serving is the
// release: a second Take for the same identifier misses.
func (s *AudioStore) Take(id string) (*Audio, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.audios[id]
	if ok {
		delete(s.audios, id)
	}
	return a, ok
}

// ReleaseCall drops every pending entry belonging to the call and reports how
// many were released.
func (s *AudioStore) ReleaseCall(callID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := 0
	for id, a := range s.audios {
		if a.CallID == callID {
			delete(s.audios, id)
			released++
		}
	}
	return released
}

// Len reports how many entries are pending.
func (s *AudioStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audios)
}
