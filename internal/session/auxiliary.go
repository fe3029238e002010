// auxiliary.go — latest-wins store for side-channel results.
package session

import "sync"

// AuxiliaryResult is the current side payload plus its provenance.
type AuxiliaryResult struct {
	Payload YouTubeResults `json:"payload"`
	TurnID  string         `json:"turn_id"`
	Version uint64         `json:"version"`
}

// AuxiliaryResultStore holds at most one auxiliary payload: the newest one.
// Versions are strictly increasing for the lifetime of the session, across
// Clear, so consumers can detect replacement without comparing payloads.
type AuxiliaryResultStore struct {
	mu      sync.Mutex
	current *AuxiliaryResult
	version uint64
}

// NewAuxiliaryResultStore returns an empty store.
func NewAuxiliaryResultStore() *AuxiliaryResultStore {
	return &AuxiliaryResultStore{}
}

// Update replaces the current payload unconditionally, stamping the next
// version.
func (s *AuxiliaryResultStore) Update(payload YouTubeResults, turnID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	s.current = &AuxiliaryResult{
		Payload: payload.clone(),
		TurnID:  turnID,
		Version: s.version,
	}
}

// Current returns a copy of the stored payload, if any.
func (s *AuxiliaryResultStore) Current() (AuxiliaryResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return AuxiliaryResult{}, false
	}
	out := *s.current
	out.Payload = s.current.Payload.clone()
	return out, true
}

// Clear drops the payload. The version counter survives.
func (s *AuxiliaryResultStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
