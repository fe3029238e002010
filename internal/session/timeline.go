// timeline.go — ordered buffer of the in-flight turn's activity.
package session

import "sync"

// ActivityTimeline accumulates timeline steps for the current turn in
// arrival order. It never deduplicates and never caps; repeated research
// loops are part of the story being told.
type ActivityTimeline struct {
	mu     sync.Mutex
	events []ActivityEvent
}

// NewActivityTimeline returns an empty timeline.
func NewActivityTimeline() *ActivityTimeline {
	return &ActivityTimeline{}
}

// Append adds one step to the end of the timeline.
func (t *ActivityTimeline) Append(ev ActivityEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, ev)
}

// Snapshot returns a copy of the current steps. The returned slice is the
// caller's; later appends never show through.
func (t *ActivityTimeline) Snapshot() []ActivityEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.events) == 0 {
		return nil
	}
	return append([]ActivityEvent(nil), t.events...)
}

// Clear drops all buffered steps. Called at turn boundaries only.
func (t *ActivityTimeline) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}

// Len reports the number of buffered steps.
func (t *ActivityTimeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}
