// archive.go — frozen per-answer activity timelines.
package session

import (
	"sync"

	"github.com/multi-agent/go-research-ui/pkg/logger"
)

// ArchiveStore maps completed assistant message ids to the activity
// sequence that produced them. Entries are written exactly once and never
// removed for the lifetime of the session.
type ArchiveStore struct {
	mu      sync.Mutex
	entries map[string][]ActivityEvent
}

// NewArchiveStore returns an empty archive.
func NewArchiveStore() *ArchiveStore {
	return &ArchiveStore{entries: map[string][]ActivityEvent{}}
}

// Record freezes events under messageID. A second record for the same id is
// a logic fault upstream: it is logged and dropped, the first write wins.
func (a *ArchiveStore) Record(messageID string, events []ActivityEvent) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.entries[messageID]; exists {
		logger.Error("archive already recorded for message",
			logger.FieldMessageID, messageID,
			logger.FieldCount, len(events),
		)
		return false
	}
	a.entries[messageID] = append([]ActivityEvent(nil), events...)
	return true
}

// Lookup returns a copy of the archived timeline for messageID.
func (a *ArchiveStore) Lookup(messageID string) ([]ActivityEvent, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	events, ok := a.entries[messageID]
	if !ok {
		return nil, false
	}
	return append([]ActivityEvent(nil), events...), true
}

// Len reports the number of archived messages.
func (a *ArchiveStore) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}
