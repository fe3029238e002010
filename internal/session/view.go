// view.go — projection of session state into render-ready entries.
package session

// Entry is one render-ready conversation item. Human entries carry content
// only; assistant entries additionally carry the activity timeline that
// produced them (live while streaming, archived afterwards) and, on the
// newest answer only, the auxiliary payload.
type Entry struct {
	MessageID string          `json:"message_id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Activity  []ActivityEvent `json:"activity,omitempty"`
	Live      bool            `json:"live,omitempty"`
	Pending   bool            `json:"pending,omitempty"`
	Auxiliary *YouTubeResults `json:"auxiliary,omitempty"`
}

// BuildEntries projects the transcript into render entries. It is a pure
// function of its inputs: nothing is mutated and the output shares no
// slices with the stores.
//
// While a turn is loading and the newest message is human, a pending
// assistant entry is synthesized to carry the live timeline, so the UI has
// somewhere to render progress before any answer text exists.
func BuildEntries(transcript []Message, live []ActivityEvent, archive *ArchiveStore, aux *YouTubeResults, loading bool) []Entry {
	entries := make([]Entry, 0, len(transcript)+1)

	for i, msg := range transcript {
		entry := Entry{MessageID: msg.ID, Role: msg.Role, Content: msg.Content}
		if msg.Role == RoleAssistant {
			last := i == len(transcript)-1
			if last && loading {
				entry.Activity = append([]ActivityEvent(nil), live...)
				entry.Live = true
			} else if archived, ok := archive.Lookup(msg.ID); ok {
				entry.Activity = archived
			}
		}
		entries = append(entries, entry)
	}

	if loading && len(transcript) > 0 && transcript[len(transcript)-1].Role == RoleHuman {
		entries = append(entries, Entry{
			Role:     RoleAssistant,
			Activity: append([]ActivityEvent(nil), live...),
			Live:     true,
			Pending:  true,
		})
	}

	// The auxiliary payload belongs to the newest answer only; older
	// entries never resurrect a stale side panel.
	if aux != nil && len(entries) > 0 {
		last := &entries[len(entries)-1]
		if last.Role == RoleAssistant {
			payload := aux.clone()
			last.Auxiliary = &payload
		}
	}

	return entries
}
