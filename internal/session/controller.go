// controller.go — turn lifecycle state machine for one conversation.
//
// One controller owns one session: the transcript, the live timeline, the
// archive and the auxiliary store. All mutation funnels through its mutex;
// readers only ever receive copies. Transport callbacks carry the turn id
// they belong to, and anything stamped with an old id is dropped silently,
// which is what makes Cancel safe against a still-draining stream.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	pkgerr "github.com/multi-agent/go-research-ui/pkg/errors"
	"github.com/multi-agent/go-research-ui/pkg/logger"
)

// ErrTurnInFlight is returned by Submit while a previous turn is loading.
// Callers must Cancel first.
var ErrTurnInFlight = errors.New("turn already in flight")

// State is the controller's lifecycle position.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateStreaming  State = "streaming"
	StateTerminal   State = "terminal" // finalize seen, waiting for the answer text
)

// Effort selects how much research the backend performs per turn.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// BackendConfig is the per-turn research configuration sent to the backend.
type BackendConfig struct {
	InitialSearchQueryCount int    `json:"initial_search_query_count"`
	MaxResearchLoops        int    `json:"max_research_loops"`
	ReasoningModel          string `json:"reasoning_model"`
}

// configForEffort maps the effort selector onto backend knobs. Unknown
// values fall back to medium.
func configForEffort(effort Effort, model string) BackendConfig {
	cfg := BackendConfig{InitialSearchQueryCount: 3, MaxResearchLoops: 3, ReasoningModel: model}
	switch effort {
	case EffortLow:
		cfg.InitialSearchQueryCount = 1
		cfg.MaxResearchLoops = 1
	case EffortHigh:
		cfg.InitialSearchQueryCount = 5
		cfg.MaxResearchLoops = 10
	}
	return cfg
}

// Transport submits turns to the research backend and cancels them. The
// transport reports results back through the controller's Handle* methods.
type Transport interface {
	Submit(ctx context.Context, turnID string, transcript []Message, cfg BackendConfig) error
	Cancel(ctx context.Context, turnID string) error
}

// Controller drives the turn lifecycle: Idle → Submitting → Streaming →
// Terminal → Idle.
type Controller struct {
	transport Transport
	model     string

	mu         sync.Mutex
	state      State
	turnID     string
	transcript []Message

	timeline  *ActivityTimeline
	archive   *ArchiveStore
	auxiliary *AuxiliaryResultStore

	onChange func() // invoked after every state change, outside the lock
}

// NewController wires a controller over the given transport. model is the
// reasoning model name passed through to the backend.
func NewController(transport Transport, model string) *Controller {
	return &Controller{
		transport: transport,
		model:     model,
		state:     StateIdle,
		timeline:  NewActivityTimeline(),
		archive:   NewArchiveStore(),
		auxiliary: NewAuxiliaryResultStore(),
	}
}

// SetOnChange registers a callback fired after each state change. Used by
// push surfaces (SSE, websocket, TUI) to re-render.
func (c *Controller) SetOnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Submit starts a new turn with the given input and effort. It rejects
// empty input and in-flight turns; the caller must Cancel before retrying.
// Returns the new turn id.
func (c *Controller) Submit(ctx context.Context, text string, effort Effort) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", pkgerr.Wrap(pkgerr.ErrInvalidInput, "Controller.Submit", "empty input")
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return "", ErrTurnInFlight
	}

	turnID := uuid.NewString()
	c.turnID = turnID
	c.state = StateSubmitting
	c.timeline.Clear()
	c.auxiliary.Clear()
	c.transcript = append(c.transcript, Message{
		ID:      uuid.NewString(),
		Role:    RoleHuman,
		Content: trimmed,
	})
	transcript := append([]Message(nil), c.transcript...)
	cfg := configForEffort(effort, c.model)
	c.mu.Unlock()

	logger.Info("turn submitted",
		logger.FieldTurnID, turnID,
		logger.FieldEffort, string(effort),
	)

	if err := c.transport.Submit(ctx, turnID, transcript, cfg); err != nil {
		c.mu.Lock()
		if c.turnID == turnID {
			c.turnID = ""
			c.state = StateIdle
			c.timeline.Clear()
		}
		c.mu.Unlock()
		c.notify()
		return "", pkgerr.Wrap(err, "Controller.Submit", "submit turn")
	}

	c.notify()
	return turnID, nil
}

// HandleEvent folds one streamed update into the session. Events carrying a
// turn id other than the active one are stale (the turn was cancelled or
// already completed) and are dropped.
func (c *Controller) HandleEvent(turnID string, ev RawEvent) {
	c.mu.Lock()
	if c.turnID == "" || turnID != c.turnID {
		c.mu.Unlock()
		logger.Debug("dropping stale event",
			logger.FieldTurnID, turnID,
			logger.FieldEventKind, ev.Kind,
		)
		return
	}

	if c.state == StateSubmitting {
		c.state = StateStreaming
	}

	cls := Classify(ev)
	if cls.Activity != nil {
		c.timeline.Append(*cls.Activity)
	}
	if cls.Auxiliary != nil {
		c.auxiliary.Update(*cls.Auxiliary, turnID)
	}
	if cls.Terminal {
		c.state = StateTerminal
	}
	changed := !cls.Ignored()
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// HandleCompletion finishes the turn with the final assistant message. The
// live timeline is archived under the answer's id only when the finalize
// step was seen; a turn that ended without one (a pure side-channel turn)
// completes with no archive entry.
func (c *Controller) HandleCompletion(turnID, messageID, content string) {
	c.mu.Lock()
	if c.turnID == "" || turnID != c.turnID {
		c.mu.Unlock()
		logger.Debug("dropping stale completion", logger.FieldTurnID, turnID)
		return
	}

	id := messageID
	if id == "" {
		id = uuid.NewString()
		logger.Warn("completion without message id, assigning one",
			logger.FieldTurnID, turnID,
			logger.FieldMessageID, id,
		)
	}
	c.transcript = append(c.transcript, Message{ID: id, Role: RoleAssistant, Content: content})

	if c.state == StateTerminal {
		c.archive.Record(id, c.timeline.Snapshot())
	}
	c.timeline.Clear()
	c.turnID = ""
	c.state = StateIdle
	c.mu.Unlock()

	logger.Info("turn completed",
		logger.FieldTurnID, turnID,
		logger.FieldMessageID, id,
	)
	c.notify()
}

// HandleError aborts the turn after a transport failure. Nothing is
// archived; the human message stays in the transcript so the user can see
// what failed and retry. The auxiliary payload, if any, is kept.
func (c *Controller) HandleError(turnID string, err error) {
	c.mu.Lock()
	if c.turnID == "" || turnID != c.turnID {
		c.mu.Unlock()
		return
	}
	c.timeline.Clear()
	c.turnID = ""
	c.state = StateIdle
	c.mu.Unlock()

	logger.Error("turn failed",
		logger.FieldTurnID, turnID,
		logger.FieldError, err,
	)
	c.notify()
}

// Cancel abandons the in-flight turn: the buffer is dropped, the auxiliary
// store is cleared and the turn id is discarded so late events fall on the
// floor. The backend cancel is best-effort. No-op while Idle.
func (c *Controller) Cancel(ctx context.Context) {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	turnID := c.turnID
	c.turnID = ""
	c.state = StateIdle
	c.timeline.Clear()
	c.auxiliary.Clear()
	c.mu.Unlock()

	if err := c.transport.Cancel(ctx, turnID); err != nil {
		logger.Warn("backend cancel failed",
			logger.FieldTurnID, turnID,
			logger.FieldError, err,
		)
	}
	logger.Info("turn cancelled", logger.FieldTurnID, turnID)
	c.notify()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading reports whether a turn is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateIdle
}

// Transcript returns a copy of the conversation so far.
func (c *Controller) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.transcript...)
}

// Timeline returns a snapshot of the live activity buffer.
func (c *Controller) Timeline() []ActivityEvent {
	return c.timeline.Snapshot()
}

// Archive exposes the archive store for read access.
func (c *Controller) Archive() *ArchiveStore {
	return c.archive
}

// Auxiliary returns the current auxiliary payload, if any.
func (c *Controller) Auxiliary() (AuxiliaryResult, bool) {
	return c.auxiliary.Current()
}

// Entries projects the whole session into render-ready entries.
func (c *Controller) Entries() []Entry {
	c.mu.Lock()
	transcript := append([]Message(nil), c.transcript...)
	loading := c.state != StateIdle
	c.mu.Unlock()

	live := c.timeline.Snapshot()
	var aux *YouTubeResults
	if res, ok := c.auxiliary.Current(); ok {
		payload := res.Payload
		aux = &payload
	}
	return BuildEntries(transcript, live, c.archive, aux, loading)
}
