// client.go — HTTP+SSE wire client for the research backend.
//
// One Submit opens one streaming run: POST /runs/stream carries the
// transcript plus the research configuration, and the response body is an
// SSE stream of node updates ending in a completion frame. The read loop
// delivers everything to the Sink tagged with the turn id it belongs to;
// the session layer decides what is stale. Cancel is a best-effort POST,
// the backend may still flush buffered frames afterwards.
package agentstream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerr "github.com/multi-agent/go-research-ui/pkg/errors"
	"github.com/multi-agent/go-research-ui/pkg/logger"
	"github.com/multi-agent/go-research-ui/pkg/util"

	"github.com/multi-agent/go-research-ui/internal/session"
)

// Frame event names on the wire.
const (
	frameUpdate   = "update"
	frameComplete = "complete"
	frameError    = "error"
)

// Sink receives everything a run produces. Implemented by the session
// controller.
type Sink interface {
	HandleEvent(turnID string, ev session.RawEvent)
	HandleCompletion(turnID, messageID, content string)
	HandleError(turnID string, err error)
}

// submitRequest is the POST /runs/stream body.
type submitRequest struct {
	RunID                   string            `json:"run_id"`
	Messages                []session.Message `json:"messages"`
	InitialSearchQueryCount int               `json:"initial_search_query_count"`
	MaxResearchLoops        int               `json:"max_research_loops"`
	ReasoningModel          string            `json:"reasoning_model"`
}

// streamFrame is one decoded SSE data frame.
type streamFrame struct {
	Event   string          `json:"event"`
	Node    string          `json:"node,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message *frameMessage   `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type frameMessage struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Client talks to one research backend. Safe for sequential turns; the
// session layer guarantees at most one run is in flight.
type Client struct {
	baseURL string
	http    *http.Client
	sink    Sink
}

// NewClient builds a client for the backend at baseURL. The timeout bounds
// the whole run, research loops included.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetSink wires the receiver of run output. Must be set before Submit;
// controller and client reference each other, so construction is two-phase.
func (c *Client) SetSink(s Sink) {
	c.sink = s
}

// Submit starts a streaming run and returns once the stream is open. Frames
// are delivered to the sink from a background read loop.
func (c *Client) Submit(ctx context.Context, turnID string, transcript []session.Message, cfg session.BackendConfig) error {
	if c.sink == nil {
		return pkgerr.New("Client.Submit", "sink not set")
	}

	body, err := json.Marshal(submitRequest{
		RunID:                   turnID,
		Messages:                transcript,
		InitialSearchQueryCount: cfg.InitialSearchQueryCount,
		MaxResearchLoops:        cfg.MaxResearchLoops,
		ReasoningModel:          cfg.ReasoningModel,
	})
	if err != nil {
		return pkgerr.Wrap(err, "Client.Submit", "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/runs/stream", bytes.NewReader(body))
	if err != nil {
		return pkgerr.Wrap(err, "Client.Submit", "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerr.Wrap(pkgerr.ErrUnavailable, "Client.Submit", err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return pkgerr.Newf("Client.Submit", "backend returned %d", resp.StatusCode)
	}

	logger.Info("run stream opened",
		logger.FieldRunID, turnID,
		logger.FieldURL, c.baseURL,
	)
	util.SafeGo(func() { c.readLoop(turnID, resp.Body) })
	return nil
}

// Cancel asks the backend to stop a run. Best-effort: the caller has
// already discarded the turn locally.
func (c *Client) Cancel(ctx context.Context, turnID string) error {
	url := fmt.Sprintf("%s/runs/%s/cancel", c.baseURL, turnID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return pkgerr.Wrap(err, "Client.Cancel", "build request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerr.Wrap(pkgerr.ErrUnavailable, "Client.Cancel", err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return pkgerr.Newf("Client.Cancel", "backend returned %d", resp.StatusCode)
	}
	return nil
}

// readLoop drains one SSE stream and forwards frames to the sink. Exits on
// the completion frame, an error frame, or stream end.
func (c *Client) readLoop(turnID string, body io.ReadCloser) {
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		raw := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if raw == "" || raw == "[DONE]" {
			continue
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(raw), &frame); err != nil {
			logger.Warn("skipping malformed stream frame",
				logger.FieldRunID, turnID,
				logger.FieldRaw, util.Truncate(raw, 200),
				logger.FieldError, err,
			)
			continue
		}

		switch frame.Event {
		case frameUpdate:
			c.sink.HandleEvent(turnID, session.RawEvent{Kind: frame.Node, Payload: frame.Data})

		case frameComplete:
			var id, content string
			if frame.Message != nil {
				id = frame.Message.ID
				content = frame.Message.Content
			}
			c.sink.HandleCompletion(turnID, id, content)
			return

		case frameError:
			c.sink.HandleError(turnID, pkgerr.New("Client.readLoop", frame.Error))
			return

		default:
			logger.Debug("ignoring unknown frame event",
				logger.FieldRunID, turnID,
				"event", frame.Event,
			)
		}
	}

	err := scanner.Err()
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	c.sink.HandleError(turnID, pkgerr.Wrap(err, "Client.readLoop", "stream ended early"))
}
