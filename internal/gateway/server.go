// server.go — HTTP gateway for web frontends.
//
// One gateway process owns one session. Frontends submit queries and cancel
// turns over plain JSON routes and receive render-ready view snapshots over
// SSE or a websocket; every push carries the whole view, so clients never
// reconcile deltas.
package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	pkgerr "github.com/multi-agent/go-research-ui/pkg/errors"
	"github.com/multi-agent/go-research-ui/pkg/logger"
	"github.com/multi-agent/go-research-ui/pkg/util"

	"github.com/multi-agent/go-research-ui/internal/render"
	"github.com/multi-agent/go-research-ui/internal/session"
)

const keepaliveInterval = 30 * time.Second

// Server exposes the session over HTTP.
type Server struct {
	engine        *gin.Engine
	ctrl          *session.Controller
	bus           *EventBus
	defaultEffort session.Effort
	upgrader      websocket.Upgrader
}

// NewServer wires the gateway over a controller. Controller changes are
// published to the bus so every connected client re-renders.
func NewServer(ctrl *session.Controller, defaultEffort session.Effort) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine:        gin.New(),
		ctrl:          ctrl,
		bus:           NewEventBus(),
		defaultEffort: defaultEffort,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.engine.Use(gin.Recovery())

	ctrl.SetOnChange(func() {
		s.bus.Publish(Event{Type: "view", Data: s.viewPayload()})
	})

	api := s.engine.Group("/api")
	api.POST("/session/messages", s.submitHandler)
	api.POST("/session/cancel", s.cancelHandler)
	api.GET("/session/view", s.viewHandler)
	api.GET("/session/events", s.sseHandler)
	api.GET("/session/ws", s.wsHandler)
	api.GET("/render/config", s.renderConfigHandler)

	return s
}

// Run serves the gateway on addr, blocking.
func (s *Server) Run(addr string) error {
	logger.Info("gateway listening", logger.FieldAddr, addr)
	return s.engine.Run(addr)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) viewPayload() gin.H {
	return gin.H{
		"state":   s.ctrl.State(),
		"entries": s.ctrl.Entries(),
	}
}

type submitBody struct {
	Text   string `json:"text"`
	Effort string `json:"effort"`
}

func (s *Server) submitHandler(c *gin.Context) {
	var body submitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	effort := s.defaultEffort
	if body.Effort != "" {
		effort = session.Effort(body.Effort)
	}

	turnID, err := s.ctrl.Submit(c.Request.Context(), body.Text, effort)
	switch {
	case errors.Is(err, session.ErrTurnInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "a turn is already in flight"})
		return
	case errors.Is(err, pkgerr.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "input must not be empty"})
		return
	case err != nil:
		logger.Error("submit failed", logger.FieldError, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend submit failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"turn_id": turnID})
}

func (s *Server) cancelHandler(c *gin.Context) {
	s.ctrl.Cancel(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (s *Server) viewHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.viewPayload())
}

func (s *Server) renderConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"markup": render.ConfigTable()})
}

func (s *Server) sseHandler(c *gin.Context) {
	clientID := fmt.Sprintf("sse-%d", time.Now().UnixNano())
	ch := s.bus.Subscribe(clientID)
	defer func() {
		s.bus.Unsubscribe(clientID)
		logger.Info("sse client disconnected", "client_id", clientID)
	}()

	logger.Info("sse client connected", "client_id", clientID)
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")

	// First frame is the current view, so a reconnecting client is whole
	// before the next change arrives.
	c.SSEvent("view", s.viewPayload())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		keepalive := time.NewTimer(keepaliveInterval)
		defer keepalive.Stop()

		select {
		case evt, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(evt.Type, evt.Data)
			return true
		case <-keepalive.C:
			c.SSEvent("ping", "keepalive")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (s *Server) wsHandler(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", logger.FieldError, err)
		return
	}
	defer conn.Close()

	clientID := fmt.Sprintf("ws-%d", time.Now().UnixNano())
	ch := s.bus.Subscribe(clientID)
	defer s.bus.Unsubscribe(clientID)

	logger.Info("ws client connected", "client_id", clientID)

	// Reader only detects disconnect; clients send nothing meaningful.
	done := make(chan struct{})
	util.SafeGo(func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	if err := conn.WriteJSON(gin.H{"type": "view", "data": s.viewPayload()}); err != nil {
		return
	}

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()
	for {
		select {
		case evt := <-ch:
			if err := conn.WriteJSON(gin.H{"type": evt.Type, "data": evt.Data}); err != nil {
				return
			}
		case <-keepalive.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			logger.Info("ws client disconnected", "client_id", clientID)
			return
		}
	}
}
