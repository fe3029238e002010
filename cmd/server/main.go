// main.go — gateway entrypoint: research backend client + HTTP API.
package main

import (
	"time"

	"github.com/multi-agent/go-research-ui/internal/agentstream"
	"github.com/multi-agent/go-research-ui/internal/config"
	"github.com/multi-agent/go-research-ui/internal/gateway"
	"github.com/multi-agent/go-research-ui/internal/session"
	"github.com/multi-agent/go-research-ui/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogEnv)

	client := agentstream.NewClient(cfg.BackendURL, time.Duration(cfg.BackendTimeoutSec)*time.Second)
	ctrl := session.NewController(client, cfg.ReasoningModel)
	client.SetSink(ctrl)

	srv := gateway.NewServer(ctrl, session.Effort(cfg.DefaultEffort))
	if err := srv.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("gateway exited", logger.FieldError, err)
	}
}
