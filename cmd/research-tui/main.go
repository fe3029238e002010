// main.go — terminal client entrypoint.
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/multi-agent/go-research-ui/internal/agentstream"
	"github.com/multi-agent/go-research-ui/internal/config"
	"github.com/multi-agent/go-research-ui/internal/session"
	"github.com/multi-agent/go-research-ui/pkg/logger"
)

func main() {
	cfg := config.Load()
	if err := logger.InitWithFile(".research-tui/logs"); err != nil {
		fmt.Fprintln(os.Stderr, "log init failed:", err)
		os.Exit(1)
	}
	defer logger.ShutdownFileHandler()

	client := agentstream.NewClient(cfg.BackendURL, time.Duration(cfg.BackendTimeoutSec)*time.Second)
	ctrl := session.NewController(client, cfg.ReasoningModel)
	client.SetSink(ctrl)

	p := tea.NewProgram(
		newAppModel(ctrl, session.Effort(cfg.DefaultEffort)),
		tea.WithAltScreen(),
	)
	ctrl.SetOnChange(func() { p.Send(refreshMsg{}) })

	if _, err := p.Run(); err != nil {
		logger.ShutdownFileHandler()
		fmt.Fprintln(os.Stderr, "tui exited:", err)
		os.Exit(1)
	}
}
