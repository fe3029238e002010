// Package config loads the application configuration.
//
// Every field declares its environment mapping via struct tags:
//
//	`env:"VAR_NAME" default:"value" min:"0"`
//
// Load() fills the struct through reflection; no per-field wiring.
package config

import (
	"github.com/multi-agent/go-research-ui/pkg/util"
)

// Config holds the process-wide settings, one field per env variable.
type Config struct {
	// Research backend
	BackendURL        string `env:"RESEARCH_BACKEND_URL" default:"http://127.0.0.1:2024"`
	BackendTimeoutSec int    `env:"RESEARCH_BACKEND_TIMEOUT_SEC" default:"300" min:"1"`

	// Gateway
	ListenAddr string `env:"GATEWAY_LISTEN_ADDR" default:":8080"`

	// Session defaults
	DefaultEffort  string `env:"DEFAULT_EFFORT" default:"medium"`
	ReasoningModel string `env:"REASONING_MODEL" default:"gemini-2.5-pro"`

	// Logging
	LogEnv string `env:"LOG_ENV" default:"production"`
}

// Load fills the configuration from environment variables.
func Load() *Config {
	var cfg Config
	util.LoadFromEnv(&cfg)
	return &cfg
}
