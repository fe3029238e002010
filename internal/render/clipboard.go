package render

import (
	"github.com/atotto/clipboard"

	"github.com/multi-agent/go-research-ui/pkg/logger"
)

// Copy writes text to the system clipboard. Best-effort: headless hosts
// have no clipboard and that is fine.
func Copy(text string) bool {
	if err := clipboard.WriteAll(text); err != nil {
		logger.Warn("clipboard copy failed", logger.FieldError, err)
		return false
	}
	return true
}
