package handlers

import (
	"github.com/mcm-alerts/mcm-alerts/internal/services"
	"go.uber.org/zap"
)

var (
	logger = zap.NewNop()
	push   *services.PushSender
)

// Configure wires the package with its logger and push sender. Must be
// called before the router starts serving; tests may call it with test
// doubles.
func Configure(log *zap.Logger, sender *services.PushSender) {
	if log != nil {
		logger = log
	}
	push = sender
}
