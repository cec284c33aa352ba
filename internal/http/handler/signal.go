package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"grapevine.app/firehose/internal/pipeline"
)

// SignalHandler receives fire-and-forget flow-control signals from any
// presentation surface.
type SignalHandler struct {
	gate *pipeline.Gate
}

func NewSignalHandler(gate *pipeline.Gate) *SignalHandler {
	return &SignalHandler{gate: gate}
}

// Scroll reports user scroll activity. Dispatch to every consumer is
// suspended for the cooldown window; repeated signals extend it.
func (h *SignalHandler) Scroll(c *gin.Context) {
	h.gate.Signal()
	slog.DebugContext(c.Request.Context(), "scroll signal received")
	c.Status(http.StatusAccepted)
}
