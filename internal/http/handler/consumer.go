package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"grapevine.app/firehose/common/logger"
	"grapevine.app/firehose/internal/http/dto"
	"grapevine.app/firehose/internal/pipeline"
)

// ConsumerHandler exposes the registry operations: splits are created,
// reconfigured, and closed through here, and their retention buffers
// are read through here.
type ConsumerHandler struct {
	registry *pipeline.Registry
	notifier *pipeline.Notifier
}

func NewConsumerHandler(registry *pipeline.Registry, notifier *pipeline.Notifier) *ConsumerHandler {
	return &ConsumerHandler{registry: registry, notifier: notifier}
}

func (h *ConsumerHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateConsumerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	handle := h.registry.Add(req.Filter)
	slog.InfoContext(ctx, "consumer created",
		"consumer_id", handle,
		"filter", req.Filter)

	c.JSON(http.StatusCreated, dto.ConsumerResponse{
		ID:     strconv.FormatInt(handle, 10),
		Role:   string(pipeline.RoleSecondary),
		Filter: req.Filter,
	})
}

func (h *ConsumerHandler) List(c *gin.Context) {
	infos := h.registry.List()
	out := make([]dto.ConsumerResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, dto.ToConsumerResponse(info))
	}
	c.JSON(http.StatusOK, gin.H{"consumers": out})
}

func (h *ConsumerHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	handle, ok := parseHandle(c)
	if !ok {
		return
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{ConsumerID: logger.Ptr(handle)})

	switch err := h.registry.Remove(handle); {
	case errors.Is(err, pipeline.ErrPrimaryConsumer):
		c.JSON(http.StatusConflict, gin.H{"error": "primary consumer cannot be removed"})
	case errors.Is(err, pipeline.ErrConsumerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "consumer not found"})
	case err != nil:
		slog.ErrorContext(ctx, "failed to remove consumer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove consumer"})
	default:
		slog.InfoContext(ctx, "consumer removed")
		c.Status(http.StatusNoContent)
	}
}

func (h *ConsumerHandler) UpdateFilter(c *gin.Context) {
	ctx := c.Request.Context()

	handle, ok := parseHandle(c)
	if !ok {
		return
	}

	var req dto.UpdateFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.registry.UpdateFilter(handle, req.Filter); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "consumer not found"})
		return
	}

	slog.InfoContext(ctx, "consumer filter updated",
		"consumer_id", handle,
		"filter", req.Filter)
	c.Status(http.StatusNoContent)
}

func (h *ConsumerHandler) Events(c *gin.Context) {
	handle, ok := parseHandle(c)
	if !ok {
		return
	}

	events, err := h.registry.Events(handle)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "consumer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": dto.ToEventResponses(events)})
}

// Stream pushes the consumer's retention snapshot over SSE after every
// dispatch that delivered to it. The pipeline itself never waits on
// this; a slow client just sees fewer intermediate snapshots.
func (h *ConsumerHandler) Stream(c *gin.Context) {
	handle, ok := parseHandle(c)
	if !ok {
		return
	}

	if _, err := h.registry.Events(handle); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "consumer not found"})
		return
	}

	updates, cancel := h.notifier.Subscribe(handle)
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-updates:
		}

		events, err := h.registry.Events(handle)
		if err != nil {
			// Consumer was removed while streaming.
			return false
		}
		c.SSEvent("events", gin.H{"events": dto.ToEventResponses(events)})
		return true
	})
}

func parseHandle(c *gin.Context) (int64, bool) {
	handle, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid consumer id"})
		return 0, false
	}
	return handle, true
}
