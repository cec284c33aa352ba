package router

import (
	"github.com/gin-gonic/gin"

	"grapevine.app/firehose/internal/http/handler"
	"grapevine.app/firehose/internal/pipeline"
)

func SetupRoutes(router *gin.Engine, p *pipeline.Pipeline) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "pipeline": p.State().String()})
	})

	v1 := router.Group("/api/v1")
	{
		consumerHandler := handler.NewConsumerHandler(p.Registry(), p.Notifier())
		ConsumerRouter(v1.Group("/consumers"), consumerHandler)

		signalHandler := handler.NewSignalHandler(p.Gate())
		SignalRouter(v1.Group("/signals"), signalHandler)
	}
}

func ConsumerRouter(rg *gin.RouterGroup, h *handler.ConsumerHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.DELETE("/:id", h.Delete)
	rg.PUT("/:id/filter", h.UpdateFilter)
	rg.GET("/:id/events", h.Events)
	rg.GET("/:id/stream", h.Stream)
}

func SignalRouter(rg *gin.RouterGroup, h *handler.SignalHandler) {
	rg.POST("/scroll", h.Scroll)
}
