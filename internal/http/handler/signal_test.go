package handler_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"grapevine.app/firehose/internal/http/handler"
	"grapevine.app/firehose/internal/pipeline"
)

var _ = Describe("SignalHandler", func() {
	var (
		engine *gin.Engine
		gate   *pipeline.Gate
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		gate = pipeline.NewGate(time.Minute)
		engine = gin.New()
		engine.POST("/signals/scroll", handler.NewSignalHandler(gate).Scroll)
	})

	It("suspends the gate and returns 202", func() {
		Expect(gate.Suspended()).To(BeFalse())

		req := httptest.NewRequest(http.MethodPost, "/signals/scroll", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusAccepted))
		Expect(gate.Suspended()).To(BeTrue())
	})
})
