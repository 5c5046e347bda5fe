package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"protopia/internal/service"
)

// NewRouter wires the gin router with middlewares and assessment routes.
func NewRouter(
	logger *zap.Logger,
	tokens *service.TokenService,
	assessH *AssessmentHandler,
	vrH *VRHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	assessment := r.Group("/assessment")
	assessment.Use(AuthMiddleware(tokens))
	assessment.GET("/questions", assessH.Questions)
	assessment.POST("/submit", assessH.SubmitAnswers)
	assessment.POST("/essay", assessH.SubmitEssay)
	assessment.GET("/progress", assessH.Progress)
	assessment.GET("/final", assessH.FinalResult)
	assessment.POST("/reset", assessH.Reset)

	vr := assessment.Group("/vr")
	vr.POST("/start", vrH.Start)
	vr.POST("/answer", vrH.Answer)
	vr.POST("/complete", vrH.Complete)

	return r
}

// zapLoggerMiddleware logs one line per request.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware forces Content-Type: application/json on responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
