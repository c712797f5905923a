package server

import (
	"net/http"
	"time"

	"job-auction/services/auction/helpers"
	"job-auction/utils"

	"github.com/gin-gonic/gin"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware propagates the caller's request id or assigns a new one
func RequestIDMiddleware(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = utils.GenerateID()
	}
	c.Set("request_id", id)
	c.Header(requestIDHeader, id)
	c.Next()
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
		"request_id": c.GetString("request_id"),
	}
	if provider := c.GetHeader(helpers.ProviderHeader); provider != "" {
		fields["provider_id"] = provider
	}
	utils.Info("HTTP Request", fields)
}

// HealthHandler handles GET /healthz
func HealthHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, gin.H{"ok": true}, "healthy")
}
