package middleware

import (
	"github.com/gin-gonic/gin"

	"todoservice/internal/adapter/http/helper"
)

// RecoveryMiddleware turns a panic into an INTERNAL_ERROR envelope.
func RecoveryMiddleware(responder *helper.Responder) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		responder.SendPanic(c, recovered)
	})
}
