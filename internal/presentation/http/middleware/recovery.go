package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/agrishop-billing/internal/presentation/http/dto/response"
	"github.com/sangkips/agrishop-billing/pkg/logger"
)

// Recovery turns a panic into a 500 response and logs it with the request id
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.WithContext(c.Request.Context()).Errorw("panic recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		response.InternalServerError(c, "Internal server error")
		c.Abort()
	})
}
