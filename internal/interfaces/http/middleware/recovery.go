package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/obsdemo/internal/application/dto"
	"github.com/turtacn/obsdemo/internal/domain/service"
	"github.com/turtacn/obsdemo/pkg/constants"
	"github.com/turtacn/obsdemo/pkg/errors"
	"github.com/turtacn/obsdemo/pkg/logger"
)

// RecoveryMiddleware converts a panic in the handler chain into a generic 500
// response, logs it and counts it under the "internal" error label.
// It must run inside ObservabilityMiddleware so the final status is observed.
func RecoveryMiddleware(log logger.Logger, metrics service.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if fault := recover(); fault != nil {
				ctx := c.Request.Context()
				log.Error(ctx, "500 error: unhandled fault", fmt.Errorf("panic: %v", fault), logger.Fields{
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
				})
				metrics.RecordError(constants.ErrorEndpointInternal)
				dto.SendError(c, errors.ErrInternal)
			}
		}()
		c.Next()
	}
}
