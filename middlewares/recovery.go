package middlewares

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertybooking-backend/utils"
)

// Recovery logs panics through logrus only; gin's own panic writer is muted.
func Recovery(log *logrus.Logger, verbose bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.WithFields(logrus.Fields{
			"request_id": c.GetString(utils.CtxKeyRequestID),
			"panic":      fmt.Sprint(recovered),
			"stack":      string(debug.Stack()),
		}).Error("panic recovered")

		utils.RespondWithAppError(c, utils.Internal("panic", fmt.Errorf("panic: %v", recovered)), verbose)
	})
}
