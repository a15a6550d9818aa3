// utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CtxKeyRequestID is the gin context key holding the request id.
const CtxKeyRequestID = "requestId"

// RespondWithError aborts the request with a JSON error body.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// RespondWithAppError maps err onto its HTTP status. Internal failures are
// reported generically; the cause is only attached when verbose is set.
func RespondWithAppError(c *gin.Context, err error, verbose bool) {
	status := HTTPStatus(err)
	ae, ok := AsAppError(err)

	body := gin.H{}
	switch {
	case status == http.StatusInternalServerError:
		body["error"] = "Internal server error"
		if verbose {
			body["details"] = err.Error()
		}
	case ok && ae.Message != "":
		body["error"] = ae.Message
	default:
		body["error"] = http.StatusText(status)
	}
	if ok && len(ae.Fields) > 0 {
		body["details"] = ae.Fields
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
