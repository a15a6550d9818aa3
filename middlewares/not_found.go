package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RouteNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":  "Route not found",
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	})
}
