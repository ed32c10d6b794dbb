package core

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// renderError renders the error page with status and a user-facing message.
// The layout keeps the navigation for signed-in callers.
func renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", page(c, http.StatusText(status), gin.H{
		"status":  status,
		"message": message,
	}))
}
