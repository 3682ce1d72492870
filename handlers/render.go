package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/4dave/corralio/middleware"
	"github.com/4dave/corralio/services"
	"github.com/4dave/corralio/utils"

	"github.com/gin-gonic/gin"
)

// page adds the values every layout needs to data.
func page(c *gin.Context, demo bool, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = middleware.GetIdentity(c)
	data["Demo"] = demo
	return data
}

func renderNotFound(c *gin.Context, demo bool, message string) {
	c.HTML(http.StatusNotFound, "not_found.html", page(c, demo, gin.H{
		"Title":   "Not found",
		"Message": message,
	}))
}

// renderFailure shows the error page for errors that have no form to go back to.
func renderFailure(c *gin.Context, demo bool, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		renderNotFound(c, demo, services.UserMessage(err, ""))
	case errors.Is(err, services.ErrUnconfigured):
		c.HTML(http.StatusServiceUnavailable, "error.html", page(c, demo, gin.H{
			"Title":   "Unavailable",
			"Heading": "Not available here",
			"Message": services.UserMessage(err, "This feature is not configured on this server."),
		}))
	default:
		utils.SafeError("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.HTML(http.StatusInternalServerError, "error.html", page(c, demo, gin.H{
			"Title":   "Something went wrong",
			"Heading": "Something went wrong",
			"Message": "Please try again in a moment.",
		}))
	}
}

// statusFor maps a service error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnconfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// isFormError reports whether err belongs inline next to the form that caused it.
func isFormError(err error) bool {
	return errors.Is(err, services.ErrInvalidInput) ||
		errors.Is(err, services.ErrUnauthorized) ||
		errors.Is(err, services.ErrForbidden) ||
		errors.Is(err, services.ErrUpstream)
}

func jsonError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := services.UserMessage(err, http.StatusText(status))
	if status == http.StatusInternalServerError {
		utils.SafeError("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		msg = "Internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func isSecure(c *gin.Context) bool {
	return c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
}

// safeNext only allows same-site relative redirects.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return "/"
}
