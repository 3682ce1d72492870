package handlers

import (
	"errors"
	"net/http"

	"github.com/4dave/corralio/middleware"
	"github.com/4dave/corralio/store"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Store store.Store
}

// GetProfile returns the signed-in user.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.Store.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, user)
}
