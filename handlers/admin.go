package handlers

import (
	"errors"
	"net/http"

	"github.com/4dave/corralio/middleware"
	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/services"
	"github.com/4dave/corralio/store"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the event console. Non-admins get the not-found page.
type AdminHandler struct {
	Admin *services.AdminService
	Demo  bool
}

func (h *AdminHandler) ListEvents(c *gin.Context) {
	who := middleware.GetIdentity(c)
	if !h.Admin.IsAdmin(who) {
		renderNotFound(c, h.Demo, "")
		return
	}

	filter := store.ParseEventFilter(c.Request.URL.Query())
	events, err := h.Admin.ListEvents(c.Request.Context(), who, filter)
	if err != nil {
		renderFailure(c, h.Demo, err)
		return
	}

	values := filter.Values()
	c.HTML(http.StatusOK, "admin_events.html", page(c, h.Demo, gin.H{
		"Title":        "Events",
		"Events":       events,
		"Filter":       filter,
		"From":         values.Get("from"),
		"To":           values.Get("to"),
		"FilterQuery":  values.Encode(),
		"Visibilities": []models.Visibility{models.VisibilityPublic, models.VisibilityUnlisted, models.VisibilityPrivate},
		"Statuses":     []models.EventStatus{models.EventOpen, models.EventClosed},
	}))
}

// EventAction runs close, reopen or delete and returns to the console.
func (h *AdminHandler) EventAction(c *gin.Context) {
	who := middleware.GetIdentity(c)
	if !h.Admin.IsAdmin(who) {
		renderNotFound(c, h.Demo, "")
		return
	}

	err := h.Admin.Apply(c.Request.Context(), who, c.Param("id"), c.Param("action"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			renderNotFound(c, h.Demo, "")
			return
		}
		renderFailure(c, h.Demo, err)
		return
	}

	back := "/events"
	if q := c.PostForm("filter"); q != "" {
		back += "?" + q
	}
	c.Redirect(http.StatusSeeOther, back)
}

// ListEventsJSON is the console listing for API clients.
func (h *AdminHandler) ListEventsJSON(c *gin.Context) {
	events, err := h.Admin.ListEvents(c.Request.Context(), middleware.GetIdentity(c), store.ParseEventFilter(c.Request.URL.Query()))
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
