package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/4dave/corralio/middleware"
	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/services"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	Events   *services.EventService
	Invites  *services.InviteService
	Comments *services.CommentService
	Access   *services.AccessService
	Demo     bool
}

func (h *EventHandler) credential(c *gin.Context, e *models.Event) string {
	v, _ := c.Cookie(services.AccessCookieName(e.ID))
	return v
}

func (h *EventHandler) canView(c *gin.Context, e *models.Event) bool {
	return h.Access.CanView(e, middleware.GetIdentity(c), h.credential(c, e))
}

// Home lists the caller's events when signed in.
func (h *EventHandler) Home(c *gin.Context) {
	data := gin.H{"Title": ""}
	if who := middleware.GetIdentity(c); who != nil {
		events, err := h.Events.Mine(c.Request.Context(), who)
		if err != nil {
			renderFailure(c, h.Demo, err)
			return
		}
		data["Events"] = events
	}
	c.HTML(http.StatusOK, "home.html", page(c, h.Demo, data))
}

func (h *EventHandler) NewEventPage(c *gin.Context) {
	if middleware.GetIdentity(c) == nil {
		c.Redirect(http.StatusSeeOther, "/auth/signin?next=/new")
		return
	}
	c.HTML(http.StatusOK, "new_event.html", page(c, h.Demo, gin.H{
		"Title": "New event",
		"Form":  models.CreateEventRequest{},
	}))
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	who := middleware.GetIdentity(c)
	if who == nil {
		c.Redirect(http.StatusSeeOther, "/auth/signin?next=/new")
		return
	}

	var req models.CreateEventRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "new_event.html", page(c, h.Demo, gin.H{
			"Title": "New event",
			"Form":  req,
			"Error": "Fill in a title and a valid start time",
		}))
		return
	}

	e, err := h.Events.Create(c.Request.Context(), who, req)
	if err != nil {
		if isFormError(err) {
			c.HTML(statusFor(err), "new_event.html", page(c, h.Demo, gin.H{
				"Title": "New event",
				"Form":  req,
				"Error": services.UserMessage(err, "Could not create the event"),
			}))
			return
		}
		renderFailure(c, h.Demo, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/e/"+e.ShareToken)
}

// ShowEvent renders an event, or the private placeholder when the gate says no.
func (h *EventHandler) ShowEvent(c *gin.Context) {
	e, err := h.Events.GetByShareToken(c.Request.Context(), c.Param("shareToken"))
	if err != nil {
		renderFailure(c, h.Demo, err)
		return
	}

	extra := gin.H{}
	if n := c.Query("invited"); n != "" {
		extra["InviteNotice"] = fmt.Sprintf("Sent %s new invite(s)", n)
	}
	h.renderEvent(c, http.StatusOK, e, extra)
}

// renderEvent writes the full event page, or the private placeholder if the
// caller may not see it. extra carries inline form messages.
func (h *EventHandler) renderEvent(c *gin.Context, status int, e *models.Event, extra gin.H) {
	if !h.canView(c, e) {
		c.HTML(status, "private.html", page(c, h.Demo, gin.H{"Title": "Private event"}))
		return
	}

	data, err := h.eventPageData(c.Request.Context(), middleware.GetIdentity(c), e)
	if err != nil {
		renderFailure(c, h.Demo, err)
		return
	}
	for k, v := range extra {
		data[k] = v
	}
	c.HTML(status, "event.html", page(c, h.Demo, data))
}

func (h *EventHandler) eventPageData(ctx context.Context, who *models.Identity, e *models.Event) (gin.H, error) {
	comments, err := h.Comments.List(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	data := gin.H{
		"Title":    e.Title,
		"Event":    e,
		"Comments": comments,
		"IsOwner":  services.Owns(who, e),
	}
	if services.Owns(who, e) {
		invites, summary, err := h.Invites.Dashboard(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		data["Invites"] = invites
		data["Summary"] = summary
	}
	return data, nil
}

// ============================================================================
// JSON API
// ============================================================================

func (h *EventHandler) ListMine(c *gin.Context) {
	events, err := h.Events.Mine(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) CreateJSON(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := h.Events.Create(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

var errPrivate = errors.New("private event")

// viewable loads the event behind :shareToken and applies the gate.
func (h *EventHandler) viewable(c *gin.Context) (*models.Event, error) {
	e, err := h.Events.GetByShareToken(c.Request.Context(), c.Param("shareToken"))
	if err != nil {
		return nil, err
	}
	if !h.canView(c, e) {
		return nil, errPrivate
	}
	return e, nil
}

func (h *EventHandler) GetJSON(c *gin.Context) {
	e, err := h.viewable(c)
	if errors.Is(err, errPrivate) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This event is private"})
		return
	}
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EventHandler) CommentsJSON(c *gin.Context) {
	e, err := h.viewable(c)
	if errors.Is(err, errPrivate) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This event is private"})
		return
	}
	if err != nil {
		jsonError(c, err)
		return
	}

	comments, err := h.Comments.List(c.Request.Context(), e.ID)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}
