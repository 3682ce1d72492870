package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/4dave/corralio/middleware"
	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/services"

	"github.com/gin-gonic/gin"
)

type InvitationHandler struct {
	Invites *services.InviteService
	Pages   *EventHandler
	Demo    bool
}

// SendInvites handles the owner's invite form on the event page.
func (h *InvitationHandler) SendInvites(c *gin.Context) {
	ctx := c.Request.Context()
	shareToken := c.Param("shareToken")

	result, err := h.Invites.SendInvites(ctx, middleware.GetIdentity(c), shareToken, c.PostForm("emails"))
	if err == nil {
		c.Redirect(http.StatusSeeOther, "/e/"+shareToken+"?invited="+strconv.Itoa(len(result.Created)))
		return
	}
	if !isFormError(err) {
		renderFailure(c, h.Demo, err)
		return
	}

	e, lookupErr := h.Pages.Events.GetByShareToken(ctx, shareToken)
	if lookupErr != nil {
		renderFailure(c, h.Demo, lookupErr)
		return
	}
	h.Pages.renderEvent(c, statusFor(err), e, gin.H{
		"InviteError": services.UserMessage(err, "Could not send invites"),
	})
}

// InvitePage shows the invite with accept, maybe and decline buttons.
func (h *InvitationHandler) InvitePage(c *gin.Context) {
	h.renderInvite(c, http.StatusOK, c.Param("inviteToken"), "")
}

func (h *InvitationHandler) renderInvite(c *gin.Context, status int, token, formError string) {
	inv, e, err := h.Invites.Lookup(c.Request.Context(), token)
	if err != nil {
		renderFailure(c, h.Demo, err)
		return
	}
	c.HTML(status, "invite.html", page(c, h.Demo, gin.H{
		"Title":       e.Title,
		"Event":       e,
		"Invite":      inv,
		"InviteToken": token,
		"Error":       formError,
	}))
}

// Respond records the guest's decision, hands them the access cookie for the
// event and sends them to the event page.
func (h *InvitationHandler) Respond(c *gin.Context) {
	token := c.PostForm("inviteToken")
	if token == "" {
		token = c.Param("inviteToken")
	}

	res, err := h.Invites.Respond(c.Request.Context(), token, c.PostForm("decision"), middleware.GetIdentity(c))
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			h.renderInvite(c, http.StatusBadRequest, token, services.UserMessage(err, "Choose a response"))
			return
		}
		renderFailure(c, h.Demo, err)
		return
	}

	h.setAccessCookie(c, res)
	c.Redirect(http.StatusSeeOther, "/e/"+res.Event.ShareToken)
}

func (h *InvitationHandler) setAccessCookie(c *gin.Context, res *services.RespondResult) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		services.AccessCookieName(res.Event.ID),
		res.Credential,
		int(services.AccessTTL.Seconds()),
		"/",
		"",
		isSecure(c),
		true,
	)
}

// ============================================================================
// JSON API
// ============================================================================

func (h *InvitationHandler) SendInvitesJSON(c *gin.Context) {
	var req models.SendInvitesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Invites.SendInvites(c.Request.Context(), middleware.GetIdentity(c), c.Param("shareToken"), req.Emails)
	if err != nil {
		if result != nil && errors.Is(err, services.ErrUpstream) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   services.UserMessage(err, "Some emails failed"),
				"created": result.Created,
				"skipped": result.Skipped,
			})
			return
		}
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *InvitationHandler) RespondJSON(c *gin.Context) {
	var req models.RespondInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Invites.Respond(c.Request.Context(), c.Param("inviteToken"), req.Decision, middleware.GetIdentity(c))
	if err != nil {
		jsonError(c, err)
		return
	}

	h.setAccessCookie(c, res)
	c.JSON(http.StatusOK, gin.H{
		"share_token": res.Event.ShareToken,
		"status":      res.Invite.Status,
		"response":    res.RSVP.Response,
	})
}
