package handlers

import (
	"net/http"

	"github.com/4dave/corralio/middleware"
	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	Comments *services.CommentService
	Pages    *EventHandler
	Demo     bool
}

// PostComment handles the comment form on the event page.
func (h *CommentHandler) PostComment(c *gin.Context) {
	ctx := c.Request.Context()
	shareToken := c.Param("shareToken")

	_, _, err := h.Comments.Post(ctx, middleware.GetIdentity(c), shareToken, c.PostForm("text"))
	if err == nil {
		c.Redirect(http.StatusSeeOther, "/e/"+shareToken)
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
		"CommentError": services.UserMessage(err, "Could not post your comment"),
	})
}

func (h *CommentHandler) PostCommentJSON(c *gin.Context) {
	var req models.PostCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, _, err := h.Comments.Post(c.Request.Context(), middleware.GetIdentity(c), req.ShareToken, req.Text)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
