package handlers

import (
	"net/http"

	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Auth *services.AuthService
	Demo bool
}

func (h *AuthHandler) SignInPage(c *gin.Context) {
	c.HTML(http.StatusOK, "signin.html", page(c, h.Demo, gin.H{
		"Title": "Sign in",
		"Next":  safeNext(c.Query("next")),
	}))
}

// SignIn emails a one-time code and shows the code form.
func (h *AuthHandler) SignIn(c *gin.Context) {
	email := c.PostForm("email")
	next := safeNext(c.PostForm("next"))

	if err := h.Auth.RequestCode(c.Request.Context(), email); err != nil {
		if !isFormError(err) {
			renderFailure(c, h.Demo, err)
			return
		}
		c.HTML(statusFor(err), "signin.html", page(c, h.Demo, gin.H{
			"Title": "Sign in",
			"Email": email,
			"Next":  next,
			"Error": services.UserMessage(err, "Could not send a code"),
		}))
		return
	}

	c.HTML(http.StatusOK, "verify.html", page(c, h.Demo, gin.H{
		"Title": "Enter your code",
		"Email": email,
		"Next":  next,
	}))
}

func (h *AuthHandler) VerifyPage(c *gin.Context) {
	c.HTML(http.StatusOK, "verify.html", page(c, h.Demo, gin.H{
		"Title": "Enter your code",
		"Email": c.Query("email"),
		"Next":  safeNext(c.Query("next")),
	}))
}

// Verify checks the code and sets the session cookie.
func (h *AuthHandler) Verify(c *gin.Context) {
	email := c.PostForm("email")
	next := safeNext(c.PostForm("next"))

	token, _, err := h.Auth.Verify(c.Request.Context(), email, c.PostForm("code"))
	if err != nil {
		if !isFormError(err) {
			renderFailure(c, h.Demo, err)
			return
		}
		c.HTML(statusFor(err), "verify.html", page(c, h.Demo, gin.H{
			"Title": "Enter your code",
			"Email": email,
			"Next":  next,
			"Error": services.UserMessage(err, "That code did not work"),
		}))
		return
	}

	h.setSession(c, token, int(services.SessionTTL.Seconds()))
	c.Redirect(http.StatusSeeOther, next)
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	h.setSession(c, "", -1)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) setSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(services.SessionCookie, token, maxAge, "/", "", isSecure(c), true)
}

// ============================================================================
// JSON API
// ============================================================================

func (h *AuthHandler) SignInJSON(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Auth.RequestCode(c.Request.Context(), req.Email); err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Code sent"})
}

func (h *AuthHandler) VerifyJSON(c *gin.Context) {
	var req models.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.Auth.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: *user})
}
