package models

import "time"

// ============================================================================
// USER MODEL
// ============================================================================

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Verification holds the pending sign-in secret for an email address.
type Verification struct {
	Identifier string    `json:"-"`
	Secret     string    `json:"-"`
	ExpiresAt  time.Time `json:"expires_at"`
	// Attempts counts wrong codes entered against this secret.
	Attempts int `json:"-"`
}

// ============================================================================
// AUTHENTICATION REQUESTS
// ============================================================================

type SignInRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
	Code  string `json:"code" form:"code" binding:"required,len=6"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Identity is the signed-in caller. A nil *Identity means anonymous.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}
