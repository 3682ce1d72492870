package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/store"
	"github.com/4dave/corralio/utils"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookie = "session_token"
	SessionTTL    = 30 * 24 * time.Hour

	// MaxVerifyAttempts wrong codes discard the pending sign-in.
	MaxVerifyAttempts = 5
)

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService signs users in with a one-time code sent by email and
// hands out a signed session token.
type AuthService struct {
	store  store.Store
	mailer Mailer
	key    []byte
	now    func() time.Time
}

func NewAuthService(s store.Store, mailer Mailer, secret string) (*AuthService, error) {
	key, err := utils.DeriveKey(secret, "session")
	if err != nil {
		return nil, err
	}
	return &AuthService{store: s, mailer: mailer, key: key, now: time.Now}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RequestCode stores a fresh sign-in secret for email and mails the current code.
func (s *AuthService) RequestCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return newError(ErrInvalidInput, "Enter a valid email address")
	}

	secret, err := utils.GenerateSignInSecret(email)
	if err != nil {
		return err
	}
	now := s.now()
	err = s.store.SaveVerification(ctx, models.Verification{
		Identifier: email,
		Secret:     secret,
		ExpiresAt:  now.Add(utils.SignInCodePeriod),
	})
	if err != nil {
		return err
	}

	code, err := utils.SignInCode(secret, now)
	if err != nil {
		return err
	}
	if _, err := s.mailer.Send(ctx, SignInMessage(email, code)); err != nil {
		utils.LogAuthAction("Send code", email, false)
		return &Error{Kind: ErrUpstream, Msg: "Could not send the sign-in email", Err: err}
	}
	utils.LogAuthAction("Send code", email, true)
	return nil
}

// Verify consumes a pending code and returns a session token for the user.
func (s *AuthService) Verify(ctx context.Context, email, code string) (string, *models.User, error) {
	email = normalizeEmail(email)
	invalid := newError(ErrUnauthorized, "That code is invalid or has expired")

	v, err := s.store.GetVerification(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		utils.LogAuthAction("Verify code", email, false)
		return "", nil, invalid
	}
	if err != nil {
		return "", nil, err
	}

	now := s.now()
	if now.After(v.ExpiresAt) {
		utils.LogAuthAction("Verify code", email, false)
		if err := s.store.DeleteVerification(ctx, email); err != nil {
			return "", nil, err
		}
		return "", nil, invalid
	}
	if !utils.VerifySignInCode(v.Secret, strings.TrimSpace(code), now) {
		utils.LogAuthAction("Verify code", email, false)
		if err := s.recordFailure(ctx, email); err != nil {
			return "", nil, err
		}
		return "", nil, invalid
	}
	if err := s.store.DeleteVerification(ctx, email); err != nil {
		return "", nil, err
	}

	user, err := s.store.UpsertUser(ctx, email, "")
	if err != nil {
		return "", nil, err
	}
	token, err := s.IssueSession(user)
	if err != nil {
		return "", nil, err
	}
	utils.LogAuthAction("Verify code", email, true)
	return token, user, nil
}

// recordFailure counts a wrong code and drops the verification once the
// limit is reached, so a new code has to be requested.
func (s *AuthService) recordFailure(ctx context.Context, email string) error {
	attempts, err := s.store.RecordFailedAttempt(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if attempts >= MaxVerifyAttempts {
		utils.SafeWarn("Too many wrong sign-in codes for %s, code discarded", email)
		return s.store.DeleteVerification(ctx, email)
	}
	return nil
}

func (s *AuthService) IssueSession(u *models.User) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// ParseSession validates a session token and returns the caller's identity.
func (s *AuthService) ParseSession(tokenString string) (*models.Identity, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid session: missing subject")
	}
	return &models.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
