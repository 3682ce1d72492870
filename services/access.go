package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/utils"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessCookiePrefix = "invite_access_"
	AccessTTL          = 30 * 24 * time.Hour
	accessAudience     = "invite_access"
)

// AccessService issues and checks the private-event credential handed to
// guests once they answer an invite.
type AccessService struct {
	key []byte
	now func() time.Time
}

func NewAccessService(secret string) (*AccessService, error) {
	key, err := utils.DeriveKey(secret, "invite-access")
	if err != nil {
		return nil, err
	}
	return &AccessService{key: key, now: time.Now}, nil
}

func AccessCookieName(eventID string) string {
	return AccessCookiePrefix + eventID
}

// Issue returns a credential scoped to eventID, valid for AccessTTL.
func (a *AccessService) Issue(eventID string) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   eventID,
		Audience:  jwt.ClaimStrings{accessAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
}

// Verify checks that credential is a live credential for eventID.
func (a *AccessService) Verify(credential, eventID string) error {
	if credential == "" {
		return errors.New("no credential")
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(credential, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(accessAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return err
	}
	if claims.Subject != eventID {
		return fmt.Errorf("credential is for another event")
	}
	return nil
}

// CanView is the private-event gate: owner, then a valid credential for
// this event. Public and unlisted events are always viewable.
func (a *AccessService) CanView(e *models.Event, who *models.Identity, credential string) bool {
	if e.Visibility != models.VisibilityPrivate {
		return true
	}
	if who != nil && who.UserID == e.OwnerID {
		return true
	}
	return a.Verify(credential, e.ID) == nil
}
