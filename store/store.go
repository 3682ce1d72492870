// Package store persists events, invites, RSVPs, comments and users.
//
// Two backends implement Store: PostgresStore for real deployments and
// MemoryStore, a single-process stand-in used for demos and tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/4dave/corralio/models"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: conflict")
)

type Store interface {
	Ping(ctx context.Context) error

	UpsertUser(ctx context.Context, email, name string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SaveVerification(ctx context.Context, v models.Verification) error
	GetVerification(ctx context.Context, identifier string) (*models.Verification, error)
	DeleteVerification(ctx context.Context, identifier string) error
	// RecordFailedAttempt bumps the wrong-code counter and returns its new value.
	RecordFailedAttempt(ctx context.Context, identifier string) (int, error)

	// CreateEvent returns ErrConflict when the share token is already taken.
	CreateEvent(ctx context.Context, e *models.Event) error
	GetEventByShareToken(ctx context.Context, shareToken string) (*models.Event, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	ListEventsByOwner(ctx context.Context, ownerID string) ([]models.Event, error)
	ListEvents(ctx context.Context, f EventFilter) ([]models.AdminEventRow, error)
	SetEventStatus(ctx context.Context, id string, status models.EventStatus) error
	DeleteEvent(ctx context.Context, id string) error

	// InsertInvites stores the given invites, skipping any whose (event, email)
	// pair already exists, and returns only the rows it created.
	InsertInvites(ctx context.Context, invites []models.Invite) ([]models.Invite, error)
	GetInviteByToken(ctx context.Context, token string) (*models.Invite, error)
	ListInviteStatus(ctx context.Context, eventID string) ([]models.InviteStatusRow, error)
	ListRSVPs(ctx context.Context, eventID string) ([]models.RSVP, error)

	// RespondToInvite records a decision atomically: the invite status, the
	// upserted RSVP row and the parent event lookup succeed or fail together.
	RespondToInvite(ctx context.Context, token string, d models.Decision, userID string, now time.Time) (*models.InviteResponse, error)

	InsertComment(ctx context.Context, c *models.Comment) error
	// ListComments returns comments newest first.
	ListComments(ctx context.Context, eventID string) ([]models.Comment, error)
}
