package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/store"
	"github.com/4dave/corralio/utils"

	"github.com/google/uuid"
)

// Broadcaster pushes a freshly posted comment to live viewers of an event.
type Broadcaster interface {
	BroadcastComment(eventID string, c models.Comment)
}

type CommentService struct {
	store       store.Store
	broadcaster Broadcaster
	now         func() time.Time
}

func NewCommentService(s store.Store, b Broadcaster) *CommentService {
	return &CommentService{store: s, broadcaster: b, now: time.Now}
}

// Post appends a comment to the event behind shareToken.
func (s *CommentService) Post(ctx context.Context, who *models.Identity, shareToken, body string) (*models.Comment, *models.Event, error) {
	if who == nil {
		return nil, nil, newError(ErrUnauthorized, "Sign in to post comments")
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil, newError(ErrInvalidInput, "Say something first")
	}
	if utf8.RuneCountInString(body) > models.MaxCommentLength {
		return nil, nil, newError(ErrInvalidInput, "Keep it under 800 chars")
	}

	e, err := s.store.GetEventByShareToken(ctx, shareToken)
	if err != nil {
		return nil, nil, fromStore(err, "Event")
	}

	c := &models.Comment{
		ID:          uuid.New().String(),
		EventID:     e.ID,
		UserID:      who.UserID,
		AuthorEmail: who.Email,
		Body:        body,
		CreatedAt:   s.now(),
	}
	if err := s.store.InsertComment(ctx, c); err != nil {
		return nil, nil, err
	}

	utils.LogEventAction("Comment posted", e.ID, who.UserID)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastComment(e.ID, *c)
	}
	return c, e, nil
}

// List returns an event's comments, newest first.
func (s *CommentService) List(ctx context.Context, eventID string) ([]models.Comment, error) {
	return s.store.ListComments(ctx, eventID)
}
