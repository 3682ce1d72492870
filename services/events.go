package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/store"
	"github.com/4dave/corralio/utils"

	"github.com/google/uuid"
)

const shareTokenAttempts = 3

type EventService struct {
	store store.Store
	now   func() time.Time
}

func NewEventService(s store.Store) *EventService {
	return &EventService{store: s, now: time.Now}
}

// Create validates req and stores a new event owned by who.
func (s *EventService) Create(ctx context.Context, who *models.Identity, req models.CreateEventRequest) (*models.Event, error) {
	if who == nil {
		return nil, newError(ErrUnauthorized, "Sign in to create an event")
	}

	title := strings.TrimSpace(req.Title)
	if utf8.RuneCountInString(title) < 2 {
		return nil, newError(ErrInvalidInput, "Title must be at least 2 characters")
	}
	if req.StartsAt.IsZero() {
		return nil, newError(ErrInvalidInput, "Pick a start time")
	}
	if req.EndsAt != nil && req.EndsAt.IsZero() {
		req.EndsAt = nil
	}
	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		return nil, newError(ErrInvalidInput, "End time must be after the start time")
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityUnlisted
	}
	if !visibility.Valid() {
		return nil, newError(ErrInvalidInput, "Unknown visibility")
	}

	now := s.now()
	e := &models.Event{
		ID:           uuid.New().String(),
		OwnerID:      who.UserID,
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		LocationText: strings.TrimSpace(req.LocationText),
		Visibility:   visibility,
		Status:       models.EventOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for attempt := 0; ; attempt++ {
		token, err := utils.RandomToken()
		if err != nil {
			return nil, err
		}
		e.ShareToken = token

		err = s.store.CreateEvent(ctx, e)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrConflict) || attempt+1 >= shareTokenAttempts {
			return nil, err
		}
	}

	utils.LogEventAction("Created", e.ID, who.UserID)
	return e, nil
}

func (s *EventService) GetByShareToken(ctx context.Context, shareToken string) (*models.Event, error) {
	e, err := s.store.GetEventByShareToken(ctx, shareToken)
	if err != nil {
		return nil, fromStore(err, "Event")
	}
	return e, nil
}

// Mine lists the caller's own events, newest first.
func (s *EventService) Mine(ctx context.Context, who *models.Identity) ([]models.Event, error) {
	if who == nil {
		return nil, newError(ErrUnauthorized, "Sign in to see your events")
	}
	return s.store.ListEventsByOwner(ctx, who.UserID)
}

// Owns reports whether who created e.
func Owns(who *models.Identity, e *models.Event) bool {
	return who != nil && e != nil && who.UserID == e.OwnerID
}
