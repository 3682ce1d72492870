package store

import (
	"context"
	"time"

	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/utils"

	"github.com/google/uuid"
)

// Seed creates a demo owner and a public picnic a week from now.
func Seed(ctx context.Context, s Store, ownerEmail string) (*models.Event, error) {
	owner, err := s.UpsertUser(ctx, ownerEmail, "Demo Host")
	if err != nil {
		return nil, err
	}

	token, err := utils.RandomToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	start := now.AddDate(0, 0, 7).Truncate(time.Hour)
	end := start.Add(3 * time.Hour)
	e := &models.Event{
		ID:           uuid.New().String(),
		OwnerID:      owner.ID,
		Title:        "Park Picnic",
		Description:  "Bring a blanket and something to share.",
		StartsAt:     start,
		EndsAt:       &end,
		LocationText: "Riverside Park",
		Visibility:   models.VisibilityPublic,
		Status:       models.EventOpen,
		ShareToken:   token,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.CreateEvent(ctx, e); err != nil {
		return nil, err
	}

	err = s.InsertComment(ctx, &models.Comment{
		ID:        uuid.New().String(),
		EventID:   e.ID,
		UserID:    owner.ID,
		Body:      "I'll bring lemonade!",
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}
