package models

import "time"

// ============================================================================
// EVENT MODEL
// ============================================================================

type Visibility string

const (
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
	VisibilityPublic   Visibility = "public"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityUnlisted, VisibilityPrivate, VisibilityPublic:
		return true
	}
	return false
}

type EventStatus string

const (
	EventOpen   EventStatus = "open"
	EventClosed EventStatus = "closed"
)

func (s EventStatus) Valid() bool {
	return s == EventOpen || s == EventClosed
}

type Event struct {
	ID           string      `json:"id"`
	OwnerID      string      `json:"owner_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	StartsAt     time.Time   `json:"starts_at"`
	EndsAt       *time.Time  `json:"ends_at,omitempty"`
	LocationText string      `json:"location_text,omitempty"`
	Visibility   Visibility  `json:"visibility"`
	Status       EventStatus `json:"status"`
	ShareToken   string      `json:"share_token"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// EndOrDefault returns the end time, or one hour after the start when unset.
func (e *Event) EndOrDefault() time.Time {
	if e.EndsAt != nil {
		return *e.EndsAt
	}
	return e.StartsAt.Add(time.Hour)
}

// AdminEventRow is an event joined with its owner's email for the admin table.
type AdminEventRow struct {
	Event
	OwnerEmail string `json:"owner_email,omitempty"`
}

// ============================================================================
// REQUESTS
// ============================================================================

type CreateEventRequest struct {
	Title        string     `json:"title" form:"title" binding:"required"`
	Description  string     `json:"description" form:"description"`
	StartsAt     time.Time  `json:"starts_at" form:"startsAt" binding:"required" time_format:"2006-01-02T15:04"`
	EndsAt       *time.Time `json:"ends_at" form:"endsAt" time_format:"2006-01-02T15:04"`
	LocationText string     `json:"location_text" form:"locationText"`
	Visibility   Visibility `json:"visibility" form:"visibility"`
}
