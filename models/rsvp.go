package models

import "time"

type RSVPResponse string

const (
	RSVPYes   RSVPResponse = "yes"
	RSVPNo    RSVPResponse = "no"
	RSVPMaybe RSVPResponse = "maybe"
)

type RSVP struct {
	ID        string       `json:"id"`
	EventID   string       `json:"event_id"`
	UserID    string       `json:"user_id,omitempty"`
	Email     string       `json:"email,omitempty"`
	Response  RSVPResponse `json:"response"`
	CreatedAt time.Time    `json:"created_at"`
}
