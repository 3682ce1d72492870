package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
	InviteMaybe    InviteStatus = "maybe"
)

type Invite struct {
	ID          string       `json:"id"`
	EventID     string       `json:"event_id"`
	Email       string       `json:"email"`
	InviteToken string       `json:"-"`
	Status      InviteStatus `json:"status"`
	RespondedAt *time.Time   `json:"responded_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Decision is a guest's answer to an invite. The zero value is not a valid decision.
type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionDeclined Decision = "declined"
	DecisionMaybe    Decision = "maybe"
)

// ErrInvalidDecision is returned by ParseDecision for anything outside the enum.
var ErrInvalidDecision = errors.New("invalid decision")

func ParseDecision(raw string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(raw))); d {
	case DecisionAccepted, DecisionDeclined, DecisionMaybe:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDecision, raw)
}

// InviteStatus maps a decision to the invite status it leaves behind.
func (d Decision) InviteStatus() InviteStatus {
	switch d {
	case DecisionAccepted:
		return InviteAccepted
	case DecisionDeclined:
		return InviteDeclined
	default:
		return InviteMaybe
	}
}

// RSVPResponse maps a decision to the RSVP row's response.
func (d Decision) RSVPResponse() RSVPResponse {
	switch d {
	case DecisionAccepted:
		return RSVPYes
	case DecisionDeclined:
		return RSVPNo
	default:
		return RSVPMaybe
	}
}

// InviteResponse is the result of a guest answering an invite.
type InviteResponse struct {
	Invite Invite `json:"invite"`
	RSVP   RSVP   `json:"rsvp"`
	Event  Event  `json:"event"`
}

// InviteStatusRow joins an invite with the RSVP recorded for the same email.
type InviteStatusRow struct {
	Invite
	Response RSVPResponse `json:"response,omitempty"`
}

type InviteSummary struct {
	Yes     int `json:"yes"`
	No      int `json:"no"`
	Maybe   int `json:"maybe"`
	Pending int `json:"pending"`
}

type SendInvitesRequest struct {
	Emails string `json:"emails" form:"emails" binding:"required"`
}

type RespondInviteRequest struct {
	InviteToken string `json:"invite_token" form:"inviteToken"`
	Decision    string `json:"decision" form:"decision" binding:"required"`
}

// SendInvitesResult reports which recipients got a new invite.
type SendInvitesResult struct {
	Created []Invite `json:"created"`
	Skipped []string `json:"skipped,omitempty"`
}
