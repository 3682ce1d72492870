package models

import (
	"errors"
	"testing"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		raw      string
		want     Decision
		status   InviteStatus
		response RSVPResponse
	}{
		{"accepted", DecisionAccepted, InviteAccepted, RSVPYes},
		{" Declined ", DecisionDeclined, InviteDeclined, RSVPNo},
		{"MAYBE", DecisionMaybe, InviteMaybe, RSVPMaybe},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d, err := ParseDecision(tt.raw)
			if err != nil {
				t.Fatalf("ParseDecision(%q): %v", tt.raw, err)
			}
			if d != tt.want {
				t.Errorf("decision = %q, want %q", d, tt.want)
			}
			if d.InviteStatus() != tt.status {
				t.Errorf("status = %q, want %q", d.InviteStatus(), tt.status)
			}
			if d.RSVPResponse() != tt.response {
				t.Errorf("response = %q, want %q", d.RSVPResponse(), tt.response)
			}
		})
	}
}

func TestParseDecisionRejects(t *testing.T) {
	for _, raw := range []string{"", "pending", "yes", "no", "accept", "true"} {
		if _, err := ParseDecision(raw); !errors.Is(err, ErrInvalidDecision) {
			t.Errorf("ParseDecision(%q) err = %v", raw, err)
		}
	}
}
