package services

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/4dave/corralio/models"
)

func TestParseEmails(t *testing.T) {
	got := ParseEmails(" Alice@Example.com, bob@example.com;carol@example.com\n\n alice@example.com  dave@example.com,, ")
	want := []string{"alice@example.com", "bob@example.com", "carol@example.com", "dave@example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseEmails = %v, want %v", got, want)
	}
	if got := ParseEmails(" ,; \n"); len(got) != 0 {
		t.Fatalf("blank input gave %v", got)
	}
}

func TestSendInvites(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	e := env.createEvent(t, models.VisibilityPrivate)

	res, err := env.invites.SendInvites(ctx, env.owner, e.ShareToken, "alice@example.com, BOB@example.com")
	if err != nil {
		t.Fatalf("SendInvites: %v", err)
	}
	if len(res.Created) != 2 {
		t.Fatalf("created %d invites, want 2", len(res.Created))
	}
	for _, inv := range res.Created {
		if len(inv.InviteToken) != 21 {
			t.Errorf("token %q has length %d", inv.InviteToken, len(inv.InviteToken))
		}
		if inv.Status != models.InvitePending {
			t.Errorf("status = %s, want pending", inv.Status)
		}
	}

	sent := env.mailer.recipients()
	if len(sent) != 2 {
		t.Fatalf("sent %v", sent)
	}
	msg := env.mailer.sent[0]
	if msg.Subject != "You're invited: Rooftop dinner" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "https://corralio.test/i/") {
		t.Errorf("text missing invite link:\n%s", msg.Text)
	}

	// second batch only mails the new address
	res, err = env.invites.SendInvites(ctx, env.owner, e.ShareToken, "alice@example.com carol@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Created) != 1 || res.Created[0].Email != "carol@example.com" {
		t.Errorf("created = %+v, want carol only", res.Created)
	}
	if !reflect.DeepEqual(res.Skipped, []string{"alice@example.com"}) {
		t.Errorf("skipped = %v", res.Skipped)
	}
	if n := len(env.mailer.recipients()); n != 3 {
		t.Errorf("total emails = %d, want 3", n)
	}
}

func TestSendInvitesNonOwnerForbidden(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	e := env.createEvent(t, models.VisibilityPrivate)

	stranger := &models.Identity{UserID: "someone-else", Email: "mallory@example.com"}
	_, err := env.invites.SendInvites(ctx, stranger, e.ShareToken, "alice@example.com")
	assertKind(t, err, ErrForbidden)

	rows, _ := env.store.ListInviteStatus(ctx, e.ID)
	if len(rows) != 0 {
		t.Fatalf("forbidden batch inserted %d rows", len(rows))
	}
	if n := len(env.mailer.recipients()); n != 0 {
		t.Fatalf("forbidden batch sent %d emails", n)
	}
}

func TestSendInvitesValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	e := env.createEvent(t, models.VisibilityUnlisted)

	_, err := env.invites.SendInvites(ctx, nil, e.ShareToken, "alice@example.com")
	assertKind(t, err, ErrUnauthorized)

	_, err = env.invites.SendInvites(ctx, env.owner, e.ShareToken, " , ;\n")
	assertKind(t, err, ErrInvalidInput)

	_, err = env.invites.SendInvites(ctx, env.owner, "missing-token", "alice@example.com")
	assertKind(t, err, ErrNotFound)
}

func TestSendInvitesPartialDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.mailer.failFor["bounce@example.com"] = true
	e := env.createEvent(t, models.VisibilityPublic)

	res, err := env.invites.SendInvites(ctx, env.owner, e.ShareToken, "ok@example.com bounce@example.com")
	assertKind(t, err, ErrUpstream)
	if res == nil || len(res.Created) != 2 {
		t.Fatalf("invites should still be stored, got %+v", res)
	}
	if got := env.mailer.recipients(); len(got) != 1 || got[0] != "ok@example.com" {
		t.Errorf("delivered = %v", got)
	}
	if !strings.Contains(UserMessage(err, ""), "1 of 2") {
		t.Errorf("message = %q", UserMessage(err, ""))
	}
}

func TestDemoModeRefusesInviteWrites(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	e := env.createEvent(t, models.VisibilityPrivate)

	demo := NewInviteService(InviteServiceConfig{Store: env.store, Mailer: env.mailer, Access: env.access, Demo: true})

	_, err := demo.SendInvites(ctx, env.owner, e.ShareToken, "alice@example.com")
	assertKind(t, err, ErrUnconfigured)

	_, err = demo.Respond(ctx, "whatever", "accepted", nil)
	assertKind(t, err, ErrUnconfigured)
}

func TestRespond(t *testing.T) {
	ctx := context.Background()

	mapping := []struct {
		decision string
		status   models.InviteStatus
		response models.RSVPResponse
	}{
		{"accepted", models.InviteAccepted, models.RSVPYes},
		{"declined", models.InviteDeclined, models.RSVPNo},
		{"maybe", models.InviteMaybe, models.RSVPMaybe},
	}

	for _, tt := range mapping {
		t.Run(tt.decision, func(t *testing.T) {
			env := newTestEnv(t)
			e := env.createEvent(t, models.VisibilityPrivate)
			res, err := env.invites.SendInvites(ctx, env.owner, e.ShareToken, "alice@example.com")
			if err != nil {
				t.Fatal(err)
			}
			token := res.Created[0].InviteToken

			got, err := env.invites.Respond(ctx, token, tt.decision, nil)
			if err != nil {
				t.Fatalf("Respond: %v", err)
			}
			if got.Invite.Status != tt.status || got.RSVP.Response != tt.response {
				t.Errorf("got %s/%s, want %s/%s", got.Invite.Status, got.RSVP.Response, tt.status, tt.response)
			}
			if got.Event.ShareToken != e.ShareToken {
				t.Errorf("share token = %q, want %q", got.Event.ShareToken, e.ShareToken)
			}
			// credential is issued for every decision, declined included
			if err := env.access.Verify(got.Credential, e.ID); err != nil {
				t.Errorf("credential rejected: %v", err)
			}
			if !env.access.CanView(e, nil, got.Credential) {
				t.Error("credential does not open the private event")
			}
		})
	}
}

func TestRespondRepeatedKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	e := env.createEvent(t, models.VisibilityPrivate)
	res, _ := env.invites.SendInvites(ctx, env.owner, e.ShareToken, "alice@example.com")
	token := res.Created[0].InviteToken

	for _, d := range []string{"accepted", "maybe", "declined"} {
		if _, err := env.invites.Respond(ctx, token, d, nil); err != nil {
			t.Fatalf("%s: %v", d, err)
		}
	}

	rows, summary, err := env.invites.Dashboard(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Status != models.InviteDeclined || rows[0].Response != models.RSVPNo {
		t.Fatalf("rows = %+v", rows)
	}
	if summary != (models.InviteSummary{No: 1}) {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRespondRejectsUnknownDecision(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	e := env.createEvent(t, models.VisibilityPrivate)
	res, _ := env.invites.SendInvites(ctx, env.owner, e.ShareToken, "alice@example.com")
	token := res.Created[0].InviteToken

	for _, d := range []string{"", "yes", "attending", "accept"} {
		_, err := env.invites.Respond(ctx, token, d, nil)
		assertKind(t, err, ErrInvalidInput)
	}

	rows, _ := env.store.ListInviteStatus(ctx, e.ID)
	if rows[0].Status != models.InvitePending {
		t.Errorf("status changed to %s on rejected input", rows[0].Status)
	}
	rsvps, _ := env.store.ListRSVPs(ctx, e.ID)
	if len(rsvps) != 0 {
		t.Errorf("rsvp written on rejected input: %+v", rsvps)
	}
}

func TestRespondUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.invites.Respond(context.Background(), "does-not-exist", "accepted", nil)
	assertKind(t, err, ErrNotFound)
}

func TestDashboardSummary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	e := env.createEvent(t, models.VisibilityPrivate)
	res, _ := env.invites.SendInvites(ctx, env.owner, e.ShareToken, "a@example.com b@example.com c@example.com d@example.com")

	byEmail := map[string]string{}
	for _, inv := range res.Created {
		byEmail[inv.Email] = inv.InviteToken
	}
	env.invites.Respond(ctx, byEmail["a@example.com"], "accepted", nil)
	env.invites.Respond(ctx, byEmail["b@example.com"], "maybe", nil)
	env.invites.Respond(ctx, byEmail["c@example.com"], "declined", nil)

	_, summary, err := env.invites.Dashboard(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := models.InviteSummary{Yes: 1, No: 1, Maybe: 1, Pending: 1}
	if summary != want {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}
}
