package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/4dave/corralio/models"

	"github.com/google/uuid"
)

// storeFixture seeds an owner, one event and one invite for alice.
type storeFixture struct {
	owner  *models.User
	event  *models.Event
	invite models.Invite
}

func seedFixture(t *testing.T, s Store) storeFixture {
	t.Helper()
	ctx := context.Background()

	owner, err := s.UpsertUser(ctx, "owner-"+uuid.NewString()[:8]+"@example.com", "Owner")
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	e := &models.Event{
		ID:         uuid.NewString(),
		OwnerID:    owner.ID,
		Title:      "Board games",
		StartsAt:   now.Add(48 * time.Hour),
		Visibility: models.VisibilityPrivate,
		Status:     models.EventOpen,
		ShareToken: "share" + uuid.NewString()[:12],
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.CreateEvent(ctx, e); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	inv := models.Invite{
		ID:          uuid.NewString(),
		EventID:     e.ID,
		Email:       "alice@example.com",
		InviteToken: "inv" + uuid.NewString()[:12],
		Status:      models.InvitePending,
		CreatedAt:   now,
	}
	created, err := s.InsertInvites(ctx, []models.Invite{inv})
	if err != nil || len(created) != 1 {
		t.Fatalf("InsertInvites: %v (created %d)", err, len(created))
	}

	return storeFixture{owner: owner, event: e, invite: inv}
}

// runStoreContract exercises the behaviour both backends must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("respond overwrites instead of appending", func(t *testing.T) {
		s := newStore(t)
		fx := seedFixture(t, s)

		if _, err := s.RespondToInvite(ctx, fx.invite.InviteToken, models.DecisionAccepted, "", time.Now()); err != nil {
			t.Fatalf("first respond: %v", err)
		}
		resp, err := s.RespondToInvite(ctx, fx.invite.InviteToken, models.DecisionDeclined, "", time.Now())
		if err != nil {
			t.Fatalf("second respond: %v", err)
		}
		if resp.Invite.Status != models.InviteDeclined {
			t.Errorf("invite status = %s, want declined", resp.Invite.Status)
		}
		if resp.Event.ID != fx.event.ID {
			t.Errorf("event = %s, want %s", resp.Event.ID, fx.event.ID)
		}

		rows, err := s.ListInviteStatus(ctx, fx.event.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 1 {
			t.Fatalf("invite rows = %d, want 1", len(rows))
		}
		if rows[0].Status != models.InviteDeclined || rows[0].Response != models.RSVPNo {
			t.Errorf("row = %+v, want declined/no", rows[0])
		}
		if rows[0].RespondedAt == nil {
			t.Error("responded_at not set")
		}

		rsvps, err := s.ListRSVPs(ctx, fx.event.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(rsvps) != 1 {
			t.Fatalf("rsvp rows = %d, want 1", len(rsvps))
		}
		if rsvps[0].Response != models.RSVPNo {
			t.Errorf("rsvp response = %s, want no", rsvps[0].Response)
		}
	})

	t.Run("respond attaches responder", func(t *testing.T) {
		s := newStore(t)
		fx := seedFixture(t, s)

		guest, err := s.UpsertUser(ctx, "alice@example.com", "")
		if err != nil {
			t.Fatal(err)
		}
		resp, err := s.RespondToInvite(ctx, fx.invite.InviteToken, models.DecisionMaybe, guest.ID, time.Now())
		if err != nil {
			t.Fatal(err)
		}
		if resp.RSVP.UserID != guest.ID {
			t.Errorf("rsvp user = %q, want %q", resp.RSVP.UserID, guest.ID)
		}
		if resp.Invite.Status != models.InviteMaybe || resp.RSVP.Response != models.RSVPMaybe {
			t.Errorf("got %s/%s, want maybe/maybe", resp.Invite.Status, resp.RSVP.Response)
		}

		// anonymous follow-up keeps the known user
		resp, err = s.RespondToInvite(ctx, fx.invite.InviteToken, models.DecisionAccepted, "", time.Now())
		if err != nil {
			t.Fatal(err)
		}
		if resp.RSVP.UserID != guest.ID {
			t.Errorf("rsvp user lost on anonymous answer: %q", resp.RSVP.UserID)
		}
	})

	t.Run("unknown invite token", func(t *testing.T) {
		s := newStore(t)
		seedFixture(t, s)
		_, err := s.RespondToInvite(ctx, "nope-not-a-token", models.DecisionAccepted, "", time.Now())
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("duplicate invites are skipped", func(t *testing.T) {
		s := newStore(t)
		fx := seedFixture(t, s)

		again := fx.invite
		again.ID = uuid.NewString()
		again.InviteToken = "inv" + uuid.NewString()[:12]
		fresh := models.Invite{
			ID:          uuid.NewString(),
			EventID:     fx.event.ID,
			Email:       "bob@example.com",
			InviteToken: "inv" + uuid.NewString()[:12],
			Status:      models.InvitePending,
			CreatedAt:   time.Now(),
		}

		created, err := s.InsertInvites(ctx, []models.Invite{again, fresh})
		if err != nil {
			t.Fatal(err)
		}
		if len(created) != 1 || created[0].Email != "bob@example.com" {
			t.Fatalf("created = %+v, want only bob", created)
		}
	})

	t.Run("comments are append-only and newest first", func(t *testing.T) {
		s := newStore(t)
		fx := seedFixture(t, s)

		base := time.Now().UTC().Truncate(time.Second)
		var ids []string
		for i := 0; i < 3; i++ {
			c := &models.Comment{
				ID:        uuid.NewString(),
				EventID:   fx.event.ID,
				UserID:    fx.owner.ID,
				Body:      "comment",
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}
			if err := s.InsertComment(ctx, c); err != nil {
				t.Fatal(err)
			}
			ids = append(ids, c.ID)

			got, err := s.ListComments(ctx, fx.event.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != i+1 {
				t.Fatalf("after %d posts got %d comments", i+1, len(got))
			}
			if got[0].ID != c.ID {
				t.Fatalf("newest comment not first: got %s want %s", got[0].ID, c.ID)
			}
			if got[0].AuthorEmail != fx.owner.Email {
				t.Errorf("author email = %q", got[0].AuthorEmail)
			}
		}

		got, _ := s.ListComments(ctx, fx.event.ID)
		for i, c := range got {
			if want := ids[len(ids)-1-i]; c.ID != want {
				t.Errorf("position %d = %s, want %s", i, c.ID, want)
			}
		}
	})

	t.Run("share token is unique", func(t *testing.T) {
		s := newStore(t)
		fx := seedFixture(t, s)

		dup := *fx.event
		dup.ID = uuid.NewString()
		if err := s.CreateEvent(ctx, &dup); !errors.Is(err, ErrConflict) {
			t.Fatalf("err = %v, want ErrConflict", err)
		}
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		s := newStore(t)
		fx := seedFixture(t, s)
		tag := uuid.NewString()[:8]

		titles := []string{"Pay 100% back " + tag, "Pay 1000 back " + tag, "snack_run " + tag, "snackxrun " + tag}
		for i, title := range titles {
			e := *fx.event
			e.ID = uuid.NewString()
			e.Title = title
			e.ShareToken = fmt.Sprintf("wild%d%s", i, uuid.NewString()[:8])
			if err := s.CreateEvent(ctx, &e); err != nil {
				t.Fatal(err)
			}
		}

		for _, tt := range []struct{ q, want string }{
			{"100% back " + tag, titles[0]},
			{"snack_run " + tag, titles[2]},
		} {
			rows, err := s.ListEvents(ctx, EventFilter{Query: tt.q})
			if err != nil {
				t.Fatal(err)
			}
			if len(rows) != 1 || rows[0].Title != tt.want {
				var got []string
				for _, r := range rows {
					got = append(got, r.Title)
				}
				t.Errorf("q=%q matched %v, want only %q", tt.q, got, tt.want)
			}
		}
	})

	t.Run("admin status and delete", func(t *testing.T) {
		s := newStore(t)
		fx := seedFixture(t, s)

		if err := s.SetEventStatus(ctx, fx.event.ID, models.EventClosed); err != nil {
			t.Fatal(err)
		}
		rows, err := s.ListEvents(ctx, EventFilter{Status: models.EventClosed})
		if err != nil {
			t.Fatal(err)
		}
		found := false
		for _, r := range rows {
			if r.ID == fx.event.ID {
				found = true
				if r.OwnerEmail != fx.owner.Email {
					t.Errorf("owner email = %q", r.OwnerEmail)
				}
			}
		}
		if !found {
			t.Fatal("closed event missing from filtered list")
		}

		if err := s.DeleteEvent(ctx, fx.event.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := s.GetInviteByToken(ctx, fx.invite.InviteToken); !errors.Is(err, ErrNotFound) {
			t.Errorf("invite survived event delete: %v", err)
		}
		if err := s.DeleteEvent(ctx, fx.event.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete err = %v, want ErrNotFound", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStoreVerification(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	v := models.Verification{Identifier: "a@example.com", Secret: "S1", ExpiresAt: time.Now().Add(time.Minute)}
	if err := s.SaveVerification(ctx, v); err != nil {
		t.Fatal(err)
	}
	v.Secret = "S2"
	if err := s.SaveVerification(ctx, v); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetVerification(ctx, "a@example.com")
	if err != nil || got.Secret != "S2" {
		t.Fatalf("got %+v, %v; want latest secret", got, err)
	}

	for want := 1; want <= 2; want++ {
		n, err := s.RecordFailedAttempt(ctx, "a@example.com")
		if err != nil || n != want {
			t.Fatalf("attempt %d: got %d, %v", want, n, err)
		}
	}
	v.Secret = "S3"
	if err := s.SaveVerification(ctx, v); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetVerification(ctx, "a@example.com"); got.Attempts != 0 {
		t.Errorf("attempts = %d after a new code, want 0", got.Attempts)
	}
	if _, err := s.RecordFailedAttempt(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteVerification(ctx, "a@example.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetVerification(ctx, "a@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSeed(t *testing.T) {
	s := NewMemoryStore()
	e, err := Seed(context.Background(), s, "demo@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if e.Title != "Park Picnic" || e.Visibility != models.VisibilityPublic {
		t.Errorf("seeded %+v", e)
	}
	comments, _ := s.ListComments(context.Background(), e.ID)
	if len(comments) != 1 {
		t.Errorf("comments = %d, want 1", len(comments))
	}
}
