package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/store"
	"github.com/4dave/corralio/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentSends bounds in-flight email requests for one batch.
const maxConcurrentSends = 5

var emailSeparator = regexp.MustCompile(`[\s,;]+`)

// InviteService owns the invite and RSVP lifecycle.
type InviteService struct {
	store  store.Store
	mailer Mailer
	access *AccessService
	appURL string
	demo   bool
	now    func() time.Time
}

type InviteServiceConfig struct {
	Store  store.Store
	Mailer Mailer
	Access *AccessService
	AppURL string
	// Demo refuses every write to the invite and RSVP ledgers.
	Demo bool
}

func NewInviteService(cfg InviteServiceConfig) *InviteService {
	return &InviteService{
		store:  cfg.Store,
		mailer: cfg.Mailer,
		access: cfg.Access,
		appURL: strings.TrimRight(cfg.AppURL, "/"),
		demo:   cfg.Demo,
		now:    time.Now,
	}
}

// ParseEmails splits a free-form recipient list, lower-cases each address
// and drops blanks and duplicates while keeping input order.
func ParseEmails(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range emailSeparator.Split(raw, -1) {
		email := strings.ToLower(strings.TrimSpace(part))
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

func (s *InviteService) InviteLink(token string) string {
	return s.appURL + "/i/" + token
}

// SendInvites creates one invite per new recipient of the event behind
// shareToken and emails each of them. Only the owner may invite. Addresses
// already invited are skipped. Delivery failures are reported together as
// ErrUpstream once every send has finished; the invites themselves stay.
func (s *InviteService) SendInvites(ctx context.Context, who *models.Identity, shareToken, rawEmails string) (*models.SendInvitesResult, error) {
	if who == nil {
		return nil, newError(ErrUnauthorized, "Sign in to send invites")
	}
	if s.demo {
		return nil, newError(ErrUnconfigured, "Invites need a database. Set DATABASE_URL to enable them.")
	}

	e, err := s.store.GetEventByShareToken(ctx, shareToken)
	if err != nil {
		return nil, fromStore(err, "Event")
	}
	if !Owns(who, e) {
		return nil, newError(ErrForbidden, "Only the event owner can send invites")
	}

	emails := ParseEmails(rawEmails)
	if len(emails) == 0 {
		return nil, newError(ErrInvalidInput, "Add at least one email address")
	}

	now := s.now()
	batch := make([]models.Invite, 0, len(emails))
	for _, email := range emails {
		token, err := utils.RandomToken()
		if err != nil {
			return nil, err
		}
		batch = append(batch, models.Invite{
			ID:          uuid.New().String(),
			EventID:     e.ID,
			Email:       email,
			InviteToken: token,
			Status:      models.InvitePending,
			CreatedAt:   now,
		})
	}

	created, err := s.store.InsertInvites(ctx, batch)
	if err != nil {
		return nil, err
	}

	result := &models.SendInvitesResult{Created: created}
	createdSet := make(map[string]struct{}, len(created))
	for _, inv := range created {
		createdSet[inv.Email] = struct{}{}
	}
	for _, email := range emails {
		if _, ok := createdSet[email]; !ok {
			result.Skipped = append(result.Skipped, email)
		}
	}

	if err := s.dispatch(ctx, e, created); err != nil {
		return result, err
	}
	return result, nil
}

// dispatch sends invite emails concurrently. A failed send never cancels
// the others.
func (s *InviteService) dispatch(ctx context.Context, e *models.Event, invites []models.Invite) error {
	var (
		g        errgroup.Group
		mu       sync.Mutex
		failures []error
	)
	g.SetLimit(maxConcurrentSends)

	for _, inv := range invites {
		g.Go(func() error {
			msg := InviteMessage(inv.Email, e, s.InviteLink(inv.InviteToken))
			if _, err := s.mailer.Send(ctx, msg); err != nil {
				utils.LogInviteAction("Email failed", e.ID, inv.Email)
				mu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", inv.Email, err))
				mu.Unlock()
				return nil
			}
			utils.LogInviteAction("Email sent", e.ID, inv.Email)
			return nil
		})
	}
	g.Wait()

	if len(failures) == 0 {
		return nil
	}
	return &Error{
		Kind: ErrUpstream,
		Msg:  fmt.Sprintf("Invites saved, but %d of %d emails could not be sent", len(failures), len(invites)),
		Err:  errors.Join(failures...),
	}
}

// Lookup returns an invite and its event for the invite page.
func (s *InviteService) Lookup(ctx context.Context, token string) (*models.Invite, *models.Event, error) {
	inv, err := s.store.GetInviteByToken(ctx, token)
	if err != nil {
		return nil, nil, fromStore(err, "Invite")
	}
	e, err := s.store.GetEventByID(ctx, inv.EventID)
	if err != nil {
		return nil, nil, fromStore(err, "Event")
	}
	return inv, e, nil
}

// RespondResult is what a guest gets back after answering an invite.
type RespondResult struct {
	models.InviteResponse
	// Credential unlocks the event's private page for AccessTTL.
	Credential string
}

// Respond records decision for the invite behind token and issues the
// access credential for its event, whatever the decision was. The invite
// status, RSVP upsert and event lookup happen in one store transaction.
func (s *InviteService) Respond(ctx context.Context, token, decision string, who *models.Identity) (*RespondResult, error) {
	if s.demo {
		return nil, newError(ErrUnconfigured, "RSVPs need a database. Set DATABASE_URL to enable them.")
	}

	d, err := models.ParseDecision(decision)
	if err != nil {
		return nil, &Error{Kind: ErrInvalidInput, Msg: "Choose accept, maybe or decline", Err: err}
	}
	if strings.TrimSpace(token) == "" {
		return nil, newError(ErrInvalidInput, "Missing invite token")
	}

	var userID string
	if who != nil {
		userID = who.UserID
	}

	resp, err := s.store.RespondToInvite(ctx, token, d, userID, s.now())
	if err != nil {
		return nil, fromStore(err, "Invite")
	}

	credential, err := s.access.Issue(resp.Event.ID)
	if err != nil {
		return nil, err
	}

	utils.LogInviteAction("Responded "+string(d), resp.Event.ID, resp.Invite.Email)
	return &RespondResult{InviteResponse: *resp, Credential: credential}, nil
}

// Dashboard returns the owner's view of an event's invites and RSVP counts.
func (s *InviteService) Dashboard(ctx context.Context, eventID string) ([]models.InviteStatusRow, models.InviteSummary, error) {
	var summary models.InviteSummary

	rows, err := s.store.ListInviteStatus(ctx, eventID)
	if err != nil {
		return nil, summary, err
	}
	rsvps, err := s.store.ListRSVPs(ctx, eventID)
	if err != nil {
		return nil, summary, err
	}

	for _, r := range rsvps {
		switch r.Response {
		case models.RSVPYes:
			summary.Yes++
		case models.RSVPNo:
			summary.No++
		case models.RSVPMaybe:
			summary.Maybe++
		}
	}
	for _, row := range rows {
		if row.Status == models.InvitePending {
			summary.Pending++
		}
	}
	return rows, summary, nil
}
