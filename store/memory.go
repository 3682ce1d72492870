package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/4dave/corralio/models"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory behind a single mutex.
// State is lost on restart and is not shared between instances.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]*models.User // by id
	verifications map[string]models.Verification
	events        map[string]*models.Event // by id
	invites       []*models.Invite
	rsvps         []*models.RSVP
	comments      []*models.Comment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]*models.User),
		verifications: make(map[string]models.Verification),
		events:        make(map[string]*models.Event),
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) UpsertUser(ctx context.Context, email, name string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			if u.Name == "" {
				u.Name = name
			}
			cp := *u
			return &cp, nil
		}
	}
	u := &models.User{ID: uuid.New().String(), Email: email, Name: name, CreatedAt: time.Now()}
	s.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) SaveVerification(ctx context.Context, v models.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.Attempts = 0
	s.verifications[v.Identifier] = v
	return nil
}

func (s *MemoryStore) RecordFailedAttempt(ctx context.Context, identifier string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.verifications[identifier]
	if !ok {
		return 0, ErrNotFound
	}
	v.Attempts++
	s.verifications[identifier] = v
	return v.Attempts, nil
}

func (s *MemoryStore) GetVerification(ctx context.Context, identifier string) (*models.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.verifications[identifier]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (s *MemoryStore) DeleteVerification(ctx context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.verifications, identifier)
	return nil
}

func (s *MemoryStore) CreateEvent(ctx context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.events {
		if existing.ShareToken == e.ShareToken {
			return ErrConflict
		}
	}
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *MemoryStore) findEventByShareToken(shareToken string) *models.Event {
	for _, e := range s.events {
		if e.ShareToken == shareToken {
			return e
		}
	}
	return nil
}

func (s *MemoryStore) GetEventByShareToken(ctx context.Context, shareToken string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.findEventByShareToken(shareToken)
	if e == nil {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) ListEventsByOwner(ctx context.Context, ownerID string) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Event{}
	for _, e := range s.events {
		if e.OwnerID == ownerID {
			out = append(out, *e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ListEvents(ctx context.Context, f EventFilter) ([]models.AdminEventRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.AdminEventRow{}
	for _, e := range s.events {
		if !f.Match(*e) {
			continue
		}
		row := models.AdminEventRow{Event: *e}
		if u, ok := s.users[e.OwnerID]; ok {
			row.OwnerEmail = u.Email
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	return out, nil
}

func (s *MemoryStore) SetEventStatus(ctx context.Context, id string, status models.EventStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return ErrNotFound
	}
	e.Status = status
	e.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return ErrNotFound
	}
	delete(s.events, id)

	// cascade
	s.invites = filterSlice(s.invites, func(i *models.Invite) bool { return i.EventID != id })
	s.rsvps = filterSlice(s.rsvps, func(r *models.RSVP) bool { return r.EventID != id })
	s.comments = filterSlice(s.comments, func(c *models.Comment) bool { return c.EventID != id })
	return nil
}

func filterSlice[T any](in []T, keep func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (s *MemoryStore) InsertInvites(ctx context.Context, invites []models.Invite) ([]models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created []models.Invite
	for _, inv := range invites {
		if s.hasInvite(inv.EventID, inv.Email, inv.InviteToken) {
			continue
		}
		cp := inv
		s.invites = append(s.invites, &cp)
		created = append(created, inv)
	}
	return created, nil
}

func (s *MemoryStore) hasInvite(eventID, email, token string) bool {
	for _, i := range s.invites {
		if (i.EventID == eventID && i.Email == email) || i.InviteToken == token {
			return true
		}
	}
	return false
}

func (s *MemoryStore) findInvite(token string) *models.Invite {
	for _, i := range s.invites {
		if i.InviteToken == token {
			return i
		}
	}
	return nil
}

func (s *MemoryStore) GetInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv := s.findInvite(token)
	if inv == nil {
		return nil, ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (s *MemoryStore) ListInviteStatus(ctx context.Context, eventID string) ([]models.InviteStatusRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.InviteStatusRow{}
	for _, inv := range s.invites {
		if inv.EventID != eventID {
			continue
		}
		row := models.InviteStatusRow{Invite: *inv}
		if r := s.findRSVP(eventID, inv.Email); r != nil {
			row.Response = r.Response
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *MemoryStore) findRSVP(eventID, email string) *models.RSVP {
	for _, r := range s.rsvps {
		if r.EventID == eventID && strings.EqualFold(r.Email, email) {
			return r
		}
	}
	return nil
}

func (s *MemoryStore) ListRSVPs(ctx context.Context, eventID string) ([]models.RSVP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.RSVP{}
	for _, r := range s.rsvps {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *MemoryStore) RespondToInvite(ctx context.Context, token string, d models.Decision, userID string, now time.Time) (*models.InviteResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv := s.findInvite(token)
	if inv == nil {
		return nil, ErrNotFound
	}
	e, ok := s.events[inv.EventID]
	if !ok {
		return nil, ErrNotFound
	}

	inv.Status = d.InviteStatus()
	respondedAt := now
	inv.RespondedAt = &respondedAt

	r := s.findRSVP(inv.EventID, inv.Email)
	if r == nil {
		r = &models.RSVP{ID: uuid.New().String(), EventID: inv.EventID, Email: inv.Email, CreatedAt: now}
		s.rsvps = append(s.rsvps, r)
	}
	r.Response = d.RSVPResponse()
	if userID != "" {
		r.UserID = userID
	}

	return &models.InviteResponse{Invite: *inv, RSVP: *r, Event: *e}, nil
}

func (s *MemoryStore) InsertComment(ctx context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	s.comments = append(s.comments, &cp)
	return nil
}

func (s *MemoryStore) ListComments(ctx context.Context, eventID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Comment{}
	// walk backwards so equal timestamps still come out newest first
	for i := len(s.comments) - 1; i >= 0; i-- {
		c := s.comments[i]
		if c.EventID != eventID {
			continue
		}
		cp := *c
		if u, ok := s.users[c.UserID]; ok {
			cp.AuthorEmail = u.Email
		}
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
