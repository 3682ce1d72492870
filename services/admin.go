package services

import (
	"context"
	"strings"

	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/store"
	"github.com/4dave/corralio/utils"
)

// AdminService backs the event console for addresses listed in ADMIN_EMAILS.
type AdminService struct {
	store  store.Store
	admins map[string]struct{}
}

func NewAdminService(s store.Store, adminEmails []string) *AdminService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &AdminService{store: s, admins: admins}
}

func (s *AdminService) IsAdmin(who *models.Identity) bool {
	if who == nil {
		return false
	}
	_, ok := s.admins[strings.ToLower(who.Email)]
	return ok
}

func (s *AdminService) ListEvents(ctx context.Context, who *models.Identity, f store.EventFilter) ([]models.AdminEventRow, error) {
	if !s.IsAdmin(who) {
		return nil, ErrForbidden
	}
	return s.store.ListEvents(ctx, f)
}

// Apply runs one console action ("close", "reopen" or "delete") on an event.
func (s *AdminService) Apply(ctx context.Context, who *models.Identity, eventID, action string) error {
	if !s.IsAdmin(who) {
		return ErrForbidden
	}

	var err error
	switch action {
	case "close":
		err = s.store.SetEventStatus(ctx, eventID, models.EventClosed)
	case "reopen":
		err = s.store.SetEventStatus(ctx, eventID, models.EventOpen)
	case "delete":
		err = s.store.DeleteEvent(ctx, eventID)
	default:
		return newError(ErrInvalidInput, "Unknown action")
	}
	if err != nil {
		return fromStore(err, "Event")
	}
	utils.LogEventAction("Admin "+action, eventID, who.UserID)
	return nil
}
