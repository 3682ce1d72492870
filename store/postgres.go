package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/4dave/corralio/models"

	"github.com/google/uuid"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ============================================================================
// USERS
// ============================================================================

func (s *PostgresStore) UpsertUser(ctx context.Context, email, name string) (*models.User, error) {
	var u models.User
	var n sql.NullString
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (email) DO UPDATE SET name = COALESCE(users.name, EXCLUDED.name)
		RETURNING id, email, name, created_at
	`, uuid.New().String(), email, nullString(name)).Scan(&u.ID, &u.Email, &n, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Name = n.String
	return &u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	var n sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, created_at FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &n, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Name = n.String
	return &u, nil
}

func (s *PostgresStore) SaveVerification(ctx context.Context, v models.Verification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verification_tokens (identifier, secret, expires_at, attempts)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (identifier) DO UPDATE
		SET secret = EXCLUDED.secret, expires_at = EXCLUDED.expires_at, attempts = 0
	`, v.Identifier, v.Secret, v.ExpiresAt)
	return err
}

func (s *PostgresStore) GetVerification(ctx context.Context, identifier string) (*models.Verification, error) {
	var v models.Verification
	err := s.db.QueryRowContext(ctx, `
		SELECT identifier, secret, expires_at, attempts FROM verification_tokens WHERE identifier = $1
	`, identifier).Scan(&v.Identifier, &v.Secret, &v.ExpiresAt, &v.Attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *PostgresStore) RecordFailedAttempt(ctx context.Context, identifier string) (int, error) {
	var attempts int
	err := s.db.QueryRowContext(ctx, `
		UPDATE verification_tokens SET attempts = attempts + 1
		WHERE identifier = $1
		RETURNING attempts
	`, identifier).Scan(&attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return attempts, err
}

func (s *PostgresStore) DeleteVerification(ctx context.Context, identifier string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE identifier = $1`, identifier)
	return err
}

// ============================================================================
// EVENTS
// ============================================================================

const eventColumns = `e.id, e.owner_id, e.title, e.description, e.starts_at, e.ends_at,
	e.location_text, e.visibility, e.status, e.share_token, e.created_at, e.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner, extra ...any) (*models.Event, error) {
	var (
		e           models.Event
		description sql.NullString
		location    sql.NullString
		endsAt      sql.NullTime
	)
	dest := []any{
		&e.ID, &e.OwnerID, &e.Title, &description, &e.StartsAt, &endsAt,
		&location, &e.Visibility, &e.Status, &e.ShareToken, &e.CreatedAt, &e.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	e.Description = description.String
	e.LocationText = location.String
	if endsAt.Valid {
		t := endsAt.Time
		e.EndsAt = &t
	}
	return &e, nil
}

func (s *PostgresStore) CreateEvent(ctx context.Context, e *models.Event) error {
	var endsAt sql.NullTime
	if e.EndsAt != nil {
		endsAt = sql.NullTime{Time: *e.EndsAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, owner_id, title, description, starts_at, ends_at,
			location_text, visibility, status, share_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.ID, e.OwnerID, e.Title, nullString(e.Description), e.StartsAt, endsAt,
		nullString(e.LocationText), e.Visibility, e.Status, e.ShareToken, e.CreatedAt, e.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *PostgresStore) GetEventByShareToken(ctx context.Context, shareToken string) (*models.Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.share_token = $1`, shareToken))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (s *PostgresStore) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (s *PostgresStore) ListEventsByOwner(ctx context.Context, ownerID string) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.owner_id = $1 ORDER BY e.created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *PostgresStore) ListEvents(ctx context.Context, f EventFilter) ([]models.AdminEventRow, error) {
	where, args := f.Where()
	query := `SELECT ` + eventColumns + `, u.email
		FROM events e
		LEFT JOIN users u ON u.id = e.owner_id
		` + where + `
		ORDER BY e.starts_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AdminEventRow{}
	for rows.Next() {
		var ownerEmail sql.NullString
		e, err := scanEvent(rows, &ownerEmail)
		if err != nil {
			return nil, err
		}
		out = append(out, models.AdminEventRow{Event: *e, OwnerEmail: ownerEmail.String})
	}
	return out, rows.Err()
}

func (s *PostgresStore) SetEventStatus(ctx context.Context, id string, status models.EventStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *PostgresStore) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ============================================================================
// INVITES & RSVPS
// ============================================================================

const inviteColumns = `id, event_id, email, invite_token, status, responded_at, created_at`

func scanInvite(row rowScanner, extra ...any) (*models.Invite, error) {
	var (
		inv         models.Invite
		respondedAt sql.NullTime
	)
	dest := []any{&inv.ID, &inv.EventID, &inv.Email, &inv.InviteToken, &inv.Status, &respondedAt, &inv.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if respondedAt.Valid {
		t := respondedAt.Time
		inv.RespondedAt = &t
	}
	return &inv, nil
}

func (s *PostgresStore) InsertInvites(ctx context.Context, invites []models.Invite) ([]models.Invite, error) {
	if len(invites) == 0 {
		return nil, nil
	}

	var (
		values []string
		args   []any
	)
	for _, inv := range invites {
		n := len(args)
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6))
		args = append(args, inv.ID, inv.EventID, inv.Email, inv.InviteToken, inv.Status, inv.CreatedAt)
	}

	rows, err := s.db.QueryContext(ctx, `
		INSERT INTO event_invites (id, event_id, email, invite_token, status, created_at)
		VALUES `+strings.Join(values, ", ")+`
		ON CONFLICT DO NOTHING
		RETURNING `+inviteColumns, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var created []models.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		created = append(created, *inv)
	}
	return created, rows.Err()
}

func (s *PostgresStore) GetInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	inv, err := scanInvite(s.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM event_invites WHERE invite_token = $1`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return inv, err
}

func (s *PostgresStore) ListInviteStatus(ctx context.Context, eventID string) ([]models.InviteStatusRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.event_id, i.email, i.invite_token, i.status, i.responded_at, i.created_at, r.response
		FROM event_invites i
		LEFT JOIN rsvps r ON r.event_id = i.event_id AND r.email = i.email
		WHERE i.event_id = $1
		ORDER BY i.created_at ASC, i.email ASC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.InviteStatusRow{}
	for rows.Next() {
		var response sql.NullString
		inv, err := scanInvite(rows, &response)
		if err != nil {
			return nil, err
		}
		out = append(out, models.InviteStatusRow{Invite: *inv, Response: models.RSVPResponse(response.String)})
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListRSVPs(ctx context.Context, eventID string) ([]models.RSVP, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, user_id, email, response, created_at
		FROM rsvps WHERE event_id = $1 ORDER BY created_at ASC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.RSVP{}
	for rows.Next() {
		var r models.RSVP
		var userID, email sql.NullString
		if err := rows.Scan(&r.ID, &r.EventID, &userID, &email, &r.Response, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.UserID, r.Email = userID.String, email.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) RespondToInvite(ctx context.Context, token string, d models.Decision, userID string, now time.Time) (*models.InviteResponse, error) {
	var out models.InviteResponse

	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		// 1. Lock the invite row
		inv, err := scanInvite(tx.QueryRowContext(ctx,
			`SELECT `+inviteColumns+` FROM event_invites WHERE invite_token = $1 FOR UPDATE`, token))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		// 2. Overwrite its status
		inv.Status = d.InviteStatus()
		inv.RespondedAt = &now
		if _, err := tx.ExecContext(ctx,
			`UPDATE event_invites SET status = $1, responded_at = $2 WHERE id = $3`,
			inv.Status, now, inv.ID); err != nil {
			return err
		}
		out.Invite = *inv

		// 3. Upsert the RSVP keyed by (event, email)
		var rsvpUser, rsvpEmail sql.NullString
		err = tx.QueryRowContext(ctx, `
			INSERT INTO rsvps (id, event_id, user_id, email, response, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (event_id, email) DO UPDATE
				SET response = EXCLUDED.response,
				    user_id = COALESCE(EXCLUDED.user_id, rsvps.user_id)
			RETURNING id, event_id, user_id, email, response, created_at
		`, uuid.New().String(), inv.EventID, nullString(userID), inv.Email, d.RSVPResponse(), now).Scan(
			&out.RSVP.ID, &out.RSVP.EventID, &rsvpUser, &rsvpEmail, &out.RSVP.Response, &out.RSVP.CreatedAt)
		if err != nil {
			return err
		}
		out.RSVP.UserID, out.RSVP.Email = rsvpUser.String, rsvpEmail.String

		// 4. Parent event
		e, err := scanEvent(tx.QueryRowContext(ctx,
			`SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, inv.EventID))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		out.Event = *e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// COMMENTS
// ============================================================================

func (s *PostgresStore) InsertComment(ctx context.Context, c *models.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, event_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.EventID, nullString(c.UserID), c.Body, c.CreatedAt)
	return err
}

func (s *PostgresStore) ListComments(ctx context.Context, eventID string) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.event_id, c.user_id, u.email, c.body, c.created_at
		FROM comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.event_id = $1
		ORDER BY c.created_at DESC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		var userID, email sql.NullString
		if err := rows.Scan(&c.ID, &c.EventID, &userID, &email, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.UserID, c.AuthorEmail = userID.String, email.String
		out = append(out, c)
	}
	return out, rows.Err()
}
