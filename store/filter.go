package store

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/4dave/corralio/models"
)

const filterDateLayout = "2006-01-02"

// EventFilter narrows the admin event listing. Zero fields are ignored.
type EventFilter struct {
	Query      string
	Visibility models.Visibility
	Status     models.EventStatus
	From       *time.Time
	To         *time.Time
}

// ParseEventFilter reads q, visibility, status, from and to. Values that do
// not parse are dropped rather than rejected.
func ParseEventFilter(v url.Values) EventFilter {
	var f EventFilter
	f.Query = strings.TrimSpace(v.Get("q"))

	if vis := models.Visibility(v.Get("visibility")); vis.Valid() {
		f.Visibility = vis
	}
	if st := models.EventStatus(v.Get("status")); st.Valid() {
		f.Status = st
	}
	if t, err := time.Parse(filterDateLayout, v.Get("from")); err == nil {
		f.From = &t
	}
	if t, err := time.Parse(filterDateLayout, v.Get("to")); err == nil {
		// inclusive of the whole "to" day
		end := t.AddDate(0, 0, 1)
		f.To = &end
	}
	return f
}

// Values renders the filter back into query parameters for form round-trips.
func (f EventFilter) Values() url.Values {
	v := url.Values{}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.Visibility != "" {
		v.Set("visibility", string(f.Visibility))
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.From != nil {
		v.Set("from", f.From.Format(filterDateLayout))
	}
	if f.To != nil {
		v.Set("to", f.To.AddDate(0, 0, -1).Format(filterDateLayout))
	}
	return v
}

// Where builds a SQL predicate over the events table aliased as "e".
// It returns an empty string when the filter has no conditions.
func (f EventFilter) Where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(format string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if f.Query != "" {
		args = append(args, "%"+likeEscaper.Replace(f.Query)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(e.title ILIKE $%d ESCAPE '\' OR e.location_text ILIKE $%d ESCAPE '\')`, n, n))
	}
	if f.Visibility != "" {
		add("e.visibility = $%d", string(f.Visibility))
	}
	if f.Status != "" {
		add("e.status = $%d", string(f.Status))
	}
	if f.From != nil {
		add("e.starts_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("e.starts_at < $%d", *f.To)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Match applies the same predicate as Where to an in-memory event.
func (f EventFilter) Match(e models.Event) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(e.Title), q) &&
			!strings.Contains(strings.ToLower(e.LocationText), q) {
			return false
		}
	}
	if f.Visibility != "" && e.Visibility != f.Visibility {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.From != nil && e.StartsAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !e.StartsAt.Before(*f.To) {
		return false
	}
	return true
}
