package shared

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
)

var ErrInvalidID = errors.New("invalid id parameter")

// ParseID extracts the numeric {id} route variable.
func ParseID(r *http.Request) (uint, error) {
	v, ok := mux.Vars(r)["id"]
	if !ok {
		return 0, ErrInvalidID
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidID, v)
	}
	return uint(id), nil
}

// Page holds the limit/offset pair every list endpoint accepts.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads limit/offset from the query string, clamping limit to
// [1, maxLimit] and defaulting it to defaultLimit.
func ParsePage(r *http.Request, defaultLimit, maxLimit int) Page {
	p := Page{Limit: defaultLimit}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			p.Limit = parsed
		}
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			p.Offset = parsed
		}
	}
	return p
}

// DateRange is the from/to window used by list filters and dashboards.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange reads "from" and "to" query params (RFC 3339 or YYYY-MM-DD).
// Missing bounds default to [now - fallback, now]. A "to" date without a time
// component covers the whole day.
func ParseDateRange(r *http.Request, fallback time.Duration) (DateRange, error) {
	now := time.Now().UTC()
	dr := DateRange{From: now.Add(-fallback), To: now}

	if v := r.URL.Query().Get("from"); v != "" {
		t, dateOnly, err := parseTime(v)
		if err != nil {
			return DateRange{}, errors.Wrap(err, "from")
		}
		_ = dateOnly
		dr.From = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, dateOnly, err := parseTime(v)
		if err != nil {
			return DateRange{}, errors.Wrap(err, "to")
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		dr.To = t
	}
	if dr.To.Before(dr.From) {
		return DateRange{}, errors.New("to precedes from")
	}
	return dr, nil
}

func parseTime(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), true, nil
}
