package shared

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	r := httptest.NewRequest("GET", "/tasks/42", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "42"})

	id, err := ParseID(r)
	require.NoError(t, err)
	require.EqualValues(t, 42, id)

	r = mux.SetURLVars(httptest.NewRequest("GET", "/tasks/x", nil), map[string]string{"id": "x"})
	_, err = ParseID(r)
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestParsePage(t *testing.T) {
	r := httptest.NewRequest("GET", "/tasks?limit=250&offset=40", nil)
	p := ParsePage(r, 20, 100)
	require.Equal(t, 100, p.Limit, "limit is clamped to the maximum")
	require.Equal(t, 40, p.Offset)

	r = httptest.NewRequest("GET", "/tasks?limit=-3&offset=junk", nil)
	p = ParsePage(r, 20, 100)
	require.Equal(t, 20, p.Limit)
	require.Equal(t, 0, p.Offset)
}

func TestParseDateRange(t *testing.T) {
	r := httptest.NewRequest("GET", "/dashboard?from=2026-01-01&to=2026-01-31", nil)
	dr, err := ParseDateRange(r, 30*24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 2026, dr.From.Year())
	require.Equal(t, 31, dr.To.Day())
	require.Equal(t, 23, dr.To.Hour(), "date-only upper bound covers the whole day")

	r = httptest.NewRequest("GET", "/dashboard?from=2026-02-01&to=2026-01-01", nil)
	_, err = ParseDateRange(r, time.Hour)
	require.Error(t, err)

	r = httptest.NewRequest("GET", "/dashboard?from=notadate", nil)
	_, err = ParseDateRange(r, time.Hour)
	require.Error(t, err)
}
