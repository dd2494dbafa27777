package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

const dateLayout = "2006-01-02"

func pathID(r *http.Request, name string) (uuid.UUID, *AppError) {
	id, err := domain.ParseID(r.PathValue(name))
	if err != nil {
		return uuid.Nil, ErrInvalidAccountID
	}
	return id, nil
}

// queryInt returns 0 for an absent parameter so callers fall back to defaults.
func queryInt(r *http.Request, name string) (int, []FieldError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, []FieldError{{Field: name, Message: "must be an integer"}}
	}
	return n, nil
}

// queryDateRange reads startDate and endDate. A bare date as endDate covers
// that whole day.
func queryDateRange(r *http.Request) (domain.DateRange, []FieldError) {
	var (
		dr   domain.DateRange
		errs []FieldError
	)
	if raw := r.URL.Query().Get("startDate"); raw != "" {
		t, _, err := parseDate(raw)
		if err != nil {
			errs = append(errs, FieldError{Field: "startDate", Message: "must be YYYY-MM-DD or RFC 3339"})
		} else {
			dr.From = &t
		}
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		t, dateOnly, err := parseDate(raw)
		if err != nil {
			errs = append(errs, FieldError{Field: "endDate", Message: "must be YYYY-MM-DD or RFC 3339"})
		} else {
			if dateOnly {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			dr.To = &t
		}
	}
	if dr.From != nil && dr.To != nil && dr.From.After(*dr.To) {
		errs = append(errs, FieldError{Field: "endDate", Message: "must not be before startDate"})
	}
	return dr, errs
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}
