package billing

import (
	"strings"
	"time"

	"github.com/voldhaul/load-invoicing/internal/domain/entity"
)

// acceptedDateLayouts are tried in order when parsing a calendar date.
// Anything after the date part is discarded.
var acceptedDateLayouts = []string{
	entity.DateLayout,
	entity.DateTimeLayout,
	time.RFC3339,
	"01/02/2006",
}

// Period is an inclusive range of calendar dates
type Period struct {
	Start time.Time
	End   time.Time
}

// ParseDate parses a calendar date and truncates it to midnight UTC
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, entity.NewValidationError(field, "%s is required", field)
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, entity.NewValidationError(field, "%s must be a date (YYYY-MM-DD): %q", field, value)
}

// NewPeriod parses both ends of a range. An inverted range is allowed and
// simply matches nothing.
func NewPeriod(startField, start, endField, end string) (Period, error) {
	s, err := ParseDate(startField, start)
	if err != nil {
		return Period{}, err
	}
	e, err := ParseDate(endField, end)
	if err != nil {
		return Period{}, err
	}
	return Period{Start: s, End: e}, nil
}

// From is the inclusive lower bound of the delivery time filter
func (p Period) From() time.Time {
	return p.Start
}

// Until is the exclusive upper bound: midnight after the end date
func (p Period) Until() time.Time {
	return p.End.AddDate(0, 0, 1)
}

// StartDate returns the start as YYYY-MM-DD
func (p Period) StartDate() string {
	return p.Start.Format(entity.DateLayout)
}

// EndDate returns the end as YYYY-MM-DD
func (p Period) EndDate() string {
	return p.End.Format(entity.DateLayout)
}
