package validation

import (
	"fmt"
	"strings"
	"time"

	"foundersbook-backend/internal/domain"

	"github.com/google/uuid"
)

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps, zone-less timestamps or plain dates
// and returns the instant in UTC. Zone-less input is read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.InvalidArgument(fmt.Sprintf("Invalid date %q", s))
}

// IsDateOnly reports whether s is a plain YYYY-MM-DD date.
func IsDateOnly(s string) bool {
	_, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	return err == nil
}

// ParseUUID parses an id, naming the field in the error.
func ParseUUID(field, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, domain.InvalidArgument(fmt.Sprintf("Invalid %s", field))
	}
	return id, nil
}

// Required fails when value is blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.InvalidArgument(field + " is required")
	}
	return nil
}
