// models/tokens.go - Parsing of wire tokens into model values
package models

import (
	"strings"
	"time"

	"taskhub/apperrors"
)

func ParseStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", apperrors.Validation("invalid status %q", s)
}

// ParsePriority treats an empty token as Normal.
func ParsePriority(s string) (Priority, error) {
	if strings.TrimSpace(s) == "" {
		return PriorityNormal, nil
	}
	switch p := Priority(strings.ToUpper(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", apperrors.Validation("invalid priority %q", s)
}

// ParseDueDate accepts a calendar date (2006-01-02, the last instant of that
// day in loc) or an RFC 3339 timestamp. An empty token means no due date.
// A task due "today" stays due today until the day ends.
func ParseDueDate(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		return &end, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	return nil, apperrors.Validation("invalid due date %q", s)
}
