package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ExpirationKind is the wire discriminator for an expiration policy.
type ExpirationKind string

const (
	ExpirationKindNever    ExpirationKind = "never"
	ExpirationKindDuration ExpirationKind = "duration"
	ExpirationKindDate     ExpirationKind = "date"
)

// ExpirationPolicy is a closed sum type: Never, Duration or FixedDate.
// The unexported marker method keeps other packages from adding variants.
type ExpirationPolicy interface {
	Kind() ExpirationKind
	isExpirationPolicy()
}

// Never means the credential does not expire.
type Never struct{}

// Duration expires the credential Days days after creation or renewal.
type Duration struct {
	Days int
}

// FixedDate expires the credential at an absolute instant.
type FixedDate struct {
	At time.Time
}

func (Never) Kind() ExpirationKind     { return ExpirationKindNever }
func (Duration) Kind() ExpirationKind  { return ExpirationKindDuration }
func (FixedDate) Kind() ExpirationKind { return ExpirationKindDate }

func (Never) isExpirationPolicy()     {}
func (Duration) isExpirationPolicy()  {}
func (FixedDate) isExpirationPolicy() {}

// ErrInvalidPolicy is returned when draft fields cannot form a policy.
var ErrInvalidPolicy = errors.New("invalid expiration policy")

// isoMillis matches the browser's Date.toISOString output.
const isoMillis = "2006-01-02T15:04:05.000Z"

// dateLayouts are the accepted spellings of a fixed expiry date, most
// specific first. Zone-less layouts are read in the caller's location.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseExpirationPolicy builds a policy from raw form values. Only the field
// belonging to the chosen kind is read; the others are ignored.
func ParseExpirationPolicy(kind, durationDays, expiresAt string, loc *time.Location) (ExpirationPolicy, error) {
	switch ExpirationKind(strings.TrimSpace(kind)) {
	case ExpirationKindNever, "":
		return Never{}, nil
	case ExpirationKindDuration:
		days, err := ParseDays(durationDays)
		if err != nil {
			return nil, err
		}
		return Duration{Days: days}, nil
	case ExpirationKindDate:
		at, err := parseDate(expiresAt, loc)
		if err != nil {
			return nil, err
		}
		return FixedDate{At: at}, nil
	default:
		return nil, fmt.Errorf("%w: unknown expiration type %q", ErrInvalidPolicy, kind)
	}
}

// ParseDays parses a strictly positive whole number of days.
func ParseDays(raw string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || days <= 0 {
		return 0, fmt.Errorf("%w: duration must be a positive number of days, got %q", ErrInvalidPolicy, raw)
	}
	return days, nil
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized expiry date %q", ErrInvalidPolicy, raw)
}

// FormatTimestamp renders t as a UTC ISO-8601 timestamp with milliseconds.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// ParseDailyLimit reads the leading integer of raw the way a browser's
// parseInt does. Missing digits and zero both mean "no limit" and yield nil;
// this function never fails.
func ParseDailyLimit(raw string) *int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return nil
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n == 0 {
		return nil
	}
	return &n
}
