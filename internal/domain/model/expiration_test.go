package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpirationPolicy_Never(t *testing.T) {
	p, err := ParseExpirationPolicy("never", "abc", "not-a-date", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, Never{}, p)
	assert.Equal(t, ExpirationKindNever, p.Kind())
}

func TestParseExpirationPolicy_EmptyKindMeansNever(t *testing.T) {
	p, err := ParseExpirationPolicy("", "", "", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, Never{}, p)
}

func TestParseExpirationPolicy_Duration(t *testing.T) {
	p, err := ParseExpirationPolicy("duration", " 45 ", "", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, Duration{Days: 45}, p)
}

func TestParseExpirationPolicy_DurationInvalid(t *testing.T) {
	for _, raw := range []string{"", "abc", "0", "-3"} {
		_, err := ParseExpirationPolicy("duration", raw, "", time.UTC)
		assert.ErrorIs(t, err, ErrInvalidPolicy, "raw=%q", raw)
	}
}

func TestParseExpirationPolicy_DateLayouts(t *testing.T) {
	want := time.Date(2026, 12, 31, 23, 30, 0, 0, time.UTC)

	for _, raw := range []string{
		"2026-12-31T23:30:00Z",
		"2026-12-31T23:30:00",
		"2026-12-31T23:30",
		"2026-12-31 23:30",
	} {
		p, err := ParseExpirationPolicy("date", "", raw, time.UTC)
		require.NoError(t, err, "raw=%q", raw)
		fd, ok := p.(FixedDate)
		require.True(t, ok)
		assert.True(t, want.Equal(fd.At), "raw=%q got %s", raw, fd.At)
	}
}

func TestParseExpirationPolicy_DateUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	p, err := ParseExpirationPolicy("date", "", "2026-06-01T10:00", loc)
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01T08:00:00.000Z", FormatTimestamp(p.(FixedDate).At))
}

func TestParseExpirationPolicy_UnknownKind(t *testing.T) {
	_, err := ParseExpirationPolicy("forever", "", "", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestParseDailyLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{raw: "abc", want: nil},
		{raw: "", want: nil},
		{raw: "0", want: nil},
		{raw: "100", want: intPtr(100)},
		{raw: " 250 ", want: intPtr(250)},
		{raw: "12abc", want: intPtr(12)},
		{raw: "-5", want: intPtr(-5)},
		{raw: "+", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDailyLimit(tt.raw))
		})
	}
}

func TestSessionAuthenticated(t *testing.T) {
	assert.False(t, Session{Username: "admin"}.Authenticated())
	assert.True(t, Session{Token: "t", Username: "admin"}.Authenticated())
}

func intPtr(n int) *int { return &n }
