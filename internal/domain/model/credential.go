package model

import "time"

// ExpirationStatus is the server-computed lifecycle bucket of a credential.
type ExpirationStatus string

const (
	ExpirationStatusNever    ExpirationStatus = "never"
	ExpirationStatusActive   ExpirationStatus = "active"
	ExpirationStatusExpiring ExpirationStatus = "expiring" // Less than 7 days left.
	ExpirationStatusExpired  ExpirationStatus = "expired"
)

// Credential is one row of the credentials mirror. It never carries the
// secret key value; use CredentialDetail for that.
type Credential struct {
	ID               int64
	Name             string
	KeyPreview       string // First 8 and last 4 characters of the secret.
	Enabled          bool
	RequestCount     int64
	CreatedAt        time.Time
	LastUsedAt       *time.Time
	ExpiresAt        *time.Time
	ExpirationStatus ExpirationStatus
	DaysUntilExpiry  *int
}

// CredentialDetail is the full credential record, including the secret.
// It is fetched on demand and never kept in the console state.
type CredentialDetail struct {
	ID             int64
	Name           string
	KeyValue       string
	Enabled        bool
	RequestCount   int64
	DailyLimit     *int // nil means unlimited.
	ExpirationType string
	ExpiresAt      *time.Time
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
	LastUsedAt     *time.Time
}

// CredentialDraft holds the raw text of the new-credential form. Fields are
// parsed only when the draft is submitted.
type CredentialDraft struct {
	Name           string
	ExpirationType string // "never", "duration" or "date".
	DurationDays   string
	ExpiresAt      string
	DailyLimit     string
}

// defaultDraftDurationDays mirrors the form's initial duration value.
const defaultDraftDurationDays = "30"

// NewCredentialDraft returns a draft with the form defaults applied.
func NewCredentialDraft() CredentialDraft {
	return CredentialDraft{
		ExpirationType: string(ExpirationKindNever),
		DurationDays:   defaultDraftDurationDays,
		DailyLimit:     "0",
	}
}
