package adminapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
)

// apiTime accepts both zoned RFC 3339 timestamps and the zone-less UTC
// timestamps the backend emits for naive datetimes.
type apiTime struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *apiTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

// timePtr converts an optional wire timestamp to a domain pointer.
func timePtr(t *apiTime) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// --- auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// --- credentials ---

// keyListJSON is a row of GET /admin/keys. It carries only a preview of the secret.
type keyListJSON struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	KeyValuePreview  string   `json:"key_value_preview"`
	CreatedAt        apiTime  `json:"created_at"`
	LastUsedAt       *apiTime `json:"last_used_at"`
	IsActive         bool     `json:"is_active"`
	RequestCount     int64    `json:"request_count"`
	ExpiresAt        *apiTime `json:"expires_at"`
	ExpirationStatus string   `json:"expiration_status"`
	DaysUntilExpiry  *int     `json:"days_until_expiry"`
}

// keyJSON is the full credential record including the secret.
type keyJSON struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	KeyValue       string   `json:"key_value"`
	CreatedAt      apiTime  `json:"created_at"`
	LastUsedAt     *apiTime `json:"last_used_at"`
	IsActive       bool     `json:"is_active"`
	RequestCount   int64    `json:"request_count"`
	DailyLimit     *int     `json:"daily_limit"`
	ExpiresAt      *apiTime `json:"expires_at"`
	ExpirationType string   `json:"expiration_type"`
	Notes          *string  `json:"notes"`
	CreatedBy      string   `json:"created_by"`
}

// createKeyJSON is the POST /admin/keys body. The optional expiry fields are
// omitted unless the policy variant calls for them; daily_limit is always
// sent and null means unlimited.
type createKeyJSON struct {
	Name           string  `json:"name"`
	ExpirationType string  `json:"expiration_type"`
	DurationDays   *int    `json:"duration_days,omitempty"`
	ExpiresAt      *string `json:"expires_at,omitempty"`
	DailyLimit     *int    `json:"daily_limit"`
}

type renewKeyJSON struct {
	ExpirationType string `json:"expiration_type"`
	DurationDays   int    `json:"duration_days"`
}

// --- models and stats ---

type modelJSON struct {
	ID          int64   `json:"id"`
	Filename    string  `json:"filename"`
	FileSizeMB  float64 `json:"file_size_mb"`
	UploadedAt  apiTime `json:"uploaded_at"`
	IsActive    bool    `json:"is_active"`
	UploadedBy  string  `json:"uploaded_by"`
	Description *string `json:"description"`
}

type statsJSON struct {
	TotalRequestsToday int64      `json:"total_requests_today"`
	TotalRequestsWeek  int64      `json:"total_requests_week"`
	TotalRequestsMonth int64      `json:"total_requests_month"`
	SuccessRate        float64    `json:"success_rate"`
	AvgResponseTimeMS  float64    `json:"avg_response_time_ms"`
	ActiveKeysCount    int64      `json:"active_keys_count"`
	TotalKeysCount     int64      `json:"total_keys_count"`
	ExpiringKeysCount  int64      `json:"expiring_keys_count"`
	CurrentModel       *modelJSON `json:"current_model"`
}

type requestLogJSON struct {
	ID             int64   `json:"id"`
	APIKeyName     string  `json:"api_key_name"`
	Endpoint       string  `json:"endpoint"`
	StatusCode     int     `json:"status_code"`
	ResponseTimeMS float64 `json:"response_time_ms"`
	Timestamp      apiTime `json:"timestamp"`
	IPAddress      *string `json:"ip_address"`
	ErrorMessage   *string `json:"error_message"`
}

// mapCredential converts a list row to a domain Credential.
func mapCredential(k keyListJSON) model.Credential {
	return model.Credential{
		ID:               k.ID,
		Name:             k.Name,
		KeyPreview:       k.KeyValuePreview,
		Enabled:          k.IsActive,
		RequestCount:     k.RequestCount,
		CreatedAt:        k.CreatedAt.Time,
		LastUsedAt:       timePtr(k.LastUsedAt),
		ExpiresAt:        timePtr(k.ExpiresAt),
		ExpirationStatus: model.ExpirationStatus(k.ExpirationStatus),
		DaysUntilExpiry:  k.DaysUntilExpiry,
	}
}

// mapCredentialDetail converts a full record to a domain CredentialDetail.
func mapCredentialDetail(k keyJSON) *model.CredentialDetail {
	return &model.CredentialDetail{
		ID:             k.ID,
		Name:           k.Name,
		KeyValue:       k.KeyValue,
		Enabled:        k.IsActive,
		RequestCount:   k.RequestCount,
		DailyLimit:     k.DailyLimit,
		ExpirationType: k.ExpirationType,
		ExpiresAt:      timePtr(k.ExpiresAt),
		Notes:          stringValue(k.Notes),
		CreatedBy:      k.CreatedBy,
		CreatedAt:      k.CreatedAt.Time,
		LastUsedAt:     timePtr(k.LastUsedAt),
	}
}

// mapModel converts a model record to a domain DetectorModel.
func mapModel(m modelJSON) model.DetectorModel {
	return model.DetectorModel{
		ID:          m.ID,
		Filename:    m.Filename,
		SizeMB:      m.FileSizeMB,
		UploadedAt:  m.UploadedAt.Time,
		UploadedBy:  m.UploadedBy,
		Description: stringValue(m.Description),
		Active:      m.IsActive,
	}
}

func mapStats(s statsJSON) *model.DashboardStats {
	stats := &model.DashboardStats{
		RequestsToday:     s.TotalRequestsToday,
		RequestsWeek:      s.TotalRequestsWeek,
		RequestsMonth:     s.TotalRequestsMonth,
		SuccessRate:       s.SuccessRate,
		AvgResponseTimeMS: s.AvgResponseTimeMS,
		ActiveKeysCount:   s.ActiveKeysCount,
		TotalKeysCount:    s.TotalKeysCount,
		ExpiringKeysCount: s.ExpiringKeysCount,
	}
	if s.CurrentModel != nil {
		m := mapModel(*s.CurrentModel)
		stats.CurrentModel = &m
	}
	return stats
}

func mapRequestLog(l requestLogJSON) model.RequestLog {
	return model.RequestLog{
		ID:             l.ID,
		CredentialName: l.APIKeyName,
		Endpoint:       l.Endpoint,
		StatusCode:     l.StatusCode,
		ResponseTimeMS: l.ResponseTimeMS,
		Timestamp:      l.Timestamp.Time,
		IPAddress:      stringValue(l.IPAddress),
		ErrorMessage:   stringValue(l.ErrorMessage),
	}
}
