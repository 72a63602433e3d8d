package model

import (
	"encoding/json"
	"time"
)

// DetectorModel is an uploaded ML model file. The server keeps at most one
// model active; the client does not check this.
type DetectorModel struct {
	ID          int64
	Filename    string
	SizeMB      float64
	UploadedAt  time.Time
	UploadedBy  string
	Description string
	Active      bool
}

// DashboardStats is the aggregate usage snapshot shown on the dashboard.
type DashboardStats struct {
	RequestsToday     int64
	RequestsWeek      int64
	RequestsMonth     int64
	SuccessRate       float64 // Percent, 0-100.
	AvgResponseTimeMS float64
	ActiveKeysCount   int64
	TotalKeysCount    int64
	ExpiringKeysCount int64
	CurrentModel      *DetectorModel
}

// RequestLog is one entry of the detection request log.
type RequestLog struct {
	ID             int64
	CredentialName string
	Endpoint       string
	StatusCode     int
	ResponseTimeMS float64
	Timestamp      time.Time
	IPAddress      string
	ErrorMessage   string
}

// RequestLogQuery pages through the request log. CredentialID of zero means
// all credentials.
type RequestLogQuery struct {
	Skip         int
	Limit        int
	CredentialID int64
}

// DetectionDraft is the detection-test panel's selection.
type DetectionDraft struct {
	CredentialID int64
	File         *File
}

// DetectionResult is the detection endpoint's response, kept verbatim.
type DetectionResult = json.RawMessage
