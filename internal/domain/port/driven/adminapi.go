package driven

import (
	"context"
	"io"
	"time"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
)

// LoginResult is the token returned by a successful admin login.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

// CreateCredentialRequest is the shaped create-credential payload. Policy
// decides which of the optional expiry fields reach the wire.
type CreateCredentialRequest struct {
	Name       string
	Policy     model.ExpirationPolicy
	DailyLimit *int // nil means unlimited.
}

// UploadModelRequest is a model file upload with optional description.
type UploadModelRequest struct {
	File        model.File
	Description string
}

// AdminAPI defines the driven port for the remote detection-service admin API.
// Admin methods authenticate with the operator's bearer token; Detect
// authenticates as an API consumer with a credential's secret.
//
// Non-2xx responses are reported as *APIError; anything else is a transport
// or decoding failure.
type AdminAPI interface {
	// Session

	Login(ctx context.Context, username, password string) (*LoginResult, error)

	// Read methods

	FetchDashboardStats(ctx context.Context, token string) (*model.DashboardStats, error)
	// ListCredentials returns all credentials, optionally filtered by
	// expiration status ("" for no filter).
	ListCredentials(ctx context.Context, token, statusFilter string) ([]model.Credential, error)
	// GetCredential returns the full record including the secret key value.
	GetCredential(ctx context.Context, token string, id int64) (*model.CredentialDetail, error)
	// ListExpiringCredentials returns credentials expiring within days.
	ListExpiringCredentials(ctx context.Context, token string, days int) ([]model.Credential, error)
	ListModels(ctx context.Context, token string) ([]model.DetectorModel, error)
	FetchRequestLogs(ctx context.Context, token string, q model.RequestLogQuery) ([]model.RequestLog, error)
	// DownloadModel streams the model file body into w.
	DownloadModel(ctx context.Context, token string, id int64, w io.Writer) (int64, error)

	// Write methods

	CreateCredential(ctx context.Context, token string, req CreateCredentialRequest) (*model.CredentialDetail, error)
	ToggleCredential(ctx context.Context, token string, id int64) error
	// RenewCredential always renews with a Duration policy.
	RenewCredential(ctx context.Context, token string, id int64, days int) error
	DeleteCredential(ctx context.Context, token string, id int64) error
	UploadModel(ctx context.Context, token string, req UploadModelRequest) (*model.DetectorModel, error)
	ActivateModel(ctx context.Context, token string, id int64) error
	DeleteModel(ctx context.Context, token string, id int64) error

	// Consumer-facing

	// Health calls the unauthenticated health check and returns the
	// service name.
	Health(ctx context.Context) (string, error)

	// Detect submits an image to the detection endpoint authenticated with
	// apiKey and returns the response body verbatim.
	Detect(ctx context.Context, apiKey string, file model.File) (model.DetectionResult, error)
}
