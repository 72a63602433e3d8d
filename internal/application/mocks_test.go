package application_test

import (
	"context"
	"io"
	"sync"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

// --- Mock implementations ---

// mockAPI records every call by name. Unset function fields return zero
// values without error.
type mockAPI struct {
	mu    sync.Mutex
	calls []string

	login            func(username, password string) (*driven.LoginResult, error)
	fetchStats       func(token string) (*model.DashboardStats, error)
	listCredentials  func(token, filter string) ([]model.Credential, error)
	getCredential    func(token string, id int64) (*model.CredentialDetail, error)
	listExpiring     func(token string, days int) ([]model.Credential, error)
	listModels       func(token string) ([]model.DetectorModel, error)
	fetchLogs        func(token string, q model.RequestLogQuery) ([]model.RequestLog, error)
	downloadModel    func(token string, id int64, w io.Writer) (int64, error)
	createCredential func(token string, req driven.CreateCredentialRequest) (*model.CredentialDetail, error)
	toggleCredential func(token string, id int64) error
	renewCredential  func(token string, id int64, days int) error
	deleteCredential func(token string, id int64) error
	uploadModel      func(token string, req driven.UploadModelRequest) (*model.DetectorModel, error)
	activateModel    func(token string, id int64) error
	deleteModel      func(token string, id int64) error
	detect           func(apiKey string, file model.File) (model.DetectionResult, error)
	health           func() (string, error)
}

func (m *mockAPI) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockAPI) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockAPI) Login(_ context.Context, username, password string) (*driven.LoginResult, error) {
	m.record("Login")
	if m.login == nil {
		return &driven.LoginResult{AccessToken: "tok", TokenType: "bearer"}, nil
	}
	return m.login(username, password)
}

func (m *mockAPI) FetchDashboardStats(_ context.Context, token string) (*model.DashboardStats, error) {
	m.record("FetchDashboardStats")
	if m.fetchStats == nil {
		return &model.DashboardStats{}, nil
	}
	return m.fetchStats(token)
}

func (m *mockAPI) ListCredentials(_ context.Context, token, filter string) ([]model.Credential, error) {
	m.record("ListCredentials")
	if m.listCredentials == nil {
		return nil, nil
	}
	return m.listCredentials(token, filter)
}

func (m *mockAPI) GetCredential(_ context.Context, token string, id int64) (*model.CredentialDetail, error) {
	m.record("GetCredential")
	if m.getCredential == nil {
		return &model.CredentialDetail{ID: id}, nil
	}
	return m.getCredential(token, id)
}

func (m *mockAPI) ListExpiringCredentials(_ context.Context, token string, days int) ([]model.Credential, error) {
	m.record("ListExpiringCredentials")
	if m.listExpiring == nil {
		return nil, nil
	}
	return m.listExpiring(token, days)
}

func (m *mockAPI) ListModels(_ context.Context, token string) ([]model.DetectorModel, error) {
	m.record("ListModels")
	if m.listModels == nil {
		return nil, nil
	}
	return m.listModels(token)
}

func (m *mockAPI) FetchRequestLogs(_ context.Context, token string, q model.RequestLogQuery) ([]model.RequestLog, error) {
	m.record("FetchRequestLogs")
	if m.fetchLogs == nil {
		return nil, nil
	}
	return m.fetchLogs(token, q)
}

func (m *mockAPI) DownloadModel(_ context.Context, token string, id int64, w io.Writer) (int64, error) {
	m.record("DownloadModel")
	if m.downloadModel == nil {
		return 0, nil
	}
	return m.downloadModel(token, id, w)
}

func (m *mockAPI) CreateCredential(_ context.Context, token string, req driven.CreateCredentialRequest) (*model.CredentialDetail, error) {
	m.record("CreateCredential")
	if m.createCredential == nil {
		return &model.CredentialDetail{Name: req.Name}, nil
	}
	return m.createCredential(token, req)
}

func (m *mockAPI) ToggleCredential(_ context.Context, token string, id int64) error {
	m.record("ToggleCredential")
	if m.toggleCredential == nil {
		return nil
	}
	return m.toggleCredential(token, id)
}

func (m *mockAPI) RenewCredential(_ context.Context, token string, id int64, days int) error {
	m.record("RenewCredential")
	if m.renewCredential == nil {
		return nil
	}
	return m.renewCredential(token, id, days)
}

func (m *mockAPI) DeleteCredential(_ context.Context, token string, id int64) error {
	m.record("DeleteCredential")
	if m.deleteCredential == nil {
		return nil
	}
	return m.deleteCredential(token, id)
}

func (m *mockAPI) UploadModel(_ context.Context, token string, req driven.UploadModelRequest) (*model.DetectorModel, error) {
	m.record("UploadModel")
	if m.uploadModel == nil {
		return &model.DetectorModel{Filename: req.File.Name}, nil
	}
	return m.uploadModel(token, req)
}

func (m *mockAPI) ActivateModel(_ context.Context, token string, id int64) error {
	m.record("ActivateModel")
	if m.activateModel == nil {
		return nil
	}
	return m.activateModel(token, id)
}

func (m *mockAPI) DeleteModel(_ context.Context, token string, id int64) error {
	m.record("DeleteModel")
	if m.deleteModel == nil {
		return nil
	}
	return m.deleteModel(token, id)
}

func (m *mockAPI) Detect(_ context.Context, apiKey string, file model.File) (model.DetectionResult, error) {
	m.record("Detect")
	if m.detect == nil {
		return model.DetectionResult(`{}`), nil
	}
	return m.detect(apiKey, file)
}

func (m *mockAPI) Health(_ context.Context) (string, error) {
	m.record("Health")
	if m.health == nil {
		return "detector", nil
	}
	return m.health()
}

type mockStore struct {
	session model.Session
	loadErr error
	saves   int
	clears  int
}

func (m *mockStore) Load(_ context.Context) (model.Session, error) {
	return m.session, m.loadErr
}

func (m *mockStore) Save(_ context.Context, s model.Session) error {
	m.saves++
	m.session = s
	return nil
}

func (m *mockStore) Clear(_ context.Context) error {
	m.clears++
	m.session = model.Session{}
	return nil
}

type mockUI struct {
	confirmAnswer bool
	promptAnswer  string
	promptOK      bool
	questions     []string
	notices       []driven.Notice
}

func (m *mockUI) Confirm(_ context.Context, question string) (bool, error) {
	m.questions = append(m.questions, question)
	return m.confirmAnswer, nil
}

func (m *mockUI) Prompt(_ context.Context, question string) (string, bool, error) {
	m.questions = append(m.questions, question)
	return m.promptAnswer, m.promptOK, nil
}

func (m *mockUI) Notify(_ context.Context, n driven.Notice) {
	m.notices = append(m.notices, n)
}

func (m *mockUI) last() driven.Notice {
	if len(m.notices) == 0 {
		return driven.Notice{}
	}
	return m.notices[len(m.notices)-1]
}

type mockClipboard struct {
	text string
	err  error
}

func (m *mockClipboard) WriteText(text string) error {
	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}
