package report

import (
	"html/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ericfisherdev/detectpanel/internal/application"
	"github.com/ericfisherdev/detectpanel/internal/domain/model"
)

// DashboardView holds presentation-ready data for the snapshot page.
// View models decouple template rendering from domain model types.
type DashboardView struct {
	Username    string
	GeneratedAt string
	HasStats    bool
	Stats       StatsView
	Credentials []CredentialView
	Models      []ModelView
}

// StatsView is the formatted statistics block.
type StatsView struct {
	RequestsToday string
	RequestsWeek  string
	RequestsMonth string
	SuccessRate   string
	AvgResponse   string
	ActiveKeys    int64
	TotalKeys     int64
	ExpiringKeys  int64
	ActiveModel   string
}

// CredentialView is one row of the API key table.
type CredentialView struct {
	ID       int64
	Name     string
	Preview  string
	Enabled  bool
	Status   string
	Expires  string
	Requests string
	LastUsed string
}

// ModelView is one row of the model table.
type ModelView struct {
	ID          int64
	Filename    string
	Size        string
	Uploaded    string
	UploadedBy  string
	Active      bool
	Description template.HTML
}

// toDashboardView converts console state into a DashboardView.
func toDashboardView(s application.State, now time.Time) DashboardView {
	v := DashboardView{
		Username:    s.Session.Username,
		GeneratedAt: now.Local().Format("2006-01-02 15:04:05 MST"),
		Credentials: make([]CredentialView, 0, len(s.Credentials)),
		Models:      make([]ModelView, 0, len(s.Models)),
	}

	if s.Stats != nil {
		v.HasStats = true
		v.Stats = toStatsView(*s.Stats)
	}
	for _, c := range s.Credentials {
		v.Credentials = append(v.Credentials, toCredentialView(c, now))
	}
	for _, m := range s.Models {
		v.Models = append(v.Models, toModelView(m, now))
	}
	return v
}

func toStatsView(s model.DashboardStats) StatsView {
	active := "none"
	if s.CurrentModel != nil {
		active = s.CurrentModel.Filename
	}
	return StatsView{
		RequestsToday: humanize.Comma(s.RequestsToday),
		RequestsWeek:  humanize.Comma(s.RequestsWeek),
		RequestsMonth: humanize.Comma(s.RequestsMonth),
		SuccessRate:   humanize.FormatFloat("#,###.#", s.SuccessRate) + "%",
		AvgResponse:   humanize.FormatFloat("#,###.", s.AvgResponseTimeMS) + " ms",
		ActiveKeys:    s.ActiveKeysCount,
		TotalKeys:     s.TotalKeysCount,
		ExpiringKeys:  s.ExpiringKeysCount,
		ActiveModel:   active,
	}
}

func toCredentialView(c model.Credential, now time.Time) CredentialView {
	status := string(c.ExpirationStatus)
	if status == "" {
		status = "never"
	}
	expires := "never"
	if c.ExpiresAt != nil {
		expires = humanize.RelTime(*c.ExpiresAt, now, "ago", "from now")
	}
	lastUsed := "never"
	if c.LastUsedAt != nil {
		lastUsed = humanize.RelTime(*c.LastUsedAt, now, "ago", "from now")
	}
	return CredentialView{
		ID:       c.ID,
		Name:     c.Name,
		Preview:  c.KeyPreview,
		Enabled:  c.Enabled,
		Status:   status,
		Expires:  expires,
		Requests: humanize.Comma(c.RequestCount),
		LastUsed: lastUsed,
	}
}

func toModelView(m model.DetectorModel, now time.Time) ModelView {
	return ModelView{
		ID:          m.ID,
		Filename:    m.Filename,
		Size:        humanize.FormatFloat("#,###.#", m.SizeMB) + " MB",
		Uploaded:    humanize.RelTime(m.UploadedAt, now, "ago", "from now"),
		UploadedBy:  m.UploadedBy,
		Active:      m.Active,
		Description: template.HTML(RenderMarkdown(m.Description)), //nolint:gosec // RenderMarkdown output is sanitized.
	}
}
