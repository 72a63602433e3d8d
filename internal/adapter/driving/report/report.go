// Package report renders a standalone HTML snapshot of the dashboard.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/ericfisherdev/detectpanel/internal/application"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// WriteDashboard renders the dashboard in s as a self-contained HTML page.
// Key secrets never appear; only the previews in the mirror are used.
func WriteDashboard(w io.Writer, s application.State, now time.Time) error {
	if err := dashboardTmpl.Execute(w, toDashboardView(s, now)); err != nil {
		return fmt.Errorf("rendering dashboard report: %w", err)
	}
	return nil
}
