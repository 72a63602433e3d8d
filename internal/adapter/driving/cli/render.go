package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ericfisherdev/detectpanel/internal/application"
	"github.com/ericfisherdev/detectpanel/internal/domain/model"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderStats(w io.Writer, s *model.DashboardStats) {
	if s == nil {
		fmt.Fprintln(w, "Statistics unavailable.")
		return
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "Requests today\t%s\n", humanize.Comma(s.RequestsToday))
	fmt.Fprintf(tw, "Requests this week\t%s\n", humanize.Comma(s.RequestsWeek))
	fmt.Fprintf(tw, "Requests this month\t%s\n", humanize.Comma(s.RequestsMonth))
	fmt.Fprintf(tw, "Success rate\t%.1f%%\n", s.SuccessRate)
	fmt.Fprintf(tw, "Avg response time\t%.0f ms\n", s.AvgResponseTimeMS)
	fmt.Fprintf(tw, "API keys\t%d active / %d total (%d expiring)\n", s.ActiveKeysCount, s.TotalKeysCount, s.ExpiringKeysCount)
	if s.CurrentModel != nil {
		fmt.Fprintf(tw, "Active model\t%s (%.1f MB)\n", s.CurrentModel.Filename, s.CurrentModel.SizeMB)
	} else {
		fmt.Fprintln(tw, "Active model\tnone")
	}
	tw.Flush()
}

func renderCredentials(w io.Writer, creds []model.Credential, now time.Time) {
	if len(creds) == 0 {
		fmt.Fprintln(w, "No API keys found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tKEY\tSTATUS\tEXPIRES\tREQUESTS\tLAST USED")
	for _, c := range creds {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.KeyPreview, credentialStatus(c),
			expiry(c, now), humanize.Comma(c.RequestCount), lastUsed(c.LastUsedAt, now))
	}
	tw.Flush()
}

// credentialStatus combines the enabled flag with the expiration bucket.
func credentialStatus(c model.Credential) string {
	if !c.Enabled {
		return "disabled"
	}
	if c.ExpirationStatus == "" {
		return "enabled"
	}
	return string(c.ExpirationStatus)
}

func expiry(c model.Credential, now time.Time) string {
	if c.ExpiresAt == nil {
		return "never"
	}
	rel := humanize.RelTime(*c.ExpiresAt, now, "ago", "from now")
	return c.ExpiresAt.Local().Format("2006-01-02") + " (" + rel + ")"
}

func lastUsed(t *time.Time, now time.Time) string {
	if t == nil {
		return "never"
	}
	return humanize.RelTime(*t, now, "ago", "from now")
}

func renderCredentialDetail(w io.Writer, d *model.CredentialDetail) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\t%d\n", d.ID)
	fmt.Fprintf(tw, "Name\t%s\n", d.Name)
	fmt.Fprintf(tw, "Key\t%s\n", d.KeyValue)
	fmt.Fprintf(tw, "Expiration\t%s\n", d.ExpirationType)
	if d.ExpiresAt != nil {
		fmt.Fprintf(tw, "Expires at\t%s\n", d.ExpiresAt.Local().Format(time.RFC3339))
	}
	limit := "unlimited"
	if d.DailyLimit != nil {
		limit = strconv.Itoa(*d.DailyLimit) + " requests/day"
	}
	fmt.Fprintf(tw, "Daily limit\t%s\n", limit)
	tw.Flush()
	fmt.Fprintln(w, "Store the key now; it is not shown in listings.")
}

func renderModels(w io.Writer, models []model.DetectorModel, now time.Time) {
	if len(models) == 0 {
		fmt.Fprintln(w, "No models uploaded.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tFILENAME\tSIZE\tUPLOADED\tBY\tACTIVE\tDESCRIPTION")
	for _, m := range models {
		active := ""
		if m.Active {
			active = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.1f MB\t%s\t%s\t%s\t%s\n",
			m.ID, m.Filename, m.SizeMB, humanize.RelTime(m.UploadedAt, now, "ago", "from now"),
			m.UploadedBy, active, m.Description)
	}
	tw.Flush()
}

func renderLogs(w io.Writer, logs []model.RequestLog) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No requests logged.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "TIME\tKEY\tENDPOINT\tSTATUS\tLATENCY\tIP\tERROR")
	for _, l := range logs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.0f ms\t%s\t%s\n",
			l.Timestamp.Local().Format("2006-01-02 15:04:05"), l.CredentialName, l.Endpoint,
			l.StatusCode, l.ResponseTimeMS, l.IPAddress, l.ErrorMessage)
	}
	tw.Flush()
}

func renderDashboard(w io.Writer, s application.State, now time.Time) {
	fmt.Fprintf(w, "Signed in as %s\n\n", s.Session.Username)
	renderStats(w, s.Stats)
	fmt.Fprintln(w)
	renderCredentials(w, s.Credentials, now)
	fmt.Fprintln(w)
	renderModels(w, s.Models, now)
	if !s.StatsRefreshedAt.IsZero() {
		fmt.Fprintf(w, "\nUpdated %s\n", s.StatsRefreshedAt.Local().Format("15:04:05"))
	}
}
