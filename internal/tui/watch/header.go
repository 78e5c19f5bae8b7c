package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// HealthState tracks service health from /healthz polling.
type HealthState struct {
	Status        string
	UptimeSeconds int64
	Deliveries    int
	Connected     bool
	LastCheck     time.Time
}

func renderHeader(health HealthState, counters Counters, activity Activity, theme Theme, width int, now time.Time) string {
	innerWidth := max(width-4, 20)

	status := theme.OK.Render("HEALTHY")
	switch {
	case !health.Connected:
		status = theme.Warn.Render("CONNECTING")
	case health.Status != "ok" && health.Status != "":
		status = theme.Failed.Render("DEGRADED")
	}

	title := " FOLIO WATCH"
	clock := theme.Dim.Render(now.Format("15:04:05"))
	pad := max(innerWidth-lipgloss.Width(title)-lipgloss.Width(clock)-4, 1)
	titleLine := title + strings.Repeat(" ", pad) + clock + " "

	statsLine := fmt.Sprintf(" %s  up %s  stored deliveries: %d",
		status,
		formatDuration(time.Duration(health.UptimeSeconds)*time.Second),
		health.Deliveries,
	)

	countersLine := fmt.Sprintf(" hooks %s/%s  services %s/%s  renders html %d pdf %d (304: %d)",
		theme.OK.Render(fmt.Sprint(counters.Authorised)),
		theme.Failed.Render(fmt.Sprint(counters.Rejected)),
		theme.OK.Render(fmt.Sprint(counters.ChecksOK)),
		theme.Failed.Render(fmt.Sprint(counters.Unavailable)),
		counters.RendersHTML,
		counters.RendersPDF,
		counters.NotModified,
	)

	last := "never"
	if !activity.Last().IsZero() {
		last = now.Sub(activity.Last()).Round(time.Second).String() + " ago"
	}
	activityLine := fmt.Sprintf(" last event: %s %s", last, activity.Render(theme))

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, statsLine, countersLine, activityLine)
	return theme.Border.Width(innerWidth).Render(content)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
