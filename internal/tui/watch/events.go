package watch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmacdonald/folio/internal/events"
)

const maxRows = 50

func newEventTable() table.Model {
	t := table.New(
		table.WithColumns(eventColumns(80)),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("#115E59")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func eventColumns(width int) []table.Column {
	detail := max(width-8-8-18-10, 20)
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Time", Width: 8},
		{Title: "Type", Width: 16},
		{Title: "Detail", Width: detail},
	}
}

func eventRows(log []events.Event) []table.Row {
	rows := make([]table.Row, 0, len(log))
	for _, e := range log {
		rows = append(rows, table.Row{
			fmt.Sprint(e.ID),
			e.At.Local().Format("15:04:05"),
			e.Type,
			describe(e),
		})
	}
	return rows
}

// describe summarizes an event payload in one line.
func describe(e events.Event) string {
	data := map[string]any{}
	_ = json.Unmarshal(e.Data, &data)

	var parts []string
	add := func(format string, keys ...string) {
		vals := make([]any, 0, len(keys))
		for _, k := range keys {
			v, ok := data[k]
			if !ok {
				return
			}
			vals = append(vals, v)
		}
		parts = append(parts, fmt.Sprintf(format, vals...))
	}

	switch e.Type {
	case events.TopicDelivery:
		if data["authorised"] == true {
			parts = append(parts, "authorised")
		} else {
			parts = append(parts, "rejected")
		}
		add("%v bytes", "body_size")
		add("via %v", "header")
	case events.TopicStatus:
		add("%v: %v (draw %v)", "id", "outcome", "draw")
	case events.TopicRender:
		add("%v as %v", "page", "format")
		if data["not_modified"] == true {
			parts = append(parts, "not modified")
		} else {
			add("%v bytes in %vms", "bytes", "duration_ms")
		}
	}

	if len(parts) == 0 {
		raw := string(e.Data)
		if len(raw) > 60 {
			raw = raw[:60] + "..."
		}
		return raw
	}
	return strings.Join(parts, ", ")
}
