package watch

import (
	"encoding/json"

	"github.com/dmacdonald/folio/internal/events"
)

// Counters aggregates the event feed.
type Counters struct {
	Deliveries  int
	Authorised  int
	Rejected    int
	ChecksOK    int
	Unavailable int
	RendersHTML int
	RendersPDF  int
	NotModified int
}

// Apply folds one event into the counters. Unknown topics are ignored.
func (c *Counters) Apply(e events.Event) {
	switch e.Type {
	case events.TopicDelivery:
		var d struct {
			Authorised bool `json:"authorised"`
		}
		_ = json.Unmarshal(e.Data, &d)
		c.Deliveries++
		if d.Authorised {
			c.Authorised++
		} else {
			c.Rejected++
		}
	case events.TopicStatus:
		var s struct {
			Outcome string `json:"outcome"`
		}
		_ = json.Unmarshal(e.Data, &s)
		if s.Outcome == "Unavailable" {
			c.Unavailable++
		} else {
			c.ChecksOK++
		}
	case events.TopicRender:
		var r struct {
			Format      string `json:"format"`
			NotModified bool   `json:"not_modified"`
		}
		_ = json.Unmarshal(e.Data, &r)
		switch {
		case r.NotModified:
			c.NotModified++
		case r.Format == "pdf":
			c.RendersPDF++
		default:
			c.RendersHTML++
		}
	}
}
