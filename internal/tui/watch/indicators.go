package watch

import (
	"strings"
	"time"
)

const activityWidth = 5

// Activity lights up when events arrive and fades one cell every two
// seconds.
type Activity struct {
	level int
	last  time.Time
}

func (a *Activity) OnEvent(now time.Time) {
	a.level = activityWidth
	a.last = now
}

func (a *Activity) Decay(now time.Time) {
	if a.last.IsZero() {
		return
	}
	a.level = max(0, activityWidth-int(now.Sub(a.last)/(2*time.Second)))
}

func (a Activity) Level() int { return a.level }

func (a Activity) Last() time.Time { return a.last }

func (a Activity) Render(theme Theme) string {
	var b strings.Builder
	for i := range activityWidth {
		if i < a.level {
			b.WriteString(theme.ActivityOn.Render("●"))
		} else {
			b.WriteString(theme.ActivityOff.Render("○"))
		}
	}
	return b.String()
}
