package provider

import (
	"time"

	"github.com/guilherme-santos/synctasks/internal"
)

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}

func (p *Provider) logf(cal internal.Calendar, format string, a ...any) {
	internal.Logf(p.output, "", cal, format, a...)
}
