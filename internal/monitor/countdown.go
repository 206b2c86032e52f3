package monitor

import (
	"context"
	"fmt"
	"time"
)

// sleep waits for the configured interval one second at a time, refreshing
// the countdown each second. Returns false if the context was cancelled.
func (m *Monitor) sleep(ctx context.Context) bool {
	total := int(m.cfg.Interval / time.Second)
	mins := int(m.cfg.Interval / time.Minute)
	m.printf("sleeping for %d %s\n", mins, plural(mins, "minute", "minutes"))

	for i := 0; i < total; i++ {
		remaining := total - i
		m.showRemaining(remaining, i+1 == total)

		select {
		case <-ctx.Done():
			return false
		case <-m.cfg.Clock.After(time.Second):
		}
	}
	return ctx.Err() == nil
}

// showRemaining prints "MM min SS sec remaining". On a terminal the line is
// redrawn every second; otherwise only whole minutes are printed.
func (m *Monitor) showRemaining(remaining int, last bool) {
	line := formatRemaining(remaining)
	switch {
	case m.cfg.Redraw && last:
		m.printf("%s\n", line)
	case m.cfg.Redraw:
		m.printf("%s\r", line)
	case remaining%60 == 0:
		m.printf("%s\n", line)
	}
}

func formatRemaining(secs int) string {
	return fmt.Sprintf("%02d min %02d sec remaining", secs/60, secs%60)
}

// Minutes converts the operator's interval flag to a duration.
func Minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
