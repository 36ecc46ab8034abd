package listener

import (
	"context"
	"time"
)

// Poller is the fallback for deployments without a push channel: it
// invokes the full refresh on a fixed interval, re-attempting regardless
// of prior failures.
type Poller struct {
	interval time.Duration
	refresh  func()
}

func NewPoller(interval time.Duration, refresh func()) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{interval: interval, refresh: refresh}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh()
		}
	}
}
