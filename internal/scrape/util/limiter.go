package util

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter paces outbound requests per hostname. Sources on the same host
// draw from one budget, so two listings pages on one portal don't double the
// request rate.
type HostLimiter struct {
	mu    sync.Mutex
	hosts map[string]*rate.Limiter
	every rate.Limit
	burst int
}

// NewHostLimiter allows reqPerSec sustained requests per host. A non-positive
// rate disables pacing.
func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	every := rate.Limit(reqPerSec)
	if reqPerSec <= 0 {
		every = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		hosts: make(map[string]*rate.Limiter),
		every: every,
		burst: burst,
	}
}

func (hl *HostLimiter) forHost(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	lim, ok := hl.hosts[host]
	if !ok {
		lim = rate.NewLimiter(hl.every, hl.burst)
		hl.hosts[host] = lim
	}
	return lim
}

// WaitURL blocks until the host of raw may be contacted or ctx ends.
// A nil limiter never blocks.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	if hl == nil {
		return ctx.Err()
	}
	return hl.forHost(hostKey(raw)).Wait(ctx)
}

func hostKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "_"
	}
	return strings.ToLower(u.Hostname())
}
