package gateway

import (
	"context"
	"net"
	"sync"
	"time"
)

const (
	authRateWindow   = 5 * time.Minute
	authRateMaxFails = 10
	authRateMaxIPs   = 10000
)

// authRateLimiter counts failed admin auth attempts per client IP.
type authRateLimiter struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	now      func() time.Time
}

func newAuthRateLimiter() *authRateLimiter {
	return &authRateLimiter{
		failures: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// run prunes expired entries every minute until ctx is done.
func (l *authRateLimiter) run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.prune()
		}
	}
}

func (l *authRateLimiter) prune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-authRateWindow)
	for host := range l.failures {
		l.expireLocked(host, cutoff)
	}
}

// expireLocked drops failures older than cutoff for host and returns how many
// remain.
func (l *authRateLimiter) expireLocked(host string, cutoff time.Time) int {
	recent := l.failures[host]
	kept := recent[:0]
	for _, t := range recent {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.failures, host)
		return 0
	}
	l.failures[host] = kept
	return len(kept)
}

func (l *authRateLimiter) allow(remoteAddr string) bool {
	host := clientHost(remoteAddr)

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.expireLocked(host, l.now().Add(-authRateWindow)) < authRateMaxFails
}

func (l *authRateLimiter) recordFailure(remoteAddr string) {
	host := clientHost(remoteAddr)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, tracked := l.failures[host]; !tracked && len(l.failures) >= authRateMaxIPs {
		l.evictOldestLocked()
	}
	l.failures[host] = append(l.failures[host], l.now())
}

func (l *authRateLimiter) evictOldestLocked() {
	var oldestHost string
	var oldest time.Time
	for host, times := range l.failures {
		if len(times) > 0 && (oldestHost == "" || times[0].Before(oldest)) {
			oldestHost, oldest = host, times[0]
		}
	}
	if oldestHost != "" {
		delete(l.failures, oldestHost)
	}
}

func clientHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil || host == "" {
		return remoteAddr
	}
	return host
}
