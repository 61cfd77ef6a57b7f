// Package ratelimit implements per-client admission control with a strict
// two-tier sliding window: a per-minute and a per-hour request count over the
// exact timestamps of admitted requests.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/activemirror/beacon-chat/pkg/logger"
	"github.com/activemirror/beacon-chat/pkg/metrics"
)

const (
	// MinuteWindow is the span of the short window.
	MinuteWindow = time.Minute
	// HourWindow is the span of the long window and the idle eviction horizon.
	HourWindow = time.Hour
)

// Config holds limiter settings.
type Config struct {
	PerMinute int
	PerHour   int

	// MaxIdentities caps tracked identities; zero disables the cap.
	MaxIdentities int

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// window is the admitted-request history of one identity, oldest first.
type window struct {
	hits []time.Time
}

// prune drops hits that have left the hour window.
func (w *window) prune(now time.Time) {
	i := 0
	for i < len(w.hits) && now.Sub(w.hits[i]) >= HourWindow {
		i++
	}
	if i > 0 {
		w.hits = append(w.hits[:0], w.hits[i:]...)
	}
}

// recent counts hits newer than span.
func (w *window) recent(now time.Time, span time.Duration) int {
	n := 0
	for i := len(w.hits) - 1; i >= 0 && now.Sub(w.hits[i]) < span; i-- {
		n++
	}
	return n
}

// retryAfter returns how long until enough hits in the trailing span expire
// for the count to fall below limit.
func (w *window) retryAfter(now time.Time, span time.Duration, limit int) time.Duration {
	idx := len(w.hits) - limit
	if limit <= 0 || idx < 0 || idx >= len(w.hits) {
		return span
	}
	return w.hits[idx].Add(span).Sub(now)
}

func (w *window) last() (time.Time, bool) {
	if len(w.hits) == 0 {
		return time.Time{}, false
	}
	return w.hits[len(w.hits)-1], true
}

// Limiter is the admission controller. It is safe for concurrent use; the
// read-prune-count-append sequence for an identity runs under one lock.
type Limiter struct {
	cfg    Config
	logger *logger.Logger

	mu      sync.Mutex
	windows map[string]*window
	idle    *idleList
}

// NewLimiter creates a limiter.
func NewLimiter(cfg Config, log *logger.Logger) *Limiter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Limiter{
		cfg:     cfg,
		logger:  log.Named("ratelimit"),
		windows: make(map[string]*window),
		idle:    newIdleList(),
	}
}

// Admit records a request from identity if both windows have headroom.
// Denied requests are not recorded.
func (l *Limiter) Admit(identity string) error {
	now := l.cfg.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[identity]
	if !ok {
		w = &window{}
		l.windows[identity] = w
		l.idle.Touch(identity)
	}
	w.prune(now)

	minute := w.recent(now, MinuteWindow)
	hour := len(w.hits)

	if minute >= l.cfg.PerMinute {
		metrics.AdmissionDecisions.WithLabelValues(ErrPerMinuteExceeded.Error()).Inc()
		return &LimitError{
			Identity:   identity,
			Cause:      ErrPerMinuteExceeded,
			RetryAfter: w.retryAfter(now, MinuteWindow, l.cfg.PerMinute),
		}
	}
	if hour >= l.cfg.PerHour {
		metrics.AdmissionDecisions.WithLabelValues(ErrPerHourExceeded.Error()).Inc()
		return &LimitError{
			Identity:   identity,
			Cause:      ErrPerHourExceeded,
			RetryAfter: w.retryAfter(now, HourWindow, l.cfg.PerHour),
		}
	}

	w.hits = append(w.hits, now)
	l.idle.Touch(identity)
	metrics.AdmissionDecisions.WithLabelValues("allowed").Inc()

	if evicted := l.idle.EvictOver(l.cfg.MaxIdentities); len(evicted) > 0 {
		for _, key := range evicted {
			delete(l.windows, key)
		}
		l.logger.Warn("identity cap reached, evicted least recently active",
			zap.Int("evicted", len(evicted)),
			zap.Int("max_identities", l.cfg.MaxIdentities),
		)
	}
	metrics.TrackedIdentities.Set(float64(len(l.windows)))

	return nil
}

// Sweep evicts identities with no admitted request inside the hour window and
// returns how many were removed.
func (l *Limiter) Sweep() int {
	now := l.cfg.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for {
		key, ok := l.idle.Oldest()
		if !ok {
			break
		}
		if last, has := l.windows[key].last(); has && now.Sub(last) < HourWindow {
			break
		}
		l.idle.Remove(key)
		delete(l.windows, key)
		removed++
	}

	metrics.TrackedIdentities.Set(float64(len(l.windows)))
	return removed
}

// Run sweeps idle identities every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(); n > 0 {
				l.logger.Debug("swept idle identities", zap.Int("removed", n))
			}
		}
	}
}

// Tracked returns the number of identities currently holding a window.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
