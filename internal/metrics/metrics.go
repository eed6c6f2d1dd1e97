package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics — счётчики дашборда, отдаются в /health.
type Metrics struct {
	start time.Time

	fetchOK     atomic.Int64
	fetchFailed atomic.Int64

	chartRendered atomic.Int64
	chartFailed   atomic.Int64

	refreshes         atomic.Int64
	lastRefreshAtMs   atomic.Int64
	lastRefreshTookMs atomic.Int64
	lastRefreshFailed atomic.Int64
}

func New(start time.Time) *Metrics {
	return &Metrics{start: start}
}

func (m *Metrics) FetchSucceeded() { m.fetchOK.Add(1) }
func (m *Metrics) FetchFailed()    { m.fetchFailed.Add(1) }

func (m *Metrics) ChartRendered() { m.chartRendered.Add(1) }
func (m *Metrics) ChartFailed()   { m.chartFailed.Add(1) }

// Refreshed records one table refresh pass and how many products failed in it.
func (m *Metrics) Refreshed(took time.Duration, failed int) {
	m.refreshes.Add(1)
	m.lastRefreshAtMs.Store(time.Now().UnixMilli())
	m.lastRefreshTookMs.Store(took.Milliseconds())
	m.lastRefreshFailed.Store(int64(failed))
}

func (m *Metrics) Snapshot() map[string]any {
	uptime := time.Since(m.start)
	return map[string]any{
		"ok":        true,
		"uptime_ms": uptime.Milliseconds(),
		"uptime":    uptime.String(),

		"fetch": map[string]any{
			"succeeded_total": m.fetchOK.Load(),
			"failed_total":    m.fetchFailed.Load(),
		},

		"charts": map[string]any{
			"rendered_total": m.chartRendered.Load(),
			"failed_total":   m.chartFailed.Load(),
		},

		"table": map[string]any{
			"refreshes_total":         m.refreshes.Load(),
			"last_refresh_at_unix_ms": m.lastRefreshAtMs.Load(),
			"last_refresh_took_ms":    m.lastRefreshTookMs.Load(),
			"last_refresh_failed":     m.lastRefreshFailed.Load(),
		},
	}
}
