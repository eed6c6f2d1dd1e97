package table

import (
	"context"
	"sync"
	"time"

	"github.com/valeevte/PriceDashboard/internal/logging"
	"github.com/valeevte/PriceDashboard/internal/metrics"
	"github.com/valeevte/PriceDashboard/internal/prices"
)

const DefaultConcurrency = 4

// Fetcher отдаёт последние цены по продукту (api.Client в проде).
type Fetcher interface {
	Latest(ctx context.Context, productID string) (prices.LatestPrices, error)
}

// Outcome is the result of refreshing one product.
type Outcome struct {
	ProductID string              `json:"product"`
	Best      *prices.PriceRecord `json:"best,omitempty"`
	Err       error               `json:"-"`
	Error     string              `json:"error,omitempty"`
}

type Report struct {
	StartedAt time.Time `json:"started_at"`
	Took      string    `json:"took"`
	Outcomes  []Outcome `json:"outcomes"`
}

// Failed counts products whose fetch failed.
func (r Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

type UpdaterConfig struct {
	Concurrency int
	Log         *logging.Logger
	Metrics     *metrics.Metrics // optional
}

type Updater struct {
	fetch Fetcher
	cfg   UpdaterConfig
}

func NewUpdater(f Fetcher, cfg UpdaterConfig) *Updater {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Updater{fetch: f, cfg: cfg}
}

type fetched struct {
	latest prices.LatestPrices
	err    error
}

// Update fetches the latest prices of every product in t concurrently and fills its cells.
// A failed product keeps its cells untouched; the others are still applied.
// Results are applied in table discovery order.
func (u *Updater) Update(ctx context.Context, t *Table) Report {
	start := time.Now()
	ids := t.ProductIDs()
	results := make([]fetched, len(ids))

	sem := make(chan struct{}, u.cfg.Concurrency)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = fetched{err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			latest, err := u.fetch.Latest(ctx, id)
			results[i] = fetched{latest: latest, err: err}
		}()
	}
	wg.Wait()

	rep := Report{StartedAt: start, Outcomes: make([]Outcome, 0, len(ids))}
	for i, id := range ids {
		res := results[i]
		out := Outcome{ProductID: id}
		if res.err != nil {
			out.Err = res.err
			out.Error = res.err.Error()
			u.cfg.Log.Warnf("error loading prices for product %s: %v", id, res.err)
			if u.cfg.Metrics != nil {
				u.cfg.Metrics.FetchFailed()
			}
			rep.Outcomes = append(rep.Outcomes, out)
			continue
		}
		if u.cfg.Metrics != nil {
			u.cfg.Metrics.FetchSucceeded()
		}
		if best, ok := t.Apply(id, res.latest); ok {
			out.Best = &best
		}
		rep.Outcomes = append(rep.Outcomes, out)
	}

	took := time.Since(start)
	rep.Took = took.String()
	if u.cfg.Metrics != nil {
		u.cfg.Metrics.Refreshed(took, rep.Failed())
	}
	u.cfg.Log.Infof("table refresh: products=%d failed=%d took=%v", len(ids), rep.Failed(), took)
	return rep
}
