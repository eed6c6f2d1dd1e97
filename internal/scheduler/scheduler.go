package scheduler

import (
	"context"
	"time"

	"github.com/valeevte/PriceDashboard/internal/logging"
	"github.com/valeevte/PriceDashboard/internal/table"
)

// Config конфигурация планировщика
type Config struct {
	Interval time.Duration
	Log      *logging.Logger
}

// Refresher — то, что планировщик дёргает на каждом тике.
type Refresher interface {
	Refresh(ctx context.Context) table.Report
}

// Run запускает scheduler и блокирует выполнение, пока ctx не отменён.
// Первый проход выполняется сразу.
func Run(ctx context.Context, r Refresher, cfg Config) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cfg.Log.Infof("scheduler: started, interval %v", interval)

	// выполнить один проход сразу
	refresh(ctx, r, cfg.Log)

	for {
		select {
		case <-ctx.Done():
			cfg.Log.Infof("scheduler: stopping due to context cancelled")
			return
		case <-ticker.C:
			refresh(ctx, r, cfg.Log)
		}
	}
}

func refresh(ctx context.Context, r Refresher, log *logging.Logger) {
	// Если контекст отменён — не начинаем новый проход
	select {
	case <-ctx.Done():
		return
	default:
	}

	rep := r.Refresh(ctx)
	if n := rep.Failed(); n > 0 {
		log.Warnf("scheduler: %d of %d products failed to refresh", n, len(rep.Outcomes))
	}
}
