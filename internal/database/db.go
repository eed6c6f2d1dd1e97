package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/valeevte/PriceDashboard/internal/logging"
)

// Connect создаёт пул и проверяет подключение
func Connect(ctx context.Context, cfg DBConfig, log *logging.Logger) (*pgxpool.Pool, error) {
	if cfg.Driver() != DriverPostgres {
		return nil, fmt.Errorf("DB config incomplete: DATABASE_URL or DB_USER/DB_HOST/DB_PORT/DB_NAME must be set")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.TargetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Infof("✅ connected to postgres")
	return pool, nil
}
