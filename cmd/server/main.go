package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/valeevte/PriceDashboard/internal/api"
	"github.com/valeevte/PriceDashboard/internal/charts"
	"github.com/valeevte/PriceDashboard/internal/config"
	"github.com/valeevte/PriceDashboard/internal/dashboard"
	"github.com/valeevte/PriceDashboard/internal/database"
	"github.com/valeevte/PriceDashboard/internal/logging"
	"github.com/valeevte/PriceDashboard/internal/metrics"
	"github.com/valeevte/PriceDashboard/internal/products"
	"github.com/valeevte/PriceDashboard/internal/scheduler"
	"github.com/valeevte/PriceDashboard/internal/table"

	"github.com/gin-gonic/gin"
)

func main() {
	_ = godotenv.Load() // load .env if present; not fatal if missing

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		logging.New("error").Fatalf("config: %v", err)
	}
	log := logging.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Fatalf("%v", err)
	}
}

// run блокируется до сигнала или ошибки сервера; все defer отрабатывают до выхода.
func run(cfg config.Config, log *logging.Logger) error {
	m := metrics.New(time.Now())

	// graceful shutdown coordination
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, closeCatalog, err := openCatalog(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	defer closeCatalog()

	client, err := api.NewClient(cfg.APIBase, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("price api: %w", err)
	}

	renderer := charts.NewGoChartRenderer(cfg.ChartWidth, cfg.ChartHeight, charts.Format(cfg.ChartFormat))
	dash, err := dashboard.New(ctx, dashboard.Deps{
		Catalog: catalog,
		Updater: table.NewUpdater(client, table.UpdaterConfig{Concurrency: cfg.Concurrency, Log: log, Metrics: m}),
		Loader:  charts.NewLoader(client, renderer, charts.LoaderConfig{HistoryDays: cfg.HistoryDays, Log: log, Metrics: m}),
		Metrics: m,
		Log:     log,
	})
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	defer func() {
		dash.Loader().History().Clear()
		dash.Loader().Comparison().Clear()
	}()

	// start scheduler
	wg := &sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		// scheduler runs until ctx is cancelled
		scheduler.Run(ctx, dash, scheduler.Config{Interval: cfg.RefreshInterval, Log: log})
	}()
	// wait scheduler to finish (it reacts to ctx)
	defer wg.Wait()
	defer stop()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(os.Getenv("GIN_MODE"))
	}
	r := gin.Default()
	dash.Register(r, products.NewHandler(catalog, log))

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	// start server
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Server started on %s (price api %s)", cfg.Addr(), cfg.APIBase)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// wait for interrupt
	select {
	case <-ctx.Done():
		log.Infof("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server ListenAndServe: %w", err)
	}

	// stop accepting new requests, allow 15s to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server Shutdown: %v", err)
	}

	log.Infof("graceful shutdown complete")
	return nil
}

// openCatalog выбирает источник каталога: sqlite, postgres или YAML-файл.
func openCatalog(ctx context.Context, cfg config.Config, log *logging.Logger) (products.Catalog, func(), error) {
	switch cfg.DB.Driver() {
	case database.DriverSQLite:
		repo, err := products.OpenSQLite(cfg.DB.SQLitePath())
		if err != nil {
			return nil, nil, err
		}
		log.Infof("catalog: sqlite %s", cfg.DB.SQLitePath())
		return repo, func() { _ = repo.Close() }, nil

	case database.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.DB, log)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("catalog: postgres")
		// close DB pool (blocks until connections returned)
		return products.NewRepository(pool), pool.Close, nil
	}

	cat, err := products.LoadCatalogFile(cfg.CatalogFile)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("catalog: %s", cfg.CatalogFile)
	return cat, func() {}, nil
}
