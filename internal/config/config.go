package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/valeevte/PriceDashboard/internal/database"
)

type Config struct {
	Port        int
	APIBase     string
	CatalogFile string
	LogLevel    string

	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	Concurrency     int
	HistoryDays     int

	ChartWidth  int
	ChartHeight int
	ChartFormat string

	DB database.DBConfig
}

// Parse читает флаги; значения по умолчанию берутся из окружения (.env загружается в main).
func Parse(args []string) (Config, error) {
	var (
		cfg        Config
		refreshSec int
		timeoutSec int
	)
	fs := flag.NewFlagSet("pricedash", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", envInt("PORT", 8080), "HTTP port")
	fs.StringVar(&cfg.APIBase, "api-base", envString("PRICE_API_BASE", "http://localhost:5000"), "Price API base URL")
	fs.StringVar(&cfg.CatalogFile, "catalog", envString("CATALOG_FILE", ""), "YAML catalog (used when no database is configured)")
	fs.StringVar(&cfg.LogLevel, "log-level", envString("LOG_LEVEL", "info"), "Log level: debug|info|warn|error")

	fs.IntVar(&refreshSec, "refresh", envInt("REFRESH_INTERVAL_SECONDS", 300), "Table refresh interval (seconds)")
	fs.IntVar(&timeoutSec, "timeout", envInt("REQUEST_TIMEOUT_SECONDS", 10), "Price API request timeout (seconds)")
	fs.IntVar(&cfg.Concurrency, "concurrency", envInt("FETCH_CONCURRENCY", 4), "Concurrent product fetches")
	fs.IntVar(&cfg.HistoryDays, "history-days", envInt("HISTORY_DAYS", 30), "Price history window (days)")

	fs.IntVar(&cfg.ChartWidth, "chart-width", envInt("CHART_WIDTH", 960), "Chart width (px)")
	fs.IntVar(&cfg.ChartHeight, "chart-height", envInt("CHART_HEIGHT", 400), "Chart height (px)")
	fs.StringVar(&cfg.ChartFormat, "chart-format", envString("CHART_FORMAT", "png"), "Chart image format: png|svg")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.RefreshInterval = time.Duration(refreshSec) * time.Second
	cfg.RequestTimeout = time.Duration(timeoutSec) * time.Second
	cfg.ChartFormat = strings.ToLower(strings.TrimSpace(cfg.ChartFormat))
	cfg.DB = database.NewDBConfigFromEnv()

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if strings.TrimSpace(c.APIBase) == "" {
		return fmt.Errorf("price API base URL is empty")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.ChartFormat != "png" && c.ChartFormat != "svg" {
		return fmt.Errorf("unsupported chart format %q", c.ChartFormat)
	}
	if c.CatalogFile == "" && c.DB.Driver() == database.DriverNone {
		return fmt.Errorf("no catalog: set DATABASE_URL, DB_* or -catalog")
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func envString(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}
