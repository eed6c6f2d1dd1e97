package database

import (
	"context"
	"testing"

	"github.com/valeevte/PriceDashboard/internal/logging"
)

func TestDriver(t *testing.T) {
	cases := []struct {
		name string
		cfg  DBConfig
		want Driver
	}{
		{"sqlite url", DBConfig{URL: "sqlite:///optcg_prices.db"}, DriverSQLite},
		{"postgres url", DBConfig{URL: "postgres://u:p@db:5432/prices"}, DriverPostgres},
		{"postgresql url", DBConfig{URL: "postgresql://u@db/prices"}, DriverPostgres},
		{"env parts", DBConfig{User: "u", Host: "db", Port: "5432", DBName: "prices"}, DriverPostgres},
		{"incomplete parts", DBConfig{User: "u", Host: "db"}, DriverNone},
		{"unknown scheme", DBConfig{URL: "mysql://x"}, DriverNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.Driver(); got != tc.want {
				t.Fatalf("Driver() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTargetDSN(t *testing.T) {
	c := DBConfig{User: "price bot", Password: "p@ss", Host: "db", Port: "5432", DBName: "prices"}
	want := "postgres://price%20bot:p%40ss@db:5432/prices?sslmode=disable"
	if got := c.TargetDSN(); got != want {
		t.Fatalf("TargetDSN() = %q, want %q", got, want)
	}

	c.URL = "postgres://other/db"
	if got := c.TargetDSN(); got != c.URL {
		t.Fatalf("DATABASE_URL must win, got %q", got)
	}
}

func TestSQLitePath(t *testing.T) {
	cases := map[string]string{
		"sqlite:///optcg_prices.db": "optcg_prices.db",
		"sqlite:////var/lib/x.db":   "/var/lib/x.db",
		"sqlite:///:memory:":        ":memory:",
		"sqlite://":                 ":memory:",
		"sqlite:///data/prices.db":  "data/prices.db",
	}
	for in, want := range cases {
		if got := (DBConfig{URL: in}).SQLitePath(); got != want {
			t.Errorf("SQLitePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConnectRejectsIncompleteConfig(t *testing.T) {
	if _, err := Connect(context.Background(), DBConfig{Host: "db"}, logging.Discard()); err == nil {
		t.Fatalf("expected error")
	}
}
