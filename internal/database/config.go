package database

import (
	"net/url"
	"os"
	"strings"
)

type Driver string

const (
	DriverNone     Driver = ""
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

type DBConfig struct {
	URL string // DATABASE_URL, имеет приоритет над DB_*

	User     string
	Password string
	Host     string
	Port     string
	DBName   string
}

func NewDBConfigFromEnv() DBConfig {
	return DBConfig{
		URL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		DBName:   os.Getenv("DB_NAME"),
	}
}

// Driver определяет, к какой базе подключаться. Без настроек — DriverNone.
func (c DBConfig) Driver() Driver {
	switch {
	case strings.HasPrefix(c.URL, "sqlite:"):
		return DriverSQLite
	case strings.HasPrefix(c.URL, "postgres://"), strings.HasPrefix(c.URL, "postgresql://"):
		return DriverPostgres
	case c.URL == "" && c.User != "" && c.Host != "" && c.Port != "" && c.DBName != "":
		return DriverPostgres
	default:
		return DriverNone
	}
}

// TargetDSN создаёт корректный DSN (URL encoded)
func (c DBConfig) TargetDSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.DBName,
	}
	// добавляем sslmode=disable для локальной разработки
	q := u.Query()
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()
	return u.String()
}

// SQLitePath переводит SQLAlchemy-style URL в путь к файлу:
// sqlite:///optcg_prices.db -> optcg_prices.db, sqlite:// и sqlite:///:memory: -> :memory:
func (c DBConfig) SQLitePath() string {
	rest := strings.TrimPrefix(c.URL, "sqlite:")
	rest = strings.TrimPrefix(rest, "//")
	if rest == "" || rest == "/" || rest == "/:memory:" {
		return ":memory:"
	}
	// sqlite:////abs/path -> /abs/path
	if strings.HasPrefix(rest, "//") {
		return rest[1:]
	}
	return strings.TrimPrefix(rest, "/")
}
