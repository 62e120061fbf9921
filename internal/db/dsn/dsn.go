// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/biblia-online/biblia/internal/config"
)

// MySQL builds a go-sql-driver DSN.
func MySQL(user, password, host string, port int, name, extras string) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", user, password, host, port, name)
	if extras != "" {
		out += "?" + extras
	}

	return out
}

// Postgres builds a keyword/value DSN understood by pgx. Extras are appended as given ("sslmode=disable").
func Postgres(user, password, host string, port int, name, extras string) string {
	parts := []string{
		"host=" + host,
		fmt.Sprintf("port=%d", port),
		"user=" + user,
		"password=" + password,
		"dbname=" + name,
	}

	if extras != "" {
		parts = append(parts, strings.Fields(strings.ReplaceAll(extras, "&", " "))...)
	}

	return strings.Join(parts, " ")
}

// Create builds the DSN of the primary database for its engine.
func Create(cfg *config.Config) string {
	db := cfg.DB

	switch db.GormEngine {
	case config.EnginePostgres:
		return Postgres(db.User, db.Password, db.Host, db.Port, db.Name, db.Extras)
	case config.EngineSQLite:
		return db.Path
	default:
		return MySQL(db.User, db.Password, db.Host, db.Port, db.Name, db.Extras)
	}
}

// Legacy builds the DSN of the secondary MySQL database.
func Legacy(cfg *config.Config) string {
	l := cfg.Legacy

	return MySQL(l.User, l.Password, l.Host, l.Port, l.Name, l.Extras)
}

// PostgresURL builds a postgres:// url, the form expected by the session storage.
func PostgresURL(cfg *config.Config) string {
	db := cfg.DB
	out := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", db.User, db.Password, db.Host, db.Port, db.Name)

	if db.Extras != "" {
		out += "?" + db.Extras
	}

	return out
}
