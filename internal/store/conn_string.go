package store

import (
	"fmt"
	"net/url"

	"github.com/mugisham37/storesync/internal/config"
)

// BuildConnString assembles the postgres:// URL for the agent's journal
// database. The password is query-escaped so credentials containing
// reserved characters survive URL parsing; sslmode falls back to prefer
// when the config leaves it blank.
func BuildConnString(cfg config.DBConfig) string {
	ssl := cfg.SSLMode
	if ssl == "" {
		ssl = "prefer"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, url.QueryEscape(cfg.Password), cfg.Host, cfg.Port, cfg.Name, ssl)
}
