package config

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type SQLiteConfig struct {
	CacheSizeKB int    // negativo = KB, positivo = páginas
	TempStore   string // "MEMORY" ou "FILE"
	BusyTimeout int    // milissegundos
	SyncLevel   string // "OFF", "NORMAL", "FULL", "EXTRA"
}

func GetSQLiteConfig() SQLiteConfig {
	cfg := SQLiteConfig{
		CacheSizeKB: -16000,
		TempStore:   "MEMORY",
		BusyTimeout: 5000,
		SyncLevel:   "NORMAL",
	}

	if v, ok := os.LookupEnv("SQLITE_CACHE_SIZE"); ok {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.CacheSizeKB = i
		}
	}

	if v, ok := os.LookupEnv("SQLITE_TEMP_STORE"); ok {
		v = strings.ToUpper(v)
		if v == "MEMORY" || v == "FILE" {
			cfg.TempStore = v
		}
	}

	if v, ok := os.LookupEnv("SQLITE_BUSY_TIMEOUT"); ok {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			cfg.BusyTimeout = i
		}
	}

	if v, ok := os.LookupEnv("SQLITE_SYNC_LEVEL"); ok {
		v = strings.ToUpper(v)
		if v == "OFF" || v == "NORMAL" || v == "FULL" || v == "EXTRA" {
			cfg.SyncLevel = v
		}
	}

	return cfg
}

func (c SQLiteConfig) ApplyPragmas(db *sql.DB) error {
	pragmas := []struct {
		name  string
		value string
	}{
		{"journal_mode", "WAL"},
		{"busy_timeout", strconv.Itoa(c.BusyTimeout)},
		{"temp_store", c.TempStore},
		{"cache_size", fmt.Sprintf("%d", c.CacheSizeKB)},
		{"synchronous", c.SyncLevel},
		{"foreign_keys", "ON"},
	}

	for _, p := range pragmas {
		pragma := fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set PRAGMA %s: %w", p.name, err)
		}
	}

	return nil
}
