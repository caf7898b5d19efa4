package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("DefaultValues", func(t *testing.T) {
		os.Clearenv()
		cfg, err := Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("expected port 8080, got %s", cfg.Port)
		}
		if cfg.DatabaseURL != "./blogo.db" {
			t.Errorf("expected default database, got %s", cfg.DatabaseURL)
		}
		if cfg.PostsPerPage != 10 {
			t.Errorf("expected 10 posts per page, got %d", cfg.PostsPerPage)
		}
	})

	t.Run("ProductionValidation", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("APP_ENV", "prod")
		_, err := Load()
		if err == nil {
			t.Error("expected error when SESSION_SECRET is missing in production")
		}
	})

	t.Run("CustomValues", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("PORT", "9000")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Port != "9000" {
			t.Errorf("expected port 9000, got %s", cfg.Port)
		}
	})
}
