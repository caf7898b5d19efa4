package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	SessionSecret string
	PostsPerPage  int
	Env           string // "dev" or "prod"
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "./blogo.db"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		PostsPerPage:  10,
		Env:           getEnv("APP_ENV", "dev"),
	}

	// Validação Estrita para Produção
	if cfg.Env == "prod" {
		if cfg.SessionSecret == "" {
			return nil, fmt.Errorf("produção: SESSION_SECRET é obrigatório")
		}
	} else {
		// No dev, se não houver secret, usamos um valor fraco apenas para não quebrar o boot
		if cfg.SessionSecret == "" {
			cfg.SessionSecret = "dev-secret-keep-it-simple-but-not-safe"
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
