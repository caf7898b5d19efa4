package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pbrandao/blogo/internal/config"
	"github.com/pbrandao/blogo/internal/db"
	"github.com/pbrandao/blogo/internal/logging"
)

// initDB abre uma conexão única para comandos administrativos. O servidor
// usa o DualPool; aqui uma conexão com os mesmos pragmas basta.
func initDB() (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dbConn, err := sql.Open("sqlite3", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := config.GetSQLiteConfig().ApplyPragmas(dbConn); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return dbConn, nil
}

func RunMigrate() {
	dbConn, err := initDB()
	if err != nil {
		panic(err)
	}
	defer dbConn.Close()

	logging.Init()
	logger := logging.Get()

	if err := db.RunMigrations(context.Background(), dbConn); err != nil {
		logger.Error("failed to run migrations", "error", err)
		return
	}
	logger.Info("migrations executed successfully")
}

func RunSeed() {
	dbConn, err := initDB()
	if err != nil {
		panic(err)
	}
	defer dbConn.Close()

	logging.Init()
	logger := logging.Get()

	if err := db.RunMigrations(context.Background(), dbConn); err != nil {
		logger.Error("failed to run migrations during seed", "error", err)
		return
	}
	if err := db.Seed(context.Background(), dbConn); err != nil {
		logger.Error("failed to seed database", "error", err)
		return
	}
	logger.Info("database seeded successfully")
}
