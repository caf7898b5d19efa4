package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pbrandao/blogo/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// Seed cria o usuário staff inicial (admin / admin123) se ainda não existir.
func Seed(ctx context.Context, dbConn *sql.DB) error {
	queries := New(dbConn)

	if _, err := queries.GetUserByUsername(ctx, "admin"); err == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	if _, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     "admin",
		Email:        "admin@admin.com",
		PasswordHash: string(hash),
		IsStaff:      true,
	}); err != nil {
		return fmt.Errorf("failed to seed staff user: %w", err)
	}

	logging.Get().Info("database seeded successfully",
		slog.String("staff_username", "admin"),
		slog.String("default_password", "admin123"),
	)
	return nil
}
