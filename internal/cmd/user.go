package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pbrandao/blogo/internal/db"
	"github.com/pbrandao/blogo/internal/validator"
	"golang.org/x/crypto/bcrypt"
)

func RunCreateUser() {
	if len(os.Args) < 5 {
		fmt.Println("Usage: create-user <username> <email> <password> [--staff]")
		os.Exit(1)
	}
	username := os.Args[2]
	email := os.Args[3]
	password := os.Args[4]
	isStaff := len(os.Args) > 5 && os.Args[5] == "--staff"

	if result := validator.ValidateRegistration(username, email, password); !result.Valid {
		fmt.Printf("invalid user data: %s\n", result.Message())
		os.Exit(1)
	}

	dbConn, err := initDB()
	if err != nil {
		panic(err)
	}
	defer dbConn.Close()
	queries := db.New(dbConn)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}

	user, err := queries.CreateUser(context.Background(), db.CreateUserParams{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsStaff:      isStaff,
	})
	if err != nil {
		fmt.Printf("failed to create user: %v\n", err)
		os.Exit(1)
	}
	role := "user"
	if user.IsStaff {
		role = "staff"
	}
	fmt.Printf("User %s (%s) created successfully\n", user.Username, role)
}
