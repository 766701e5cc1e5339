package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/librarium-app/librarium/internal/config"
	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/store"
)

type seedBook struct {
	title    string
	author   string
	category string
}

type seedUser struct {
	username string
	password string
	role     core.Role
	email    core.EmailString
}

var seedBooks = []seedBook{
	{"Harry Potter and the Sorcerer's Stone", "J.K. Rowling", "Fantasy"},
	{"The Alchemist", "Paulo Coelho", "Fiction"},
	{"Clean Code", "Robert C. Martin", "Programming"},
	{"Atomic Habits", "James Clear", "Self-Help"},
	{"The Great Gatsby", "F. Scott Fitzgerald", "Fiction"},
	{"1984", "George Orwell", "Dystopia"},
	{"To Kill a Mockingbird", "Harper Lee", "Fiction"},
	{"The Pragmatic Programmer", "Andrew Hunt", "Programming"},
	{"Deep Work", "Cal Newport", "Self-Help"},
	{"The Hobbit", "J.R.R. Tolkien", "Fantasy"},
	{"Think and Grow Rich", "Napoleon Hill", "Self-Help"},
	{"JavaScript: The Good Parts", "Douglas Crockford", "Programming"},
}

var seedUsers = []seedUser{
	{"admin", "admin123", core.RoleAdmin, "admin@example.com"},
	{"naveen", "naveen123", core.RoleUser, "naveen@example.com"},
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and load the starter catalog and accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context())
		},
	}
}

func runSeed(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer func() { _ = db.Close() }()

	documents, err := store.NewStoreFromSQLX(db)
	if err != nil {
		return err
	}

	if err = documents.InitSchema(ctx); err != nil {
		return err
	}

	now := time.Now()

	for _, book := range seedBooks {
		if err = documents.InsertBook(ctx, core.BuildBook(
			book.title, book.author, book.category, now)); err != nil {

			return err
		}
	}

	for _, user := range seedUsers {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(user.password), bcrypt.DefaultCost)
		if hashErr != nil {
			return hashErr
		}

		insertErr := documents.InsertUser(ctx, core.BuildUser(
			user.username, string(hash), user.role, user.email, now))
		if errors.Is(insertErr, store.ErrUserExists) {
			fmt.Printf("user %q already exists, skipping\n", user.username)

			continue
		}
		if insertErr != nil {
			return insertErr
		}
	}

	fmt.Printf("seeded %d books and %d users\n", len(seedBooks), len(seedUsers))

	return nil
}
