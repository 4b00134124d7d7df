// seed inserts the category and payment-method lookup rows plus a
// verified demo user into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/expensetracker/api/internal/infrastructure/postgres"
)

var categories = []string{
	"Food",
	"Travel",
	"Rent",
	"Utilities",
	"Shopping",
	"Entertainment",
	"Health",
	"Education",
	"Other",
}

var paymentMethods = []string{
	"Cash",
	"Credit Card",
	"Debit Card",
	"UPI",
	"Net Banking",
}

const (
	demoEmail    = "demo@test.local"
	demoPassword = "demo-password-hash"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	for _, name := range categories {
		_, err := pool.Exec(ctx,
			`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			name,
		)
		if err != nil {
			log.Fatalf("seed category %q: %v", name, err)
		}
	}
	fmt.Printf("seeded %d categories\n", len(categories))

	for _, name := range paymentMethods {
		_, err := pool.Exec(ctx,
			`INSERT INTO payment_methods (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			name,
		)
		if err != nil {
			log.Fatalf("seed payment method %q: %v", name, err)
		}
	}
	fmt.Printf("seeded %d payment methods\n", len(paymentMethods))

	_, err = pool.Exec(ctx, `
		INSERT INTO users (name, gender, bdate, email, phone, password_hash, email_verified)
		VALUES ('Demo User', 'other', '1990-01-01', $1, '0000000000', $2, TRUE)
		ON CONFLICT (email) DO NOTHING`,
		demoEmail, demoPassword,
	)
	if err != nil {
		log.Fatalf("seed demo user: %v", err)
	}
	fmt.Printf("seeded demo user %s\n", demoEmail)
}
