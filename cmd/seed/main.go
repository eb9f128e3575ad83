package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/contalivre/cadastro-api/config"
	pginfra "github.com/contalivre/cadastro-api/internal/infrastructure/postgres"
	"github.com/contalivre/cadastro-api/pkg/helpers"
)

// Seeds the admin principal with a bcrypt hash. There is no plaintext
// admin password in the database, ever.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.SeedAdminPassword == "" {
		log.Fatal("SEED_ADMIN_PASSWORD is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	hasher := helpers.NewHasher(cfg.BcryptCost, cfg.HashMaxConcurrent)
	hash, err := hasher.Hash(ctx, cfg.SeedAdminPassword)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	admins := pginfra.NewAdminRepository(pool)
	if err := admins.Upsert(ctx, cfg.SeedAdminUser, hash); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: username=%s\n", cfg.SeedAdminUser)
}
