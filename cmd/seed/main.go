package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/kitchenequip/equipment-backend/internal/seed"
	"github.com/kitchenequip/equipment-backend/pkg/config"
	"github.com/kitchenequip/equipment-backend/pkg/db"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	"github.com/kitchenequip/equipment-backend/pkg/logger"
	"github.com/kitchenequip/equipment-backend/pkg/migrate"
)

const serviceName = "kitchen-seed"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	_ = godotenv.Load()

	userName := flag.String("username", envOr("KITCHEN_SEED_USERNAME", "superadmin"), "SuperAdmin username")
	email := flag.String("email", envOr("KITCHEN_SEED_EMAIL", "superadmin@kitchen.local"), "SuperAdmin email")
	firstName := flag.String("first-name", envOr("KITCHEN_SEED_FIRST_NAME", "Super"), "SuperAdmin first name")
	lastName := flag.String("last-name", envOr("KITCHEN_SEED_LAST_NAME", "Admin"), "SuperAdmin last name")
	password := flag.String("password", os.Getenv("KITCHEN_SEED_PASSWORD"), "SuperAdmin password (generated when empty)")
	staff := flag.Int("staff", 0, "number of Admin staff accounts to seed")
	staffDomain := flag.String("staff-domain", "kitchen.local", "email domain for staff accounts")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to prepare schema", err)
		os.Exit(1)
	}

	seeder, err := seed.New(dbClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to create seeder", err)
		os.Exit(1)
	}

	accounts := []seed.Account{{
		FirstName:    *firstName,
		LastName:     *lastName,
		EmailAddress: *email,
		UserName:     *userName,
		Password:     *password,
		UserType:     enums.UserTypeSuperAdmin,
	}}
	accounts = append(accounts, seed.StaffAccounts(*staff, *staffDomain)...)

	results, err := seeder.Seed(ctx, accounts...)
	if err != nil {
		logg.Error(ctx, "seeding failed", err)
		os.Exit(1)
	}

	for _, res := range results {
		switch {
		case !res.Created:
			fmt.Printf("%-20s exists, skipped\n", res.UserName)
		case res.Password != "":
			fmt.Printf("%-20s created, password: %s\n", res.UserName, res.Password)
		default:
			fmt.Printf("%-20s created\n", res.UserName)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
