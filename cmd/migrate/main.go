package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"mca-api/internal/domain"
	"mca-api/internal/repository"
	"mca-api/internal/seed"
	"mca-api/pkg/database"
	"mca-api/pkg/logger"
)

const usage = "Usage: go run ./cmd/migrate [up|down|status|seed <year> [phase]]"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}
	command := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, dbURL, logger.NewNop())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	sqlDB := db.SQLDB()
	defer sqlDB.Close()

	switch command {
	case "up":
		if err := database.Migrate(ctx, sqlDB); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
		}
		fmt.Println("✅ Migrations applied")

	case "down":
		if err := database.Rollback(ctx, sqlDB); err != nil {
			log.Fatalf("Failed to roll back: %v", err)
		}
		fmt.Println("✅ Last migration rolled back")

	case "status":
		if err := database.MigrationStatus(ctx, sqlDB); err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}

	case "seed":
		year, phase, err := seedArgs(os.Args[2:])
		if err != nil {
			fmt.Println(err)
			fmt.Println(usage)
			os.Exit(1)
		}
		created, err := seed.Cycle(ctx, repository.NewPostgresRepositories(db), year, phase)
		if err != nil {
			log.Fatalf("Failed to seed: %v", err)
		}
		fmt.Printf("✅ Award cycle %d set to %s, %d categories created\n", year, phase, created)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func seedArgs(args []string) (int, domain.Phase, error) {
	if len(args) < 1 {
		return 0, "", fmt.Errorf("seed needs a year")
	}
	year, err := strconv.Atoi(args[0])
	if err != nil || year < 2000 {
		return 0, "", fmt.Errorf("invalid year %q", args[0])
	}

	phase := domain.PhaseNomination
	if len(args) > 1 {
		if phase, err = domain.ParsePhase(args[1]); err != nil {
			return 0, "", err
		}
	}
	return year, phase, nil
}
