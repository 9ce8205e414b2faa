package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/crewdesk-dev/shift-planner/backend/internal/config"
	"github.com/crewdesk-dev/shift-planner/backend/internal/repository"
	"github.com/crewdesk-dev/shift-planner/backend/internal/seed"
	"github.com/crewdesk-dev/shift-planner/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var weeks int
	var reviewerID int64
	var emailDomain string

	flag.IntVar(&op, "op", 0, "operation to run (1: insert random users, 2: backfill shift history, 3: insert unavailability requests)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.IntVar(&weeks, "weeks", 8, "number of trailing weeks of shift history to backfill")
	flag.Int64Var(&reviewerID, "reviewer-id", 1, "user id recorded as reviewer on seeded request verdicts")
	flag.StringVar(&emailDomain, "email-domain", "example.com", "email domain for seeded users")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open only builds the pool object, so ping to verify the database is
	// actually reachable.
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no operation specified")
	case 1:
		if n <= 0 {
			slog.Error("user count must be positive")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, emailDomain)
			if err != nil {
				slog.Error("failed to generate random user", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("failed to insert user", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("users inserted", slog.Int("count", n-cnt))
	case 2:
		if weeks <= 0 {
			slog.Error("week count must be positive")
			return
		}

		created := seed.SeedShiftHistory(repo, weeks)
		slog.Info("shift history backfilled", slog.Int("count", created))
	case 3:
		if n <= 0 {
			slog.Error("request count must be positive")
			return
		}

		created := seed.SeedUnavailability(repo, reviewerID, n)
		slog.Info("unavailability requests inserted", slog.Int("count", created))
	default:
		slog.Error("unknown operation")
	}
}
