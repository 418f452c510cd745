package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bikerental-server/internal/config"
	"bikerental-server/internal/db"
	"bikerental-server/internal/logging"
	"bikerental-server/internal/migrate"
	"bikerental-server/internal/modules/rentals/repository"
)

const usage = `usage: %s <command>
  migrate  apply pending schema migrations
  import   load DAY_CSV_PATH and HOUR_CSV_PATH into the SQLite database
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stderr, cfg, "dev", "bikerental-tools"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, command string) error {
	switch command {
	case "migrate", "import":
	default:
		return fmt.Errorf("unknown command")
	}

	conn, err := db.Open(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	if err := migrate.Run(ctx, conn); err != nil {
		return err
	}
	if command == "migrate" {
		fmt.Println("migrations applied")
		return nil
	}

	tables, err := repository.NewRepository(repository.NewCSVSource(cfg.DayCSVPath, cfg.HourCSVPath)).Load(ctx)
	if err != nil {
		return err
	}
	if err := repository.NewSQLiteSource(conn).Save(ctx, tables); err != nil {
		return err
	}
	fmt.Printf("imported %d daily and %d hourly rows\n", tables.Day.Nrow(), tables.Hour.Nrow())
	return nil
}
