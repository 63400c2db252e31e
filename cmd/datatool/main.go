package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/school/backend/internal/infrastructure/config"
	"github.com/school/backend/internal/infrastructure/logger"
	"github.com/school/backend/internal/infrastructure/persistence"
	"github.com/school/backend/internal/infrastructure/seed"
	"go.uber.org/zap"
)

func main() {
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel("warn")))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	switch args[0] {
	case "import":
		err = runImport(ctx, db, log, args[1:])
	case "reset-deleted":
		err = runResetDeleted(ctx, db)
	case "summary":
		err = runSummary(ctx, db)
	case "ping":
		err = db.Ping()
		if err == nil {
			log.Info("Database connection OK",
				zap.String("driver", cfg.Database.Driver),
				zap.String("host", cfg.Database.Host),
				zap.String("dbname", cfg.Database.DBName),
			)
		}
	default:
		log.Error("Unknown command", zap.String("command", args[0]))
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func runImport(ctx context.Context, db *persistence.Database, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dir := fs.String("dir", "sample", "Directory holding users.json, teacherpositions.json and teachers.json")
	clearFirst := fs.Bool("clear", false, "Delete existing users, positions and teachers first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ds, err := seed.LoadDir(*dir)
	if err != nil {
		return err
	}
	log.Info("Export loaded",
		zap.Int("users", len(ds.Users)),
		zap.Int("positions", len(ds.Positions)),
		zap.Int("teachers", len(ds.Teachers)),
	)

	report, err := seed.NewImporter(db.DB, log).Import(ctx, ds, seed.ImportOptions{Clear: *clearFirst})
	if err != nil {
		return err
	}
	for _, skipped := range report.Skipped {
		log.Warn("Record skipped", zap.String("record", skipped.Error()))
	}
	fmt.Printf("Imported %d users, %d positions, %d teachers (%d skipped)\n",
		report.Users, report.Positions, report.Teachers, len(report.Skipped))
	return nil
}

func runResetDeleted(ctx context.Context, db *persistence.Database) error {
	counts, err := seed.ResetDeleted(ctx, db.DB)
	if err != nil {
		return err
	}
	fmt.Println("Active records:")
	fmt.Printf("  Users:     %d\n", counts.Users)
	fmt.Printf("  Positions: %d\n", counts.Positions)
	fmt.Printf("  Teachers:  %d\n", counts.Teachers)
	return nil
}

func runSummary(ctx context.Context, db *persistence.Database) error {
	s, err := seed.Summarize(ctx, db.DB)
	if err != nil {
		return err
	}
	fmt.Println("Database statistics:")
	fmt.Printf("  Users:           %d\n", s.TotalUsers)
	fmt.Printf("  Positions:       %d\n", s.TotalPositions)
	fmt.Printf("  Teachers:        %d\n", s.TotalTeachers)
	fmt.Printf("  Active teachers: %d\n", s.ActiveTeachers)

	fmt.Println("\nPositions:")
	for _, p := range s.Positions {
		state := "Active"
		if !p.IsActive {
			state = "Inactive"
		}
		fmt.Printf("  - %s: %s (%s)\n", p.Code, p.Name, state)
	}

	fmt.Println("\nTeacher users:")
	for _, u := range s.TeacherUsers {
		fmt.Printf("  - %s (%s)\n", u.Name, u.Email)
	}

	fmt.Println("\nTeachers:")
	for _, t := range s.Samples {
		positions := "None"
		if len(t.Positions) > 0 {
			positions = strings.Join(t.Positions, ", ")
		}
		fmt.Printf("  - %s  %s <%s>\n    Positions: %s\n    Active: %t\n", t.Code, t.Name, t.Email, positions, t.IsActive)
	}
	return nil
}

func printUsage() {
	fmt.Println(`School Backend Data Tool

Usage:
  datatool [flags] <command> [arguments]

Commands:
  import -dir DIR [-clear]  Load a MongoDB JSON export (users, teacherpositions, teachers)
  reset-deleted             Clear the soft-delete flag everywhere and print active counts
  summary                   Print counts and a few sample records
  ping                      Check the database connection

Flags:
  -log-level string  Log level: debug, info, warn, error (default: info)`)
}
