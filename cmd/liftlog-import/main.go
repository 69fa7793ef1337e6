package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/importer"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/readiness"
	"github.com/claude/liftlog/internal/records"
	"github.com/claude/liftlog/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "directory of Alpha Progression CSV exports (required)")
	userID := flag.Int("user", 1, "user ID to import for")
	login := flag.String("login", "", "import for this login instead of -user, creating the user if needed")
	dryRun := flag.Bool("dry-run", false, "parse exports and report counts without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml -path /path/to/exports [-user 1 | -login alice@example.com] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Verify export directory exists
	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export path does not exist or is not a directory", "path", *exportPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	loc, err := cfg.Analytics.Location()
	if err != nil {
		log.Error("invalid timezone", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	uid := *userID
	if *login != "" {
		uid, err = db.GetOrCreateUser(ctx, *login, *login)
		if err != nil {
			log.Error("resolving user", "login", *login, "error", err)
			os.Exit(1)
		}
	}

	evaluator := records.NewEvaluator(db, log)
	scorer := readiness.NewScorer(db, log, loc)
	pipeline := ingest.NewPipeline(db, evaluator, scorer, log)
	provider := alpha.NewProvider(pipeline, db, log, loc)

	// Run import
	imp := importer.New(provider, log, loc, uid, *dryRun)
	stats, err := imp.Import(ctx, *exportPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete", "user_id", uid)
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_parsed", stats.SessionsParsed,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_duplicated", stats.WorkoutsDuplicated,
		"sets_inserted", stats.SetsInserted,
		"records_set", stats.RecordsSet,
	)
}
