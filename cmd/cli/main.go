package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/finance-insights/internal/backend"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/gcs"
	"github.com/dvloznov/finance-insights/internal/infra/sqlite"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/snapshot"
	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewWithLevel(cfg.LogLevel)

	switch os.Args[1] {
	case "tips":
		runTips(cfg, log)
	case "snapshot-upload":
		runSnapshotUpload(log)
	case "sqlite-init":
		runSQLiteInit(cfg, log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Insights CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  tips             Print a user's ranked tips as JSON")
	fmt.Println("  snapshot-upload  Upload a local JSON snapshot to GCS")
	fmt.Println("  sqlite-init      Create the SQLite schema, optionally seeded from a snapshot")
	fmt.Println("  help             Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runTips(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("tips", flag.ExitOnError)
	userID := fs.String("user", "", "User ID (required)")
	startDate := fs.String("start", "", "Range start YYYY-MM-DD")
	endDate := fs.String("end", "", "Range end YYYY-MM-DD")
	source := fs.String("snapshot", "", "Read from a JSON snapshot (local path or gs:// URI) instead of the configured store")
	fs.Parse(os.Args[2:])

	if *userID == "" {
		log.Fatal().Msg("Error: -user is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	var engine *insights.Engine
	if *source != "" {
		ds, err := loadSnapshot(ctx, *source)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load snapshot")
		}
		engine = insights.NewEngine(snapshot.NewStore(ds).Stores(), cfg.Rules(), log)
	} else {
		store, err := backend.Open(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open store")
		}
		defer store.Close()
		engine = store.NewEngine(cfg, log)
	}

	result, err := engine.GenerateTips(ctx, *userID, *startDate, *endDate)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate tips")
	}
	if err := writeJSON(os.Stdout, result); err != nil {
		log.Fatal().Err(err).Msg("Failed to write result")
	}
}

func runSnapshotUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("snapshot-upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to snapshots/<filename>)")
	filePath := fs.String("file", "", "Path to local snapshot JSON")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli snapshot-upload -bucket NAME -file PATH")
	}
	if *objectName == "" {
		*objectName = "snapshots/" + filepath.Base(*filePath)
	}

	ctx := logger.WithContext(context.Background(), log)

	// Refuse to publish a document the tips command could not read back.
	if _, err := snapshot.Load(ctx, *filePath, nil); err != nil {
		log.Fatal().Err(err).Msg("Snapshot is not valid")
	}

	storage, err := gcs.NewGCSStorageService(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer storage.Close()

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading snapshot to GCS")

	if err := storage.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, gcs.FormatURI(*bucketName, *objectName))
}

func runSQLiteInit(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("sqlite-init", flag.ExitOnError)
	path := fs.String("path", cfg.SQLitePath, "SQLite database file")
	source := fs.String("snapshot", "", "Seed from a JSON snapshot (local path or gs:// URI)")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	store, err := sqlite.Open(ctx, *path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open SQLite database")
	}
	defer store.Close()

	log.Info().Str("path", *path).Msg("Schema ready")

	if *source == "" {
		return
	}

	ds, err := loadSnapshot(ctx, *source)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load snapshot")
	}
	if err := seedSQLite(ctx, store, ds); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed database")
	}

	log.Info().
		Int("categories", len(ds.Categories)).
		Int("transactions", len(ds.Transactions)).
		Int("preferences", len(ds.Preferences)).
		Int("goals", len(ds.Goals)).
		Msg("Database seeded")
}

// loadSnapshot reads a local snapshot, creating a storage client only for gs:// sources.
func loadSnapshot(ctx context.Context, source string) (*snapshot.Dataset, error) {
	if !gcs.IsURI(source) {
		return snapshot.Load(ctx, source, nil)
	}
	storage, err := gcs.NewGCSStorageService(ctx)
	if err != nil {
		return nil, err
	}
	defer storage.Close()
	return snapshot.Load(ctx, source, storage)
}

func seedSQLite(ctx context.Context, store *sqlite.Store, ds *snapshot.Dataset) error {
	if err := store.InsertCategories(ctx, ds.Categories); err != nil {
		return err
	}
	if err := store.InsertTransactions(ctx, ds.Records()); err != nil {
		return err
	}
	for _, pref := range ds.Preferences {
		if err := store.UpsertPreference(ctx, pref); err != nil {
			return err
		}
	}
	return store.InsertGoals(ctx, ds.GoalRecords())
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
