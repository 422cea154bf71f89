package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/migrations"
	"google.golang.org/api/iterator"
)

// appliedMigration is a row of schema_migrations.
type appliedMigration struct {
	Version   int64               `bigquery:"version"`
	Name      string              `bigquery:"name"`
	AppliedAt time.Time           `bigquery:"applied_at"`
	Checksum  bigquery.NullString `bigquery:"checksum"`
	AppliedBy bigquery.NullString `bigquery:"applied_by"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var (
		projectID = flag.String("project", cfg.BQProjectID, "GCP project ID (or set BQ_PROJECT_ID)")
		datasetID = flag.String("dataset", cfg.BQDataset, "BigQuery dataset ID (or set BQ_DATASET)")
		appliedBy = flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
		dryRun    = flag.Bool("dry-run", false, "List pending migrations without applying them")
	)
	flag.Parse()

	log := logger.NewWithLevel(cfg.LogLevel)
	ctx := context.Background()

	if *projectID == "" {
		log.Fatal().Msg("-project flag or BQ_PROJECT_ID is required")
	}

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer client.Close()

	log.Info().Str("project", *projectID).Str("dataset", *datasetID).Msg("Connected to BigQuery")

	all, err := migrations.Load(migrations.BigQuery, migrations.BigQueryDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read migrations")
	}
	log.Info().Int("count", len(all)).Msg("Found migration files")

	// The first migration creates schema_migrations itself.
	applied, err := getAppliedMigrations(ctx, client, *projectID, *datasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get applied migrations")
	}

	appliedVersions := make(map[int]bool, len(applied))
	checksums := make(map[int]string, len(applied))
	for _, am := range applied {
		appliedVersions[int(am.Version)] = true
		checksums[int(am.Version)] = am.Checksum.StringVal
	}
	for _, m := range all {
		if sum, ok := checksums[m.Version]; ok && sum != "" && sum != m.Checksum {
			log.Warn().Int("version", m.Version).Str("name", m.Name).Msg("Applied migration changed since it ran")
		}
	}

	pending := migrations.Pending(all, appliedVersions)
	if len(pending) == 0 {
		log.Info().Msg("No new migrations to apply. Dataset is up to date.")
		return
	}

	for _, m := range pending {
		mlog := log.With().Int("version", m.Version).Str("name", m.Name).Logger()
		if *dryRun {
			mlog.Info().Msg("Pending")
			continue
		}

		mlog.Info().Msg("Applying migration")
		if err := runStatement(ctx, client, m.Render(*projectID, *datasetID), nil); err != nil {
			mlog.Fatal().Err(err).Msg("Failed to execute migration")
		}
		if err := recordMigration(ctx, client, *projectID, *datasetID, *appliedBy, m); err != nil {
			mlog.Fatal().Err(err).Msg("Failed to record migration")
		}
		mlog.Info().Msg("Migration applied")
	}

	if !*dryRun {
		log.Info().Int("applied", len(pending)).Msg("Migrations complete")
	}
}

func migrationsTable(projectID, datasetID string) string {
	return fmt.Sprintf("`%s.%s.schema_migrations`", projectID, datasetID)
}

// getAppliedMigrations returns the applied migrations, or none when
// schema_migrations does not exist yet.
func getAppliedMigrations(ctx context.Context, client *bigquery.Client, projectID, datasetID string) ([]appliedMigration, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM %s
		ORDER BY version ASC
	`, migrationsTable(projectID, datasetID)))

	it, err := q.Read(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "Not found") {
			return nil, nil
		}
		return nil, fmt.Errorf("getAppliedMigrations: query read: %w", err)
	}

	var applied []appliedMigration
	for {
		var row appliedMigration
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("getAppliedMigrations: iter next: %w", err)
		}
		applied = append(applied, row)
	}
	return applied, nil
}

func recordMigration(ctx context.Context, client *bigquery.Client, projectID, datasetID, appliedBy string, m migrations.Migration) error {
	sql := fmt.Sprintf(`
		INSERT INTO %s (version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`, migrationsTable(projectID, datasetID))

	return runStatement(ctx, client, sql, []bigquery.QueryParameter{
		{Name: "version", Value: m.Version},
		{Name: "name", Value: m.Name},
		{Name: "checksum", Value: m.Checksum},
		{Name: "applied_by", Value: appliedBy},
	})
}

func runStatement(ctx context.Context, client *bigquery.Client, sql string, params []bigquery.QueryParameter) error {
	q := client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
