// Package migrations embeds the versioned BigQuery schema migrations.
package migrations

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

//go:embed bigquery/*.sql
var BigQuery embed.FS

// BigQueryDir is the directory of BigQuery migrations inside the BigQuery FS.
const BigQueryDir = "bigquery"

// filePattern matches migration files: 0001_name.sql
var filePattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

// Migration is a single migration file.
type Migration struct {
	Version  int
	Name     string
	Filename string
	// SQL still contains the {{PROJECT_ID}} and {{DATASET_ID}} placeholders.
	SQL      string
	Checksum string
}

// Render substitutes the project and dataset placeholders.
func (m Migration) Render(projectID, datasetID string) string {
	sql := strings.ReplaceAll(m.SQL, "{{PROJECT_ID}}", projectID)
	return strings.ReplaceAll(sql, "{{DATASET_ID}}", datasetID)
}

// ParseFilename extracts the version and name from a migration filename.
func ParseFilename(filename string) (version int, name string, ok bool) {
	matches := filePattern.FindStringSubmatch(filename)
	if matches == nil {
		return 0, "", false
	}
	version, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, "", false
	}
	return version, matches[2], true
}

// Load reads the migrations in dir, sorted by version. Files not matching the
// naming pattern are skipped. The checksum covers the unrendered content.
func Load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("Load: read dir %s: %w", dir, err)
	}

	var migrations []Migration
	seen := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version, name, ok := ParseFilename(entry.Name())
		if !ok {
			continue
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("Load: duplicate version %04d in %s and %s", version, prev, entry.Name())
		}
		seen[version] = entry.Name()

		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("Load: read %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version:  version,
			Name:     name,
			Filename: entry.Name(),
			SQL:      string(content),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Pending returns the migrations whose versions are not in applied, in order.
func Pending(all []Migration, applied map[int]bool) []Migration {
	var out []Migration
	for _, m := range all {
		if !applied[m.Version] {
			out = append(out, m)
		}
	}
	return out
}
