package migrations

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_init_schema_migrations.sql", true, 1, "init_schema_migrations"},
		{"0012_create_goals.sql", true, 12, "create_goals"},
		{"001_invalid.sql", false, 0, ""},
		{"0001_test", false, 0, ""},
		{"0001.sql", false, 0, ""},
		{"invalid_0001_test.sql", false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := ParseFilename(tt.filename)
			if ok != tt.valid || version != tt.version || name != tt.name {
				t.Errorf("ParseFilename(%q) = %d, %q, %v", tt.filename, version, name, ok)
			}
		})
	}
}

func TestLoad_SortsAndSkips(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_b.sql":   {Data: []byte("CREATE TABLE b (id INT64);")},
		"m/0001_a.sql":   {Data: []byte("CREATE TABLE a (id INT64);")},
		"m/README.md":    {Data: []byte("notes")},
		"m/nested/x.sql": {Data: []byte("ignored")},
	}

	got, err := Load(fsys, "m")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Fatalf("got %+v", got)
	}
	if len(got[0].Checksum) != 64 {
		t.Errorf("checksum = %q", got[0].Checksum)
	}
}

func TestLoad_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0001_a.sql": {Data: []byte("a")},
		"m/0001_b.sql": {Data: []byte("b")},
	}
	if _, err := Load(fsys, "m"); err == nil {
		t.Fatal("expected duplicate version error")
	}
}

func TestChecksumStability(t *testing.T) {
	same := fstest.MapFS{
		"x/0001_a.sql": {Data: []byte("CREATE TABLE test (id INT64);")},
		"y/0001_a.sql": {Data: []byte("CREATE TABLE test (id INT64);")},
		"z/0001_a.sql": {Data: []byte("CREATE TABLE different (id INT64);")},
	}
	x, _ := Load(same, "x")
	y, _ := Load(same, "y")
	z, _ := Load(same, "z")
	if x[0].Checksum != y[0].Checksum {
		t.Error("same content produced different checksums")
	}
	if x[0].Checksum == z[0].Checksum {
		t.Error("different content produced the same checksum")
	}
}

func TestRender(t *testing.T) {
	m := Migration{SQL: "CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.goals` (id INT64)"}
	if got := m.Render("proj", "finance"); got != "CREATE TABLE `proj.finance.goals` (id INT64)" {
		t.Errorf("Render = %q", got)
	}
}

func TestPending(t *testing.T) {
	all := []Migration{{Version: 1}, {Version: 2}, {Version: 3}}
	got := Pending(all, map[int]bool{1: true, 3: true})
	if len(got) != 1 || got[0].Version != 2 {
		t.Errorf("Pending = %+v", got)
	}
}

func TestEmbeddedBigQueryMigrations(t *testing.T) {
	got, err := Load(BigQuery, BigQueryDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || got[0].Name != "init_schema_migrations" {
		t.Fatalf("embedded migrations = %+v", got)
	}
	tables := []string{"categories", "transactions", "user_preferences", "goals"}
	for _, table := range tables {
		found := false
		for _, m := range got {
			if strings.Contains(m.SQL, "{{DATASET_ID}}."+table+"`") {
				found = true
			}
		}
		if !found {
			t.Errorf("no migration creates %s", table)
		}
	}
}
