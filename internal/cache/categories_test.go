package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/rs/zerolog"
)

type mockCatalog struct {
	entries []domain.CategoryEntry
	err     error
	calls   int
}

func (m *mockCatalog) ListCategories(ctx context.Context) ([]domain.CategoryEntry, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func TestCategoryCatalog_CachesWithinTTL(t *testing.T) {
	next := &mockCatalog{entries: []domain.CategoryEntry{{ID: 1, Name: "Lebensmittel"}}}
	c := NewCategoryCatalog(next, time.Minute, zerolog.Nop())

	for i := 0; i < 3; i++ {
		got, err := c.ListCategories(context.Background())
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(got) != 1 || got[0].Name != "Lebensmittel" {
			t.Fatalf("call %d: got %+v", i, got)
		}
	}
	if next.calls != 1 {
		t.Errorf("underlying calls = %d, want 1", next.calls)
	}
}

func TestCategoryCatalog_ReturnsCopies(t *testing.T) {
	next := &mockCatalog{entries: []domain.CategoryEntry{{ID: 1, Name: "Miete"}}}
	c := NewCategoryCatalog(next, time.Minute, zerolog.Nop())

	first, _ := c.ListCategories(context.Background())
	first[0].Name = "changed"

	second, _ := c.ListCategories(context.Background())
	if second[0].Name != "Miete" {
		t.Errorf("cached entry mutated: %q", second[0].Name)
	}
}

func TestCategoryCatalog_ErrorsNotCached(t *testing.T) {
	next := &mockCatalog{err: errors.New("bigquery unavailable")}
	c := NewCategoryCatalog(next, time.Minute, zerolog.Nop())

	if _, err := c.ListCategories(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	next.err = nil
	next.entries = []domain.CategoryEntry{{ID: 2, Name: "Miete"}}
	got, err := c.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || next.calls != 2 {
		t.Errorf("got %+v after %d calls", got, next.calls)
	}
}

func TestCategoryCatalog_Expiry(t *testing.T) {
	next := &mockCatalog{entries: []domain.CategoryEntry{{ID: 1, Name: "A"}}}
	c := NewCategoryCatalog(next, 20*time.Millisecond, zerolog.Nop())

	c.ListCategories(context.Background())
	time.Sleep(40 * time.Millisecond)
	c.ListCategories(context.Background())

	if next.calls != 2 {
		t.Errorf("underlying calls = %d, want 2", next.calls)
	}
}

func TestCategoryCatalog_Invalidate(t *testing.T) {
	next := &mockCatalog{entries: []domain.CategoryEntry{{ID: 1, Name: "A"}}}
	c := NewCategoryCatalog(next, time.Minute, zerolog.Nop())

	c.ListCategories(context.Background())
	c.Invalidate()
	c.ListCategories(context.Background())

	if next.calls != 2 {
		t.Errorf("underlying calls = %d, want 2", next.calls)
	}
}
