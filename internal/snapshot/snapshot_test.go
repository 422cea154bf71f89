package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/rs/zerolog"
)

const sample = `{
  "categories": [
    {"id": 3, "name": "Lebensmittel"},
    {"id": 2, "name": "Miete", "description": "Wohnen"}
  ],
  "preferences": [
    {"user_id": "u1", "saldo": "1000", "preferred_currency": "EUR"}
  ],
  "transactions": [
    {"id": 1, "user_id": "u1", "category_id": 2, "amount": "900.00", "transaction_type": "Ausgabe", "date": "2024-05-01", "description": "Miete Mai"},
    {"id": 2, "user_id": "u1", "category_id": 3, "amount": 300, "transaction_type": "Ausgabe", "date": "2024-05-10", "description": "Rewe"},
    {"id": 3, "user_id": "u1", "amount": "1500", "transaction_type": "Einnahme", "date": "2024-05-28", "description": "Gehalt"},
    {"id": 4, "user_id": "u2", "category_id": 3, "amount": "12.50", "transaction_type": "Ausgabe", "date": "2024-05-02"},
    {"id": 5, "user_id": "u1", "category_id": 3, "amount": "40", "transaction_type": "Ausgabe", "date": "2024-04-30"}
  ],
  "goals": [
    {"id": 1, "user_id": "u1", "title": "Urlaub", "target_amount": 1000, "current_amount": 100, "target_date": "2024-12-31"},
    {"id": 2, "user_id": "u1", "title": "Notgroschen", "target_amount": 500, "current_amount": 500},
    {"id": 3, "user_id": "u1", "title": "Fahrrad", "target_amount": 800, "current_amount": 50, "target_date": "2024-03-01"}
  ]
}`

func fixedNow() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }

func mustParse(t *testing.T) *Dataset {
	t.Helper()
	ds, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return ds
}

func TestParse_AmountForms(t *testing.T) {
	ds := mustParse(t)
	if got := ds.Transactions[0].Amount; got != "900.00" {
		t.Errorf("string amount = %q", got)
	}
	if got := ds.Transactions[1].Amount; got != "300" {
		t.Errorf("numeric amount = %q", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte(`{"transactions": 5}`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestRecords_JoinsCategories(t *testing.T) {
	records := mustParse(t).Records()
	if len(records) != 5 {
		t.Fatalf("got %d records", len(records))
	}
	if records[0].CategoryName != "Miete" || records[0].CategoryDescription != "Wohnen" {
		t.Errorf("join = %+v", records[0])
	}
	if records[2].CategoryName != "" {
		t.Errorf("uncategorized record got name %q", records[2].CategoryName)
	}
	if records[0].Date != (civil.Date{Year: 2024, Month: time.May, Day: 1}) {
		t.Errorf("date = %v", records[0].Date)
	}
}

func TestUserIDs(t *testing.T) {
	ids := mustParse(t).UserIDs()
	if len(ids) != 2 || ids[0] != "u1" || ids[1] != "u2" {
		t.Errorf("UserIDs = %v", ids)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, err := Load(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Categories) != 2 {
		t.Errorf("categories = %d", len(ds.Categories))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"), nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not exist", err)
	}
}

type fakeStorage struct {
	objects map[string][]byte
	gotURI  string
}

func (f *fakeStorage) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	return nil
}

func (f *fakeStorage) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	f.gotURI = gcsURI
	data, ok := f.objects[gcsURI]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func TestLoad_GCS(t *testing.T) {
	uri := "gs://snapshots/2024-05.json"
	storage := &fakeStorage{objects: map[string][]byte{uri: []byte(sample)}}

	ds, err := Load(context.Background(), uri, storage)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if storage.gotURI != uri {
		t.Errorf("fetched %q", storage.gotURI)
	}
	if len(ds.Transactions) != 5 {
		t.Errorf("transactions = %d", len(ds.Transactions))
	}

	if _, err := Load(context.Background(), uri, nil); err == nil {
		t.Error("expected error without storage service")
	}
}

func TestStore_ListTransactionsWithCategory(t *testing.T) {
	s := NewStoreWithClock(mustParse(t), fixedNow)
	ctx := context.Background()

	may := domain.DateRange{
		Start: civil.Date{Year: 2024, Month: time.May, Day: 1},
		End:   civil.Date{Year: 2024, Month: time.May, Day: 31},
	}
	got, err := s.ListTransactionsWithCategory(ctx, "u1", may)
	if err != nil {
		t.Fatal(err)
	}
	wantIDs := []int64{3, 2, 1}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d records, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("record %d id = %d, want %d", i, got[i].ID, id)
		}
	}

	all, err := s.ListTransactionsWithCategory(ctx, "u1", domain.DateRange{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("unbounded = %d records, want 4", len(all))
	}

	none, err := s.ListTransactionsWithCategory(ctx, "ghost", domain.DateRange{})
	if err != nil || len(none) != 0 {
		t.Errorf("unknown user = %v, %v", none, err)
	}
}

func TestStore_GetPreference(t *testing.T) {
	s := NewStoreWithClock(mustParse(t), fixedNow)

	pref, err := s.GetPreference(context.Background(), "u1")
	if err != nil || pref == nil || pref.Saldo != "1000" {
		t.Fatalf("GetPreference(u1) = %+v, %v", pref, err)
	}
	pref, err = s.GetPreference(context.Background(), "u2")
	if err != nil || pref != nil {
		t.Errorf("GetPreference(u2) = %+v, %v", pref, err)
	}
}

func TestStore_ListCategoriesSorted(t *testing.T) {
	s := NewStoreWithClock(mustParse(t), fixedNow)
	cats, err := s.ListCategories(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0].ID != 2 || cats[1].ID != 3 {
		t.Errorf("categories = %+v", cats)
	}
}

func TestStore_GetGoalProgress(t *testing.T) {
	s := NewStoreWithClock(mustParse(t), fixedNow)
	goals, err := s.GetGoalProgress(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		title    string
		status   domain.GoalStatus
		progress float64
	}{
		{"Fahrrad", domain.GoalOverdue, 6.25},
		{"Urlaub", domain.GoalInProgress, 10},
		{"Notgroschen", domain.GoalCompleted, 100},
	}
	if len(goals) != len(want) {
		t.Fatalf("got %d goals", len(goals))
	}
	for i, w := range want {
		g := goals[i]
		if g.Title != w.title || g.Status != w.status || g.ProgressPercentage != w.progress {
			t.Errorf("goal %d = %s/%s/%v, want %s/%s/%v", i, g.Title, g.Status, g.ProgressPercentage, w.title, w.status, w.progress)
		}
	}
}

func TestStore_CanceledContext(t *testing.T) {
	s := NewStoreWithClock(mustParse(t), fixedNow)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ListTransactionsWithCategory(ctx, "u1", domain.DateRange{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestStore_DrivesEngine(t *testing.T) {
	s := NewStoreWithClock(mustParse(t), fixedNow)
	engine := insights.NewEngine(s.Stores(), insights.DefaultRules(), zerolog.Nop())

	res, err := engine.GenerateTips(context.Background(), "u1", "2024-05-01", "2024-05-31")
	if err != nil {
		t.Fatalf("GenerateTips: %v", err)
	}
	if len(res.Tips) == 0 || len(res.Tips) > 10 {
		t.Fatalf("got %d tips", len(res.Tips))
	}
	if res.Tips[0].Title != "Budget überschritten" {
		t.Errorf("top tip = %q", res.Tips[0].Title)
	}
	if res.Meta.TotalExpense == nil || *res.Meta.TotalExpense != 1200 {
		t.Errorf("totalExpense = %v", res.Meta.TotalExpense)
	}

	empty, err := engine.GenerateTips(context.Background(), "ghost", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty.Tips) != 1 || empty.Tips[0].Title != "Noch keine Daten" {
		t.Errorf("no-data result = %+v", empty.Tips)
	}
}
