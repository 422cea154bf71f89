package domain

import (
	"testing"

	"cloud.google.com/go/civil"
)

func TestDeriveGoalStatus(t *testing.T) {
	today := civil.Date{Year: 2024, Month: 6, Day: 15}

	tests := []struct {
		name    string
		current float64
		target  float64
		date    civil.Date
		want    GoalStatus
	}{
		{"reached", 100, 100, civil.Date{Year: 2024, Month: 1, Day: 1}, GoalCompleted},
		{"past target date", 10, 100, civil.Date{Year: 2024, Month: 6, Day: 14}, GoalOverdue},
		{"due today", 10, 100, today, GoalInProgress},
		{"no target date", 10, 100, civil.Date{}, GoalInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveGoalStatus(tt.current, tt.target, tt.date, today); got != tt.want {
				t.Errorf("DeriveGoalStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProgressPercentage(t *testing.T) {
	if got := ProgressPercentage(250, 1000); got != 25 {
		t.Errorf("ProgressPercentage(250, 1000) = %v, want 25", got)
	}
	if got := ProgressPercentage(10, 0); got != 0 {
		t.Errorf("ProgressPercentage(10, 0) = %v, want 0", got)
	}
}

func TestDateRange_Contains(t *testing.T) {
	may1 := civil.Date{Year: 2024, Month: 5, Day: 1}
	may31 := civil.Date{Year: 2024, Month: 5, Day: 31}
	r := DateRange{Start: may1, End: may31}

	if !r.Contains(may1) || !r.Contains(may31) {
		t.Error("bounds should be inclusive")
	}
	if r.Contains(may1.AddDays(-1)) || r.Contains(may31.AddDays(1)) {
		t.Error("dates outside the range should be excluded")
	}
	if !(DateRange{}).Contains(may1) {
		t.Error("unbounded range should contain every date")
	}
}

func TestDefaultPreference(t *testing.T) {
	p := DefaultPreference("u1")
	if p.Saldo != "0" || p.PreferredCurrency != "EUR" || p.UserID != "u1" {
		t.Errorf("DefaultPreference = %+v", p)
	}
}
