package insights

import (
	"fmt"
	"testing"
)

func TestRankTips(t *testing.T) {
	tips := []Tip{
		{Title: "low", score: 10},
		{Title: "first tie", score: 52},
		{Title: "top", score: 100},
		{Title: "second tie", score: 52},
	}

	got := rankTips(tips, 10)

	want := []string{"top", "first tie", "second tie", "low"}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("rank %d = %q, want %q", i, got[i].Title, title)
		}
		if got[i].score != 0 {
			t.Errorf("rank %d kept score %v", i, got[i].score)
		}
	}
	if tips[0].score != 10 {
		t.Error("rankTips modified its input")
	}
}

func TestRankTips_Truncates(t *testing.T) {
	var tips []Tip
	for i := 0; i < 14; i++ {
		tips = append(tips, Tip{Title: fmt.Sprintf("tip %d", i), score: float64(i)})
	}

	got := rankTips(tips, 10)
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	if got[0].Title != "tip 13" || got[9].Title != "tip 4" {
		t.Errorf("kept %q..%q", got[0].Title, got[9].Title)
	}
}
