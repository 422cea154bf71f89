package insights

import (
	"math"
	"sort"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	spikeFloor       = 200.0
	spikeMADFactor   = 6.0
	spikeMedianScale = 4.0
	maxSpikes        = 3

	minMerchantKeyLength = 3
	unknownMerchant      = "unknown"

	uncategorizedName = "Uncategorized"
)

// MerchantStat is the spend attributed to one canonical description.
type MerchantStat struct {
	Key    string
	Sample string
	Amount float64
	Count  int
}

// CategoryStat is the variable spend of one category.
type CategoryStat struct {
	ID     int64
	Name   string
	Amount float64
}

// Aggregates is the per-request snapshot every detector reads.
type Aggregates struct {
	TotalExpense float64
	TotalIncome  float64
	NetCashflow  float64

	FixedSum     float64
	SavingSum    float64
	VariableSum  float64
	TransportSum float64

	// SavingRatio is SavingSum/TotalIncome, 0 without income.
	SavingRatio float64

	WeekendVariableSum   float64
	WeekendVariableRatio float64

	MicroCount int
	MicroSum   float64

	Spikes      []entry
	TopMerchant *MerchantStat
	Recurring   []RecurringPayment
	Categories  []CategoryStat
}

// TopVariableCategory returns the category with the largest variable spend.
func (a *Aggregates) TopVariableCategory() *CategoryStat {
	if len(a.Categories) == 0 {
		return nil
	}
	return &a.Categories[0]
}

// aggregate derives all statistics from normalized expenses and income.
// catalog maps category ids to names for records without a joined label.
func aggregate(expenses, income []entry, catalog map[int64]domain.CategoryEntry, rules Rules) *Aggregates {
	a := &Aggregates{
		TotalExpense: sumValues(expenses),
		TotalIncome:  sumValues(income),
	}
	a.NetCashflow = a.TotalIncome - a.TotalExpense

	var variable []entry
	for _, e := range expenses {
		switch {
		case rules.isFixed(e.CategoryID):
			a.FixedSum += e.value
		case rules.isSaving(e.CategoryID):
			a.SavingSum += e.value
		default:
			variable = append(variable, e)
		}
		if e.CategoryID == rules.TransportCategoryID {
			a.TransportSum += e.value
		}
	}
	a.VariableSum = sumValues(variable)

	if a.TotalIncome > 0 {
		a.SavingRatio = a.SavingSum / a.TotalIncome
	}

	for _, e := range variable {
		if isWeekend(e.Date) {
			a.WeekendVariableSum += e.value
		}
		if e.value <= rules.MicroThreshold {
			a.MicroCount++
			a.MicroSum += e.value
		}
	}
	if a.VariableSum > 0 {
		a.WeekendVariableRatio = a.WeekendVariableSum / a.VariableSum
	}

	a.Spikes = detectSpikes(variable)
	a.TopMerchant = topMerchant(variable)
	a.Recurring = detectRecurring(variable)
	a.Categories = categoryTotals(variable, catalog)
	return a
}

// variableSpend sums expenses outside the fixed and saving categories.
func variableSpend(expenses []entry, rules Rules) float64 {
	var sum float64
	for _, e := range expenses {
		if rules.isFixed(e.CategoryID) || rules.isSaving(e.CategoryID) {
			continue
		}
		sum += e.value
	}
	return sum
}

func sumValues(entries []entry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.value
	}
	return sum
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// detectSpikes flags outliers above median + 6·MAD (median × 4 when MAD is 0),
// never below the absolute floor, largest first.
func detectSpikes(variable []entry) []entry {
	if len(variable) == 0 {
		return nil
	}
	values := make([]float64, len(variable))
	for i, e := range variable {
		values[i] = e.value
	}
	med := median(values)
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - med)
	}
	mad := median(deviations)

	cut := med * spikeMedianScale
	if mad > 0 {
		cut = med + spikeMADFactor*mad
	}
	threshold := math.Max(spikeFloor, cut)

	var spikes []entry
	for _, e := range variable {
		if e.value >= threshold {
			spikes = append(spikes, e)
		}
	}
	sort.SliceStable(spikes, func(i, j int) bool { return spikes[i].value > spikes[j].value })
	if len(spikes) > maxSpikes {
		spikes = spikes[:maxSpikes]
	}
	return spikes
}

func topMerchant(variable []entry) *MerchantStat {
	var order []*MerchantStat
	byKey := make(map[string]*MerchantStat)
	for _, e := range variable {
		key := e.canon
		if key == "" {
			key = unknownMerchant
		}
		if key == unknownMerchant || len([]rune(key)) < minMerchantKeyLength {
			continue
		}
		m, ok := byKey[key]
		if !ok {
			m = &MerchantStat{Key: key, Sample: firstNonEmpty(e.Description, key)}
			byKey[key] = m
			order = append(order, m)
		}
		m.Amount += e.value
		m.Count++
	}
	if len(order) == 0 {
		return nil
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].Amount > order[j].Amount })
	top := *order[0]
	return &top
}

func categoryTotals(variable []entry, catalog map[int64]domain.CategoryEntry) []CategoryStat {
	var order []int64
	byID := make(map[int64]*CategoryStat)
	for _, e := range variable {
		c, ok := byID[e.CategoryID]
		if !ok {
			c = &CategoryStat{ID: e.CategoryID, Name: categoryLabel(e.TransactionRecord, catalog, uncategorizedName)}
			byID[e.CategoryID] = c
			order = append(order, e.CategoryID)
		}
		c.Amount += e.value
	}
	out := make([]CategoryStat, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}

// categoryLabel prefers the joined label, then the catalog name, then fallback.
func categoryLabel(rec domain.TransactionRecord, catalog map[int64]domain.CategoryEntry, fallback string) string {
	if rec.CategoryName != "" {
		return rec.CategoryName
	}
	if c, ok := catalog[rec.CategoryID]; ok && c.Name != "" {
		return c.Name
	}
	return fallback
}

func catalogByID(categories []domain.CategoryEntry) map[int64]domain.CategoryEntry {
	m := make(map[int64]domain.CategoryEntry, len(categories))
	for _, c := range categories {
		m[c.ID] = c
	}
	return m
}

// toCents rounds the shortest decimal form of x half away from zero to two
// places. NaN and infinities become zero.
func toCents(x float64) decimal.Decimal {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(x).Round(2)
}

func round2(x float64) float64 {
	return toCents(x).InexactFloat64()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
