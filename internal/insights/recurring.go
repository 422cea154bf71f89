package insights

import (
	"math"
	"sort"
	"strconv"

	"cloud.google.com/go/civil"
)

// PaymentInterval is the cadence inferred for a recurring payment.
type PaymentInterval string

const (
	IntervalNone     PaymentInterval = ""
	IntervalWeekly   PaymentInterval = "weekly"
	IntervalBiweekly PaymentInterval = "biweekly"
	IntervalMonthly  PaymentInterval = "monthly"
)

const (
	minRecurringCount     = 3
	recurringTolerance    = 0.08
	minRecurringAmplitude = 1.0
	maxRecurring          = 6
)

// RecurringPayment is a group of near-identical charges with a regular cadence.
type RecurringPayment struct {
	Description string
	CategoryID  int64
	// Average is rounded to cents.
	Average  float64
	Count    int
	Interval PaymentInterval
}

type recurringGroup struct {
	description string
	categoryID  int64
	amounts     []float64
	dates       []civil.Date
}

// detectRecurring groups variable expenses by canonical description and category and keeps
// groups of at least three charges whose amplitude stays within max(1, 8% of the mean).
func detectRecurring(variable []entry) []RecurringPayment {
	var order []*recurringGroup
	groups := make(map[string]*recurringGroup)
	for _, e := range variable {
		if e.canon == "" || e.canon == unknownMerchant {
			continue
		}
		key := recurringKey(e)
		g, ok := groups[key]
		if !ok {
			g = &recurringGroup{description: firstNonEmpty(e.Description, e.canon), categoryID: e.CategoryID}
			groups[key] = g
			order = append(order, g)
		}
		g.amounts = append(g.amounts, e.value)
		g.dates = append(g.dates, e.Date)
	}

	var out []RecurringPayment
	for _, g := range order {
		if len(g.amounts) < minRecurringCount {
			continue
		}
		var total float64
		for _, v := range g.amounts {
			total += v
		}
		avg := total / float64(len(g.amounts))
		var maxDev float64
		for _, v := range g.amounts {
			maxDev = math.Max(maxDev, math.Abs(v-avg))
		}
		if maxDev > math.Max(minRecurringAmplitude, avg*recurringTolerance) {
			continue
		}
		out = append(out, RecurringPayment{
			Description: g.description,
			CategoryID:  g.categoryID,
			Average:     round2(avg),
			Count:       len(g.amounts),
			Interval:    classifyInterval(g.dates),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Average*float64(out[i].Count) > out[j].Average*float64(out[j].Count)
	})
	if len(out) > maxRecurring {
		out = out[:maxRecurring]
	}
	return out
}

func recurringKey(e entry) string {
	category := "x"
	if e.CategoryID != 0 {
		category = strconv.FormatInt(e.CategoryID, 10)
	}
	return e.canon + "::" + category
}

// classifyInterval maps the mean day gap between sorted dates to a cadence.
// Any invalid date leaves the cadence undetermined.
func classifyInterval(dates []civil.Date) PaymentInterval {
	if len(dates) < 2 {
		return IntervalNone
	}
	sorted := append([]civil.Date(nil), dates...)
	for _, d := range sorted {
		if !d.IsValid() {
			return IntervalNone
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var gaps int
	for i := 1; i < len(sorted); i++ {
		gaps += sorted[i].DaysSince(sorted[i-1])
	}
	avg := float64(gaps) / float64(len(sorted)-1)

	switch {
	case avg >= 27 && avg <= 35:
		return IntervalMonthly
	case avg >= 6 && avg <= 8:
		return IntervalWeekly
	case avg >= 13 && avg <= 16:
		return IntervalBiweekly
	}
	return IntervalNone
}
