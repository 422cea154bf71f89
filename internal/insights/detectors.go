package insights

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dvloznov/finance-insights/internal/domain"
)

const lowGoalProgress = 35.0

// detectorInput is the shared read-only snapshot detectors work from.
type detectorInput struct {
	agg      *Aggregates
	budget   float64
	currency string
	catalog  map[int64]domain.CategoryEntry
	goals    []domain.GoalProgress
	rules    Rules

	// previousVariable is the variable spend of the preceding month, set only
	// for single-month ranges.
	previousVariable    float64
	hasPreviousVariable bool
}

type detector func(in *detectorInput) []Tip

// detectors run in this order; ties in score keep it.
var detectors = []detector{
	detectBudget,
	detectCashflow,
	detectTopCategory,
	detectMicroLeak,
	detectWeekend,
	detectMerchant,
	detectSpike,
	detectTransport,
	detectRecurringTips,
	detectTrend,
	detectOverdueGoals,
	detectLowGoalProgress,
}

func detectBudget(in *detectorInput) []Tip {
	if in.budget <= 0 {
		return nil
	}
	usage := in.agg.TotalExpense / in.budget
	switch {
	case usage >= 1:
		return []Tip{{
			Title: "Budget überschritten",
			Reason: fmt.Sprintf("Du bist bei %s (%s / %s %s). Fokus: steuerbare Posten deckeln.",
				percent(usage), money(in.agg.TotalExpense), money(in.budget), in.currency),
			Priority: PriorityHigh,
			Impact:   "Sofort spürbar",
			Icon:     "report_problem",
			score:    100,
		}}
	case usage >= 0.9:
		return []Tip{{
			Title:    "Budget-Pacing: nahe am Limit",
			Reason:   fmt.Sprintf("Du bist bei %s. Für den Rest: Tageslimit setzen + keine Spontankäufe.", percent(usage)),
			Priority: PriorityHigh,
			Impact:   "10–150€ möglich",
			Icon:     "speed",
			score:    86,
		}}
	case usage >= 0.75:
		return []Tip{{
			Title:    "Budget-Pacing aktivieren",
			Reason:   fmt.Sprintf("Du bist bei %s. Ab jetzt nur geplante Ausgaben, keine “weil gerade Bock”.", percent(usage)),
			Priority: PriorityMedium,
			Impact:   "10–80€ möglich",
			Icon:     "tune",
			score:    58,
		}}
	}
	return nil
}

func detectCashflow(in *detectorInput) []Tip {
	a := in.agg
	if a.TotalIncome <= 0 {
		return nil
	}
	if a.NetCashflow < 0 {
		return []Tip{{
			Title:    "Cashflow ist negativ",
			Reason:   fmt.Sprintf("Du bist bei %s %s. Quick-Fix: steuerbare Kategorien deckeln (bis wieder ≥ 0).", money(a.NetCashflow), in.currency),
			Priority: PriorityHigh,
			Impact:   "Sehr wichtig",
			Icon:     "trending_down",
			score:    92,
		}}
	}

	var tips []Tip
	if a.SavingSum == 0 {
		tips = append(tips, Tip{
			Title: "Automatisiere Sparen",
			Reason: fmt.Sprintf("Du hast +%s %s übrig. Auto-Transfer (Kategorie %d) direkt nach Einnahmen (z.B. 10%%).",
				money(a.NetCashflow), in.currency, in.rules.SavingCategoryID),
			Priority: PriorityMedium,
			Impact:   "Routine & Stabilität",
			Icon:     "auto_mode",
			score:    52,
		})
	}
	if target := a.FixedSum * 3; a.SavingRatio >= 0.1 && target > 0 {
		tips = append(tips, Tip{
			Title:    "Notgroschen als nächster Step",
			Reason:   fmt.Sprintf("Orientierung: 3 Monats-Fixkosten ≈ %s %s. Danach Investieren priorisieren.", money(target), in.currency),
			Priority: PriorityInfo,
			Impact:   "Langfristig",
			Icon:     "shield",
			score:    22,
		})
	}
	return tips
}

func detectTopCategory(in *detectorInput) []Tip {
	top := in.agg.TopVariableCategory()
	if top == nil || in.agg.VariableSum <= 0 {
		return nil
	}
	share := top.Amount / in.agg.VariableSum
	pb := playbookFor(top.Name)

	t := Tip{
		Title:    "Größter steuerbarer Hebel",
		Reason:   fmt.Sprintf("%s: %s %s (%s steuerbar). %s", top.Name, money(top.Amount), in.currency, percent(share), pb.text),
		Priority: PriorityMedium,
		Impact:   "10–120€ möglich",
		Icon:     pb.icon,
		score:    74,
	}
	if share >= 0.3 {
		t.Priority = PriorityHigh
		t.Impact = "20–200€ möglich"
	}
	return []Tip{t}
}

func detectMicroLeak(in *detectorInput) []Tip {
	a := in.agg
	if a.MicroCount < 12 || a.MicroSum < 25 {
		return nil
	}
	return []Tip{{
		Title: "Mikro-Leak erkannt",
		Reason: fmt.Sprintf("%d Ausgaben ≤ %s€ summieren sich auf %s %s. Tipp: Kleinzeug-Limit oder Cash-Envelope.",
			a.MicroCount, strconv.FormatFloat(in.rules.MicroThreshold, 'f', -1, 64), money(a.MicroSum), in.currency),
		Priority: PriorityMedium,
		Impact:   "10–80€ möglich",
		Icon:     "local_cafe",
		score:    56,
	}}
}

func detectWeekend(in *detectorInput) []Tip {
	a := in.agg
	if a.WeekendVariableRatio < 0.45 || a.WeekendVariableSum <= 0 {
		return nil
	}
	return []Tip{{
		Title: "Wochenenden treiben die Ausgaben",
		Reason: fmt.Sprintf("Am Wochenende entstehen %s deiner steuerbaren Ausgaben (%s %s). Wochenend-Budget setzen.",
			percent(a.WeekendVariableRatio), money(a.WeekendVariableSum), in.currency),
		Priority: PriorityMedium,
		Impact:   "10–150€ möglich",
		Icon:     "event",
		score:    48,
	}}
}

func detectMerchant(in *detectorInput) []Tip {
	m := in.agg.TopMerchant
	if m == nil || m.Count < 3 || in.agg.VariableSum <= 0 {
		return nil
	}
	share := m.Amount / in.agg.VariableSum
	if share < 0.18 {
		return nil
	}
	limit := math.Max(10, roundTo5(m.Amount*0.75))
	return []Tip{{
		Title: "Händler-Fokus",
		Reason: fmt.Sprintf("„%s“: %d×, %s %s (%s). Smart-Cap fürs nächste Monat: %.0f %s.",
			m.Sample, m.Count, money(m.Amount), in.currency, percent(share), limit, in.currency),
		Priority: PriorityMedium,
		Impact:   "5–120€ möglich",
		Icon:     "store",
		score:    52,
	}}
}

func detectSpike(in *detectorInput) []Tip {
	if len(in.agg.Spikes) == 0 {
		return nil
	}
	s := in.agg.Spikes[0]
	reserve := math.Max(20, roundTo5(s.value/6))
	return []Tip{{
		Title: "Ausgaben-Spike",
		Reason: fmt.Sprintf("„%s“ (%s): %s %s. Rücklage-Idee: %.0f %s/Monat für 6 Monate.",
			firstNonEmpty(s.Description, "Große Ausgabe"), categoryLabel(s.TransactionRecord, in.catalog, "Kategorie"),
			money(s.value), in.currency, reserve, in.currency),
		Priority: PriorityMedium,
		Impact:   "Spikes planbar machen",
		Icon:     "show_chart",
		score:    55,
	}}
}

func detectTransport(in *detectorInput) []Tip {
	if in.agg.TransportSum < 120 {
		return nil
	}
	return []Tip{{
		Title:    "Transport-Kostenhebel",
		Reason:   fmt.Sprintf("Transport: %s %s. Ticket/Monatskarte prüfen + klare Taxi-Regel.", money(in.agg.TransportSum), in.currency),
		Priority: PriorityInfo,
		Impact:   "5–60€ möglich",
		Icon:     "directions_bus",
		score:    22,
	}}
}

const maxRecurringTips = 3

func detectRecurringTips(in *detectorInput) []Tip {
	var tips []Tip
	for _, r := range in.agg.Recurring {
		if r.Interval == IntervalNone {
			continue
		}
		if len(tips) == maxRecurringTips {
			break
		}

		label := "Regelmäßiger Fixposten"
		switch r.Interval {
		case IntervalMonthly:
			label = "Monatlicher Fixposten"
		case IntervalWeekly:
			label = "Wöchentlicher Fixposten"
		}
		target := math.Max(5, roundTo5(r.Average*0.85))

		t := Tip{
			Title: label + " prüfen",
			Reason: fmt.Sprintf("„%s“ (%d×, Ø %s %s). Aktion: kündigen/downgraden oder Zielwert %.0f %s.",
				r.Description, r.Count, money(r.Average), in.currency, target, in.currency),
			Priority: PriorityMedium,
			Impact:   "variabel",
			Icon:     "repeat",
			score:    62,
		}
		if r.Average >= 15 {
			t.Priority = PriorityHigh
		}
		if r.Interval == IntervalMonthly {
			t.Impact = fmt.Sprintf("%s %s/Monat", money(r.Average), in.currency)
		}
		tips = append(tips, t)
	}
	return tips
}

func detectTrend(in *detectorInput) []Tip {
	if !in.hasPreviousVariable || in.previousVariable <= 0 {
		return nil
	}
	prev, cur := in.previousVariable, in.agg.VariableSum
	change := (cur - prev) / prev
	switch {
	case change >= 0.2:
		return []Tip{{
			Title: "Trend: steuerbare Ausgaben gestiegen",
			Reason: fmt.Sprintf("Vormonat: %s → jetzt: %s %s (%s). Fokus: Abos/Recurring + Wochenenden + Mikro-Leaks.",
				money(prev), money(cur), in.currency, percent(change)),
			Priority: PriorityHigh,
			Impact:   "20–200€ möglich",
			Icon:     "trending_up",
			score:    82,
		}}
	case change <= -0.15:
		return []Tip{{
			Title: "Trend: du bist besser geworden",
			Reason: fmt.Sprintf("Steuerbare Ausgaben sind um %s gesunken (%s → %s %s).",
				percent(math.Abs(change)), money(prev), money(cur), in.currency),
			Priority: PriorityInfo,
			Impact:   "Sehr gut",
			Icon:     "thumb_up",
			score:    28,
		}}
	}
	return nil
}

func detectOverdueGoals(in *detectorInput) []Tip {
	var overdue int
	for _, g := range in.goals {
		if g.Status == domain.GoalOverdue {
			overdue++
		}
	}
	if overdue == 0 {
		return nil
	}
	return []Tip{{
		Title: "Ziel(e) überfällig",
		Reason: fmt.Sprintf("%d Ziel(e) sind überfällig. Fix: Auto-Transfer (Kategorie %d) direkt nach Einnahmen.",
			overdue, in.rules.SavingCategoryID),
		Priority: PriorityHigh,
		Impact:   "Zielerreichung",
		Icon:     "flag",
		score:    72,
	}}
}

const maxLowProgressTips = 2

func detectLowGoalProgress(in *detectorInput) []Tip {
	var tips []Tip
	for _, g := range in.goals {
		if g.Status != domain.GoalInProgress || g.ProgressPercentage >= lowGoalProgress {
			continue
		}
		tips = append(tips, Tip{
			Title:    "Ziel-Fortschritt niedrig",
			Reason:   fmt.Sprintf("„%s“: %.0f%%. Fixbetrag/Monat + automatisieren.", g.Title, roundHalfUp(g.ProgressPercentage)),
			Priority: PriorityMedium,
			Impact:   "Zielerreichung",
			Icon:     "flag_circle",
			score:    38,
		})
		if len(tips) == maxLowProgressTips {
			break
		}
	}
	return tips
}

func fallbackTip() Tip {
	return Tip{
		Title:    "Schneller Hebel: 24h-Regel",
		Reason:   "Bei nicht notwendigen Ausgaben >50€: 24h warten. Reduziert Impulskäufe extrem.",
		Priority: PriorityInfo,
		Impact:   "Impuls reduzieren",
		Icon:     "hourglass_empty",
		score:    10,
	}
}

func noDataTip() Tip {
	const msg = "Im ausgewählten Zeitraum wurden keine Transaktionen gefunden."
	return Tip{
		Title:    "Noch keine Daten",
		Message:  msg,
		Reason:   msg,
		Priority: PriorityInfo,
		Impact:   defaultImpact,
		Icon:     "info",
	}
}

// runDetectors evaluates every detector in order and tops up with the fallback.
func runDetectors(in *detectorInput) []Tip {
	var tips []Tip
	for _, d := range detectors {
		for _, t := range d(in) {
			tips = append(tips, finalize(t))
		}
	}
	if len(tips) < in.rules.MinTips {
		tips = append(tips, finalize(fallbackTip()))
	}
	return tips
}
