package insights

import (
	"fmt"
	"regexp"
	"strings"
)

// Priority is the urgency tier shown with a tip.
type Priority string

const (
	PriorityInfo   Priority = "info"
	PriorityMedium Priority = "mittel"
	PriorityHigh   Priority = "hoch"
)

const (
	defaultImpact = "—"
	defaultIcon   = "tips_and_updates"
	nextStepLabel = "Nächster Schritt:"
)

// Tip is one actionable recommendation. The relevance score orders tips and is
// never serialized.
type Tip struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Reason   string   `json:"reason"`
	Action   string   `json:"action"`
	Priority Priority `json:"priority"`
	Impact   string   `json:"impact"`
	Icon     string   `json:"icon"`

	score float64
}

var actionMarker = regexp.MustCompile(`(?i)(aktion:|fix:|tipp:|n(ä|ae)chster schritt:|action:|tip:|next step:)`)

// finalize fills message, reason, action and presentation defaults.
func finalize(t Tip) Tip {
	action := strings.TrimSpace(t.Action)
	if action == "" {
		action = defaultAction(t.Title)
	}
	if t.Message == "" {
		t.Message = composeMessage(t.Reason, action)
	}
	if t.Reason == "" {
		t.Reason = t.Message
	}
	if t.Action == "" {
		t.Action = action
	}
	if t.Priority == "" {
		t.Priority = PriorityInfo
	}
	if t.Impact == "" {
		t.Impact = defaultImpact
	}
	if t.Icon == "" {
		t.Icon = defaultIcon
	}
	return t
}

// composeMessage appends the action unless the reason already carries one.
func composeMessage(reason, action string) string {
	base := collapseSpace(reason)
	if base == "" {
		return action
	}
	if actionMarker.MatchString(base) {
		return base
	}
	return fmt.Sprintf("%s %s %s", base, nextStepLabel, action)
}

var actionsByKeyword = []struct {
	keywords []string
	action   string
}{
	{[]string{"budget"}, "Setze ein fixes Tageslimit und pausiere Spontankäufe bis Monatsende."},
	{[]string{"cashflow"}, "Senke diese Woche 1-2 variable Kategorien, bis der Cashflow wieder positiv ist."},
	{[]string{"sparen", "notgroschen"}, "Richte einen automatischen Spar-Transfer direkt nach Einnahmen ein."},
	{[]string{"wochenende"}, "Lege ein Wochenend-Budget fest und tracke es separat."},
	{[]string{"mikro"}, "Setze ein Kleinbetrags-Limit pro Woche (z. B. 15-25 EUR)."},
	{[]string{"handler", "hebel", "trend"}, "Definiere ein konkretes Monatslimit und prüfe den Fortschritt jede Woche."},
	{[]string{"ziel"}, "Lege einen Fixbetrag pro Monat fest und automatisiere die Buchung."},
}

const genericAction = "Wähle einen Betrag als Limit und prüfe in 7 Tagen, ob du darunter bleibst."

// defaultAction picks a next step by keyword on the canonical title.
func defaultAction(title string) string {
	canon := Canonicalize(title)
	for _, rule := range actionsByKeyword {
		for _, kw := range rule.keywords {
			if strings.Contains(canon, kw) {
				return rule.action
			}
		}
	}
	return genericAction
}

// money formats x with two decimals, rounded like round2.
func money(x float64) string {
	return toCents(x).StringFixed(2)
}

func percent(x float64) string {
	return fmt.Sprintf("%.0f%%", roundHalfUp(x*100))
}

// roundTo5 rounds x to the nearest multiple of 5.
func roundTo5(x float64) float64 {
	return roundHalfUp(x/5) * 5
}
