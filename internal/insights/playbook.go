package insights

import "strings"

type playbook struct {
	keywords []string
	icon     string
	text     string
}

var playbooks = []playbook{
	{
		keywords: []string{"essen", "food", "restaurant", "takeaway", "lebensmittel"},
		icon:     "restaurant",
		text:     "Hebel: Wochenbudget + Meal-Plan. Regel: nur 2 Takeaway-Tage/Woche. Tracke Kaffee/Snacks separat.",
	},
	{
		keywords: []string{"freizeit", "entertain", "kino", "party", "events", "games"},
		icon:     "local_activity",
		text:     "Hebel: Freizeit-Budget fixieren. Regel: 1 großes Event/Monat, Rest low-cost.",
	},
	{
		keywords: []string{"shopping", "kleidung", "amazon", "mode", "electronics", "technik"},
		icon:     "shopping_bag",
		text:     "Hebel: 30-Tage-Regel + Wunschliste. Limit: max. 1 größerer Kauf/Monat. Vor Kauf 3 Preise vergleichen.",
	},
	{
		keywords: []string{"transport", "uber", "taxi", "auto", "benzin", "fuel", "bahn", "ticket"},
		icon:     "directions_car",
		text:     "Hebel: Taxi-Regel + Wege bündeln. Prüfe Monatskarte/Flatrate vs Einzel-Fahrten.",
	},
	{
		keywords: []string{"abo", "subscription", "stream", "netflix", "spotify", "prime", "gym"},
		icon:     "repeat",
		text:     "Hebel: Abos auditieren. Regel: 1 Streaming gleichzeitig. Downgrade/Family/Student Tarife prüfen.",
	},
	{
		keywords: []string{"gesund", "health", "apotheke", "arzt", "fitness"},
		icon:     "health_and_safety",
		text:     "Hebel: fixe Budgets statt spontane Käufe. Große Kosten: Angebote/Alternativen prüfen.",
	},
	{
		keywords: []string{"bildung", "education", "kurs", "course", "lernen"},
		icon:     "school",
		text:     "Hebel: nur 1 Kurs gleichzeitig. Budget pro Quartal setzen und laufende Abos pausieren wenn nicht genutzt.",
	},
}

var fallbackPlaybook = playbook{
	icon: "tune",
	text: "Hebel: Monatslimit setzen und wöchentlich tracken.",
}

// playbookFor matches a category name against the lever catalog.
func playbookFor(categoryName string) playbook {
	canon := Canonicalize(categoryName)
	if canon == "" {
		return fallbackPlaybook
	}
	for _, pb := range playbooks {
		for _, kw := range pb.keywords {
			if strings.Contains(canon, kw) {
				return pb
			}
		}
	}
	return fallbackPlaybook
}
