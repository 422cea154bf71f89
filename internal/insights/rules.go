package insights

// Rules holds the category ids and thresholds the engine classifies with.
type Rules struct {
	// FixedCategoryIDs are categories treated as non-discretionary spending.
	FixedCategoryIDs []int64
	// SavingCategoryID is the category that transfers into savings are booked on.
	SavingCategoryID int64
	// TransportCategoryID is the category summed for the transport tip.
	TransportCategoryID int64
	// MicroThreshold is the largest amount counted as a micro expense.
	MicroThreshold float64
	// MaxTips caps the ranked output.
	MaxTips int
	// MinTips is the count below which the generic fallback tip is added.
	MinTips int
}

// DefaultRules returns the classification used by the production data set.
func DefaultRules() Rules {
	return Rules{
		FixedCategoryIDs:    []int64{2, 6, 7, 8},
		SavingCategoryID:    11,
		TransportCategoryID: 5,
		MicroThreshold:      5,
		MaxTips:             10,
		MinTips:             5,
	}
}

func (r Rules) isFixed(categoryID int64) bool {
	for _, id := range r.FixedCategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

func (r Rules) isSaving(categoryID int64) bool {
	return categoryID == r.SavingCategoryID
}

// withDefaults fills zero limits so a partially configured Rules stays usable.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.MaxTips <= 0 {
		r.MaxTips = d.MaxTips
	}
	if r.MinTips <= 0 {
		r.MinTips = d.MinTips
	}
	if r.MicroThreshold <= 0 {
		r.MicroThreshold = d.MicroThreshold
	}
	return r
}
