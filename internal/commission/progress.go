package commission

import (
	"sort"

	"brokerage-backend/internal/domain"
)

// Progress describes where a broker stands within the tiers of one commission.
type Progress struct {
	Commission     domain.Commission      `json:"comision"`
	TotalLeads     int                    `json:"totalLeads"`
	CurrentRule    *domain.CommissionRule `json:"currentRule"`
	NextRule       *domain.CommissionRule `json:"nextRule"`
	UntilNextLevel *int                   `json:"untilNextLevel"`
}

// TierProgress finds the current tier for count and the first tier above it.
func TierProgress(base domain.Commission, rules []domain.CommissionRule, count int) (Progress, error) {
	p := Progress{Commission: base, TotalLeads: count}
	current, err := MatchTier(base, rules, count)
	if err != nil {
		return p, err
	}
	p.CurrentRule = current

	own := make([]domain.CommissionRule, 0, len(rules))
	for _, r := range rules {
		if r.ComisionID == base.ID {
			own = append(own, r)
		}
	}
	sort.Slice(own, func(i, j int) bool { return own[i].CantidadMinima < own[j].CantidadMinima })
	for i := range own {
		if own[i].CantidadMinima > count {
			next := own[i]
			until := next.CantidadMinima - count
			p.NextRule = &next
			p.UntilNextLevel = &until
			break
		}
	}
	return p, nil
}
