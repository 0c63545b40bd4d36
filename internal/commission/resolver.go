package commission

import (
	"errors"
	"fmt"
	"math"

	"brokerage-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrOverlappingRules means two rules of one commission matched the same count.
// Rule writes reject overlaps, so this only happens when that guard was bypassed.
var ErrOverlappingRules = errors.New("commission rules overlap for the same lead count")

const (
	StatusConfigured   = "configured"
	StatusUnconfigured = "unconfigured"
)

// LeadContext is everything needed to resolve one lead.
// Rules may contain rules of other commissions; only those of the base commission are used.
type LeadContext struct {
	Chain Chain
	Rules []domain.CommissionRule
	Count int
	Total decimal.Decimal
}

// Result is the resolved commission of a lead.
type Result struct {
	Source     SourceKind             `json:"source"`
	Status     string                 `json:"status"`
	Configured bool                   `json:"configurado"`
	Commission *domain.Commission     `json:"comisionBase"`
	Rule       *domain.CommissionRule `json:"reglaComision"`
	Rate       decimal.Decimal        `json:"porcentaje"`
	Amount     decimal.Decimal        `json:"comision"`
	Count      int                    `json:"cantidadLeads"`
}

// CommissionID returns the base commission id, or nil when unconfigured.
func (r Result) CommissionID() *uuid.UUID {
	if r.Commission == nil {
		return nil
	}
	id := r.Commission.ID
	return &id
}

// RuleID returns the matched rule id, or nil when the base percentage applied.
func (r Result) RuleID() *uuid.UUID {
	if r.Rule == nil {
		return nil
	}
	id := r.Rule.ID
	return &id
}

// Resolve runs the priority chain, then the tier matcher, then computes the amount.
func Resolve(lc LeadContext) (Result, error) {
	src := ResolveBase(lc.Chain)
	if src.Kind == SourceNone {
		return Result{
			Source: SourceNone,
			Status: StatusUnconfigured,
			Rate:   decimal.Zero,
			Amount: decimal.Zero,
			Count:  lc.Count,
		}, nil
	}

	rule, err := MatchTier(*src.Commission, lc.Rules, lc.Count)
	if err != nil {
		return Result{}, err
	}
	rate := src.Commission.Porcentaje
	if rule != nil {
		rate = rule.Porcentaje
	}
	return Result{
		Source:     src.Kind,
		Status:     StatusConfigured,
		Configured: true,
		Commission: src.Commission,
		Rule:       rule,
		Rate:       rate,
		Amount:     Amount(rate, lc.Total),
		Count:      lc.Count,
	}, nil
}

// MatchTier returns the rule of base whose range contains count, or nil if none does.
func MatchTier(base domain.Commission, rules []domain.CommissionRule, count int) (*domain.CommissionRule, error) {
	var match *domain.CommissionRule
	for i := range rules {
		r := rules[i]
		if r.ComisionID != base.ID || !r.Contains(count) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: commission %s, rules %s and %s, count %d", ErrOverlappingRules, base.Codigo, match.ID, r.ID, count)
		}
		match = &r
	}
	return match, nil
}

// Amount is rate × total rounded to cents. A zero total yields zero.
func Amount(rate, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return rate.Mul(total).Round(2)
}

// RangesOverlap reports whether the inclusive ranges [aMin,aMax] and [bMin,bMax] intersect.
// A nil maximum is unbounded.
func RangesOverlap(aMin int, aMax *int, bMin int, bMax *int) bool {
	return aMin <= upper(bMax) && bMin <= upper(aMax)
}

func upper(max *int) int {
	if max == nil {
		return math.MaxInt
	}
	return *max
}
