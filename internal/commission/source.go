// Package commission resolves the commission that applies to a lead.
//
// Resolution is pure: callers load the building/unit-type/unit chain, the rules and the
// broker's lead count, and this package decides the base commission, the matching tier
// and the resulting amount.
package commission

import "brokerage-backend/internal/domain"

// SourceKind identifies which level of the priority chain supplied the base commission.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceUnit
	SourceUnitType
	SourceProject
)

func (k SourceKind) String() string {
	switch k {
	case SourceUnit:
		return "unit"
	case SourceUnitType:
		return "unitType"
	case SourceProject:
		return "project"
	default:
		return "none"
	}
}

// MarshalText makes the kind serialize as its name in JSON.
func (k SourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Source is the outcome of the priority chain. Commission is nil when Kind is SourceNone.
type Source struct {
	Kind       SourceKind
	Commission *domain.Commission
}

// Chain holds whatever the lead references. Unit must carry its TipoUnidadEdificio (with
// Comision) and Building its Comision for the chain to see them.
type Chain struct {
	Unit     *domain.Unit
	UnitType *domain.UnitType
	Building *domain.Building
}

// ResolveBase walks unit > unit type > project and returns the first active commission.
// Matches are never combined.
func ResolveBase(chain Chain) Source {
	if chain.Unit != nil && chain.Unit.TipoUnidadEdificio != nil && usable(chain.Unit.TipoUnidadEdificio.Comision) {
		return Source{Kind: SourceUnit, Commission: chain.Unit.TipoUnidadEdificio.Comision}
	}
	if chain.UnitType != nil && usable(chain.UnitType.Comision) {
		return Source{Kind: SourceUnitType, Commission: chain.UnitType.Comision}
	}
	if chain.Building != nil && usable(chain.Building.Comision) {
		return Source{Kind: SourceProject, Commission: chain.Building.Comision}
	}
	return Source{Kind: SourceNone}
}

// inactive commissions count as unset so the chain falls through to the next level
func usable(c *domain.Commission) bool {
	return c != nil && c.Activa
}
