package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"brokerage-backend/internal/commission"
	"brokerage-backend/internal/domain"
	"brokerage-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Preview resolves the commission a broker would get for a lead, before it is submitted.
func (s *Service) Preview(ctx context.Context, in ResolveInput) (commission.Result, error) {
	if in.EdificioID == uuid.Nil {
		return commission.Result{}, fmt.Errorf("%w: edificioId is required", ErrInvalid)
	}
	if in.TotalLead.IsNegative() {
		return commission.Result{}, fmt.Errorf("%w: totalLead must not be negative", ErrInvalid)
	}
	return s.Resolve(ctx, in)
}

// UpdateInput is an admin edit; nil fields are left unchanged.
type UpdateInput struct {
	Estado           *string
	Conciliado       *bool
	TotalLead        *decimal.Decimal
	MontoUf          *decimal.Decimal
	FechaPagoReserva *time.Time
	FechaPagoLead    *time.Time
	FechaCheckin     *time.Time
	Observaciones    *string
}

// AdminUpdate edits a lead. Any valid estado may be set from any other. Changing the total
// or the reservation date re-runs the resolver.
func (s *Service) AdminUpdate(ctx context.Context, id uuid.UUID, in UpdateInput) (*domain.Lead, error) {
	db := s.DB.WithContext(ctx)
	var lead domain.Lead
	if err := db.First(&lead, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Estado != nil {
		if !constants.IsValidLeadState(*in.Estado) {
			return nil, fmt.Errorf("%w: estado must be one of %s", ErrInvalid, strings.Join(constants.LeadStates, ", "))
		}
		if constants.IsTerminalLeadState(lead.Estado) && !constants.IsTerminalLeadState(*in.Estado) {
			active, err := findActiveLead(db, lead.ClienteID, &lead.ID)
			if err != nil {
				return nil, err
			}
			if active != nil {
				return nil, active
			}
		}
		updates["estado"] = *in.Estado
	}
	if in.Conciliado != nil {
		updates["conciliado"] = *in.Conciliado
		if *in.Conciliado {
			updates["fecha_conciliacion"] = s.now()
		} else {
			updates["fecha_conciliacion"] = nil
		}
	}
	if in.TotalLead != nil {
		if !in.TotalLead.IsPositive() {
			return nil, fmt.Errorf("%w: totalLead must be greater than 0", ErrInvalid)
		}
		updates["total_lead"] = *in.TotalLead
		lead.TotalLead = *in.TotalLead
	}
	if in.MontoUf != nil {
		if in.MontoUf.IsNegative() {
			return nil, fmt.Errorf("%w: montoUf must not be negative", ErrInvalid)
		}
		updates["monto_uf"] = *in.MontoUf
	}
	if in.FechaPagoReserva != nil {
		updates["fecha_pago_reserva"] = *in.FechaPagoReserva
		lead.FechaPagoReserva = in.FechaPagoReserva
	}
	if in.FechaPagoLead != nil {
		updates["fecha_pago_lead"] = *in.FechaPagoLead
	}
	if in.FechaCheckin != nil {
		updates["fecha_checkin"] = *in.FechaCheckin
	}
	if in.Observaciones != nil {
		updates["observaciones"] = *in.Observaciones
	}
	if len(updates) == 0 {
		return &lead, nil
	}

	if in.TotalLead != nil || in.FechaPagoReserva != nil {
		res, err := s.Resolve(ctx, ResolveInputFor(lead))
		if err != nil {
			return nil, err
		}
		updates["comision"] = res.Amount
		updates["comision_id"] = res.CommissionID()
		updates["regla_comision_id"] = res.RuleID()
	}

	if err := db.Model(&domain.Lead{}).Where("id = ?", lead.ID).Updates(updates).Error; err != nil {
		if in.Estado != nil && !constants.IsTerminalLeadState(*in.Estado) {
			if active, findErr := findActiveLead(db, lead.ClienteID, &lead.ID); findErr == nil && active != nil {
				return nil, active
			}
		}
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	var out domain.Lead
	if err := db.First(&out, "id = ?", lead.ID).Error; err != nil {
		return nil, err
	}
	log.Info().Str("lead_id", out.ID.String()).Str("estado", out.Estado).Msg("lead updated")
	return &out, nil
}

// ResolveInputFor rebuilds the resolver input of a stored lead, excluding the lead from its own count.
// Without a reservation date AsOf stays zero, which resolves as of today.
func ResolveInputFor(l domain.Lead) ResolveInput {
	in := ResolveInput{
		BrokerID:      l.BrokerID,
		EdificioID:    l.EdificioID,
		UnidadID:      l.UnidadID,
		TotalLead:     l.TotalLead,
		ExcludeLeadID: &l.ID,
	}
	if l.UnidadID == nil {
		in.TipoUnidadEdificioID = l.TipoUnidadEdificioID
	}
	if l.FechaPagoReserva != nil {
		in.AsOf = *l.FechaPagoReserva
	}
	return in
}

// ListFilter narrows lead listings; zero values match everything.
type ListFilter struct {
	Estado     string
	BrokerID   *uuid.UUID
	EdificioID *uuid.UUID
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Lead, error) {
	q := s.DB.WithContext(ctx).Order("created_at DESC")
	if f.Estado != "" {
		if !constants.IsValidLeadState(f.Estado) {
			return nil, fmt.Errorf("%w: unknown estado %q", ErrInvalid, f.Estado)
		}
		q = q.Where("estado = ?", f.Estado)
	}
	if f.BrokerID != nil {
		q = q.Where("broker_id = ?", *f.BrokerID)
	}
	if f.EdificioID != nil {
		q = q.Where("edificio_id = ?", *f.EdificioID)
	}
	var out []domain.Lead
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	return out, nil
}

// ListForBroker lists the broker's own leads.
func (s *Service) ListForBroker(ctx context.Context, brokerID uuid.UUID, estado string) ([]domain.Lead, error) {
	return s.List(ctx, ListFilter{Estado: estado, BrokerID: &brokerID})
}

// Progress reports, for each active commission with tiers, where the broker stands as of date.
func (s *Service) Progress(ctx context.Context, brokerID uuid.UUID, date time.Time, commissionID *uuid.UUID) ([]commission.Progress, error) {
	if date.IsZero() {
		date = s.now()
	}
	db := s.DB.WithContext(ctx)

	var rules []domain.CommissionRule
	rq := db.Order("cantidad_minima ASC")
	if commissionID != nil {
		rq = rq.Where("comision_id = ?", *commissionID)
	}
	if err := rq.Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to load commission rules: %w", err)
	}
	byCommission := map[uuid.UUID][]domain.CommissionRule{}
	for _, r := range rules {
		byCommission[r.ComisionID] = append(byCommission[r.ComisionID], r)
	}
	if len(byCommission) == 0 {
		return []commission.Progress{}, nil
	}
	ids := make([]uuid.UUID, 0, len(byCommission))
	for id := range byCommission {
		ids = append(ids, id)
	}

	var active []domain.Commission
	if err := db.Where("activa = ? AND id IN ?", true, ids).Order("nombre ASC").Find(&active).Error; err != nil {
		return nil, fmt.Errorf("failed to load commissions: %w", err)
	}

	out := make([]commission.Progress, 0, len(active))
	for _, c := range active {
		count, err := s.Counter.CountQualifying(ctx, brokerID, c.ID, date, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to count broker leads: %w", err)
		}
		p, err := commission.TierProgress(c, byCommission[c.ID], count)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
