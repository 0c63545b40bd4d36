package recalculation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"brokerage-backend/internal/application/leads"
	"brokerage-backend/internal/commission"
	"brokerage-backend/internal/domain"
	"brokerage-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrInvalidPeriod = errors.New("mes must be between 1 and 12 and año between 2000 and 2100")

// Resolver is the part of the lead service the job needs.
type Resolver interface {
	Resolve(ctx context.Context, in leads.ResolveInput) (commission.Result, error)
}

type Service struct {
	DB       *gorm.DB
	Resolver Resolver
	// Now defaults to time.Now; it picks the period when none is given.
	Now func() time.Time
}

type Period struct {
	Desde time.Time `json:"desde"`
	Hasta time.Time `json:"hasta"`
	Mes   int       `json:"mes"`
	Anio  int       `json:"año"`
}

// LeadResult is the outcome for one lead of the period.
type LeadResult struct {
	LeadID           uuid.UUID        `json:"leadId"`
	ComisionAnterior decimal.Decimal  `json:"comisionAnterior"`
	ComisionNueva    *decimal.Decimal `json:"comisionNueva,omitempty"`
	ComisionID       *uuid.UUID       `json:"comisionId,omitempty"`
	ReglaComisionID  *uuid.UUID       `json:"reglaComisionId,omitempty"`
	Status           string           `json:"status,omitempty"`
	CantidadLeads    int              `json:"cantidadLeads"`
	Error            string           `json:"error,omitempty"`
}

type Summary struct {
	RunID             uuid.UUID    `json:"runId"`
	LeadsEncontrados  int          `json:"leadsEncontrados"`
	LeadsActualizados int          `json:"leadsActualizados"`
	LeadsFallidos     int          `json:"leadsFallidos"`
	Periodo           Period       `json:"periodo"`
	Resultados        []LeadResult `json:"resultados"`
}

// Recalculate re-resolves every lead whose reservation was paid in the month and overwrites
// its commission fields. mes and anio both zero select the current month. A lead that fails
// is logged and counted; the run always covers the whole period.
func (s *Service) Recalculate(ctx context.Context, mes, anio int) (*Summary, error) {
	if mes == 0 && anio == 0 {
		now := time.Now()
		if s.Now != nil {
			now = s.Now()
		}
		mes, anio = int(now.Month()), now.Year()
	}
	if !validation.IsValidPeriod(mes, anio) {
		return nil, ErrInvalidPeriod
	}
	desde, hasta := validation.MonthRange(anio, time.Month(mes), time.UTC)
	sum := &Summary{
		Periodo:    Period{Desde: desde, Hasta: hasta.Add(-time.Nanosecond), Mes: mes, Anio: anio},
		Resultados: []LeadResult{},
	}

	db := s.DB.WithContext(ctx)
	var period []domain.Lead
	err := db.Where("fecha_pago_reserva >= ? AND fecha_pago_reserva < ?", desde, hasta).
		Order("fecha_pago_reserva ASC").
		Find(&period).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads for period: %w", err)
	}
	sum.LeadsEncontrados = len(period)
	log.Info().Int("mes", mes).Int("anio", anio).Int("leads", len(period)).Msg("recalculating commissions")

	for _, l := range period {
		r := LeadResult{LeadID: l.ID, ComisionAnterior: l.Comision}
		res, err := s.recalculate(ctx, l)
		if err != nil {
			sum.LeadsFallidos++
			r.Error = err.Error()
			sum.Resultados = append(sum.Resultados, r)
			log.Error().Err(err).Str("lead_id", l.ID.String()).Msg("commission recalculation failed")
			continue
		}
		sum.LeadsActualizados++
		amount := res.Amount
		r.ComisionNueva = &amount
		r.ComisionID = res.CommissionID()
		r.ReglaComisionID = res.RuleID()
		r.Status = res.Status
		r.CantidadLeads = res.Count
		sum.Resultados = append(sum.Resultados, r)
	}

	payload, err := json.Marshal(sum.Resultados)
	if err != nil {
		return nil, err
	}
	run := &domain.RecalculationRun{
		Mes:               mes,
		Anio:              anio,
		LeadsEncontrados:  sum.LeadsEncontrados,
		LeadsActualizados: sum.LeadsActualizados,
		LeadsFallidos:     sum.LeadsFallidos,
		Resultados:        datatypes.JSON(payload),
	}
	if err := db.Create(run).Error; err != nil {
		log.Error().Err(err).Msg("failed to record recalculation run")
	} else {
		sum.RunID = run.ID
	}
	log.Info().
		Int("encontrados", sum.LeadsEncontrados).
		Int("actualizados", sum.LeadsActualizados).
		Int("fallidos", sum.LeadsFallidos).
		Msg("commission recalculation finished")
	return sum, nil
}

func (s *Service) recalculate(ctx context.Context, l domain.Lead) (commission.Result, error) {
	res, err := s.Resolver.Resolve(ctx, leads.ResolveInputFor(l))
	if err != nil {
		return res, err
	}
	err = s.DB.WithContext(ctx).Model(&domain.Lead{}).Where("id = ?", l.ID).Updates(map[string]interface{}{
		"comision":          res.Amount,
		"comision_id":       res.CommissionID(),
		"regla_comision_id": res.RuleID(),
	}).Error
	return res, err
}

// Runs lists past recalculation runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]domain.RecalculationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []domain.RecalculationRun
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recalculation runs: %w", err)
	}
	return out, nil
}
