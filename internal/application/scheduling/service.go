package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brokerage-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrInvalid            = errors.New("invalid scheduled change")
	ErrCommissionNotFound = errors.New("commission not found")
	ErrCommissionInactive = errors.New("commission is not active")
	ErrBuildingNotFound   = errors.New("building not found")
	ErrUnitTypeNotFound   = errors.New("unit type not found in building")
)

type Service struct {
	DB *gorm.DB
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type CreateInput struct {
	FechaCambio  time.Time
	ComisionID   uuid.UUID
	EdificioID   uuid.UUID
	TipoUnidadID *uuid.UUID
}

// Create schedules a commission change for a building or, with TipoUnidadID, one of its unit types.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.ScheduledCommissionChange, error) {
	if in.FechaCambio.IsZero() || in.ComisionID == uuid.Nil || in.EdificioID == uuid.Nil {
		return nil, fmt.Errorf("%w: fechaCambio, comisionId and edificioId are required", ErrInvalid)
	}
	if !in.FechaCambio.After(s.now()) {
		return nil, fmt.Errorf("%w: fechaCambio must be in the future", ErrInvalid)
	}
	ch := &domain.ScheduledCommissionChange{
		FechaCambio:  in.FechaCambio,
		ComisionID:   in.ComisionID,
		EdificioID:   in.EdificioID,
		TipoUnidadID: in.TipoUnidadID,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c domain.Commission
		if err := tx.First(&c, "id = ?", in.ComisionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommissionNotFound
			}
			return err
		}
		if !c.Activa {
			return ErrCommissionInactive
		}
		var n int64
		if err := tx.Model(&domain.Building{}).Where("id = ?", in.EdificioID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrBuildingNotFound
		}
		if in.TipoUnidadID != nil {
			if err := tx.Model(&domain.UnitType{}).Where("id = ? AND edificio_id = ?", *in.TipoUnidadID, in.EdificioID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrUnitTypeNotFound
			}
		}
		return tx.Create(ch).Error
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("cambio_id", ch.ID.String()).Time("fecha_cambio", ch.FechaCambio).Msg("commission change scheduled")
	return ch, nil
}

// List returns pending changes first, each group ordered by fechaCambio.
func (s *Service) List(ctx context.Context) ([]domain.ScheduledCommissionChange, error) {
	var out []domain.ScheduledCommissionChange
	err := s.DB.WithContext(ctx).Preload("Comision").
		Order("ejecutado ASC").Order("fecha_cambio ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scheduled changes: %w", err)
	}
	return out, nil
}

// ExecutionSummary is the outcome of one ExecutePending run.
type ExecutionSummary struct {
	TotalProcesados int `json:"totalProcesados"`
	Ejecutados      int `json:"ejecutados"`
	Errores         int `json:"errores"`
}

// ExecutePending applies every unexecuted change whose fechaCambio has passed, oldest first.
// Each change commits on its own; a failing change is logged, counted and left pending.
func (s *Service) ExecutePending(ctx context.Context) (ExecutionSummary, error) {
	now := s.now()
	var pending []domain.ScheduledCommissionChange
	err := s.DB.WithContext(ctx).
		Where("ejecutado = ? AND fecha_cambio <= ?", false, now).
		Order("fecha_cambio ASC").
		Find(&pending).Error
	if err != nil {
		return ExecutionSummary{}, fmt.Errorf("failed to fetch pending changes: %w", err)
	}

	sum := ExecutionSummary{TotalProcesados: len(pending)}
	for i := range pending {
		ch := pending[i]
		if err := s.apply(ctx, ch, now); err != nil {
			sum.Errores++
			log.Error().Err(err).Str("cambio_id", ch.ID.String()).Msg("scheduled commission change failed")
			continue
		}
		sum.Ejecutados++
		log.Debug().Str("cambio_id", ch.ID.String()).Msg("scheduled commission change applied")
	}
	log.Info().Int("total", sum.TotalProcesados).Int("ejecutados", sum.Ejecutados).Int("errores", sum.Errores).Msg("scheduled commission changes executed")
	return sum, nil
}

func (s *Service) apply(ctx context.Context, ch domain.ScheduledCommissionChange, now time.Time) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target *gorm.DB
		if ch.TipoUnidadID != nil {
			target = tx.Model(&domain.UnitType{}).Where("id = ? AND edificio_id = ?", *ch.TipoUnidadID, ch.EdificioID)
		} else {
			target = tx.Model(&domain.Building{}).Where("id = ?", ch.EdificioID)
		}
		res := target.Update("comision_id", ch.ComisionID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("target of change %s no longer exists", ch.ID)
		}
		// Conditional on ejecutado=false so a concurrent run cannot apply it twice.
		res = tx.Model(&domain.ScheduledCommissionChange{}).
			Where("id = ? AND ejecutado = ?", ch.ID, false).
			Updates(map[string]interface{}{"ejecutado": true, "ejecutado_en": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("change %s already executed", ch.ID)
		}
		return nil
	})
}
