package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"brokerage-backend/internal/application/commissions"
	"brokerage-backend/internal/commission"
	"brokerage-backend/internal/domain"
	"brokerage-backend/internal/infrastructure/locking"
	"brokerage-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB      *gorm.DB
	Counter LeadCounter
	// Locker serializes submissions per client; nil disables it.
	Locker *locking.Locker
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ResolveInput identifies what a lead sells and for whom.
type ResolveInput struct {
	BrokerID             uuid.UUID
	EdificioID           uuid.UUID
	UnidadID             *uuid.UUID
	TipoUnidadEdificioID *uuid.UUID
	TotalLead            decimal.Decimal
	// AsOf is the reservation-payment date; zero means now.
	AsOf          time.Time
	ExcludeLeadID *uuid.UUID
}

// Resolve computes the commission of a lead without writing anything.
// The broker's volume is counted on every call.
func (s *Service) Resolve(ctx context.Context, in ResolveInput) (commission.Result, error) {
	db := s.DB.WithContext(ctx)
	chain, err := loadChain(db, in.EdificioID, in.UnidadID, in.TipoUnidadEdificioID)
	if err != nil {
		return commission.Result{}, err
	}
	lc := commission.LeadContext{Chain: chain, Total: in.TotalLead}
	if src := commission.ResolveBase(chain); src.Kind != commission.SourceNone {
		rules, err := commissions.RulesFor(db, src.Commission.ID)
		if err != nil {
			return commission.Result{}, fmt.Errorf("failed to load commission rules: %w", err)
		}
		asOf := in.AsOf
		if asOf.IsZero() {
			asOf = s.now()
		}
		count, err := s.Counter.CountQualifying(ctx, in.BrokerID, src.Commission.ID, asOf, in.ExcludeLeadID)
		if err != nil {
			return commission.Result{}, fmt.Errorf("failed to count broker leads: %w", err)
		}
		lc.Rules = rules
		lc.Count = count
	}
	return commission.Resolve(lc)
}

// loadChain loads the building and, when given, the unit or manually chosen unit type,
// each with its commission. Both must belong to the building.
func loadChain(db *gorm.DB, buildingID uuid.UUID, unitID, unitTypeID *uuid.UUID) (commission.Chain, error) {
	var chain commission.Chain
	var b domain.Building
	if err := db.Preload("Comision").First(&b, "id = ?", buildingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chain, ErrBuildingNotFound
		}
		return chain, err
	}
	chain.Building = &b

	if unitID != nil {
		var u domain.Unit
		err := db.Preload("TipoUnidadEdificio.Comision").First(&u, "id = ? AND edificio_id = ?", *unitID, buildingID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return chain, ErrUnitNotFound
			}
			return chain, err
		}
		chain.Unit = &u
		return chain, nil
	}
	if unitTypeID != nil {
		var ut domain.UnitType
		err := db.Preload("Comision").First(&ut, "id = ? AND edificio_id = ?", *unitTypeID, buildingID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return chain, ErrUnitTypeNotFound
			}
			return chain, err
		}
		chain.UnitType = &ut
	}
	return chain, nil
}

// CreateInput is a broker lead submission.
type CreateInput struct {
	BrokerID             uuid.UUID
	ClienteID            uuid.UUID
	EdificioID           uuid.UUID
	UnidadID             *uuid.UUID
	CodigoUnidad         *string
	TipoUnidadEdificioID *uuid.UUID
	TotalLead            decimal.Decimal
	MontoUf              decimal.Decimal
	Estado               string
	FechaPagoReserva     *time.Time
	FechaPagoLead        *time.Time
	FechaCheckin         *time.Time
	Observaciones        *string
}

func (in *CreateInput) validate() error {
	if in.BrokerID == uuid.Nil || in.ClienteID == uuid.Nil || in.EdificioID == uuid.Nil {
		return fmt.Errorf("%w: clienteId and edificioId are required", ErrInvalid)
	}
	if !in.TotalLead.IsPositive() {
		return fmt.Errorf("%w: totalLead must be greater than 0", ErrInvalid)
	}
	if in.MontoUf.IsNegative() {
		return fmt.Errorf("%w: montoUf must not be negative", ErrInvalid)
	}
	if in.CodigoUnidad != nil {
		code := strings.TrimSpace(*in.CodigoUnidad)
		if code == "" {
			in.CodigoUnidad = nil
		} else {
			in.CodigoUnidad = &code
		}
	}
	if in.UnidadID != nil && in.CodigoUnidad != nil {
		return fmt.Errorf("%w: unidadId and codigoUnidad are mutually exclusive", ErrInvalid)
	}
	if in.CodigoUnidad != nil && in.TipoUnidadEdificioID == nil {
		return fmt.Errorf("%w: codigoUnidad requires tipoUnidadEdificioId", ErrInvalid)
	}
	if in.Estado == "" {
		in.Estado = constants.LeadIngresado
	}
	if !constants.IsValidLeadState(in.Estado) {
		return fmt.Errorf("%w: estado must be one of %s", ErrInvalid, strings.Join(constants.LeadStates, ", "))
	}
	return nil
}

// Create resolves the commission server-side and stores the lead. A client may hold
// only one non-terminal lead; the partial unique index on leads(cliente_id) backs the
// transactional check when two submissions race.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Lead, *commission.Result, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	lock, err := s.Locker.Acquire(ctx, "lead:cliente:"+in.ClienteID.String())
	if err != nil {
		if errors.Is(err, locking.ErrHeld) {
			return nil, nil, ErrSubmissionInProgress
		}
		return nil, nil, fmt.Errorf("failed to acquire submission lock: %w", err)
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			log.Warn().Err(err).Str("cliente_id", in.ClienteID.String()).Msg("failed to release lead submission lock")
		}
	}()

	unitTypeID := in.TipoUnidadEdificioID
	if in.UnidadID != nil {
		unitTypeID = nil
	}
	var asOf time.Time
	if in.FechaPagoReserva != nil {
		asOf = *in.FechaPagoReserva
	}
	res, err := s.Resolve(ctx, ResolveInput{
		BrokerID:             in.BrokerID,
		EdificioID:           in.EdificioID,
		UnidadID:             in.UnidadID,
		TipoUnidadEdificioID: unitTypeID,
		TotalLead:            in.TotalLead,
		AsOf:                 asOf,
	})
	if err != nil {
		return nil, nil, err
	}

	lead := &domain.Lead{
		BrokerID:             in.BrokerID,
		ClienteID:            in.ClienteID,
		EdificioID:           in.EdificioID,
		UnidadID:             in.UnidadID,
		CodigoUnidad:         in.CodigoUnidad,
		TipoUnidadEdificioID: unitTypeID,
		TotalLead:            in.TotalLead,
		MontoUf:              in.MontoUf,
		Comision:             res.Amount,
		ComisionID:           res.CommissionID(),
		ReglaComisionID:      res.RuleID(),
		Estado:               in.Estado,
		FechaPagoReserva:     in.FechaPagoReserva,
		FechaPagoLead:        in.FechaPagoLead,
		FechaCheckin:         in.FechaCheckin,
		Observaciones:        in.Observaciones,
	}

	insertFailed := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client domain.Client
		if err := tx.First(&client, "id = ?", in.ClienteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return err
		}
		if client.BrokerID != in.BrokerID {
			return ErrClientOtherBroker
		}
		if !constants.IsTerminalLeadState(lead.Estado) {
			active, err := findActiveLead(tx, in.ClienteID, nil)
			if err != nil {
				return err
			}
			if active != nil {
				return active
			}
		}
		if in.UnidadID != nil {
			var unit domain.Unit
			if err := tx.Select("id", "tipo_unidad_edificio_id").First(&unit, "id = ?", *in.UnidadID).Error; err != nil {
				return err
			}
			lead.TipoUnidadEdificioID = &unit.TipoUnidadEdificioID
			upd := tx.Model(&domain.Unit{}).
				Where("id = ? AND estado = ?", *in.UnidadID, constants.UnitDisponible).
				Update("estado", constants.UnitReservada)
			if upd.Error != nil {
				return upd.Error
			}
			if upd.RowsAffected == 0 {
				return ErrUnitUnavailable
			}
		}
		if err := tx.Create(lead).Error; err != nil {
			insertFailed = true
			return err
		}
		return nil
	})
	if err != nil {
		if insertFailed && !constants.IsTerminalLeadState(lead.Estado) {
			if active, findErr := findActiveLead(s.DB.WithContext(ctx), in.ClienteID, nil); findErr == nil && active != nil {
				return nil, nil, active
			}
		}
		return nil, nil, err
	}

	log.Info().
		Str("lead_id", lead.ID.String()).
		Str("broker_id", lead.BrokerID.String()).
		Str("source", res.Source.String()).
		Str("comision", res.Amount.String()).
		Msg("lead created")
	return lead, &res, nil
}

// findActiveLead returns the client's non-terminal lead as an *ActiveLeadError, or nil.
func findActiveLead(db *gorm.DB, clientID uuid.UUID, exclude *uuid.UUID) (*ActiveLeadError, error) {
	var existing domain.Lead
	q := db.Where("cliente_id = ? AND estado NOT IN ?", clientID, constants.TerminalLeadStates)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	err := q.Order("created_at ASC").First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var b domain.Building
	if err := db.Select("id", "nombre").First(&b, "id = ?", existing.EdificioID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &ActiveLeadError{
		LeadID:         existing.ID,
		CreatedAt:      existing.CreatedAt,
		Estado:         existing.Estado,
		EdificioID:     existing.EdificioID,
		EdificioNombre: b.Nombre,
	}, nil
}
