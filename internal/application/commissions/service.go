package commissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"brokerage-backend/internal/commission"
	"brokerage-backend/internal/domain"
	"brokerage-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalid      = errors.New("invalid commission data")
	ErrNotFound     = errors.New("commission not found")
	ErrDuplicate    = errors.New("a commission with that nombre or codigo already exists")
	ErrRuleNotFound = errors.New("commission rule not found")
	ErrRuleOverlap  = errors.New("rule range overlaps an existing rule of the same commission")
)

type Service struct {
	DB *gorm.DB
}

// CommissionInput is used for create (all fields required) and update (nil/empty means unchanged).
type CommissionInput struct {
	Nombre     string
	Codigo     string
	Porcentaje *decimal.Decimal
	Activa     *bool
}

func (s *Service) Create(ctx context.Context, in CommissionInput) (*domain.Commission, error) {
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.Codigo = strings.TrimSpace(in.Codigo)
	if in.Nombre == "" || in.Codigo == "" || in.Porcentaje == nil {
		return nil, fmt.Errorf("%w: nombre, codigo and porcentaje are required", ErrInvalid)
	}
	if !validation.IsRate(*in.Porcentaje) {
		return nil, fmt.Errorf("%w: porcentaje must be between 0 and 1", ErrInvalid)
	}
	c := &domain.Commission{
		Nombre:     in.Nombre,
		Codigo:     in.Codigo,
		Porcentaje: *in.Porcentaje,
		Activa:     true,
	}
	if in.Activa != nil {
		c.Activa = *in.Activa
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, uuid.Nil, c.Nombre, c.Codigo); err != nil {
			return err
		}
		return tx.Create(c).Error
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("comision_id", c.ID.String()).Str("codigo", c.Codigo).Msg("commission created")
	return c, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in CommissionInput) (*domain.Commission, error) {
	if in.Porcentaje != nil && !validation.IsRate(*in.Porcentaje) {
		return nil, fmt.Errorf("%w: porcentaje must be between 0 and 1", ErrInvalid)
	}
	var c domain.Commission
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if n := strings.TrimSpace(in.Nombre); n != "" {
			c.Nombre = n
		}
		if cd := strings.TrimSpace(in.Codigo); cd != "" {
			c.Codigo = cd
		}
		if in.Porcentaje != nil {
			c.Porcentaje = *in.Porcentaje
		}
		if in.Activa != nil {
			c.Activa = *in.Activa
		}
		if err := checkUnique(tx, c.ID, c.Nombre, c.Codigo); err != nil {
			return err
		}
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Commission, error) {
	var c domain.Commission
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Service) List(ctx context.Context, onlyActive bool) ([]domain.Commission, error) {
	var out []domain.Commission
	q := s.DB.WithContext(ctx).Order("nombre ASC")
	if onlyActive {
		q = q.Where("activa = ?", true)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch commissions: %w", err)
	}
	return out, nil
}

func checkUnique(tx *gorm.DB, self uuid.UUID, nombre, codigo string) error {
	var n int64
	q := tx.Model(&domain.Commission{}).Where("(nombre = ? OR codigo = ?)", nombre, codigo)
	if self != uuid.Nil {
		q = q.Where("id <> ?", self)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicate
	}
	return nil
}

// RuleInput describes a full rule. CantidadMaxima nil means unbounded.
type RuleInput struct {
	ComisionID     uuid.UUID
	CantidadMinima *int
	CantidadMaxima *int
	Porcentaje     *decimal.Decimal
}

func (in RuleInput) validate() error {
	if in.ComisionID == uuid.Nil || in.CantidadMinima == nil || in.Porcentaje == nil {
		return fmt.Errorf("%w: comisionId, cantidadMinima and porcentaje are required", ErrInvalid)
	}
	if *in.CantidadMinima < 0 {
		return fmt.Errorf("%w: cantidadMinima must be >= 0", ErrInvalid)
	}
	if in.CantidadMaxima != nil && *in.CantidadMaxima <= *in.CantidadMinima {
		return fmt.Errorf("%w: cantidadMaxima must be greater than cantidadMinima", ErrInvalid)
	}
	if !validation.IsRate(*in.Porcentaje) {
		return fmt.Errorf("%w: porcentaje must be between 0 and 1", ErrInvalid)
	}
	return nil
}

func (s *Service) CreateRule(ctx context.Context, in RuleInput) (*domain.CommissionRule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	r := &domain.CommissionRule{
		ComisionID:     in.ComisionID,
		CantidadMinima: *in.CantidadMinima,
		CantidadMaxima: in.CantidadMaxima,
		Porcentaje:     *in.Porcentaje,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkRule(tx, r); err != nil {
			return err
		}
		return tx.Create(r).Error
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("regla_id", r.ID.String()).Str("comision_id", r.ComisionID.String()).Msg("commission rule created")
	return r, nil
}

// UpdateRule replaces every field of the rule; a zero ComisionID keeps the current commission.
func (s *Service) UpdateRule(ctx context.Context, id uuid.UUID, in RuleInput) (*domain.CommissionRule, error) {
	var r domain.CommissionRule
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&r, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRuleNotFound
			}
			return err
		}
		if in.ComisionID == uuid.Nil {
			in.ComisionID = r.ComisionID
		}
		if err := in.validate(); err != nil {
			return err
		}
		r.ComisionID = in.ComisionID
		r.CantidadMinima = *in.CantidadMinima
		r.CantidadMaxima = in.CantidadMaxima
		r.Porcentaje = *in.Porcentaje
		if err := s.checkRule(tx, &r); err != nil {
			return err
		}
		return tx.Save(&r).Error
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Delete(&domain.CommissionRule{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (s *Service) GetRule(ctx context.Context, id uuid.UUID) (*domain.CommissionRule, error) {
	var r domain.CommissionRule
	if err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return &r, nil
}

// ListRules lists rules, optionally for one commission, ordered by cantidadMinima.
func (s *Service) ListRules(ctx context.Context, commissionID *uuid.UUID) ([]domain.CommissionRule, error) {
	var out []domain.CommissionRule
	q := s.DB.WithContext(ctx).Order("comision_id ASC").Order("cantidad_minima ASC")
	if commissionID != nil {
		q = q.Where("comision_id = ?", *commissionID)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch commission rules: %w", err)
	}
	return out, nil
}

// RulesFor loads all rules of one commission in a single query.
func RulesFor(db *gorm.DB, commissionID uuid.UUID) ([]domain.CommissionRule, error) {
	var out []domain.CommissionRule
	err := db.Where("comision_id = ?", commissionID).Order("cantidad_minima ASC").Find(&out).Error
	return out, err
}

// checkRule verifies the commission exists and r does not overlap a sibling rule.
// Must run inside the transaction that writes r.
func (s *Service) checkRule(tx *gorm.DB, r *domain.CommissionRule) error {
	var n int64
	if err := tx.Model(&domain.Commission{}).Where("id = ?", r.ComisionID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	siblings, err := RulesFor(tx, r.ComisionID)
	if err != nil {
		return err
	}
	for _, o := range siblings {
		if o.ID == r.ID {
			continue
		}
		if commission.RangesOverlap(r.CantidadMinima, r.CantidadMaxima, o.CantidadMinima, o.CantidadMaxima) {
			return fmt.Errorf("%w: [%s] conflicts with [%s]", ErrRuleOverlap, rangeString(r.CantidadMinima, r.CantidadMaxima), rangeString(o.CantidadMinima, o.CantidadMaxima))
		}
	}
	return nil
}

func rangeString(min int, max *int) string {
	if max == nil {
		return fmt.Sprintf("%d, ∞", min)
	}
	return fmt.Sprintf("%d, %d", min, *max)
}
