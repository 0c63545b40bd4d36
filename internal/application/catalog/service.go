package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"brokerage-backend/internal/domain"
	"brokerage-backend/internal/pkg/constants"
	"brokerage-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalid            = errors.New("invalid catalog data")
	ErrBuildingNotFound   = errors.New("building not found")
	ErrUnitTypeNotFound   = errors.New("unit type not found")
	ErrUnitNotFound       = errors.New("unit not found")
	ErrCommissionNotFound = errors.New("commission not found")
	ErrClientNotFound     = errors.New("client not found")
)

type Service struct {
	DB *gorm.DB
}

type BuildingInput struct {
	Nombre     string
	Direccion  string
	ComisionID *uuid.UUID
}

func (s *Service) CreateBuilding(ctx context.Context, in BuildingInput) (*domain.Building, error) {
	if strings.TrimSpace(in.Nombre) == "" {
		return nil, fmt.Errorf("%w: nombre is required", ErrInvalid)
	}
	b := &domain.Building{Nombre: strings.TrimSpace(in.Nombre), Direccion: in.Direccion, ComisionID: in.ComisionID}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := commissionExists(tx, in.ComisionID); err != nil {
			return err
		}
		return tx.Create(b).Error
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBuilding loads a building with its commission, unit types (and their commissions) and units.
func (s *Service) GetBuilding(ctx context.Context, id uuid.UUID) (*domain.Building, error) {
	var b domain.Building
	err := s.DB.WithContext(ctx).
		Preload("Comision").
		Preload("TiposUnidad", func(db *gorm.DB) *gorm.DB { return db.Order("nombre ASC") }).
		Preload("TiposUnidad.Comision").
		Preload("Unidades", func(db *gorm.DB) *gorm.DB { return db.Order("numero ASC") }).
		First(&b, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuildingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *Service) ListBuildings(ctx context.Context) ([]domain.Building, error) {
	var out []domain.Building
	if err := s.DB.WithContext(ctx).Preload("Comision").Order("nombre ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch buildings: %w", err)
	}
	return out, nil
}

// AssignBuildingCommission sets (or clears, with nil) the project-level commission.
func (s *Service) AssignBuildingCommission(ctx context.Context, buildingID uuid.UUID, commissionID *uuid.UUID) (*domain.Building, error) {
	var b domain.Building
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, "id = ?", buildingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBuildingNotFound
			}
			return err
		}
		if err := commissionExists(tx, commissionID); err != nil {
			return err
		}
		b.ComisionID = commissionID
		return tx.Model(&b).Update("comision_id", commissionID).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

type UnitTypeInput struct {
	Nombre     string
	Codigo     string
	ComisionID *uuid.UUID
}

func (s *Service) CreateUnitType(ctx context.Context, buildingID uuid.UUID, in UnitTypeInput) (*domain.UnitType, error) {
	if strings.TrimSpace(in.Nombre) == "" || strings.TrimSpace(in.Codigo) == "" {
		return nil, fmt.Errorf("%w: nombre and codigo are required", ErrInvalid)
	}
	ut := &domain.UnitType{
		EdificioID: buildingID,
		Nombre:     strings.TrimSpace(in.Nombre),
		Codigo:     strings.TrimSpace(in.Codigo),
		ComisionID: in.ComisionID,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := buildingExists(tx, buildingID); err != nil {
			return err
		}
		if err := commissionExists(tx, in.ComisionID); err != nil {
			return err
		}
		return tx.Create(ut).Error
	})
	if err != nil {
		return nil, err
	}
	return ut, nil
}

// AssignUnitTypeCommission sets (or clears) the commission of a unit type, which every unit of that type inherits.
func (s *Service) AssignUnitTypeCommission(ctx context.Context, unitTypeID uuid.UUID, commissionID *uuid.UUID) (*domain.UnitType, error) {
	var ut domain.UnitType
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ut, "id = ?", unitTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnitTypeNotFound
			}
			return err
		}
		if err := commissionExists(tx, commissionID); err != nil {
			return err
		}
		ut.ComisionID = commissionID
		return tx.Model(&ut).Update("comision_id", commissionID).Error
	})
	if err != nil {
		return nil, err
	}
	return &ut, nil
}

type UnitInput struct {
	TipoUnidadEdificioID uuid.UUID
	Numero               string
}

func (s *Service) CreateUnit(ctx context.Context, buildingID uuid.UUID, in UnitInput) (*domain.Unit, error) {
	if strings.TrimSpace(in.Numero) == "" || in.TipoUnidadEdificioID == uuid.Nil {
		return nil, fmt.Errorf("%w: numero and tipoUnidadEdificioId are required", ErrInvalid)
	}
	u := &domain.Unit{
		EdificioID:           buildingID,
		TipoUnidadEdificioID: in.TipoUnidadEdificioID,
		Numero:               strings.TrimSpace(in.Numero),
		Estado:               constants.UnitDisponible,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := buildingExists(tx, buildingID); err != nil {
			return err
		}
		var ut domain.UnitType
		if err := tx.First(&ut, "id = ?", in.TipoUnidadEdificioID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnitTypeNotFound
			}
			return err
		}
		if ut.EdificioID != buildingID {
			return fmt.Errorf("%w: unit type does not belong to the building", ErrInvalid)
		}
		return tx.Create(u).Error
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUnitState moves a unit to any valid state.
func (s *Service) UpdateUnitState(ctx context.Context, unitID uuid.UUID, estado string) (*domain.Unit, error) {
	if !constants.IsValidUnitState(estado) {
		return nil, fmt.Errorf("%w: estado must be one of %s", ErrInvalid, strings.Join(constants.UnitStates, ", "))
	}
	var u domain.Unit
	db := s.DB.WithContext(ctx)
	if err := db.First(&u, "id = ?", unitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	if err := db.Model(&u).Update("estado", estado).Error; err != nil {
		return nil, err
	}
	u.Estado = estado
	return &u, nil
}

type ClientInput struct {
	Nombre   string
	Rut      string
	Email    string
	Telefono string
}

// CreateClient registers a client owned by brokerID.
func (s *Service) CreateClient(ctx context.Context, brokerID uuid.UUID, in ClientInput) (*domain.Client, error) {
	if strings.TrimSpace(in.Nombre) == "" {
		return nil, fmt.Errorf("%w: nombre is required", ErrInvalid)
	}
	if in.Email != "" && !validation.IsValidEmail(in.Email) {
		return nil, fmt.Errorf("%w: email is invalid", ErrInvalid)
	}
	if in.Rut != "" && !validation.IsValidRut(in.Rut) {
		return nil, fmt.Errorf("%w: rut is invalid", ErrInvalid)
	}
	c := &domain.Client{
		Nombre:   strings.TrimSpace(in.Nombre),
		Rut:      strings.TrimSpace(in.Rut),
		Email:    strings.TrimSpace(in.Email),
		Telefono: strings.TrimSpace(in.Telefono),
		BrokerID: brokerID,
	}
	if err := s.DB.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

func (s *Service) ListClients(ctx context.Context, brokerID uuid.UUID) ([]domain.Client, error) {
	var out []domain.Client
	if err := s.DB.WithContext(ctx).Where("broker_id = ?", brokerID).Order("nombre ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}
	return out, nil
}

func buildingExists(tx *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := tx.Model(&domain.Building{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrBuildingNotFound
	}
	return nil
}

func commissionExists(tx *gorm.DB, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&domain.Commission{}).Where("id = ?", *id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrCommissionNotFound
	}
	return nil
}
