package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Commission is a named percentage payout definition referenced by buildings, unit types and rules.
type Commission struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Nombre     string          `gorm:"column:nombre;not null;uniqueIndex" json:"nombre"`
	Codigo     string          `gorm:"column:codigo;not null;uniqueIndex" json:"codigo"`
	Porcentaje decimal.Decimal `gorm:"column:porcentaje;type:decimal(10,4);not null" json:"porcentaje"`
	Activa     bool            `gorm:"column:activa;not null" json:"activa"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (Commission) TableName() string {
	return "comisiones"
}

func (c *Commission) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CommissionRule is a volume tier of one Commission. CantidadMaxima nil means unbounded.
type CommissionRule struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ComisionID     uuid.UUID       `gorm:"column:comision_id;type:uuid;not null;index" json:"comisionId"`
	CantidadMinima int             `gorm:"column:cantidad_minima;not null" json:"cantidadMinima"`
	CantidadMaxima *int            `gorm:"column:cantidad_maxima" json:"cantidadMaxima"`
	Porcentaje     decimal.Decimal `gorm:"column:porcentaje;type:decimal(10,4);not null" json:"porcentaje"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (CommissionRule) TableName() string {
	return "reglas_comision"
}

func (r *CommissionRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Contains reports whether count falls inside the inclusive [min, max] range of the rule.
func (r CommissionRule) Contains(count int) bool {
	if count < r.CantidadMinima {
		return false
	}
	return r.CantidadMaxima == nil || count <= *r.CantidadMaxima
}

// ScheduledCommissionChange reassigns the commission of a building (or one of its unit types)
// once FechaCambio is reached and the pending changes are executed.
type ScheduledCommissionChange struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FechaCambio  time.Time  `gorm:"column:fecha_cambio;not null;index" json:"fechaCambio"`
	ComisionID   uuid.UUID  `gorm:"column:comision_id;type:uuid;not null" json:"comisionId"`
	EdificioID   uuid.UUID  `gorm:"column:edificio_id;type:uuid;not null" json:"edificioId"`
	TipoUnidadID *uuid.UUID `gorm:"column:tipo_unidad_id;type:uuid" json:"tipoUnidadId"`
	Ejecutado    bool       `gorm:"column:ejecutado;not null;default:false;index" json:"ejecutado"`
	EjecutadoEn  *time.Time `gorm:"column:ejecutado_en" json:"ejecutadoEn"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Comision *Commission `gorm:"foreignKey:ComisionID" json:"comision,omitempty"`
}

func (ScheduledCommissionChange) TableName() string {
	return "cambios_comision_programados"
}

func (s *ScheduledCommissionChange) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
