package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Building ("edificio") is a project. ComisionID is the project-level default commission.
type Building struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Nombre     string     `gorm:"column:nombre;not null" json:"nombre"`
	Direccion  string     `gorm:"column:direccion" json:"direccion"`
	ComisionID *uuid.UUID `gorm:"column:comision_id;type:uuid" json:"comisionId"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	Comision    *Commission `gorm:"foreignKey:ComisionID" json:"comision,omitempty"`
	TiposUnidad []UnitType  `gorm:"foreignKey:EdificioID" json:"tiposUnidad,omitempty"`
	Unidades    []Unit      `gorm:"foreignKey:EdificioID" json:"unidades,omitempty"`
}

func (Building) TableName() string {
	return "edificios"
}

func (b *Building) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UnitType ("tipo de unidad") belongs to one building and may override its commission.
type UnitType struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	EdificioID uuid.UUID  `gorm:"column:edificio_id;type:uuid;not null;index" json:"edificioId"`
	Nombre     string     `gorm:"column:nombre;not null" json:"nombre"`
	Codigo     string     `gorm:"column:codigo" json:"codigo"`
	ComisionID *uuid.UUID `gorm:"column:comision_id;type:uuid" json:"comisionId"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	Comision *Commission `gorm:"foreignKey:ComisionID" json:"comision,omitempty"`
}

func (UnitType) TableName() string {
	return "tipos_unidad_edificio"
}

func (u *UnitType) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Unit ("unidad") carries no commission of its own; it inherits from its unit type.
type Unit struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	EdificioID           uuid.UUID `gorm:"column:edificio_id;type:uuid;not null;index" json:"edificioId"`
	TipoUnidadEdificioID uuid.UUID `gorm:"column:tipo_unidad_edificio_id;type:uuid;not null" json:"tipoUnidadEdificioId"`
	Numero               string    `gorm:"column:numero;not null" json:"numero"`
	Estado               string    `gorm:"column:estado;type:varchar(20);not null;default:'DISPONIBLE'" json:"estado"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`

	TipoUnidadEdificio *UnitType `gorm:"foreignKey:TipoUnidadEdificioID" json:"tipoUnidadEdificio,omitempty"`
}

func (Unit) TableName() string {
	return "unidades"
}

func (u *Unit) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
