package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Client is owned by the broker that registered it.
type Client struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Nombre    string    `gorm:"column:nombre;not null" json:"nombre"`
	Rut       string    `gorm:"column:rut;index" json:"rut"`
	Email     string    `gorm:"column:email" json:"email"`
	Telefono  string    `gorm:"column:telefono" json:"telefono"`
	BrokerID  uuid.UUID `gorm:"column:broker_id;type:uuid;not null;index" json:"brokerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Client) TableName() string {
	return "clientes"
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Lead is a brokered sale/reservation. Related rows are referenced by id only and loaded
// explicitly by the services.
type Lead struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	BrokerID             uuid.UUID       `gorm:"column:broker_id;type:uuid;not null;index" json:"brokerId"`
	ClienteID            uuid.UUID       `gorm:"column:cliente_id;type:uuid;not null;index" json:"clienteId"`
	EdificioID           uuid.UUID       `gorm:"column:edificio_id;type:uuid;not null;index" json:"edificioId"`
	UnidadID             *uuid.UUID      `gorm:"column:unidad_id;type:uuid" json:"unidadId"`
	CodigoUnidad         *string         `gorm:"column:codigo_unidad" json:"codigoUnidad"`
	TipoUnidadEdificioID *uuid.UUID      `gorm:"column:tipo_unidad_edificio_id;type:uuid" json:"tipoUnidadEdificioId"`
	TotalLead            decimal.Decimal `gorm:"column:total_lead;type:decimal(18,2);not null" json:"totalLead"`
	MontoUf              decimal.Decimal `gorm:"column:monto_uf;type:decimal(18,4);not null;default:0" json:"montoUf"`
	Comision             decimal.Decimal `gorm:"column:comision;type:decimal(18,2);not null;default:0" json:"comision"`
	ComisionID           *uuid.UUID      `gorm:"column:comision_id;type:uuid;index" json:"comisionId"`
	ReglaComisionID      *uuid.UUID      `gorm:"column:regla_comision_id;type:uuid" json:"reglaComisionId"`
	Estado               string          `gorm:"column:estado;type:varchar(30);not null;default:'INGRESADO'" json:"estado"`
	Conciliado           bool            `gorm:"column:conciliado;not null;default:false" json:"conciliado"`
	FechaConciliacion    *time.Time      `gorm:"column:fecha_conciliacion" json:"fechaConciliacion"`
	FechaPagoReserva     *time.Time      `gorm:"column:fecha_pago_reserva;index" json:"fechaPagoReserva"`
	FechaPagoLead        *time.Time      `gorm:"column:fecha_pago_lead" json:"fechaPagoLead"`
	FechaCheckin         *time.Time      `gorm:"column:fecha_checkin" json:"fechaCheckin"`
	Observaciones        *string         `gorm:"column:observaciones" json:"observaciones"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

func (Lead) TableName() string {
	return "leads"
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// RecalculationRun records one execution of the period recalculation job.
type RecalculationRun struct {
	ID                uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Mes               int            `gorm:"column:mes;not null" json:"mes"`
	Anio              int            `gorm:"column:anio;not null" json:"anio"`
	LeadsEncontrados  int            `gorm:"column:leads_encontrados;not null" json:"leadsEncontrados"`
	LeadsActualizados int            `gorm:"column:leads_actualizados;not null" json:"leadsActualizados"`
	LeadsFallidos     int            `gorm:"column:leads_fallidos;not null" json:"leadsFallidos"`
	Resultados        datatypes.JSON `gorm:"column:resultados" json:"resultados"`
	CreatedAt         time.Time      `json:"createdAt"`
}

func (RecalculationRun) TableName() string {
	return "recalculation_runs"
}

func (r *RecalculationRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Models lists every table managed by AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&Commission{}, &CommissionRule{}, &ScheduledCommissionChange{},
		&Building{}, &UnitType{}, &Unit{}, &Client{}, &Lead{}, &RecalculationRun{},
	}
}
