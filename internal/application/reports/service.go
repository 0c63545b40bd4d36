package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"brokerage-backend/internal/domain"
	"brokerage-backend/internal/pkg/constants"
	"brokerage-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidPeriod = errors.New("mes must be between 1 and 12 and año between 2000 and 2100")
	ErrInvalidFilter = errors.New("conciliado must be one of todos, si, no")
)

// Conciliation filters of the commission summary.
const (
	ConciliadoTodos = "todos"
	ConciliadoSi    = "si"
	ConciliadoNo    = "no"
)

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

type Service struct {
	DB *gorm.DB
	// Now defaults to time.Now; it picks the period when none is given.
	Now func() time.Time
}

type period struct {
	mes, anio    int
	desde, hasta time.Time
}

// period resolves mes/anio, both zero meaning the current month, into a half-open UTC range.
func (s *Service) period(mes, anio int) (period, error) {
	if mes == 0 && anio == 0 {
		now := time.Now()
		if s.Now != nil {
			now = s.Now()
		}
		mes, anio = int(now.Month()), now.Year()
	}
	if !validation.IsValidPeriod(mes, anio) {
		return period{}, ErrInvalidPeriod
	}
	desde, hasta := validation.MonthRange(anio, time.Month(mes), time.UTC)
	return period{mes: mes, anio: anio, desde: desde, hasta: hasta}, nil
}

// SummaryFilter selects the leads of the commission summary.
type SummaryFilter struct {
	Mes        int
	Anio       int
	Conciliado string
	BrokerID   *uuid.UUID
}

type SummaryLead struct {
	ID                uuid.UUID       `json:"id"`
	CodigoUnidad      string          `json:"codigoUnidad"`
	TotalLead         decimal.Decimal `json:"totalLead"`
	MontoUf           decimal.Decimal `json:"montoUf"`
	Comision          decimal.Decimal `json:"comision"`
	Estado            string          `json:"estado"`
	Conciliado        bool            `json:"conciliado"`
	FechaPagoReserva  *time.Time      `json:"fechaPagoReserva"`
	FechaConciliacion *time.Time      `json:"fechaConciliacion"`
	FechaCheckin      *time.Time      `json:"fechaCheckin"`
	// Valido marks a delivered lead with a check-in; only those are payable.
	Valido         bool      `json:"isValid"`
	ClienteID      uuid.UUID `json:"clienteId"`
	ClienteNombre  string    `json:"clienteNombre"`
	ClienteRut     string    `json:"clienteRut"`
	EdificioID     uuid.UUID `json:"edificioId"`
	EdificioNombre string    `json:"edificioNombre"`
	TipoUnidad     string    `json:"tipoUnidad"`
}

// Totals aggregates a set of leads. Conciliado and pendiente split the full commission.
type Totals struct {
	TotalLeads          int             `json:"totalLeads"`
	TotalMontoBruto     decimal.Decimal `json:"totalMontoBruto"`
	TotalComision       decimal.Decimal `json:"totalComision"`
	TotalComisionValida decimal.Decimal `json:"totalComisionValida"`
	TotalConciliado     decimal.Decimal `json:"totalConciliado"`
	TotalPendiente      decimal.Decimal `json:"totalPendiente"`
	LeadsConciliados    int             `json:"leadsConciliados"`
	LeadsPendientes     int             `json:"leadsPendientes"`
	LeadsValidos        int             `json:"leadsValidos"`
	Checkin             int             `json:"checkin"`
}

func (t *Totals) add(l SummaryLead) {
	t.TotalLeads++
	t.TotalMontoBruto = t.TotalMontoBruto.Add(l.TotalLead)
	t.TotalComision = t.TotalComision.Add(l.Comision)
	if l.Valido {
		t.TotalComisionValida = t.TotalComisionValida.Add(l.Comision)
		t.LeadsValidos++
	}
	if l.FechaCheckin != nil {
		t.Checkin++
	}
	if l.Conciliado {
		t.TotalConciliado = t.TotalConciliado.Add(l.Comision)
		t.LeadsConciliados++
	} else {
		t.TotalPendiente = t.TotalPendiente.Add(l.Comision)
		t.LeadsPendientes++
	}
}

type BrokerSummary struct {
	BrokerID uuid.UUID `json:"brokerId"`
	Totals
	Leads []SummaryLead `json:"leads"`
}

type CommissionSummary struct {
	Mes              int             `json:"mes"`
	Anio             int             `json:"anio"`
	MesNombre        string          `json:"mesNombre"`
	ConciliadoFilter string          `json:"conciliadoFilter"`
	BrokerIDFilter   *uuid.UUID      `json:"brokerIdFilter"`
	Brokers          []BrokerSummary `json:"brokers"`
	TotalBrokers     int             `json:"totalBrokers"`
	Totales          Totals          `json:"totales"`
}

// CommissionSummary groups, per broker, the non-rejected leads checked in during the month.
// Brokers are ordered by total commission, highest first.
func (s *Service) CommissionSummary(ctx context.Context, f SummaryFilter) (*CommissionSummary, error) {
	p, err := s.period(f.Mes, f.Anio)
	if err != nil {
		return nil, err
	}
	if f.Conciliado == "" {
		f.Conciliado = ConciliadoTodos
	}

	db := s.DB.WithContext(ctx)
	q := db.Where("fecha_checkin >= ? AND fecha_checkin < ?", p.desde, p.hasta).
		Where("estado <> ?", constants.LeadRechazado)
	switch f.Conciliado {
	case ConciliadoTodos:
	case ConciliadoSi:
		q = q.Where("conciliado = ?", true)
	case ConciliadoNo:
		q = q.Where("conciliado = ?", false)
	default:
		return nil, ErrInvalidFilter
	}
	if f.BrokerID != nil {
		q = q.Where("broker_id = ?", *f.BrokerID)
	}
	var rows []domain.Lead
	if err := q.Order("fecha_pago_reserva DESC").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	lk, err := loadLookups(db, rows)
	if err != nil {
		return nil, err
	}

	out := &CommissionSummary{
		Mes:              p.mes,
		Anio:             p.anio,
		MesNombre:        monthNames[p.mes-1],
		ConciliadoFilter: f.Conciliado,
		BrokerIDFilter:   f.BrokerID,
		Brokers:          []BrokerSummary{},
	}
	byBroker := map[uuid.UUID]*BrokerSummary{}
	for _, l := range rows {
		line := lk.summaryLead(l)
		b, ok := byBroker[l.BrokerID]
		if !ok {
			b = &BrokerSummary{BrokerID: l.BrokerID, Leads: []SummaryLead{}}
			byBroker[l.BrokerID] = b
		}
		b.add(line)
		b.Leads = append(b.Leads, line)
		out.Totales.add(line)
	}
	for _, b := range byBroker {
		out.Brokers = append(out.Brokers, *b)
	}
	sort.Slice(out.Brokers, func(i, j int) bool {
		a, b := out.Brokers[i], out.Brokers[j]
		if c := a.TotalComision.Cmp(b.TotalComision); c != 0 {
			return c > 0
		}
		return a.BrokerID.String() < b.BrokerID.String()
	})
	out.TotalBrokers = len(out.Brokers)
	return out, nil
}

// MonthlyCommission is one line of a broker's own monthly report.
type MonthlyCommission struct {
	LeadID         uuid.UUID       `json:"leadId"`
	ClienteNombre  string          `json:"clienteNombre"`
	EdificioNombre string          `json:"edificioNombre"`
	UnidadCodigo   string          `json:"unidadCodigo"`
	MontoComision  decimal.Decimal `json:"montoComision"`
	// PorcentajeComision is the effective rate of the lead, as a percentage.
	PorcentajeComision decimal.Decimal `json:"porcentajeComision"`
	FechaLead          time.Time       `json:"fechaLead"`
	EstadoLead         string          `json:"estadoLead"`
	Conciliado         bool            `json:"conciliado"`
}

var hundred = decimal.NewFromInt(100)

// BrokerMonthly lists the broker's leads created during the month, newest first.
func (s *Service) BrokerMonthly(ctx context.Context, brokerID uuid.UUID, mes, anio int) ([]MonthlyCommission, error) {
	p, err := s.period(mes, anio)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	var rows []domain.Lead
	err = db.Where("broker_id = ? AND created_at >= ? AND created_at < ?", brokerID, p.desde, p.hasta).
		Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	lk, err := loadLookups(db, rows)
	if err != nil {
		return nil, err
	}

	out := make([]MonthlyCommission, 0, len(rows))
	for _, l := range rows {
		pct := decimal.Zero
		if l.TotalLead.IsPositive() {
			pct = l.Comision.Div(l.TotalLead).Mul(hundred).Round(2)
		}
		out = append(out, MonthlyCommission{
			LeadID:             l.ID,
			ClienteNombre:      lk.clients[l.ClienteID].Nombre,
			EdificioNombre:     lk.buildings[l.EdificioID].Nombre,
			UnidadCodigo:       lk.unitCode(l),
			MontoComision:      l.Comision,
			PorcentajeComision: pct,
			FechaLead:          l.CreatedAt,
			EstadoLead:         l.Estado,
			Conciliado:         l.Conciliado,
		})
	}
	return out, nil
}

// lookups holds the rows referenced by a page of leads, fetched with one query per table.
type lookups struct {
	clients   map[uuid.UUID]domain.Client
	buildings map[uuid.UUID]domain.Building
	unitTypes map[uuid.UUID]domain.UnitType
	units     map[uuid.UUID]domain.Unit
}

func loadLookups(db *gorm.DB, rows []domain.Lead) (*lookups, error) {
	lk := &lookups{
		clients:   map[uuid.UUID]domain.Client{},
		buildings: map[uuid.UUID]domain.Building{},
		unitTypes: map[uuid.UUID]domain.UnitType{},
		units:     map[uuid.UUID]domain.Unit{},
	}
	var clientIDs, buildingIDs, unitTypeIDs, unitIDs []uuid.UUID
	for _, l := range rows {
		clientIDs = append(clientIDs, l.ClienteID)
		buildingIDs = append(buildingIDs, l.EdificioID)
		if l.TipoUnidadEdificioID != nil {
			unitTypeIDs = append(unitTypeIDs, *l.TipoUnidadEdificioID)
		}
		if l.UnidadID != nil {
			unitIDs = append(unitIDs, *l.UnidadID)
		}
	}

	if len(clientIDs) > 0 {
		var cs []domain.Client
		if err := db.Where("id IN ?", clientIDs).Find(&cs).Error; err != nil {
			return nil, fmt.Errorf("failed to load clients: %w", err)
		}
		for _, c := range cs {
			lk.clients[c.ID] = c
		}
	}
	if len(buildingIDs) > 0 {
		var bs []domain.Building
		if err := db.Where("id IN ?", buildingIDs).Find(&bs).Error; err != nil {
			return nil, fmt.Errorf("failed to load buildings: %w", err)
		}
		for _, b := range bs {
			lk.buildings[b.ID] = b
		}
	}
	if len(unitTypeIDs) > 0 {
		var ts []domain.UnitType
		if err := db.Where("id IN ?", unitTypeIDs).Find(&ts).Error; err != nil {
			return nil, fmt.Errorf("failed to load unit types: %w", err)
		}
		for _, t := range ts {
			lk.unitTypes[t.ID] = t
		}
	}
	if len(unitIDs) > 0 {
		var us []domain.Unit
		if err := db.Where("id IN ?", unitIDs).Find(&us).Error; err != nil {
			return nil, fmt.Errorf("failed to load units: %w", err)
		}
		for _, u := range us {
			lk.units[u.ID] = u
		}
	}
	return lk, nil
}

// unitCode prefers the catalog unit's number over a manually entered code.
func (lk *lookups) unitCode(l domain.Lead) string {
	if l.UnidadID != nil {
		if u, ok := lk.units[*l.UnidadID]; ok {
			return u.Numero
		}
	}
	if l.CodigoUnidad != nil {
		return *l.CodigoUnidad
	}
	return ""
}

func (lk *lookups) summaryLead(l domain.Lead) SummaryLead {
	c := lk.clients[l.ClienteID]
	line := SummaryLead{
		ID:                l.ID,
		CodigoUnidad:      lk.unitCode(l),
		TotalLead:         l.TotalLead,
		MontoUf:           l.MontoUf,
		Comision:          l.Comision,
		Estado:            l.Estado,
		Conciliado:        l.Conciliado,
		FechaPagoReserva:  l.FechaPagoReserva,
		FechaConciliacion: l.FechaConciliacion,
		FechaCheckin:      l.FechaCheckin,
		Valido:            l.Estado == constants.LeadDepartamentoEntregado && l.FechaCheckin != nil,
		ClienteID:         l.ClienteID,
		ClienteNombre:     c.Nombre,
		ClienteRut:        c.Rut,
		EdificioID:        l.EdificioID,
		EdificioNombre:    lk.buildings[l.EdificioID].Nombre,
		TipoUnidad:        "N/A",
	}
	if l.TipoUnidadEdificioID != nil {
		if t, ok := lk.unitTypes[*l.TipoUnidadEdificioID]; ok {
			line.TipoUnidad = t.Nombre
		}
	}
	return line
}
