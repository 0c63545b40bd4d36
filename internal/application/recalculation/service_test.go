package recalculation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"brokerage-backend/internal/application/leads"
	"brokerage-backend/internal/domain"
	"brokerage-backend/internal/infrastructure/database"
	"brokerage-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	svc      *Service
	db       *gorm.DB
	broker   uuid.UUID
	building *domain.Building
	base     *domain.Commission
}

func setup(t *testing.T) *fixture {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	f := &fixture{db: db, broker: uuid.New()}
	ls := &leads.Service{DB: db, Counter: &leads.GormCounter{DB: db}}
	f.svc = &Service{DB: db, Resolver: ls, Now: func() time.Time { return time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC) }}

	f.base = &domain.Commission{Nombre: "Base", Codigo: "BASE", Porcentaje: dec("0.02"), Activa: true}
	require.NoError(t, db.Create(f.base).Error)
	f.building = &domain.Building{Nombre: "Torre", ComisionID: &f.base.ID}
	require.NoError(t, db.Create(f.building).Error)
	return f
}

func (f *fixture) lead(t *testing.T, day int, buildingID uuid.UUID) *domain.Lead {
	at := time.Date(2024, 6, day, 10, 0, 0, 0, time.UTC)
	l := &domain.Lead{
		BrokerID: f.broker, ClienteID: uuid.New(), EdificioID: buildingID,
		TotalLead: dec("1000"), Comision: dec("1"), ComisionID: &f.base.ID,
		Estado: constants.LeadAprobado, FechaPagoReserva: &at,
	}
	require.NoError(t, f.db.Create(l).Error)
	return l
}

func TestRecalculate_ContinuesPastBrokenLead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	one := 1
	require.NoError(t, f.db.Create(&domain.CommissionRule{ComisionID: f.base.ID, CantidadMinima: 0, CantidadMaxima: &one, Porcentaje: dec("0.03")}).Error)
	require.NoError(t, f.db.Create(&domain.CommissionRule{ComisionID: f.base.ID, CantidadMinima: 2, Porcentaje: dec("0.05")}).Error)

	first := f.lead(t, 1, f.building.ID)
	f.lead(t, 2, f.building.ID)
	broken := f.lead(t, 3, uuid.New())
	last := f.lead(t, 4, f.building.ID)
	outside := f.lead(t, 4, f.building.ID)
	july := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.db.Model(outside).Update("fecha_pago_reserva", july).Error)

	sum, err := f.svc.Recalculate(ctx, 6, 2024)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.LeadsEncontrados)
	assert.Equal(t, 3, sum.LeadsActualizados)
	assert.Equal(t, 1, sum.LeadsFallidos)
	assert.Len(t, sum.Resultados, 4)

	var gotFirst domain.Lead
	require.NoError(t, f.db.First(&gotFirst, "id = ?", first.ID).Error)
	assert.True(t, gotFirst.Comision.Equal(dec("30")), "first lead of the month sits in the lowest tier")

	var gotLast domain.Lead
	require.NoError(t, f.db.First(&gotLast, "id = ?", last.ID).Error)
	assert.True(t, gotLast.Comision.Equal(dec("50")), "three earlier leads move the last one up a tier")
	require.NotNil(t, gotLast.ReglaComisionID)

	var gotBroken domain.Lead
	require.NoError(t, f.db.First(&gotBroken, "id = ?", broken.ID).Error)
	assert.True(t, gotBroken.Comision.Equal(dec("1")))

	var run domain.RecalculationRun
	require.NoError(t, f.db.First(&run, "id = ?", sum.RunID).Error)
	assert.Equal(t, 3, run.LeadsActualizados)
	var stored []LeadResult
	require.NoError(t, json.Unmarshal(run.Resultados, &stored))
	assert.Len(t, stored, 4)
}

func TestRecalculate_UnconfiguredLeadClearsCommission(t *testing.T) {
	f := setup(t)
	bare := &domain.Building{Nombre: "Sin comision"}
	require.NoError(t, f.db.Create(bare).Error)
	l := f.lead(t, 5, bare.ID)

	sum, err := f.svc.Recalculate(context.Background(), 6, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.LeadsActualizados)

	var got domain.Lead
	require.NoError(t, f.db.First(&got, "id = ?", l.ID).Error)
	assert.True(t, got.Comision.IsZero())
	assert.Nil(t, got.ComisionID)
}

func TestRecalculate_DefaultsToCurrentMonthAndValidates(t *testing.T) {
	f := setup(t)
	f.lead(t, 10, f.building.ID)

	sum, err := f.svc.Recalculate(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Periodo.Mes)
	assert.Equal(t, 2024, sum.Periodo.Anio)
	assert.Equal(t, 1, sum.LeadsEncontrados)

	_, err = f.svc.Recalculate(context.Background(), 13, 2024)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = f.svc.Recalculate(context.Background(), 5, 1990)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	runs, err := f.svc.Runs(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
