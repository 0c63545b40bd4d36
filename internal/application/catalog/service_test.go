package catalog

import (
	"context"
	"testing"

	"brokerage-backend/internal/domain"
	"brokerage-backend/internal/infrastructure/database"
	"brokerage-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return &Service{DB: db}, db
}

func seedCommission(t *testing.T, db *gorm.DB, code string) *domain.Commission {
	c := &domain.Commission{Nombre: code, Codigo: code, Porcentaje: decimal.RequireFromString("0.03"), Activa: true}
	require.NoError(t, db.Create(c).Error)
	return c
}

func TestBuildingLifecycle(t *testing.T) {
	s, db := setupService(t)
	ctx := context.Background()
	c := seedCommission(t, db, "PRJ")

	_, err := s.CreateBuilding(ctx, BuildingInput{})
	assert.ErrorIs(t, err, ErrInvalid)

	missing := uuid.New()
	_, err = s.CreateBuilding(ctx, BuildingInput{Nombre: "Torre", ComisionID: &missing})
	assert.ErrorIs(t, err, ErrCommissionNotFound)

	b, err := s.CreateBuilding(ctx, BuildingInput{Nombre: "Torre Norte", Direccion: "Av. Siempre Viva 742"})
	require.NoError(t, err)

	_, err = s.AssignBuildingCommission(ctx, b.ID, &c.ID)
	require.NoError(t, err)

	ut, err := s.CreateUnitType(ctx, b.ID, UnitTypeInput{Nombre: "2D2B", Codigo: "2D2B"})
	require.NoError(t, err)
	_, err = s.AssignUnitTypeCommission(ctx, ut.ID, &c.ID)
	require.NoError(t, err)

	u, err := s.CreateUnit(ctx, b.ID, UnitInput{TipoUnidadEdificioID: ut.ID, Numero: "101"})
	require.NoError(t, err)
	assert.Equal(t, constants.UnitDisponible, u.Estado)

	got, err := s.GetBuilding(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Comision)
	assert.Equal(t, c.ID, got.Comision.ID)
	require.Len(t, got.TiposUnidad, 1)
	require.NotNil(t, got.TiposUnidad[0].Comision)
	assert.Len(t, got.Unidades, 1)

	cleared, err := s.AssignBuildingCommission(ctx, b.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.ComisionID)
	got, err = s.GetBuilding(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ComisionID)
}

func TestCreateUnit_UnitTypeMustBelongToBuilding(t *testing.T) {
	s, _ := setupService(t)
	ctx := context.Background()
	a, err := s.CreateBuilding(ctx, BuildingInput{Nombre: "A"})
	require.NoError(t, err)
	b, err := s.CreateBuilding(ctx, BuildingInput{Nombre: "B"})
	require.NoError(t, err)
	ut, err := s.CreateUnitType(ctx, a.ID, UnitTypeInput{Nombre: "1D", Codigo: "1D"})
	require.NoError(t, err)

	_, err = s.CreateUnit(ctx, b.ID, UnitInput{TipoUnidadEdificioID: ut.ID, Numero: "201"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateUnitState(t *testing.T) {
	s, _ := setupService(t)
	ctx := context.Background()
	b, err := s.CreateBuilding(ctx, BuildingInput{Nombre: "A"})
	require.NoError(t, err)
	ut, err := s.CreateUnitType(ctx, b.ID, UnitTypeInput{Nombre: "1D", Codigo: "1D"})
	require.NoError(t, err)
	u, err := s.CreateUnit(ctx, b.ID, UnitInput{TipoUnidadEdificioID: ut.ID, Numero: "101"})
	require.NoError(t, err)

	_, err = s.UpdateUnitState(ctx, u.ID, "DEMOLIDA")
	assert.ErrorIs(t, err, ErrInvalid)

	sold, err := s.UpdateUnitState(ctx, u.ID, constants.UnitVendida)
	require.NoError(t, err)
	assert.Equal(t, constants.UnitVendida, sold.Estado)

	back, err := s.UpdateUnitState(ctx, u.ID, constants.UnitDisponible)
	require.NoError(t, err)
	assert.Equal(t, constants.UnitDisponible, back.Estado)

	_, err = s.UpdateUnitState(ctx, uuid.New(), constants.UnitVendida)
	assert.ErrorIs(t, err, ErrUnitNotFound)
}

func TestClients_ScopedToBroker(t *testing.T) {
	s, _ := setupService(t)
	ctx := context.Background()
	broker, other := uuid.New(), uuid.New()

	_, err := s.CreateClient(ctx, broker, ClientInput{Nombre: "Ana", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.CreateClient(ctx, broker, ClientInput{Nombre: "Ana", Rut: "12.345.678-5", Email: "ana@example.cl"})
	require.NoError(t, err)
	_, err = s.CreateClient(ctx, other, ClientInput{Nombre: "Beto"})
	require.NoError(t, err)

	mine, err := s.ListClients(ctx, broker)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Ana", mine[0].Nombre)
}
