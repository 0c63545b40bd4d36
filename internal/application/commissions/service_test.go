package commissions

import (
	"context"
	"testing"

	"brokerage-backend/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *Service {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return &Service{DB: db}
}

func rate(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ptr(i int) *int {
	return &i
}

func TestCreate_Validation(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, CommissionInput{Nombre: "Base", Codigo: "B"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Create(ctx, CommissionInput{Nombre: "Base", Codigo: "B", Porcentaje: rate("1.5")})
	assert.ErrorIs(t, err, ErrInvalid)

	c, err := s.Create(ctx, CommissionInput{Nombre: "Base", Codigo: "B", Porcentaje: rate("0.03")})
	require.NoError(t, err)
	assert.True(t, c.Activa)

	_, err = s.Create(ctx, CommissionInput{Nombre: "Other", Codigo: "B", Porcentaje: rate("0.03")})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUpdate_PartialAndDeactivate(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()
	c, err := s.Create(ctx, CommissionInput{Nombre: "Base", Codigo: "B", Porcentaje: rate("0.03")})
	require.NoError(t, err)

	inactive := false
	updated, err := s.Update(ctx, c.ID, CommissionInput{Porcentaje: rate("0.04"), Activa: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Base", updated.Nombre)
	assert.True(t, updated.Porcentaje.Equal(decimal.RequireFromString("0.04")))
	assert.False(t, updated.Activa)

	active, err := s.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = s.Update(ctx, uuid.New(), CommissionInput{Nombre: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRule_RejectsOverlap(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()
	c, err := s.Create(ctx, CommissionInput{Nombre: "Tier", Codigo: "T", Porcentaje: rate("0.03")})
	require.NoError(t, err)

	_, err = s.CreateRule(ctx, RuleInput{ComisionID: c.ID, CantidadMinima: ptr(0), CantidadMaxima: ptr(9), Porcentaje: rate("0.05")})
	require.NoError(t, err)
	_, err = s.CreateRule(ctx, RuleInput{ComisionID: c.ID, CantidadMinima: ptr(10), CantidadMaxima: ptr(19), Porcentaje: rate("0.07")})
	require.NoError(t, err)
	_, err = s.CreateRule(ctx, RuleInput{ComisionID: c.ID, CantidadMinima: ptr(20), Porcentaje: rate("0.10")})
	require.NoError(t, err)

	_, err = s.CreateRule(ctx, RuleInput{ComisionID: c.ID, CantidadMinima: ptr(15), CantidadMaxima: ptr(25), Porcentaje: rate("0.08")})
	assert.ErrorIs(t, err, ErrRuleOverlap)

	_, err = s.CreateRule(ctx, RuleInput{ComisionID: c.ID, CantidadMinima: ptr(9), CantidadMaxima: ptr(10), Porcentaje: rate("0.08")})
	assert.ErrorIs(t, err, ErrRuleOverlap)

	rules, err := s.ListRules(ctx, &c.ID)
	require.NoError(t, err)
	assert.Len(t, rules, 3)
	assert.Equal(t, 0, rules[0].CantidadMinima)
	assert.Equal(t, 20, rules[2].CantidadMinima)
}

func TestCreateRule_OtherCommissionDoesNotConflict(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()
	a, err := s.Create(ctx, CommissionInput{Nombre: "A", Codigo: "A", Porcentaje: rate("0.03")})
	require.NoError(t, err)
	b, err := s.Create(ctx, CommissionInput{Nombre: "B", Codigo: "B", Porcentaje: rate("0.03")})
	require.NoError(t, err)

	_, err = s.CreateRule(ctx, RuleInput{ComisionID: a.ID, CantidadMinima: ptr(0), Porcentaje: rate("0.05")})
	require.NoError(t, err)
	_, err = s.CreateRule(ctx, RuleInput{ComisionID: b.ID, CantidadMinima: ptr(0), Porcentaje: rate("0.06")})
	assert.NoError(t, err)
}

func TestCreateRule_Validation(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()
	c, err := s.Create(ctx, CommissionInput{Nombre: "V", Codigo: "V", Porcentaje: rate("0.03")})
	require.NoError(t, err)

	cases := []RuleInput{
		{ComisionID: c.ID, Porcentaje: rate("0.05")},
		{ComisionID: c.ID, CantidadMinima: ptr(-1), Porcentaje: rate("0.05")},
		{ComisionID: c.ID, CantidadMinima: ptr(5), CantidadMaxima: ptr(5), Porcentaje: rate("0.05")},
		{ComisionID: c.ID, CantidadMinima: ptr(0), Porcentaje: rate("2")},
	}
	for _, in := range cases {
		_, err := s.CreateRule(ctx, in)
		assert.ErrorIs(t, err, ErrInvalid)
	}

	_, err = s.CreateRule(ctx, RuleInput{ComisionID: uuid.New(), CantidadMinima: ptr(0), Porcentaje: rate("0.05")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRule_ExcludesSelfFromOverlap(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()
	c, err := s.Create(ctx, CommissionInput{Nombre: "U", Codigo: "U", Porcentaje: rate("0.03")})
	require.NoError(t, err)
	r1, err := s.CreateRule(ctx, RuleInput{ComisionID: c.ID, CantidadMinima: ptr(0), CantidadMaxima: ptr(9), Porcentaje: rate("0.05")})
	require.NoError(t, err)
	_, err = s.CreateRule(ctx, RuleInput{ComisionID: c.ID, CantidadMinima: ptr(10), Porcentaje: rate("0.07")})
	require.NoError(t, err)

	updated, err := s.UpdateRule(ctx, r1.ID, RuleInput{CantidadMinima: ptr(0), CantidadMaxima: ptr(8), Porcentaje: rate("0.06")})
	require.NoError(t, err)
	assert.Equal(t, 8, *updated.CantidadMaxima)

	_, err = s.UpdateRule(ctx, r1.ID, RuleInput{CantidadMinima: ptr(0), CantidadMaxima: ptr(12), Porcentaje: rate("0.06")})
	assert.ErrorIs(t, err, ErrRuleOverlap)

	require.NoError(t, s.DeleteRule(ctx, r1.ID))
	assert.ErrorIs(t, s.DeleteRule(ctx, r1.ID), ErrRuleNotFound)
}
