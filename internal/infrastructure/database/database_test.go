package database

import (
	"testing"

	"brokerage-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrate_ActiveLeadIndex(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	clientID := uuid.New()
	lead := func(estado string) *domain.Lead {
		return &domain.Lead{
			BrokerID:   uuid.New(),
			ClienteID:  clientID,
			EdificioID: uuid.New(),
			TotalLead:  decimal.NewFromInt(1000),
			Estado:     estado,
		}
	}

	require.NoError(t, db.Create(lead("CANCELADO")).Error)
	require.NoError(t, db.Create(lead("INGRESADO")).Error)
	assert.Error(t, db.Create(lead("EN_EVALUACION")).Error)
	assert.NoError(t, db.Create(lead("RECHAZADO")).Error)
}
