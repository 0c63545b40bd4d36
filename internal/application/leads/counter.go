package leads

import (
	"context"
	"time"

	"brokerage-backend/internal/domain"
	"brokerage-backend/internal/pkg/constants"
	"brokerage-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mocks/counter.go -package=mock_leads . LeadCounter

// LeadCounter counts a broker's qualifying leads for tier matching.
// Implementations must query on every call; the count changes as leads are created.
type LeadCounter interface {
	CountQualifying(ctx context.Context, brokerID, commissionID uuid.UUID, asOf time.Time, exclude *uuid.UUID) (int, error)
}

// GormCounter counts leads of the broker with the same base commission, not rejected or
// cancelled, whose reservation was paid in the calendar month of asOf up to asOf itself.
type GormCounter struct {
	DB *gorm.DB
}

func (g *GormCounter) CountQualifying(ctx context.Context, brokerID, commissionID uuid.UUID, asOf time.Time, exclude *uuid.UUID) (int, error) {
	start, _ := validation.MonthRange(asOf.Year(), asOf.Month(), asOf.Location())
	q := g.DB.WithContext(ctx).Model(&domain.Lead{}).
		Where("broker_id = ? AND comision_id = ?", brokerID, commissionID).
		Where("estado NOT IN ?", constants.NonQualifyingLeadStates).
		Where("fecha_pago_reserva >= ? AND fecha_pago_reserva <= ?", start.UTC(), asOf.UTC())
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
