package leads

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalid              = errors.New("invalid lead data")
	ErrNotFound             = errors.New("lead not found")
	ErrBuildingNotFound     = errors.New("building not found")
	ErrUnitNotFound         = errors.New("unit not found in building")
	ErrUnitTypeNotFound     = errors.New("unit type not found in building")
	ErrUnitUnavailable      = errors.New("unit is not available")
	ErrClientNotFound       = errors.New("client not found")
	ErrClientOtherBroker    = errors.New("client is handled by another broker")
	ErrSubmissionInProgress = errors.New("a lead for this client is already being submitted")
)

// ActiveLeadError rejects a lead for a client that already has a non-terminal lead.
type ActiveLeadError struct {
	LeadID         uuid.UUID `json:"leadId"`
	CreatedAt      time.Time `json:"createdAt"`
	Estado         string    `json:"estado"`
	EdificioID     uuid.UUID `json:"edificioId"`
	EdificioNombre string    `json:"edificioNombre"`
}

func (e *ActiveLeadError) Error() string {
	return fmt.Sprintf("client already has an active lead %s (estado %s, edificio %s, created %s)",
		e.LeadID, e.Estado, e.EdificioNombre, e.CreatedAt.Format("2006-01-02"))
}
