package leads

import (
	"errors"
	"time"

	leadsvc "brokerage-backend/internal/application/leads"
	"brokerage-backend/internal/commission"
	"brokerage-backend/internal/middleware"
	"brokerage-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type Handlers struct {
	Service *leadsvc.Service
}

type createBody struct {
	ClienteID            uuid.UUID       `json:"clienteId"`
	EdificioID           uuid.UUID       `json:"edificioId"`
	UnidadID             *uuid.UUID      `json:"unidadId"`
	CodigoUnidad         *string         `json:"codigoUnidad"`
	TipoUnidadEdificioID *uuid.UUID      `json:"tipoUnidadEdificioId"`
	TotalLead            decimal.Decimal `json:"totalLead"`
	MontoUf              decimal.Decimal `json:"montoUf"`
	Estado               string          `json:"estado"`
	FechaPagoReserva     *time.Time      `json:"fechaPagoReserva"`
	FechaPagoLead        *time.Time      `json:"fechaPagoLead"`
	FechaCheckin         *time.Time      `json:"fechaCheckin"`
	Observaciones        *string         `json:"observaciones"`
}

type previewBody struct {
	EdificioID           uuid.UUID       `json:"edificioId"`
	UnidadID             *uuid.UUID      `json:"unidadId"`
	TipoUnidadEdificioID *uuid.UUID      `json:"tipoUnidadEdificioId"`
	TotalLead            decimal.Decimal `json:"totalLead"`
	FechaPagoReserva     *time.Time      `json:"fechaPagoReserva"`
}

type updateBody struct {
	Estado           *string          `json:"estado"`
	Conciliado       *bool            `json:"conciliado"`
	TotalLead        *decimal.Decimal `json:"totalLead"`
	MontoUf          *decimal.Decimal `json:"montoUf"`
	FechaPagoReserva *time.Time       `json:"fechaPagoReserva"`
	FechaPagoLead    *time.Time       `json:"fechaPagoLead"`
	FechaCheckin     *time.Time       `json:"fechaCheckin"`
	Observaciones    *string          `json:"observaciones"`
}

// POST /api/v1/broker/leads
func (h *Handlers) Create(c *fiber.Ctx) error {
	brokerID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body createBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	lead, res, err := h.Service.Create(c.UserContext(), leadsvc.CreateInput{
		BrokerID:             brokerID,
		ClienteID:            body.ClienteID,
		EdificioID:           body.EdificioID,
		UnidadID:             body.UnidadID,
		CodigoUnidad:         body.CodigoUnidad,
		TipoUnidadEdificioID: body.TipoUnidadEdificioID,
		TotalLead:            body.TotalLead,
		MontoUf:              body.MontoUf,
		Estado:               body.Estado,
		FechaPagoReserva:     body.FechaPagoReserva,
		FechaPagoLead:        body.FechaPagoLead,
		FechaCheckin:         body.FechaCheckin,
		Observaciones:        body.Observaciones,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.SuccessCreated(c, "Lead created", fiber.Map{"lead": lead, "calculoComision": res}, nil)
}

// GET /api/v1/broker/leads?estado=
func (h *Handlers) ListForBroker(c *fiber.Ctx) error {
	brokerID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	list, err := h.Service.ListForBroker(c.UserContext(), brokerID, c.Query("estado"))
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Leads fetched", list, fiber.Map{"total": len(list)})
}

// POST /api/v1/broker/leads/preview
func (h *Handlers) Preview(c *fiber.Ctx) error {
	brokerID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body previewBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	in := leadsvc.ResolveInput{
		BrokerID:             brokerID,
		EdificioID:           body.EdificioID,
		UnidadID:             body.UnidadID,
		TipoUnidadEdificioID: body.TipoUnidadEdificioID,
		TotalLead:            body.TotalLead,
	}
	if body.FechaPagoReserva != nil {
		in.AsOf = *body.FechaPagoReserva
	}
	res, err := h.Service.Preview(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Commission preview", res, nil)
}

// GET /api/v1/broker/commission-progress?date=YYYY-MM-DD&comisionId=
func (h *Handlers) Progress(c *fiber.Ctx) error {
	brokerID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	date := time.Now().UTC()
	if s := c.Query("date"); s != "" {
		d, err := time.ParseInLocation(dateLayout, s, time.UTC)
		if err != nil {
			return response.Error(c, "date must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
		}
		// the whole day counts
		date = d.Add(24*time.Hour - time.Nanosecond)
	}
	commissionID, err := optionalUUID(c.Query("comisionId"))
	if err != nil {
		return response.Error(c, "Invalid comisionId", fiber.StatusBadRequest, nil)
	}
	out, err := h.Service.Progress(c.UserContext(), brokerID, date, commissionID)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Commission progress fetched", out, fiber.Map{"date": date.Format(dateLayout)})
}

// GET /api/v1/admin/leads?estado=&brokerId=&edificioId=
func (h *Handlers) List(c *fiber.Ctx) error {
	brokerID, err := optionalUUID(c.Query("brokerId"))
	if err != nil {
		return response.Error(c, "Invalid brokerId", fiber.StatusBadRequest, nil)
	}
	buildingID, err := optionalUUID(c.Query("edificioId"))
	if err != nil {
		return response.Error(c, "Invalid edificioId", fiber.StatusBadRequest, nil)
	}
	list, err := h.Service.List(c.UserContext(), leadsvc.ListFilter{
		Estado:     c.Query("estado"),
		BrokerID:   brokerID,
		EdificioID: buildingID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Leads fetched", list, fiber.Map{"total": len(list)})
}

// PATCH /api/v1/admin/leads/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid lead id", fiber.StatusBadRequest, nil)
	}
	var body updateBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	lead, err := h.Service.AdminUpdate(c.UserContext(), id, leadsvc.UpdateInput{
		Estado:           body.Estado,
		Conciliado:       body.Conciliado,
		TotalLead:        body.TotalLead,
		MontoUf:          body.MontoUf,
		FechaPagoReserva: body.FechaPagoReserva,
		FechaPagoLead:    body.FechaPagoLead,
		FechaCheckin:     body.FechaCheckin,
		Observaciones:    body.Observaciones,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Lead updated", lead, nil)
}

// --- helpers ---

func optionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func writeError(c *fiber.Ctx, err error) error {
	var active *leadsvc.ActiveLeadError
	switch {
	case errors.As(err, &active):
		return response.Error(c, "Client already has an active lead", fiber.StatusConflict, active)
	case errors.Is(err, leadsvc.ErrInvalid):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, leadsvc.ErrClientOtherBroker):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case errors.Is(err, leadsvc.ErrUnitUnavailable), errors.Is(err, leadsvc.ErrSubmissionInProgress):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, leadsvc.ErrNotFound),
		errors.Is(err, leadsvc.ErrBuildingNotFound),
		errors.Is(err, leadsvc.ErrUnitNotFound),
		errors.Is(err, leadsvc.ErrUnitTypeNotFound),
		errors.Is(err, leadsvc.ErrClientNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, commission.ErrOverlappingRules):
		// surfaced through the global error handler so it lands in the error log
		return fiber.NewError(fiber.StatusInternalServerError, "Commission configuration error: "+err.Error())
	}
	return err
}
