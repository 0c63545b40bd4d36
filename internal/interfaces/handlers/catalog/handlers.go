package catalog

import (
	"errors"

	catsvc "brokerage-backend/internal/application/catalog"
	"brokerage-backend/internal/middleware"
	"brokerage-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers serves buildings, unit types and units (admin) and clients (broker).
type Handlers struct {
	Service *catsvc.Service
}

type commissionBody struct {
	ComisionID *uuid.UUID `json:"comisionId"`
}

// GET /api/v1/admin/edificios
func (h *Handlers) ListBuildings(c *fiber.Ctx) error {
	list, err := h.Service.ListBuildings(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Buildings fetched", list, fiber.Map{"total": len(list)})
}

// POST /api/v1/admin/edificios
func (h *Handlers) CreateBuilding(c *fiber.Ctx) error {
	var body struct {
		Nombre     string     `json:"nombre"`
		Direccion  string     `json:"direccion"`
		ComisionID *uuid.UUID `json:"comisionId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	b, err := h.Service.CreateBuilding(c.UserContext(), catsvc.BuildingInput{
		Nombre:     body.Nombre,
		Direccion:  body.Direccion,
		ComisionID: body.ComisionID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.SuccessCreated(c, "Building created", b, nil)
}

// GET /api/v1/admin/edificios/:id
func (h *Handlers) GetBuilding(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid building id", fiber.StatusBadRequest, nil)
	}
	b, err := h.Service.GetBuilding(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Building fetched", b, nil)
}

// PATCH /api/v1/admin/edificios/:id/comision  body {comisionId|null}
func (h *Handlers) AssignBuildingCommission(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid building id", fiber.StatusBadRequest, nil)
	}
	var body commissionBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	b, err := h.Service.AssignBuildingCommission(c.UserContext(), id, body.ComisionID)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Building commission updated", b, nil)
}

// POST /api/v1/admin/edificios/:id/tipos-unidad
func (h *Handlers) CreateUnitType(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid building id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Nombre     string     `json:"nombre"`
		Codigo     string     `json:"codigo"`
		ComisionID *uuid.UUID `json:"comisionId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	ut, err := h.Service.CreateUnitType(c.UserContext(), id, catsvc.UnitTypeInput{
		Nombre:     body.Nombre,
		Codigo:     body.Codigo,
		ComisionID: body.ComisionID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.SuccessCreated(c, "Unit type created", ut, nil)
}

// PATCH /api/v1/admin/tipos-unidad/:id/comision  body {comisionId|null}
func (h *Handlers) AssignUnitTypeCommission(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid unit type id", fiber.StatusBadRequest, nil)
	}
	var body commissionBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	ut, err := h.Service.AssignUnitTypeCommission(c.UserContext(), id, body.ComisionID)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Unit type commission updated", ut, nil)
}

// POST /api/v1/admin/edificios/:id/unidades
func (h *Handlers) CreateUnit(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid building id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		TipoUnidadEdificioID uuid.UUID `json:"tipoUnidadEdificioId"`
		Numero               string    `json:"numero"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.CreateUnit(c.UserContext(), id, catsvc.UnitInput{
		TipoUnidadEdificioID: body.TipoUnidadEdificioID,
		Numero:               body.Numero,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.SuccessCreated(c, "Unit created", u, nil)
}

// PATCH /api/v1/admin/unidades/:id/estado  body {estado}
func (h *Handlers) UpdateUnitState(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid unit id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Estado string `json:"estado"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.UpdateUnitState(c.UserContext(), id, body.Estado)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Unit state updated", u, nil)
}

// GET /api/v1/broker/clientes
func (h *Handlers) ListClients(c *fiber.Ctx) error {
	brokerID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	list, err := h.Service.ListClients(c.UserContext(), brokerID)
	if err != nil {
		return err
	}
	return response.Success(c, "Clients fetched", list, fiber.Map{"total": len(list)})
}

// POST /api/v1/broker/clientes
func (h *Handlers) CreateClient(c *fiber.Ctx) error {
	brokerID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		Nombre   string `json:"nombre"`
		Rut      string `json:"rut"`
		Email    string `json:"email"`
		Telefono string `json:"telefono"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	client, err := h.Service.CreateClient(c.UserContext(), brokerID, catsvc.ClientInput{
		Nombre:   body.Nombre,
		Rut:      body.Rut,
		Email:    body.Email,
		Telefono: body.Telefono,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.SuccessCreated(c, "Client created", client, nil)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, catsvc.ErrInvalid):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, catsvc.ErrBuildingNotFound),
		errors.Is(err, catsvc.ErrUnitTypeNotFound),
		errors.Is(err, catsvc.ErrUnitNotFound),
		errors.Is(err, catsvc.ErrCommissionNotFound),
		errors.Is(err, catsvc.ErrClientNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	}
	return err
}
