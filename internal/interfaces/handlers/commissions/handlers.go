package commissions

import (
	"errors"

	commsvc "brokerage-backend/internal/application/commissions"
	"brokerage-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *commsvc.Service
}

type commissionBody struct {
	Nombre     string           `json:"nombre"`
	Codigo     string           `json:"codigo"`
	Porcentaje *decimal.Decimal `json:"porcentaje"`
	Activa     *bool            `json:"activa"`
}

func (b commissionBody) input() commsvc.CommissionInput {
	return commsvc.CommissionInput{
		Nombre:     b.Nombre,
		Codigo:     b.Codigo,
		Porcentaje: b.Porcentaje,
		Activa:     b.Activa,
	}
}

type ruleBody struct {
	ComisionID     uuid.UUID        `json:"comisionId"`
	CantidadMinima *int             `json:"cantidadMinima"`
	CantidadMaxima *int             `json:"cantidadMaxima"`
	Porcentaje     *decimal.Decimal `json:"porcentaje"`
}

func (b ruleBody) input() commsvc.RuleInput {
	return commsvc.RuleInput{
		ComisionID:     b.ComisionID,
		CantidadMinima: b.CantidadMinima,
		CantidadMaxima: b.CantidadMaxima,
		Porcentaje:     b.Porcentaje,
	}
}

// GET /api/v1/admin/comisiones?activa=true
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.List(c.UserContext(), c.QueryBool("activa", false))
	if err != nil {
		return err
	}
	return response.Success(c, "Commissions fetched", list, fiber.Map{"total": len(list)})
}

// POST /api/v1/admin/comisiones
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body commissionBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	created, err := h.Service.Create(c.UserContext(), body.input())
	if err != nil {
		return writeError(c, err)
	}
	return response.SuccessCreated(c, "Commission created", created, nil)
}

// GET /api/v1/admin/comisiones/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid commission id", fiber.StatusBadRequest, nil)
	}
	found, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Commission fetched", found, nil)
}

// PUT /api/v1/admin/comisiones/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid commission id", fiber.StatusBadRequest, nil)
	}
	var body commissionBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	updated, err := h.Service.Update(c.UserContext(), id, body.input())
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Commission updated", updated, nil)
}

// GET /api/v1/admin/comisiones/reglas?comisionId=
func (h *Handlers) ListRules(c *fiber.Ctx) error {
	var commissionID *uuid.UUID
	if s := c.Query("comisionId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return response.Error(c, "Invalid comisionId", fiber.StatusBadRequest, nil)
		}
		commissionID = &id
	}
	rules, err := h.Service.ListRules(c.UserContext(), commissionID)
	if err != nil {
		return err
	}
	return response.Success(c, "Commission rules fetched", rules, fiber.Map{"total": len(rules)})
}

// POST /api/v1/admin/comisiones/reglas
func (h *Handlers) CreateRule(c *fiber.Ctx) error {
	var body ruleBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	rule, err := h.Service.CreateRule(c.UserContext(), body.input())
	if err != nil {
		return writeError(c, err)
	}
	return response.SuccessCreated(c, "Commission rule created", rule, nil)
}

// GET /api/v1/admin/comisiones/reglas/:id
func (h *Handlers) GetRule(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid rule id", fiber.StatusBadRequest, nil)
	}
	rule, err := h.Service.GetRule(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Commission rule fetched", rule, nil)
}

// PUT /api/v1/admin/comisiones/reglas/:id
func (h *Handlers) UpdateRule(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid rule id", fiber.StatusBadRequest, nil)
	}
	var body ruleBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	rule, err := h.Service.UpdateRule(c.UserContext(), id, body.input())
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Commission rule updated", rule, nil)
}

// DELETE /api/v1/admin/comisiones/reglas/:id
func (h *Handlers) DeleteRule(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid rule id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteRule(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Commission rule deleted", fiber.Map{"id": id}, nil)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, commsvc.ErrInvalid):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, commsvc.ErrNotFound), errors.Is(err, commsvc.ErrRuleNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, commsvc.ErrDuplicate), errors.Is(err, commsvc.ErrRuleOverlap):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	}
	return err
}
