package recalculation

import (
	"errors"

	recalcsvc "brokerage-backend/internal/application/recalculation"
	"brokerage-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *recalcsvc.Service
}

// POST /api/v1/admin/leads/recalcular-comisiones  body {mes, año}; empty body means current month
func (h *Handlers) Recalculate(c *fiber.Ctx) error {
	var body struct {
		Mes  int `json:"mes"`
		Anio int `json:"año"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return response.Error(c, "mes and año must be numbers", fiber.StatusBadRequest, nil)
		}
	}
	summary, err := h.Service.Recalculate(c.UserContext(), body.Mes, body.Anio)
	if err != nil {
		if errors.Is(err, recalcsvc.ErrInvalidPeriod) {
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		return err
	}
	return response.Success(c, "Commissions recalculated", summary, nil)
}

// GET /api/v1/admin/leads/recalculaciones?limit=
func (h *Handlers) Runs(c *fiber.Ctx) error {
	runs, err := h.Service.Runs(c.UserContext(), c.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	return response.Success(c, "Recalculation runs fetched", runs, fiber.Map{"total": len(runs)})
}
