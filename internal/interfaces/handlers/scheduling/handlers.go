package scheduling

import (
	"errors"
	"time"

	schedsvc "brokerage-backend/internal/application/scheduling"
	"brokerage-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *schedsvc.Service
}

type createBody struct {
	FechaCambio  time.Time  `json:"fechaCambio"`
	ComisionID   uuid.UUID  `json:"comisionId"`
	EdificioID   uuid.UUID  `json:"edificioId"`
	TipoUnidadID *uuid.UUID `json:"tipoUnidadId"`
}

// GET /api/v1/admin/comisiones/programados
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.List(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Scheduled commission changes fetched", list, fiber.Map{"total": len(list)})
}

// POST /api/v1/admin/comisiones/programados
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body createBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	ch, err := h.Service.Create(c.UserContext(), schedsvc.CreateInput{
		FechaCambio:  body.FechaCambio,
		ComisionID:   body.ComisionID,
		EdificioID:   body.EdificioID,
		TipoUnidadID: body.TipoUnidadID,
	})
	if err != nil {
		switch {
		case errors.Is(err, schedsvc.ErrInvalid), errors.Is(err, schedsvc.ErrCommissionInactive):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, schedsvc.ErrCommissionNotFound),
			errors.Is(err, schedsvc.ErrBuildingNotFound),
			errors.Is(err, schedsvc.ErrUnitTypeNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return err
	}
	return response.SuccessCreated(c, "Scheduled commission change created", ch, nil)
}

// POST /api/v1/admin/comisiones/programados/ejecutar
func (h *Handlers) Execute(c *fiber.Ctx) error {
	summary, err := h.Service.ExecutePending(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Scheduled commission changes executed", summary, nil)
}
