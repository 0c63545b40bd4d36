package reports

import (
	"errors"
	"strconv"

	reportsvc "brokerage-backend/internal/application/reports"
	"brokerage-backend/internal/middleware"
	"brokerage-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *reportsvc.Service
}

// GET /api/v1/admin/reportes/resumen-comisiones?mes=&anio=&conciliado=todos|si|no&brokerId=
func (h *Handlers) CommissionSummary(c *fiber.Ctx) error {
	mes, err := queryInt(c, "mes")
	if err != nil {
		return response.Error(c, "mes must be a number", fiber.StatusBadRequest, nil)
	}
	anio, err := queryInt(c, "anio")
	if err != nil {
		return response.Error(c, "anio must be a number", fiber.StatusBadRequest, nil)
	}
	filter := reportsvc.SummaryFilter{Mes: mes, Anio: anio, Conciliado: c.Query("conciliado")}
	if s := c.Query("brokerId"); s != "" && s != "todos" {
		id, err := uuid.Parse(s)
		if err != nil {
			return response.Error(c, "Invalid brokerId", fiber.StatusBadRequest, nil)
		}
		filter.BrokerID = &id
	}
	out, err := h.Service.CommissionSummary(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Commission summary fetched", out, nil)
}

// GET /api/v1/broker/reportes/comisiones-mensuales?mes=&anio=
func (h *Handlers) BrokerMonthly(c *fiber.Ctx) error {
	brokerID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	if c.Query("mes") == "" || c.Query("anio") == "" {
		return response.Error(c, "mes and anio are required", fiber.StatusBadRequest, nil)
	}
	mes, err := queryInt(c, "mes")
	if err != nil {
		return response.Error(c, "mes must be a number", fiber.StatusBadRequest, nil)
	}
	anio, err := queryInt(c, "anio")
	if err != nil {
		return response.Error(c, "anio must be a number", fiber.StatusBadRequest, nil)
	}
	out, err := h.Service.BrokerMonthly(c.UserContext(), brokerID, mes, anio)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Monthly commissions fetched", out, fiber.Map{"total": len(out)})
}

// queryInt reads an optional integer query parameter; absent means zero.
func queryInt(c *fiber.Ctx, name string) (int, error) {
	s := c.Query(name)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, reportsvc.ErrInvalidPeriod), errors.Is(err, reportsvc.ErrInvalidFilter):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	default:
		return err
	}
}
