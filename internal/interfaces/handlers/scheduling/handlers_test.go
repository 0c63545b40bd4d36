package scheduling

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	schedsvc "brokerage-backend/internal/application/scheduling"
	"brokerage-backend/internal/domain"
	"brokerage-backend/internal/infrastructure/database"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestScheduleAndExecute(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := &schedsvc.Service{DB: db, Now: func() time.Time { return now }}
	h := &Handlers{Service: svc}

	c := &domain.Commission{Nombre: "Nueva", Codigo: "NEW", Porcentaje: decimal.RequireFromString("0.04"), Activa: true}
	require.NoError(t, db.Create(c).Error)
	b := &domain.Building{Nombre: "Torre"}
	require.NoError(t, db.Create(b).Error)

	app := fiber.New()
	app.Get("/programados", h.List)
	app.Post("/programados", h.Create)
	app.Post("/programados/ejecutar", h.Execute)

	status, _ := doJSON(t, app, "POST", "/programados", map[string]interface{}{
		"fechaCambio": now.Add(-time.Hour), "comisionId": c.ID, "edificioId": b.ID,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "POST", "/programados", map[string]interface{}{
		"fechaCambio": now.Add(time.Hour), "comisionId": c.ID, "edificioId": uuid.New(),
	})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, app, "POST", "/programados", map[string]interface{}{
		"fechaCambio": now.Add(time.Hour), "comisionId": c.ID, "edificioId": b.ID,
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, out := doJSON(t, app, "POST", "/programados/ejecutar", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), out["data"].(map[string]interface{})["ejecutados"])

	now = now.Add(2 * time.Hour)
	status, out = doJSON(t, app, "POST", "/programados/ejecutar", nil)
	require.Equal(t, fiber.StatusOK, status)
	summary := out["data"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["totalProcesados"])
	assert.Equal(t, float64(1), summary["ejecutados"])

	var reloaded domain.Building
	require.NoError(t, db.First(&reloaded, "id = ?", b.ID).Error)
	require.NotNil(t, reloaded.ComisionID)
	assert.Equal(t, c.ID, *reloaded.ComisionID)

	status, out = doJSON(t, app, "GET", "/programados", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, out["data"], 1)
}
