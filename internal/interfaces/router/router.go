package router

import (
	"fmt"

	catsvc "brokerage-backend/internal/application/catalog"
	commsvc "brokerage-backend/internal/application/commissions"
	leadsvc "brokerage-backend/internal/application/leads"
	recalcsvc "brokerage-backend/internal/application/recalculation"
	reportsvc "brokerage-backend/internal/application/reports"
	schedsvc "brokerage-backend/internal/application/scheduling"
	"brokerage-backend/internal/config"
	healthsvc "brokerage-backend/internal/health"
	"brokerage-backend/internal/infrastructure/database"
	"brokerage-backend/internal/infrastructure/locking"
	cathandler "brokerage-backend/internal/interfaces/handlers/catalog"
	commhandler "brokerage-backend/internal/interfaces/handlers/commissions"
	healthhandler "brokerage-backend/internal/interfaces/handlers/health"
	leadhandler "brokerage-backend/internal/interfaces/handlers/leads"
	recalchandler "brokerage-backend/internal/interfaces/handlers/recalculation"
	reporthandler "brokerage-backend/internal/interfaces/handlers/reports"
	schedhandler "brokerage-backend/internal/interfaces/handlers/scheduling"
	"brokerage-backend/internal/middleware"
	"brokerage-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// openRedis returns nil when no URL is configured; sessions, stats and submission locks
// are then disabled.
func openRedis(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// CreateApp builds the fiber app with every route. Domain routes are only mounted when a
// database is configured.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	rdb, err := openRedis(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffixes: cfg.FrontendURLEndsWith,
		DevPassword:     cfg.DevPassword,
	}))
	app.Use(middleware.Session(rdb))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	collector := &healthsvc.Collector{Rdb: rdb}
	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		Collector:      collector,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/reset", hh.Reset)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		collector.DB = &gormDBPinger{db: db}
	}
	if db == nil {
		return app, db, rdb, nil
	}

	env := cfg.Environment()
	leads := &leadsvc.Service{
		DB:      db,
		Counter: &leadsvc.GormCounter{DB: db},
		Locker:  &locking.Locker{Rdb: rdb, TTL: cfg.LeadLockTTL},
	}

	admin := app.Group("/api/v1/admin", middleware.RequireRole(env, constants.Admin))

	// Commissions. Static segments before :id.
	ch := &commhandler.Handlers{Service: &commsvc.Service{DB: db}}
	sh := &schedhandler.Handlers{Service: &schedsvc.Service{DB: db}}
	admin.Get("/comisiones/reglas", ch.ListRules)
	admin.Post("/comisiones/reglas", ch.CreateRule)
	admin.Get("/comisiones/reglas/:id", ch.GetRule)
	admin.Put("/comisiones/reglas/:id", ch.UpdateRule)
	admin.Delete("/comisiones/reglas/:id", ch.DeleteRule)
	admin.Get("/comisiones/programados", sh.List)
	admin.Post("/comisiones/programados", sh.Create)
	admin.Post("/comisiones/programados/ejecutar", sh.Execute)
	admin.Get("/comisiones", ch.List)
	admin.Post("/comisiones", ch.Create)
	admin.Get("/comisiones/:id", ch.Get)
	admin.Put("/comisiones/:id", ch.Update)

	// Leads
	lh := &leadhandler.Handlers{Service: leads}
	rh := &recalchandler.Handlers{Service: &recalcsvc.Service{DB: db, Resolver: leads}}
	admin.Post("/leads/recalcular-comisiones", rh.Recalculate)
	admin.Get("/leads/recalculaciones", rh.Runs)
	admin.Get("/leads", lh.List)
	admin.Patch("/leads/:id", lh.Update)

	// Reports
	rep := &reporthandler.Handlers{Service: &reportsvc.Service{DB: db}}
	admin.Get("/reportes/resumen-comisiones", rep.CommissionSummary)

	// Catalog
	cat := &cathandler.Handlers{Service: &catsvc.Service{DB: db}}
	admin.Get("/edificios", cat.ListBuildings)
	admin.Post("/edificios", cat.CreateBuilding)
	admin.Get("/edificios/:id", cat.GetBuilding)
	admin.Patch("/edificios/:id/comision", cat.AssignBuildingCommission)
	admin.Post("/edificios/:id/tipos-unidad", cat.CreateUnitType)
	admin.Post("/edificios/:id/unidades", cat.CreateUnit)
	admin.Patch("/tipos-unidad/:id/comision", cat.AssignUnitTypeCommission)
	admin.Patch("/unidades/:id/estado", cat.UpdateUnitState)

	// Broker handlers act on the session user, so a session is required even in development.
	broker := app.Group("/api/v1/broker", middleware.RequireAuth(), middleware.RequireRole(env, constants.Broker))
	broker.Post("/leads/preview", lh.Preview)
	broker.Post("/leads", lh.Create)
	broker.Get("/leads", lh.ListForBroker)
	broker.Get("/commission-progress", lh.Progress)
	broker.Get("/reportes/comisiones-mensuales", rep.BrokerMonthly)
	broker.Get("/clientes", cat.ListClients)
	broker.Post("/clientes", cat.CreateClient)

	return app, db, rdb, nil
}
