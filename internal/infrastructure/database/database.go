package database

import (
	"strings"

	"brokerage-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const sqlitePrefix = "sqlite://"

// Open opens a GORM DB from DSN. Postgres by default; "sqlite://path" opens a local SQLite file.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind connection poolers (PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, sqlitePrefix) {
		return openSQLite(strings.TrimPrefix(dsn, sqlitePrefix))
	}
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// OpenMemory opens an empty in-memory SQLite database with the schema migrated.
func OpenMemory() (*gorm.DB, error) {
	db, err := openSQLite(":memory:")
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// openSQLite pins the pool to one connection: every new connection to
// ":memory:" would otherwise see its own empty database.
func openSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// activeLeadIndex allows at most one non-terminal lead per client.
// The state list mirrors constants.TerminalLeadStates.
const activeLeadIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_leads_cliente_activo ON leads (cliente_id)
WHERE estado NOT IN ('RECHAZADO', 'CANCELADO', 'DEPARTAMENTO_ENTREGADO')`

// AutoMigrate creates all tables plus the active-lead partial unique index.
// Both Postgres and SQLite support partial indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return err
	}
	return db.Exec(activeLeadIndex).Error
}
