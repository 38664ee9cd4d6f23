package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"distrigest/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (partial indexes for the retry cron).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies AutoMigrate plus schema patches. Also used by
// integration tests against a disposable database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Cliente{},
		&model.CuentaTesoreria{},
		&model.Presupuesto{},
		&model.PresupuestoItem{},
		&model.Remito{},
		&model.RemitoItem{},
		&model.Factura{},
		&model.Recibo{},
		&model.ReciboImputacion{},
		&model.ReciboRetencion{},
		&model.ReciboMedioPago{},
		&model.HistorialEstado{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate
// cannot fully handle on its own (partial indexes). Each statement uses
// IF NOT EXISTS semantics so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// partial index for the Colppy retry cron query on facturas
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_facturas_pending_retry') THEN
		    CREATE INDEX idx_facturas_pending_retry
		        ON facturas (next_retry_at)
		        WHERE sync_estado = 'pendiente' AND next_retry_at IS NOT NULL;
		  END IF;
		END $$`,
		// same partial index shape on recibos
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_recibos_pending_retry') THEN
		    CREATE INDEX idx_recibos_pending_retry
		        ON recibos (next_retry_at)
		        WHERE sync_estado = 'pendiente' AND next_retry_at IS NOT NULL;
		  END IF;
		END $$`,
		// historial lookups are always (documento_tipo, documento_id) ordered by created_at
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_historial_documento') THEN
		    CREATE INDEX idx_historial_documento
		        ON historial_estados (documento_tipo, documento_id, created_at);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
