package model

import (
	"time"

	"github.com/google/uuid"
)

// HistorialEstado is the append-only audit ledger of every status transition,
// one table for all document variants.
// DocumentoTipo: "presupuesto" | "remito" | "factura" | "recibo"
// Entries are NEVER modified, deleted, or reordered — one row is written per
// committed transition, inside the same transaction as the estado update.
type HistorialEstado struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentoTipo string    `gorm:"type:varchar(20);not null;index:idx_historial_documento"`
	DocumentoID   uuid.UUID `gorm:"type:uuid;not null;index:idx_historial_documento"`
	Desde         string    `gorm:"type:varchar(20);not null"`
	Hacia         string    `gorm:"type:varchar(20);not null"`
	// PorUsuario is NULL on system transitions (conversion side effects,
	// the nightly expiry sweep); Sistema is set instead.
	PorUsuario *uuid.UUID `gorm:"type:uuid"`
	Sistema    bool       `gorm:"not null;default:false"`
	Motivo     *string
	Notas      *string
	CreatedAt  time.Time
}

// TableName overrides GORM's pluralization (historial_estados → historial_estados is fine,
// but keep the singular collective form used by the migrations).
func (HistorialEstado) TableName() string { return "historial_estados" }
