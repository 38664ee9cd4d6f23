package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Remito is a delivery note, usually generated from an accepted presupuesto.
// Estado: "borrador" | "confirmado" | "facturado" | "anulado"
type Remito struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero        int64           `gorm:"uniqueIndex;not null"`
	ClienteID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PresupuestoID *uuid.UUID      `gorm:"type:uuid;index"`
	Estado        string          `gorm:"type:varchar(20);not null;default:'borrador'"`
	Moneda        string          `gorm:"type:varchar(3);not null;default:'ARS'"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Observaciones *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Cliente *Cliente     `gorm:"foreignKey:ClienteID"`
	Items   []RemitoItem `gorm:"foreignKey:RemitoID"`
}

// RemitoItem tracks delivery and partial invoicing per line.
// cantidad_facturada accumulates; the remaining quantity is always
// cantidad − cantidad_facturada and is recomputed, never stored.
type RemitoItem struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RemitoID          uuid.UUID `gorm:"type:uuid;index;not null"`
	Descripcion       string    `gorm:"not null"`
	Cantidad          int       `gorm:"not null"`
	CantidadFacturada int       `gorm:"not null;default:0"`
	EnStock           bool      `gorm:"not null;default:false"`
	// EnvioPendiente: the item is part of a factura whose Colppy submission
	// has not resolved yet and cannot be selected again until it does.
	// FacturarParcial sets it; the sync worker clears it on confirmation and
	// the retry cron clears it when it gives up and parks the factura.
	EnvioPendiente bool            `gorm:"not null;default:false"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
