package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Presupuesto is a quote sent to a customer.
// Estado: "borrador" | "enviado" | "aceptado" | "convertido" | "rechazado" | "anulado" | "vencido"
type Presupuesto struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero     int64           `gorm:"uniqueIndex;not null"`
	ClienteID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	VendedorID uuid.UUID       `gorm:"type:uuid;not null"`
	Estado     string          `gorm:"type:varchar(20);not null;default:'borrador'"`
	Moneda     string          `gorm:"type:varchar(3);not null;default:'ARS'"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoIVA   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:monto_iva"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// FechaVencimiento: past it, the nightly job moves the quote to "vencido"
	FechaVencimiento *time.Time
	Observaciones    *string
	// RemitoID links the remito generated when the quote was converted;
	// cleared when the conversion is reverted
	RemitoID  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Cliente *Cliente          `gorm:"foreignKey:ClienteID"`
	Items   []PresupuestoItem `gorm:"foreignKey:PresupuestoID"`
}

// PresupuestoItem is one quoted line. CantidadFacturada accumulates across
// every partial invoicing event; cantidad − cantidad_facturada never drops
// below zero.
type PresupuestoItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PresupuestoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Descripcion       string          `gorm:"not null"`
	Cantidad          int             `gorm:"not null"`
	CantidadFacturada int             `gorm:"not null;default:0"`
	EnStock           bool            `gorm:"not null;default:false"`
	PrecioUnitario    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
