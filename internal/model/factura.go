package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Factura is a sales invoice / receivable.
// Tipo: "factura_a" | "factura_b" | "factura_c"
// Estado: "pendiente" | "parcial" | "pagada" | "anulada"
// SyncEstado (Colppy): "pendiente" | "sincronizado" | "error"
type Factura struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero        int64           `gorm:"not null"`
	PuntoDeVenta  int             `gorm:"not null;default:1"`
	Tipo          string          `gorm:"type:varchar(20);not null"`
	ClienteID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	RemitoID      *uuid.UUID      `gorm:"type:uuid;index"`
	PresupuestoID *uuid.UUID      `gorm:"type:uuid"`
	Estado        string          `gorm:"type:varchar(20);not null;default:'pendiente'"`
	Moneda        string          `gorm:"type:varchar(3);not null;default:'ARS'"`
	MontoNeto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoIVA      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:monto_iva"`
	MontoTotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// SaldoPendiente decreases as recibos are approved against the invoice;
	// it is restored when a recibo is annulled
	SaldoPendiente   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FechaVencimiento *time.Time

	// Retry fields — used by retry_cron to re-attempt failed Colppy syncs
	SyncEstado  string     `gorm:"type:varchar(20);not null;default:'pendiente'"`
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
}
