package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recibo is a collection receipt applying a customer payment against open
// facturas.
// Estado: "borrador" | "aprobado" | "anulado"
// The four totals are denormalized at save time for listing, but the approval
// gate always recomputes them from the lines — they are never trusted stale.
type Recibo struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero      int64     `gorm:"uniqueIndex;not null"`
	ClienteID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Fecha       time.Time `gorm:"not null"`
	Descripcion *string
	Estado      string `gorm:"type:varchar(20);not null;default:'borrador'"`
	Moneda      string `gorm:"type:varchar(3);not null;default:'ARS'"`

	TotalImputado    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalRetenciones decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalACobrar     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:total_a_cobrar"`
	TotalCobrado     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// Retry fields — used by retry_cron to re-attempt failed Colppy syncs
	SyncEstado  string     `gorm:"type:varchar(20);not null;default:'pendiente'"`
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Cliente      *Cliente           `gorm:"foreignKey:ClienteID"`
	Imputaciones []ReciboImputacion `gorm:"foreignKey:ReciboID"`
	Retenciones  []ReciboRetencion  `gorm:"foreignKey:ReciboID"`
	MediosPago   []ReciboMedioPago  `gorm:"foreignKey:ReciboID"`
}

// ReciboImputacion applies part of the recibo against one factura.
// SaldoAlImputar snapshots the invoice balance at selection time;
// 0.01 ≤ monto_imputado ≤ saldo_al_imputar always holds.
type ReciboImputacion struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReciboID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	FacturaID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	TotalFactura   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoAlImputar decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoImputado  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Factura *Factura `gorm:"foreignKey:FacturaID"`
}

// TableName overrides GORM's pluralization (recibo_imputacions → recibo_imputaciones).
func (ReciboImputacion) TableName() string { return "recibo_imputaciones" }

// ReciboRetencion is one persisted withholding line. Zero-amount lines are
// never written; blank certificate numbers are stored as NULL, not "".
// Tipo: "iibb" | "iva" | "suss" | "ganancias"; Jurisdiccion only for iibb.
type ReciboRetencion struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReciboID       uuid.UUID `gorm:"type:uuid;index;not null"`
	Tipo           string    `gorm:"type:varchar(20);not null"`
	Jurisdiccion   *string
	NroCertificado *string
	Monto          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName overrides GORM's pluralization (recibo_retencions → recibo_retenciones).
func (ReciboRetencion) TableName() string { return "recibo_retenciones" }

// ReciboMedioPago is one payment line. Cheque fields are NULL unless
// tipo = "cheque". Lines without treasury account or positive amount are
// excluded from totals and never persisted.
// Tipo: "transferencia" | "cheque" | "efectivo" | "deposito" | "otros"
type ReciboMedioPago struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReciboID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	CuentaTesoreriaID uuid.UUID       `gorm:"type:uuid;not null"`
	Tipo              string          `gorm:"type:varchar(20);not null"`
	Monto             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NroCheque         *string
	FechaCheque       *time.Time
	BancoCheque       *string
	Referencia        *string

	CuentaTesoreria *CuentaTesoreria `gorm:"foreignKey:CuentaTesoreriaID"`
}
