package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// ReciboFilter is bound from query string of GET /v1/recibos.
type ReciboFilter struct {
	Estado    string `form:"estado,default=all"`
	ClienteID string `form:"cliente_id"       validate:"omitempty,uuid"`
	Fecha     string `form:"fecha"            validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ReciboListResponse struct {
	Data  []ReciboResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ImputacionRequest applies part of the payment against one open factura.
// Monto omitted or zero means "apply the full remaining balance".
type ImputacionRequest struct {
	FacturaID string          `json:"factura_id" validate:"required,uuid"`
	Monto     decimal.Decimal `json:"monto"      validate:"omitempty"`
}

type RetencionRequest struct {
	Tipo           string          `json:"tipo"            validate:"required,oneof=iibb iva suss ganancias"`
	Jurisdiccion   *string         `json:"jurisdiccion"    validate:"omitempty,max=50"`
	NroCertificado *string         `json:"nro_certificado" validate:"omitempty,max=50"`
	Monto          decimal.Decimal `json:"monto"           validate:"required"`
}

type MedioPagoRequest struct {
	CuentaTesoreriaID string          `json:"cuenta_tesoreria_id" validate:"required,uuid"`
	Tipo              string          `json:"tipo"                validate:"required,oneof=transferencia cheque efectivo deposito otros"`
	Monto             decimal.Decimal `json:"monto"               validate:"required"`
	NroCheque         *string         `json:"nro_cheque"          validate:"omitempty,max=30"`
	FechaCheque       *string         `json:"fecha_cheque"        validate:"omitempty,datetime=2006-01-02"`
	BancoCheque       *string         `json:"banco_cheque"        validate:"omitempty,max=100"`
	Referencia        *string         `json:"referencia"          validate:"omitempty,max=100"`
}

type CrearReciboRequest struct {
	ClienteID    string              `json:"cliente_id"   validate:"required,uuid"`
	Fecha        string              `json:"fecha"        validate:"required,datetime=2006-01-02"`
	Descripcion  *string             `json:"descripcion"  validate:"omitempty,max=500"`
	Imputaciones []ImputacionRequest `json:"imputaciones" validate:"required,min=1,dive"`
	Retenciones  []RetencionRequest  `json:"retenciones"  validate:"omitempty,dive"`
	MediosPago   []MedioPagoRequest  `json:"medios_pago"  validate:"required,min=1,dive"`
}

type AnularReciboRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ImputacionResponse struct {
	FacturaID     string          `json:"factura_id"`
	NumeroFactura int64           `json:"numero_factura"`
	TotalFactura  decimal.Decimal `json:"total_factura"`
	Saldo         decimal.Decimal `json:"saldo"`
	MontoImputado decimal.Decimal `json:"monto_imputado"`
}

type RetencionResponse struct {
	Tipo           string          `json:"tipo"`
	Jurisdiccion   *string         `json:"jurisdiccion"`
	NroCertificado *string         `json:"nro_certificado"`
	Monto          decimal.Decimal `json:"monto"`
}

type MedioPagoResponse struct {
	CuentaTesoreriaID string          `json:"cuenta_tesoreria_id"`
	CuentaTesoreria   *string         `json:"cuenta_tesoreria"`
	Tipo              string          `json:"tipo"`
	Monto             decimal.Decimal `json:"monto"`
	NroCheque         *string         `json:"nro_cheque"`
	FechaCheque       *string         `json:"fecha_cheque"`
	BancoCheque       *string         `json:"banco_cheque"`
	Referencia        *string         `json:"referencia"`
}

type ReciboResponse struct {
	ID          string  `json:"id"`
	Numero      int64   `json:"numero"`
	ClienteID   string  `json:"cliente_id"`
	Cliente     *string `json:"cliente"`
	Fecha       string  `json:"fecha"`
	Descripcion *string `json:"descripcion"`
	Estado      string  `json:"estado"`
	Moneda      string  `json:"moneda"`

	TotalImputado    decimal.Decimal `json:"total_imputado"`
	TotalRetenciones decimal.Decimal `json:"total_retenciones"`
	TotalACobrar     decimal.Decimal `json:"total_a_cobrar"`
	TotalCobrado     decimal.Decimal `json:"total_cobrado"`

	Imputaciones []ImputacionResponse `json:"imputaciones"`
	Retenciones  []RetencionResponse  `json:"retenciones"`
	MediosPago   []MedioPagoResponse  `json:"medios_pago"`

	SyncEstado string `json:"sync_estado"`
	CreatedAt  string `json:"created_at"`
}

// AprobarReciboResponse carries the approved recibo plus non-blocking
// warnings from post-commit side effects (Colppy down, mail rejected).
// Warnings never roll the approval back.
type AprobarReciboResponse struct {
	Recibo       ReciboResponse `json:"recibo"`
	Advertencias []string       `json:"advertencias,omitempty"`
}
