package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// FacturaFilter is bound from query string of GET /v1/facturas.
type FacturaFilter struct {
	Estado    string `form:"estado,default=all"`
	ClienteID string `form:"cliente_id"       validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type FacturaListResponse struct {
	Data  []FacturaResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AnularFacturaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FacturaResponse struct {
	ID               string          `json:"id"`
	Numero           int64           `json:"numero"`
	PuntoDeVenta     int             `json:"punto_de_venta"`
	Tipo             string          `json:"tipo"`
	ClienteID        string          `json:"cliente_id"`
	Cliente          *string         `json:"cliente"`
	RemitoID         *string         `json:"remito_id"`
	Estado           string          `json:"estado"`
	Moneda           string          `json:"moneda"`
	MontoNeto        decimal.Decimal `json:"monto_neto"`
	MontoIVA         decimal.Decimal `json:"monto_iva"`
	MontoTotal       decimal.Decimal `json:"monto_total"`
	SaldoPendiente   decimal.Decimal `json:"saldo_pendiente"`
	FechaVencimiento *string         `json:"fecha_vencimiento"`
	SyncEstado       string          `json:"sync_estado"`
	CreatedAt        string          `json:"created_at"`
}

// FacturaAbiertaResponse is one row of GET /v1/clientes/:id/facturas-abiertas,
// the picker recibo drafting selects from. Only invoices with a positive
// remaining balance appear.
type FacturaAbiertaResponse struct {
	ID               string          `json:"id"`
	Numero           int64           `json:"numero"`
	Tipo             string          `json:"tipo"`
	Moneda           string          `json:"moneda"`
	MontoTotal       decimal.Decimal `json:"monto_total"`
	SaldoPendiente   decimal.Decimal `json:"saldo_pendiente"`
	FechaVencimiento *string         `json:"fecha_vencimiento"`
}
