package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// PresupuestoFilter is bound from query string of GET /v1/presupuestos.
type PresupuestoFilter struct {
	Estado    string `form:"estado,default=all"`
	ClienteID string `form:"cliente_id"       validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type PresupuestoListResponse struct {
	Data  []PresupuestoResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemPresupuestoRequest struct {
	Descripcion    string          `json:"descripcion"     validate:"required,min=1,max=200"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	EnStock        bool            `json:"en_stock"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"required"`
}

type CrearPresupuestoRequest struct {
	ClienteID        string                   `json:"cliente_id"        validate:"required,uuid"`
	Moneda           string                   `json:"moneda"            validate:"omitempty,oneof=ARS USD"`
	Items            []ItemPresupuestoRequest `json:"items"             validate:"required,min=1,dive"`
	FechaVencimiento *string                  `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
	Observaciones    *string                  `json:"observaciones"     validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemPresupuestoResponse struct {
	ID                string          `json:"id"`
	Descripcion       string          `json:"descripcion"`
	Cantidad          int             `json:"cantidad"`
	CantidadFacturada int             `json:"cantidad_facturada"`
	EnStock           bool            `json:"en_stock"`
	PrecioUnitario    decimal.Decimal `json:"precio_unitario"`
	Subtotal          decimal.Decimal `json:"subtotal"`
}

type PresupuestoResponse struct {
	ID               string                    `json:"id"`
	Numero           int64                     `json:"numero"`
	ClienteID        string                    `json:"cliente_id"`
	Cliente          *string                   `json:"cliente"` // razon_social, when preloaded
	VendedorID       string                    `json:"vendedor_id"`
	Estado           string                    `json:"estado"`
	Moneda           string                    `json:"moneda"`
	Subtotal         decimal.Decimal           `json:"subtotal"`
	MontoIVA         decimal.Decimal           `json:"monto_iva"`
	Total            decimal.Decimal           `json:"total"`
	FechaVencimiento *string                   `json:"fecha_vencimiento"`
	Observaciones    *string                   `json:"observaciones"`
	RemitoID         *string                   `json:"remito_id"`
	Items            []ItemPresupuestoResponse `json:"items"`
	CreatedAt        string                    `json:"created_at"`
}

// TransicionPresupuestoResponse reports the outcome of a state change.
// Vinculados is populated only by reverting edges (convertido → aceptado)
// and names the remito that was cleared.
type TransicionPresupuestoResponse struct {
	Presupuesto PresupuestoResponse          `json:"presupuesto"`
	Vinculados  []DocumentoVinculadoResponse `json:"vinculados,omitempty"`
}

// ConvertirPresupuestoResponse returns both sides of a conversion: the quote
// (now "convertido") and the remito it spawned.
type ConvertirPresupuestoResponse struct {
	Presupuesto PresupuestoResponse `json:"presupuesto"`
	Remito      RemitoResponse      `json:"remito"`
}
