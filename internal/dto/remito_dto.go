package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// RemitoFilter is bound from query string of GET /v1/remitos.
type RemitoFilter struct {
	Estado    string `form:"estado,default=all"`
	ClienteID string `form:"cliente_id"       validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type RemitoListResponse struct {
	Data  []RemitoResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemRemitoRequest struct {
	Descripcion    string          `json:"descripcion"     validate:"required,min=1,max=200"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	EnStock        bool            `json:"en_stock"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"required"`
}

type CrearRemitoRequest struct {
	ClienteID     string              `json:"cliente_id"    validate:"required,uuid"`
	Moneda        string              `json:"moneda"        validate:"omitempty,oneof=ARS USD"`
	Items         []ItemRemitoRequest `json:"items"         validate:"required,min=1,dive"`
	Observaciones *string             `json:"observaciones" validate:"omitempty,max=500"`
}

// FacturarParcialRequest selects confirmed remito lines to invoice. Each
// selected line is always invoiced for its full remaining quantity.
type FacturarParcialRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,dive,uuid"`
	Tipo    string   `json:"tipo"     validate:"required,oneof=factura_a factura_b factura_c"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemRemitoResponse struct {
	ID                string          `json:"id"`
	Descripcion       string          `json:"descripcion"`
	Cantidad          int             `json:"cantidad"`
	CantidadFacturada int             `json:"cantidad_facturada"`
	CantidadRestante  int             `json:"cantidad_restante"`
	EnStock           bool            `json:"en_stock"`
	EnvioPendiente    bool            `json:"envio_pendiente"`
	PrecioUnitario    decimal.Decimal `json:"precio_unitario"`
	Subtotal          decimal.Decimal `json:"subtotal"`
}

type RemitoResponse struct {
	ID            string               `json:"id"`
	Numero        int64                `json:"numero"`
	ClienteID     string               `json:"cliente_id"`
	Cliente       *string              `json:"cliente"`
	PresupuestoID *string              `json:"presupuesto_id"`
	Estado        string               `json:"estado"`
	Moneda        string               `json:"moneda"`
	Total         decimal.Decimal      `json:"total"`
	Observaciones *string              `json:"observaciones"`
	Items         []ItemRemitoResponse `json:"items"`
	CreatedAt     string               `json:"created_at"`
}

// TableroRemitoItem is one card of GET /v1/remitos/tablero: a confirmed
// remito with pending quantity, classified for the fulfillment board.
// Clasificacion: "listo_para_facturar" | "parcialmente_disponible" |
// "pendiente_de_stock".
type TableroRemitoItem struct {
	Remito        RemitoResponse `json:"remito"`
	Clasificacion string         `json:"clasificacion"`
}

type TableroResponse struct {
	Data  []TableroRemitoItem `json:"data"`
	Total int                 `json:"total"`
}

// FacturarParcialResponse returns the invoice produced by a partial
// invoicing event plus the refreshed remito.
type FacturarParcialResponse struct {
	Factura FacturaResponse `json:"factura"`
	Remito  RemitoResponse  `json:"remito"`
}
