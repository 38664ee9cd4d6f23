package dto

// ─── Filter / List ──────────────────────────────────────────────────────────

// ClienteFilter is bound from query string of GET /v1/clientes.
type ClienteFilter struct {
	Busqueda string `form:"busqueda"` // matches razon_social or cuit
	Activo   string `form:"activo,default=true"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	RazonSocial  string  `json:"razon_social"  validate:"required,min=2,max=200"`
	CUIT         string  `json:"cuit"          validate:"required,len=11,numeric"`
	Email        *string `json:"email"         validate:"omitempty,email"`
	Telefono     *string `json:"telefono"      validate:"omitempty,max=30"`
	Direccion    *string `json:"direccion"     validate:"omitempty,max=200"`
	Localidad    *string `json:"localidad"     validate:"omitempty,max=100"`
	Provincia    *string `json:"provincia"     validate:"omitempty,max=100"`
	CondicionIVA string  `json:"condicion_iva" validate:"required,oneof=responsable_inscripto monotributo exento consumidor_final"`
	Moneda       string  `json:"moneda"        validate:"omitempty,oneof=ARS USD"`
}

type ActualizarClienteRequest struct {
	RazonSocial  string  `json:"razon_social"  validate:"omitempty,min=2,max=200"`
	Email        *string `json:"email"         validate:"omitempty,email"`
	Telefono     *string `json:"telefono"      validate:"omitempty,max=30"`
	Direccion    *string `json:"direccion"     validate:"omitempty,max=200"`
	Localidad    *string `json:"localidad"     validate:"omitempty,max=100"`
	Provincia    *string `json:"provincia"     validate:"omitempty,max=100"`
	CondicionIVA string  `json:"condicion_iva" validate:"omitempty,oneof=responsable_inscripto monotributo exento consumidor_final"`
	Activo       *bool   `json:"activo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID           string  `json:"id"`
	RazonSocial  string  `json:"razon_social"`
	CUIT         string  `json:"cuit"`
	Email        *string `json:"email"`
	Telefono     *string `json:"telefono"`
	Direccion    *string `json:"direccion"`
	Localidad    *string `json:"localidad"`
	Provincia    *string `json:"provincia"`
	CondicionIVA string  `json:"condicion_iva"`
	Moneda       string  `json:"moneda"`
	Activo       bool    `json:"activo"`
	CreatedAt    string  `json:"created_at"`
}

// SituacionCrediticiaResponse mirrors the BCRA central-de-deudores lookup
// for a cliente's CUIT. Advisory only: never blocks an operation.
type SituacionCrediticiaResponse struct {
	CUIT        string `json:"cuit"`
	Situacion   int    `json:"situacion"` // 1 = normal … 5 = irrecuperable; 0 = sin datos
	Descripcion string `json:"descripcion"`
	Consultado  string `json:"consultado"` // RFC 3339; may come from the 24h cache
	Cacheado    bool   `json:"cacheado"`
}
