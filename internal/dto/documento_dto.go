package dto

// TransicionRequest is shared by every POST /v1/{documento}/:id/transicion
// endpoint. Motivo is mandatory for edges that require one (rechazos,
// anulaciones); the service rejects blank-after-trim values.
type TransicionRequest struct {
	Estado string  `json:"estado" validate:"required"`
	Motivo *string `json:"motivo" validate:"omitempty,min=3"`
	Notas  *string `json:"notas"  validate:"omitempty,max=500"`
}

// HistorialEntryResponse is one row of a document's state ledger.
type HistorialEntryResponse struct {
	ID        string  `json:"id"`
	Desde     string  `json:"desde"`
	Hacia     string  `json:"hacia"`
	UsuarioID *string `json:"usuario_id"` // null on system transitions
	Sistema   bool    `json:"sistema"`
	Motivo    *string `json:"motivo"`
	Notas     *string `json:"notas"`
	CreatedAt string  `json:"created_at"`
}

// DocumentoVinculadoResponse names a linked document cleared by a revert.
type DocumentoVinculadoResponse struct {
	ID     string `json:"id"`
	Tipo   string `json:"tipo"` // presupuesto | remito | factura | recibo
	Numero int64  `json:"numero"`
}
