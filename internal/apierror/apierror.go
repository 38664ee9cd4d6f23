// Package apierror defines the error envelopes the distrigest API returns.
// Handlers never hand a raw error to the client: everything goes through one
// of these shapes so the frontend can rely on a `detail` field and internal
// details (SQL errors, stack traces) never leak.
package apierror

// APIError is the envelope for plain 4xx/5xx responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries per-field messages for 422 responses produced by
// request binding.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// AprobacionFallida is the conflict envelope for aprobar-directo when the
// borrador committed but the approval step was rejected: recibo_id points at
// the surviving draft so the client can open it, correct it and re-approve.
type AprobacionFallida struct {
	Detail   string `json:"detail"`
	ReciboID string `json:"recibo_id"`
}

func NewAprobacionFallida(msg, reciboID string) *AprobacionFallida {
	return &AprobacionFallida{Detail: msg, ReciboID: reciboID}
}
