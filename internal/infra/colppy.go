package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ColppyFacturaPayload is posted to the Colppy bridge when an invoice is
// created locally. The bridge owns the Colppy session handshake and the
// comprobante mapping.
type ColppyFacturaPayload struct {
	FacturaID    string  `json:"factura_id"`
	Tipo         string  `json:"tipo"` // factura_a | factura_b | factura_c
	PuntoDeVenta int     `json:"punto_de_venta"`
	Numero       int64   `json:"numero"`
	CUIT         string  `json:"cuit"`
	Moneda       string  `json:"moneda"`
	MontoNeto    float64 `json:"monto_neto"`
	MontoIVA     float64 `json:"monto_iva"`
	MontoTotal   float64 `json:"monto_total"`
}

// ColppyImputacionPayload is one invoice application inside a receipt post.
type ColppyImputacionPayload struct {
	FacturaID string  `json:"factura_id"`
	Monto     float64 `json:"monto"`
}

// ColppyReciboPayload is posted when a recibo is approved. Retenciones and
// medios de pago travel as flat lines; Colppy rebuilds its own asientos.
type ColppyReciboPayload struct {
	ReciboID     string                    `json:"recibo_id"`
	Numero       int64                     `json:"numero"`
	CUIT         string                    `json:"cuit"`
	Fecha        string                    `json:"fecha"` // YYYY-MM-DD
	Moneda       string                    `json:"moneda"`
	Imputaciones []ColppyImputacionPayload `json:"imputaciones"`
	TotalACobrar float64                   `json:"total_a_cobrar"`
	TotalCobrado float64                   `json:"total_cobrado"`
}

// ColppyResponse is the bridge's acknowledgment.
type ColppyResponse struct {
	Resultado string `json:"resultado"` // "ok" | "error"
	ColppyID  string `json:"colppy_id"`
	Mensaje   string `json:"mensaje"`
}

// ColppyClient talks to the Colppy bridge over HTTP. Keeping the ERP
// integration behind a bridge isolates its session handling and outages from
// the core backend.
type ColppyClient struct {
	bridgeURL  string
	httpClient *http.Client
}

func NewColppyClient(bridgeURL string) *ColppyClient {
	return &ColppyClient{
		bridgeURL:  bridgeURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RegistrarFactura posts an invoice to the bridge.
func (c *ColppyClient) RegistrarFactura(ctx context.Context, payload ColppyFacturaPayload) (*ColppyResponse, error) {
	return c.post(ctx, "/facturas", payload)
}

// RegistrarRecibo posts an approved receipt to the bridge.
func (c *ColppyClient) RegistrarRecibo(ctx context.Context, payload ColppyReciboPayload) (*ColppyResponse, error) {
	return c.post(ctx, "/recibos", payload)
}

func (c *ColppyClient) post(ctx context.Context, path string, payload interface{}) (*ColppyResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("colppy: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.bridgeURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("colppy: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("colppy: bridge unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("colppy: bridge returned %d", resp.StatusCode)
	}

	var result ColppyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("colppy: decode response: %w", err)
	}
	if result.Resultado != "ok" {
		return &result, fmt.Errorf("colppy: rechazado: %s", result.Mensaje)
	}
	return &result, nil
}
