package worker

// colppy_worker.go
// Processes ERP sync jobs from QueueColppy: pushes newly created facturas and
// approved recibos to the Colppy bridge. Implements exponential backoff
// (max 3 in-line retries); anything still failing is left for the retry cron.

import (
	"context"
	"encoding/json"
	"time"

	"distrigest/internal/infra"
	"distrigest/internal/model"
	"distrigest/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ColppyJobPayload is the job envelope sent to QueueColppy.
type ColppyJobPayload struct {
	Documento string `json:"documento"` // factura | recibo
	ID        string `json:"id"`
}

// ColppyWorker syncs local documents into the Colppy ERP through the bridge.
type ColppyWorker struct {
	client      *infra.ColppyClient
	facturaRepo repository.FacturaRepository
	reciboRepo  repository.ReciboRepository
	clienteRepo repository.ClienteRepository
	remitoRepo  repository.RemitoRepository
}

func NewColppyWorker(
	client *infra.ColppyClient,
	facturaRepo repository.FacturaRepository,
	reciboRepo repository.ReciboRepository,
	clienteRepo repository.ClienteRepository,
	remitoRepo repository.RemitoRepository,
) *ColppyWorker {
	return &ColppyWorker{
		client:      client,
		facturaRepo: facturaRepo,
		reciboRepo:  reciboRepo,
		clienteRepo: clienteRepo,
		remitoRepo:  remitoRepo,
	}
}

// Process handles a single sync job. Failures leave the document with
// sync_estado="pendiente" and a scheduled next_retry_at so the retry cron
// picks it up; the document itself is never touched.
func (w *ColppyWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ColppyJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("colppy_worker: invalid payload")
		return
	}
	id, err := uuid.Parse(payload.ID)
	if err != nil {
		log.Error().Str("id", payload.ID).Msg("colppy_worker: invalid document id")
		return
	}

	switch payload.Documento {
	case "factura":
		w.syncFactura(ctx, id)
	case "recibo":
		w.syncRecibo(ctx, id)
	default:
		log.Warn().Str("documento", payload.Documento).Msg("colppy_worker: unknown document kind")
	}
}

func (w *ColppyWorker) syncFactura(ctx context.Context, id uuid.UUID) {
	f, err := w.facturaRepo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("factura_id", id.String()).Msg("colppy_worker: factura not found")
		return
	}
	cliente, err := w.clienteRepo.FindByID(ctx, f.ClienteID)
	if err != nil {
		log.Error().Err(err).Str("factura_id", id.String()).Msg("colppy_worker: cliente not found")
		return
	}

	syncErr := withRetry(ctx, 3, func(attempt int) error {
		_, err := w.client.RegistrarFactura(ctx, infra.ColppyFacturaPayload{
			FacturaID:    f.ID.String(),
			Tipo:         f.Tipo,
			PuntoDeVenta: f.PuntoDeVenta,
			Numero:       f.Numero,
			CUIT:         cliente.CUIT,
			Moneda:       f.Moneda,
			MontoNeto:    f.MontoNeto.InexactFloat64(),
			MontoIVA:     f.MontoIVA.InexactFloat64(),
			MontoTotal:   f.MontoTotal.InexactFloat64(),
		})
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("factura_id", id.String()).
				Msg("colppy_worker: sync attempt failed, retrying")
		}
		return err
	})

	if syncErr != nil {
		marcarFacturaFallida(ctx, w.facturaRepo, f, syncErr)
		return
	}
	f.SyncEstado = "sincronizado"
	f.NextRetryAt = nil
	f.LastError = nil
	if err := w.facturaRepo.UpdateSync(ctx, f); err != nil {
		log.Error().Err(err).Str("factura_id", id.String()).Msg("colppy_worker: failed to persist sync state")
		return
	}
	// The submission resolved: release the envio_pendiente mark on the
	// remito's lines.
	if f.RemitoID != nil {
		if err := w.remitoRepo.ClearEnvioPendiente(ctx, *f.RemitoID); err != nil {
			log.Error().Err(err).Str("remito_id", f.RemitoID.String()).Msg("colppy_worker: failed to release remito lines")
		}
	}
	log.Info().Str("factura_id", id.String()).Msg("colppy_worker: factura synced")
}

func (w *ColppyWorker) syncRecibo(ctx context.Context, id uuid.UUID) {
	rec, err := w.reciboRepo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("recibo_id", id.String()).Msg("colppy_worker: recibo not found")
		return
	}
	cliente, err := w.clienteRepo.FindByID(ctx, rec.ClienteID)
	if err != nil {
		log.Error().Err(err).Str("recibo_id", id.String()).Msg("colppy_worker: cliente not found")
		return
	}

	imputaciones := make([]infra.ColppyImputacionPayload, 0, len(rec.Imputaciones))
	for _, imp := range rec.Imputaciones {
		imputaciones = append(imputaciones, infra.ColppyImputacionPayload{
			FacturaID: imp.FacturaID.String(),
			Monto:     imp.MontoImputado.InexactFloat64(),
		})
	}

	syncErr := withRetry(ctx, 3, func(attempt int) error {
		_, err := w.client.RegistrarRecibo(ctx, infra.ColppyReciboPayload{
			ReciboID:     rec.ID.String(),
			Numero:       rec.Numero,
			CUIT:         cliente.CUIT,
			Fecha:        rec.Fecha.Format("2006-01-02"),
			Moneda:       rec.Moneda,
			Imputaciones: imputaciones,
			TotalACobrar: rec.TotalACobrar.InexactFloat64(),
			TotalCobrado: rec.TotalCobrado.InexactFloat64(),
		})
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("recibo_id", id.String()).
				Msg("colppy_worker: sync attempt failed, retrying")
		}
		return err
	})

	if syncErr != nil {
		marcarReciboFallido(ctx, w.reciboRepo, rec, syncErr)
		return
	}
	rec.SyncEstado = "sincronizado"
	rec.NextRetryAt = nil
	rec.LastError = nil
	if err := w.reciboRepo.UpdateSync(ctx, rec); err != nil {
		log.Error().Err(err).Str("recibo_id", id.String()).Msg("colppy_worker: failed to persist sync state")
		return
	}
	log.Info().Str("recibo_id", id.String()).Msg("colppy_worker: recibo synced")
}

func marcarFacturaFallida(ctx context.Context, repo repository.FacturaRepository, f *model.Factura, cause error) {
	f.RetryCount++
	msg := cause.Error()
	f.LastError = &msg
	next := time.Now().Add(computeRetryBackoff(f.RetryCount))
	f.NextRetryAt = &next
	if err := repo.UpdateSync(ctx, f); err != nil {
		log.Error().Err(err).Str("factura_id", f.ID.String()).Msg("colppy_worker: failed to schedule retry")
	}
}

func marcarReciboFallido(ctx context.Context, repo repository.ReciboRepository, rec *model.Recibo, cause error) {
	rec.RetryCount++
	msg := cause.Error()
	rec.LastError = &msg
	next := time.Now().Add(computeRetryBackoff(rec.RetryCount))
	rec.NextRetryAt = &next
	if err := repo.UpdateSync(ctx, rec); err != nil {
		log.Error().Err(err).Str("recibo_id", rec.ID.String()).Msg("colppy_worker: failed to schedule retry")
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			// 1s, 2s … (exponential backoff)
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
