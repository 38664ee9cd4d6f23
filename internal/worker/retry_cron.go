package worker

// retry_cron.go
// Background goroutine that periodically re-attempts Colppy syncs for
// facturas and recibos stuck in sync_estado='pendiente' with a next_retry_at
// in the past. Uses the Circuit Breaker to avoid hammering a downed bridge.

import (
	"context"
	"fmt"
	"time"

	"distrigest/internal/infra"
	"distrigest/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10

	// MaxSyncRetries caps re-attempts before a document lands in the DLQ
	// with sync_estado='error' for manual inspection.
	MaxSyncRetries = 5
)

// computeRetryBackoff: 1m, 2m, 4m … capped at 30m.
func computeRetryBackoff(retryCount int) time.Duration {
	backoff := time.Minute << uint(retryCount-1)
	if backoff > 30*time.Minute {
		backoff = 30 * time.Minute
	}
	return backoff
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	FacturaRepo repository.FacturaRepository
	ReciboRepo  repository.ReciboRepository
	RemitoRepo  repository.RemitoRepository
	Worker      *ColppyWorker
	CB          *infra.CircuitBreaker
	RDB         *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries due documents and re-attempts the sync through the CB.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed bridge
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	now := time.Now()
	retryFacturas(ctx, cfg, now)
	retryRecibos(ctx, cfg, now)
}

func retryFacturas(ctx context.Context, cfg RetryCronConfig, now time.Time) {
	facturas, err := cfg.FacturaRepo.ListPendingSyncs(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending facturas")
		return
	}
	for i := range facturas {
		f := &facturas[i]

		// Check CB state before each call — it may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}
		if f.RetryCount >= MaxSyncRetries {
			f.SyncEstado = "error"
			f.NextRetryAt = nil
			_ = cfg.FacturaRepo.UpdateSync(ctx, f)
			// Giving up also resolves the submission: the remito's lines drop
			// their envio_pendiente mark while the factura waits in the DLQ.
			if f.RemitoID != nil {
				_ = cfg.RemitoRepo.ClearEnvioPendiente(ctx, *f.RemitoID)
			}
			payload := fmt.Sprintf(`{"documento":"factura","id":"%s"}`, f.ID)
			SendToDLQ(ctx, cfg.RDB, QueueColppy, "colppy", []byte(payload),
				fmt.Sprintf("max retries (%d) exceeded", MaxSyncRetries), f.RetryCount)
			continue
		}

		cbErr := cfg.CB.Execute(func() error {
			cfg.Worker.syncFactura(ctx, f.ID)
			ref, err := cfg.FacturaRepo.FindByID(ctx, f.ID)
			if err != nil {
				return err
			}
			if ref.SyncEstado != "sincronizado" {
				return fmt.Errorf("factura %d sigue pendiente", ref.Numero)
			}
			return nil
		})
		if cbErr != nil {
			log.Warn().Err(cbErr).Str("factura_id", f.ID.String()).Msg("retry_cron: factura retry failed")
		}
	}
}

func retryRecibos(ctx context.Context, cfg RetryCronConfig, now time.Time) {
	recibos, err := cfg.ReciboRepo.ListPendingSyncs(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending recibos")
		return
	}
	for i := range recibos {
		rec := &recibos[i]

		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}
		if rec.RetryCount >= MaxSyncRetries {
			rec.SyncEstado = "error"
			rec.NextRetryAt = nil
			_ = cfg.ReciboRepo.UpdateSync(ctx, rec)
			payload := fmt.Sprintf(`{"documento":"recibo","id":"%s"}`, rec.ID)
			SendToDLQ(ctx, cfg.RDB, QueueColppy, "colppy", []byte(payload),
				fmt.Sprintf("max retries (%d) exceeded", MaxSyncRetries), rec.RetryCount)
			continue
		}

		cbErr := cfg.CB.Execute(func() error {
			cfg.Worker.syncRecibo(ctx, rec.ID)
			ref, err := cfg.ReciboRepo.FindByID(ctx, rec.ID)
			if err != nil {
				return err
			}
			if ref.SyncEstado != "sincronizado" {
				return fmt.Errorf("recibo %d sigue pendiente", ref.Numero)
			}
			return nil
		})
		if cbErr != nil {
			log.Warn().Err(cbErr).Str("recibo_id", rec.ID.String()).Msg("retry_cron: recibo retry failed")
		}
	}
}
