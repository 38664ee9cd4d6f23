package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"distrigest/internal/config"
	"distrigest/internal/infra"
	"distrigest/internal/repository"
	"distrigest/internal/router"
	"distrigest/internal/service"
	"distrigest/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Async side effects (Colppy sync, recibo email) run on a goroutine pool
	// consuming Redis queues. Workers are wired here (composition root) so the
	// pool has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	colppyClient := infra.NewColppyClient(cfg.ColppyBridgeURL)
	colppyCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	facturaRepo := repository.NewFacturaRepository(db)
	reciboRepo := repository.NewReciboRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	remitoRepo := repository.NewRemitoRepository(db)

	colppyWorker := worker.NewColppyWorker(colppyClient, facturaRepo, reciboRepo, clienteRepo, remitoRepo)
	emailWorker := worker.NewEmailWorker(mailer, reciboRepo, rdb, cfg.PDFStoragePath)

	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.Handlers{
		Colppy: colppyWorker,
		Email:  emailWorker,
	})

	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		FacturaRepo: facturaRepo,
		ReciboRepo:  reciboRepo,
		RemitoRepo:  remitoRepo,
		Worker:      colppyWorker,
		CB:          colppyCB,
		RDB:         rdb,
	})

	// Nightly sweep: enviado/aceptado quotes past their fecha_vencimiento
	// move to vencido with a system ledger entry.
	presupuestoSvc := service.NewPresupuestoService(
		repository.NewPresupuestoRepository(db),
		remitoRepo,
		clienteRepo,
		repository.NewHistorialRepository(db),
	)
	startExpiracionCron(ctx, presupuestoSvc)

	r := router.New(cfg, db, rdb, colppyCB, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("DistriGest backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

// startExpiracionCron runs the quote expiration sweep once at boot and then
// every hour. The service itself only touches quotes whose vencimiento passed,
// so the hourly cadence just bounds how stale an expired quote can look.
func startExpiracionCron(ctx context.Context, svc service.PresupuestoService) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		run := func() {
			n, err := svc.ExpirarVencidos(ctx)
			if err != nil {
				log.Error().Err(err).Msg("expiracion_cron: sweep failed")
				return
			}
			if n > 0 {
				log.Info().Int("expirados", n).Msg("expiracion_cron: quotes expired")
			}
		}

		run()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}
