package worker

// email_worker.go
// Processes email jobs from QueueEmail: renders the approved recibo as a PDF
// and mails it to the customer via SMTP.

import (
	"context"
	"encoding/json"
	"fmt"

	"distrigest/internal/infra"
	"distrigest/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ReciboEmailJobPayload is the job envelope sent to QueueEmail.
type ReciboEmailJobPayload struct {
	ReciboID string `json:"recibo_id"`
	ToEmail  string `json:"to_email"`
}

// EmailWorker mails PDF receipts to customers. A job that cannot be rendered
// or sent goes to dlq:jobs:email; emails are not retried automatically.
type EmailWorker struct {
	mailer         *infra.Mailer
	reciboRepo     repository.ReciboRepository
	rdb            *redis.Client
	pdfStoragePath string
}

func NewEmailWorker(mailer *infra.Mailer, reciboRepo repository.ReciboRepository, rdb *redis.Client, pdfStoragePath string) *EmailWorker {
	return &EmailWorker{mailer: mailer, reciboRepo: reciboRepo, rdb: rdb, pdfStoragePath: pdfStoragePath}
}

// Process generates the recibo PDF and sends it as attachment.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReciboEmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return
	}
	id, err := uuid.Parse(payload.ReciboID)
	if err != nil {
		log.Error().Str("recibo_id", payload.ReciboID).Msg("email_worker: invalid recibo_id")
		return
	}

	rec, err := w.reciboRepo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("recibo_id", payload.ReciboID).Msg("email_worker: recibo not found")
		return
	}

	pdfPath, err := infra.GenerateReciboPDF(rec, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("recibo_id", payload.ReciboID).Msg("email_worker: PDF generation failed")
		SendToDLQ(ctx, w.rdb, QueueEmail, "email", raw, "pdf generation failed: "+err.Error(), 1)
		return
	}

	subject := fmt.Sprintf("Recibo de cobranza N° %d", rec.Numero)
	body := fmt.Sprintf("Adjuntamos el recibo N° %d por $%s.\nGracias por su pago.",
		rec.Numero, rec.TotalCobrado.StringFixed(2))
	if err := w.mailer.SendComprobante(payload.ToEmail, subject, body, pdfPath); err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		SendToDLQ(ctx, w.rdb, QueueEmail, "email", raw, "smtp send failed: "+err.Error(), 1)
		return
	}
	log.Info().Str("to", payload.ToEmail).Str("recibo_id", payload.ReciboID).Msg("email_worker: recibo sent")
}
