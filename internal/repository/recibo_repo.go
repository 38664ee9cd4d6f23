package repository

import (
	"context"
	"time"

	"distrigest/internal/dto"
	"distrigest/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReciboRepository interface {
	Create(ctx context.Context, tx *gorm.DB, rec *model.Recibo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Recibo, error)
	// FindByIDTx re-reads the recibo inside the caller's transaction under
	// SELECT FOR UPDATE, serializing concurrent aprobar/anular on one recibo.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Recibo, error)
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	NextNumero(ctx context.Context, tx *gorm.DB) (int64, error)
	List(ctx context.Context, filter dto.ReciboFilter) ([]model.Recibo, int64, error)
	// ListPendingSyncs feeds the Colppy retry cron with approved receipts that
	// still need posting.
	ListPendingSyncs(ctx context.Context, due time.Time, limit int) ([]model.Recibo, error)
	UpdateSync(ctx context.Context, rec *model.Recibo) error
	DB() *gorm.DB
}

type reciboRepo struct{ db *gorm.DB }

func NewReciboRepository(db *gorm.DB) ReciboRepository { return &reciboRepo{db: db} }

func (r *reciboRepo) DB() *gorm.DB { return r.db }

func (r *reciboRepo) Create(ctx context.Context, tx *gorm.DB, rec *model.Recibo) error {
	return tx.WithContext(ctx).Create(rec).Error
}

func (r *reciboRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Recibo, error) {
	var rec model.Recibo
	err := r.db.WithContext(ctx).
		Preload("Imputaciones.Factura").
		Preload("Retenciones").
		Preload("MediosPago.CuentaTesoreria").
		Preload("Cliente").
		First(&rec, id).Error
	return &rec, err
}

func (r *reciboRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Recibo, error) {
	var rec model.Recibo
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, id).Error
	return &rec, err
}

func (r *reciboRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Recibo{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *reciboRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int64, error) {
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('recibos_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *reciboRepo) List(ctx context.Context, filter dto.ReciboFilter) ([]model.Recibo, int64, error) {
	var recibos []model.Recibo
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Recibo{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(fecha) = ?", filter.Fecha)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Imputaciones").Preload("Cliente").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&recibos).Error
	return recibos, total, err
}

func (r *reciboRepo) ListPendingSyncs(ctx context.Context, due time.Time, limit int) ([]model.Recibo, error) {
	var recibos []model.Recibo
	err := r.db.WithContext(ctx).
		Where("estado = 'aprobado' AND sync_estado = 'pendiente' AND next_retry_at IS NOT NULL AND next_retry_at <= ?", due).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&recibos).Error
	return recibos, err
}

func (r *reciboRepo) UpdateSync(ctx context.Context, rec *model.Recibo) error {
	return r.db.WithContext(ctx).Model(&model.Recibo{}).Where("id = ?", rec.ID).
		Updates(map[string]interface{}{
			"sync_estado":   rec.SyncEstado,
			"retry_count":   rec.RetryCount,
			"next_retry_at": rec.NextRetryAt,
			"last_error":    rec.LastError,
		}).Error
}
