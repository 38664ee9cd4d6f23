package repository

import (
	"context"
	"time"

	"distrigest/internal/dto"
	"distrigest/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FacturaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, f *model.Factura) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error)
	// FindByIDTx re-reads the invoice inside the caller's transaction under
	// SELECT FOR UPDATE: concurrent imputaciones against the same factura
	// serialize on the row instead of applying over a stale saldo.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Factura, error)
	// ListAbiertas returns the customer's invoices with outstanding balance,
	// oldest first — the selection list for a recibo.
	ListAbiertas(ctx context.Context, clienteID uuid.UUID) ([]model.Factura, error)
	List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error)
	UpdateSaldoYEstadoTx(tx *gorm.DB, id uuid.UUID, saldo decimal.Decimal, estado string) error
	NextNumero(ctx context.Context, tx *gorm.DB) (int64, error)
	// ListPendingSyncs feeds the Colppy retry cron.
	ListPendingSyncs(ctx context.Context, due time.Time, limit int) ([]model.Factura, error)
	UpdateSync(ctx context.Context, f *model.Factura) error
	DB() *gorm.DB
}

type facturaRepo struct{ db *gorm.DB }

func NewFacturaRepository(db *gorm.DB) FacturaRepository { return &facturaRepo{db: db} }

func (r *facturaRepo) DB() *gorm.DB { return r.db }

func (r *facturaRepo) Create(ctx context.Context, tx *gorm.DB, f *model.Factura) error {
	return tx.WithContext(ctx).Create(f).Error
}

func (r *facturaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).Preload("Cliente").First(&f, id).Error
	return &f, err
}

func (r *facturaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&f, id).Error
	return &f, err
}

func (r *facturaRepo) ListAbiertas(ctx context.Context, clienteID uuid.UUID) ([]model.Factura, error) {
	var facturas []model.Factura
	err := r.db.WithContext(ctx).
		Where("cliente_id = ? AND estado IN ('pendiente', 'parcial') AND saldo_pendiente > 0", clienteID).
		Order("fecha_vencimiento ASC NULLS LAST, created_at ASC").
		Find(&facturas).Error
	return facturas, err
}

func (r *facturaRepo) List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error) {
	var facturas []model.Factura
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Factura{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Cliente").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&facturas).Error
	return facturas, total, err
}

func (r *facturaRepo) UpdateSaldoYEstadoTx(tx *gorm.DB, id uuid.UUID, saldo decimal.Decimal, estado string) error {
	return tx.Model(&model.Factura{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"saldo_pendiente": saldo,
			"estado":          estado,
		}).Error
}

func (r *facturaRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int64, error) {
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('facturas_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *facturaRepo) ListPendingSyncs(ctx context.Context, due time.Time, limit int) ([]model.Factura, error) {
	var facturas []model.Factura
	err := r.db.WithContext(ctx).
		Where("sync_estado = 'pendiente' AND next_retry_at IS NOT NULL AND next_retry_at <= ?", due).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&facturas).Error
	return facturas, err
}

func (r *facturaRepo) UpdateSync(ctx context.Context, f *model.Factura) error {
	return r.db.WithContext(ctx).Model(&model.Factura{}).Where("id = ?", f.ID).
		Updates(map[string]interface{}{
			"sync_estado":   f.SyncEstado,
			"retry_count":   f.RetryCount,
			"next_retry_at": f.NextRetryAt,
			"last_error":    f.LastError,
		}).Error
}
