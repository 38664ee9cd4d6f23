package repository

import (
	"context"

	"distrigest/internal/dto"
	"distrigest/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PresupuestoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Presupuesto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Presupuesto, error)
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	UpdateRemitoIDTx(tx *gorm.DB, id uuid.UUID, remitoID *uuid.UUID) error
	NextNumero(ctx context.Context, tx *gorm.DB) (int64, error)
	List(ctx context.Context, filter dto.PresupuestoFilter) ([]model.Presupuesto, int64, error)
	// ListVencidos returns accepted/sent quotes past their expiry date, for the
	// nightly expiration sweep.
	ListVencidos(ctx context.Context, limit int) ([]model.Presupuesto, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type presupuestoRepo struct{ db *gorm.DB }

func NewPresupuestoRepository(db *gorm.DB) PresupuestoRepository { return &presupuestoRepo{db: db} }

func (r *presupuestoRepo) DB() *gorm.DB { return r.db }

func (r *presupuestoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Presupuesto) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *presupuestoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Presupuesto, error) {
	var p model.Presupuesto
	err := r.db.WithContext(ctx).Preload("Items").Preload("Cliente").First(&p, id).Error
	return &p, err
}

func (r *presupuestoRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Presupuesto{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *presupuestoRepo) UpdateRemitoIDTx(tx *gorm.DB, id uuid.UUID, remitoID *uuid.UUID) error {
	return tx.Model(&model.Presupuesto{}).Where("id = ?", id).Update("remito_id", remitoID).Error
}

func (r *presupuestoRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int64, error) {
	// PostgreSQL sequence keeps numbering atomic under concurrent creation
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('presupuestos_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *presupuestoRepo) List(ctx context.Context, filter dto.PresupuestoFilter) ([]model.Presupuesto, int64, error) {
	var presupuestos []model.Presupuesto
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Presupuesto{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items").Preload("Cliente").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&presupuestos).Error
	return presupuestos, total, err
}

func (r *presupuestoRepo) ListVencidos(ctx context.Context, limit int) ([]model.Presupuesto, error) {
	var presupuestos []model.Presupuesto
	err := r.db.WithContext(ctx).
		Where("estado IN ('borrador', 'enviado') AND fecha_vencimiento IS NOT NULL AND fecha_vencimiento < NOW()").
		Limit(limit).
		Find(&presupuestos).Error
	return presupuestos, err
}
