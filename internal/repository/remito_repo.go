package repository

import (
	"context"

	"distrigest/internal/dto"
	"distrigest/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RemitoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, rem *model.Remito) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Remito, error)
	// FindByIDTx re-reads the remito and its items inside the caller's
	// transaction, locking the remito row so concurrent invoicing of the
	// same remito serializes and remaining quantities are computed from
	// committed data.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Remito, error)
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	UpdateItemFacturacionTx(tx *gorm.DB, itemID uuid.UUID, cantidadFacturada int, envioPendiente bool) error
	// ClearEnvioPendiente releases the in-flight mark on a remito's lines once
	// the Colppy submission of its factura resolves.
	ClearEnvioPendiente(ctx context.Context, remitoID uuid.UUID) error
	NextNumero(ctx context.Context, tx *gorm.DB) (int64, error)
	List(ctx context.Context, filter dto.RemitoFilter) ([]model.Remito, int64, error)
	// ListConPendientes returns confirmed remitos that still have uninvoiced
	// quantity, for the triage board.
	ListConPendientes(ctx context.Context) ([]model.Remito, error)
	DB() *gorm.DB
}

type remitoRepo struct{ db *gorm.DB }

func NewRemitoRepository(db *gorm.DB) RemitoRepository { return &remitoRepo{db: db} }

func (r *remitoRepo) DB() *gorm.DB { return r.db }

func (r *remitoRepo) Create(ctx context.Context, tx *gorm.DB, rem *model.Remito) error {
	return tx.WithContext(ctx).Create(rem).Error
}

func (r *remitoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Remito, error) {
	var rem model.Remito
	err := r.db.WithContext(ctx).Preload("Items").Preload("Cliente").First(&rem, id).Error
	return &rem, err
}

func (r *remitoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Remito, error) {
	var rem model.Remito
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rem, id).Error; err != nil {
		return nil, err
	}
	// The items query runs after the row lock is held, so it sees every
	// previously committed cantidad_facturada.
	err := tx.Where("remito_id = ?", id).Find(&rem.Items).Error
	return &rem, err
}

func (r *remitoRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Remito{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *remitoRepo) UpdateItemFacturacionTx(tx *gorm.DB, itemID uuid.UUID, cantidadFacturada int, envioPendiente bool) error {
	return tx.Model(&model.RemitoItem{}).Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"cantidad_facturada": cantidadFacturada,
			"envio_pendiente":    envioPendiente,
		}).Error
}

func (r *remitoRepo) ClearEnvioPendiente(ctx context.Context, remitoID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.RemitoItem{}).
		Where("remito_id = ? AND envio_pendiente", remitoID).
		Update("envio_pendiente", false).Error
}

func (r *remitoRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int64, error) {
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('remitos_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *remitoRepo) List(ctx context.Context, filter dto.RemitoFilter) ([]model.Remito, int64, error) {
	var remitos []model.Remito
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Remito{})
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
		Find(&remitos).Error
	return remitos, total, err
}

func (r *remitoRepo) ListConPendientes(ctx context.Context) ([]model.Remito, error) {
	var remitos []model.Remito
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Cliente").
		Where("estado = 'confirmado'").
		Where("EXISTS (SELECT 1 FROM remito_items ri WHERE ri.remito_id = remitos.id AND ri.cantidad > ri.cantidad_facturada)").
		Order("created_at ASC").
		Find(&remitos).Error
	return remitos, err
}
