package repository

import (
	"context"

	"distrigest/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistorialRepository writes and reads the append-only transition ledger.
// There is deliberately no Update or Delete: history is immutable.
type HistorialRepository interface {
	// CreateTx appends one entry inside the caller's transaction so the estado
	// update and its audit record commit as one unit.
	CreateTx(tx *gorm.DB, h *model.HistorialEstado) error
	ListByDocumento(ctx context.Context, tipo string, documentoID uuid.UUID) ([]model.HistorialEstado, error)
}

type historialRepo struct{ db *gorm.DB }

func NewHistorialRepository(db *gorm.DB) HistorialRepository { return &historialRepo{db: db} }

func (r *historialRepo) CreateTx(tx *gorm.DB, h *model.HistorialEstado) error {
	return tx.Create(h).Error
}

func (r *historialRepo) ListByDocumento(ctx context.Context, tipo string, documentoID uuid.UUID) ([]model.HistorialEstado, error) {
	var entradas []model.HistorialEstado
	err := r.db.WithContext(ctx).
		Where("documento_tipo = ? AND documento_id = ?", tipo, documentoID).
		Order("created_at ASC").
		Find(&entradas).Error
	return entradas, err
}
