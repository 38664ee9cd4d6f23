package repository

import (
	"context"

	"distrigest/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	FindByCUIT(ctx context.Context, cuit string) (*model.Cliente, error)
	List(ctx context.Context, incluirInactivos bool) ([]model.Cliente, error)
	Update(ctx context.Context, c *model.Cliente) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *clienteRepo) FindByCUIT(ctx context.Context, cuit string) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Where("cuit = ?", cuit).First(&c).Error
	return &c, err
}

func (r *clienteRepo) List(ctx context.Context, incluirInactivos bool) ([]model.Cliente, error) {
	var clientes []model.Cliente
	q := r.db.WithContext(ctx).Order("razon_social")
	if !incluirInactivos {
		q = q.Where("activo = true")
	}
	err := q.Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clienteRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Cliente{}).Where("id = ?", id).Update("activo", false).Error
}

// ── Cuentas de tesorería ──────────────────────────────────────────────────────

type CuentaTesoreriaRepository interface {
	Create(ctx context.Context, c *model.CuentaTesoreria) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CuentaTesoreria, error)
	ListActivas(ctx context.Context) ([]model.CuentaTesoreria, error)
}

type cuentaTesoreriaRepo struct{ db *gorm.DB }

func NewCuentaTesoreriaRepository(db *gorm.DB) CuentaTesoreriaRepository {
	return &cuentaTesoreriaRepo{db: db}
}

func (r *cuentaTesoreriaRepo) Create(ctx context.Context, c *model.CuentaTesoreria) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cuentaTesoreriaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CuentaTesoreria, error) {
	var c model.CuentaTesoreria
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *cuentaTesoreriaRepo) ListActivas(ctx context.Context) ([]model.CuentaTesoreria, error) {
	var cuentas []model.CuentaTesoreria
	err := r.db.WithContext(ctx).Where("activa = true").Order("nombre").Find(&cuentas).Error
	return cuentas, err
}
