package service

import (
	"context"
	"time"

	"distrigest/internal/dto"
	"distrigest/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stubs en memoria para los repositorios. DB() devuelve nil, así runTx
// ejecuta el cuerpo directamente sin transacción real; los métodos *Tx
// ignoran el tx nulo y mutan los mapas.

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClienteRepo) FindByCUIT(_ context.Context, cuit string) (*model.Cliente, error) {
	for _, c := range r.clientes {
		if c.CUIT == cuit {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClienteRepo) List(_ context.Context, incluirInactivos bool) ([]model.Cliente, error) {
	var out []model.Cliente
	for _, c := range r.clientes {
		if c.Activo || incluirInactivos {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	if _, ok := r.clientes[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := r.clientes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Activo = false
	return nil
}

type stubCuentaRepo struct {
	cuentas map[uuid.UUID]*model.CuentaTesoreria
}

func newStubCuentaRepo() *stubCuentaRepo {
	return &stubCuentaRepo{cuentas: make(map[uuid.UUID]*model.CuentaTesoreria)}
}

func (r *stubCuentaRepo) Create(_ context.Context, c *model.CuentaTesoreria) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cuentas[c.ID] = c
	return nil
}

func (r *stubCuentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CuentaTesoreria, error) {
	c, ok := r.cuentas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCuentaRepo) ListActivas(_ context.Context) ([]model.CuentaTesoreria, error) {
	var out []model.CuentaTesoreria
	for _, c := range r.cuentas {
		if c.Activa {
			out = append(out, *c)
		}
	}
	return out, nil
}

type stubHistorialRepo struct {
	entradas []model.HistorialEstado
}

func newStubHistorialRepo() *stubHistorialRepo { return &stubHistorialRepo{} }

func (r *stubHistorialRepo) CreateTx(_ *gorm.DB, h *model.HistorialEstado) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.CreatedAt = time.Now()
	r.entradas = append(r.entradas, *h)
	return nil
}

func (r *stubHistorialRepo) ListByDocumento(_ context.Context, tipo string, documentoID uuid.UUID) ([]model.HistorialEstado, error) {
	return r.porDocumento(tipo, documentoID), nil
}

func (r *stubHistorialRepo) porDocumento(tipo string, documentoID uuid.UUID) []model.HistorialEstado {
	var out []model.HistorialEstado
	for _, e := range r.entradas {
		if e.DocumentoTipo == tipo && e.DocumentoID == documentoID {
			out = append(out, e)
		}
	}
	return out
}

type stubPresupuestoRepo struct {
	presupuestos map[uuid.UUID]*model.Presupuesto
	ultimoNumero int64
}

func newStubPresupuestoRepo() *stubPresupuestoRepo {
	return &stubPresupuestoRepo{presupuestos: make(map[uuid.UUID]*model.Presupuesto)}
}

func (r *stubPresupuestoRepo) Create(_ context.Context, _ *gorm.DB, p *model.Presupuesto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Items {
		if p.Items[i].ID == uuid.Nil {
			p.Items[i].ID = uuid.New()
		}
		p.Items[i].PresupuestoID = p.ID
	}
	r.presupuestos[p.ID] = p
	return nil
}

func (r *stubPresupuestoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Presupuesto, error) {
	p, ok := r.presupuestos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPresupuestoRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	p, ok := r.presupuestos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Estado = estado
	return nil
}

func (r *stubPresupuestoRepo) UpdateRemitoIDTx(_ *gorm.DB, id uuid.UUID, remitoID *uuid.UUID) error {
	p, ok := r.presupuestos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.RemitoID = remitoID
	return nil
}

func (r *stubPresupuestoRepo) NextNumero(_ context.Context, _ *gorm.DB) (int64, error) {
	r.ultimoNumero++
	return r.ultimoNumero, nil
}

func (r *stubPresupuestoRepo) List(_ context.Context, _ dto.PresupuestoFilter) ([]model.Presupuesto, int64, error) {
	var out []model.Presupuesto
	for _, p := range r.presupuestos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPresupuestoRepo) ListVencidos(_ context.Context, limit int) ([]model.Presupuesto, error) {
	ahora := time.Now()
	var out []model.Presupuesto
	for _, p := range r.presupuestos {
		if len(out) >= limit {
			break
		}
		if (p.Estado == "enviado" || p.Estado == "aceptado") &&
			p.FechaVencimiento != nil && p.FechaVencimiento.Before(ahora) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPresupuestoRepo) DB() *gorm.DB { return nil }

type stubRemitoRepo struct {
	remitos      map[uuid.UUID]*model.Remito
	ultimoNumero int64
}

func newStubRemitoRepo() *stubRemitoRepo {
	return &stubRemitoRepo{remitos: make(map[uuid.UUID]*model.Remito)}
}

func (r *stubRemitoRepo) Create(_ context.Context, _ *gorm.DB, rem *model.Remito) error {
	if rem.ID == uuid.Nil {
		rem.ID = uuid.New()
	}
	for i := range rem.Items {
		if rem.Items[i].ID == uuid.Nil {
			rem.Items[i].ID = uuid.New()
		}
		rem.Items[i].RemitoID = rem.ID
	}
	r.remitos[rem.ID] = rem
	return nil
}

func (r *stubRemitoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Remito, error) {
	rem, ok := r.remitos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rem, nil
}

func (r *stubRemitoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Remito, error) {
	rem, ok := r.remitos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rem, nil
}

func (r *stubRemitoRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	rem, ok := r.remitos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rem.Estado = estado
	return nil
}

func (r *stubRemitoRepo) UpdateItemFacturacionTx(_ *gorm.DB, itemID uuid.UUID, cantidadFacturada int, envioPendiente bool) error {
	for _, rem := range r.remitos {
		for i := range rem.Items {
			if rem.Items[i].ID == itemID {
				rem.Items[i].CantidadFacturada = cantidadFacturada
				rem.Items[i].EnvioPendiente = envioPendiente
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubRemitoRepo) ClearEnvioPendiente(_ context.Context, remitoID uuid.UUID) error {
	rem, ok := r.remitos[remitoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range rem.Items {
		rem.Items[i].EnvioPendiente = false
	}
	return nil
}

func (r *stubRemitoRepo) NextNumero(_ context.Context, _ *gorm.DB) (int64, error) {
	r.ultimoNumero++
	return r.ultimoNumero, nil
}

func (r *stubRemitoRepo) List(_ context.Context, _ dto.RemitoFilter) ([]model.Remito, int64, error) {
	var out []model.Remito
	for _, rem := range r.remitos {
		out = append(out, *rem)
	}
	return out, int64(len(out)), nil
}

func (r *stubRemitoRepo) ListConPendientes(_ context.Context) ([]model.Remito, error) {
	var out []model.Remito
	for _, rem := range r.remitos {
		if rem.Estado != "confirmado" {
			continue
		}
		for _, it := range rem.Items {
			if it.Cantidad-it.CantidadFacturada > 0 {
				out = append(out, *rem)
				break
			}
		}
	}
	return out, nil
}

func (r *stubRemitoRepo) DB() *gorm.DB { return nil }

type stubFacturaRepo struct {
	facturas     map[uuid.UUID]*model.Factura
	ultimoNumero int64
}

func newStubFacturaRepo() *stubFacturaRepo {
	return &stubFacturaRepo{facturas: make(map[uuid.UUID]*model.Factura)}
}

func (r *stubFacturaRepo) Create(_ context.Context, _ *gorm.DB, f *model.Factura) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	r.facturas[f.ID] = f
	return nil
}

func (r *stubFacturaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Factura, error) {
	f, ok := r.facturas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f, nil
}

func (r *stubFacturaRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Factura, error) {
	f, ok := r.facturas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f, nil
}

func (r *stubFacturaRepo) ListAbiertas(_ context.Context, clienteID uuid.UUID) ([]model.Factura, error) {
	var out []model.Factura
	for _, f := range r.facturas {
		if f.ClienteID == clienteID && f.Estado != "anulada" &&
			f.SaldoPendiente.GreaterThanOrEqual(decimal.NewFromFloat(0.01)) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *stubFacturaRepo) List(_ context.Context, _ dto.FacturaFilter) ([]model.Factura, int64, error) {
	var out []model.Factura
	for _, f := range r.facturas {
		out = append(out, *f)
	}
	return out, int64(len(out)), nil
}

func (r *stubFacturaRepo) UpdateSaldoYEstadoTx(_ *gorm.DB, id uuid.UUID, saldo decimal.Decimal, estado string) error {
	f, ok := r.facturas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.SaldoPendiente = saldo
	f.Estado = estado
	return nil
}

func (r *stubFacturaRepo) NextNumero(_ context.Context, _ *gorm.DB) (int64, error) {
	r.ultimoNumero++
	return r.ultimoNumero, nil
}

func (r *stubFacturaRepo) ListPendingSyncs(_ context.Context, _ time.Time, _ int) ([]model.Factura, error) {
	return nil, nil
}

func (r *stubFacturaRepo) UpdateSync(_ context.Context, f *model.Factura) error {
	r.facturas[f.ID] = f
	return nil
}

func (r *stubFacturaRepo) DB() *gorm.DB { return nil }

type stubReciboRepo struct {
	recibos      map[uuid.UUID]*model.Recibo
	ultimoNumero int64
}

func newStubReciboRepo() *stubReciboRepo {
	return &stubReciboRepo{recibos: make(map[uuid.UUID]*model.Recibo)}
}

func (r *stubReciboRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Recibo, error) {
	rec, ok := r.recibos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rec, nil
}

func (r *stubReciboRepo) Create(_ context.Context, _ *gorm.DB, rec *model.Recibo) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	for i := range rec.Imputaciones {
		if rec.Imputaciones[i].ID == uuid.Nil {
			rec.Imputaciones[i].ID = uuid.New()
		}
		rec.Imputaciones[i].ReciboID = rec.ID
	}
	r.recibos[rec.ID] = rec
	return nil
}

func (r *stubReciboRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Recibo, error) {
	rec, ok := r.recibos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rec, nil
}

func (r *stubReciboRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	rec, ok := r.recibos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rec.Estado = estado
	return nil
}

func (r *stubReciboRepo) NextNumero(_ context.Context, _ *gorm.DB) (int64, error) {
	r.ultimoNumero++
	return r.ultimoNumero, nil
}

func (r *stubReciboRepo) List(_ context.Context, _ dto.ReciboFilter) ([]model.Recibo, int64, error) {
	var out []model.Recibo
	for _, rec := range r.recibos {
		out = append(out, *rec)
	}
	return out, int64(len(out)), nil
}

func (r *stubReciboRepo) ListPendingSyncs(_ context.Context, _ time.Time, _ int) ([]model.Recibo, error) {
	return nil, nil
}

func (r *stubReciboRepo) UpdateSync(_ context.Context, rec *model.Recibo) error {
	r.recibos[rec.ID] = rec
	return nil
}

func (r *stubReciboRepo) DB() *gorm.DB { return nil }

// clienteDePrueba carga un cliente activo listo para usar en los fixtures.
func clienteDePrueba(repo *stubClienteRepo) *model.Cliente {
	email := "compras@nortesur.com.ar"
	c := &model.Cliente{
		ID:           uuid.New(),
		RazonSocial:  "Distribuidora Norte Sur SA",
		CUIT:         "30712345678",
		Email:        &email,
		CondicionIVA: "responsable_inscripto",
		Moneda:       "ARS",
		Activo:       true,
	}
	repo.clientes[c.ID] = c
	return c
}
