package service

import (
	"context"
	"testing"
	"time"

	"distrigest/internal/domain"
	"distrigest/internal/dto"
	"distrigest/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type presupuestoFixture struct {
	svc       PresupuestoService
	repo      *stubPresupuestoRepo
	remitos   *stubRemitoRepo
	historial *stubHistorialRepo
	cliente   *model.Cliente
}

func nuevoPresupuestoFixture() *presupuestoFixture {
	repo := newStubPresupuestoRepo()
	remitos := newStubRemitoRepo()
	clientes := newStubClienteRepo()
	historial := newStubHistorialRepo()
	return &presupuestoFixture{
		svc:       NewPresupuestoService(repo, remitos, clientes, historial),
		repo:      repo,
		remitos:   remitos,
		historial: historial,
		cliente:   clienteDePrueba(clientes),
	}
}

func (f *presupuestoFixture) cargar(estado string, items ...model.PresupuestoItem) *model.Presupuesto {
	subtotal := decimal.Zero
	for i := range items {
		items[i].ID = uuid.New()
		items[i].Subtotal = items[i].PrecioUnitario.Mul(decimal.NewFromInt(int64(items[i].Cantidad)))
		subtotal = subtotal.Add(items[i].Subtotal)
	}
	iva := subtotal.Mul(decimal.NewFromFloat(0.21)).Round(2)
	f.repo.ultimoNumero++
	p := &model.Presupuesto{
		ID:         uuid.New(),
		Numero:     f.repo.ultimoNumero,
		ClienteID:  f.cliente.ID,
		VendedorID: uuid.New(),
		Estado:     estado,
		Moneda:     "ARS",
		Subtotal:   subtotal,
		MontoIVA:   iva,
		Total:      subtotal.Add(iva),
		Items:      items,
		Cliente:    f.cliente,
	}
	f.repo.presupuestos[p.ID] = p
	return p
}

func TestCrearPresupuestoCalculaTotales(t *testing.T) {
	f := nuevoPresupuestoFixture()
	vendedor := uuid.New()

	resp, err := f.svc.Crear(context.Background(), vendedor, dto.CrearPresupuestoRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemPresupuestoRequest{
			{Descripcion: "Aceite girasol x12", Cantidad: 10, EnStock: true, PrecioUnitario: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "borrador", resp.Estado)
	assert.Equal(t, int64(1), resp.Numero)
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(1000)), "subtotal %s", resp.Subtotal)
	assert.True(t, resp.MontoIVA.Equal(decimal.NewFromInt(210)), "iva %s", resp.MontoIVA)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(1210)), "total %s", resp.Total)
	assert.Equal(t, vendedor.String(), resp.VendedorID)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 0, resp.Items[0].CantidadFacturada)
}

func TestCrearPresupuestoClienteInactivo(t *testing.T) {
	f := nuevoPresupuestoFixture()
	f.cliente.Activo = false

	_, err := f.svc.Crear(context.Background(), uuid.New(), dto.CrearPresupuestoRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemPresupuestoRequest{
			{Descripcion: "Harina 000", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(50)},
		},
	})
	require.EqualError(t, err, "el cliente está inactivo")
}

func TestTransicionRegistraHistorial(t *testing.T) {
	f := nuevoPresupuestoFixture()
	p := f.cargar("borrador", model.PresupuestoItem{Descripcion: "Yerba", Cantidad: 5, EnStock: true, PrecioUnitario: decimal.NewFromInt(200)})
	usuario := uuid.New()

	resp, err := f.svc.Transicion(context.Background(), p.ID, usuario, dto.TransicionRequest{Estado: "enviado"})
	require.NoError(t, err)
	assert.Equal(t, "enviado", resp.Presupuesto.Estado)
	assert.Empty(t, resp.Vinculados)

	entradas := f.historial.porDocumento("presupuesto", p.ID)
	require.Len(t, entradas, 1)
	assert.Equal(t, "borrador", entradas[0].Desde)
	assert.Equal(t, "enviado", entradas[0].Hacia)
	assert.False(t, entradas[0].Sistema)
	require.NotNil(t, entradas[0].PorUsuario)
	assert.Equal(t, usuario, *entradas[0].PorUsuario)
}

func TestTransicionRechazoExigeMotivo(t *testing.T) {
	f := nuevoPresupuestoFixture()
	p := f.cargar("enviado", model.PresupuestoItem{Descripcion: "Yerba", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(100)})

	_, err := f.svc.Transicion(context.Background(), p.ID, uuid.New(), dto.TransicionRequest{Estado: "rechazado"})
	var faltaMotivo *domain.ErrMotivoRequerido
	require.ErrorAs(t, err, &faltaMotivo)

	// nada se persistió
	assert.Equal(t, "enviado", f.repo.presupuestos[p.ID].Estado)
	assert.Empty(t, f.historial.entradas)
}

func TestTransicionConvertidoNoAlcanzablePorUsuario(t *testing.T) {
	f := nuevoPresupuestoFixture()
	p := f.cargar("aceptado", model.PresupuestoItem{Descripcion: "Yerba", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(100)})

	// el edge aceptado → convertido existe pero es solo-sistema: la API de
	// transiciones de usuario no puede tomarlo
	_, err := f.svc.Transicion(context.Background(), p.ID, uuid.New(), dto.TransicionRequest{Estado: "convertido"})
	var inv *domain.ErrTransicionInvalida
	require.ErrorAs(t, err, &inv)
}

func TestConvertirGeneraRemitoConfirmado(t *testing.T) {
	f := nuevoPresupuestoFixture()
	p := f.cargar("aceptado",
		model.PresupuestoItem{Descripcion: "Aceite x12", Cantidad: 10, EnStock: true, PrecioUnitario: decimal.NewFromInt(100)},
		model.PresupuestoItem{Descripcion: "Harina x25", Cantidad: 4, EnStock: false, PrecioUnitario: decimal.NewFromInt(50)},
	)

	resp, err := f.svc.Convertir(context.Background(), p.ID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "convertido", resp.Presupuesto.Estado)
	require.NotNil(t, resp.Presupuesto.RemitoID)
	assert.Equal(t, resp.Remito.ID, *resp.Presupuesto.RemitoID)

	assert.Equal(t, "confirmado", resp.Remito.Estado)
	assert.Equal(t, int64(1), resp.Remito.Numero)
	assert.True(t, resp.Remito.Total.Equal(p.Total))
	require.Len(t, resp.Remito.Items, 2)
	assert.Equal(t, 10, resp.Remito.Items[0].CantidadRestante)

	// la conversión queda en el historial como transición de sistema
	entradas := f.historial.porDocumento("presupuesto", p.ID)
	require.Len(t, entradas, 1)
	assert.Equal(t, "aceptado", entradas[0].Desde)
	assert.Equal(t, "convertido", entradas[0].Hacia)
	assert.True(t, entradas[0].Sistema)
	assert.Nil(t, entradas[0].PorUsuario)
}

func TestRevertirConversionAnulaRemito(t *testing.T) {
	f := nuevoPresupuestoFixture()
	p := f.cargar("aceptado", model.PresupuestoItem{Descripcion: "Aceite x12", Cantidad: 10, EnStock: true, PrecioUnitario: decimal.NewFromInt(100)})
	conv, err := f.svc.Convertir(context.Background(), p.ID, uuid.New())
	require.NoError(t, err)

	motivo := "el cliente pidió rearmar el pedido"
	resp, err := f.svc.Transicion(context.Background(), p.ID, uuid.New(), dto.TransicionRequest{Estado: "aceptado", Motivo: &motivo})
	require.NoError(t, err)

	assert.Equal(t, "aceptado", resp.Presupuesto.Estado)
	assert.Nil(t, resp.Presupuesto.RemitoID)
	require.Len(t, resp.Vinculados, 1)
	assert.Equal(t, conv.Remito.ID, resp.Vinculados[0].ID)
	assert.Equal(t, "remito", resp.Vinculados[0].Tipo)

	remitoID := uuid.MustParse(conv.Remito.ID)
	assert.Equal(t, "anulado", f.remitos.remitos[remitoID].Estado)

	entradasRemito := f.historial.porDocumento("remito", remitoID)
	require.Len(t, entradasRemito, 1)
	assert.True(t, entradasRemito[0].Sistema)
	require.NotNil(t, entradasRemito[0].Motivo)
	assert.Contains(t, *entradasRemito[0].Motivo, "reversión de la conversión")
}

func TestRevertirConversionBloqueadaConFacturacion(t *testing.T) {
	f := nuevoPresupuestoFixture()
	p := f.cargar("aceptado", model.PresupuestoItem{Descripcion: "Aceite x12", Cantidad: 10, EnStock: true, PrecioUnitario: decimal.NewFromInt(100)})
	conv, err := f.svc.Convertir(context.Background(), p.ID, uuid.New())
	require.NoError(t, err)

	remitoID := uuid.MustParse(conv.Remito.ID)
	f.remitos.remitos[remitoID].Items[0].CantidadFacturada = 3

	motivo := "intento de reversión tardía"
	_, err = f.svc.Transicion(context.Background(), p.ID, uuid.New(), dto.TransicionRequest{Estado: "aceptado", Motivo: &motivo})
	require.EqualError(t, err, "el remito generado ya tiene facturación; no se puede revertir la conversión")

	// el vínculo sigue intacto
	assert.Equal(t, "convertido", f.repo.presupuestos[p.ID].Estado)
	assert.NotNil(t, f.repo.presupuestos[p.ID].RemitoID)
	assert.Equal(t, "confirmado", f.remitos.remitos[remitoID].Estado)
}

func TestDuplicarClonaComoBorrador(t *testing.T) {
	f := nuevoPresupuestoFixture()
	p := f.cargar("rechazado", model.PresupuestoItem{Descripcion: "Yerba x10", Cantidad: 6, EnStock: true, PrecioUnitario: decimal.NewFromInt(300)})
	p.Items[0].CantidadFacturada = 2
	vendedor := uuid.New()

	resp, err := f.svc.Duplicar(context.Background(), p.ID, vendedor)
	require.NoError(t, err)

	assert.Equal(t, "borrador", resp.Estado)
	assert.NotEqual(t, p.ID.String(), resp.ID)
	assert.Equal(t, p.Numero+1, resp.Numero)
	assert.Equal(t, vendedor.String(), resp.VendedorID)
	assert.True(t, resp.Total.Equal(p.Total))
	require.Len(t, resp.Items, 1)
	// el avance de facturación no se hereda
	assert.Equal(t, 0, resp.Items[0].CantidadFacturada)
}

func TestExpirarVencidos(t *testing.T) {
	f := nuevoPresupuestoFixture()
	ayer := time.Now().Add(-24 * time.Hour)
	manana := time.Now().Add(24 * time.Hour)

	vencido := f.cargar("enviado", model.PresupuestoItem{Descripcion: "Yerba", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(100)})
	vencido.FechaVencimiento = &ayer
	vigente := f.cargar("enviado", model.PresupuestoItem{Descripcion: "Aceite", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(100)})
	vigente.FechaVencimiento = &manana
	borrador := f.cargar("borrador", model.PresupuestoItem{Descripcion: "Harina", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(100)})
	borrador.FechaVencimiento = &ayer

	n, err := f.svc.ExpirarVencidos(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, "vencido", f.repo.presupuestos[vencido.ID].Estado)
	assert.Equal(t, "enviado", f.repo.presupuestos[vigente.ID].Estado)
	assert.Equal(t, "borrador", f.repo.presupuestos[borrador.ID].Estado)

	entradas := f.historial.porDocumento("presupuesto", vencido.ID)
	require.Len(t, entradas, 1)
	assert.Equal(t, "vencido", entradas[0].Hacia)
	assert.True(t, entradas[0].Sistema)
}
