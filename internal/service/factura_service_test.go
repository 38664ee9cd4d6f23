package service

import (
	"context"
	"testing"

	"distrigest/internal/domain"
	"distrigest/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type facturaFixture struct {
	svc       FacturaService
	repo      *stubFacturaRepo
	historial *stubHistorialRepo
}

func nuevaFacturaFixture() *facturaFixture {
	repo := newStubFacturaRepo()
	historial := newStubHistorialRepo()
	return &facturaFixture{
		svc:       NewFacturaService(repo, historial),
		repo:      repo,
		historial: historial,
	}
}

func (f *facturaFixture) cargar(clienteID uuid.UUID, estado string, total, saldo decimal.Decimal) *model.Factura {
	f.repo.ultimoNumero++
	fac := &model.Factura{
		ID:             uuid.New(),
		Numero:         f.repo.ultimoNumero,
		PuntoDeVenta:   1,
		Tipo:           "factura_a",
		ClienteID:      clienteID,
		Estado:         estado,
		Moneda:         "ARS",
		MontoTotal:     total,
		SaldoPendiente: saldo,
		SyncEstado:     "sincronizado",
	}
	f.repo.facturas[fac.ID] = fac
	return fac
}

func TestAnularFacturaSinCobros(t *testing.T) {
	f := nuevaFacturaFixture()
	cliente := uuid.New()
	fac := f.cargar(cliente, "pendiente", decimal.NewFromInt(1210), decimal.NewFromInt(1210))
	usuario := uuid.New()

	resp, err := f.svc.Anular(context.Background(), fac.ID, usuario, "factura emitida por error")
	require.NoError(t, err)

	assert.Equal(t, "anulada", resp.Estado)
	assert.Equal(t, "anulada", f.repo.facturas[fac.ID].Estado)

	entradas := f.historial.porDocumento("factura", fac.ID)
	require.Len(t, entradas, 1)
	assert.Equal(t, "pendiente", entradas[0].Desde)
	assert.Equal(t, "anulada", entradas[0].Hacia)
	require.NotNil(t, entradas[0].Motivo)
	assert.Equal(t, "factura emitida por error", *entradas[0].Motivo)
}

func TestAnularFacturaConCobrosBloqueada(t *testing.T) {
	f := nuevaFacturaFixture()
	fac := f.cargar(uuid.New(), "parcial", decimal.NewFromInt(1210), decimal.NewFromInt(500))

	_, err := f.svc.Anular(context.Background(), fac.ID, uuid.New(), "intento inválido")
	require.EqualError(t, err, "la factura tiene cobros imputados; anule los recibos primero")
	assert.Equal(t, "parcial", f.repo.facturas[fac.ID].Estado)
	assert.Empty(t, f.historial.entradas)
}

// facturaRepoImputadaEnTransaccion simula un recibo aprobado entre el chequeo
// inicial y la transacción: la relectura bloqueada ya ve saldo consumido.
type facturaRepoImputadaEnTransaccion struct {
	*stubFacturaRepo
	saldoAlReleer decimal.Decimal
}

func (r *facturaRepoImputadaEnTransaccion) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Factura, error) {
	fac, err := r.stubFacturaRepo.FindByIDTx(tx, id)
	if err != nil {
		return nil, err
	}
	copia := *fac
	copia.SaldoPendiente = r.saldoAlReleer
	return &copia, nil
}

func TestAnularFacturaDetectaCobroConcurrente(t *testing.T) {
	f := nuevaFacturaFixture()
	fac := f.cargar(uuid.New(), "pendiente", decimal.NewFromInt(1210), decimal.NewFromInt(1210))

	repo := &facturaRepoImputadaEnTransaccion{stubFacturaRepo: f.repo, saldoAlReleer: decimal.NewFromInt(210)}
	svc := NewFacturaService(repo, f.historial)

	_, err := svc.Anular(context.Background(), fac.ID, uuid.New(), "factura emitida por error")
	require.EqualError(t, err, "la factura tiene cobros imputados; anule los recibos primero")
	assert.Equal(t, "pendiente", f.repo.facturas[fac.ID].Estado)
	assert.Empty(t, f.historial.entradas)
}

func TestAnularFacturaExigeMotivo(t *testing.T) {
	f := nuevaFacturaFixture()
	fac := f.cargar(uuid.New(), "pendiente", decimal.NewFromInt(100), decimal.NewFromInt(100))

	_, err := f.svc.Anular(context.Background(), fac.ID, uuid.New(), "   ")
	var faltaMotivo *domain.ErrMotivoRequerido
	require.ErrorAs(t, err, &faltaMotivo)
}

func TestListarAbiertasFiltraPorClienteYSaldo(t *testing.T) {
	f := nuevaFacturaFixture()
	cliente := uuid.New()

	abierta := f.cargar(cliente, "pendiente", decimal.NewFromInt(1210), decimal.NewFromInt(1210))
	parcial := f.cargar(cliente, "parcial", decimal.NewFromInt(500), decimal.NewFromInt(300))
	f.cargar(cliente, "pagada", decimal.NewFromInt(800), decimal.Zero)
	f.cargar(uuid.New(), "pendiente", decimal.NewFromInt(900), decimal.NewFromInt(900))

	resp, err := f.svc.ListarAbiertas(context.Background(), cliente)
	require.NoError(t, err)
	require.Len(t, resp, 2)

	ids := []string{resp[0].ID, resp[1].ID}
	assert.Contains(t, ids, abierta.ID.String())
	assert.Contains(t, ids, parcial.ID.String())
}
