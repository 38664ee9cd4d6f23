package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotCobro arma un recibo con una factura de saldo 1000, una retención
// IIBB de 100 y un medio de pago por el monto indicado.
func snapshotCobro(t *testing.T, pago string) SnapshotRecibo {
	t.Helper()
	sel := NuevaSeleccion("ARS")
	require.NoError(t, sel.Seleccionar(facturaAbierta("1000.00")))

	return SnapshotRecibo{
		ClienteID: uuid.New(),
		Fecha:     time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
		Seleccion: sel,
		Retenciones: []LineaRetencion{
			{Tipo: RetencionIIBB, Jurisdiccion: "Buenos Aires", Monto: decimal.RequireFromString("100.00")},
		},
		MediosPago: []MedioPago{
			{CuentaTesoreriaID: uuid.New(), Tipo: MedioTransferencia, Monto: decimal.RequireFromString(pago)},
		},
	}
}

// Escenario A: 1000 imputado − 100 retenido = 900 a cobrar; pago de 900 → aprobable.
func TestReciboBalanceadoApruebaExacto(t *testing.T) {
	snap := snapshotCobro(t, "900.00")

	b := CalcularBalance(snap)
	assert.True(t, b.TotalImputado.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, b.TotalRetenciones.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, b.TotalACobrar.Equal(decimal.RequireFromString("900.00")))
	assert.True(t, b.TotalCobrado.Equal(decimal.RequireFromString("900.00")))
	assert.True(t, b.Diferencia.IsZero())
	assert.True(t, b.Balanceado)

	assert.NoError(t, ValidarAprobacion(snap))
}

// Escenario B: pago de 850 → diferencia 50 → la aprobación falla con la métrica.
func TestReciboDesbalanceadoRechazaConDiferencia(t *testing.T) {
	snap := snapshotCobro(t, "850.00")

	b := CalcularBalance(snap)
	assert.True(t, b.Diferencia.Equal(decimal.RequireFromString("50.00")))
	assert.False(t, b.Balanceado)

	err := ValidarAprobacion(snap)
	var desb *ErrReciboDesbalanceado
	require.ErrorAs(t, err, &desb)
	assert.True(t, desb.Diferencia.Equal(decimal.RequireFromString("50.00")))

	// el borrador sí se puede guardar desbalanceado
	assert.NoError(t, ValidarBorrador(snap))
}

func TestToleranciaAbsorbeDerivaFlotante(t *testing.T) {
	snap := snapshotCobro(t, "899.995")
	assert.True(t, CalcularBalance(snap).Balanceado)

	// exactamente 0.01 de diferencia queda FUERA de la tolerancia (|diff| < 0.01)
	snap = snapshotCobro(t, "899.99")
	assert.False(t, CalcularBalance(snap).Balanceado)
}

func TestMediosInvalidosNoSuman(t *testing.T) {
	snap := snapshotCobro(t, "900.00")
	snap.MediosPago = append(snap.MediosPago,
		MedioPago{Tipo: MedioEfectivo, Monto: decimal.RequireFromString("500.00")},                 // sin cuenta
		MedioPago{CuentaTesoreriaID: uuid.New(), Tipo: MedioEfectivo, Monto: decimal.Zero},         // monto en cero
		MedioPago{CuentaTesoreriaID: uuid.New(), Tipo: MedioOtros, Monto: decimal.NewFromInt(-10)}, // negativo
	)

	b := CalcularBalance(snap)
	assert.True(t, b.TotalCobrado.Equal(decimal.RequireFromString("900.00")))
	assert.True(t, b.Balanceado)
}

func TestValidacionDeBorrador(t *testing.T) {
	base := snapshotCobro(t, "900.00")

	sinCliente := base
	sinCliente.ClienteID = uuid.Nil
	assert.ErrorIs(t, ValidarBorrador(sinCliente), ErrClienteRequerido)

	sinFecha := base
	sinFecha.Fecha = time.Time{}
	assert.ErrorIs(t, ValidarBorrador(sinFecha), ErrFechaRequerida)

	sinImputaciones := base
	sinImputaciones.Seleccion = NuevaSeleccion("ARS")
	assert.ErrorIs(t, ValidarBorrador(sinImputaciones), ErrSinImputaciones)

	sinMedios := base
	sinMedios.MediosPago = []MedioPago{{Tipo: MedioEfectivo, Monto: decimal.RequireFromString("900.00")}}
	assert.ErrorIs(t, ValidarBorrador(sinMedios), ErrSinMediosDePago)

	// la aprobación repite todas las condiciones del borrador
	assert.ErrorIs(t, ValidarAprobacion(sinCliente), ErrClienteRequerido)
}

func TestChequeRequiereDatosCompletos(t *testing.T) {
	snap := snapshotCobro(t, "0")
	fecha := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	snap.MediosPago = []MedioPago{{
		CuentaTesoreriaID: uuid.New(),
		Tipo:              MedioCheque,
		Monto:             decimal.RequireFromString("900.00"),
		NroCheque:         "00012345",
	}}
	assert.ErrorIs(t, ValidarBorrador(snap), ErrChequeIncompleto)

	snap.MediosPago[0].FechaCheque = &fecha
	snap.MediosPago[0].BancoCheque = "Banco Nación"
	assert.NoError(t, ValidarBorrador(snap))
	assert.NoError(t, ValidarAprobacion(snap))
}
