package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func facturaAbierta(saldo string) FacturaAbierta {
	s := decimal.RequireFromString(saldo)
	return FacturaAbierta{
		ID:         uuid.New(),
		Numero:     "FC-0001-00001234",
		Moneda:     "ARS",
		MontoTotal: s,
		Saldo:      s,
	}
}

func TestSeleccionarImputaSaldoCompleto(t *testing.T) {
	sel := NuevaSeleccion("ARS")
	f := facturaAbierta("1000.00")

	require.NoError(t, sel.Seleccionar(f))
	require.Len(t, sel.Imputaciones, 1)
	assert.True(t, sel.Imputaciones[0].MontoImputado.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, sel.TotalImputado().Equal(decimal.RequireFromString("1000.00")))
}

func TestAjustarMontoClampea(t *testing.T) {
	sel := NuevaSeleccion("ARS")
	f := facturaAbierta("1000.00")
	require.NoError(t, sel.Seleccionar(f))

	// por encima del saldo: se recorta en silencio, no se rechaza
	require.NoError(t, sel.AjustarMonto(f.ID, decimal.RequireFromString("1500.00")))
	assert.True(t, sel.Imputaciones[0].MontoImputado.Equal(f.Saldo))

	// por debajo del mínimo: sube a 0.01
	require.NoError(t, sel.AjustarMonto(f.ID, decimal.Zero))
	assert.True(t, sel.Imputaciones[0].MontoImputado.Equal(MontoMinimoImputacion))

	require.NoError(t, sel.AjustarMonto(f.ID, decimal.RequireFromString("-20")))
	assert.True(t, sel.Imputaciones[0].MontoImputado.Equal(MontoMinimoImputacion))

	// dentro del rango: queda tal cual
	require.NoError(t, sel.AjustarMonto(f.ID, decimal.RequireFromString("650.50")))
	assert.True(t, sel.Imputaciones[0].MontoImputado.Equal(decimal.RequireFromString("650.50")))

	// invariante global: 0.01 ≤ monto ≤ saldo
	for _, imp := range sel.Imputaciones {
		assert.True(t, imp.MontoImputado.GreaterThanOrEqual(MontoMinimoImputacion))
		assert.True(t, imp.MontoImputado.LessThanOrEqual(imp.Saldo))
	}
}

func TestAjustarFacturaNoSeleccionada(t *testing.T) {
	sel := NuevaSeleccion("ARS")
	err := sel.AjustarMonto(uuid.New(), decimal.RequireFromString("100"))
	var noSel *ErrFacturaNoSeleccionada
	assert.ErrorAs(t, err, &noSel)
}

// Deseleccionar y reseleccionar descarta el monto parcial anterior: el monto
// vuelve al saldo vigente de la factura.
func TestReseleccionResetea(t *testing.T) {
	sel := NuevaSeleccion("ARS")
	f := facturaAbierta("1000.00")

	require.NoError(t, sel.Seleccionar(f))
	require.NoError(t, sel.AjustarMonto(f.ID, decimal.RequireFromString("300.00")))

	sel.Deseleccionar(f.ID)
	assert.Empty(t, sel.Imputaciones)
	assert.True(t, sel.TotalImputado().IsZero())

	require.NoError(t, sel.Seleccionar(f))
	assert.True(t, sel.Imputaciones[0].MontoImputado.Equal(decimal.RequireFromString("1000.00")))
}

func TestSeleccionarRechazaSinSaldoYOtraMoneda(t *testing.T) {
	sel := NuevaSeleccion("ARS")

	pagada := facturaAbierta("1000.00")
	pagada.Saldo = decimal.Zero
	var sinSaldo *ErrFacturaSinSaldo
	assert.ErrorAs(t, sel.Seleccionar(pagada), &sinSaldo)

	usd := facturaAbierta("500.00")
	usd.Moneda = "USD"
	var moneda *ErrMonedaDistinta
	err := sel.Seleccionar(usd)
	require.ErrorAs(t, err, &moneda)
	assert.Equal(t, "ARS", moneda.Esperada)
	assert.Equal(t, "USD", moneda.Recibida)
}

func TestTotalImputadoSeRecalculaSiempre(t *testing.T) {
	sel := NuevaSeleccion("ARS")
	f1 := facturaAbierta("100.00")
	f2 := facturaAbierta("250.00")
	require.NoError(t, sel.Seleccionar(f1))
	require.NoError(t, sel.Seleccionar(f2))
	assert.True(t, sel.TotalImputado().Equal(decimal.RequireFromString("350.00")))

	require.NoError(t, sel.AjustarMonto(f2.ID, decimal.RequireFromString("50.00")))
	assert.True(t, sel.TotalImputado().Equal(decimal.RequireFromString("150.00")))

	sel.Deseleccionar(f1.ID)
	assert.True(t, sel.TotalImputado().Equal(decimal.RequireFromString("50.00")))
}
