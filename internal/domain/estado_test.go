package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docPresupuesto(e Estado) Documento {
	return Documento{ID: uuid.New(), Variante: VariantePresupuesto, Estado: e, Moneda: "ARS"}
}

func TestPresupuestoTransicionesValidas(t *testing.T) {
	m := MaquinaPresupuesto()
	usuario := uuid.New()

	res, err := m.ProponerTransicion(docPresupuesto(EstadoBorrador), EstadoEnviado, Cambio{PorUsuario: usuario}, nil)
	require.NoError(t, err)
	assert.Equal(t, EstadoEnviado, res.Estado)
	assert.Equal(t, EstadoBorrador, res.Entrada.Desde)
	assert.Equal(t, EstadoEnviado, res.Entrada.Hacia)
	assert.Equal(t, usuario, res.Entrada.PorUsuario)
	assert.Nil(t, res.Entrada.Motivo)
	assert.False(t, res.Entrada.Fecha.IsZero())

	// reenvío: self-edge sobre enviado
	res, err = m.ProponerTransicion(docPresupuesto(EstadoEnviado), EstadoEnviado, Cambio{PorUsuario: usuario}, nil)
	require.NoError(t, err)
	assert.Equal(t, EstadoEnviado, res.Estado)
}

func TestPresupuestoEdgeInexistenteSiempreRechazado(t *testing.T) {
	m := MaquinaPresupuesto()

	// borrador → convertido no existe, con o sin datos extra
	_, err := m.ProponerTransicion(docPresupuesto(EstadoBorrador), EstadoConvertido,
		Cambio{PorUsuario: uuid.New(), Motivo: "da igual", Notas: "da igual"}, nil)
	var inv *ErrTransicionInvalida
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, VariantePresupuesto, inv.Variante)
	assert.Equal(t, EstadoBorrador, inv.Desde)
	assert.Equal(t, EstadoConvertido, inv.Hacia)

	// rechazado es terminal: sin salidas
	_, err = m.ProponerTransicion(docPresupuesto(EstadoRechazado), EstadoBorrador, Cambio{Motivo: "reabrir"}, nil)
	assert.ErrorAs(t, err, &inv)
	assert.True(t, m.EsTerminal(EstadoRechazado))
	assert.True(t, m.EsTerminal(EstadoVencido))
}

// Escenario C del diseño: rechazo con motivo en blanco.
func TestRechazoSinMotivoFalla(t *testing.T) {
	m := MaquinaPresupuesto()

	for _, motivo := range []string{"", "   ", "\t\n"} {
		_, err := m.ProponerTransicion(docPresupuesto(EstadoBorrador), EstadoRechazado, Cambio{Motivo: motivo}, nil)
		var falta *ErrMotivoRequerido
		require.ErrorAs(t, err, &falta, "motivo %q", motivo)
		assert.Equal(t, EstadoRechazado, falta.Hacia)
	}

	res, err := m.ProponerTransicion(docPresupuesto(EstadoBorrador), EstadoRechazado, Cambio{Motivo: "precio fuera de mercado"}, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Entrada.Motivo)
	assert.Equal(t, "precio fuera de mercado", *res.Entrada.Motivo)
}

func TestConversionEsSoloSistema(t *testing.T) {
	m := MaquinaPresupuesto()
	doc := docPresupuesto(EstadoAceptado)

	_, err := m.ProponerTransicion(doc, EstadoConvertido, Cambio{PorUsuario: uuid.New()}, nil)
	var inv *ErrTransicionInvalida
	assert.ErrorAs(t, err, &inv)

	res, err := m.ProponerTransicion(doc, EstadoConvertido, Cambio{PorUsuario: uuid.New(), Sistema: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, EstadoConvertido, res.Estado)
}

func TestRevertirConversionDevuelveVinculados(t *testing.T) {
	m := MaquinaPresupuesto()
	remitoID := uuid.New()
	doc := docPresupuesto(EstadoConvertido)
	doc.Vinculados = []DocumentoVinculado{{Tipo: VarianteRemito, ID: remitoID, Numero: "R-0001-00000042"}}

	res, err := m.ProponerTransicion(doc, EstadoAceptado, Cambio{Motivo: "el cliente pidió cambios"}, nil)
	require.NoError(t, err)
	require.Len(t, res.ADesvincular, 1)
	assert.Equal(t, remitoID, res.ADesvincular[0].ID)
	assert.Equal(t, VarianteRemito, res.ADesvincular[0].Tipo)

	// el motivo es obligatorio para revertir
	_, err = m.ProponerTransicion(doc, EstadoAceptado, Cambio{}, nil)
	var falta *ErrMotivoRequerido
	assert.ErrorAs(t, err, &falta)
}

func TestGuardaDeAprobacion(t *testing.T) {
	m := MaquinaRecibo()
	doc := Documento{ID: uuid.New(), Variante: VarianteRecibo, Estado: EstadoBorrador, Moneda: "ARS"}

	// guarda no registrada → falla
	_, err := m.ProponerTransicion(doc, EstadoAprobado, Cambio{}, nil)
	var gf *ErrGuardaFallida
	require.ErrorAs(t, err, &gf)
	assert.Equal(t, GuardaReciboBalanceado, gf.Guarda)

	// guarda rechaza → ErrGuardaFallida envuelve la métrica que falló
	desbalance := &ErrReciboDesbalanceado{Diferencia: decimal.RequireFromString("50.00")}
	guardas := map[string]Guarda{
		GuardaReciboBalanceado: func() error { return desbalance },
	}
	_, err = m.ProponerTransicion(doc, EstadoAprobado, Cambio{}, guardas)
	require.ErrorAs(t, err, &gf)
	var causa *ErrReciboDesbalanceado
	require.True(t, errors.As(gf, &causa))
	assert.True(t, causa.Diferencia.Equal(decimal.RequireFromString("50.00")))

	// guarda satisfecha → transición aprobada
	guardas[GuardaReciboBalanceado] = func() error { return nil }
	res, err := m.ProponerTransicion(doc, EstadoAprobado, Cambio{PorUsuario: uuid.New()}, guardas)
	require.NoError(t, err)
	assert.Equal(t, EstadoAprobado, res.Estado)
}

func TestMaquinaRemito(t *testing.T) {
	m := MaquinaRemito()
	doc := Documento{ID: uuid.New(), Variante: VarianteRemito, Estado: EstadoConfirmado}

	// facturado solo por sistema
	assert.False(t, m.PuedeTransicionar(EstadoConfirmado, EstadoFacturado, false))
	assert.True(t, m.PuedeTransicionar(EstadoConfirmado, EstadoFacturado, true))

	res, err := m.ProponerTransicion(doc, EstadoAnulado, Cambio{Motivo: "mercadería dañada"}, nil)
	require.NoError(t, err)
	assert.Equal(t, EstadoAnulado, res.Estado)
	assert.True(t, m.EsTerminal(EstadoAnulado))
}

func TestMaquinaFacturaMovimientosDeSistema(t *testing.T) {
	m := MaquinaFactura()

	// los cambios de cobro son solo-sistema
	assert.False(t, m.PuedeTransicionar(EstadoPendiente, EstadoPagada, false))
	assert.True(t, m.PuedeTransicionar(EstadoPendiente, EstadoPagada, true))
	assert.True(t, m.PuedeTransicionar(EstadoParcial, EstadoParcial, true))
	assert.True(t, m.PuedeTransicionar(EstadoPagada, EstadoParcial, true))

	// anulación manual requiere motivo
	doc := Documento{Variante: VarianteFactura, Estado: EstadoPendiente}
	_, err := m.ProponerTransicion(doc, EstadoAnulada, Cambio{}, nil)
	var falta *ErrMotivoRequerido
	assert.ErrorAs(t, err, &falta)
}
