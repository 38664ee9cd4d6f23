package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgruparRetencionesIIBBPorJurisdiccion(t *testing.T) {
	lineas := []LineaRetencion{
		{Tipo: RetencionIIBB, Jurisdiccion: "Buenos Aires", NroCertificado: "BA-123", Monto: decimal.RequireFromString("100.00")},
		{Tipo: RetencionIIBB, Jurisdiccion: "CABA", Monto: decimal.RequireFromString("55.50")},
		{Tipo: RetencionIVA, NroCertificado: "IVA-9", Monto: decimal.RequireFromString("30.00")},
		{Tipo: RetencionGanancias, Monto: decimal.RequireFromString("14.50")},
	}

	grupos, total, err := AgruparRetenciones(lineas)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("200.00")))

	require.Len(t, grupos, 3)
	assert.Equal(t, RetencionIIBB, grupos[0].Tipo)
	assert.Len(t, grupos[0].Lineas, 2)
	assert.Equal(t, "Buenos Aires", grupos[0].Lineas[0].Jurisdiccion)
	assert.Equal(t, RetencionIVA, grupos[1].Tipo)
	assert.Len(t, grupos[1].Lineas, 1)
	assert.Equal(t, RetencionGanancias, grupos[2].Tipo)
}

func TestAgruparDescartaLineasEnCero(t *testing.T) {
	lineas := []LineaRetencion{
		{Tipo: RetencionIIBB, Jurisdiccion: "Córdoba", Monto: decimal.Zero},
		{Tipo: RetencionSUSS, Monto: decimal.RequireFromString("-5.00")},
		{Tipo: RetencionIVA, Monto: decimal.RequireFromString("80.00")},
	}

	grupos, total, err := AgruparRetenciones(lineas)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("80.00")))
	require.Len(t, grupos, 1)
	assert.Equal(t, RetencionIVA, grupos[0].Tipo)

	// todas en cero: ni grupos ni total
	grupos, total, err = AgruparRetenciones([]LineaRetencion{
		{Tipo: RetencionIVA, Monto: decimal.Zero},
	})
	require.NoError(t, err)
	assert.Empty(t, grupos)
	assert.True(t, total.IsZero())
}

func TestAgruparRechazaSingletonDuplicado(t *testing.T) {
	_, _, err := AgruparRetenciones([]LineaRetencion{
		{Tipo: RetencionIVA, Monto: decimal.RequireFromString("10.00")},
		{Tipo: RetencionIVA, Monto: decimal.RequireFromString("20.00")},
	})
	var dup *ErrRetencionDuplicada
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, RetencionIVA, dup.Tipo)
}

func TestAgruparRechazaTipoDesconocido(t *testing.T) {
	_, _, err := AgruparRetenciones([]LineaRetencion{
		{Tipo: "sellos", Monto: decimal.RequireFromString("10.00")},
	})
	var inv *ErrTipoRetencionInvalido
	assert.ErrorAs(t, err, &inv)
}
