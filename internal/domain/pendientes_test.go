package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCantidadRestanteNuncaNegativa(t *testing.T) {
	item := ItemPendiente{ItemID: uuid.New(), Cantidad: 10, CantidadFacturada: 7, EnStock: true}
	assert.Equal(t, 3, item.CantidadRestante())

	// pedir más de lo restante se rechaza antes de tocar nada
	err := item.RegistrarFacturacion(4)
	var exc *ErrCantidadExcedida
	require.ErrorAs(t, err, &exc)
	assert.Equal(t, 4, exc.Solicitada)
	assert.Equal(t, 3, exc.Restante)
	assert.Equal(t, 7, item.CantidadFacturada)

	require.NoError(t, item.RegistrarFacturacion(3))
	assert.Equal(t, 0, item.CantidadRestante())

	// sin restante, cualquier cantidad falla
	assert.Error(t, item.RegistrarFacturacion(1))
	assert.Error(t, item.RegistrarFacturacion(0))
}

func TestFacturarRestanteTomaTodo(t *testing.T) {
	item := ItemPendiente{ItemID: uuid.New(), Cantidad: 10, CantidadFacturada: 4, EnStock: true}

	tomado, err := item.FacturarRestante()
	require.NoError(t, err)
	assert.Equal(t, 6, tomado)
	assert.Equal(t, 10, item.CantidadFacturada)
	assert.Equal(t, 0, item.CantidadRestante())
}

func TestSeleccionable(t *testing.T) {
	base := ItemPendiente{ItemID: uuid.New(), Cantidad: 5, EnStock: true}
	assert.True(t, base.Seleccionable())

	sinStock := base
	sinStock.EnStock = false
	assert.False(t, sinStock.Seleccionable())

	enviado := base
	enviado.EnvioPendiente = true
	assert.False(t, enviado.Seleccionable())
	_, err := enviado.FacturarRestante()
	var noSel *ErrItemNoSeleccionable
	assert.ErrorAs(t, err, &noSel)

	// Escenario D: cantidad 10, facturado 10 → restante 0 → no seleccionable
	completo := ItemPendiente{ItemID: uuid.New(), Cantidad: 10, CantidadFacturada: 10, EnStock: true}
	assert.False(t, completo.Seleccionable())
}

func TestClasificar(t *testing.T) {
	enStock := func(restante int) ItemPendiente {
		return ItemPendiente{ItemID: uuid.New(), Cantidad: restante, EnStock: true}
	}
	sinStock := func(restante int) ItemPendiente {
		return ItemPendiente{ItemID: uuid.New(), Cantidad: restante}
	}

	// todos los restantes en stock → listo
	assert.Equal(t, EntregaLista, Clasificar([]ItemPendiente{enStock(5), enStock(2)}))

	// Escenario E: uno en stock y otro no → parcial
	assert.Equal(t, EntregaParcial, Clasificar([]ItemPendiente{enStock(5), sinStock(3)}))

	// ninguno en stock → pendiente
	assert.Equal(t, EntregaPendiente, Clasificar([]ItemPendiente{sinStock(1), sinStock(9)}))

	// Escenario D: nada con restante → fuera del tablero
	todoFacturado := ItemPendiente{ItemID: uuid.New(), Cantidad: 10, CantidadFacturada: 10, EnStock: true}
	assert.Equal(t, EntregaCompleta, Clasificar([]ItemPendiente{todoFacturado}))
	assert.Equal(t, EntregaCompleta, Clasificar(nil))

	// los ítems ya completos no pesan en la clasificación
	assert.Equal(t, EntregaLista, Clasificar([]ItemPendiente{todoFacturado, enStock(1)}))
}
