package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ClasificacionEntrega is the triage-board bucket of a document with pending
// quantities. Documents with nothing left to invoice are excluded from every
// column.
type ClasificacionEntrega string

const (
	EntregaLista     ClasificacionEntrega = "listo"     // todo el restante en stock
	EntregaParcial   ClasificacionEntrega = "parcial"   // parte del restante en stock
	EntregaPendiente ClasificacionEntrega = "pendiente" // nada del restante en stock
	EntregaCompleta  ClasificacionEntrega = ""          // sin restante: fuera del tablero
)

// ItemPendiente is the per-line fulfillment snapshot the tracker works on.
// CantidadFacturada accumulates across every partial invoicing event.
type ItemPendiente struct {
	ItemID uuid.UUID
	// Cantidad is the ordered quantity; CantidadFacturada never exceeds it.
	Cantidad          int
	CantidadFacturada int
	EnStock           bool
	// EnvioPendiente marks an item already part of an unconfirmed external
	// submission; it stays unselectable until that submission resolves.
	EnvioPendiente bool
}

// CantidadRestante = cantidad − cantidad facturada; the invariant ≥ 0 is
// enforced by RegistrarFacturacion, which rejects any overshoot up front.
func (i ItemPendiente) CantidadRestante() int {
	return i.Cantidad - i.CantidadFacturada
}

// Seleccionable reports whether the item may join a partial submission:
// something left to invoice, in stock, and not already in flight.
func (i ItemPendiente) Seleccionable() bool {
	return i.CantidadRestante() > 0 && i.EnStock && !i.EnvioPendiente
}

// ErrCantidadExcedida rejects invoicing more than what remains, before the
// request ever reaches the allocation layer.
type ErrCantidadExcedida struct {
	ItemID     uuid.UUID
	Solicitada int
	Restante   int
}

func (e *ErrCantidadExcedida) Error() string {
	return fmt.Sprintf("el ítem %s tiene %d unidades pendientes; no se pueden facturar %d",
		e.ItemID, e.Restante, e.Solicitada)
}

// ErrItemNoSeleccionable rejects submitting an item that fails Seleccionable.
type ErrItemNoSeleccionable struct{ ItemID uuid.UUID }

func (e *ErrItemNoSeleccionable) Error() string {
	return fmt.Sprintf("el ítem %s no está disponible para facturación parcial", e.ItemID)
}

// RegistrarFacturacion accumulates an invoicing event on the item. Guard order
// matters: quantity overflow is checked first so the caller can surface it
// before any allocation work happens.
func (i *ItemPendiente) RegistrarFacturacion(cantidad int) error {
	if cantidad <= 0 || cantidad > i.CantidadRestante() {
		return &ErrCantidadExcedida{ItemID: i.ItemID, Solicitada: cantidad, Restante: i.CantidadRestante()}
	}
	i.CantidadFacturada += cantidad
	return nil
}

// FacturarRestante invoices the item's full remaining quantity — partial
// submissions always take everything marked ready; there is no path for
// invoicing less. Returns the quantity taken.
func (i *ItemPendiente) FacturarRestante() (int, error) {
	if !i.Seleccionable() {
		return 0, &ErrItemNoSeleccionable{ItemID: i.ItemID}
	}
	restante := i.CantidadRestante()
	if err := i.RegistrarFacturacion(restante); err != nil {
		return 0, err
	}
	return restante, nil
}

// Clasificar buckets the parent document, looking only at items with remaining
// quantity. All in stock → listo; some → parcial; none → pendiente; nothing
// remaining at all → EntregaCompleta (excluded from the board).
func Clasificar(items []ItemPendiente) ClasificacionEntrega {
	conRestante, enStock := 0, 0
	for _, it := range items {
		if it.CantidadRestante() <= 0 {
			continue
		}
		conRestante++
		if it.EnStock {
			enStock++
		}
	}
	switch {
	case conRestante == 0:
		return EntregaCompleta
	case enStock == conRestante:
		return EntregaLista
	case enStock > 0:
		return EntregaParcial
	default:
		return EntregaPendiente
	}
}
