package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MontoMinimoImputacion is the smallest amount that may be applied against an
// invoice. Edits below it are clamped up, not rejected.
var MontoMinimoImputacion = decimal.New(1, -2) // 0.01

// FacturaAbierta is the invoice-lookup view the allocation engine consumes:
// the open invoice with its balance at selection time.
type FacturaAbierta struct {
	ID         uuid.UUID
	Numero     string
	Moneda     string
	MontoTotal decimal.Decimal
	Saldo      decimal.Decimal
}

// Imputacion applies part of a recibo against one factura. Saldo is a snapshot
// taken at selection time; MontoImputado always satisfies
// 0.01 ≤ MontoImputado ≤ Saldo.
type Imputacion struct {
	FacturaID     uuid.UUID
	NumeroFactura string
	TotalFactura  decimal.Decimal
	Saldo         decimal.Decimal
	MontoImputado decimal.Decimal
}

// ErrMonedaDistinta rejects mixing invoices of another currency into one
// recibo; summing across currencies would corrupt the balance gate.
type ErrMonedaDistinta struct {
	Esperada string
	Recibida string
}

func (e *ErrMonedaDistinta) Error() string {
	return fmt.Sprintf("la factura es en %s pero el recibo es en %s", e.Recibida, e.Esperada)
}

// ErrFacturaNoSeleccionada is returned when adjusting an invoice that is not
// part of the current selection.
type ErrFacturaNoSeleccionada struct{ FacturaID uuid.UUID }

func (e *ErrFacturaNoSeleccionada) Error() string {
	return fmt.Sprintf("la factura %s no está seleccionada", e.FacturaID)
}

// ErrFacturaSinSaldo rejects selecting an invoice with nothing left to collect.
type ErrFacturaSinSaldo struct{ FacturaID uuid.UUID }

func (e *ErrFacturaSinSaldo) Error() string {
	return fmt.Sprintf("la factura %s no tiene saldo pendiente", e.FacturaID)
}

// SeleccionFacturas is the working set of imputaciones for one recibo.
// It keeps insertion order so output is deterministic.
type SeleccionFacturas struct {
	Moneda       string
	Imputaciones []Imputacion
}

// NuevaSeleccion starts an empty selection in the recibo's currency.
func NuevaSeleccion(moneda string) *SeleccionFacturas {
	return &SeleccionFacturas{Moneda: moneda}
}

// Seleccionar adds a factura with MontoImputado defaulted to its full saldo
// (full-settlement default). Selecting an already-selected factura re-snapshots
// it: any prior partial amount is discarded and the monto snaps back to the
// current saldo. That reset is deliberate source behavior, not an accident.
func (s *SeleccionFacturas) Seleccionar(f FacturaAbierta) error {
	if f.Moneda != "" && f.Moneda != s.Moneda {
		return &ErrMonedaDistinta{Esperada: s.Moneda, Recibida: f.Moneda}
	}
	if f.Saldo.LessThan(MontoMinimoImputacion) {
		return &ErrFacturaSinSaldo{FacturaID: f.ID}
	}

	imp := Imputacion{
		FacturaID:     f.ID,
		NumeroFactura: f.Numero,
		TotalFactura:  f.MontoTotal,
		Saldo:         f.Saldo,
		MontoImputado: f.Saldo,
	}
	for i := range s.Imputaciones {
		if s.Imputaciones[i].FacturaID == f.ID {
			s.Imputaciones[i] = imp
			return nil
		}
	}
	s.Imputaciones = append(s.Imputaciones, imp)
	return nil
}

// AjustarMonto sets the applied amount for a selected factura, silently
// clamping to [0.01, saldo].
func (s *SeleccionFacturas) AjustarMonto(facturaID uuid.UUID, monto decimal.Decimal) error {
	for i := range s.Imputaciones {
		if s.Imputaciones[i].FacturaID != facturaID {
			continue
		}
		if monto.LessThan(MontoMinimoImputacion) {
			monto = MontoMinimoImputacion
		}
		if monto.GreaterThan(s.Imputaciones[i].Saldo) {
			monto = s.Imputaciones[i].Saldo
		}
		s.Imputaciones[i].MontoImputado = monto
		return nil
	}
	return &ErrFacturaNoSeleccionada{FacturaID: facturaID}
}

// Deseleccionar removes a factura entirely. No memory of a prior partial
// amount survives a deselect/reselect cycle.
func (s *SeleccionFacturas) Deseleccionar(facturaID uuid.UUID) {
	for i := range s.Imputaciones {
		if s.Imputaciones[i].FacturaID == facturaID {
			s.Imputaciones = append(s.Imputaciones[:i], s.Imputaciones[i+1:]...)
			return
		}
	}
}

// TotalImputado recomputes Σ monto_imputado from the current lines on every
// call; nothing is cached.
func (s *SeleccionFacturas) TotalImputado() decimal.Decimal {
	total := decimal.Zero
	for _, imp := range s.Imputaciones {
		total = total.Add(imp.MontoImputado)
	}
	return total
}
