package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ToleranciaBalance is the absolute epsilon, in the document's currency, under
// which a recibo counts as balanced. It absorbs float drift from chained sums;
// comparisons never use exact equality.
var ToleranciaBalance = decimal.New(1, -2) // 0.01

// TipoMedioPago enumerates the accepted payment instruments.
type TipoMedioPago string

const (
	MedioTransferencia TipoMedioPago = "transferencia"
	MedioCheque        TipoMedioPago = "cheque"
	MedioEfectivo      TipoMedioPago = "efectivo"
	MedioDeposito      TipoMedioPago = "deposito"
	MedioOtros         TipoMedioPago = "otros"
)

// MedioPago is one payment line of a recibo. Cheque fields are only meaningful
// when Tipo = cheque.
type MedioPago struct {
	CuentaTesoreriaID uuid.UUID
	Tipo              TipoMedioPago
	Monto             decimal.Decimal
	NroCheque         string
	FechaCheque       *time.Time
	BancoCheque       string
	Referencia        string
}

// Valido reports whether the line counts toward totals and may be persisted:
// a treasury account must be set and the amount must be positive. Invalid
// lines are excluded, not rejected.
func (m MedioPago) Valido() bool {
	return m.CuentaTesoreriaID != uuid.Nil && m.Monto.IsPositive()
}

// DatosChequeCompletos reports whether a cheque line carries its check data.
// Non-cheque lines trivially pass.
func (m MedioPago) DatosChequeCompletos() bool {
	if m.Tipo != MedioCheque {
		return true
	}
	return m.NroCheque != "" && m.FechaCheque != nil && m.BancoCheque != ""
}

// TotalCobrado sums valid payment lines only.
func TotalCobrado(medios []MedioPago) decimal.Decimal {
	total := decimal.Zero
	for _, m := range medios {
		if m.Valido() {
			total = total.Add(m.Monto)
		}
	}
	return total
}

// SnapshotRecibo is the in-memory state the gate evaluates: pure data, no DB.
type SnapshotRecibo struct {
	ClienteID   uuid.UUID
	Fecha       time.Time
	Seleccion   *SeleccionFacturas
	Retenciones []LineaRetencion
	MediosPago  []MedioPago
}

// BalanceRecibo is the recomputed numeric picture of a recibo snapshot.
type BalanceRecibo struct {
	TotalImputado    decimal.Decimal
	TotalRetenciones decimal.Decimal
	TotalACobrar     decimal.Decimal
	TotalCobrado     decimal.Decimal
	Diferencia       decimal.Decimal
	Balanceado       bool
}

// CalcularBalance derives every total from current line state. Deterministic
// and cache-free: call it again after any edit rather than reusing a result.
func CalcularBalance(snap SnapshotRecibo) BalanceRecibo {
	imputado := decimal.Zero
	if snap.Seleccion != nil {
		imputado = snap.Seleccion.TotalImputado()
	}
	retenciones := TotalRetenciones(snap.Retenciones)
	aCobrar := imputado.Sub(retenciones)
	cobrado := TotalCobrado(snap.MediosPago)
	diff := aCobrar.Sub(cobrado)

	return BalanceRecibo{
		TotalImputado:    imputado,
		TotalRetenciones: retenciones,
		TotalACobrar:     aCobrar,
		TotalCobrado:     cobrado,
		Diferencia:       diff,
		Balanceado:       diff.Abs().LessThan(ToleranciaBalance),
	}
}

// ErrReciboDesbalanceado carries the failing metric when the approval gate
// rejects: how far totalACobrar is from totalCobrado.
type ErrReciboDesbalanceado struct{ Diferencia decimal.Decimal }

func (e *ErrReciboDesbalanceado) Error() string {
	return fmt.Sprintf("recibo desbalanceado: diferencia de $%s", e.Diferencia.StringFixed(2))
}

// Errores de validación de borrador — detected before any persistence attempt.
var (
	ErrClienteRequerido = errors.New("debe seleccionar un cliente")
	ErrFechaRequerida   = errors.New("debe indicar la fecha del recibo")
	ErrSinImputaciones  = errors.New("debe imputar al menos una factura")
	ErrSinMediosDePago  = errors.New("debe cargar al menos un medio de pago válido")
	ErrChequeIncompleto = errors.New("los cheques requieren número, fecha y banco")
)

// ValidarBorrador checks what a draft save needs: customer, date, at least one
// imputación and one valid payment line, and complete cheque data. Balance is
// NOT required to save a draft.
func ValidarBorrador(snap SnapshotRecibo) error {
	if snap.ClienteID == uuid.Nil {
		return ErrClienteRequerido
	}
	if snap.Fecha.IsZero() {
		return ErrFechaRequerida
	}
	if snap.Seleccion == nil || len(snap.Seleccion.Imputaciones) == 0 {
		return ErrSinImputaciones
	}
	validos := 0
	for _, m := range snap.MediosPago {
		if !m.Valido() {
			continue
		}
		if !m.DatosChequeCompletos() {
			return ErrChequeIncompleto
		}
		validos++
	}
	if validos == 0 {
		return ErrSinMediosDePago
	}
	return nil
}

// ValidarAprobacion is the blocking gate: every draft condition plus an exact
// balance within tolerance. On imbalance it fails with ErrReciboDesbalanceado
// carrying the diff.
func ValidarAprobacion(snap SnapshotRecibo) error {
	if err := ValidarBorrador(snap); err != nil {
		return err
	}
	if b := CalcularBalance(snap); !b.Balanceado {
		return &ErrReciboDesbalanceado{Diferencia: b.Diferencia}
	}
	return nil
}
