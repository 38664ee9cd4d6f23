package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TipoRetencion clasifica una retención impositiva argentina.
type TipoRetencion string

const (
	RetencionIIBB      TipoRetencion = "iibb"
	RetencionIVA       TipoRetencion = "iva"
	RetencionSUSS      TipoRetencion = "suss"
	RetencionGanancias TipoRetencion = "ganancias"
)

// TipoRetencionValido reports whether t is one of the four supported types.
func TipoRetencionValido(t TipoRetencion) bool {
	switch t {
	case RetencionIIBB, RetencionIVA, RetencionSUSS, RetencionGanancias:
		return true
	}
	return false
}

// LineaRetencion is one withholding entry as captured on the recibo form.
// Jurisdiccion only applies to IIBB; NroCertificado may be blank and is then
// omitted from the persisted payload rather than stored empty.
type LineaRetencion struct {
	Tipo           TipoRetencion
	Jurisdiccion   string
	NroCertificado string
	Monto          decimal.Decimal
}

// GrupoRetencion is the persistable grouped structure handed to accounting:
// one IIBB group carrying every jurisdiction line, and at most one single-line
// group for each of IVA, SUSS and GANANCIAS.
type GrupoRetencion struct {
	Tipo   TipoRetencion
	Lineas []LineaRetencion
}

// ErrTipoRetencionInvalido rejects an unknown withholding type.
type ErrTipoRetencionInvalido struct{ Tipo TipoRetencion }

func (e *ErrTipoRetencionInvalido) Error() string {
	return fmt.Sprintf("tipo de retención desconocido: %q", e.Tipo)
}

// ErrRetencionDuplicada rejects a second non-zero line for a singleton type.
type ErrRetencionDuplicada struct{ Tipo TipoRetencion }

func (e *ErrRetencionDuplicada) Error() string {
	return fmt.Sprintf("retención %s duplicada: admite una sola línea", e.Tipo)
}

// AgruparRetenciones normalizes the flat form input into the grouped payload
// and its total. Lines with monto ≤ 0 are dropped, never persisted. Group
// order is fixed (iibb, iva, suss, ganancias) so output is deterministic.
func AgruparRetenciones(lineas []LineaRetencion) ([]GrupoRetencion, decimal.Decimal, error) {
	porTipo := make(map[TipoRetencion][]LineaRetencion, 4)
	total := decimal.Zero

	for _, l := range lineas {
		if !TipoRetencionValido(l.Tipo) {
			return nil, decimal.Zero, &ErrTipoRetencionInvalido{Tipo: l.Tipo}
		}
		if !l.Monto.IsPositive() {
			continue // línea vacía o en cero: se descarta
		}
		if l.Tipo != RetencionIIBB && len(porTipo[l.Tipo]) > 0 {
			return nil, decimal.Zero, &ErrRetencionDuplicada{Tipo: l.Tipo}
		}
		porTipo[l.Tipo] = append(porTipo[l.Tipo], l)
		total = total.Add(l.Monto)
	}

	var grupos []GrupoRetencion
	for _, tipo := range []TipoRetencion{RetencionIIBB, RetencionIVA, RetencionSUSS, RetencionGanancias} {
		if lns := porTipo[tipo]; len(lns) > 0 {
			grupos = append(grupos, GrupoRetencion{Tipo: tipo, Lineas: lns})
		}
	}
	return grupos, total, nil
}

// TotalRetenciones is the sum shortcut when the grouped structure is not needed.
func TotalRetenciones(lineas []LineaRetencion) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lineas {
		if l.Monto.IsPositive() && TipoRetencionValido(l.Tipo) {
			total = total.Add(l.Monto)
		}
	}
	return total
}
