// Package domain contains the pure business core: document state machines,
// receipt-to-invoice allocation, withholding aggregation, the balance gate and
// the partial-fulfillment tracker. Everything here is synchronous and
// side-effect free — no DB, no clock beyond the timestamp the caller supplies
// implicitly via time.Now at transition commit.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Variante identifies the document type a state machine governs.
type Variante string

const (
	VariantePresupuesto Variante = "presupuesto"
	VarianteRemito      Variante = "remito"
	VarianteFactura     Variante = "factura"
	VarianteRecibo      Variante = "recibo"
)

// Estado is a document status. Each variant has its own closed set of values;
// the transition tables below are the single source of truth for which edges
// exist.
type Estado string

// Presupuesto estados.
const (
	EstadoBorrador   Estado = "borrador"
	EstadoEnviado    Estado = "enviado"
	EstadoAceptado   Estado = "aceptado"
	EstadoConvertido Estado = "convertido"
	EstadoRechazado  Estado = "rechazado"
	EstadoAnulado    Estado = "anulado"
	EstadoVencido    Estado = "vencido"
)

// Remito estados (borrador/anulado shared with presupuesto).
const (
	EstadoConfirmado Estado = "confirmado"
	EstadoFacturado  Estado = "facturado"
)

// Factura estados.
const (
	EstadoPendiente Estado = "pendiente"
	EstadoParcial   Estado = "parcial"
	EstadoPagada    Estado = "pagada"
	EstadoAnulada   Estado = "anulada"
)

// Recibo estados (borrador/anulado shared).
const (
	EstadoAprobado Estado = "aprobado"
)

// GuardaReciboBalanceado names the precondition consulted before a recibo may
// move to aprobado. The service layer supplies the actual check.
const GuardaReciboBalanceado = "recibo_balanceado"

// Transicion is one edge in a variant's transition graph.
type Transicion struct {
	Hacia Estado
	// RequiereMotivo rejects the transition when no non-blank reason is given.
	RequiereMotivo bool
	// SoloSistema marks edges that only side effects may take (e.g. a
	// presupuesto becoming convertido when its remito is generated); user
	// transition requests never match them.
	SoloSistema bool
	// Guarda names a precondition the caller must register; empty = none.
	Guarda string
	// DevuelveVinculados marks revert edges whose result must report the
	// downstream documents the caller has to unlink.
	DevuelveVinculados bool
}

// Maquina holds the edge set for one document variant.
type Maquina struct {
	variante Variante
	edges    map[Estado][]Transicion
}

// DocumentoVinculado references a document generated downstream of a
// transition (e.g. the remito created when a presupuesto was converted).
type DocumentoVinculado struct {
	Tipo   Variante  `json:"tipo"`
	ID     uuid.UUID `json:"id"`
	Numero string    `json:"numero"`
}

// Documento is the in-memory snapshot a transition is evaluated against.
type Documento struct {
	ID         uuid.UUID
	Variante   Variante
	Estado     Estado
	Moneda     string
	Vinculados []DocumentoVinculado
}

// Cambio carries the user-supplied data of a transition request.
type Cambio struct {
	PorUsuario uuid.UUID
	Motivo     string
	Notas      string
	// Sistema is set by services performing side-effect transitions
	// (conversion, payment application); it unlocks SoloSistema edges.
	Sistema bool
}

// Guarda is a registered precondition. A non-nil error blocks the transition.
type Guarda func() error

// EntradaHistorial is one append-only audit record. Entries are created
// exactly once per committed transition and never mutated afterwards.
type EntradaHistorial struct {
	Desde      Estado
	Hacia      Estado
	PorUsuario uuid.UUID
	Sistema    bool
	Motivo     *string
	Notas      *string
	Fecha      time.Time
}

// Resultado is the successful outcome of ProponerTransicion. The caller must
// persist Entrada and the new estado in the same transaction, and — when
// ADesvincular is non-empty — clear those references itself; the core only
// reports them.
type Resultado struct {
	Estado       Estado
	Entrada      EntradaHistorial
	ADesvincular []DocumentoVinculado
}

// ─── Errores de transición ───────────────────────────────────────────────────

// ErrTransicionInvalida: the requested edge does not exist in the variant's graph.
type ErrTransicionInvalida struct {
	Variante Variante
	Desde    Estado
	Hacia    Estado
}

func (e *ErrTransicionInvalida) Error() string {
	return fmt.Sprintf("transición inválida de %s: %s → %s", e.Variante, e.Desde, e.Hacia)
}

// ErrMotivoRequerido: the edge exists but demands a non-blank reason.
type ErrMotivoRequerido struct {
	Desde Estado
	Hacia Estado
}

func (e *ErrMotivoRequerido) Error() string {
	return fmt.Sprintf("la transición %s → %s requiere un motivo", e.Desde, e.Hacia)
}

// ErrGuardaFallida: a registered precondition rejected the transition. Causa
// carries the failing metric (e.g. ErrReciboDesbalanceado with the diff).
type ErrGuardaFallida struct {
	Guarda string
	Causa  error
}

func (e *ErrGuardaFallida) Error() string {
	return fmt.Sprintf("guarda %q no satisfecha: %v", e.Guarda, e.Causa)
}

func (e *ErrGuardaFallida) Unwrap() error { return e.Causa }

// ─── Motor ───────────────────────────────────────────────────────────────────

// ProponerTransicion validates the edge doc.Estado → hacia against the
// machine's graph and, if every condition holds, returns the new estado plus
// the audit entry to append. It performs no mutation: all-or-nothing semantics
// are the transaction layer's job.
func (m *Maquina) ProponerTransicion(doc Documento, hacia Estado, cambio Cambio, guardas map[string]Guarda) (*Resultado, error) {
	edge, ok := m.buscarEdge(doc.Estado, hacia, cambio.Sistema)
	if !ok {
		return nil, &ErrTransicionInvalida{Variante: m.variante, Desde: doc.Estado, Hacia: hacia}
	}

	if edge.RequiereMotivo && esBlanco(cambio.Motivo) {
		return nil, &ErrMotivoRequerido{Desde: doc.Estado, Hacia: hacia}
	}

	if edge.Guarda != "" {
		g, registrada := guardas[edge.Guarda]
		if !registrada {
			return nil, &ErrGuardaFallida{Guarda: edge.Guarda, Causa: fmt.Errorf("guarda no registrada")}
		}
		if err := g(); err != nil {
			return nil, &ErrGuardaFallida{Guarda: edge.Guarda, Causa: err}
		}
	}

	res := &Resultado{
		Estado: hacia,
		Entrada: EntradaHistorial{
			Desde:      doc.Estado,
			Hacia:      hacia,
			PorUsuario: cambio.PorUsuario,
			Sistema:    cambio.Sistema,
			Motivo:     opcional(cambio.Motivo),
			Notas:      opcional(cambio.Notas),
			Fecha:      time.Now().UTC(),
		},
	}
	if edge.DevuelveVinculados {
		res.ADesvincular = append(res.ADesvincular, doc.Vinculados...)
	}
	return res, nil
}

// PuedeTransicionar reports whether the edge exists at all (guards and motivo
// not evaluated). Used by handlers to build action menus.
func (m *Maquina) PuedeTransicionar(desde, hacia Estado, sistema bool) bool {
	_, ok := m.buscarEdge(desde, hacia, sistema)
	return ok
}

// EsTerminal reports whether no forward edge leaves the estado. Duplication of
// a terminal document creates a new one; it is not a transition.
func (m *Maquina) EsTerminal(e Estado) bool {
	return len(m.edges[e]) == 0
}

func (m *Maquina) Variante() Variante { return m.variante }

func (m *Maquina) buscarEdge(desde, hacia Estado, sistema bool) (Transicion, bool) {
	for _, t := range m.edges[desde] {
		if t.Hacia != hacia {
			continue
		}
		if t.SoloSistema && !sistema {
			continue
		}
		return t, true
	}
	return Transicion{}, false
}

func esBlanco(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func opcional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ─── Tablas por variante ─────────────────────────────────────────────────────

// MaquinaPresupuesto: reenvío is a self-edge on enviado; rechazado and vencido
// are terminal; convertido is reached only as a side effect of generating the
// remito, and reverting it reports the generated documents to unlink.
func MaquinaPresupuesto() *Maquina {
	return &Maquina{
		variante: VariantePresupuesto,
		edges: map[Estado][]Transicion{
			EstadoBorrador: {
				{Hacia: EstadoEnviado},
				{Hacia: EstadoAceptado},
				{Hacia: EstadoRechazado, RequiereMotivo: true},
			},
			EstadoEnviado: {
				{Hacia: EstadoEnviado}, // reenvío
				{Hacia: EstadoAceptado},
				{Hacia: EstadoRechazado, RequiereMotivo: true},
			},
			EstadoAceptado: {
				{Hacia: EstadoConvertido, SoloSistema: true},
				{Hacia: EstadoBorrador, RequiereMotivo: true},
				{Hacia: EstadoAnulado, RequiereMotivo: true},
			},
			EstadoConvertido: {
				{Hacia: EstadoAceptado, RequiereMotivo: true, DevuelveVinculados: true},
			},
			EstadoAnulado: {
				{Hacia: EstadoBorrador, RequiereMotivo: true},
			},
			// rechazado y vencido: sin salidas
		},
	}
}

// MaquinaRemito: facturado is reached by the partial-invoicing side effect once
// nothing remains to invoice; reverting it reports the generated facturas.
func MaquinaRemito() *Maquina {
	return &Maquina{
		variante: VarianteRemito,
		edges: map[Estado][]Transicion{
			EstadoBorrador: {
				{Hacia: EstadoConfirmado},
				{Hacia: EstadoAnulado, RequiereMotivo: true},
			},
			EstadoConfirmado: {
				{Hacia: EstadoFacturado, SoloSistema: true},
				{Hacia: EstadoAnulado, RequiereMotivo: true},
			},
			EstadoFacturado: {
				{Hacia: EstadoConfirmado, RequiereMotivo: true, DevuelveVinculados: true},
			},
		},
	}
}

// MaquinaFactura: paid-state movement is driven by recibo approval/annulment,
// so every edge except anulación is system-only.
func MaquinaFactura() *Maquina {
	return &Maquina{
		variante: VarianteFactura,
		edges: map[Estado][]Transicion{
			EstadoPendiente: {
				{Hacia: EstadoParcial, SoloSistema: true},
				{Hacia: EstadoPagada, SoloSistema: true},
				{Hacia: EstadoAnulada, RequiereMotivo: true},
			},
			EstadoParcial: {
				{Hacia: EstadoParcial, SoloSistema: true}, // otro cobro parcial
				{Hacia: EstadoPagada, SoloSistema: true},
				{Hacia: EstadoPendiente, SoloSistema: true}, // recibo anulado
				{Hacia: EstadoAnulada, RequiereMotivo: true},
			},
			EstadoPagada: {
				{Hacia: EstadoParcial, SoloSistema: true},
				{Hacia: EstadoPendiente, SoloSistema: true},
			},
		},
	}
}

// MaquinaRecibo: aprobar is gated on the balance check; anular an approved
// recibo reports the imputed facturas so the caller restores their saldos.
func MaquinaRecibo() *Maquina {
	return &Maquina{
		variante: VarianteRecibo,
		edges: map[Estado][]Transicion{
			EstadoBorrador: {
				{Hacia: EstadoAprobado, Guarda: GuardaReciboBalanceado},
				{Hacia: EstadoAnulado, RequiereMotivo: true},
			},
			EstadoAprobado: {
				{Hacia: EstadoAnulado, RequiereMotivo: true, DevuelveVinculados: true},
			},
		},
	}
}
