package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"distrigest/internal/domain"
	"distrigest/internal/dto"
	"distrigest/internal/model"
	"distrigest/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// tasaIVA is the standard 21% rate applied to every quoted line.
var tasaIVA = decimal.New(21, -2)

type PresupuestoService interface {
	Crear(ctx context.Context, vendedorID uuid.UUID, req dto.CrearPresupuestoRequest) (*dto.PresupuestoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.PresupuestoResponse, error)
	Listar(ctx context.Context, filter dto.PresupuestoFilter) (*dto.PresupuestoListResponse, error)
	// Transicion executes a user-requested estado change. On the reverting edge
	// (convertido → aceptado) it also annuls and unlinks the generated remito.
	Transicion(ctx context.Context, id, usuarioID uuid.UUID, req dto.TransicionRequest) (*dto.TransicionPresupuestoResponse, error)
	// Convertir moves an accepted quote to convertido and generates its remito
	// in the same transaction. The convertido edge is never reachable directly.
	Convertir(ctx context.Context, id, usuarioID uuid.UUID) (*dto.ConvertirPresupuestoResponse, error)
	// Duplicar clones any quote (terminal ones included) into a fresh borrador.
	Duplicar(ctx context.Context, id, vendedorID uuid.UUID) (*dto.PresupuestoResponse, error)
	Historial(ctx context.Context, id uuid.UUID) ([]dto.HistorialEntryResponse, error)
	// ExpirarVencidos is the nightly sweep: enviado/aceptado quotes past their
	// fecha_vencimiento move to vencido with a system ledger entry.
	ExpirarVencidos(ctx context.Context) (int, error)
}

type presupuestoService struct {
	repo          repository.PresupuestoRepository
	remitoRepo    repository.RemitoRepository
	clienteRepo   repository.ClienteRepository
	historialRepo repository.HistorialRepository
	maquina       *domain.Maquina
	maquinaRemito *domain.Maquina
}

func NewPresupuestoService(
	repo repository.PresupuestoRepository,
	remitoRepo repository.RemitoRepository,
	clienteRepo repository.ClienteRepository,
	historialRepo repository.HistorialRepository,
) PresupuestoService {
	return &presupuestoService{
		repo:          repo,
		remitoRepo:    remitoRepo,
		clienteRepo:   clienteRepo,
		historialRepo: historialRepo,
		maquina:       domain.MaquinaPresupuesto(),
		maquinaRemito: domain.MaquinaRemito(),
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// nuevaEntradaHistorial maps a committed transition to its ledger row.
func nuevaEntradaHistorial(variante domain.Variante, docID uuid.UUID, e domain.EntradaHistorial) *model.HistorialEstado {
	h := &model.HistorialEstado{
		DocumentoTipo: string(variante),
		DocumentoID:   docID,
		Desde:         string(e.Desde),
		Hacia:         string(e.Hacia),
		Sistema:       e.Sistema,
		Motivo:        e.Motivo,
		Notas:         e.Notas,
	}
	if !e.Sistema && e.PorUsuario != uuid.Nil {
		u := e.PorUsuario
		h.PorUsuario = &u
	}
	return h
}

func (s *presupuestoService) Crear(ctx context.Context, vendedorID uuid.UUID, req dto.CrearPresupuestoRequest) (*dto.PresupuestoResponse, error) {
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("cliente_id inválido: %w", err)
	}
	cliente, err := s.clienteRepo.FindByID(ctx, clienteID)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	if !cliente.Activo {
		return nil, errors.New("el cliente está inactivo")
	}

	moneda := req.Moneda
	if moneda == "" {
		moneda = cliente.Moneda
	}

	subtotal := decimal.Zero
	items := make([]model.PresupuestoItem, 0, len(req.Items))
	for _, it := range req.Items {
		lineSubtotal := it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad)))
		subtotal = subtotal.Add(lineSubtotal)
		items = append(items, model.PresupuestoItem{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			EnStock:        it.EnStock,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       lineSubtotal,
		})
	}
	iva := subtotal.Mul(tasaIVA).Round(2)

	var vencimiento *time.Time
	if req.FechaVencimiento != nil {
		t, err := time.Parse("2006-01-02", *req.FechaVencimiento)
		if err != nil {
			return nil, fmt.Errorf("fecha_vencimiento inválida: %w", err)
		}
		vencimiento = &t
	}

	presupuesto := model.Presupuesto{
		ClienteID:        clienteID,
		VendedorID:       vendedorID,
		Estado:           string(domain.EstadoBorrador),
		Moneda:           moneda,
		Subtotal:         subtotal,
		MontoIVA:         iva,
		Total:            subtotal.Add(iva),
		FechaVencimiento: vencimiento,
		Observaciones:    req.Observaciones,
		Items:            items,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		presupuesto.Numero = numero
		return s.repo.Create(ctx, tx, &presupuesto)
	})
	if txErr != nil {
		return nil, txErr
	}
	presupuesto.Cliente = cliente
	return presupuestoToResponse(&presupuesto), nil
}

func (s *presupuestoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.PresupuestoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("presupuesto no encontrado")
	}
	return presupuestoToResponse(p), nil
}

func (s *presupuestoService) Listar(ctx context.Context, filter dto.PresupuestoFilter) (*dto.PresupuestoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	presupuestos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PresupuestoResponse, 0, len(presupuestos))
	for i := range presupuestos {
		data = append(data, *presupuestoToResponse(&presupuestos[i]))
	}
	return &dto.PresupuestoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *presupuestoService) Transicion(ctx context.Context, id, usuarioID uuid.UUID, req dto.TransicionRequest) (*dto.TransicionPresupuestoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("presupuesto no encontrado")
	}

	doc := domain.Documento{
		ID:       p.ID,
		Variante: domain.VariantePresupuesto,
		Estado:   domain.Estado(p.Estado),
		Moneda:   p.Moneda,
	}
	var remito *model.Remito
	if p.RemitoID != nil {
		remito, err = s.remitoRepo.FindByID(ctx, *p.RemitoID)
		if err != nil {
			return nil, fmt.Errorf("remito vinculado no encontrado: %w", err)
		}
		doc.Vinculados = append(doc.Vinculados, domain.DocumentoVinculado{
			Tipo:   domain.VarianteRemito,
			ID:     remito.ID,
			Numero: fmt.Sprintf("%d", remito.Numero),
		})
	}

	cambio := domain.Cambio{PorUsuario: usuarioID, Motivo: deref(req.Motivo), Notas: deref(req.Notas)}
	res, err := s.maquina.ProponerTransicion(doc, domain.Estado(req.Estado), cambio, nil)
	if err != nil {
		return nil, err
	}

	// A conversion can only be undone while its remito has no invoicing.
	if len(res.ADesvincular) > 0 && remito != nil {
		for _, it := range remito.Items {
			if it.CantidadFacturada > 0 {
				return nil, errors.New("el remito generado ya tiene facturación; no se puede revertir la conversión")
			}
		}
	}

	var vinculados []dto.DocumentoVinculadoResponse
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateEstadoTx(tx, id, string(res.Estado)); err != nil {
			return err
		}
		if err := s.historialRepo.CreateTx(tx, nuevaEntradaHistorial(domain.VariantePresupuesto, id, res.Entrada)); err != nil {
			return err
		}

		for _, v := range res.ADesvincular {
			if v.Tipo != domain.VarianteRemito || remito == nil {
				continue
			}
			remDoc := domain.Documento{ID: remito.ID, Variante: domain.VarianteRemito, Estado: domain.Estado(remito.Estado)}
			remCambio := domain.Cambio{
				Sistema: true,
				Motivo:  fmt.Sprintf("reversión de la conversión del presupuesto #%d", p.Numero),
			}
			remRes, err := s.maquinaRemito.ProponerTransicion(remDoc, domain.EstadoAnulado, remCambio, nil)
			if err != nil {
				return fmt.Errorf("no se pudo anular el remito vinculado: %w", err)
			}
			if err := s.remitoRepo.UpdateEstadoTx(tx, remito.ID, string(remRes.Estado)); err != nil {
				return err
			}
			if err := s.historialRepo.CreateTx(tx, nuevaEntradaHistorial(domain.VarianteRemito, remito.ID, remRes.Entrada)); err != nil {
				return err
			}
			if err := s.repo.UpdateRemitoIDTx(tx, id, nil); err != nil {
				return err
			}
			vinculados = append(vinculados, dto.DocumentoVinculadoResponse{
				ID:     v.ID.String(),
				Tipo:   string(v.Tipo),
				Numero: remito.Numero,
			})
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	p.Estado = string(res.Estado)
	if len(vinculados) > 0 {
		p.RemitoID = nil
	}
	return &dto.TransicionPresupuestoResponse{
		Presupuesto: *presupuestoToResponse(p),
		Vinculados:  vinculados,
	}, nil
}

func (s *presupuestoService) Convertir(ctx context.Context, id, usuarioID uuid.UUID) (*dto.ConvertirPresupuestoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("presupuesto no encontrado")
	}

	doc := domain.Documento{ID: p.ID, Variante: domain.VariantePresupuesto, Estado: domain.Estado(p.Estado), Moneda: p.Moneda}
	cambio := domain.Cambio{PorUsuario: usuarioID, Sistema: true}
	res, err := s.maquina.ProponerTransicion(doc, domain.EstadoConvertido, cambio, nil)
	if err != nil {
		return nil, err
	}

	remito := model.Remito{
		ClienteID:     p.ClienteID,
		PresupuestoID: &p.ID,
		Estado:        string(domain.EstadoConfirmado),
		Moneda:        p.Moneda,
		Total:         p.Total,
	}
	for _, it := range p.Items {
		remito.Items = append(remito.Items, model.RemitoItem{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			EnStock:        it.EnStock,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.remitoRepo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		remito.Numero = numero
		if err := s.remitoRepo.Create(ctx, tx, &remito); err != nil {
			return err
		}
		if err := s.repo.UpdateEstadoTx(tx, id, string(res.Estado)); err != nil {
			return err
		}
		if err := s.repo.UpdateRemitoIDTx(tx, id, &remito.ID); err != nil {
			return err
		}
		return s.historialRepo.CreateTx(tx, nuevaEntradaHistorial(domain.VariantePresupuesto, id, res.Entrada))
	})
	if txErr != nil {
		return nil, txErr
	}

	p.Estado = string(res.Estado)
	p.RemitoID = &remito.ID
	remito.Cliente = p.Cliente
	return &dto.ConvertirPresupuestoResponse{
		Presupuesto: *presupuestoToResponse(p),
		Remito:      *remitoToResponse(&remito),
	}, nil
}

func (s *presupuestoService) Duplicar(ctx context.Context, id, vendedorID uuid.UUID) (*dto.PresupuestoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("presupuesto no encontrado")
	}

	copia := model.Presupuesto{
		ClienteID:     p.ClienteID,
		VendedorID:    vendedorID,
		Estado:        string(domain.EstadoBorrador),
		Moneda:        p.Moneda,
		Subtotal:      p.Subtotal,
		MontoIVA:      p.MontoIVA,
		Total:         p.Total,
		Observaciones: p.Observaciones,
	}
	for _, it := range p.Items {
		copia.Items = append(copia.Items, model.PresupuestoItem{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			EnStock:        it.EnStock,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		copia.Numero = numero
		return s.repo.Create(ctx, tx, &copia)
	})
	if txErr != nil {
		return nil, txErr
	}
	copia.Cliente = p.Cliente
	return presupuestoToResponse(&copia), nil
}

func (s *presupuestoService) Historial(ctx context.Context, id uuid.UUID) ([]dto.HistorialEntryResponse, error) {
	entradas, err := s.historialRepo.ListByDocumento(ctx, string(domain.VariantePresupuesto), id)
	if err != nil {
		return nil, err
	}
	return historialToResponses(entradas), nil
}

func (s *presupuestoService) ExpirarVencidos(ctx context.Context) (int, error) {
	vencidos, err := s.repo.ListVencidos(ctx, 100)
	if err != nil {
		return 0, err
	}

	expirados := 0
	for i := range vencidos {
		p := &vencidos[i]
		doc := domain.Documento{ID: p.ID, Variante: domain.VariantePresupuesto, Estado: domain.Estado(p.Estado)}
		res, err := s.maquina.ProponerTransicion(doc, domain.EstadoVencido, domain.Cambio{Sistema: true}, nil)
		if err != nil {
			log.Warn().Str("presupuesto_id", p.ID.String()).Err(err).Msg("expiracion: transición rechazada")
			continue
		}
		txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			if err := s.repo.UpdateEstadoTx(tx, p.ID, string(res.Estado)); err != nil {
				return err
			}
			return s.historialRepo.CreateTx(tx, nuevaEntradaHistorial(domain.VariantePresupuesto, p.ID, res.Entrada))
		})
		if txErr != nil {
			log.Error().Str("presupuesto_id", p.ID.String()).Err(txErr).Msg("expiracion: fallo al persistir")
			continue
		}
		expirados++
	}
	return expirados, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func historialToResponses(entradas []model.HistorialEstado) []dto.HistorialEntryResponse {
	resp := make([]dto.HistorialEntryResponse, 0, len(entradas))
	for _, e := range entradas {
		item := dto.HistorialEntryResponse{
			ID:        e.ID.String(),
			Desde:     e.Desde,
			Hacia:     e.Hacia,
			Sistema:   e.Sistema,
			Motivo:    e.Motivo,
			Notas:     e.Notas,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		}
		if e.PorUsuario != nil {
			u := e.PorUsuario.String()
			item.UsuarioID = &u
		}
		resp = append(resp, item)
	}
	return resp
}

func presupuestoToResponse(p *model.Presupuesto) *dto.PresupuestoResponse {
	items := make([]dto.ItemPresupuestoResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, dto.ItemPresupuestoResponse{
			ID:                it.ID.String(),
			Descripcion:       it.Descripcion,
			Cantidad:          it.Cantidad,
			CantidadFacturada: it.CantidadFacturada,
			EnStock:           it.EnStock,
			PrecioUnitario:    it.PrecioUnitario,
			Subtotal:          it.Subtotal,
		})
	}
	resp := &dto.PresupuestoResponse{
		ID:            p.ID.String(),
		Numero:        p.Numero,
		ClienteID:     p.ClienteID.String(),
		VendedorID:    p.VendedorID.String(),
		Estado:        p.Estado,
		Moneda:        p.Moneda,
		Subtotal:      p.Subtotal,
		MontoIVA:      p.MontoIVA,
		Total:         p.Total,
		Observaciones: p.Observaciones,
		Items:         items,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if p.Cliente != nil {
		resp.Cliente = &p.Cliente.RazonSocial
	}
	if p.FechaVencimiento != nil {
		f := p.FechaVencimiento.Format("2006-01-02")
		resp.FechaVencimiento = &f
	}
	if p.RemitoID != nil {
		r := p.RemitoID.String()
		resp.RemitoID = &r
	}
	return resp
}
