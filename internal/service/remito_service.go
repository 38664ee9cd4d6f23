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
	"distrigest/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RemitoService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearRemitoRequest) (*dto.RemitoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.RemitoResponse, error)
	Listar(ctx context.Context, filter dto.RemitoFilter) (*dto.RemitoListResponse, error)
	Transicion(ctx context.Context, id, usuarioID uuid.UUID, req dto.TransicionRequest) (*dto.RemitoResponse, error)
	// Tablero classifies every confirmed remito that still has uninvoiced
	// quantity: listo / parcial / pendiente according to stock of the
	// remaining lines. Fully invoiced remitos never appear.
	Tablero(ctx context.Context) (*dto.TableroResponse, error)
	// FacturarParcial invoices the full remaining quantity of the selected
	// lines and creates the factura in the same transaction. When nothing is
	// left to invoice afterwards, the remito moves to facturado.
	FacturarParcial(ctx context.Context, id, usuarioID uuid.UUID, req dto.FacturarParcialRequest) (*dto.FacturarParcialResponse, error)
	Historial(ctx context.Context, id uuid.UUID) ([]dto.HistorialEntryResponse, error)
}

type remitoService struct {
	repo          repository.RemitoRepository
	facturaRepo   repository.FacturaRepository
	clienteRepo   repository.ClienteRepository
	historialRepo repository.HistorialRepository
	dispatcher    *worker.Dispatcher
	maquina       *domain.Maquina
}

func NewRemitoService(
	repo repository.RemitoRepository,
	facturaRepo repository.FacturaRepository,
	clienteRepo repository.ClienteRepository,
	historialRepo repository.HistorialRepository,
	dispatcher *worker.Dispatcher,
) RemitoService {
	return &remitoService{
		repo:          repo,
		facturaRepo:   facturaRepo,
		clienteRepo:   clienteRepo,
		historialRepo: historialRepo,
		dispatcher:    dispatcher,
		maquina:       domain.MaquinaRemito(),
	}
}

func (s *remitoService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearRemitoRequest) (*dto.RemitoResponse, error) {
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("cliente_id inválido: %w", err)
	}
	cliente, err := s.clienteRepo.FindByID(ctx, clienteID)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}

	moneda := req.Moneda
	if moneda == "" {
		moneda = cliente.Moneda
	}

	total := decimal.Zero
	remito := model.Remito{
		ClienteID:     clienteID,
		Estado:        string(domain.EstadoBorrador),
		Moneda:        moneda,
		Observaciones: req.Observaciones,
	}
	for _, it := range req.Items {
		lineSubtotal := it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad)))
		total = total.Add(lineSubtotal)
		remito.Items = append(remito.Items, model.RemitoItem{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			EnStock:        it.EnStock,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       lineSubtotal,
		})
	}
	remito.Total = total

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		remito.Numero = numero
		return s.repo.Create(ctx, tx, &remito)
	})
	if txErr != nil {
		return nil, txErr
	}
	remito.Cliente = cliente
	return remitoToResponse(&remito), nil
}

func (s *remitoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.RemitoResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("remito no encontrado")
	}
	return remitoToResponse(r), nil
}

func (s *remitoService) Listar(ctx context.Context, filter dto.RemitoFilter) (*dto.RemitoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	remitos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.RemitoResponse, 0, len(remitos))
	for i := range remitos {
		data = append(data, *remitoToResponse(&remitos[i]))
	}
	return &dto.RemitoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *remitoService) Transicion(ctx context.Context, id, usuarioID uuid.UUID, req dto.TransicionRequest) (*dto.RemitoResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("remito no encontrado")
	}

	doc := domain.Documento{ID: r.ID, Variante: domain.VarianteRemito, Estado: domain.Estado(r.Estado), Moneda: r.Moneda}
	cambio := domain.Cambio{PorUsuario: usuarioID, Motivo: deref(req.Motivo), Notas: deref(req.Notas)}
	res, err := s.maquina.ProponerTransicion(doc, domain.Estado(req.Estado), cambio, nil)
	if err != nil {
		return nil, err
	}

	// Annulling is blocked once any line was invoiced: the facturas exist.
	if res.Estado == domain.EstadoAnulado {
		for _, it := range r.Items {
			if it.CantidadFacturada > 0 {
				return nil, errors.New("el remito tiene facturación registrada; anule las facturas primero")
			}
		}
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateEstadoTx(tx, id, string(res.Estado)); err != nil {
			return err
		}
		return s.historialRepo.CreateTx(tx, nuevaEntradaHistorial(domain.VarianteRemito, id, res.Entrada))
	})
	if txErr != nil {
		return nil, txErr
	}
	r.Estado = string(res.Estado)
	return remitoToResponse(r), nil
}

func (s *remitoService) Tablero(ctx context.Context) (*dto.TableroResponse, error) {
	remitos, err := s.repo.ListConPendientes(ctx)
	if err != nil {
		return nil, err
	}

	data := make([]dto.TableroRemitoItem, 0, len(remitos))
	for i := range remitos {
		r := &remitos[i]
		clasif := domain.Clasificar(itemsPendientes(r))
		if clasif == domain.EntregaCompleta {
			continue
		}
		data = append(data, dto.TableroRemitoItem{
			Remito:        *remitoToResponse(r),
			Clasificacion: clasificacionLabel(clasif),
		})
	}
	return &dto.TableroResponse{Data: data, Total: len(data)}, nil
}

func (s *remitoService) FacturarParcial(ctx context.Context, id, usuarioID uuid.UUID, req dto.FacturarParcialRequest) (*dto.FacturarParcialResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("remito no encontrado")
	}
	if r.Estado != string(domain.EstadoConfirmado) {
		return nil, errors.New("solo se puede facturar un remito confirmado")
	}
	cliente, err := s.clienteRepo.FindByID(ctx, r.ClienteID)
	if err != nil {
		return nil, errors.New("cliente del remito no encontrado")
	}

	itemIDs := make([]uuid.UUID, 0, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		itemID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("item_id inválido: %w", err)
		}
		itemIDs = append(itemIDs, itemID)
	}

	var factura model.Factura
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Quantities come from a row-locked re-read: a factura committed by a
		// concurrent request is visible here and never invoiced twice.
		locked, err := s.repo.FindByIDTx(tx, r.ID)
		if err != nil {
			return err
		}
		if locked.Estado != string(domain.EstadoConfirmado) {
			return errors.New("solo se puede facturar un remito confirmado")
		}

		seleccion := make(map[uuid.UUID]bool, len(itemIDs))
		for _, itemID := range itemIDs {
			seleccion[itemID] = true
		}

		// Every selected line is invoiced for its full remaining quantity; the
		// tracker rejects lines out of stock, in flight, or already exhausted.
		type lineaFacturada struct {
			itemID   uuid.UUID
			cantidad int
		}
		var lineas []lineaFacturada
		neto := decimal.Zero
		for i := range locked.Items {
			it := &locked.Items[i]
			if !seleccion[it.ID] {
				continue
			}
			delete(seleccion, it.ID)

			pendiente := domain.ItemPendiente{
				ItemID:            it.ID,
				Cantidad:          it.Cantidad,
				CantidadFacturada: it.CantidadFacturada,
				EnStock:           it.EnStock,
				EnvioPendiente:    it.EnvioPendiente,
			}
			cantidad, err := pendiente.FacturarRestante()
			if err != nil {
				return err
			}
			neto = neto.Add(it.PrecioUnitario.Mul(decimal.NewFromInt(int64(cantidad))))
			lineas = append(lineas, lineaFacturada{itemID: it.ID, cantidad: cantidad})
		}
		if len(seleccion) > 0 {
			return errors.New("uno o más ítems seleccionados no pertenecen al remito")
		}
		if len(lineas) == 0 {
			return errors.New("debe seleccionar al menos un ítem con cantidad pendiente")
		}

		iva := neto.Mul(tasaIVA).Round(2)
		total := neto.Add(iva)
		factura = model.Factura{
			PuntoDeVenta:   1,
			Tipo:           req.Tipo,
			ClienteID:      locked.ClienteID,
			RemitoID:       &locked.ID,
			PresupuestoID:  locked.PresupuestoID,
			Estado:         string(domain.EstadoPendiente),
			Moneda:         locked.Moneda,
			MontoNeto:      neto,
			MontoIVA:       iva,
			MontoTotal:     total,
			SaldoPendiente: total,
			SyncEstado:     "pendiente",
		}
		numero, err := s.facturaRepo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		factura.Numero = numero
		if err := s.facturaRepo.Create(ctx, tx, &factura); err != nil {
			return err
		}

		quedaPendiente := false
		for i := range locked.Items {
			it := &locked.Items[i]
			for _, l := range lineas {
				if l.itemID == it.ID {
					facturada := it.CantidadFacturada + l.cantidad
					// The line stays marked as in flight until the Colppy
					// submission of the factura resolves.
					if err := s.repo.UpdateItemFacturacionTx(tx, it.ID, facturada, true); err != nil {
						return err
					}
					it.CantidadFacturada = facturada
					it.EnvioPendiente = true
				}
			}
			if it.Cantidad-it.CantidadFacturada > 0 {
				quedaPendiente = true
			}
		}

		if !quedaPendiente {
			doc := domain.Documento{ID: locked.ID, Variante: domain.VarianteRemito, Estado: domain.Estado(locked.Estado)}
			res, err := s.maquina.ProponerTransicion(doc, domain.EstadoFacturado, domain.Cambio{Sistema: true}, nil)
			if err != nil {
				return err
			}
			if err := s.repo.UpdateEstadoTx(tx, locked.ID, string(res.Estado)); err != nil {
				return err
			}
			if err := s.historialRepo.CreateTx(tx, nuevaEntradaHistorial(domain.VarianteRemito, locked.ID, res.Entrada)); err != nil {
				return err
			}
			locked.Estado = string(res.Estado)
		}

		r = locked
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async Colppy sync — best effort, the retry cron covers failures.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueColppy(ctx, worker.ColppyJobPayload{
			Documento: "factura",
			ID:        factura.ID.String(),
		})
	}

	factura.Cliente = cliente
	r.Cliente = cliente
	return &dto.FacturarParcialResponse{
		Factura: *facturaToResponse(&factura),
		Remito:  *remitoToResponse(r),
	}, nil
}

func (s *remitoService) Historial(ctx context.Context, id uuid.UUID) ([]dto.HistorialEntryResponse, error) {
	entradas, err := s.historialRepo.ListByDocumento(ctx, string(domain.VarianteRemito), id)
	if err != nil {
		return nil, err
	}
	return historialToResponses(entradas), nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func itemsPendientes(r *model.Remito) []domain.ItemPendiente {
	items := make([]domain.ItemPendiente, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.ItemPendiente{
			ItemID:            it.ID,
			Cantidad:          it.Cantidad,
			CantidadFacturada: it.CantidadFacturada,
			EnStock:           it.EnStock,
			EnvioPendiente:    it.EnvioPendiente,
		})
	}
	return items
}

func clasificacionLabel(c domain.ClasificacionEntrega) string {
	switch c {
	case domain.EntregaLista:
		return "listo_para_facturar"
	case domain.EntregaParcial:
		return "parcialmente_disponible"
	default:
		return "pendiente_de_stock"
	}
}

func remitoToResponse(r *model.Remito) *dto.RemitoResponse {
	items := make([]dto.ItemRemitoResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, dto.ItemRemitoResponse{
			ID:                it.ID.String(),
			Descripcion:       it.Descripcion,
			Cantidad:          it.Cantidad,
			CantidadFacturada: it.CantidadFacturada,
			CantidadRestante:  it.Cantidad - it.CantidadFacturada,
			EnStock:           it.EnStock,
			EnvioPendiente:    it.EnvioPendiente,
			PrecioUnitario:    it.PrecioUnitario,
			Subtotal:          it.Subtotal,
		})
	}
	resp := &dto.RemitoResponse{
		ID:            r.ID.String(),
		Numero:        r.Numero,
		ClienteID:     r.ClienteID.String(),
		Estado:        r.Estado,
		Moneda:        r.Moneda,
		Total:         r.Total,
		Observaciones: r.Observaciones,
		Items:         items,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	if r.Cliente != nil {
		resp.Cliente = &r.Cliente.RazonSocial
	}
	if r.PresupuestoID != nil {
		p := r.PresupuestoID.String()
		resp.PresupuestoID = &p
	}
	return resp
}
