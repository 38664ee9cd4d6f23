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
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ReciboService interface {
	// CrearBorrador saves a draft. Balance is not required yet; the draft only
	// needs a customer, a date, one imputación and one valid payment line.
	CrearBorrador(ctx context.Context, usuarioID uuid.UUID, req dto.CrearReciboRequest) (*dto.ReciboResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ReciboResponse, error)
	Listar(ctx context.Context, filter dto.ReciboFilter) (*dto.ReciboListResponse, error)
	// Aprobar runs the balance gate against recomputed totals and current
	// invoice balances, then applies every imputación atomically. Post-commit
	// side effects (Colppy, email) surface as advertencias, never as failures.
	Aprobar(ctx context.Context, id, usuarioID uuid.UUID) (*dto.AprobarReciboResponse, error)
	// AprobarDirecto creates the draft and approves it in one call. An
	// unbalanced request fails before anything is written; if the approval
	// fails after the draft committed, the draft survives and the error is an
	// *ErrAprobacionFallida carrying its id.
	AprobarDirecto(ctx context.Context, usuarioID uuid.UUID, req dto.CrearReciboRequest) (*dto.AprobarReciboResponse, error)
	// Anular reverses an approved recibo: every imputed factura gets its saldo
	// back and its estado recomputed, in the same transaction.
	Anular(ctx context.Context, id, usuarioID uuid.UUID, motivo string) (*dto.ReciboResponse, error)
	Historial(ctx context.Context, id uuid.UUID) ([]dto.HistorialEntryResponse, error)
}

// ErrAprobacionFallida reports that AprobarDirecto committed the borrador but
// the approval step was rejected afterwards (saldo vigente changed, guard
// failure, tx error). ReciboID points at the surviving draft so the caller
// can correct it and re-approve instead of capturing everything again.
type ErrAprobacionFallida struct {
	ReciboID uuid.UUID
	Numero   int64
	Causa    error
}

func (e *ErrAprobacionFallida) Error() string {
	return fmt.Sprintf("el recibo #%d quedó en borrador: %s", e.Numero, e.Causa)
}

func (e *ErrAprobacionFallida) Unwrap() error { return e.Causa }

type reciboService struct {
	repo          repository.ReciboRepository
	facturaRepo   repository.FacturaRepository
	clienteRepo   repository.ClienteRepository
	cuentaRepo    repository.CuentaTesoreriaRepository
	historialRepo repository.HistorialRepository
	dispatcher    *worker.Dispatcher
	maquina       *domain.Maquina
	maquinaFact   *domain.Maquina
}

func NewReciboService(
	repo repository.ReciboRepository,
	facturaRepo repository.FacturaRepository,
	clienteRepo repository.ClienteRepository,
	cuentaRepo repository.CuentaTesoreriaRepository,
	historialRepo repository.HistorialRepository,
	dispatcher *worker.Dispatcher,
) ReciboService {
	return &reciboService{
		repo:          repo,
		facturaRepo:   facturaRepo,
		clienteRepo:   clienteRepo,
		cuentaRepo:    cuentaRepo,
		historialRepo: historialRepo,
		dispatcher:    dispatcher,
		maquina:       domain.MaquinaRecibo(),
		maquinaFact:   domain.MaquinaFactura(),
	}
}

func (s *reciboService) CrearBorrador(ctx context.Context, usuarioID uuid.UUID, req dto.CrearReciboRequest) (*dto.ReciboResponse, error) {
	recibo, _, err := s.armarRecibo(ctx, req)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		recibo.Numero = numero
		return s.repo.Create(ctx, tx, recibo)
	})
	if txErr != nil {
		return nil, txErr
	}
	return reciboToResponse(recibo), nil
}

// armarRecibo resolves the request against open invoices and treasury
// accounts, validates the draft and returns the model plus the domain
// snapshot the approval gate re-evaluates.
func (s *reciboService) armarRecibo(ctx context.Context, req dto.CrearReciboRequest) (*model.Recibo, *domain.SnapshotRecibo, error) {
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, nil, fmt.Errorf("cliente_id inválido: %w", err)
	}
	cliente, err := s.clienteRepo.FindByID(ctx, clienteID)
	if err != nil {
		return nil, nil, errors.New("cliente no encontrado")
	}
	fecha, err := time.Parse("2006-01-02", req.Fecha)
	if err != nil {
		return nil, nil, fmt.Errorf("fecha inválida: %w", err)
	}

	abiertas, err := s.facturaRepo.ListAbiertas(ctx, clienteID)
	if err != nil {
		return nil, nil, err
	}
	porID := make(map[uuid.UUID]*model.Factura, len(abiertas))
	for i := range abiertas {
		porID[abiertas[i].ID] = &abiertas[i]
	}

	seleccion := domain.NuevaSeleccion(cliente.Moneda)
	for _, imp := range req.Imputaciones {
		facturaID, err := uuid.Parse(imp.FacturaID)
		if err != nil {
			return nil, nil, fmt.Errorf("factura_id inválido: %w", err)
		}
		f, ok := porID[facturaID]
		if !ok {
			return nil, nil, fmt.Errorf("la factura %s no está abierta para este cliente", imp.FacturaID)
		}
		abierta := domain.FacturaAbierta{
			ID:         f.ID,
			Numero:     fmt.Sprintf("%04d-%08d", f.PuntoDeVenta, f.Numero),
			Moneda:     f.Moneda,
			MontoTotal: f.MontoTotal,
			Saldo:      f.SaldoPendiente,
		}
		if err := seleccion.Seleccionar(abierta); err != nil {
			return nil, nil, err
		}
		if imp.Monto.IsPositive() {
			if err := seleccion.AjustarMonto(facturaID, imp.Monto); err != nil {
				return nil, nil, err
			}
		}
	}

	lineasRet := make([]domain.LineaRetencion, 0, len(req.Retenciones))
	for _, ret := range req.Retenciones {
		lineasRet = append(lineasRet, domain.LineaRetencion{
			Tipo:           domain.TipoRetencion(ret.Tipo),
			Jurisdiccion:   deref(ret.Jurisdiccion),
			NroCertificado: deref(ret.NroCertificado),
			Monto:          ret.Monto,
		})
	}
	grupos, _, err := domain.AgruparRetenciones(lineasRet)
	if err != nil {
		return nil, nil, err
	}

	medios := make([]domain.MedioPago, 0, len(req.MediosPago))
	modelMedios := make([]model.ReciboMedioPago, 0, len(req.MediosPago))
	for _, mp := range req.MediosPago {
		cuentaID, err := uuid.Parse(mp.CuentaTesoreriaID)
		if err != nil {
			return nil, nil, fmt.Errorf("cuenta_tesoreria_id inválido: %w", err)
		}
		if _, err := s.cuentaRepo.FindByID(ctx, cuentaID); err != nil {
			return nil, nil, fmt.Errorf("cuenta de tesorería %s no encontrada", mp.CuentaTesoreriaID)
		}

		var fechaCheque *time.Time
		if mp.FechaCheque != nil {
			t, err := time.Parse("2006-01-02", *mp.FechaCheque)
			if err != nil {
				return nil, nil, fmt.Errorf("fecha_cheque inválida: %w", err)
			}
			fechaCheque = &t
		}
		medio := domain.MedioPago{
			CuentaTesoreriaID: cuentaID,
			Tipo:              domain.TipoMedioPago(mp.Tipo),
			Monto:             mp.Monto,
			NroCheque:         deref(mp.NroCheque),
			FechaCheque:       fechaCheque,
			BancoCheque:       deref(mp.BancoCheque),
			Referencia:        deref(mp.Referencia),
		}
		medios = append(medios, medio)
		if !medio.Valido() {
			continue // excluded from totals, never persisted
		}
		modelMedios = append(modelMedios, model.ReciboMedioPago{
			CuentaTesoreriaID: cuentaID,
			Tipo:              mp.Tipo,
			Monto:             mp.Monto,
			NroCheque:         mp.NroCheque,
			FechaCheque:       fechaCheque,
			BancoCheque:       mp.BancoCheque,
			Referencia:        mp.Referencia,
		})
	}

	snap := &domain.SnapshotRecibo{
		ClienteID:   clienteID,
		Fecha:       fecha,
		Seleccion:   seleccion,
		Retenciones: lineasRet,
		MediosPago:  medios,
	}
	if err := domain.ValidarBorrador(*snap); err != nil {
		return nil, nil, err
	}
	balance := domain.CalcularBalance(*snap)

	recibo := &model.Recibo{
		ClienteID:        clienteID,
		Fecha:            fecha,
		Descripcion:      req.Descripcion,
		Estado:           string(domain.EstadoBorrador),
		Moneda:           cliente.Moneda,
		TotalImputado:    balance.TotalImputado,
		TotalRetenciones: balance.TotalRetenciones,
		TotalACobrar:     balance.TotalACobrar,
		TotalCobrado:     balance.TotalCobrado,
		SyncEstado:       "pendiente",
		Cliente:          cliente,
		MediosPago:       modelMedios,
	}
	for _, imp := range seleccion.Imputaciones {
		recibo.Imputaciones = append(recibo.Imputaciones, model.ReciboImputacion{
			FacturaID:      imp.FacturaID,
			TotalFactura:   imp.TotalFactura,
			SaldoAlImputar: imp.Saldo,
			MontoImputado:  imp.MontoImputado,
		})
	}
	for _, g := range grupos {
		for _, l := range g.Lineas {
			recibo.Retenciones = append(recibo.Retenciones, model.ReciboRetencion{
				Tipo:           string(l.Tipo),
				Jurisdiccion:   opcionalStr(l.Jurisdiccion),
				NroCertificado: opcionalStr(l.NroCertificado),
				Monto:          l.Monto,
			})
		}
	}
	return recibo, snap, nil
}

func (s *reciboService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ReciboResponse, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("recibo no encontrado")
	}
	return reciboToResponse(rec), nil
}

func (s *reciboService) Listar(ctx context.Context, filter dto.ReciboFilter) (*dto.ReciboListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	recibos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ReciboResponse, 0, len(recibos))
	for i := range recibos {
		data = append(data, *reciboToResponse(&recibos[i]))
	}
	return &dto.ReciboListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *reciboService) Aprobar(ctx context.Context, id, usuarioID uuid.UUID) (*dto.AprobarReciboResponse, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("recibo no encontrado")
	}
	return s.aprobar(ctx, rec, usuarioID)
}

func (s *reciboService) AprobarDirecto(ctx context.Context, usuarioID uuid.UUID, req dto.CrearReciboRequest) (*dto.AprobarReciboResponse, error) {
	recibo, snap, err := s.armarRecibo(ctx, req)
	if err != nil {
		return nil, err
	}
	// The gate runs before anything is written: an unbalanced direct approval
	// leaves no draft behind.
	if err := domain.ValidarAprobacion(*snap); err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		recibo.Numero = numero
		return s.repo.Create(ctx, tx, recibo)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp, err := s.aprobar(ctx, recibo, usuarioID)
	if err != nil {
		// The borrador is already committed; surface its id so the caller can
		// fix it and retry the approval.
		return nil, &ErrAprobacionFallida{ReciboID: recibo.ID, Numero: recibo.Numero, Causa: err}
	}
	return resp, nil
}

// aprobar rebuilds the snapshot from the stored lines against CURRENT invoice
// balances, runs the gate as the transition's guard, and applies everything in
// one transaction.
func (s *reciboService) aprobar(ctx context.Context, rec *model.Recibo, usuarioID uuid.UUID) (*dto.AprobarReciboResponse, error) {
	seleccion := domain.NuevaSeleccion(rec.Moneda)
	for _, imp := range rec.Imputaciones {
		f, err := s.facturaRepo.FindByID(ctx, imp.FacturaID)
		if err != nil {
			return nil, fmt.Errorf("factura imputada no encontrada: %w", err)
		}
		if f.SaldoPendiente.LessThan(imp.MontoImputado) {
			return nil, fmt.Errorf("el saldo de la factura %04d-%08d cambió: quedan $%s y el recibo imputa $%s",
				f.PuntoDeVenta, f.Numero, f.SaldoPendiente.StringFixed(2), imp.MontoImputado.StringFixed(2))
		}
		abierta := domain.FacturaAbierta{
			ID:         f.ID,
			Numero:     fmt.Sprintf("%04d-%08d", f.PuntoDeVenta, f.Numero),
			Moneda:     f.Moneda,
			MontoTotal: f.MontoTotal,
			Saldo:      f.SaldoPendiente,
		}
		if err := seleccion.Seleccionar(abierta); err != nil {
			return nil, err
		}
		if err := seleccion.AjustarMonto(f.ID, imp.MontoImputado); err != nil {
			return nil, err
		}
	}

	lineasRet := make([]domain.LineaRetencion, 0, len(rec.Retenciones))
	for _, ret := range rec.Retenciones {
		lineasRet = append(lineasRet, domain.LineaRetencion{
			Tipo:           domain.TipoRetencion(ret.Tipo),
			Jurisdiccion:   deref(ret.Jurisdiccion),
			NroCertificado: deref(ret.NroCertificado),
			Monto:          ret.Monto,
		})
	}
	medios := make([]domain.MedioPago, 0, len(rec.MediosPago))
	for _, mp := range rec.MediosPago {
		medios = append(medios, domain.MedioPago{
			CuentaTesoreriaID: mp.CuentaTesoreriaID,
			Tipo:              domain.TipoMedioPago(mp.Tipo),
			Monto:             mp.Monto,
			NroCheque:         deref(mp.NroCheque),
			FechaCheque:       mp.FechaCheque,
			BancoCheque:       deref(mp.BancoCheque),
			Referencia:        deref(mp.Referencia),
		})
	}
	snap := domain.SnapshotRecibo{
		ClienteID:   rec.ClienteID,
		Fecha:       rec.Fecha,
		Seleccion:   seleccion,
		Retenciones: lineasRet,
		MediosPago:  medios,
	}

	doc := domain.Documento{ID: rec.ID, Variante: domain.VarianteRecibo, Estado: domain.Estado(rec.Estado), Moneda: rec.Moneda}
	guardas := map[string]domain.Guarda{
		domain.GuardaReciboBalanceado: func() error { return domain.ValidarAprobacion(snap) },
	}
	res, err := s.maquina.ProponerTransicion(doc, domain.EstadoAprobado, domain.Cambio{PorUsuario: usuarioID}, guardas)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Row lock on the recibo: a concurrent aprobar/anular of the same
		// document waits here and then sees the estado already moved.
		vivo, err := s.repo.FindByIDTx(tx, rec.ID)
		if err != nil {
			return err
		}
		if vivo.Estado != rec.Estado {
			return fmt.Errorf("el recibo #%d cambió de estado: ahora está %s", rec.Numero, vivo.Estado)
		}

		if err := s.repo.UpdateEstadoTx(tx, rec.ID, string(res.Estado)); err != nil {
			return err
		}
		if err := s.historialRepo.CreateTx(tx, nuevaEntradaHistorial(domain.VarianteRecibo, rec.ID, res.Entrada)); err != nil {
			return err
		}

		for _, imp := range rec.Imputaciones {
			f, err := s.facturaRepo.FindByIDTx(tx, imp.FacturaID)
			if err != nil {
				return err
			}
			nuevoSaldo := f.SaldoPendiente.Sub(imp.MontoImputado)
			if nuevoSaldo.IsNegative() {
				return fmt.Errorf("el saldo de la factura %d quedaría negativo", f.Numero)
			}

			hacia := domain.EstadoParcial
			if nuevoSaldo.LessThan(domain.MontoMinimoImputacion) {
				hacia = domain.EstadoPagada
			}
			fDoc := domain.Documento{ID: f.ID, Variante: domain.VarianteFactura, Estado: domain.Estado(f.Estado)}
			fRes, err := s.maquinaFact.ProponerTransicion(fDoc, hacia, domain.Cambio{Sistema: true, Notas: fmt.Sprintf("recibo #%d", rec.Numero)}, nil)
			if err != nil {
				return err
			}
			if err := s.facturaRepo.UpdateSaldoYEstadoTx(tx, f.ID, nuevoSaldo, string(fRes.Estado)); err != nil {
				return err
			}
			if err := s.historialRepo.CreateTx(tx, nuevaEntradaHistorial(domain.VarianteFactura, f.ID, fRes.Entrada)); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	rec.Estado = string(res.Estado)

	// Post-commit side effects. The approval stands regardless of these.
	var advertencias []string
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueColppy(ctx, worker.ColppyJobPayload{Documento: "recibo", ID: rec.ID.String()}); err != nil {
			log.Warn().Err(err).Str("recibo_id", rec.ID.String()).Msg("aprobar: no se pudo encolar la sincronización con Colppy")
			advertencias = append(advertencias, "el recibo se aprobó pero la sincronización con Colppy quedó pendiente")
		}
		if rec.Cliente != nil && rec.Cliente.Email != nil && *rec.Cliente.Email != "" {
			job := worker.ReciboEmailJobPayload{ReciboID: rec.ID.String(), ToEmail: *rec.Cliente.Email}
			if err := s.dispatcher.EnqueueEmail(ctx, job); err != nil {
				log.Warn().Err(err).Str("recibo_id", rec.ID.String()).Msg("aprobar: no se pudo encolar el email")
				advertencias = append(advertencias, "el recibo se aprobó pero el envío por email quedó pendiente")
			}
		}
	}

	return &dto.AprobarReciboResponse{Recibo: *reciboToResponse(rec), Advertencias: advertencias}, nil
}

func (s *reciboService) Anular(ctx context.Context, id, usuarioID uuid.UUID, motivo string) (*dto.ReciboResponse, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("recibo no encontrado")
	}

	doc := domain.Documento{ID: rec.ID, Variante: domain.VarianteRecibo, Estado: domain.Estado(rec.Estado), Moneda: rec.Moneda}
	for _, imp := range rec.Imputaciones {
		doc.Vinculados = append(doc.Vinculados, domain.DocumentoVinculado{
			Tipo: domain.VarianteFactura,
			ID:   imp.FacturaID,
		})
	}
	res, err := s.maquina.ProponerTransicion(doc, domain.EstadoAnulado, domain.Cambio{PorUsuario: usuarioID, Motivo: motivo}, nil)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		vivo, err := s.repo.FindByIDTx(tx, rec.ID)
		if err != nil {
			return err
		}
		if vivo.Estado != rec.Estado {
			return fmt.Errorf("el recibo #%d cambió de estado: ahora está %s", rec.Numero, vivo.Estado)
		}

		if err := s.repo.UpdateEstadoTx(tx, rec.ID, string(res.Estado)); err != nil {
			return err
		}
		if err := s.historialRepo.CreateTx(tx, nuevaEntradaHistorial(domain.VarianteRecibo, rec.ID, res.Entrada)); err != nil {
			return err
		}

		// Only the annulment of an APPROVED recibo touches invoices: a draft
		// never applied anything.
		for _, v := range res.ADesvincular {
			var monto *model.ReciboImputacion
			for i := range rec.Imputaciones {
				if rec.Imputaciones[i].FacturaID == v.ID {
					monto = &rec.Imputaciones[i]
					break
				}
			}
			if monto == nil {
				continue
			}
			f, err := s.facturaRepo.FindByIDTx(tx, v.ID)
			if err != nil {
				return err
			}
			nuevoSaldo := f.SaldoPendiente.Add(monto.MontoImputado)
			if nuevoSaldo.GreaterThan(f.MontoTotal) {
				nuevoSaldo = f.MontoTotal
			}

			hacia := domain.EstadoParcial
			if nuevoSaldo.GreaterThanOrEqual(f.MontoTotal) {
				hacia = domain.EstadoPendiente
			}
			fDoc := domain.Documento{ID: f.ID, Variante: domain.VarianteFactura, Estado: domain.Estado(f.Estado)}
			fRes, err := s.maquinaFact.ProponerTransicion(fDoc, hacia, domain.Cambio{Sistema: true, Notas: fmt.Sprintf("anulación recibo #%d", rec.Numero)}, nil)
			if err != nil {
				return err
			}
			if err := s.facturaRepo.UpdateSaldoYEstadoTx(tx, f.ID, nuevoSaldo, string(fRes.Estado)); err != nil {
				return err
			}
			if err := s.historialRepo.CreateTx(tx, nuevaEntradaHistorial(domain.VarianteFactura, f.ID, fRes.Entrada)); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	rec.Estado = string(res.Estado)
	return reciboToResponse(rec), nil
}

func (s *reciboService) Historial(ctx context.Context, id uuid.UUID) ([]dto.HistorialEntryResponse, error) {
	entradas, err := s.historialRepo.ListByDocumento(ctx, string(domain.VarianteRecibo), id)
	if err != nil {
		return nil, err
	}
	return historialToResponses(entradas), nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func opcionalStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func reciboToResponse(rec *model.Recibo) *dto.ReciboResponse {
	imputaciones := make([]dto.ImputacionResponse, 0, len(rec.Imputaciones))
	for _, imp := range rec.Imputaciones {
		item := dto.ImputacionResponse{
			FacturaID:     imp.FacturaID.String(),
			TotalFactura:  imp.TotalFactura,
			Saldo:         imp.SaldoAlImputar,
			MontoImputado: imp.MontoImputado,
		}
		if imp.Factura != nil {
			item.NumeroFactura = imp.Factura.Numero
		}
		imputaciones = append(imputaciones, item)
	}
	retenciones := make([]dto.RetencionResponse, 0, len(rec.Retenciones))
	for _, ret := range rec.Retenciones {
		retenciones = append(retenciones, dto.RetencionResponse{
			Tipo:           ret.Tipo,
			Jurisdiccion:   ret.Jurisdiccion,
			NroCertificado: ret.NroCertificado,
			Monto:          ret.Monto,
		})
	}
	medios := make([]dto.MedioPagoResponse, 0, len(rec.MediosPago))
	for _, mp := range rec.MediosPago {
		item := dto.MedioPagoResponse{
			CuentaTesoreriaID: mp.CuentaTesoreriaID.String(),
			Tipo:              mp.Tipo,
			Monto:             mp.Monto,
			NroCheque:         mp.NroCheque,
			BancoCheque:       mp.BancoCheque,
			Referencia:        mp.Referencia,
		}
		if mp.CuentaTesoreria != nil {
			item.CuentaTesoreria = &mp.CuentaTesoreria.Nombre
		}
		if mp.FechaCheque != nil {
			f := mp.FechaCheque.Format("2006-01-02")
			item.FechaCheque = &f
		}
		medios = append(medios, item)
	}

	resp := &dto.ReciboResponse{
		ID:               rec.ID.String(),
		Numero:           rec.Numero,
		ClienteID:        rec.ClienteID.String(),
		Fecha:            rec.Fecha.Format("2006-01-02"),
		Descripcion:      rec.Descripcion,
		Estado:           rec.Estado,
		Moneda:           rec.Moneda,
		TotalImputado:    rec.TotalImputado,
		TotalRetenciones: rec.TotalRetenciones,
		TotalACobrar:     rec.TotalACobrar,
		TotalCobrado:     rec.TotalCobrado,
		Imputaciones:     imputaciones,
		Retenciones:      retenciones,
		MediosPago:       medios,
		SyncEstado:       rec.SyncEstado,
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
	}
	if rec.Cliente != nil {
		resp.Cliente = &rec.Cliente.RazonSocial
	}
	return resp
}
