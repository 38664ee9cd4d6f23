package service

import (
	"context"
	"errors"
	"time"

	"distrigest/internal/domain"
	"distrigest/internal/dto"
	"distrigest/internal/model"
	"distrigest/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FacturaService interface {
	Obtener(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error)
	Listar(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error)
	// ListarAbiertas returns the customer's invoices with outstanding balance,
	// oldest due date first: the picker a recibo draft selects from.
	ListarAbiertas(ctx context.Context, clienteID uuid.UUID) ([]dto.FacturaAbiertaResponse, error)
	// Anular cancels an invoice that has no collections against it.
	Anular(ctx context.Context, id, usuarioID uuid.UUID, motivo string) (*dto.FacturaResponse, error)
	Historial(ctx context.Context, id uuid.UUID) ([]dto.HistorialEntryResponse, error)
}

type facturaService struct {
	repo          repository.FacturaRepository
	historialRepo repository.HistorialRepository
	maquina       *domain.Maquina
}

func NewFacturaService(repo repository.FacturaRepository, historialRepo repository.HistorialRepository) FacturaService {
	return &facturaService{
		repo:          repo,
		historialRepo: historialRepo,
		maquina:       domain.MaquinaFactura(),
	}
}

func (s *facturaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("factura no encontrada")
	}
	return facturaToResponse(f), nil
}

func (s *facturaService) Listar(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	facturas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.FacturaResponse, 0, len(facturas))
	for i := range facturas {
		data = append(data, *facturaToResponse(&facturas[i]))
	}
	return &dto.FacturaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *facturaService) ListarAbiertas(ctx context.Context, clienteID uuid.UUID) ([]dto.FacturaAbiertaResponse, error) {
	facturas, err := s.repo.ListAbiertas(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.FacturaAbiertaResponse, 0, len(facturas))
	for _, f := range facturas {
		item := dto.FacturaAbiertaResponse{
			ID:             f.ID.String(),
			Numero:         f.Numero,
			Tipo:           f.Tipo,
			Moneda:         f.Moneda,
			MontoTotal:     f.MontoTotal,
			SaldoPendiente: f.SaldoPendiente,
		}
		if f.FechaVencimiento != nil {
			v := f.FechaVencimiento.Format("2006-01-02")
			item.FechaVencimiento = &v
		}
		resp = append(resp, item)
	}
	return resp, nil
}

func (s *facturaService) Anular(ctx context.Context, id, usuarioID uuid.UUID, motivo string) (*dto.FacturaResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("factura no encontrada")
	}
	// A collected (even partially) invoice cannot be annulled while the
	// recibos stand: saldo < total means money was applied.
	if f.SaldoPendiente.LessThan(f.MontoTotal) {
		return nil, errors.New("la factura tiene cobros imputados; anule los recibos primero")
	}

	doc := domain.Documento{ID: f.ID, Variante: domain.VarianteFactura, Estado: domain.Estado(f.Estado), Moneda: f.Moneda}
	cambio := domain.Cambio{PorUsuario: usuarioID, Motivo: motivo}
	res, err := s.maquina.ProponerTransicion(doc, domain.EstadoAnulada, cambio, nil)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Re-check under the row lock: a recibo approved in the meantime may
		// have imputed against this factura.
		vivo, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return err
		}
		if vivo.SaldoPendiente.LessThan(vivo.MontoTotal) {
			return errors.New("la factura tiene cobros imputados; anule los recibos primero")
		}
		if err := s.repo.UpdateSaldoYEstadoTx(tx, id, vivo.SaldoPendiente, string(res.Estado)); err != nil {
			return err
		}
		return s.historialRepo.CreateTx(tx, nuevaEntradaHistorial(domain.VarianteFactura, id, res.Entrada))
	})
	if txErr != nil {
		return nil, txErr
	}
	f.Estado = string(res.Estado)
	return facturaToResponse(f), nil
}

func (s *facturaService) Historial(ctx context.Context, id uuid.UUID) ([]dto.HistorialEntryResponse, error) {
	entradas, err := s.historialRepo.ListByDocumento(ctx, string(domain.VarianteFactura), id)
	if err != nil {
		return nil, err
	}
	return historialToResponses(entradas), nil
}

func facturaToResponse(f *model.Factura) *dto.FacturaResponse {
	resp := &dto.FacturaResponse{
		ID:             f.ID.String(),
		Numero:         f.Numero,
		PuntoDeVenta:   f.PuntoDeVenta,
		Tipo:           f.Tipo,
		ClienteID:      f.ClienteID.String(),
		Estado:         f.Estado,
		Moneda:         f.Moneda,
		MontoNeto:      f.MontoNeto,
		MontoIVA:       f.MontoIVA,
		MontoTotal:     f.MontoTotal,
		SaldoPendiente: f.SaldoPendiente,
		SyncEstado:     f.SyncEstado,
		CreatedAt:      f.CreatedAt.Format(time.RFC3339),
	}
	if f.Cliente != nil {
		resp.Cliente = &f.Cliente.RazonSocial
	}
	if f.RemitoID != nil {
		r := f.RemitoID.String()
		resp.RemitoID = &r
	}
	if f.FechaVencimiento != nil {
		v := f.FechaVencimiento.Format("2006-01-02")
		resp.FechaVencimiento = &v
	}
	return resp
}
