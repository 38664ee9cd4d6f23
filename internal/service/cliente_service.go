package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"distrigest/internal/dto"
	"distrigest/internal/infra"
	"distrigest/internal/model"
	"distrigest/internal/repository"

	"github.com/google/uuid"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	// SituacionCrediticia consults the BCRA central de deudores for the
	// customer's CUIT. Advisory: the caller shows the rating, nothing blocks.
	SituacionCrediticia(ctx context.Context, id uuid.UUID) (*dto.SituacionCrediticiaResponse, error)
}

type clienteService struct {
	repo repository.ClienteRepository
	bcra infra.BCRAClient
}

func NewClienteService(repo repository.ClienteRepository, bcra infra.BCRAClient) ClienteService {
	return &clienteService{repo: repo, bcra: bcra}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	if existing, err := s.repo.FindByCUIT(ctx, req.CUIT); err == nil && existing != nil {
		return nil, errors.New("ya existe un cliente con ese CUIT")
	}

	moneda := req.Moneda
	if moneda == "" {
		moneda = "ARS"
	}
	cliente := &model.Cliente{
		RazonSocial:  req.RazonSocial,
		CUIT:         req.CUIT,
		Email:        req.Email,
		Telefono:     req.Telefono,
		Direccion:    req.Direccion,
		Localidad:    req.Localidad,
		Provincia:    req.Provincia,
		CondicionIVA: req.CondicionIVA,
		Moneda:       moneda,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, cliente); err != nil {
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	clientes, err := s.repo.List(ctx, filter.Activo == "all")
	if err != nil {
		return nil, err
	}

	resp := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		if filter.Busqueda != "" && !coincideBusqueda(&clientes[i], filter.Busqueda) {
			continue
		}
		resp = append(resp, *clienteToResponse(&clientes[i]))
	}
	return &dto.ClienteListResponse{
		Data:  resp,
		Total: int64(len(resp)),
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	if req.RazonSocial != "" {
		cliente.RazonSocial = req.RazonSocial
	}
	if req.Email != nil {
		cliente.Email = req.Email
	}
	if req.Telefono != nil {
		cliente.Telefono = req.Telefono
	}
	if req.Direccion != nil {
		cliente.Direccion = req.Direccion
	}
	if req.Localidad != nil {
		cliente.Localidad = req.Localidad
	}
	if req.Provincia != nil {
		cliente.Provincia = req.Provincia
	}
	if req.CondicionIVA != "" {
		cliente.CondicionIVA = req.CondicionIVA
	}
	if req.Activo != nil {
		cliente.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, cliente); err != nil {
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *clienteService) SituacionCrediticia(ctx context.Context, id uuid.UUID) (*dto.SituacionCrediticiaResponse, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}

	antes := time.Now().UTC()
	sit, err := s.bcra.ConsultarSituacion(ctx, cliente.CUIT)
	if err != nil {
		return nil, err
	}
	return &dto.SituacionCrediticiaResponse{
		CUIT:        sit.CUIT,
		Situacion:   sit.Situacion,
		Descripcion: sit.Descripcion,
		Consultado:  sit.Consultado.Format(time.RFC3339),
		Cacheado:    sit.Consultado.Before(antes),
	}, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func coincideBusqueda(c *model.Cliente, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(c.RazonSocial), q) || strings.Contains(c.CUIT, q)
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:           c.ID.String(),
		RazonSocial:  c.RazonSocial,
		CUIT:         c.CUIT,
		Email:        c.Email,
		Telefono:     c.Telefono,
		Direccion:    c.Direccion,
		Localidad:    c.Localidad,
		Provincia:    c.Provincia,
		CondicionIVA: c.CondicionIVA,
		Moneda:       c.Moneda,
		Activo:       c.Activo,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}
