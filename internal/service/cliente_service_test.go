package service

import (
	"context"
	"testing"
	"time"

	"distrigest/internal/dto"
	"distrigest/internal/infra"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBCRA struct {
	situacion *infra.SituacionDeudor
	err       error
	consultas []string
}

func (b *stubBCRA) ConsultarSituacion(_ context.Context, cuit string) (*infra.SituacionDeudor, error) {
	b.consultas = append(b.consultas, cuit)
	if b.err != nil {
		return nil, b.err
	}
	return b.situacion, nil
}

func TestCrearClienteRechazaCUITDuplicado(t *testing.T) {
	repo := newStubClienteRepo()
	svc := NewClienteService(repo, &stubBCRA{})

	req := dto.CrearClienteRequest{
		RazonSocial:  "Almacenes del Litoral SRL",
		CUIT:         "30709999991",
		CondicionIVA: "responsable_inscripto",
	}
	resp, err := svc.Crear(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Activo)
	assert.Equal(t, "ARS", resp.Moneda)

	req.RazonSocial = "Otro nombre, mismo CUIT"
	_, err = svc.Crear(context.Background(), req)
	require.EqualError(t, err, "ya existe un cliente con ese CUIT")
}

func TestActualizarClienteCamposParciales(t *testing.T) {
	repo := newStubClienteRepo()
	svc := NewClienteService(repo, &stubBCRA{})
	c := clienteDePrueba(repo)

	tel := "+54 11 4000-0000"
	resp, err := svc.Actualizar(context.Background(), c.ID, dto.ActualizarClienteRequest{Telefono: &tel})
	require.NoError(t, err)

	// solo cambia lo enviado
	require.NotNil(t, resp.Telefono)
	assert.Equal(t, tel, *resp.Telefono)
	assert.Equal(t, c.RazonSocial, resp.RazonSocial)
	assert.Equal(t, c.CUIT, resp.CUIT)
}

func TestDesactivarCliente(t *testing.T) {
	repo := newStubClienteRepo()
	svc := NewClienteService(repo, &stubBCRA{})
	c := clienteDePrueba(repo)

	require.NoError(t, svc.Desactivar(context.Background(), c.ID))
	assert.False(t, repo.clientes[c.ID].Activo)

	// sigue visible listando con inactivos
	lista, err := svc.Listar(context.Background(), dto.ClienteFilter{Activo: "all"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), lista.Total)
}

func TestSituacionCrediticiaConsultaPorCUIT(t *testing.T) {
	repo := newStubClienteRepo()
	bcra := &stubBCRA{situacion: &infra.SituacionDeudor{
		CUIT:        "30712345678",
		Situacion:   2,
		Descripcion: "con seguimiento especial",
		Consultado:  time.Now().UTC(),
	}}
	svc := NewClienteService(repo, bcra)
	c := clienteDePrueba(repo)

	resp, err := svc.SituacionCrediticia(context.Background(), c.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{c.CUIT}, bcra.consultas)
	assert.Equal(t, 2, resp.Situacion)
	assert.Equal(t, "con seguimiento especial", resp.Descripcion)
	assert.False(t, resp.Cacheado)
}

func TestSituacionCrediticiaMarcaRespuestaCacheada(t *testing.T) {
	repo := newStubClienteRepo()
	// un timestamp viejo delata una respuesta servida desde el cache
	bcra := &stubBCRA{situacion: &infra.SituacionDeudor{
		CUIT:       "30712345678",
		Situacion:  1,
		Consultado: time.Now().UTC().Add(-6 * time.Hour),
	}}
	svc := NewClienteService(repo, bcra)
	c := clienteDePrueba(repo)

	resp, err := svc.SituacionCrediticia(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, resp.Cacheado)
}

func TestSituacionCrediticiaClienteInexistente(t *testing.T) {
	repo := newStubClienteRepo()
	svc := NewClienteService(repo, &stubBCRA{})

	_, err := svc.SituacionCrediticia(context.Background(), uuid.New())
	require.EqualError(t, err, "cliente no encontrado")
}
