package handler

import (
	"net/http"

	"distrigest/internal/apierror"
	"distrigest/internal/dto"
	"distrigest/internal/middleware"
	"distrigest/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PresupuestosHandler struct{ svc service.PresupuestoService }

func NewPresupuestosHandler(svc service.PresupuestoService) *PresupuestosHandler {
	return &PresupuestosHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear presupuesto
// @Description  Crea un presupuesto en borrador con sus ítems. El IVA se calcula al 21%.
// @Tags         presupuestos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearPresupuestoRequest true "Detalle del presupuesto"
// @Success      201  {object} dto.PresupuestoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/presupuestos [post]
func (h *PresupuestosHandler) Crear(c *gin.Context) {
	var req dto.CrearPresupuestoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	vendedorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Crear(c.Request.Context(), vendedorID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary      Detalle de presupuesto
// @Tags         presupuestos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del presupuesto"
// @Success      200 {object} dto.PresupuestoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/presupuestos/{id} [get]
func (h *PresupuestosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Presupuesto no encontrado"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar presupuestos
// @Tags         presupuestos
// @Produce      json
// @Security     BearerAuth
// @Param        estado     query string false "borrador | enviado | aceptado | rechazado | vencido | convertido | all"
// @Param        cliente_id query string false "UUID del cliente"
// @Param        page       query int    false "Página (default 1)"
// @Param        limit      query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.PresupuestoListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/presupuestos [get]
func (h *PresupuestosHandler) Listar(c *gin.Context) {
	var filter dto.PresupuestoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar presupuestos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transicion godoc
// @Summary      Transición de estado
// @Description  Mueve el presupuesto a otro estado válido del ciclo. Revertir convertido→aceptado anula el remito generado si no fue facturado.
// @Tags         presupuestos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string               true "UUID del presupuesto"
// @Param        body body dto.TransicionRequest true "Estado destino y motivo"
// @Success      200  {object} dto.TransicionPresupuestoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/presupuestos/{id}/transicion [post]
func (h *PresupuestosHandler) Transicion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.TransicionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Transicion(c.Request.Context(), id, usuarioID, req)
	if err != nil {
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Convertir godoc
// @Summary      Convertir a remito
// @Description  Mueve un presupuesto aceptado a convertido y genera el remito en la misma transacción.
// @Tags         presupuestos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del presupuesto"
// @Success      200 {object} dto.ConvertirPresupuestoResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/presupuestos/{id}/convertir [post]
func (h *PresupuestosHandler) Convertir(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Convertir(c.Request.Context(), id, usuarioID)
	if err != nil {
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Duplicar godoc
// @Summary      Duplicar presupuesto
// @Description  Clona cualquier presupuesto (incluso terminales) como un nuevo borrador.
// @Tags         presupuestos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del presupuesto"
// @Success      201 {object} dto.PresupuestoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/presupuestos/{id}/duplicar [post]
func (h *PresupuestosHandler) Duplicar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	claims := middleware.GetClaims(c)
	vendedorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Duplicar(c.Request.Context(), id, vendedorID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Historial godoc
// @Summary      Historial de estados
// @Tags         presupuestos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del presupuesto"
// @Success      200 {array} dto.HistorialEntryResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/presupuestos/{id}/historial [get]
func (h *PresupuestosHandler) Historial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
