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

type RemitosHandler struct{ svc service.RemitoService }

func NewRemitosHandler(svc service.RemitoService) *RemitosHandler {
	return &RemitosHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear remito manual
// @Description  Crea un remito confirmado sin presupuesto de origen.
// @Tags         remitos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearRemitoRequest true "Detalle del remito"
// @Success      201  {object} dto.RemitoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/remitos [post]
func (h *RemitosHandler) Crear(c *gin.Context) {
	var req dto.CrearRemitoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Crear(c.Request.Context(), usuarioID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary      Detalle de remito
// @Tags         remitos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del remito"
// @Success      200 {object} dto.RemitoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/remitos/{id} [get]
func (h *RemitosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Remito no encontrado"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar remitos
// @Tags         remitos
// @Produce      json
// @Security     BearerAuth
// @Param        estado     query string false "confirmado | entregado | facturado | anulado | all"
// @Param        cliente_id query string false "UUID del cliente"
// @Param        page       query int    false "Página (default 1)"
// @Param        limit      query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.RemitoListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/remitos [get]
func (h *RemitosHandler) Listar(c *gin.Context) {
	var filter dto.RemitoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar remitos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transicion godoc
// @Summary      Transición de estado
// @Description  Mueve el remito a otro estado válido. Anular un remito con ítems facturados está bloqueado.
// @Tags         remitos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string               true "UUID del remito"
// @Param        body body dto.TransicionRequest true "Estado destino y motivo"
// @Success      200  {object} dto.RemitoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/remitos/{id}/transicion [post]
func (h *RemitosHandler) Transicion(c *gin.Context) {
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

// Tablero godoc
// @Summary      Tablero de facturación pendiente
// @Description  Clasifica los remitos confirmados con cantidad sin facturar: listo_para_facturar, parcialmente_disponible o pendiente_de_stock.
// @Tags         remitos
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.TableroResponse
// @Failure      500 {object} apierror.APIError
// @Router       /v1/remitos/tablero [get]
func (h *RemitosHandler) Tablero(c *gin.Context) {
	resp, err := h.svc.Tablero(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al armar el tablero"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FacturarParcial godoc
// @Summary      Facturar ítems del remito
// @Description  Factura el restante completo de los ítems seleccionados y crea la factura en la misma transacción. Si no queda nada por facturar, el remito pasa a facturado.
// @Tags         remitos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true "UUID del remito"
// @Param        body body dto.FacturarParcialRequest true "Ítems a facturar y tipo de factura"
// @Success      201  {object} dto.FacturarParcialResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/remitos/{id}/facturar [post]
func (h *RemitosHandler) FacturarParcial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.FacturarParcialRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.FacturarParcial(c.Request.Context(), id, usuarioID, req)
	if err != nil {
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Historial godoc
// @Summary      Historial de estados
// @Tags         remitos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del remito"
// @Success      200 {array} dto.HistorialEntryResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/remitos/{id}/historial [get]
func (h *RemitosHandler) Historial(c *gin.Context) {
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
