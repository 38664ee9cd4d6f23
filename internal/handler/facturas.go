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

type FacturasHandler struct{ svc service.FacturaService }

func NewFacturasHandler(svc service.FacturaService) *FacturasHandler {
	return &FacturasHandler{svc: svc}
}

// Obtener godoc
// @Summary      Detalle de factura
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la factura"
// @Success      200 {object} dto.FacturaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/facturas/{id} [get]
func (h *FacturasHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Factura no encontrada"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar facturas
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        estado     query string false "pendiente | parcial | pagada | anulada | all"
// @Param        cliente_id query string false "UUID del cliente"
// @Param        page       query int    false "Página (default 1)"
// @Param        limit      query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.FacturaListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/facturas [get]
func (h *FacturasHandler) Listar(c *gin.Context) {
	var filter dto.FacturaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar facturas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Abiertas godoc
// @Summary      Facturas abiertas del cliente
// @Description  Facturas con saldo pendiente, vencimiento más antiguo primero. Es el selector desde el que se arma un recibo.
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del cliente"
// @Success      200 {array} dto.FacturaAbiertaResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/clientes/{id}/facturas-abiertas [get]
func (h *FacturasHandler) Abiertas(c *gin.Context) {
	clienteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ListarAbiertas(c.Request.Context(), clienteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar facturas abiertas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anular godoc
// @Summary      Anular factura
// @Description  Anula una factura sin cobros imputados. Si tiene recibos aplicados, primero hay que anularlos.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "UUID de la factura"
// @Param        body body dto.AnularFacturaRequest true "Motivo de anulación"
// @Success      200  {object} dto.FacturaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/facturas/{id} [delete]
func (h *FacturasHandler) Anular(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AnularFacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Anular(c.Request.Context(), id, usuarioID, req.Motivo)
	if err != nil {
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary      Historial de estados
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la factura"
// @Success      200 {array} dto.HistorialEntryResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/facturas/{id}/historial [get]
func (h *FacturasHandler) Historial(c *gin.Context) {
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
