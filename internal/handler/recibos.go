package handler

import (
	"errors"
	"net/http"

	"distrigest/internal/apierror"
	"distrigest/internal/dto"
	"distrigest/internal/middleware"
	"distrigest/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RecibosHandler struct{ svc service.ReciboService }

func NewRecibosHandler(svc service.ReciboService) *RecibosHandler {
	return &RecibosHandler{svc: svc}
}

// CrearBorrador godoc
// @Summary      Guardar recibo en borrador
// @Description  Guarda un borrador sin exigir balance. Solo requiere cliente, fecha, una imputación y un medio de pago válido.
// @Tags         recibos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearReciboRequest true "Detalle del recibo"
// @Success      201  {object} dto.ReciboResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/recibos [post]
func (h *RecibosHandler) CrearBorrador(c *gin.Context) {
	var req dto.CrearReciboRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.CrearBorrador(c.Request.Context(), usuarioID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary      Detalle de recibo
// @Tags         recibos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del recibo"
// @Success      200 {object} dto.ReciboResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/recibos/{id} [get]
func (h *RecibosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Recibo no encontrado"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar recibos
// @Tags         recibos
// @Produce      json
// @Security     BearerAuth
// @Param        estado     query string false "borrador | aprobado | anulado | all"
// @Param        cliente_id query string false "UUID del cliente"
// @Param        fecha      query string false "Fecha YYYY-MM-DD"
// @Param        page       query int    false "Página (default 1)"
// @Param        limit      query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.ReciboListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/recibos [get]
func (h *RecibosHandler) Listar(c *gin.Context) {
	var filter dto.ReciboFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar recibos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Aprobar godoc
// @Summary      Aprobar recibo
// @Description  Ejecuta la compuerta de balance con totales recalculados y saldos vigentes, y aplica todas las imputaciones atómicamente. Fallas post-commit (Colppy, email) se informan como advertencias.
// @Tags         recibos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del recibo"
// @Success      200 {object} dto.AprobarReciboResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/recibos/{id}/aprobar [post]
func (h *RecibosHandler) Aprobar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Aprobar(c.Request.Context(), id, usuarioID)
	if err != nil {
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AprobarDirecto godoc
// @Summary      Crear y aprobar en un paso
// @Description  Valida el balance antes de escribir: si la compuerta falla no queda ningún borrador. Si la aprobación falla después de persistir el borrador, el 409 incluye recibo_id para corregirlo y reintentar.
// @Tags         recibos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearReciboRequest true "Detalle del recibo"
// @Success      201  {object} dto.AprobarReciboResponse
// @Failure      409  {object} apierror.AprobacionFallida
// @Router       /v1/recibos/aprobar-directo [post]
func (h *RecibosHandler) AprobarDirecto(c *gin.Context) {
	var req dto.CrearReciboRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.AprobarDirecto(c.Request.Context(), usuarioID, req)
	if err != nil {
		var fallida *service.ErrAprobacionFallida
		if errors.As(err, &fallida) {
			c.JSON(http.StatusConflict, apierror.NewAprobacionFallida(fallida.Error(), fallida.ReciboID.String()))
			return
		}
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Anular godoc
// @Summary      Anular recibo
// @Description  Revierte un recibo aprobado: cada factura imputada recupera su saldo y recalcula su estado en la misma transacción.
// @Tags         recibos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "UUID del recibo"
// @Param        body body dto.AnularReciboRequest true "Motivo de anulación"
// @Success      200  {object} dto.ReciboResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/recibos/{id} [delete]
func (h *RecibosHandler) Anular(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AnularReciboRequest
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
// @Tags         recibos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del recibo"
// @Success      200 {array} dto.HistorialEntryResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/recibos/{id}/historial [get]
func (h *RecibosHandler) Historial(c *gin.Context) {
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
