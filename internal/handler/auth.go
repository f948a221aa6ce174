package handler

import (
	"net/http"

	"casacambio/internal/apierror"
	"casacambio/internal/dto"
	"casacambio/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Operadores Handler ───────────────────────────────────────────────────────

type OperadoresHandler struct{ svc *service.OperadorService }

func NewOperadoresHandler(svc *service.OperadorService) *OperadoresHandler {
	return &OperadoresHandler{svc: svc}
}

func (h *OperadoresHandler) Listar(c *gin.Context) {
	ops := h.svc.Listar()
	out := make([]dto.OperadorResponse, len(ops))
	for i, o := range ops {
		out[i] = service.OperadorToResponse(o)
	}
	c.JSON(http.StatusOK, out)
}

func (h *OperadoresHandler) Crear(c *gin.Context) {
	var req dto.CrearOperadorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.OperadorToResponse(op))
}

func (h *OperadoresHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarOperadorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, err := h.svc.Actualizar(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.OperadorToResponse(op))
}

// Eliminar removes an operator. Operators cannot remove themselves.
func (h *OperadoresHandler) Eliminar(c *gin.Context) {
	id := c.Param("id")
	if id == operadorID(c) {
		c.JSON(http.StatusConflict, apierror.Con("auto_eliminacion", "No puede eliminar su propio operador"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
