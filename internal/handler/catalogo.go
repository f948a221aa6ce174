package handler

import (
	"net/http"

	"casacambio/internal/dto"
	"casacambio/internal/model"
	"casacambio/internal/service"

	"github.com/gin-gonic/gin"
)

// Reference data CRUD. Creation assigns a UUID; Activo defaults to true.

func activoPorDefecto(a *bool) bool { return a == nil || *a }

func asignar[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// ── Bancos ───────────────────────────────────────────────────────────────────

type BancosHandler struct{ svc *service.BancoService }

func NewBancosHandler(svc *service.BancoService) *BancosHandler { return &BancosHandler{svc: svc} }

func (h *BancosHandler) Listar(c *gin.Context) { c.JSON(http.StatusOK, h.svc.Listar()) }

func (h *BancosHandler) Obtener(c *gin.Context) {
	b, err := h.svc.Obtener(c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BancosHandler) Crear(c *gin.Context) {
	var req dto.CrearBancoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	b, err := h.svc.Crear(c.Request.Context(), model.Banco{
		Nombre: req.Nombre, Codigo: req.Codigo, Pais: req.Pais, Activo: activoPorDefecto(req.Activo),
	})
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BancosHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarBancoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	b, err := h.svc.Actualizar(c.Request.Context(), c.Param("id"), func(b *model.Banco) {
		asignar(&b.Nombre, req.Nombre)
		asignar(&b.Codigo, req.Codigo)
		asignar(&b.Pais, req.Pais)
		asignar(&b.Activo, req.Activo)
	})
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BancosHandler) Eliminar(c *gin.Context) {
	if err := h.svc.Eliminar(c.Request.Context(), c.Param("id")); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Monedas y criptos ────────────────────────────────────────────────────────

type MonedasHandler struct{ svc *service.MonedaService }

func NewMonedasHandler(svc *service.MonedaService) *MonedasHandler { return &MonedasHandler{svc: svc} }

func (h *MonedasHandler) ListarMonedas(c *gin.Context) { c.JSON(http.StatusOK, h.svc.ListarMonedas()) }

func (h *MonedasHandler) ObtenerMoneda(c *gin.Context) {
	m, err := h.svc.ObtenerMoneda(c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MonedasHandler) CrearMoneda(c *gin.Context) {
	var req dto.CrearMonedaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	m, err := h.svc.CrearMoneda(c.Request.Context(), model.Moneda{
		Codigo: req.Codigo, Nombre: req.Nombre, Simbolo: req.Simbolo,
		TasaCompra: req.TasaCompra, TasaVenta: req.TasaVenta, Activo: activoPorDefecto(req.Activo),
	})
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MonedasHandler) ActualizarMoneda(c *gin.Context) {
	var req dto.ActualizarMonedaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	m, err := h.svc.ActualizarMoneda(c.Request.Context(), c.Param("id"), func(m *model.Moneda) {
		asignar(&m.Codigo, req.Codigo)
		asignar(&m.Nombre, req.Nombre)
		asignar(&m.Simbolo, req.Simbolo)
		asignar(&m.TasaCompra, req.TasaCompra)
		asignar(&m.TasaVenta, req.TasaVenta)
		asignar(&m.Activo, req.Activo)
	})
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MonedasHandler) EliminarMoneda(c *gin.Context) {
	if err := h.svc.EliminarMoneda(c.Request.Context(), c.Param("id")); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MonedasHandler) ListarCriptos(c *gin.Context) { c.JSON(http.StatusOK, h.svc.ListarCriptos()) }

func (h *MonedasHandler) ObtenerCripto(c *gin.Context) {
	m, err := h.svc.ObtenerCripto(c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MonedasHandler) CrearCripto(c *gin.Context) {
	var req dto.CrearCriptoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	m, err := h.svc.CrearCripto(c.Request.Context(), model.Cripto{
		Nombre: req.Nombre, Codigo: req.Codigo, Red: req.Red, Activo: activoPorDefecto(req.Activo),
	})
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MonedasHandler) ActualizarCripto(c *gin.Context) {
	var req dto.ActualizarCriptoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	m, err := h.svc.ActualizarCripto(c.Request.Context(), c.Param("id"), func(m *model.Cripto) {
		asignar(&m.Nombre, req.Nombre)
		asignar(&m.Codigo, req.Codigo)
		asignar(&m.Red, req.Red)
		asignar(&m.Activo, req.Activo)
	})
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MonedasHandler) EliminarCripto(c *gin.Context) {
	if err := h.svc.EliminarCripto(c.Request.Context(), c.Param("id")); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Tipos de operación ───────────────────────────────────────────────────────

type TiposOperacionHandler struct{ svc *service.TipoOperacionService }

func NewTiposOperacionHandler(svc *service.TipoOperacionService) *TiposOperacionHandler {
	return &TiposOperacionHandler{svc: svc}
}

func (h *TiposOperacionHandler) Listar(c *gin.Context) { c.JSON(http.StatusOK, h.svc.Listar()) }

func (h *TiposOperacionHandler) Crear(c *gin.Context) {
	var req dto.CrearTipoOperacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	t, err := h.svc.Crear(c.Request.Context(), model.TipoOperacion{
		Nombre: req.Nombre, Codigo: req.Codigo, Descripcion: req.Descripcion, Activo: activoPorDefecto(req.Activo),
	})
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TiposOperacionHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarTipoOperacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	t, err := h.svc.Actualizar(c.Request.Context(), c.Param("id"), func(t *model.TipoOperacion) {
		asignar(&t.Nombre, req.Nombre)
		asignar(&t.Codigo, req.Codigo)
		asignar(&t.Descripcion, req.Descripcion)
		asignar(&t.Activo, req.Activo)
	})
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TiposOperacionHandler) Eliminar(c *gin.Context) {
	if err := h.svc.Eliminar(c.Request.Context(), c.Param("id")); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Clientes ─────────────────────────────────────────────────────────────────

type ClientesHandler struct{ svc *service.ClienteService }

func NewClientesHandler(svc *service.ClienteService) *ClientesHandler {
	return &ClientesHandler{svc: svc}
}

func (h *ClientesHandler) Listar(c *gin.Context) { c.JSON(http.StatusOK, h.svc.Listar()) }

func (h *ClientesHandler) Obtener(c *gin.Context) {
	cl, err := h.svc.Obtener(c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *ClientesHandler) Crear(c *gin.Context) {
	var req dto.CrearClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cl, err := h.svc.Crear(c.Request.Context(), model.Cliente{
		Nombre: req.Nombre, TipoDocumento: req.TipoDocumento, NumeroDocumento: req.NumeroDocumento,
		Email: req.Email, Telefono: req.Telefono,
	})
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

func (h *ClientesHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cl, err := h.svc.Actualizar(c.Request.Context(), c.Param("id"), func(cl *model.Cliente) {
		asignar(&cl.Nombre, req.Nombre)
		asignar(&cl.TipoDocumento, req.TipoDocumento)
		asignar(&cl.NumeroDocumento, req.NumeroDocumento)
		asignar(&cl.Email, req.Email)
		asignar(&cl.Telefono, req.Telefono)
	})
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *ClientesHandler) Eliminar(c *gin.Context) {
	if err := h.svc.Eliminar(c.Request.Context(), c.Param("id")); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
