package handler

import (
	"net/http"
	"time"

	"casacambio/internal/dto"
	"casacambio/internal/infra"
	"casacambio/internal/service"

	"github.com/gin-gonic/gin"
)

type TransaccionesHandler struct{ svc service.TransaccionService }

func NewTransaccionesHandler(svc service.TransaccionService) *TransaccionesHandler {
	return &TransaccionesHandler{svc: svc}
}

// Registrar settles a transaction and returns it with the balance movements
// it produced. Movements with Aplicado=false were dropped because the
// currency was not in the open register.
func (h *TransaccionesHandler) Registrar(c *gin.Context) {
	var req dto.CrearTransaccionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	t, movs, err := h.svc.Registrar(c.Request.Context(), operadorID(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.RegistrarTransaccionResponse{
		Transaccion: service.TransaccionToResponse(t, h.svc.NombreCliente(t.ClienteID)),
		Movimientos: service.MovimientosToResponse(movs),
	})
}

// Calcular previews net and converted amounts without settling.
func (h *TransaccionesHandler) Calcular(c *gin.Context) {
	var req dto.CrearTransaccionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Calcular(req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransaccionesHandler) Listar(c *gin.Context) {
	var f dto.TransaccionFilter
	if !bindQuery(c, &f) {
		return
	}
	txs, total, err := h.svc.Listar(f)
	if err != nil {
		responderError(c, err)
		return
	}
	data := make([]dto.TransaccionResponse, len(txs))
	for i, t := range txs {
		data[i] = service.TransaccionToResponse(t, h.svc.NombreCliente(t.ClienteID))
	}
	c.JSON(http.StatusOK, dto.TransaccionListResponse{Data: data, Total: total, Page: f.Page, Limit: f.Limit})
}

func (h *TransaccionesHandler) Resumen(c *gin.Context) {
	var f dto.TransaccionFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Resumen(f)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Exportar returns every transaction matching the filter as an xlsx file.
func (h *TransaccionesHandler) Exportar(c *gin.Context) {
	var f dto.TransaccionFilter
	if !bindQuery(c, &f) {
		return
	}
	txs, err := h.svc.Filtrar(f)
	if err != nil {
		responderError(c, err)
		return
	}
	data, err := infra.ExportarTransacciones(txs, h.svc.NombreCliente)
	if err != nil {
		_ = c.Error(err)
		return
	}
	nombre := "transacciones_" + time.Now().Format("20060102") + ".xlsx"
	enviarArchivo(c, nombre, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *TransaccionesHandler) Obtener(c *gin.Context) {
	t, err := h.svc.ObtenerPorID(c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.TransaccionToResponse(t, h.svc.NombreCliente(t.ClienteID)))
}

// Comprobante renders the receipt PDF of one transaction.
func (h *TransaccionesHandler) Comprobante(c *gin.Context) {
	t, err := h.svc.ObtenerPorID(c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	data, err := infra.GenerarComprobante(t, h.svc.NombreCliente(t.ClienteID))
	if err != nil {
		_ = c.Error(err)
		return
	}
	enviarArchivo(c, "comprobante_"+t.ID.String()+".pdf", "application/pdf", data)
}
