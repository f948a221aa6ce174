package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"casacambio/internal/apierror"
	"casacambio/internal/dto"
	"casacambio/internal/infra"
	"casacambio/internal/model"
	"casacambio/internal/service"

	"github.com/gin-gonic/gin"
)

// listadorBancos resolves bank display names for reports.
type listadorBancos interface {
	Listar() []model.Banco
}

func nombresBancos(l listadorBancos) map[string]string {
	out := map[string]string{}
	if l == nil {
		return out
	}
	for _, b := range l.Listar() {
		out[b.ID] = b.Nombre
	}
	return out
}

type CajaHandler struct {
	svc    service.CajaService
	bancos listadorBancos
}

func NewCajaHandler(svc service.CajaService, bancos listadorBancos) *CajaHandler {
	return &CajaHandler{svc: svc, bancos: bancos}
}

// Abrir opens the register with the amounts entered by the operator. Active
// currencies, cryptos and bank pairs missing from the request open at zero.
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sesion := h.svc.PrepararApertura(operadorID(c), req)
	abierta, err := h.svc.Abrir(c.Request.Context(), sesion)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.CajaToResponse(abierta))
}

// Cerrar closes the open register, capturing the live bank balances.
func (h *CajaHandler) Cerrar(c *gin.Context) {
	cerrada, err := h.svc.Cerrar(c.Request.Context(), operadorID(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.CajaToResponse(cerrada))
}

// Actual returns the lifecycle state and, when open, the running session.
func (h *CajaHandler) Actual(c *gin.Context) {
	resp := dto.EstadoCajaResponse{Estado: h.svc.Estado().String()}
	if s, ok := h.svc.Actual(); ok {
		r := service.CajaToResponse(s)
		resp.Caja = &r
	}
	c.JSON(http.StatusOK, resp)
}

// Historial returns closed sessions, oldest first. The index in the list is
// the one accepted by ObtenerHistorial and Reporte.
func (h *CajaHandler) Historial(c *gin.Context) {
	hist := h.svc.Historial()
	out := make([]dto.CajaResponse, len(hist))
	for i, s := range hist {
		out[i] = service.CajaToResponse(s)
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total": len(out)})
}

func (h *CajaHandler) ObtenerHistorial(c *gin.Context) {
	s, ok := h.sesionHistorial(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.CajaToResponse(s))
}

// Reporte renders the closing report PDF of a history entry.
func (h *CajaHandler) Reporte(c *gin.Context) {
	s, ok := h.sesionHistorial(c)
	if !ok {
		return
	}
	data, err := infra.GenerarReporteCierre(s, nombresBancos(h.bancos))
	if err != nil {
		_ = c.Error(err)
		return
	}
	enviarArchivo(c, fmt.Sprintf("cierre_%s.pdf", c.Param("indice")), "application/pdf", data)
}

func (h *CajaHandler) sesionHistorial(c *gin.Context) (model.SesionCaja, bool) {
	indice, err := strconv.Atoi(c.Param("indice"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Indice invalido"))
		return model.SesionCaja{}, false
	}
	s, err := h.svc.ObtenerHistorial(indice)
	if err != nil {
		responderError(c, err)
		return model.SesionCaja{}, false
	}
	return s, true
}

// ── Saldos bancarios ─────────────────────────────────────────────────────────

type SaldosHandler struct {
	libro  service.LibroBancos
	serial service.Serializador
}

func NewSaldosHandler(libro service.LibroBancos, serial service.Serializador) *SaldosHandler {
	if serial == nil {
		serial = service.NewSerializadorLocal()
	}
	return &SaldosHandler{libro: libro, serial: serial}
}

func (h *SaldosHandler) Listar(c *gin.Context) {
	filas := h.libro.Listar()
	out := make([]dto.SaldoBancarioResponse, len(filas))
	for i, f := range filas {
		out[i] = dto.SaldoBancarioResponse{BancoID: f.BancoID, Moneda: f.Moneda, Monto: f.Monto}
	}
	c.JSON(http.StatusOK, out)
}

// Obtener returns the balance of one pair; missing rows read as zero.
func (h *SaldosHandler) Obtener(c *gin.Context) {
	bancoID, moneda := c.Param("banco_id"), c.Param("moneda")
	c.JSON(http.StatusOK, dto.SaldoBancarioResponse{
		BancoID: bancoID,
		Moneda:  moneda,
		Monto:   h.libro.ObtenerSaldo(bancoID, moneda),
	})
}

// Fijar overwrites the balance of one pair, as a manual correction.
func (h *SaldosHandler) Fijar(c *gin.Context) {
	var req dto.FijarSaldoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	bancoID, moneda := c.Param("banco_id"), c.Param("moneda")
	err := h.serial.Ejecutar(c.Request.Context(), func(ctx context.Context) error {
		h.libro.FijarSaldo(ctx, bancoID, moneda, req.Monto)
		return nil
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.SaldoBancarioResponse{BancoID: bancoID, Moneda: moneda, Monto: h.libro.ObtenerSaldo(bancoID, moneda)})
}
