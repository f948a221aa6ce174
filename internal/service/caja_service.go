package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"casacambio/internal/dto"
	"casacambio/internal/model"
	"casacambio/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// EstadoCaja is the register lifecycle: Cerrada → Abierta → Cerrada.
type EstadoCaja int

const (
	Cerrada EstadoCaja = iota
	Abierta
)

func (e EstadoCaja) String() string {
	if e == Abierta {
		return "abierta"
	}
	return "cerrada"
}

// CajaEfectivo is the cash capability the settlement engine needs.
type CajaEfectivo interface {
	// AplicarDeltaEfectivo adds delta to the running amount of moneda in the
	// open session. It reports false, leaving the session untouched, when no
	// session is open or moneda was not part of it at open time.
	AplicarDeltaEfectivo(ctx context.Context, moneda string, delta decimal.Decimal) bool
}

// EncoladorCierre receives closed sessions for report generation.
type EncoladorCierre interface {
	EncolarCierreCaja(ctx context.Context, sesion model.SesionCaja, indice int) error
}

// CatalogoApertura supplies the active reference data used to build the
// opening snapshot.
type CatalogoApertura interface {
	MonedasActivas() []model.Moneda
	CriptosActivas() []model.Cripto
	BancosActivos() []model.Banco
}

type CajaService interface {
	CajaEfectivo
	Abrir(ctx context.Context, sesion model.SesionCaja) (model.SesionCaja, error)
	// PrepararApertura builds a snapshot for every active currency and crypto
	// and every active bank × fiat currency pair.
	PrepararApertura(operadorID string, req dto.AbrirCajaRequest) model.SesionCaja
	Cerrar(ctx context.Context, operadorID string) (model.SesionCaja, error)
	Estado() EstadoCaja
	Actual() (model.SesionCaja, bool)
	Historial() []model.SesionCaja
	ObtenerHistorial(indice int) (model.SesionCaja, error)
	Reiniciar()
	Cargar(ctx context.Context) error
}

// DocumentoCaja is the persisted shape of the "caja" store.
type DocumentoCaja struct {
	Actual    *model.SesionCaja  `json:"actual"`
	Historial []model.SesionCaja `json:"historial"`
}

type cajaService struct {
	mu        sync.RWMutex
	actual    *model.SesionCaja
	historial []model.SesionCaja

	libro     LibroBancos
	catalogo  CatalogoApertura
	serial    Serializador
	encolador EncoladorCierre
	almacen   *repository.Almacen[DocumentoCaja]
	ahora     func() time.Time
}

// NewCajaService wires the register. catalogo, encolador and almacen may be nil.
func NewCajaService(
	libro LibroBancos,
	catalogo CatalogoApertura,
	serial Serializador,
	encolador EncoladorCierre,
	almacen *repository.Almacen[DocumentoCaja],
) CajaService {
	if serial == nil {
		serial = NewSerializadorLocal()
	}
	return &cajaService{
		libro:     libro,
		catalogo:  catalogo,
		serial:    serial,
		encolador: encolador,
		almacen:   almacen,
		ahora:     time.Now,
	}
}

func (s *cajaService) Reiniciar() {
	s.mu.Lock()
	s.actual = nil
	s.historial = nil
	s.mu.Unlock()
}

func (s *cajaService) Cargar(ctx context.Context) error {
	doc, ok, err := cargar(ctx, s.almacen)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		s.actual, s.historial = nil, nil
		return nil
	}
	s.actual, s.historial = doc.Actual, doc.Historial
	return nil
}

func (s *cajaService) snapshot() DocumentoCaja {
	doc := DocumentoCaja{Historial: make([]model.SesionCaja, len(s.historial))}
	for i, h := range s.historial {
		doc.Historial[i] = h.Clonar()
	}
	if s.actual != nil {
		a := s.actual.Clonar()
		doc.Actual = &a
	}
	return doc
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, sesion model.SesionCaja) (model.SesionCaja, error) {
	var abierta model.SesionCaja
	err := s.serial.Ejecutar(ctx, func(ctx context.Context) error {
		s.mu.Lock()
		if s.actual != nil {
			s.mu.Unlock()
			return ErrCajaYaAbierta
		}
		nueva := sesion.Clonar()
		if nueva.ID == uuid.Nil {
			nueva.ID = uuid.New()
		}
		if nueva.Fecha.IsZero() {
			nueva.Fecha = s.ahora()
		}
		nueva.Abierta = true
		nueva.CerradaPor, nueva.CerradaEn = "", nil
		// Opening is the only path that resets ledger rows to known values.
		for _, b := range nueva.SaldosBancarios {
			s.libro.FijarSaldo(ctx, b.BancoID, b.Moneda, b.Monto)
		}
		s.actual = &nueva
		abierta = nueva.Clonar()
		doc := s.snapshot()
		s.mu.Unlock()

		persistir(ctx, s.almacen, doc)
		log.Info().
			Str("caja_id", abierta.ID.String()).
			Str("operador", abierta.AbiertaPor).
			Int("monedas", len(abierta.Monedas)).
			Int("saldos_bancarios", len(abierta.SaldosBancarios)).
			Msg("caja abierta")
		return nil
	})
	return abierta, err
}

func (s *cajaService) PrepararApertura(operadorID string, req dto.AbrirCajaRequest) model.SesionCaja {
	sesion := model.SesionCaja{
		Fecha:      s.ahora(),
		Monedas:    map[string]model.SaldoMoneda{},
		AbiertaPor: operadorID,
	}
	if s.catalogo == nil {
		return sesion
	}
	inicial := func(codigo string) model.SaldoMoneda {
		m := req.Efectivo[codigo]
		return model.SaldoMoneda{MontoInicial: m, MontoActual: m}
	}
	monedas := s.catalogo.MonedasActivas()
	for _, m := range monedas {
		sesion.Monedas[m.Codigo] = inicial(m.Codigo)
	}
	for _, c := range s.catalogo.CriptosActivas() {
		sesion.Monedas[c.Codigo] = inicial(c.Codigo)
	}

	montos := make(map[string]decimal.Decimal, len(req.Bancos))
	for _, b := range req.Bancos {
		montos[b.BancoID+"/"+b.Moneda] = b.Monto
	}
	for _, b := range s.catalogo.BancosActivos() {
		for _, m := range monedas {
			fila := model.SaldoBancario{BancoID: b.ID, Moneda: m.Codigo}
			fila.Monto = montos[fila.Clave()]
			sesion.SaldosBancarios = append(sesion.SaldosBancarios, fila)
		}
	}
	return sesion
}

// ── Cerrar ────────────────────────────────────────────────────────────────────

func (s *cajaService) Cerrar(ctx context.Context, operadorID string) (model.SesionCaja, error) {
	var cerrada model.SesionCaja
	var indice int
	err := s.serial.Ejecutar(ctx, func(ctx context.Context) error {
		s.mu.Lock()
		if s.actual == nil {
			s.mu.Unlock()
			return ErrCajaNoAbierta
		}
		final := s.actual.Clonar()
		// Snapshot the live ledger, which has drifted since opening.
		for i, b := range final.SaldosBancarios {
			final.SaldosBancarios[i].Monto = s.libro.ObtenerSaldo(b.BancoID, b.Moneda)
		}
		ahora := s.ahora()
		final.Abierta = false
		final.CerradaPor = operadorID
		final.CerradaEn = &ahora

		s.historial = append(s.historial, final)
		s.actual = nil
		indice = len(s.historial) - 1
		cerrada = final.Clonar()
		doc := s.snapshot()
		s.mu.Unlock()

		persistir(ctx, s.almacen, doc)
		log.Info().
			Str("caja_id", cerrada.ID.String()).
			Str("operador", operadorID).
			Int("indice_historial", indice).
			Msg("caja cerrada")
		return nil
	})
	if err != nil {
		return cerrada, err
	}

	if s.encolador != nil {
		if err := s.encolador.EncolarCierreCaja(ctx, cerrada, indice); err != nil {
			log.Error().Err(err).Str("caja_id", cerrada.ID.String()).Msg("no se pudo encolar el reporte de cierre")
		}
	}
	return cerrada, nil
}

// ── Efectivo ──────────────────────────────────────────────────────────────────

func (s *cajaService) AplicarDeltaEfectivo(ctx context.Context, moneda string, delta decimal.Decimal) bool {
	s.mu.Lock()
	if s.actual == nil {
		s.mu.Unlock()
		log.Warn().Str("moneda", moneda).Str("delta", delta.String()).Msg("movimiento de efectivo descartado: no hay caja abierta")
		return false
	}
	saldo, ok := s.actual.Monedas[moneda]
	if !ok {
		s.mu.Unlock()
		log.Warn().Str("moneda", moneda).Str("delta", delta.String()).Msg("movimiento de efectivo descartado: moneda ausente en la caja")
		return false
	}
	saldo.MontoActual = saldo.MontoActual.Add(delta)
	s.actual.Monedas[moneda] = saldo
	doc := s.snapshot()
	s.mu.Unlock()

	persistir(ctx, s.almacen, doc)
	return true
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cajaService) Estado() EstadoCaja {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.actual != nil {
		return Abierta
	}
	return Cerrada
}

func (s *cajaService) Actual() (model.SesionCaja, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.actual == nil {
		return model.SesionCaja{}, false
	}
	return s.actual.Clonar(), true
}

func (s *cajaService) Historial() []model.SesionCaja {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SesionCaja, len(s.historial))
	for i, h := range s.historial {
		out[i] = h.Clonar()
	}
	return out
}

func (s *cajaService) ObtenerHistorial(indice int) (model.SesionCaja, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if indice < 0 || indice >= len(s.historial) {
		return model.SesionCaja{}, fmt.Errorf("%w: %d", ErrHistorialFueraDeRango, indice)
	}
	return s.historial[indice].Clonar(), nil
}

// CajaToResponse renders a session with its per-currency differences, sorted
// by currency code.
func CajaToResponse(s model.SesionCaja) dto.CajaResponse {
	resp := dto.CajaResponse{
		ID:              s.ID.String(),
		Fecha:           s.Fecha,
		Abierta:         s.Abierta,
		AbiertaPor:      s.AbiertaPor,
		CerradaPor:      s.CerradaPor,
		CerradaEn:       s.CerradaEn,
		Monedas:         make([]dto.SaldoMonedaResponse, 0, len(s.Monedas)),
		SaldosBancarios: make([]dto.SaldoBancarioResponse, 0, len(s.SaldosBancarios)),
	}
	for codigo, m := range s.Monedas {
		resp.Monedas = append(resp.Monedas, dto.SaldoMonedaResponse{
			Moneda:       codigo,
			MontoInicial: m.MontoInicial,
			MontoActual:  m.MontoActual,
			Diferencia:   m.Diferencia(),
		})
	}
	sort.Slice(resp.Monedas, func(i, j int) bool { return resp.Monedas[i].Moneda < resp.Monedas[j].Moneda })
	for _, b := range s.SaldosBancarios {
		resp.SaldosBancarios = append(resp.SaldosBancarios, dto.SaldoBancarioResponse{BancoID: b.BancoID, Moneda: b.Moneda, Monto: b.Monto})
	}
	return resp
}
