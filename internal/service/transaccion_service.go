package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"casacambio/internal/dto"
	"casacambio/internal/model"
	"casacambio/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type TransaccionService interface {
	// Registrar validates the request, settles it and prepends it to history.
	Registrar(ctx context.Context, operadorID string, req dto.CrearTransaccionRequest) (model.Transaccion, []Movimiento, error)
	// Calcular previews the derived amounts without touching any balance.
	Calcular(req dto.CrearTransaccionRequest) (dto.CalculoResponse, error)
	Listar(f dto.TransaccionFilter) ([]model.Transaccion, int, error)
	// Filtrar returns every match, unpaginated.
	Filtrar(f dto.TransaccionFilter) ([]model.Transaccion, error)
	ObtenerPorID(id string) (model.Transaccion, error)
	Resumen(f dto.TransaccionFilter) (dto.ResumenResponse, error)
	NombreCliente(id string) string
	Reiniciar()
	Cargar(ctx context.Context) error
}

type transaccionService struct {
	mu        sync.RWMutex
	historial []model.Transaccion // most recent first

	liquidador *Liquidador
	serial     Serializador
	clientes   *ClienteService
	bancos     *BancoService
	tipos      *TipoOperacionService
	almacen    *repository.Almacen[[]model.Transaccion]
	ahora      func() time.Time
}

// NewTransaccionService wires the settlement flow. Reference services may be
// nil, in which case the corresponding IDs are not checked.
func NewTransaccionService(
	liquidador *Liquidador,
	serial Serializador,
	clientes *ClienteService,
	bancos *BancoService,
	tipos *TipoOperacionService,
	almacen *repository.Almacen[[]model.Transaccion],
) TransaccionService {
	if serial == nil {
		serial = NewSerializadorLocal()
	}
	return &transaccionService{
		liquidador: liquidador,
		serial:     serial,
		clientes:   clientes,
		bancos:     bancos,
		tipos:      tipos,
		almacen:    almacen,
		ahora:      time.Now,
	}
}

func (s *transaccionService) Reiniciar() {
	s.mu.Lock()
	s.historial = nil
	s.mu.Unlock()
}

func (s *transaccionService) Cargar(ctx context.Context) error {
	items, ok, err := cargar(ctx, s.almacen)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		s.historial = nil
		return nil
	}
	s.historial = items
	return nil
}

// ── Registrar ─────────────────────────────────────────────────────────────────

func deduccionesDesde(r *dto.DeduccionesRequest) *model.Deducciones {
	if r == nil {
		return nil
	}
	d := &model.Deducciones{IIBB: r.IIBB, DebCred: r.DebCred, Copter: r.Copter, Personalizada: r.Personalizada}
	if r.Personalizada {
		d.ValorPersonalizado = r.ValorPersonalizado
	}
	return d
}

// construir turns a request into an unsettled transaction with its derived
// amounts.
func (s *transaccionService) construir(req dto.CrearTransaccionRequest) (model.Transaccion, model.Operacion, error) {
	if !req.Monto.IsPositive() {
		return model.Transaccion{}, nil, ErrMontoInvalido
	}
	ded := deduccionesDesde(req.Deducciones)
	if ded != nil && ded.Personalizada {
		v := ded.ValorPersonalizado
		if v == nil || v.IsNegative() || v.GreaterThan(cien) {
			return model.Transaccion{}, nil, fmt.Errorf("%w: deducción personalizada fuera de rango", ErrOperacionInvalida)
		}
	}
	op, err := model.ParseOperacion(req.OperacionMoneda, model.ParametrosOperacion{
		BancoID:     req.BancoID,
		Cotizacion:  req.Cotizacion,
		Deducciones: ded,
	})
	if err != nil {
		return model.Transaccion{}, nil, err
	}
	montos, err := CalcularMontos(op, req.Monto)
	if err != nil {
		return model.Transaccion{}, nil, err
	}

	t := model.Transaccion{
		ClienteID:       req.ClienteID,
		TipoOperacion:   req.TipoOperacion,
		OperacionMoneda: op.Codigo(),
		Monto:           req.Monto,
		MontoNeto:       montos.MontoNeto,
		MontoCalculado:  montos.MontoCalculado,
		Descripcion:     req.Descripcion,
		AdjuntoURL:      req.AdjuntoURL,
		AdjuntoNombre:   req.AdjuntoNombre,
	}
	switch o := op.(type) {
	case model.IngresoLocal:
		t.BancoID, t.Deducciones = opcional(o.BancoID), o.Deducciones
	case model.EgresoLocal:
		t.BancoID, t.Deducciones = opcional(o.BancoID), o.Deducciones
	case model.CompraDivisa:
		c := o.Cotizacion
		t.Cotizacion, t.BancoID, t.Deducciones = &c, opcional(o.BancoID), o.Deducciones
	case model.VentaDivisa:
		c := o.Cotizacion
		t.Cotizacion, t.BancoID, t.Deducciones = &c, opcional(o.BancoID), o.Deducciones
	}
	return t, op, nil
}

func opcional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *transaccionService) verificarReferencias(t model.Transaccion) error {
	if s.clientes != nil {
		if _, err := s.clientes.Obtener(t.ClienteID); err != nil {
			return fmt.Errorf("cliente %s: %w", t.ClienteID, ErrNoEncontrado)
		}
	}
	if s.bancos != nil && t.BancoID != nil {
		if _, err := s.bancos.Obtener(*t.BancoID); err != nil {
			return fmt.Errorf("banco %s: %w", *t.BancoID, ErrNoEncontrado)
		}
	}
	if s.tipos != nil {
		if _, ok := s.tipos.PorCodigo(t.TipoOperacion); !ok {
			return fmt.Errorf("%w: tipo de operación %q desconocido", ErrOperacionInvalida, t.TipoOperacion)
		}
	}
	return nil
}

func (s *transaccionService) Registrar(ctx context.Context, operadorID string, req dto.CrearTransaccionRequest) (model.Transaccion, []Movimiento, error) {
	t, _, err := s.construir(req)
	if err != nil {
		return model.Transaccion{}, nil, err
	}
	t.ID = uuid.New()
	t.OperadorID = operadorID
	t.Fecha = s.ahora()
	if req.Fecha != nil {
		t.Fecha = *req.Fecha
	}

	var movs []Movimiento
	err = s.serial.Ejecutar(ctx, func(ctx context.Context) error {
		// Checked under the serializer: a distributed one may have just
		// reloaded the catalogs.
		if err := s.verificarReferencias(t); err != nil {
			return err
		}
		var err error
		movs, err = s.liquidador.Liquidar(ctx, t)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.historial = append([]model.Transaccion{t}, s.historial...)
		snap := append([]model.Transaccion(nil), s.historial...)
		s.mu.Unlock()

		persistir(ctx, s.almacen, snap)
		return nil
	})
	if err != nil {
		return model.Transaccion{}, nil, err
	}

	log.Info().
		Str("transaccion_id", t.ID.String()).
		Str("operacion", string(t.OperacionMoneda)).
		Str("monto", t.Monto.String()).
		Str("operador", operadorID).
		Int("movimientos", len(movs)).
		Msg("transacción liquidada")
	return t, movs, nil
}

func (s *transaccionService) Calcular(req dto.CrearTransaccionRequest) (dto.CalculoResponse, error) {
	t, _, err := s.construir(req)
	if err != nil {
		return dto.CalculoResponse{}, err
	}
	return dto.CalculoResponse{
		OperacionMoneda:       string(t.OperacionMoneda),
		Monto:                 t.Monto,
		PorcentajeDeducciones: PorcentajeDeducciones(t.Deducciones),
		MontoNeto:             t.MontoNeto,
		MontoCalculado:        t.MontoCalculado,
	}, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

// rango resolves the period of a filter to [desde, hasta]. A zero hasta means
// no upper bound.
func (s *transaccionService) rango(f dto.TransaccionFilter) (time.Time, time.Time, error) {
	now := s.ahora()
	switch f.Periodo {
	case "", "todos":
		return time.Time{}, time.Time{}, nil
	case "dia":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), time.Time{}, nil
	case "semana":
		return now.AddDate(0, 0, -7), time.Time{}, nil
	case "mes":
		return now.AddDate(0, -1, 0), time.Time{}, nil
	case "custom":
		desde, err := time.ParseInLocation("2006-01-02", f.Desde, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: desde", ErrFiltroInvalido)
		}
		hasta, err := time.ParseInLocation("2006-01-02", f.Hasta, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: hasta", ErrFiltroInvalido)
		}
		if hasta.Before(desde) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: hasta anterior a desde", ErrFiltroInvalido)
		}
		return desde, hasta.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: periodo %q", ErrFiltroInvalido, f.Periodo)
}

func (s *transaccionService) NombreCliente(id string) string {
	if s.clientes == nil {
		return ""
	}
	c, err := s.clientes.Obtener(id)
	if err != nil {
		return ""
	}
	return c.Nombre
}

func (s *transaccionService) coincide(t model.Transaccion, q string) bool {
	if q == "" {
		return true
	}
	for _, campo := range []string{t.Descripcion, s.NombreCliente(t.ClienteID), t.TipoOperacion, string(t.OperacionMoneda)} {
		if campo != "" && strings.Contains(strings.ToLower(campo), q) {
			return true
		}
	}
	return false
}

func (s *transaccionService) Filtrar(f dto.TransaccionFilter) ([]model.Transaccion, error) {
	desde, hasta, err := s.rango(f)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(f.Busqueda))

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Transaccion{}
	for _, t := range s.historial {
		if !desde.IsZero() && t.Fecha.Before(desde) {
			continue
		}
		if !hasta.IsZero() && t.Fecha.After(hasta) {
			continue
		}
		if !s.coincide(t, q) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *transaccionService) Listar(f dto.TransaccionFilter) ([]model.Transaccion, int, error) {
	all, err := s.Filtrar(f)
	if err != nil {
		return nil, 0, err
	}
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return []model.Transaccion{}, len(all), nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (s *transaccionService) ObtenerPorID(id string) (model.Transaccion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.historial {
		if t.ID.String() == id {
			return t, nil
		}
	}
	return model.Transaccion{}, ErrNoEncontrado
}

// Resumen splits volume between USDT operations and everything else, each
// transaction counting its converted amount when it has one.
func (s *transaccionService) Resumen(f dto.TransaccionFilter) (dto.ResumenResponse, error) {
	txs, err := s.Filtrar(f)
	if err != nil {
		return dto.ResumenResponse{}, err
	}
	resp := dto.ResumenResponse{VolumenUSDT: decimal.Zero, VolumenOtros: decimal.Zero, Cantidad: len(txs)}
	clientes := map[string]struct{}{}
	for _, t := range txs {
		if strings.Contains(string(t.OperacionMoneda), string(model.ActivoUSDT)) {
			resp.VolumenUSDT = resp.VolumenUSDT.Add(t.MontoEfectivo())
		} else {
			resp.VolumenOtros = resp.VolumenOtros.Add(t.MontoEfectivo())
		}
		clientes[t.ClienteID] = struct{}{}
	}
	resp.ClientesDistintos = len(clientes)
	return resp, nil
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func TransaccionToResponse(t model.Transaccion, clienteNombre string) dto.TransaccionResponse {
	resp := dto.TransaccionResponse{
		ID:              t.ID.String(),
		ClienteID:       t.ClienteID,
		ClienteNombre:   clienteNombre,
		OperadorID:      t.OperadorID,
		TipoOperacion:   t.TipoOperacion,
		OperacionMoneda: string(t.OperacionMoneda),
		Monto:           t.Monto,
		Cotizacion:      t.Cotizacion,
		MontoCalculado:  t.MontoCalculado,
		MontoNeto:       t.MontoNeto,
		BancoID:         t.BancoID,
		Fecha:           t.Fecha,
		Descripcion:     t.Descripcion,
		AdjuntoURL:      t.AdjuntoURL,
		AdjuntoNombre:   t.AdjuntoNombre,
	}
	if d := t.Deducciones; d != nil {
		resp.Deducciones = &dto.DeduccionesRequest{
			IIBB: d.IIBB, DebCred: d.DebCred, Copter: d.Copter,
			Personalizada: d.Personalizada, ValorPersonalizado: d.ValorPersonalizado,
		}
	}
	return resp
}

func MovimientosToResponse(movs []Movimiento) []dto.MovimientoResponse {
	out := make([]dto.MovimientoResponse, len(movs))
	for i, m := range movs {
		out[i] = dto.MovimientoResponse{Destino: m.Destino, BancoID: m.BancoID, Moneda: m.Moneda, Delta: m.Delta, Aplicado: m.Aplicado}
	}
	return out
}
