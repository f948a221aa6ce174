package service

import (
	"context"
	"strings"

	"casacambio/internal/model"
	"casacambio/internal/repository"

	"github.com/shopspring/decimal"
)

// ── Defaults ──────────────────────────────────────────────────────────────────

func bancosPorDefecto() []model.Banco {
	return []model.Banco{
		{ID: "1", Nombre: "Bank of America", Codigo: "BOA", Pais: "USA", Activo: true},
		{ID: "2", Nombre: "BBVA", Codigo: "BBVA", Pais: "Spain", Activo: true},
	}
}

func monedasPorDefecto() []model.Moneda {
	return []model.Moneda{
		{ID: "1", Codigo: "USD", Nombre: "US Dollar", Simbolo: "$", TasaCompra: decimal.RequireFromString("3.72"), TasaVenta: decimal.RequireFromString("3.75"), Activo: true},
		{ID: "2", Codigo: "EUR", Nombre: "Euro", Simbolo: "€", TasaCompra: decimal.RequireFromString("4.05"), TasaVenta: decimal.RequireFromString("4.08"), Activo: true},
		{ID: "3", Codigo: "ARS", Nombre: "Argentine Peso", Simbolo: "$", TasaCompra: decimal.NewFromInt(1), TasaVenta: decimal.NewFromInt(1), Activo: true},
	}
}

func criptosPorDefecto() []model.Cripto {
	return []model.Cripto{
		{ID: "1", Nombre: "Bitcoin", Codigo: "BTC", Red: "Bitcoin", Activo: true},
		{ID: "2", Nombre: "Ethereum", Codigo: "ETH", Red: "Ethereum", Activo: true},
		{ID: "3", Nombre: "USDT", Codigo: "USDT", Red: "Tron", Activo: true},
	}
}

func tiposOperacionPorDefecto() []model.TipoOperacion {
	return []model.TipoOperacion{
		{ID: "1", Nombre: "Operación de cambio", Codigo: "EXCHANGE", Descripcion: "Operaciones de cambio de divisas", Activo: true},
		{ID: "2", Nombre: "Liquidación Recaudadora", Codigo: "COLLECTION_SETTLEMENT", Descripcion: "Liquidación de fondos recaudados", Activo: true},
		{ID: "3", Nombre: "Depósito de Recaudadora", Codigo: "COLLECTION_DEPOSIT", Descripcion: "Depósito de fondos recaudados", Activo: true},
		{ID: "4", Nombre: "Depósito de Préstamos", Codigo: "LOAN_DEPOSIT", Descripcion: "Depósito de fondos de préstamos", Activo: true},
		{ID: "5", Nombre: "Salida de préstamos", Codigo: "LOAN_WITHDRAWAL", Descripcion: "Retiro de fondos para préstamos", Activo: true},
		{ID: "6", Nombre: "Operación Interna", Codigo: "INTERNAL_OPERATION", Descripcion: "Operaciones internas de la empresa", Activo: true},
	}
}

func mismoCodigo[T any](codigo func(T) string) func(a, b T) bool {
	return func(a, b T) bool { return strings.EqualFold(codigo(a), codigo(b)) }
}

// ── Bancos ────────────────────────────────────────────────────────────────────

type BancoService struct {
	col     *coleccion[model.Banco]
	almacen *repository.Almacen[[]model.Banco]
}

func NewBancoService(almacen *repository.Almacen[[]model.Banco]) *BancoService {
	s := &BancoService{col: nuevaColeccion(func(b *model.Banco) *string { return &b.ID }), almacen: almacen}
	s.Reiniciar()
	return s
}

func (s *BancoService) Reiniciar() { s.col.reemplazar(bancosPorDefecto()) }

func (s *BancoService) Cargar(ctx context.Context) error {
	items, ok, err := cargar(ctx, s.almacen)
	if err != nil {
		return err
	}
	if !ok {
		s.Reiniciar()
		return nil
	}
	s.col.reemplazar(items)
	return nil
}

func (s *BancoService) Listar() []model.Banco                  { return s.col.listar() }
func (s *BancoService) Obtener(id string) (model.Banco, error) { return s.col.obtener(id) }

func (s *BancoService) BancosActivos() []model.Banco {
	return s.col.filtrar(func(b model.Banco) bool { return b.Activo })
}

func (s *BancoService) Crear(ctx context.Context, b model.Banco) (model.Banco, error) {
	out, snap, err := s.col.agregar(b, nil)
	if err != nil {
		return out, err
	}
	persistir(ctx, s.almacen, snap)
	return out, nil
}

func (s *BancoService) Actualizar(ctx context.Context, id string, fn func(*model.Banco)) (model.Banco, error) {
	out, snap, err := s.col.actualizar(id, fn, nil)
	if err != nil {
		return out, err
	}
	persistir(ctx, s.almacen, snap)
	return out, nil
}

func (s *BancoService) Eliminar(ctx context.Context, id string) error {
	snap, err := s.col.eliminar(id)
	if err != nil {
		return err
	}
	persistir(ctx, s.almacen, snap)
	return nil
}

// ── Monedas y criptos ─────────────────────────────────────────────────────────
// Both lists live in the same "currency" document.

type DocumentoMonedas struct {
	Monedas []model.Moneda `json:"monedas"`
	Criptos []model.Cripto `json:"criptos"`
}

type MonedaService struct {
	monedas *coleccion[model.Moneda]
	criptos *coleccion[model.Cripto]
	almacen *repository.Almacen[DocumentoMonedas]
}

func NewMonedaService(almacen *repository.Almacen[DocumentoMonedas]) *MonedaService {
	s := &MonedaService{
		monedas: nuevaColeccion(func(m *model.Moneda) *string { return &m.ID }),
		criptos: nuevaColeccion(func(c *model.Cripto) *string { return &c.ID }),
		almacen: almacen,
	}
	s.Reiniciar()
	return s
}

func (s *MonedaService) Reiniciar() {
	s.monedas.reemplazar(monedasPorDefecto())
	s.criptos.reemplazar(criptosPorDefecto())
}

func (s *MonedaService) Cargar(ctx context.Context) error {
	doc, ok, err := cargar(ctx, s.almacen)
	if err != nil {
		return err
	}
	if !ok {
		s.Reiniciar()
		return nil
	}
	s.monedas.reemplazar(doc.Monedas)
	s.criptos.reemplazar(doc.Criptos)
	return nil
}

func (s *MonedaService) guardar(ctx context.Context) {
	persistir(ctx, s.almacen, DocumentoMonedas{Monedas: s.monedas.listar(), Criptos: s.criptos.listar()})
}

var (
	codigoMoneda = mismoCodigo(func(m model.Moneda) string { return m.Codigo })
	codigoCripto = mismoCodigo(func(c model.Cripto) string { return c.Codigo })
)

func (s *MonedaService) ListarMonedas() []model.Moneda { return s.monedas.listar() }
func (s *MonedaService) ListarCriptos() []model.Cripto { return s.criptos.listar() }

func (s *MonedaService) ObtenerMoneda(id string) (model.Moneda, error) { return s.monedas.obtener(id) }
func (s *MonedaService) ObtenerCripto(id string) (model.Cripto, error) { return s.criptos.obtener(id) }

func (s *MonedaService) MonedasActivas() []model.Moneda {
	return s.monedas.filtrar(func(m model.Moneda) bool { return m.Activo })
}

func (s *MonedaService) CriptosActivas() []model.Cripto {
	return s.criptos.filtrar(func(c model.Cripto) bool { return c.Activo })
}

func (s *MonedaService) CrearMoneda(ctx context.Context, m model.Moneda) (model.Moneda, error) {
	out, _, err := s.monedas.agregar(m, codigoMoneda)
	if err != nil {
		return out, err
	}
	s.guardar(ctx)
	return out, nil
}

func (s *MonedaService) ActualizarMoneda(ctx context.Context, id string, fn func(*model.Moneda)) (model.Moneda, error) {
	out, _, err := s.monedas.actualizar(id, fn, codigoMoneda)
	if err != nil {
		return out, err
	}
	s.guardar(ctx)
	return out, nil
}

func (s *MonedaService) EliminarMoneda(ctx context.Context, id string) error {
	if _, err := s.monedas.eliminar(id); err != nil {
		return err
	}
	s.guardar(ctx)
	return nil
}

func (s *MonedaService) CrearCripto(ctx context.Context, c model.Cripto) (model.Cripto, error) {
	out, _, err := s.criptos.agregar(c, codigoCripto)
	if err != nil {
		return out, err
	}
	s.guardar(ctx)
	return out, nil
}

func (s *MonedaService) ActualizarCripto(ctx context.Context, id string, fn func(*model.Cripto)) (model.Cripto, error) {
	out, _, err := s.criptos.actualizar(id, fn, codigoCripto)
	if err != nil {
		return out, err
	}
	s.guardar(ctx)
	return out, nil
}

func (s *MonedaService) EliminarCripto(ctx context.Context, id string) error {
	if _, err := s.criptos.eliminar(id); err != nil {
		return err
	}
	s.guardar(ctx)
	return nil
}

// ── Tipos de operación ────────────────────────────────────────────────────────

type TipoOperacionService struct {
	col     *coleccion[model.TipoOperacion]
	almacen *repository.Almacen[[]model.TipoOperacion]
}

func NewTipoOperacionService(almacen *repository.Almacen[[]model.TipoOperacion]) *TipoOperacionService {
	s := &TipoOperacionService{col: nuevaColeccion(func(t *model.TipoOperacion) *string { return &t.ID }), almacen: almacen}
	s.Reiniciar()
	return s
}

func (s *TipoOperacionService) Reiniciar() { s.col.reemplazar(tiposOperacionPorDefecto()) }

func (s *TipoOperacionService) Cargar(ctx context.Context) error {
	items, ok, err := cargar(ctx, s.almacen)
	if err != nil {
		return err
	}
	if !ok {
		s.Reiniciar()
		return nil
	}
	s.col.reemplazar(items)
	return nil
}

var codigoTipo = mismoCodigo(func(t model.TipoOperacion) string { return t.Codigo })

func (s *TipoOperacionService) Listar() []model.TipoOperacion { return s.col.listar() }

func (s *TipoOperacionService) Obtener(id string) (model.TipoOperacion, error) {
	return s.col.obtener(id)
}

// PorCodigo resolves a type by its code (case-insensitive).
func (s *TipoOperacionService) PorCodigo(codigo string) (model.TipoOperacion, bool) {
	return s.col.buscar(func(t model.TipoOperacion) bool { return strings.EqualFold(t.Codigo, codigo) })
}

func (s *TipoOperacionService) Crear(ctx context.Context, t model.TipoOperacion) (model.TipoOperacion, error) {
	out, snap, err := s.col.agregar(t, codigoTipo)
	if err != nil {
		return out, err
	}
	persistir(ctx, s.almacen, snap)
	return out, nil
}

func (s *TipoOperacionService) Actualizar(ctx context.Context, id string, fn func(*model.TipoOperacion)) (model.TipoOperacion, error) {
	out, snap, err := s.col.actualizar(id, fn, codigoTipo)
	if err != nil {
		return out, err
	}
	persistir(ctx, s.almacen, snap)
	return out, nil
}

func (s *TipoOperacionService) Eliminar(ctx context.Context, id string) error {
	snap, err := s.col.eliminar(id)
	if err != nil {
		return err
	}
	persistir(ctx, s.almacen, snap)
	return nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

type ClienteService struct {
	col     *coleccion[model.Cliente]
	almacen *repository.Almacen[[]model.Cliente]
}

func NewClienteService(almacen *repository.Almacen[[]model.Cliente]) *ClienteService {
	return &ClienteService{col: nuevaColeccion(func(c *model.Cliente) *string { return &c.ID }), almacen: almacen}
}

func (s *ClienteService) Reiniciar() { s.col.reemplazar(nil) }

func (s *ClienteService) Cargar(ctx context.Context) error {
	items, ok, err := cargar(ctx, s.almacen)
	if err != nil {
		return err
	}
	if !ok {
		s.Reiniciar()
		return nil
	}
	s.col.reemplazar(items)
	return nil
}

func (s *ClienteService) Listar() []model.Cliente { return s.col.listar() }

func (s *ClienteService) Obtener(id string) (model.Cliente, error) { return s.col.obtener(id) }

func (s *ClienteService) Crear(ctx context.Context, c model.Cliente) (model.Cliente, error) {
	out, snap, err := s.col.agregar(c, nil)
	if err != nil {
		return out, err
	}
	persistir(ctx, s.almacen, snap)
	return out, nil
}

func (s *ClienteService) Actualizar(ctx context.Context, id string, fn func(*model.Cliente)) (model.Cliente, error) {
	out, snap, err := s.col.actualizar(id, fn, nil)
	if err != nil {
		return out, err
	}
	persistir(ctx, s.almacen, snap)
	return out, nil
}

func (s *ClienteService) Eliminar(ctx context.Context, id string) error {
	snap, err := s.col.eliminar(id)
	if err != nil {
		return err
	}
	persistir(ctx, s.almacen, snap)
	return nil
}
