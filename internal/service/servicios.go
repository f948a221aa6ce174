package service

import (
	"context"

	"casacambio/internal/config"
	"casacambio/internal/model"
	"casacambio/internal/repository"
)

// catalogoApertura joins the currency and bank catalogs for PrepararApertura.
type catalogoApertura struct {
	*MonedaService
	*BancoService
}

// Servicios is the full set of stateful services of one process.
type Servicios struct {
	// Serial is shared by every mutation that must not interleave.
	Serial        Serializador
	Libro         LibroBancosService
	Caja          CajaService
	Transacciones TransaccionService
	Bancos        *BancoService
	Monedas       *MonedaService
	Tipos         *TipoOperacionService
	Clientes      *ClienteService
	Operadores    *OperadorService
	Auth          AuthService
}

// OpcionesServicios configures NewServicios. Repo nil keeps everything in
// memory; Serial nil uses a process-local serializer.
type OpcionesServicios struct {
	Config    *config.Config
	Repo      repository.DocumentoRepository
	Serial    Serializador
	Encolador EncoladorCierre
	HashAdmin string
}

func almacen[T any](repo repository.DocumentoRepository, clave string) *repository.Almacen[T] {
	if repo == nil {
		return nil
	}
	return repository.NewAlmacen[T](repo, clave)
}

// NewServicios builds every service with built-in defaults. Call Cargar to
// replace them with the persisted state.
func NewServicios(o OpcionesServicios) *Servicios {
	if o.Serial == nil {
		o.Serial = NewSerializadorLocal()
	}
	s := &Servicios{
		Serial:     o.Serial,
		Libro:      NewLibroBancosService(almacen[[]model.SaldoBancario](o.Repo, repository.ClaveSaldosBancarios)),
		Bancos:     NewBancoService(almacen[[]model.Banco](o.Repo, repository.ClaveBancos)),
		Monedas:    NewMonedaService(almacen[DocumentoMonedas](o.Repo, repository.ClaveMonedas)),
		Tipos:      NewTipoOperacionService(almacen[[]model.TipoOperacion](o.Repo, repository.ClaveTiposOperacion)),
		Clientes:   NewClienteService(almacen[[]model.Cliente](o.Repo, repository.ClaveClientes)),
		Operadores: NewOperadorService(almacen[[]model.Operador](o.Repo, repository.ClaveOperadores), o.HashAdmin),
	}
	s.Caja = NewCajaService(
		s.Libro,
		catalogoApertura{MonedaService: s.Monedas, BancoService: s.Bancos},
		o.Serial,
		o.Encolador,
		almacen[DocumentoCaja](o.Repo, repository.ClaveCaja),
	)
	s.Transacciones = NewTransaccionService(
		NewLiquidador(s.Caja, s.Libro),
		o.Serial,
		s.Clientes,
		s.Bancos,
		s.Tipos,
		almacen[[]model.Transaccion](o.Repo, repository.ClaveTransacciones),
	)
	s.Auth = NewAuthService(s.Operadores, o.Config)
	return s
}

// Cargar loads every store, stopping at the first failure.
func (s *Servicios) Cargar(ctx context.Context) error {
	for _, c := range []interface{ Cargar(context.Context) error }{
		s.Bancos, s.Monedas, s.Tipos, s.Clientes, s.Operadores,
		s.Libro, s.Caja, s.Transacciones,
	} {
		if err := c.Cargar(ctx); err != nil {
			return err
		}
	}
	return nil
}
