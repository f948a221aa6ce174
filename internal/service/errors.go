package service

import (
	"errors"

	"casacambio/internal/model"
)

var (
	ErrCajaYaAbierta         = errors.New("ya existe una caja abierta")
	ErrCajaNoAbierta         = errors.New("no hay una caja abierta")
	ErrOperacionInvalida     = errors.New("operación inválida")
	ErrMontoInvalido         = errors.New("el monto debe ser mayor a cero")
	ErrNoEncontrado          = errors.New("registro no encontrado")
	ErrDuplicado             = errors.New("ya existe un registro con ese código")
	ErrCredencialesInvalidas = errors.New("credenciales inválidas")
	ErrTokenInvalido         = errors.New("token inválido o expirado")
	ErrHistorialFueraDeRango = errors.New("índice de historial fuera de rango")
	ErrFiltroInvalido        = errors.New("filtro de fechas inválido")

	// Variant construction errors, re-exported for the HTTP layer.
	ErrCotizacionRequerida     = model.ErrCotizacionRequerida
	ErrCotizacionNoPermitida   = model.ErrCotizacionNoPermitida
	ErrBancoNoPermitido        = model.ErrBancoNoPermitido
	ErrDeduccionesNoPermitidas = model.ErrDeduccionesNoPermitidas
	ErrCodigoOperacionInvalido = model.ErrCodigoOperacionInvalido
)

// EsErrorDeValidacion reports whether err is a request problem the caller can
// fix, as opposed to a state conflict or an internal failure.
func EsErrorDeValidacion(err error) bool {
	for _, e := range []error{
		ErrOperacionInvalida, ErrMontoInvalido, ErrFiltroInvalido,
		ErrCotizacionRequerida, ErrCotizacionNoPermitida,
		ErrBancoNoPermitido, ErrDeduccionesNoPermitidas, ErrCodigoOperacionInvalido,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
