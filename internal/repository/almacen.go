package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"casacambio/internal/model"

	"github.com/rs/zerolog/log"
)

// Store keys and their current schema versions. A document written with a
// different version is discarded and the store starts from its defaults.
const (
	ClaveSaldosBancarios = "bank-balance"
	ClaveBancos          = "bank"
	ClaveCaja            = "caja"
	ClaveClientes        = "client"
	ClaveMonedas         = "currency"
	ClaveTiposOperacion  = "operation-type"
	ClaveOperadores      = "operator"
	ClaveTransacciones   = "transaction"
)

var versiones = map[string]int{
	ClaveSaldosBancarios: 1,
	ClaveBancos:          2,
	ClaveCaja:            1,
	ClaveClientes:        1,
	ClaveMonedas:         1,
	ClaveTiposOperacion:  1,
	ClaveOperadores:      5,
	ClaveTransacciones:   1,
}

// VersionActual returns the schema version of a store key (0 if unknown).
func VersionActual(clave string) int { return versiones[clave] }

// Almacen is a typed view over one versioned document.
type Almacen[T any] struct {
	repo    DocumentoRepository
	clave   string
	version int
}

func NewAlmacen[T any](repo DocumentoRepository, clave string) *Almacen[T] {
	return &Almacen[T]{repo: repo, clave: clave, version: VersionActual(clave)}
}

func (a *Almacen[T]) Clave() string { return a.clave }

// Cargar returns the stored state and true, or the zero value and false when
// the document is missing or was written under another schema version. The
// caller is expected to fall back to its built-in defaults in that case.
func (a *Almacen[T]) Cargar(ctx context.Context) (T, bool, error) {
	var out T
	doc, err := a.repo.Cargar(ctx, a.clave)
	if errors.Is(err, ErrDocumentoNoEncontrado) {
		return out, false, nil
	}
	if err != nil {
		return out, false, fmt.Errorf("cargar %s: %w", a.clave, err)
	}
	if doc.Version != a.version {
		log.Warn().
			Str("clave", a.clave).
			Int("version_guardada", doc.Version).
			Int("version_actual", a.version).
			Msg("versión de almacén distinta, se restablecen los valores por defecto")
		return out, false, nil
	}
	if err := json.Unmarshal(doc.Contenido, &out); err != nil {
		log.Warn().Err(err).Str("clave", a.clave).Msg("documento ilegible, se restablecen los valores por defecto")
		var zero T
		return zero, false, nil
	}
	return out, true, nil
}

func (a *Almacen[T]) Guardar(ctx context.Context, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serializar %s: %w", a.clave, err)
	}
	return a.repo.Guardar(ctx, &model.Documento{Clave: a.clave, Version: a.version, Contenido: b})
}
