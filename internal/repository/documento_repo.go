package repository

import (
	"context"
	"errors"

	"casacambio/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDocumentoNoEncontrado is returned by Cargar when no document exists
// under the given key.
var ErrDocumentoNoEncontrado = errors.New("documento no encontrado")

type DocumentoRepository interface {
	Cargar(ctx context.Context, clave string) (*model.Documento, error)
	Guardar(ctx context.Context, d *model.Documento) error
}

type documentoRepo struct{ db *gorm.DB }

func NewDocumentoRepository(db *gorm.DB) DocumentoRepository { return &documentoRepo{db: db} }

func (r *documentoRepo) Cargar(ctx context.Context, clave string) (*model.Documento, error) {
	var d model.Documento
	err := r.db.WithContext(ctx).Where("clave = ?", clave).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentoNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Guardar upserts on clave: the whole blob and its version are replaced.
func (r *documentoRepo) Guardar(ctx context.Context, d *model.Documento) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "clave"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "contenido", "updated_at"}),
	}).Create(d).Error
}
