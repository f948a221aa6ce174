package model

import "time"

// Documento is one persisted store: a JSON blob under a unique key, tagged
// with the schema version it was written with.
type Documento struct {
	Clave     string `gorm:"primaryKey;type:varchar(64)"`
	Version   int    `gorm:"not null"`
	Contenido []byte `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (Documento) TableName() string { return "documentos" }
