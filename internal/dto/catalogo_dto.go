package dto

import "github.com/shopspring/decimal"

// Reference data requests. Pointer fields on updates mean "leave unchanged".

// ─── Bancos ──────────────────────────────────────────────────────────────────

type CrearBancoRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=100"`
	Codigo string `json:"codigo" validate:"required,min=2,max=20"`
	Pais   string `json:"pais"   validate:"max=60"`
	Activo *bool  `json:"activo"`
}

type ActualizarBancoRequest struct {
	Nombre *string `json:"nombre" validate:"omitempty,min=2,max=100"`
	Codigo *string `json:"codigo" validate:"omitempty,min=2,max=20"`
	Pais   *string `json:"pais"   validate:"omitempty,max=60"`
	Activo *bool   `json:"activo"`
}

// ─── Monedas ─────────────────────────────────────────────────────────────────

type CrearMonedaRequest struct {
	Codigo     string          `json:"codigo"      validate:"required,min=2,max=10"`
	Nombre     string          `json:"nombre"      validate:"required,min=2,max=60"`
	Simbolo    string          `json:"simbolo"     validate:"max=5"`
	TasaCompra decimal.Decimal `json:"tasa_compra" validate:"gte=0"`
	TasaVenta  decimal.Decimal `json:"tasa_venta"  validate:"gte=0"`
	Activo     *bool           `json:"activo"`
}

type ActualizarMonedaRequest struct {
	Codigo     *string          `json:"codigo"  validate:"omitempty,min=2,max=10"`
	Nombre     *string          `json:"nombre"  validate:"omitempty,min=2,max=60"`
	Simbolo    *string          `json:"simbolo" validate:"omitempty,max=5"`
	TasaCompra *decimal.Decimal `json:"tasa_compra"`
	TasaVenta  *decimal.Decimal `json:"tasa_venta"`
	Activo     *bool            `json:"activo"`
}

// ─── Criptos ─────────────────────────────────────────────────────────────────

type CrearCriptoRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=60"`
	Codigo string `json:"codigo" validate:"required,min=2,max=10"`
	Red    string `json:"red"    validate:"required,max=40"`
	Activo *bool  `json:"activo"`
}

type ActualizarCriptoRequest struct {
	Nombre *string `json:"nombre" validate:"omitempty,min=2,max=60"`
	Codigo *string `json:"codigo" validate:"omitempty,min=2,max=10"`
	Red    *string `json:"red"    validate:"omitempty,max=40"`
	Activo *bool   `json:"activo"`
}

// ─── Tipos de operación ──────────────────────────────────────────────────────

type CrearTipoOperacionRequest struct {
	Nombre      string `json:"nombre"      validate:"required,min=2,max=100"`
	Codigo      string `json:"codigo"      validate:"required,min=2,max=40"`
	Descripcion string `json:"descripcion" validate:"max=255"`
	Activo      *bool  `json:"activo"`
}

type ActualizarTipoOperacionRequest struct {
	Nombre      *string `json:"nombre"      validate:"omitempty,min=2,max=100"`
	Codigo      *string `json:"codigo"      validate:"omitempty,min=2,max=40"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=255"`
	Activo      *bool   `json:"activo"`
}

// ─── Clientes ────────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre          string `json:"nombre"           validate:"required,min=2,max=120"`
	TipoDocumento   string `json:"tipo_documento"   validate:"required,max=20"`
	NumeroDocumento string `json:"numero_documento" validate:"required,max=30"`
	Email           string `json:"email"            validate:"omitempty,email"`
	Telefono        string `json:"telefono"         validate:"max=30"`
}

type ActualizarClienteRequest struct {
	Nombre          *string `json:"nombre"           validate:"omitempty,min=2,max=120"`
	TipoDocumento   *string `json:"tipo_documento"   validate:"omitempty,max=20"`
	NumeroDocumento *string `json:"numero_documento" validate:"omitempty,max=30"`
	Email           *string `json:"email"            validate:"omitempty,email"`
	Telefono        *string `json:"telefono"         validate:"omitempty,max=30"`
}

// ─── Operadores ──────────────────────────────────────────────────────────────

type PermisosDTO struct {
	Clientes      bool `json:"clientes"`
	Proveedores   bool `json:"proveedores"`
	Bancos        bool `json:"bancos"`
	Criptos       bool `json:"criptos"`
	Monedas       bool `json:"monedas"`
	Operadores    bool `json:"operadores"`
	Transacciones bool `json:"transacciones"`
	Reportes      bool `json:"reportes"`
}

type CrearOperadorRequest struct {
	Nombre   string      `json:"nombre"   validate:"required,min=2,max=100"`
	Email    string      `json:"email"    validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8"`
	Rol      string      `json:"rol"      validate:"required,oneof=admin operador"`
	Permisos PermisosDTO `json:"permisos"`
}

type ActualizarOperadorRequest struct {
	Nombre   *string      `json:"nombre"   validate:"omitempty,min=2,max=100"`
	Email    *string      `json:"email"    validate:"omitempty,email"`
	Password string       `json:"password" validate:"omitempty,min=8"`
	Rol      *string      `json:"rol"      validate:"omitempty,oneof=admin operador"`
	Permisos *PermisosDTO `json:"permisos"`
	Activo   *bool        `json:"activo"`
}

// OperadorResponse never carries the password hash.
type OperadorResponse struct {
	ID       string      `json:"id"`
	Nombre   string      `json:"nombre"`
	Email    string      `json:"email"`
	Rol      string      `json:"rol"`
	Permisos PermisosDTO `json:"permisos"`
	Activo   bool        `json:"activo"`
}
