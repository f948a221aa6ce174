package service

import (
	"context"
	"strings"

	"casacambio/internal/dto"
	"casacambio/internal/model"
	"casacambio/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashPassword returns the bcrypt hash stored for an operator.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func operadoresPorDefecto(hashAdmin string) []model.Operador {
	return []model.Operador{{
		ID:           "1",
		Nombre:       "Administrador",
		Email:        "alan@menlei.net",
		PasswordHash: hashAdmin,
		Rol:          "admin",
		Permisos: model.Permisos{
			Clientes: true, Proveedores: true, Bancos: true, Criptos: true,
			Monedas: true, Operadores: true, Transacciones: true, Reportes: true,
		},
		Activo: true,
	}}
}

type OperadorService struct {
	col       *coleccion[model.Operador]
	almacen   *repository.Almacen[[]model.Operador]
	hashAdmin string
}

// NewOperadorService seeds the default administrator with hashAdmin. An empty
// hash leaves the default account unable to log in until it is seeded.
func NewOperadorService(almacen *repository.Almacen[[]model.Operador], hashAdmin string) *OperadorService {
	s := &OperadorService{
		col:       nuevaColeccion(func(o *model.Operador) *string { return &o.ID }),
		almacen:   almacen,
		hashAdmin: hashAdmin,
	}
	s.Reiniciar()
	return s
}

func (s *OperadorService) Reiniciar() { s.col.reemplazar(operadoresPorDefecto(s.hashAdmin)) }

func (s *OperadorService) Cargar(ctx context.Context) error {
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

var mismoEmail = func(a, b model.Operador) bool { return strings.EqualFold(a.Email, b.Email) }

func (s *OperadorService) Listar() []model.Operador { return s.col.listar() }

func (s *OperadorService) Obtener(id string) (model.Operador, error) { return s.col.obtener(id) }

// PorEmail finds an operator by email, case-insensitively.
func (s *OperadorService) PorEmail(email string) (model.Operador, bool) {
	return s.col.buscar(func(o model.Operador) bool { return strings.EqualFold(o.Email, email) })
}

func (s *OperadorService) Crear(ctx context.Context, req dto.CrearOperadorRequest) (model.Operador, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return model.Operador{}, err
	}
	op := model.Operador{
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: hash,
		Rol:          req.Rol,
		Permisos:     permisosDesde(req.Permisos),
		Activo:       true,
	}
	out, snap, err := s.col.agregar(op, mismoEmail)
	if err != nil {
		return out, err
	}
	persistir(ctx, s.almacen, snap)
	return out, nil
}

func (s *OperadorService) Actualizar(ctx context.Context, id string, req dto.ActualizarOperadorRequest) (model.Operador, error) {
	var hash string
	if req.Password != "" {
		h, err := HashPassword(req.Password)
		if err != nil {
			return model.Operador{}, err
		}
		hash = h
	}
	out, snap, err := s.col.actualizar(id, func(o *model.Operador) {
		if req.Nombre != nil {
			o.Nombre = *req.Nombre
		}
		if req.Email != nil {
			o.Email = *req.Email
		}
		if req.Rol != nil {
			o.Rol = *req.Rol
		}
		if req.Permisos != nil {
			o.Permisos = permisosDesde(*req.Permisos)
		}
		if req.Activo != nil {
			o.Activo = *req.Activo
		}
		if hash != "" {
			o.PasswordHash = hash
		}
	}, mismoEmail)
	if err != nil {
		return out, err
	}
	persistir(ctx, s.almacen, snap)
	return out, nil
}

// Sembrar creates or updates the operator with email, making it an active
// administrator with every permission. Used by cmd/seedoperador.
func (s *OperadorService) Sembrar(ctx context.Context, email, nombre, password string) (model.Operador, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return model.Operador{}, err
	}
	admin := operadoresPorDefecto(hash)[0]
	admin.Email = email
	if nombre != "" {
		admin.Nombre = nombre
	}
	if ex, ok := s.PorEmail(email); ok {
		out, snap, err := s.col.actualizar(ex.ID, func(o *model.Operador) {
			o.PasswordHash, o.Rol, o.Permisos, o.Activo = admin.PasswordHash, admin.Rol, admin.Permisos, true
			if nombre != "" {
				o.Nombre = nombre
			}
		}, nil)
		if err != nil {
			return out, err
		}
		persistir(ctx, s.almacen, snap)
		return out, nil
	}
	out, snap, err := s.col.agregar(admin, mismoEmail)
	if err != nil {
		return out, err
	}
	persistir(ctx, s.almacen, snap)
	return out, nil
}

func (s *OperadorService) Eliminar(ctx context.Context, id string) error {
	snap, err := s.col.eliminar(id)
	if err != nil {
		return err
	}
	persistir(ctx, s.almacen, snap)
	return nil
}

func permisosDesde(p dto.PermisosDTO) model.Permisos {
	return model.Permisos{
		Clientes: p.Clientes, Proveedores: p.Proveedores, Bancos: p.Bancos, Criptos: p.Criptos,
		Monedas: p.Monedas, Operadores: p.Operadores, Transacciones: p.Transacciones, Reportes: p.Reportes,
	}
}

func OperadorToResponse(o model.Operador) dto.OperadorResponse {
	p := o.Permisos
	return dto.OperadorResponse{
		ID:     o.ID,
		Nombre: o.Nombre,
		Email:  o.Email,
		Rol:    o.Rol,
		Permisos: dto.PermisosDTO{
			Clientes: p.Clientes, Proveedores: p.Proveedores, Bancos: p.Bancos, Criptos: p.Criptos,
			Monedas: p.Monedas, Operadores: p.Operadores, Transacciones: p.Transacciones, Reportes: p.Reportes,
		},
		Activo: o.Activo,
	}
}
