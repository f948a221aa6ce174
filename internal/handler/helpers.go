package handler

import (
	"errors"
	"net/http"
	"reflect"

	"casacambio/internal/apierror"
	"casacambio/internal/middleware"
	"casacambio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails:
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// errorHTTP maps a service error to its status and stable code.
// Unknown errors return status 0.
func errorHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNoEncontrado):
		return http.StatusNotFound, "no_encontrado"
	case errors.Is(err, service.ErrHistorialFueraDeRango):
		return http.StatusNotFound, "historial_fuera_de_rango"
	case errors.Is(err, service.ErrCajaYaAbierta):
		return http.StatusConflict, "caja_ya_abierta"
	case errors.Is(err, service.ErrCajaNoAbierta):
		return http.StatusConflict, "caja_no_abierta"
	case errors.Is(err, service.ErrDuplicado):
		return http.StatusConflict, "duplicado"
	case errors.Is(err, service.ErrCredencialesInvalidas):
		return http.StatusUnauthorized, "credenciales_invalidas"
	case errors.Is(err, service.ErrTokenInvalido):
		return http.StatusUnauthorized, "token_invalido"
	case errors.Is(err, service.ErrCotizacionRequerida):
		return http.StatusUnprocessableEntity, "cotizacion_requerida"
	case errors.Is(err, service.ErrCotizacionNoPermitida):
		return http.StatusUnprocessableEntity, "cotizacion_no_permitida"
	case errors.Is(err, service.ErrBancoNoPermitido):
		return http.StatusUnprocessableEntity, "banco_no_permitido"
	case errors.Is(err, service.ErrDeduccionesNoPermitidas):
		return http.StatusUnprocessableEntity, "deducciones_no_permitidas"
	case errors.Is(err, service.ErrCodigoOperacionInvalido):
		return http.StatusUnprocessableEntity, "codigo_operacion_invalido"
	case service.EsErrorDeValidacion(err):
		return http.StatusUnprocessableEntity, "operacion_invalida"
	}
	return 0, ""
}

// responderError writes the mapped error, or hands unknown errors to
// middleware.ErrorHandler so internals never reach the client.
func responderError(c *gin.Context, err error) {
	status, codigo := errorHTTP(err)
	if status == 0 {
		_ = c.Error(err)
		return
	}
	c.JSON(status, apierror.Con(codigo, err.Error()))
}

// operadorID is the authenticated operator of the request.
func operadorID(c *gin.Context) string {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.OperadorID
	}
	return ""
}

// enviarArchivo writes a downloadable attachment.
func enviarArchivo(c *gin.Context, nombre, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+nombre+`"`)
	c.Data(http.StatusOK, contentType, data)
}
