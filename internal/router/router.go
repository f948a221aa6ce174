package router

import (
	"time"

	"casacambio/internal/config"
	"casacambio/internal/handler"
	"casacambio/internal/middleware"
	"casacambio/internal/model"
	"casacambio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dependencias are the already-built components the API serves. DB, Redis
// and Mailer may be nil: /health reports them disabled and the DLQ routes
// are not mounted.
type Dependencias struct {
	Config    *config.Config
	Servicios *service.Servicios
	DB        *gorm.DB
	Redis     *redis.Client
	Mailer    handler.EstadoMailer
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Almacen ← DocumentoRepository ← DB
func New(d Dependencias) *gin.Engine {
	cfg := d.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Env == "production", cfg.CORSAllowedOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	svc := d.Servicios

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svc.Auth)
	operadoresH := handler.NewOperadoresHandler(svc.Operadores)
	cajaH := handler.NewCajaHandler(svc.Caja, svc.Bancos)
	saldosH := handler.NewSaldosHandler(svc.Libro, svc.Serial)
	transaccionesH := handler.NewTransaccionesHandler(svc.Transacciones)
	bancosH := handler.NewBancosHandler(svc.Bancos)
	monedasH := handler.NewMonedasHandler(svc.Monedas)
	tiposH := handler.NewTiposOperacionHandler(svc.Tipos)
	clientesH := handler.NewClientesHandler(svc.Clientes)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.Mailer))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes, guarded per group by permission flag
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))

	// Every operator works the register; only reporting needs a flag.
	caja := v1.Group("/caja")
	{
		caja.POST("/abrir", cajaH.Abrir)
		caja.POST("/cerrar", cajaH.Cerrar)
		caja.GET("/actual", cajaH.Actual)
		caja.GET("/historial", middleware.RequirePermiso(model.PermisoReportes), cajaH.Historial)
		caja.GET("/historial/:indice", middleware.RequirePermiso(model.PermisoReportes), cajaH.ObtenerHistorial)
		caja.GET("/historial/:indice/reporte", middleware.RequirePermiso(model.PermisoReportes), cajaH.Reporte)
	}

	saldos := v1.Group("/saldos-bancarios", middleware.RequirePermiso(model.PermisoBancos))
	{
		saldos.GET("", saldosH.Listar)
		saldos.GET("/:banco_id/:moneda", saldosH.Obtener)
		saldos.PUT("/:banco_id/:moneda", saldosH.Fijar)
	}

	tx := v1.Group("/transacciones", middleware.RequirePermiso(model.PermisoTransacciones))
	{
		tx.POST("", transaccionesH.Registrar)
		tx.GET("", transaccionesH.Listar)
		tx.POST("/calcular", transaccionesH.Calcular)
		tx.GET("/resumen", middleware.RequirePermiso(model.PermisoReportes), transaccionesH.Resumen)
		tx.GET("/export", middleware.RequirePermiso(model.PermisoReportes), transaccionesH.Exportar)
		tx.GET("/:id", transaccionesH.Obtener)
		tx.GET("/:id/comprobante", transaccionesH.Comprobante)
	}

	// Catalogs are readable by every operator (forms need them); writes are
	// guarded by the matching flag.
	v1.GET("/bancos", bancosH.Listar)
	v1.GET("/bancos/:id", bancosH.Obtener)
	bancos := v1.Group("/bancos", middleware.RequirePermiso(model.PermisoBancos))
	{
		bancos.POST("", bancosH.Crear)
		bancos.PUT("/:id", bancosH.Actualizar)
		bancos.DELETE("/:id", bancosH.Eliminar)
	}

	v1.GET("/monedas", monedasH.ListarMonedas)
	v1.GET("/monedas/:id", monedasH.ObtenerMoneda)
	monedas := v1.Group("/monedas", middleware.RequirePermiso(model.PermisoMonedas))
	{
		monedas.POST("", monedasH.CrearMoneda)
		monedas.PUT("/:id", monedasH.ActualizarMoneda)
		monedas.DELETE("/:id", monedasH.EliminarMoneda)
	}

	v1.GET("/criptos", monedasH.ListarCriptos)
	v1.GET("/criptos/:id", monedasH.ObtenerCripto)
	criptos := v1.Group("/criptos", middleware.RequirePermiso(model.PermisoCriptos))
	{
		criptos.POST("", monedasH.CrearCripto)
		criptos.PUT("/:id", monedasH.ActualizarCripto)
		criptos.DELETE("/:id", monedasH.EliminarCripto)
	}

	v1.GET("/tipos-operacion", tiposH.Listar)
	tipos := v1.Group("/tipos-operacion", middleware.RequirePermiso(model.PermisoTransacciones))
	{
		tipos.POST("", tiposH.Crear)
		tipos.PUT("/:id", tiposH.Actualizar)
		tipos.DELETE("/:id", tiposH.Eliminar)
	}

	v1.GET("/clientes", clientesH.Listar)
	v1.GET("/clientes/:id", clientesH.Obtener)
	clientes := v1.Group("/clientes", middleware.RequirePermiso(model.PermisoClientes))
	{
		clientes.POST("", clientesH.Crear)
		clientes.PUT("/:id", clientesH.Actualizar)
		clientes.DELETE("/:id", clientesH.Eliminar)
	}

	operadores := v1.Group("/operadores", middleware.RequirePermiso(model.PermisoOperadores))
	{
		operadores.GET("", operadoresH.Listar)
		operadores.POST("", operadoresH.Crear)
		operadores.PUT("/:id", operadoresH.Actualizar)
		operadores.DELETE("/:id", operadoresH.Eliminar)
	}

	// Dead jobs only exist when the worker pool runs on redis.
	if d.Redis != nil {
		jobsH := handler.NewJobsHandler(d.Redis)
		v1.GET("/jobs/dlq/:cola", middleware.RequirePermiso(model.PermisoOperadores), jobsH.DLQ)
	}

	return r
}
