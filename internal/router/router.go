package router

import (
	"time"

	"distrigest/internal/config"
	"distrigest/internal/handler"
	"distrigest/internal/infra"
	"distrigest/internal/middleware"
	"distrigest/internal/repository"
	"distrigest/internal/service"
	"distrigest/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, colppyCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	bcraClient := infra.NewCachedBCRAClient(infra.NewBCRAClient(cfg.BCRAAPIURL), rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	cuentaRepo := repository.NewCuentaTesoreriaRepository(db)
	presupuestoRepo := repository.NewPresupuestoRepository(db)
	remitoRepo := repository.NewRemitoRepository(db)
	facturaRepo := repository.NewFacturaRepository(db)
	reciboRepo := repository.NewReciboRepository(db)
	historialRepo := repository.NewHistorialRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	clienteSvc := service.NewClienteService(clienteRepo, bcraClient)
	presupuestoSvc := service.NewPresupuestoService(presupuestoRepo, remitoRepo, clienteRepo, historialRepo)
	remitoSvc := service.NewRemitoService(remitoRepo, facturaRepo, clienteRepo, historialRepo, dispatcher)
	facturaSvc := service.NewFacturaService(facturaRepo, historialRepo)
	reciboSvc := service.NewReciboService(reciboRepo, facturaRepo, clienteRepo, cuentaRepo, historialRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	presupuestosH := handler.NewPresupuestosHandler(presupuestoSvc)
	remitosH := handler.NewRemitosHandler(remitoSvc)
	facturasH := handler.NewFacturasHandler(facturaSvc)
	recibosH := handler.NewRecibosHandler(reciboSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, colppyCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: vendedor, supervisor, administrador — declared per-endpoint
		todos := middleware.RequireRole("vendedor", "supervisor", "administrador")
		aprobadores := middleware.RequireRole("supervisor", "administrador")

		clientes := v1.Group("/clientes")
		{
			clientes.GET("", todos, clientesH.Listar)
			clientes.GET("/:id", todos, clientesH.Obtener)
			clientes.GET("/:id/situacion-crediticia", todos, clientesH.SituacionCrediticia)
			clientes.GET("/:id/facturas-abiertas", todos, facturasH.Abiertas)
			clientes.POST("", aprobadores, clientesH.Crear)
			clientes.PUT("/:id", aprobadores, clientesH.Actualizar)
			clientes.DELETE("/:id", middleware.RequireRole("administrador"), clientesH.Desactivar)
		}

		presupuestos := v1.Group("/presupuestos", todos)
		{
			presupuestos.POST("", presupuestosH.Crear)
			presupuestos.GET("", presupuestosH.Listar)
			presupuestos.GET("/:id", presupuestosH.Obtener)
			presupuestos.GET("/:id/historial", presupuestosH.Historial)
			presupuestos.POST("/:id/transicion", presupuestosH.Transicion)
			presupuestos.POST("/:id/convertir", presupuestosH.Convertir)
			presupuestos.POST("/:id/duplicar", presupuestosH.Duplicar)
		}

		remitos := v1.Group("/remitos")
		{
			remitos.GET("", todos, remitosH.Listar)
			remitos.GET("/tablero", todos, remitosH.Tablero)
			remitos.GET("/:id", todos, remitosH.Obtener)
			remitos.GET("/:id/historial", todos, remitosH.Historial)
			remitos.POST("", aprobadores, remitosH.Crear)
			remitos.POST("/:id/transicion", aprobadores, remitosH.Transicion)
			remitos.POST("/:id/facturar", aprobadores, remitosH.FacturarParcial)
		}

		facturas := v1.Group("/facturas")
		{
			facturas.GET("", todos, facturasH.Listar)
			facturas.GET("/:id", todos, facturasH.Obtener)
			facturas.GET("/:id/historial", todos, facturasH.Historial)
			facturas.DELETE("/:id", aprobadores, facturasH.Anular)
		}

		recibos := v1.Group("/recibos")
		{
			recibos.GET("", todos, recibosH.Listar)
			recibos.GET("/:id", todos, recibosH.Obtener)
			recibos.GET("/:id/historial", todos, recibosH.Historial)
			recibos.POST("", todos, recibosH.CrearBorrador)
			// Approval moves money — supervisors and administrators only
			recibos.POST("/:id/aprobar", aprobadores, recibosH.Aprobar)
			recibos.POST("/aprobar-directo", aprobadores, recibosH.AprobarDirecto)
			recibos.DELETE("/:id", aprobadores, recibosH.Anular)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
