package app

import (
	"freightdesk/internal/auth"
	"freightdesk/internal/config"
	"freightdesk/internal/handler"
	"freightdesk/internal/logger"
	"freightdesk/internal/middleware"
	"freightdesk/internal/repository"
	"freightdesk/internal/service"
	"freightdesk/internal/storage"
	"freightdesk/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API is the assembled HTTP application. Run the Hub before serving.
type API struct {
	Router *gin.Engine
	Hub    *websocket.Hub
	Issuer *auth.Issuer
}

// NewAPI wires repositories, services and handlers (Repository -> Service -> Handler).
func NewAPI(cfg config.Config, db *gorm.DB, log *zap.Logger) (*API, error) {
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	files, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hub := websocket.NewHub(log.Named("ws"))

	// Set up dependencies
	txManager := repository.NewTransactionManager(db)
	supplierRepo := repository.NewSupplierRepository(db)
	forwarderRepo := repository.NewForwarderRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// every domain event is audited, then broadcast over the websocket hub
	auditService := service.NewAuditService(auditRepo, hub, log.Named("audit"))
	supplierService := service.NewSupplierService(supplierRepo)
	forwarderService := service.NewForwarderService(forwarderRepo)
	orderService := service.NewOrderService(orderRepo, supplierRepo, forwarderRepo, txManager, auditService)
	invoiceService := service.NewInvoiceService(invoiceRepo, orderRepo, documentRepo, files, auditService, log.Named("invoices"))
	documentService := service.NewDocumentService(documentRepo, invoiceRepo, files, auditService, log.Named("documents"))
	authService := service.NewAuthService(userRepo, issuer)
	userService := service.NewUserService(userRepo)

	// Initialize Handlers
	supplierHandler := handler.NewSupplierHandler(supplierService, log)
	forwarderHandler := handler.NewForwarderHandler(forwarderService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, log)
	documentHandler := handler.NewDocumentHandler(documentService, log)
	authHandler := handler.NewAuthHandler(authService, issuer, cfg.IsProduction(), log)
	auditHandler := handler.NewAuditHandler(auditService, log)
	userHandler := handler.NewUserHandler(userService, authService, log)
	healthHandler := handler.NewHealthHandler(db, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(log))
	router.MaxMultipartMemory = service.MaxUploadSize

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/ws", websocket.ServeWs(hub, issuer))

	public := router.Group("")
	protected := router.Group("", middleware.RequireAuth(issuer))

	healthHandler.RegisterRoutes(public)
	authHandler.RegisterRoutes(public, protected)
	supplierHandler.RegisterRoutes(protected)
	forwarderHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)
	invoiceHandler.RegisterRoutes(protected)
	documentHandler.RegisterRoutes(protected)
	auditHandler.RegisterRoutes(protected)
	userHandler.RegisterRoutes(protected)

	return &API{Router: router, Hub: hub, Issuer: issuer}, nil
}
