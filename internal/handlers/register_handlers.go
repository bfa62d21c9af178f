package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/SeiwaLabs/invoice_kanri_app/cmd/docs"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/middleware"
	"github.com/SeiwaLabs/invoice_kanri_app/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// using interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	authorizer ConnectorAuthorizer,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	setupAPIV1Routes(r, cfg, services, authorizer)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the entity
// route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	authorizer ConnectorAuthorizer,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerInvoiceRoutes(v1, services.Invoice)
	registerTransferRoutes(v1, services.Invoice, authorizer)
	registerComplianceRoutes(v1, services.Compliance)
	registerVendorRoutes(v1, services.Vendor)
	registerDepartmentRoutes(v1, services.Department)
	registerAuditRoutes(v1, services.Audit)
	registerReportingRoutes(v1, services.Reporting)
	registerMailboxRoutes(v1, services.Mailbox)
}

// setupSwaggerRoutes configures the swagger documentation routes.
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
