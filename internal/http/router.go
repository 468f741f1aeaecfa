// Package http wires the Gin engine: middleware order, public storefront
// routes, the cookie-based auth endpoints and the bearer-guarded admin area.
package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/sueliob/backend-pizza/internal/config"
	"github.com/sueliob/backend-pizza/internal/http/handler"
	httpmiddleware "github.com/sueliob/backend-pizza/internal/http/middleware"
	"github.com/sueliob/backend-pizza/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Orders   *handler.OrderHandler
	Settings *handler.SettingsHandler
	Upload   *handler.UploadHandler
	Debug    *handler.DebugHandler
}

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, h Handlers, authMiddleware *httpmiddleware.Auth) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	r.Use(middleware.AllowedHosts(cfg.AllowedHosts))
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	api := r.Group("/api")
	{
		api.GET("", h.Health.Index)
		api.GET("/health", h.Health.Health)

		api.GET("/flavors", h.Catalog.PublicFlavors)
		api.GET("/flavors/:category", h.Catalog.PublicFlavorsByCategory)
		api.GET("/extras", h.Catalog.PublicExtras)
		api.GET("/dough-types", h.Catalog.PublicDoughTypes)

		api.POST("/orders", h.Orders.Create)
		api.POST("/orders/image", h.Upload.Upload)
		api.POST("/calculate-distance", h.Orders.CalculateDistance)

		public := api.Group("/public")
		{
			public.GET("/settings", h.Settings.PublicSettings)
			public.GET("/contact", h.Settings.PublicContact)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/login", h.Auth.Login)
			admin.POST("/refresh", h.Auth.Refresh)
			admin.POST("/logout", h.Auth.Logout)

			guarded := admin.Group("", authMiddleware.ValidateJWT)
			{
				guarded.GET("/dashboard", h.Orders.Dashboard)

				guarded.GET("/flavors", h.Catalog.AdminFlavors)
				guarded.POST("/flavors", h.Catalog.CreateFlavor)
				guarded.PUT("/flavors/:id", h.Catalog.UpdateFlavor)
				guarded.GET("/extras", h.Catalog.AdminExtras)
				guarded.POST("/extras", h.Catalog.CreateExtra)
				guarded.PUT("/extras/:id", h.Catalog.UpdateExtra)
				guarded.GET("/dough-types", h.Catalog.AdminDoughTypes)
				guarded.POST("/dough-types", h.Catalog.CreateDoughType)
				guarded.PUT("/dough-types/:id", h.Catalog.UpdateDoughType)
				guarded.POST("/bulk-import", h.Catalog.BulkImport)

				guarded.GET("/settings", h.Settings.AdminSettings)
				guarded.PUT("/settings", h.Settings.UpdateSettings)

				guarded.POST("/upload-image", h.Upload.Upload)
			}
		}

		if cfg.DebugEndpoints {
			debug := api.Group("/debug")
			{
				debug.GET("/admin-count", h.Debug.AdminCount)
				debug.POST("/create-admin", h.Debug.CreateAdmin)
			}
		}
	}

	return r
}
