package server

import (
	"github.com/gin-contrib/cors"
	"go.uber.org/fx"

	"github.com/looplj/adminhub/internal/contexts"
	"github.com/looplj/adminhub/internal/server/api"
	"github.com/looplj/adminhub/internal/server/biz"
	"github.com/looplj/adminhub/internal/server/middleware"
)

type Handlers struct {
	fx.In

	Items    *api.ItemHandlers
	Meta     *api.MetaHandlers
	System   *api.SystemHandlers
	Snapshot *api.SnapshotHandlers
}

type Services struct {
	fx.In

	AuthService *biz.AuthService
}

func SetupRoutes(server *Server, handlers Handlers, services Services) {
	server.Use(middleware.AccessLog())
	server.Use(middleware.WithLoggingTracing(server.Config.Trace))
	server.Use(middleware.WithMetrics())

	// Setup CORS middleware at server level if enabled
	if server.Config.CORS.Enabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = server.Config.CORS.AllowedOrigins
		corsConfig.AllowMethods = server.Config.CORS.AllowedMethods
		corsConfig.AllowHeaders = server.Config.CORS.AllowedHeaders
		corsConfig.ExposeHeaders = server.Config.CORS.ExposedHeaders
		corsConfig.AllowCredentials = server.Config.CORS.AllowCredentials
		corsConfig.MaxAge = server.Config.CORS.MaxAge

		corsHandler := cors.New(corsConfig)
		server.Use(corsHandler)
		server.OPTIONS("*any", corsHandler)
	}

	publicGroup := server.Group("", middleware.WithTimeout(server.Config.RequestTimeout))
	{
		// Health check endpoint - no authentication required
		publicGroup.GET("/health", handlers.System.Health)
	}

	adminGroup := server.Group("/admin",
		middleware.WithTimeout(server.Config.RequestTimeout),
		middleware.WithSessionAuth(services.AuthService),
		middleware.WithSource(contexts.SourceAdmin),
	)
	{
		// Item CRUD. Requests reach the handlers unauthenticated too,
		// the access rules downstream decide what anonymous may see.
		itemsGroup := adminGroup.Group("/lists/:list/items")
		itemsGroup.POST("", handlers.Items.CreateItem)
		itemsGroup.GET("", handlers.Items.ListItems)
		itemsGroup.PATCH("", handlers.Items.BulkUpdateItems)
		itemsGroup.GET("/:id", handlers.Items.GetItem)
		itemsGroup.PATCH("/:id", handlers.Items.UpdateItem)
		itemsGroup.DELETE("/:id", handlers.Items.DeleteItem)

		metaGroup := adminGroup.Group("/meta")
		metaGroup.GET("", handlers.Meta.GetMeta)
		metaGroup.GET("/:list", handlers.Meta.GetListMeta)
		metaGroup.GET("/:list/jsonschema", handlers.Meta.GetJSONSchema)
		metaGroup.GET("/:list/items/:id", handlers.Meta.GetItemModes)
	}

	operatorGroup := adminGroup.Group("", middleware.RequireAdmin())
	{
		operatorGroup.GET("/system/status", handlers.System.GetSystemStatus)

		operatorGroup.POST("/snapshots", handlers.Snapshot.CreateSnapshot)
		operatorGroup.GET("/snapshots", handlers.Snapshot.ListSnapshots)
		operatorGroup.POST("/snapshots/restore", handlers.Snapshot.RestoreSnapshot)
	}
}
