package app

import (
	"Essence/internal/cache"
	"Essence/internal/config"
	"Essence/internal/handlers"
	"Essence/internal/repo"
	"Essence/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/essences")

	essenceRepo := repo.NewPGEssenceRepo(db)
	var essenceCache *cache.EssenceCache
	if rdb != nil {
		essenceCache = cache.NewEssenceCache(rdb, cfg.Redis.DefaultTTL.Duration())
	}
	essenceSvc := service.NewEssenceService(essenceRepo, essenceCache)
	essenceHandler := handlers.NewEssenceHandler(essenceSvc)
	registerEssenceRoutes(api, essenceHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Essence API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/essences",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerEssenceRoutes(api *gin.RouterGroup, h *handlers.EssenceHandler) {
	api.GET("", h.List)
	api.POST("", h.Create)
	api.POST("/bulk", h.BulkCreate)
	api.GET("/:id", h.GetByID)
	api.PUT("/:id", h.Replace)
	api.PATCH("/:id", h.Update)
	api.DELETE("/:id", h.Delete)
}
