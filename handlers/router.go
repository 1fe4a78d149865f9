package handlers

import (
	"apartmenthub/middleware"
	"apartmenthub/validation"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RouterConfig carries what NewRouter wires together.
type RouterConfig struct {
	Apartments  ApartmentService
	Images      ImageUploader
	Health      Pinger
	Validator   *validation.Validator
	Logger      *slog.Logger
	CORSOrigins []string
	// ImageDir is served under ImageURLPrefix. Empty disables static serving.
	ImageDir       string
	ImageURLPrefix string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}

	r.GET("/health", HealthCheck(cfg.Health))

	if cfg.ImageDir != "" {
		prefix := strings.TrimSuffix(cfg.ImageURLPrefix, "/")
		r.StaticFS(prefix, gin.Dir(cfg.ImageDir, false))
	}

	v1 := r.Group("/v1/apartments")
	{
		v1.GET("", ListApartments(cfg.Apartments, cfg.Validator))
		v1.GET("/search", SearchApartments(cfg.Apartments, cfg.Validator))
		v1.GET("/projects", ListProjects(cfg.Apartments))
		v1.GET("/:id", GetApartment(cfg.Apartments))
		v1.POST("/add-apartmen", CreateApartment(cfg.Apartments, cfg.Validator))
		v1.POST("/upload-images", UploadImages(cfg.Images))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
