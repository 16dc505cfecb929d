package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidhant-sriv/gallery-api/middleware"
	"github.com/sidhant-sriv/gallery-api/web"
)

// NewRouter assembles the engine: middleware, templates, static trees and all routes.
func NewRouter(h *Handlers, dataDir string, maxUploadBytes int64) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery(h.Log), middleware.RequestLogger(h.Log), middleware.SecurityHeaders())
	router.SetHTMLTemplate(tmpl)
	if maxUploadBytes > 0 {
		router.MaxMultipartMemory = maxUploadBytes
	}

	router.StaticFS("/static", http.FS(web.Static()))
	if h.PublicDir != "" {
		router.Static("/public", h.PublicDir)
	}
	if dataDir != "" {
		router.Static("/data", dataDir)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	GalleryRoutes(router, h)
	AuthRoutes(router, h)
	DashboardRoutes(router, h)

	return router, nil
}
