package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidhant-sriv/gallery-api/models"
)

// GalleryRoutes sets up the public pages: one gallery page per category, contact and
// a JSON listing.
func GalleryRoutes(router *gin.Engine, h *Handlers) {
	cats := h.Store.Categories()

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, cats[0].PublicPath)
	})

	for _, cat := range cats {
		router.GET(cat.PublicPath, h.GalleryPage(cat))
	}

	router.GET("/contact", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.tmpl", h.page("Contact", "contact"))
	})

	api := router.Group("/api")
	{
		api.GET("/categories", h.ListCategories())
		api.GET("/categories/:category/items", h.ListItems())
	}
}

// GalleryPage renders a category's images for visitors.
func (h *Handlers) GalleryPage(cat models.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.Store.List(c.Request.Context(), cat.Name)
		if err != nil {
			h.fail(c, cat.Name, "list", err)
			return
		}

		p := h.page(cat.Title, cat.Name)
		p.Category = cat
		p.Items = items
		c.HTML(http.StatusOK, "gallery.tmpl", p)
	}
}

// ListCategories returns the configured categories.
func (h *Handlers) ListCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"categories": h.Store.Categories()})
	}
}

// ListItems returns one category's collection as JSON.
func (h *Handlers) ListItems() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("category")
		items, err := h.Store.List(c.Request.Context(), name)
		if err != nil {
			h.fail(c, name, "list", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"category": name, "items": items})
	}
}
