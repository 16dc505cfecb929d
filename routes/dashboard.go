package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sidhant-sriv/gallery-api/archive"
	"github.com/sidhant-sriv/gallery-api/middleware"
	"github.com/sidhant-sriv/gallery-api/models"
)

// DashboardRoutes sets up the operator pages. Every route sits behind the session gate.
func DashboardRoutes(router *gin.Engine, h *Handlers) {
	dash := router.Group("/dashboard")
	dash.Use(middleware.RequireSession(h.Auth, h.Log))
	{
		dash.GET("", h.DashboardIndex("Dashboard", ""))
		dash.GET("/help", func(c *gin.Context) {
			c.HTML(http.StatusOK, "dashboard_help.tmpl", h.page("Help", "help"))
		})
	}

	groups := make(map[string]bool)
	for _, cat := range h.Store.Categories() {
		if cat.Group != "" && !groups[cat.Group] {
			groups[cat.Group] = true
			dash.GET("/"+cat.Group, h.DashboardIndex("Dashboard · "+cat.Group, cat.Group))
		}
	}

	manage := router.Group("")
	manage.Use(middleware.RequireSession(h.Auth, h.Log))
	for _, cat := range h.Store.Categories() {
		if !cat.Manageable() {
			continue
		}
		manage.GET(cat.DashboardPath, h.DashboardCategory(cat))
		manage.POST(cat.DashboardPath+"/add-item", h.AddItem(cat))
		manage.POST(cat.DashboardPath+"/remove-item", h.RemoveItems(cat))
		manage.POST(cat.DashboardPath+"/download", h.Download(cat))
	}
}

// DashboardIndex links to the manage page of every category in group, or of every
// category when group is empty.
func (h *Handlers) DashboardIndex(title, group string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := h.page(title, "dashboard")
		for _, cat := range h.Store.Categories() {
			if cat.Manageable() && (group == "" || cat.Group == group) {
				p.Sections = append(p.Sections, cat)
			}
		}
		c.HTML(http.StatusOK, "dashboard.tmpl", p)
	}
}

// DashboardCategory renders the add/remove page for one category.
func (h *Handlers) DashboardCategory(cat models.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.Store.List(c.Request.Context(), cat.Name)
		if err != nil {
			h.fail(c, cat.Name, "list", err)
			return
		}
		p := h.page(cat.Title, cat.Name)
		p.Category = cat
		p.Items = items
		c.HTML(http.StatusOK, "dashboard_category.tmpl", p)
	}
}

// AddItem stores the uploaded image and appends its record to the collection.
// If the append fails the stored file is left behind.
func (h *Handlers) AddItem(cat models.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("image")
		if err != nil {
			h.Log.Warn("add item without image", zap.String("category", cat.Name), zap.Error(err))
			c.String(http.StatusBadRequest, "No image uploaded")
			return
		}

		filename, err := h.Uploads.SaveMultipart(cat, fh)
		if err != nil {
			h.fail(c, cat.Name, "upload", err)
			return
		}

		item, err := h.Store.Append(c.Request.Context(), cat.Name, filename)
		if err != nil {
			h.fail(c, cat.Name, "append", err)
			return
		}

		h.Log.Info("item added",
			zap.String("category", cat.Name),
			zap.String("id", item.ID),
			zap.String("url", item.URL))
		if wantsJSON(c) {
			c.JSON(http.StatusCreated, gin.H{"item": item})
			return
		}
		c.Redirect(http.StatusSeeOther, cat.DashboardPath)
	}
}

// RemoveItems drops the selected records. Their image files stay on disk.
func (h *Handlers) RemoveItems(cat models.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids := bindIDSet(c)
		h.Log.Info("received item ids", zap.String("category", cat.Name), zap.Strings("ids", ids))

		if err := h.Store.Remove(c.Request.Context(), cat.Name, ids); err != nil {
			h.fail(c, cat.Name, "remove", err)
			return
		}

		if wantsJSON(c) {
			items, err := h.Store.List(c.Request.Context(), cat.Name)
			if err != nil {
				h.fail(c, cat.Name, "list", err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"items": items})
			return
		}
		c.Redirect(http.StatusSeeOther, cat.DashboardPath)
	}
}

// Download streams a zip of the collection and its images.
func (h *Handlers) Download(cat models.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.Store.List(c.Request.Context(), cat.Name)
		if err != nil {
			h.fail(c, cat.Name, "download", err)
			return
		}

		c.Header("Content-Type", "application/zip")
		c.Header("Content-Disposition", `attachment; filename="`+archive.Filename(cat)+`"`)
		c.Status(http.StatusOK)

		sum, err := archive.Write(c.Writer, cat, items, h.PublicDir)
		if err != nil {
			h.Log.Error("archive failed", zap.String("category", cat.Name), zap.Error(err))
			c.Abort()
			return
		}
		h.Log.Info("archive sent",
			zap.String("category", cat.Name),
			zap.Int("items", sum.Items),
			zap.Int("assets", sum.Assets),
			zap.Strings("missing", sum.Missing))
	}
}
