package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sidhant-sriv/gallery-api/auth"
	"github.com/sidhant-sriv/gallery-api/models"
	"github.com/sidhant-sriv/gallery-api/store"
	"github.com/sidhant-sriv/gallery-api/upload"
)

// Handlers carries the collaborators every route needs.
type Handlers struct {
	Store         store.ItemStore
	Uploads       *upload.Saver
	Auth          *auth.Service
	Log           *zap.Logger
	PublicDir     string
	SecureCookies bool
}

// page is the data passed to every HTML template.
type page struct {
	Title    string
	Active   string
	Nav      []models.Category
	Category models.Category
	Items    []models.Item
	Sections []models.Category
	Failed   bool
}

func (h *Handlers) page(title, active string) page {
	return page{Title: title, Active: active, Nav: h.Store.Categories()}
}

// fail logs err and answers with the plain-text status the error maps to.
func (h *Handlers) fail(c *gin.Context, category, op string, err error) {
	status, msg := errorResponse(err)
	fields := []zap.Field{zap.String("category", category), zap.String("op", op), zap.Error(err)}
	if status >= http.StatusInternalServerError {
		h.Log.Error("store operation failed", fields...)
	} else {
		h.Log.Warn("request rejected", fields...)
	}
	_ = c.Error(err)
	c.String(status, msg)
}

func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrInvalidRequest):
		return http.StatusBadRequest, "Invalid request: Expected an array of item IDs"
	case errors.Is(err, store.ErrUnknownCategory):
		return http.StatusNotFound, "Unknown category"
	case errors.Is(err, upload.ErrNotImage):
		return http.StatusBadRequest, "Only image files are allowed."
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "Image is too large"
	case errors.Is(err, store.ErrCorruptStore):
		return http.StatusInternalServerError, "JSON data is not an array"
	case errors.Is(err, store.ErrStoreWrite):
		return http.StatusInternalServerError, "Error writing to JSON file"
	case errors.Is(err, store.ErrStoreRead):
		return http.StatusInternalServerError, "Error reading JSON file"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
