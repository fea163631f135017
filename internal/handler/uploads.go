package handler

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fair-rice-portal/internal/storage"
)

// UploadHandler serves stored grievance images read-only.
type UploadHandler struct {
	store storage.Store
	log   *zap.Logger
}

func NewUploadHandler(store storage.Store, log *zap.Logger) *UploadHandler {
	return &UploadHandler{store: store, log: log.Named("uploads")}
}

// Get returns the blob named by :name.
func (h *UploadHandler) Get(c echo.Context) error {
	name := c.Param("name")
	if err := storage.ValidName(name); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "file not found"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	data, err := h.store.Get(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "file not found"})
	}
	if err != nil {
		h.log.Error("read upload", zap.String("name", name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, ct, data)
}
