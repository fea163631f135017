package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fair-rice-portal/internal/model"
)

// RegistryService is implemented by *service.Registry.
type RegistryService interface {
	FindByContactNumber(ctx context.Context, contact string) (model.Family, error)
	ListPaged(ctx context.Context, page model.PageRequest) (model.Page[model.Family], error)
	QRCode(ctx context.Context, id uint64) ([]byte, error)
}

// FamilyHandler serves the family registry.
type FamilyHandler struct {
	registry RegistryService
	log      *zap.Logger
}

func NewFamilyHandler(registry RegistryService, log *zap.Logger) *FamilyHandler {
	return &FamilyHandler{registry: registry, log: log.Named("families")}
}

// ByContact returns the family registered under a contact number, used by
// the submission form to prefill known households.
func (h *FamilyHandler) ByContact(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	f, err := h.registry.FindByContactNumber(ctx, c.Param("contactNumber"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, f)
}

// List returns one page of families, newest first.
func (h *FamilyHandler) List(c echo.Context) error {
	page, err := pageFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.registry.ListPaged(ctx, page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// QRCode returns a PNG QR code for the family, shown inline so the admin
// panel can open it in a new tab.
func (h *FamilyHandler) QRCode(c echo.Context) error {
	id, err := pathID(c, "familyId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	png, err := h.registry.QRCode(ctx, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`inline; filename="family_%d_qrcode.png"`, id))
	return c.Blob(http.StatusOK, "image/png", png)
}
