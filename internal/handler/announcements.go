package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fair-rice-portal/internal/model"
)

// AnnouncementService is implemented by *service.Announcements.
type AnnouncementService interface {
	ListPaged(ctx context.Context, page model.PageRequest) (model.Page[model.Announcement], error)
	Create(ctx context.Context, title, content string) (model.Announcement, error)
	Update(ctx context.Context, id uint64, title, content string) (model.Announcement, error)
	Delete(ctx context.Context, id uint64) error
}

// CacheInvalidator drops cached public responses.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// AnnouncementHandler serves the announcement board.
type AnnouncementHandler struct {
	announcements AnnouncementService
	cache         CacheInvalidator
	log           *zap.Logger
}

// NewAnnouncementHandler wires the board.  cache may be nil.
func NewAnnouncementHandler(announcements AnnouncementService, cache CacheInvalidator, log *zap.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements, cache: cache, log: log.Named("announcements")}
}

type announcementReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *AnnouncementHandler) invalidate(ctx context.Context) {
	if h.cache != nil {
		h.cache.Invalidate(ctx)
	}
}

// ListPublic returns one page of announcements, newest first.
func (h *AnnouncementHandler) ListPublic(c echo.Context) error {
	page, err := pageFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	page.Sort = model.Sort{}
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.announcements.ListPaged(ctx, page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AnnouncementHandler) Create(c echo.Context) error {
	var req announcementReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	a, err := h.announcements.Create(ctx, req.Title, req.Content)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusCreated, a)
}

func (h *AnnouncementHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req announcementReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	a, err := h.announcements.Update(ctx, id, req.Title, req.Content)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusOK, a)
}

func (h *AnnouncementHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.announcements.Delete(ctx, id); err != nil {
		return writeError(c, h.log, err)
	}
	h.invalidate(ctx)
	return c.NoContent(http.StatusNoContent)
}
