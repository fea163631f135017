package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fair-rice-portal/internal/model"
	"github.com/iliyamo/fair-rice-portal/internal/service"
)

// dbTimeout bounds the storage work of a single request.
const dbTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// badRequest answers 400 with msg.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// writeError maps a service error onto a status code.  Unknown errors are
// logged and hidden behind a generic message.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Msg})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAuthMismatch):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrStorage):
		log.Error("storage failure", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store file"})
	}
	log.Error("request failed", zap.String("method", c.Request().Method), zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

// pageFrom reads ?page, ?size and ?sort.  Sort has the form "field" or
// "field,asc|desc"; the direction defaults to ascending.
func pageFrom(c echo.Context) (model.PageRequest, error) {
	index, err := intParam(c, "page", 0)
	if err != nil {
		return model.PageRequest{}, err
	}
	size, err := intParam(c, "size", model.DefaultPageSize)
	if err != nil {
		return model.PageRequest{}, err
	}
	page := model.NewPageRequest(index, size)

	if raw := strings.TrimSpace(c.QueryParam("sort")); raw != "" {
		field, dir, _ := strings.Cut(raw, ",")
		page.Sort.Field = strings.TrimSpace(field)
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			page.Sort.Desc = true
		default:
			return model.PageRequest{}, &service.ValidationError{Msg: "sort direction must be asc or desc"}
		}
	}
	return page, nil
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &service.ValidationError{Msg: "invalid " + name + " parameter"}
	}
	return n, nil
}

// optionalInt returns nil when the query parameter is absent.
func optionalInt(c echo.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &service.ValidationError{Msg: "invalid " + name + " parameter"}
	}
	return &n, nil
}

func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, &service.ValidationError{Msg: "invalid " + name}
	}
	return id, nil
}

// message is the body of endpoints that only confirm an action.
type message struct {
	Message string `json:"message"`
}
