package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/fair-rice-portal/internal/config"
	"github.com/iliyamo/fair-rice-portal/internal/handler"
	"github.com/iliyamo/fair-rice-portal/internal/middleware"
)

// Handlers groups every HTTP handler the portal exposes.
type Handlers struct {
	Auth          *handler.AuthHandler
	Records       *handler.RecordHandler
	Families      *handler.FamilyHandler
	Grievances    *handler.GrievanceHandler
	Announcements *handler.AnnouncementHandler
	Chatbot       *handler.ChatbotHandler
	Uploads       *handler.UploadHandler
}

// Guards are the middlewares placed in front of route groups.  A nil
// entry means "no guard".
type Guards struct {
	JWTSecret  string
	Principals middleware.PrincipalLoader
	RateLimit  echo.MiddlewareFunc
	Cache      echo.MiddlewareFunc
}

// Use installs the process-wide middleware: panic recovery, request
// logging, CORS and a body size cap for uploads.
func Use(e *echo.Echo, cors config.CORSConfig, log *zap.Logger) {
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cors.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))
	e.Use(echomw.BodyLimit("12M"))
}

// RegisterRoutes registers routes that do not touch the API: the health
// check and read-only access to uploaded images.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, uploads *handler.UploadHandler) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/uploads/:name", uploads.Get)
}

// RegisterPublic registers the unauthenticated API.  Writes go through
// the rate limiter; the announcement list is served from cache.
func RegisterPublic(e *echo.Echo, h Handlers, g Guards) {
	limit := orPass(g.RateLimit)
	cache := orPass(g.Cache)

	e.POST("/api/auth/login", h.Auth.Login, limit)
	e.POST("/api/admin/forgot-password", h.Auth.ForgotPassword, limit)
	e.POST("/api/admin/reset-password", h.Auth.ResetPassword, limit)

	e.POST("/api/records/public", h.Records.SubmitPublic, limit)
	e.GET("/api/families/public/by-contact/:contactNumber", h.Families.ByContact)

	e.POST("/api/grievances/public", h.Grievances.FilePublic, limit)
	e.GET("/api/grievances/public/status/:trackingId", h.Grievances.Status)

	e.GET("/api/announcements/public", h.Announcements.ListPublic, cache)
	e.POST("/api/chatbot/public/ask", h.Chatbot.Ask, limit)
}

func orPass(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	if mw == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return mw
}
