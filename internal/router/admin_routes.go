package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fair-rice-portal/internal/middleware"
	"github.com/iliyamo/fair-rice-portal/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /api.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h Handlers, g Guards) {
	api := e.Group(
		"/api",
		middleware.JWTAuth(g.JWTSecret, g.Principals),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Records ----
	api.GET("/records", h.Records.List)
	api.GET("/records/export", h.Records.Export)

	// ---- Families ----
	api.GET("/families/admin", h.Families.List)
	api.GET("/families/admin/:familyId/history", h.Records.FamilyHistory)
	api.GET("/families/admin/:familyId/qrcode", h.Families.QRCode)

	// ---- Grievances ----
	api.GET("/grievances/admin", h.Grievances.List)
	api.PUT("/grievances/admin/:id/status", h.Grievances.SetStatus)
	api.POST("/grievances/admin/:id/comments", h.Grievances.AddComment)

	// ---- Announcements ----
	api.POST("/announcements/admin", h.Announcements.Create)
	api.PUT("/announcements/admin/:id", h.Announcements.Update)
	api.DELETE("/announcements/admin/:id", h.Announcements.Delete)

	// ---- Account ----
	api.POST("/admin/change-password", h.Auth.ChangePassword)
}
