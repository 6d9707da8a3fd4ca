package router

import (
	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/handler"
)

// RegisterAdmin registers everything behind the admin role: verification,
// bulk operations, shelter management, user management, the dashboard, and
// the text generation endpoints.
func RegisterAdmin(admin *echo.Group, a *handler.AuthHandler, rep *handler.ReportHandler, sos *handler.SOSHandler, sh *handler.ShelterHandler, ad *handler.AdminHandler, aih *handler.AIHandler) {
	// ---- Report moderation ----
	admin.PUT("/reports/:id/verify", rep.Verify)
	admin.POST("/admin/reports/bulk-verify", ad.BulkVerifyReports)
	admin.DELETE("/admin/reports/bulk-delete", ad.BulkDeleteReports)

	// ---- SOS coordination ----
	admin.PUT("/sos/:id/accept", sos.Accept)
	admin.GET("/sos/stats", sos.SOSStats)

	// ---- Shelter management ----
	admin.POST("/shelters", sh.Create)
	admin.PUT("/shelters/:id", sh.Update)
	admin.DELETE("/shelters/:id", sh.Delete)
	admin.PUT("/shelters/:id/occupancy", sh.UpdateOccupancy)

	// ---- Dashboard ----
	admin.GET("/admin/stats", ad.Dashboard)
	admin.GET("/admin/activities", ad.RecentActivities)

	// ---- User management ----
	admin.GET("/admin/users", a.ListUsers)
	admin.GET("/admin/users/safety-status", a.SafetyStatus)
	admin.PUT("/admin/users/:id/role", a.UpdateUserRole)
	admin.DELETE("/admin/users/:id", a.DeleteUser)

	// ---- Text generation ----
	admin.POST("/ai/summary", aih.Summary)
	admin.POST("/ai/warning-message", aih.WarningMessage)
	admin.GET("/ai/daily-summary", aih.DailySummary)
	admin.POST("/ai/emergency-message", aih.EmergencyMessage)
}
