// Package api exposes the gym backend over HTTP with gin.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/falconilham/gym-nexus-sub000/internal/observability"
	"github.com/falconilham/gym-nexus-sub000/internal/storage"
)

// RouterConfig tunes the HTTP surface.
type RouterConfig struct {
	CORSOrigins []string
	// UploadDir is served read-only under /uploads when set.
	UploadDir      string
	MaxUploadBytes int64
}

// NewRouter builds the engine with middleware and every route.
func NewRouter(cfg RouterConfig, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), observability.GinMiddleware(), CORSMiddleware(cfg.CORSOrigins))
	if cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	SetupRoutes(r, NewHandlers(svc), svc.Tokens)
	if cfg.UploadDir != "" {
		r.Static(storage.URLPrefix, cfg.UploadDir)
	}
	return r
}

func SetupRoutes(r *gin.Engine, h *Handlers, tokens TokenParser) {
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", h.AdminLogin)
	v1.POST("/app/auth/register", h.MemberRegister)
	v1.POST("/app/auth/login", h.MemberLogin)

	authed := v1.Group("", AuthMiddleware(tokens))

	// Member app
	app := authed.Group("/app", RequireMember())
	app.GET("/me", h.AppMe)
	app.PATCH("/me", h.AppUpdateMe)
	app.GET("/memberships", h.AppMemberships)
	app.GET("/memberships/:memberId/qr", h.AppMembershipQR)
	app.GET("/classes", h.AppClasses)
	app.POST("/classes/:classId/book", h.AppBook)
	app.GET("/bookings", h.AppBookings)
	app.DELETE("/bookings/:bookingId", h.AppCancelBooking)
	app.GET("/checkins", h.AppCheckIns)
	app.POST("/telegram/link-code", h.AppTelegramLinkCode)

	admin := authed.Group("", RequireAdmin())
	admin.GET("/auth/me", h.AdminMe)

	// Specialties are shared by all gyms
	admin.GET("/specialties", h.ListSpecialties)
	admin.POST("/specialties", RequireManager(), h.CreateSpecialty)
	admin.DELETE("/specialties/:specialtyId", RequireSuperAdmin(), h.DeleteSpecialty)

	admin.GET("/gyms", h.ListGyms)
	admin.POST("/gyms", RequireSuperAdmin(), h.CreateGym)

	gym := admin.Group("/gyms/:gymId", RequireGymAccess())
	gym.GET("", h.GetGym)
	gym.PATCH("", RequireManager(), h.UpdateGym)
	gym.DELETE("", RequireSuperAdmin(), h.DeleteGym)
	gym.POST("/logo", RequireManager(), h.UploadGymLogo)
	gym.GET("/stats", h.GymStats)
	gym.GET("/activity-logs", RequireManager(), h.ListActivity)

	admins := gym.Group("/admins", RequireManager())
	admins.GET("", h.ListAdmins)
	admins.POST("", h.CreateAdmin)
	admins.GET("/:adminId", h.GetAdmin)
	admins.PATCH("/:adminId", h.UpdateAdmin)
	admins.DELETE("/:adminId", h.DeleteAdmin)

	members := gym.Group("/members")
	members.GET("", h.ListMembers)
	members.POST("", h.CreateMember)
	members.GET("/:memberId", h.GetMember)
	members.PATCH("/:memberId", h.UpdateMember)
	members.DELETE("/:memberId", RequireManager(), h.DeleteMember)
	members.POST("/:memberId/suspend", h.SuspendMember)
	members.POST("/:memberId/reactivate", h.ReactivateMember)
	members.POST("/:memberId/renew", h.RenewMember)
	members.POST("/:memberId/cancel", RequireManager(), h.CancelMember)
	members.GET("/:memberId/checkins", h.MemberCheckIns)
	members.GET("/:memberId/bookings", h.MemberBookings)

	checkIns := gym.Group("/checkins")
	checkIns.GET("", h.ListCheckIns)
	checkIns.GET("/inside", h.ListInside)
	checkIns.POST("/scan", h.ScanCheckIn)
	checkIns.POST("/manual", h.ManualCheckIn)

	trainers := gym.Group("/trainers")
	trainers.GET("", h.ListTrainers)
	trainers.POST("", h.CreateTrainer)
	trainers.GET("/:trainerId", h.GetTrainer)
	trainers.PATCH("/:trainerId", h.UpdateTrainer)
	trainers.DELETE("/:trainerId", RequireManager(), h.DeleteTrainer)

	classes := gym.Group("/classes")
	classes.GET("", h.ListClasses)
	classes.POST("", h.CreateClass)
	classes.GET("/:classId", h.GetClass)
	classes.PATCH("/:classId", h.UpdateClass)
	classes.DELETE("/:classId", RequireManager(), h.DeleteClass)
	classes.POST("/:classId/cancel", h.CancelClass)
	classes.GET("/:classId/bookings", h.ListClassBookings)
	classes.POST("/:classId/bookings", h.CreateBooking)

	bookings := gym.Group("/bookings")
	bookings.POST("/:bookingId/cancel", h.CancelBooking)
	bookings.POST("/:bookingId/attend", h.AttendBooking)

	equipment := gym.Group("/equipment")
	equipment.GET("", h.ListEquipment)
	equipment.POST("", h.CreateEquipment)
	equipment.GET("/:equipmentId", h.GetEquipment)
	equipment.PATCH("/:equipmentId", h.UpdateEquipment)
	equipment.DELETE("/:equipmentId", RequireManager(), h.DeleteEquipment)
}
