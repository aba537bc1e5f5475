package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hospital-portal/internal/config"
	"hospital-portal/internal/handlers"
	"hospital-portal/internal/middleware"
	"hospital-portal/internal/models"
	"hospital-portal/internal/session"
	"hospital-portal/internal/store"
)

// Deps are the long-lived services the routes are built from.
type Deps struct {
	Config   *config.Config
	Sessions *session.Manager
	Stores   *store.Registry
	// Metrics serves /metrics; nil leaves the endpoint out.
	Metrics http.Handler
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Sessions, deps.Stores, deps.Config.Session)
	departmentHandler := handlers.NewDepartmentHandler()
	userHandler := handlers.NewUserHandler()
	availabilityHandler := handlers.NewAvailabilityHandler()
	appointmentHandler := handlers.NewAppointmentHandler()
	medicalRecordHandler := handlers.NewMedicalRecordHandler()
	dashboardHandler := handlers.NewDashboardHandler()

	// Public routes (no session required)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.GET("/session", authHandler.Session)
	}

	private := router.Group("/api")
	private.Use(middleware.SessionMiddleware(deps.Sessions, deps.Stores, deps.Config.Session.CookieName))
	private.GET("/doctors/:id", userHandler.GetDoctorProfile)

	admin := private.Group("/admin")
	admin.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		admin.GET("/dashboard", dashboardHandler.GetAdminOverview)

		admin.GET("/departments", departmentHandler.GetDepartments)
		admin.POST("/departments", departmentHandler.CreateDepartment)
		admin.PUT("/departments/:id", departmentHandler.UpdateDepartment)
		admin.DELETE("/departments/:id", departmentHandler.DeleteDepartment)

		admin.GET("/doctors", userHandler.GetDoctors)
		admin.POST("/doctors", userHandler.CreateDoctor)
		admin.PUT("/doctors/:id/verify", userHandler.VerifyDoctor)
		admin.DELETE("/doctors/:id", userHandler.DeleteDoctor)

		admin.GET("/patients", userHandler.GetPatients)
		admin.DELETE("/patients/:id", userHandler.DeletePatient)

		admin.GET("/appointments", appointmentHandler.GetAppointments)
		admin.GET("/appointments/:id", appointmentHandler.GetAppointmentByID)
		admin.PUT("/appointments/:id/status", appointmentHandler.UpdateAppointmentStatus)
	}

	doctor := private.Group("/doctor")
	doctor.Use(middleware.RoleAuthMiddleware(models.RoleDoctor))
	{
		doctor.GET("/dashboard", dashboardHandler.GetDoctorDashboard)

		doctor.GET("/appointments", appointmentHandler.GetAppointments)
		doctor.GET("/appointments/:id", appointmentHandler.GetAppointmentByID)
		doctor.PUT("/appointments/:id/status", appointmentHandler.UpdateAppointmentStatus)

		doctor.GET("/availability", availabilityHandler.GetMyAvailability)
		doctor.PUT("/availability", availabilityHandler.UpdateMyAvailability)
		doctor.POST("/availability/toggle", availabilityHandler.ToggleSlot)

		doctor.GET("/profile", userHandler.GetMyDoctorProfile)
		doctor.PUT("/profile", userHandler.UpdateMyDoctorProfile)

		doctor.GET("/patients", userHandler.GetDoctorPatients)
		doctor.POST("/patients", userHandler.AddDoctorPatient)
		doctor.PUT("/patients/:id", userHandler.UpdateDoctorPatient)
		doctor.PUT("/patients/:id/vitals", userHandler.UpdatePatientVitals)
		doctor.POST("/patients/:id/notes", userHandler.AddPatientNote)

		doctor.POST("/records", medicalRecordHandler.CreateMedicalRecord)
		doctor.PUT("/records/:id", medicalRecordHandler.UpdateMedicalRecord)
		doctor.DELETE("/records/:id", medicalRecordHandler.DeleteMedicalRecord)
	}

	patient := private.Group("/patient")
	patient.Use(middleware.RoleAuthMiddleware(models.RolePatient))
	{
		patient.GET("/booking-context", appointmentHandler.GetBookingContext)
		patient.GET("/doctors/:id/slots", availabilityHandler.GetBookableSlots)

		patient.GET("/appointments", appointmentHandler.GetAppointments)
		patient.GET("/appointments/:id", appointmentHandler.GetAppointmentByID)
		patient.POST("/appointments", appointmentHandler.BookAppointment)
		patient.PUT("/appointments/:id/cancel", appointmentHandler.CancelAppointment)

		patient.GET("/profile", userHandler.GetProfile)
		patient.PUT("/profile", userHandler.UpdateProfile)
		patient.GET("/medical-history", medicalRecordHandler.GetMyMedicalHistory)
	}

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}

// MetricsHandler serves the default prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
