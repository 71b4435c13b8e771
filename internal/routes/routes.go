package routes

import (
	"clinic-management-server/internal/config"
	"clinic-management-server/internal/handlers"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/scheduling"
	"clinic-management-server/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, store *storage.DocumentStore, log zerolog.Logger) {
	scheduler := scheduling.NewService(db, log)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	clinicHandler := handlers.NewClinicHandler(db)
	patientHandler := handlers.NewPatientHandler(db, store)
	appointmentHandler := handlers.NewAppointmentHandler(db, scheduler)
	visitHandler := handlers.NewVisitHandler(db, scheduler)
	scheduleHandler := handlers.NewScheduleHandler(db)

	staffRoles := []models.Role{models.RoleClinic, models.RoleReceptionist}
	clinicalRoles := []models.Role{models.RoleClinic, models.RoleReceptionist, models.RoleDoctor}

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register-clinic", authHandler.RegisterClinic)
			authRoutes.POST("/register-doctor", authHandler.RegisterDoctor)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management routes
		userRoutes := private.Group("/users")
		{
			// Doctor directory - accessible by all authenticated users
			userRoutes.GET("/doctors", userHandler.GetDoctors)

			userRoutes.POST("/receptionists", middleware.RoleAuthMiddleware(models.RoleClinic), userHandler.CreateReceptionist)
			userRoutes.GET("/staff", middleware.RoleAuthMiddleware(staffRoles...), userHandler.GetClinicStaff)

			// Admin-only routes
			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		// Clinic routes
		clinicRoutes := private.Group("/clinics")
		{
			clinicRoutes.GET("/me", middleware.RoleAuthMiddleware(models.RoleClinic), clinicHandler.GetMyClinic)
			clinicRoutes.PUT("/me", middleware.RoleAuthMiddleware(models.RoleClinic), clinicHandler.UpdateMyClinic)

			// Doctor approval (admin or the owning clinic; checked in handler)
			clinicRoutes.GET("/pending-doctors", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleClinic), clinicHandler.GetPendingDoctors)
			clinicRoutes.PATCH("/doctors/:doctorId/approval", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleClinic), clinicHandler.ApproveDoctor)

			adminClinicRoutes := clinicRoutes.Group("")
			adminClinicRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminClinicRoutes.GET("", clinicHandler.GetClinics)
				adminClinicRoutes.PATCH("/:id/status", clinicHandler.UpdateClinicStatus)
				adminClinicRoutes.PATCH("/:id/subscribe", clinicHandler.MarkSubscribed)
			}
		}

		// Patient routes (clinic staff; admins may pass ?clinicId=)
		patientRoutes := private.Group("/patients")
		patientRoutes.Use(middleware.RoleAuthMiddleware(append(clinicalRoles, models.RoleAdmin)...))
		{
			patientRoutes.POST("", patientHandler.CreatePatient)
			patientRoutes.GET("", patientHandler.GetPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID)
			patientRoutes.PUT("/:id", patientHandler.UpdatePatient)
			patientRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleClinic), patientHandler.DeletePatient)

			patientRoutes.POST("/:id/documents", patientHandler.UploadDocument)
			patientRoutes.GET("/:id/documents/:documentId/url", patientHandler.GetDocumentURL)
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			// Slot listing and availability checks are open to all authenticated users
			appointmentRoutes.GET("/slots", appointmentHandler.GetSlots)
			appointmentRoutes.GET("/availability", appointmentHandler.CheckAvailability)

			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(append(clinicalRoles, models.RoleAdmin)...), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointments) // Logic inside handler differentiates by role
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)
		}

		// Visit documentation routes
		visitRoutes := private.Group("/visits")
		{
			visitRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), visitHandler.CreateVisit)
			visitRoutes.GET("/patient/:patientId", visitHandler.GetVisitsForPatient) // Auth in handler
			visitRoutes.PUT("/:id", visitHandler.UpdateVisit) // Authorization inside handler
			visitRoutes.GET("/:id/summary", visitHandler.GetVisitSummary)
		}

		// Working hours and leave routes
		scheduleRoutes := private.Group("/schedule")
		{
			scheduleRoutes.PUT("/working-hours", scheduleHandler.UpsertWorkingHours)
			scheduleRoutes.GET("/working-hours/:doctorId", scheduleHandler.GetWorkingHours)
			scheduleRoutes.POST("/leaves", scheduleHandler.CreateLeave)
			scheduleRoutes.GET("/leaves", scheduleHandler.GetLeaves)
			scheduleRoutes.DELETE("/leaves/:id", scheduleHandler.DeleteLeave)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
