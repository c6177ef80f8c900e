package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/slotwise/scheduler/internal/audit"
	"github.com/slotwise/scheduler/internal/cache"
	"github.com/slotwise/scheduler/internal/config"
	"github.com/slotwise/scheduler/internal/gcal"
	"github.com/slotwise/scheduler/internal/handlers"
	infraRepo "github.com/slotwise/scheduler/internal/infra/repository"
	"github.com/slotwise/scheduler/internal/media"
	"github.com/slotwise/scheduler/internal/middleware"
	ucBooking "github.com/slotwise/scheduler/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, log zerolog.Logger) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	httpClient := &http.Client{Timeout: 15 * time.Second}
	calendarClient := gcal.NewClient(httpClient, cfg, log)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, log)

	var rdb *redis.Client
	if opts, err := redis.ParseURL(cfg.RedisURL); err != nil {
		log.Warn().Err(err).Msg("invalid redis url, availability cache disabled")
	} else {
		rdb = redis.NewClient(opts)
	}
	availabilityCache := cache.NewAvailabilityCache(rdb, log)

	uploader := media.NewUploader(cfg)

	// ======================================================
	// USE CASES: BOOKING
	// ======================================================
	getAvailabilityUC := ucBooking.NewGetAvailability(
		bookingRepo,
		calendarClient,
		log,
	)

	createAppointmentUC := ucBooking.NewCreateAppointment(
		bookingRepo,
		calendarClient,
		auditDispatcher,
		log,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg, httpClient, log)
	businessHandler := handlers.NewBusinessHandler(db, log)
	serviceHandler := handlers.NewServiceHandler(db, log)
	scheduleHandler := handlers.NewScheduleHandler(db, bookingRepo, availabilityCache, auditDispatcher, log)
	slotsHandler := handlers.NewSlotsHandler(getAvailabilityUC, availabilityCache, log)
	appointmentHandler := handlers.NewAppointmentHandler(createAppointmentUC, db, availabilityCache, log)
	mediaHandler := handlers.NewMediaHandler(db, uploader, log)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/google/connect", authHandler.GoogleConnect)

		// ------------------------------
		// PUBLIC API
		// ------------------------------
		api.GET("/businesses", businessHandler.List)
		api.GET("/businesses/with-services", businessHandler.ListWithServices)
		api.GET("/businesses/:id", businessHandler.GetByID)
		api.GET("/businesses/:id/slots", slotsHandler.List)
		api.GET("/businesses/:id/appointments", businessHandler.Appointments)

		api.POST("/services", serviceHandler.Create)
		api.GET("/services", serviceHandler.List)
		api.GET("/services/:id", serviceHandler.GetByID)
		api.PATCH("/services/:id", serviceHandler.Update)
		api.DELETE("/services/:id", serviceHandler.Delete)

		api.POST("/appointments", appointmentHandler.Create)
		api.GET("/appointments", appointmentHandler.List)
		api.GET("/appointments/:id", appointmentHandler.GetByID)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/businesses/me", businessHandler.GetMe)
			secured.PATCH("/businesses/me", businessHandler.UpdateMe)

			secured.GET("/businesses/me/availability", scheduleHandler.Get)
			secured.POST("/businesses/me/availability", scheduleHandler.Replace)

			secured.GET("/media/upload-url", mediaHandler.UploadURL)
		}
	}
}
