package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/slotwise/scheduler/internal/cache"
	"github.com/slotwise/scheduler/internal/httpresp"
	"github.com/slotwise/scheduler/internal/models"
	ucbooking "github.com/slotwise/scheduler/internal/usecase/booking"
)

type AppointmentHandler struct {
	create *ucbooking.CreateAppointment
	db     *gorm.DB
	cache  *cache.AvailabilityCache
	log    zerolog.Logger
}

func NewAppointmentHandler(
	create *ucbooking.CreateAppointment,
	db *gorm.DB,
	availabilityCache *cache.AvailabilityCache,
	log zerolog.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		create: create,
		db:     db,
		cache:  availabilityCache,
		log:    log,
	}
}

type CreateAppointmentRequest struct {
	ServiceID            uuid.UUID `json:"service_id" binding:"required"`
	BusinessID           uuid.UUID `json:"business_id" binding:"required"`
	CustomerName         string    `json:"customer_name" binding:"required"`
	CustomerEmail        *string   `json:"customer_email" binding:"omitempty,email"`
	CustomerPhone        *string   `json:"customer_phone"`
	AppointmentStartTime time.Time `json:"appointment_start_time" binding:"required"`
	Notes                *string   `json:"notes"`
}

// Create handles POST /appointments.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	appointment, err := h.create.Execute(c.Request.Context(), ucbooking.CreateAppointmentInput{
		ServiceID:     req.ServiceID,
		BusinessID:    req.BusinessID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		StartTime:     req.AppointmentStartTime,
		Notes:         req.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.cache.InvalidateBusiness(c.Request.Context(), req.BusinessID)
	httpresp.Created(c, appointment, "Appointment created and synced.")
}

// List handles GET /appointments.
func (h *AppointmentHandler) List(c *gin.Context) {
	var appointments []models.Appointment
	if err := h.db.WithContext(c.Request.Context()).
		Order("appointment_start_time DESC").
		Find(&appointments).Error; err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, appointments, "Appointments retrieved successfully")
}

// GetByID handles GET /appointments/:id.
func (h *AppointmentHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid appointment id.")
		return
	}

	var appointment models.Appointment
	err = h.db.WithContext(c.Request.Context()).
		Where("id = ?", id).
		First(&appointment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpresp.Fail(c, http.StatusNotFound, "Appointment not found")
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, appointment, "")
}
