package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/slotwise/scheduler/internal/httpresp"
	"github.com/slotwise/scheduler/internal/middleware"
	"github.com/slotwise/scheduler/internal/models"
	"github.com/slotwise/scheduler/internal/pgerr"
)

type BusinessHandler struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewBusinessHandler(db *gorm.DB, log zerolog.Logger) *BusinessHandler {
	return &BusinessHandler{db: db, log: log}
}

type BusinessWithServices struct {
	Business models.Business  `json:"business"`
	Services []models.Service `json:"services"`
}

// List handles GET /businesses.
func (h *BusinessHandler) List(c *gin.Context) {
	var businesses []models.Business
	if err := h.db.WithContext(c.Request.Context()).Find(&businesses).Error; err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, businesses, "Businesses retrieved successfully")
}

// GetByID handles GET /businesses/:id.
func (h *BusinessHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid business id.")
		return
	}

	var business models.Business
	err = h.db.WithContext(c.Request.Context()).
		Where("id = ?", id).
		First(&business).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpresp.Fail(c, http.StatusNotFound, "Business not found")
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, business, "Business retrieved successfully")
}

// ListWithServices handles GET /businesses/with-services.
func (h *BusinessHandler) ListWithServices(c *gin.Context) {
	ctx := c.Request.Context()

	var businesses []models.Business
	if err := h.db.WithContext(ctx).Find(&businesses).Error; err != nil {
		respondError(c, h.log, err)
		return
	}

	var services []models.Service
	if err := h.db.WithContext(ctx).Find(&services).Error; err != nil {
		respondError(c, h.log, err)
		return
	}

	byBusiness := make(map[uuid.UUID][]models.Service, len(businesses))
	for _, s := range services {
		byBusiness[s.BusinessID] = append(byBusiness[s.BusinessID], s)
	}

	result := make([]BusinessWithServices, 0, len(businesses))
	for _, b := range businesses {
		svcs := byBusiness[b.ID]
		if svcs == nil {
			svcs = []models.Service{}
		}
		result = append(result, BusinessWithServices{Business: b, Services: svcs})
	}

	httpresp.OK(c, result, "Businesses with services retrieved successfully")
}

// GetMe handles GET /businesses/me.
func (h *BusinessHandler) GetMe(c *gin.Context) {
	businessID, ok := middleware.BusinessID(c)
	if !ok {
		httpresp.Fail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var business models.Business
	err := h.db.WithContext(c.Request.Context()).
		Where("id = ?", businessID).
		First(&business).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpresp.Fail(c, http.StatusNotFound, "Business not found")
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, business, "")
}

type UpdateBusinessRequest struct {
	Username              *string `json:"username"`
	BusinessName          *string `json:"business_name"`
	Email                 *string `json:"email" binding:"omitempty,email"`
	Location              *string `json:"location"`
	PhoneNumber           *string `json:"phone_number"`
	Description           *string `json:"description"`
	PhoneNumberIsWhatsapp *bool   `json:"phone_number_is_whatsapp"`
}

// UpdateMe handles PATCH /businesses/me: only the provided fields change.
func (h *BusinessHandler) UpdateMe(c *gin.Context) {
	businessID, ok := middleware.BusinessID(c)
	if !ok {
		httpresp.Fail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updates := map[string]any{}
	if req.Username != nil {
		updates["username"] = *req.Username
	}
	if req.BusinessName != nil {
		updates["business_name"] = *req.BusinessName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PhoneNumberIsWhatsapp != nil {
		updates["phone_number_is_whatsapp"] = *req.PhoneNumberIsWhatsapp
	}

	if len(updates) > 0 {
		err := h.db.WithContext(c.Request.Context()).
			Model(&models.Business{}).
			Where("id = ?", businessID).
			Updates(updates).Error
		if pgerr.IsUniqueViolation(err) {
			httpresp.Fail(c, http.StatusConflict, "Username or email already exists")
			return
		}
		if err != nil {
			respondError(c, h.log, err)
			return
		}
	}

	var business models.Business
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ?", businessID).
		First(&business).Error; err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, business, "Business updated successfully")
}

// Appointments handles GET /businesses/:id/appointments.
func (h *BusinessHandler) Appointments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid business id.")
		return
	}

	var appointments []models.Appointment
	if err := h.db.WithContext(c.Request.Context()).
		Where("business_id = ?", id).
		Order("appointment_start_time DESC").
		Find(&appointments).Error; err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, appointments, "Appointments retrieved successfully")
}
