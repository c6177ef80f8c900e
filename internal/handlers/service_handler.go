package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/slotwise/scheduler/internal/httpresp"
	"github.com/slotwise/scheduler/internal/models"
	"github.com/slotwise/scheduler/internal/pgerr"
)

type ServiceHandler struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewServiceHandler(db *gorm.DB, log zerolog.Logger) *ServiceHandler {
	return &ServiceHandler{db: db, log: log}
}

type CreateServiceRequest struct {
	BusinessID      uuid.UUID `json:"business_id" binding:"required"`
	ServiceName     string    `json:"service_name" binding:"required"`
	Description     *string   `json:"description"`
	Price           *float64  `json:"price"`
	DurationMinutes *int      `json:"duration_minutes" binding:"omitempty,min=1"`
	Category        *string   `json:"category"`
}

// Create handles POST /services.
func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	service := models.Service{
		BusinessID:      req.BusinessID,
		ServiceName:     req.ServiceName,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		Category:        req.Category,
	}

	err := h.db.WithContext(c.Request.Context()).Create(&service).Error
	if pgerr.IsForeignKeyViolation(err) {
		httpresp.Fail(c, http.StatusNotFound, "The business_id provided does not exist.")
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.Created(c, service, "Service created successfully")
}

// List handles GET /services.
func (h *ServiceHandler) List(c *gin.Context) {
	var services []models.Service
	if err := h.db.WithContext(c.Request.Context()).Find(&services).Error; err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, services, "Services retrieved successfully")
}

// GetByID handles GET /services/:id.
func (h *ServiceHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid service id.")
		return
	}

	var service models.Service
	err = h.db.WithContext(c.Request.Context()).
		Where("id = ?", id).
		First(&service).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpresp.Fail(c, http.StatusNotFound, "Service not found")
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, service, "Service retrieved successfully")
}

type UpdateServiceRequest struct {
	ServiceName     *string  `json:"service_name"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"`
	DurationMinutes *int     `json:"duration_minutes" binding:"omitempty,min=1"`
	Category        *string  `json:"category"`
}

// Update handles PATCH /services/:id.
func (h *ServiceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid service id.")
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updates := map[string]any{}
	if req.ServiceName != nil {
		updates["service_name"] = *req.ServiceName
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.DurationMinutes != nil {
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}

	if len(updates) > 0 {
		result := h.db.WithContext(c.Request.Context()).
			Model(&models.Service{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			respondError(c, h.log, result.Error)
			return
		}
		if result.RowsAffected == 0 {
			httpresp.Fail(c, http.StatusNotFound, "Service not found")
			return
		}
	}

	var service models.Service
	err = h.db.WithContext(c.Request.Context()).
		Where("id = ?", id).
		First(&service).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpresp.Fail(c, http.StatusNotFound, "Service not found")
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, service, "Service updated successfully")
}

// Delete handles DELETE /services/:id.
func (h *ServiceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid service id.")
		return
	}

	var service models.Service
	err = h.db.WithContext(c.Request.Context()).
		Where("id = ?", id).
		First(&service).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpresp.Fail(c, http.StatusNotFound, "Service not found")
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(&service).Error; err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, service, "Service deleted successfully")
}
