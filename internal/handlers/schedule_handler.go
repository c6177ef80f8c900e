package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/slotwise/scheduler/internal/audit"
	"github.com/slotwise/scheduler/internal/cache"
	domain "github.com/slotwise/scheduler/internal/domain/booking"
	"github.com/slotwise/scheduler/internal/httpresp"
	"github.com/slotwise/scheduler/internal/middleware"
	"github.com/slotwise/scheduler/internal/models"
	"github.com/slotwise/scheduler/internal/timezone"
)

type ScheduleHandler struct {
	db    *gorm.DB
	repo  domain.Repository
	cache *cache.AvailabilityCache
	audit *audit.Dispatcher
	log   zerolog.Logger
}

func NewScheduleHandler(
	db *gorm.DB,
	repo domain.Repository,
	availabilityCache *cache.AvailabilityCache,
	auditDispatcher *audit.Dispatcher,
	log zerolog.Logger,
) *ScheduleHandler {
	return &ScheduleHandler{
		db:    db,
		repo:  repo,
		cache: availabilityCache,
		audit: auditDispatcher,
		log:   log,
	}
}

type WeeklyRuleInput struct {
	DayOfWeek int    `json:"day_of_week" binding:"required,min=1,max=7"`
	OpenTime  string `json:"open_time" binding:"required"`
	CloseTime string `json:"close_time" binding:"required"`
	TimeZone  string `json:"time_zone" binding:"required"`
}

type ReplaceScheduleRequest struct {
	Rules []WeeklyRuleInput `json:"rules" binding:"required,dive"`
}

// Replace handles POST /businesses/me/availability. The new rule set
// fully supersedes the prior one in a single atomic store operation.
func (h *ScheduleHandler) Replace(c *gin.Context) {
	businessID, ok := middleware.BusinessID(c)
	if !ok {
		httpresp.Fail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req ReplaceScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rules := make([]models.OperatingHourRule, 0, len(req.Rules))
	for _, in := range req.Rules {
		open, err := domain.ParseClock(in.OpenTime)
		if err != nil {
			httpresp.Fail(c, http.StatusBadRequest, "Invalid open_time. Use HH:MM:SS.")
			return
		}
		close, err := domain.ParseClock(in.CloseTime)
		if err != nil {
			httpresp.Fail(c, http.StatusBadRequest, "Invalid close_time. Use HH:MM:SS.")
			return
		}
		if open >= close {
			httpresp.Fail(c, http.StatusBadRequest, "open_time must be before close_time.")
			return
		}
		if _, err := timezone.Location(in.TimeZone); err != nil {
			httpresp.Fail(c, http.StatusBadRequest, "Invalid time_zone. Use an IANA zone id.")
			return
		}

		rules = append(rules, models.OperatingHourRule{
			BusinessID: businessID,
			DayOfWeek:  in.DayOfWeek,
			OpenTime:   in.OpenTime,
			CloseTime:  in.CloseTime,
			TimeZone:   in.TimeZone,
		})
	}

	if err := h.repo.ReplaceWeeklySchedule(c.Request.Context(), businessID, rules); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.cache.InvalidateBusiness(c.Request.Context(), businessID)
	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		Action:     "schedule_replaced",
		Entity:     "operating_hour_rule",
		Metadata:   gin.H{"rule_count": len(rules)},
	})

	httpresp.OK(c, rules, "Availability updated successfully")
}

// Get handles GET /businesses/me/availability.
func (h *ScheduleHandler) Get(c *gin.Context) {
	businessID, ok := middleware.BusinessID(c)
	if !ok {
		httpresp.Fail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var rules []models.OperatingHourRule
	if err := h.db.WithContext(c.Request.Context()).
		Where("business_id = ?", businessID).
		Order("day_of_week ASC, open_time ASC").
		Find(&rules).Error; err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, rules, "Availability retrieved successfully")
}
