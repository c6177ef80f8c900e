package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slotwise/scheduler/internal/cache"
	"github.com/slotwise/scheduler/internal/httpresp"
	ucbooking "github.com/slotwise/scheduler/internal/usecase/booking"
)

type SlotsHandler struct {
	availability *ucbooking.GetAvailability
	cache        *cache.AvailabilityCache
	log          zerolog.Logger
}

func NewSlotsHandler(
	availability *ucbooking.GetAvailability,
	availabilityCache *cache.AvailabilityCache,
	log zerolog.Logger,
) *SlotsHandler {
	return &SlotsHandler{
		availability: availability,
		cache:        availabilityCache,
		log:          log,
	}
}

// List handles GET /businesses/:id/slots?date=YYYY-MM-DD&service_id=...
func (h *SlotsHandler) List(c *gin.Context) {
	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid business id.")
		return
	}

	dateStr := c.Query("date")
	serviceIDStr := c.Query("service_id")
	if dateStr == "" || serviceIDStr == "" {
		httpresp.Fail(c, http.StatusBadRequest, "date and service_id are required.")
		return
	}

	serviceID, err := uuid.Parse(serviceIDStr)
	if err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid service_id.")
		return
	}

	if payload, ok := h.cache.Get(c.Request.Context(), businessID, serviceID, dateStr); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(payload))
		return
	}

	slots, message, err := h.availability.Execute(c.Request.Context(), ucbooking.AvailabilityInput{
		BusinessID: businessID,
		ServiceID:  serviceID,
		Date:       dateStr,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if message == "" {
		message = "Availability retrieved successfully"
	}

	envelope := httpresp.Envelope{Success: true, Data: slots, Message: message}
	payload, err := json.Marshal(envelope)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.cache.Set(c.Request.Context(), businessID, serviceID, dateStr, string(payload))
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}
