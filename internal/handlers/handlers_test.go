package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/slotwise/scheduler/internal/audit"
	"github.com/slotwise/scheduler/internal/cache"
	domain "github.com/slotwise/scheduler/internal/domain/booking"
	infraRepo "github.com/slotwise/scheduler/internal/infra/repository"
	"github.com/slotwise/scheduler/internal/middleware"
	"github.com/slotwise/scheduler/internal/models"
	ucbooking "github.com/slotwise/scheduler/internal/usecase/booking"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubGateway is a controllable calendar provider for handler tests.
type stubGateway struct {
	refreshErr error
	insertErr  error
	inserted   int
}

func (g *stubGateway) RefreshAccessToken(context.Context, string) (string, error) {
	if g.refreshErr != nil {
		return "", g.refreshErr
	}
	return "token", nil
}

func (g *stubGateway) QueryFreeBusy(
	context.Context, string, string, time.Time, time.Time,
) (map[string][]domain.BusyPeriod, error) {
	return map[string][]domain.BusyPeriod{}, nil
}

func (g *stubGateway) InsertEvent(context.Context, string, domain.CalendarEvent) error {
	if g.insertErr != nil {
		return g.insertErr
	}
	g.inserted++
	return nil
}

type testEnv struct {
	db         *gorm.DB
	router     *gin.Engine
	gateway    *stubGateway
	businessID uuid.UUID
	serviceID  uuid.UUID
}

// newTestEnv stands up the API against an in-memory store with one
// business open Wednesdays 09:00-17:00 New York and one 30-minute service.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Business{},
		&models.Service{},
		&models.OperatingHourRule{},
		&models.AuthCredential{},
		&models.Appointment{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	business := models.Business{
		Username:     "acme",
		BusinessName: "Acme Clinic",
		Email:        "acme@example.com",
		IsActive:     true,
	}
	if err := db.Create(&business).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}

	duration := 30
	service := models.Service{
		BusinessID:      business.ID,
		ServiceName:     "Consultation",
		DurationMinutes: &duration,
	}
	if err := db.Create(&service).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}

	refresh := "refresh-1"
	cred := models.AuthCredential{
		BusinessID:   business.ID,
		GoogleID:     "g-1",
		RefreshToken: &refresh,
	}
	if err := db.Create(&cred).Error; err != nil {
		t.Fatalf("seed credential: %v", err)
	}

	rule := models.OperatingHourRule{
		BusinessID: business.ID,
		DayOfWeek:  3,
		OpenTime:   "09:00:00",
		CloseTime:  "17:00:00",
		TimeZone:   "America/New_York",
	}
	if err := db.Create(&rule).Error; err != nil {
		t.Fatalf("seed rule: %v", err)
	}

	log := zerolog.Nop()
	repo := infraRepo.NewBookingGormRepository(db)
	gateway := &stubGateway{}
	availabilityCache := cache.NewAvailabilityCache(nil, log)
	dispatcher := audit.NewDispatcher(audit.New(db), log)

	getAvailabilityUC := ucbooking.NewGetAvailability(repo, gateway, log)
	createAppointmentUC := ucbooking.NewCreateAppointment(repo, gateway, dispatcher, log)

	slotsHandler := NewSlotsHandler(getAvailabilityUC, availabilityCache, log)
	appointmentHandler := NewAppointmentHandler(createAppointmentUC, db, availabilityCache, log)
	scheduleHandler := NewScheduleHandler(db, repo, availabilityCache, dispatcher, log)

	authenticatedAs := func(id uuid.UUID) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(middleware.ContextBusinessID, id)
			c.Next()
		}
	}

	router := gin.New()
	router.GET("/businesses/:id/slots", slotsHandler.List)
	router.POST("/appointments", appointmentHandler.Create)
	router.POST("/businesses/me/availability", authenticatedAs(business.ID), scheduleHandler.Replace)
	router.GET("/businesses/me/availability", authenticatedAs(business.ID), scheduleHandler.Get)

	return &testEnv{
		db:         db,
		router:     router,
		gateway:    gateway,
		businessID: business.ID,
		serviceID:  service.ID,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (env *testEnv) do(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	var out envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode envelope from %q: %v", rec.Body.String(), err)
	}
	return rec, out
}

func (env *testEnv) countAppointments(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := env.db.Model(&models.Appointment{}).Count(&n).Error; err != nil {
		t.Fatalf("count appointments: %v", err)
	}
	return n
}

func TestSlotsEndpoint_OpenDay(t *testing.T) {
	env := newTestEnv(t)

	target := fmt.Sprintf("/businesses/%s/slots?date=2024-01-03&service_id=%s", env.businessID, env.serviceID)
	rec, out := env.do(t, http.MethodGet, target, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if !out.Success {
		t.Error("success = false")
	}
	if out.Message != "Availability retrieved successfully" {
		t.Errorf("message = %q", out.Message)
	}

	var slots []struct {
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
	}
	if err := json.Unmarshal(out.Data, &slots); err != nil {
		t.Fatalf("decode slots: %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("got %d slots, want 16", len(slots))
	}
	if want := time.Date(2024, 1, 3, 14, 0, 0, 0, time.UTC); !slots[0].StartTime.Equal(want) {
		t.Errorf("first slot %v, want %v", slots[0].StartTime, want)
	}
}

func TestSlotsEndpoint_ClosedDay(t *testing.T) {
	env := newTestEnv(t)

	// 2024-01-04 is a Thursday; only Wednesday has rules.
	target := fmt.Sprintf("/businesses/%s/slots?date=2024-01-04&service_id=%s", env.businessID, env.serviceID)
	rec, out := env.do(t, http.MethodGet, target, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if out.Message != ucbooking.ClosedDayMessage {
		t.Errorf("message = %q, want %q", out.Message, ucbooking.ClosedDayMessage)
	}
	var slots []any
	if err := json.Unmarshal(out.Data, &slots); err != nil {
		t.Fatalf("closed day data is not an array: %s", out.Data)
	}
	if len(slots) != 0 {
		t.Errorf("got %d slots on a closed day", len(slots))
	}
}

func TestSlotsEndpoint_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		target  string
		message string
	}{
		{
			name:    "bad date",
			target:  fmt.Sprintf("/businesses/%s/slots?date=Jan-3&service_id=%s", env.businessID, env.serviceID),
			message: "Invalid date. Use YYYY-MM-DD.",
		},
		{
			name:    "missing params",
			target:  fmt.Sprintf("/businesses/%s/slots", env.businessID),
			message: "date and service_id are required.",
		},
		{
			name:    "unknown service",
			target:  fmt.Sprintf("/businesses/%s/slots?date=2024-01-03&service_id=%s", env.businessID, uuid.New()),
			message: "Invalid service_id.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := env.do(t, http.MethodGet, tt.target, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", rec.Code)
			}
			if out.Success {
				t.Error("success = true on a failed request")
			}
			if out.Message != tt.message {
				t.Errorf("message = %q, want %q", out.Message, tt.message)
			}
		})
	}
}

func createAppointmentBody(env *testEnv) gin.H {
	return gin.H{
		"service_id":             env.serviceID,
		"business_id":            env.businessID,
		"customer_name":          "Jordan Lee",
		"customer_email":         "jordan@example.com",
		"appointment_start_time": "2024-01-03T14:00:00Z",
	}
}

func TestCreateAppointmentEndpoint_Success(t *testing.T) {
	env := newTestEnv(t)

	rec, out := env.do(t, http.MethodPost, "/appointments", createAppointmentBody(env))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	if out.Message != "Appointment created and synced." {
		t.Errorf("message = %q", out.Message)
	}
	if env.countAppointments(t) != 1 {
		t.Error("appointment row missing after 201")
	}
	if env.gateway.inserted != 1 {
		t.Errorf("calendar inserts = %d, want 1", env.gateway.inserted)
	}
}

func TestCreateAppointmentEndpoint_NoCalendarIs417(t *testing.T) {
	env := newTestEnv(t)
	if err := env.db.Model(&models.AuthCredential{}).
		Where("business_id = ?", env.businessID).
		Update("refresh_token", nil).Error; err != nil {
		t.Fatalf("clear refresh token: %v", err)
	}

	rec, out := env.do(t, http.MethodPost, "/appointments", createAppointmentBody(env))
	if rec.Code != http.StatusExpectationFailed {
		t.Fatalf("status %d, want 417 (%s)", rec.Code, rec.Body.String())
	}
	if out.Success {
		t.Error("success = true on 417")
	}
	if env.countAppointments(t) != 0 {
		t.Error("appointment row survived the rollback")
	}
}

func TestCreateAppointmentEndpoint_UpstreamFailureIs500(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.insertErr = fmt.Errorf("google: backend unavailable")

	rec, out := env.do(t, http.MethodPost, "/appointments", createAppointmentBody(env))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
	if out.Message != "Google Calendar API error." {
		t.Errorf("message = %q, raw provider detail must stay server-side", out.Message)
	}
	if env.countAppointments(t) != 0 {
		t.Error("appointment row survived the rollback")
	}
}

func TestCreateAppointmentEndpoint_OutsideHoursIs400(t *testing.T) {
	env := newTestEnv(t)

	body := createAppointmentBody(env)
	body["appointment_start_time"] = "2024-01-03T23:00:00Z" // 18:00 New York

	rec, out := env.do(t, http.MethodPost, "/appointments", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if out.Message != "Requested slot is outside operating hours." {
		t.Errorf("message = %q", out.Message)
	}
}

func TestReplaceScheduleEndpoint(t *testing.T) {
	env := newTestEnv(t)

	body := gin.H{
		"rules": []gin.H{
			{"day_of_week": 1, "open_time": "10:00:00", "close_time": "14:00:00", "time_zone": "UTC"},
			{"day_of_week": 5, "open_time": "09:00:00", "close_time": "12:00:00", "time_zone": "UTC"},
		},
	}
	rec, _ := env.do(t, http.MethodPost, "/businesses/me/availability", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var rules []models.OperatingHourRule
	if err := env.db.Where("business_id = ?", env.businessID).Find(&rules).Error; err != nil {
		t.Fatalf("load rules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want the replacement set of 2", len(rules))
	}
	for _, r := range rules {
		if r.DayOfWeek == 3 {
			t.Error("old wednesday rule survived the replacement")
		}
	}
}

func TestReplaceScheduleEndpoint_InvalidRuleLeavesScheduleIntact(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		rule gin.H
	}{
		{"open after close", gin.H{"day_of_week": 1, "open_time": "15:00:00", "close_time": "09:00:00", "time_zone": "UTC"}},
		{"bad clock", gin.H{"day_of_week": 1, "open_time": "9am", "close_time": "17:00:00", "time_zone": "UTC"}},
		{"bad zone", gin.H{"day_of_week": 1, "open_time": "09:00:00", "close_time": "17:00:00", "time_zone": "Mars/Olympus"}},
		{"bad weekday", gin.H{"day_of_week": 8, "open_time": "09:00:00", "close_time": "17:00:00", "time_zone": "UTC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := env.do(t, http.MethodPost, "/businesses/me/availability", gin.H{"rules": []gin.H{tt.rule}})
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", rec.Code)
			}

			var n int64
			if err := env.db.Model(&models.OperatingHourRule{}).
				Where("business_id = ?", env.businessID).
				Count(&n).Error; err != nil {
				t.Fatalf("count rules: %v", err)
			}
			if n != 1 {
				t.Errorf("rule count changed to %d after a rejected request", n)
			}
		})
	}
}
