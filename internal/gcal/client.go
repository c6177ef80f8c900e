package gcal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/slotwise/scheduler/internal/config"
	"github.com/slotwise/scheduler/internal/domain/booking"
)

const (
	defaultTokenURL = "https://www.googleapis.com/oauth2/v4/token"
	defaultAPIBase  = "https://www.googleapis.com/calendar/v3"
)

// Client talks to the Google OAuth token endpoint and Calendar API. The
// HTTP client is injected so one pool (and one transport timeout) is
// shared process-wide; base URLs are overridable for tests.
type Client struct {
	httpClient *http.Client
	log        zerolog.Logger

	clientID     string
	clientSecret string

	TokenURL string
	APIBase  string
}

func NewClient(httpClient *http.Client, cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		httpClient:   httpClient,
		log:          log,
		clientID:     cfg.GoogleClientID,
		clientSecret: cfg.GoogleClientSecret,
		TokenURL:     defaultTokenURL,
		APIBase:      defaultAPIBase,
	}
}

// RefreshAccessToken exchanges a long-lived refresh token for a fresh
// access token. Non-2xx responses and unparsable bodies are errors.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("google token refresh failed: %w", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("google token refresh failed: %s", string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.AccessToken == "" {
		return "", fmt.Errorf("failed to parse access_token from google response")
	}

	return payload.AccessToken, nil
}

type freeBusyRequest struct {
	TimeMin string             `json:"timeMin"`
	TimeMax string             `json:"timeMax"`
	Items   []freeBusyCalendar `json:"items"`
}

type freeBusyCalendar struct {
	ID string `json:"id"`
}

type freeBusyResponse struct {
	Calendars map[string]struct {
		Busy []struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"busy"`
	} `json:"calendars"`
}

// QueryFreeBusy returns the committed ranges per calendar for the window.
// Blocks that fail RFC3339 parsing poison the whole response; the caller
// decides whether that degrades or aborts.
func (c *Client) QueryFreeBusy(
	ctx context.Context,
	accessToken string,
	calendarID string,
	timeMin time.Time,
	timeMax time.Time,
) (map[string][]booking.BusyPeriod, error) {

	reqBody, err := json.Marshal(freeBusyRequest{
		TimeMin: timeMin.UTC().Format(time.RFC3339),
		TimeMax: timeMax.UTC().Format(time.RFC3339),
		Items:   []freeBusyCalendar{{ID: calendarID}},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBase+"/freeBusy", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google freebusy query failed: %w", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("google freebusy query failed: %s", string(body))
	}

	var payload freeBusyResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse freebusy response: %w", err)
	}

	result := make(map[string][]booking.BusyPeriod, len(payload.Calendars))
	for id, cal := range payload.Calendars {
		periods := make([]booking.BusyPeriod, 0, len(cal.Busy))
		for _, block := range cal.Busy {
			start, err := time.Parse(time.RFC3339, block.Start)
			if err != nil {
				return nil, fmt.Errorf("malformed busy block start %q: %w", block.Start, err)
			}
			end, err := time.Parse(time.RFC3339, block.End)
			if err != nil {
				return nil, fmt.Errorf("malformed busy block end %q: %w", block.End, err)
			}
			periods = append(periods, booking.BusyPeriod{Start: start, End: end})
		}
		result[id] = periods
	}

	return result, nil
}

type eventDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type eventAttendee struct {
	Email string `json:"email"`
}

type calendarEvent struct {
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	Start       eventDateTime   `json:"start"`
	End         eventDateTime   `json:"end"`
	Attendees   []eventAttendee `json:"attendees"`
}

// InsertEvent creates the event on the primary calendar, inviting the
// customer. Failure errors carry the provider's response body when present.
func (c *Client) InsertEvent(ctx context.Context, accessToken string, event booking.CalendarEvent) error {
	payload := calendarEvent{
		Summary:     event.Summary,
		Description: event.Description,
		Start: eventDateTime{
			DateTime: event.Start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: eventDateTime{
			DateTime: event.End.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		Attendees: []eventAttendee{{Email: event.AttendeeEmail}},
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	insertURL := c.APIBase + "/calendars/" + url.PathEscape(booking.PrimaryCalendarID) + "/events?sendUpdates=all"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, insertURL, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to contact google: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("google calendar api error: %s", string(body))
	}

	return nil
}

var _ booking.CalendarGateway = (*Client)(nil)
