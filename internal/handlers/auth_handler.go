package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/slotwise/scheduler/internal/config"
	"github.com/slotwise/scheduler/internal/httpresp"
	"github.com/slotwise/scheduler/internal/models"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

type AuthHandler struct {
	db         *gorm.DB
	cfg        *config.Config
	httpClient *http.Client
	log        zerolog.Logger

	// UserinfoURL is overridable for tests.
	UserinfoURL string
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, httpClient *http.Client, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		db:          db,
		cfg:         cfg,
		httpClient:  httpClient,
		log:         log,
		UserinfoURL: userinfoURL,
	}
}

type GoogleConnectRequest struct {
	Code string `json:"code" binding:"required"`
}

type googleUserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleConnect handles POST /auth/google/connect: exchanges the
// authorization code, upserts the business and its calendar credential,
// and issues the API session token. A refresh token only arrives on the
// first consent, so an existing stored one is never overwritten with nil.
func (h *AuthHandler) GoogleConnect(c *gin.Context) {
	var req GoogleConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	oauthCfg := &oauth2.Config{
		ClientID:     h.cfg.GoogleClientID,
		ClientSecret: h.cfg.GoogleClientSecret,
		RedirectURL:  h.cfg.GoogleRedirectURI,
		Endpoint:     google.Endpoint,
	}

	ctx := context.WithValue(c.Request.Context(), oauth2.HTTPClient, h.httpClient)
	token, err := oauthCfg.Exchange(ctx, req.Code)
	if err != nil {
		h.log.Error().Err(err).Msg("google code exchange failed")
		httpresp.Fail(c, http.StatusInternalServerError, "Token exchange failed")
		return
	}

	info, err := h.fetchUserInfo(c.Request.Context(), token.AccessToken)
	if err != nil {
		h.log.Error().Err(err).Msg("google userinfo fetch failed")
		httpresp.Fail(c, http.StatusInternalServerError, "Failed to get user info")
		return
	}

	email := info.Email
	if email == "" {
		email = fmt.Sprintf("user_%s@example.com", info.Sub)
	}
	name := info.Name
	if name == "" {
		name = "My Business"
	}

	var refreshToken *string
	if token.RefreshToken != "" {
		refreshToken = &token.RefreshToken
	}

	business := models.Business{
		Username:          email,
		BusinessName:      name,
		Email:             email,
		IsActive:          true,
		GoogleIsConnected: true,
	}

	now := time.Now().UTC()
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]any{
				"google_is_connected": true,
				"last_login":          now,
			}),
		}).Create(&business).Error; err != nil {
			return err
		}

		// On conflict the insert was skipped and business.ID still holds
		// the generated uuid of a row that never landed. Re-read the row
		// so the credential and the session token carry the stored id.
		if err := tx.Where("email = ?", email).First(&business).Error; err != nil {
			return err
		}

		cred := models.AuthCredential{
			BusinessID:   business.ID,
			GoogleID:     info.Sub,
			RefreshToken: refreshToken,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "google_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"refresh_token": gorm.Expr("COALESCE(?, auth_credentials.refresh_token)", refreshToken),
				"business_id":   business.ID,
			}),
		}).Create(&cred).Error
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	sessionToken, err := h.generateToken(business.ID.String())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, gin.H{"token": sessionToken}, "Authentication successful")
}

func (h *AuthHandler) fetchUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.UserinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("userinfo request failed: %s", string(body))
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return &info, nil
}

func (h *AuthHandler) generateToken(businessID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": businessID,
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}
