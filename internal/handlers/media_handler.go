package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/slotwise/scheduler/internal/httpresp"
	"github.com/slotwise/scheduler/internal/media"
	"github.com/slotwise/scheduler/internal/middleware"
	"github.com/slotwise/scheduler/internal/models"
)

type MediaHandler struct {
	db       *gorm.DB
	uploader *media.Uploader
	log      zerolog.Logger
}

func NewMediaHandler(db *gorm.DB, uploader *media.Uploader, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{db: db, uploader: uploader, log: log}
}

// UploadURL handles GET /media/upload-url?type=profile|cover. It issues
// a presigned PUT URL and records the resulting public URL on the
// business row so the profile reflects the upload immediately.
func (h *MediaHandler) UploadURL(c *gin.Context) {
	businessID, ok := middleware.BusinessID(c)
	if !ok {
		httpresp.Fail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	target, err := media.ParseImageTarget(c.Query("type"))
	if err != nil {
		httpresp.Fail(c, http.StatusBadRequest, "Invalid type. Use profile or cover.")
		return
	}

	contentType := c.Query("content_type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	uploadURL, publicURL, err := h.uploader.SignedUploadURL(c.Request.Context(), businessID, target, contentType)
	if err != nil {
		h.log.Error().Err(err).Msg("presign upload url failed")
		httpresp.Fail(c, http.StatusInternalServerError, "Failed to generate upload URL")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.Business{}).
		Where("id = ?", businessID).
		Update(target.Column(), publicURL).Error; err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, gin.H{
		"upload_url": uploadURL,
		"public_url": publicURL,
	}, "Upload URL generated successfully")
}
