package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/slotwise/scheduler/internal/apperr"
	"github.com/slotwise/scheduler/internal/httpresp"
)

// respondError maps an error onto the response envelope. Validation and
// conflict messages pass through verbatim; upstream and unknown failures
// log the raw detail and hand the caller a sanitized message.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	if ae, ok := apperr.As(err); ok {
		if ae.Kind == apperr.KindUpstream {
			log.Error().Err(ae.Err).Msg(ae.Message)
			httpresp.Fail(c, ae.Kind.HTTPStatus(), ae.Message)
			return
		}
		httpresp.Fail(c, ae.Kind.HTTPStatus(), ae.Message)
		return
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	httpresp.Fail(c, http.StatusInternalServerError, "Something went wrong on our end")
}
