package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/logging"
)

// requestLogger logs every request through zerolog and carries the logger
// in the request context.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		logging.LogRequest(logger, c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrInputValidation), apperrors.Is(err, apperrors.ErrWeekendTrade):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrTradeNotFound),
		apperrors.Is(err, apperrors.ErrStockNotFound),
		apperrors.Is(err, apperrors.ErrShareNotFound),
		apperrors.Is(err, apperrors.ErrSymbolNotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrDuplicateID):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abort writes err as a JSON error body.
func abort(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	var verr *apperrors.ValidationError
	if apperrors.As(err, &verr) {
		body["field"] = verr.Field
	}
	if status == http.StatusInternalServerError {
		l := logging.FromContext(c.Request.Context())
		l.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		body["error"] = "internal server error"
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
