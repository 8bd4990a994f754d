package handlers

import (
	"errors"
	"net/http"

	"mentorlink/services/booking"
	"mentorlink/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps domain errors onto HTTP statuses. Anything unrecognised is a 500 and the
// cause stays in the log.
func respondError(c *gin.Context, err error) {
	logger := getLogger(c)

	var conflict *booking.SlotConflictError
	if errors.As(err, &conflict) {
		logger.Info("Booking rejected, slot taken", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"conflict": gin.H{
				"start_time": conflict.Range.Start,
				"end_time":   conflict.Range.End,
			},
		})
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}
	logger.Info("Request rejected", zap.Int("status", status), zap.Error(err))
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, booking.ErrInvalidRange), errors.Is(err, booking.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, booking.ErrMentorNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrInvalidTransition), errors.Is(err, booking.ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, payment.ErrMalformedEvent):
		return http.StatusBadRequest
	case errors.Is(err, payment.ErrAuthentication):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
