package handlers

import (
	"errors"
	"net/http"

	"betting-market/internal/models"

	"github.com/gin-gonic/gin"
)

// respondError maps service error kinds to HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, models.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrMarketNotFound),
		errors.Is(err, models.ErrPositionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrMarketExists),
		errors.Is(err, models.ErrAlreadyClaimed):
		status = http.StatusConflict
	case errors.Is(err, models.ErrMarketNotOpen),
		errors.Is(err, models.ErrMarketNotClosed),
		errors.Is(err, models.ErrMarketNotSettled),
		errors.Is(err, models.ErrMarketNotConfirmed),
		errors.Is(err, models.ErrNoWinnerChosen),
		errors.Is(err, models.ErrEmptyWinningPool):
		status = http.StatusConflict
	case errors.Is(err, models.ErrOutsideBetWindow),
		errors.Is(err, models.ErrInvalidOutcomeIndex),
		errors.Is(err, models.ErrBetAmountOutOfRange),
		errors.Is(err, models.ErrMaxPoolExceeded),
		errors.Is(err, models.ErrOutcomeLenExceeded),
		errors.Is(err, models.ErrInvalidTimeWindow),
		errors.Is(err, models.ErrInvalidMarketParams),
		errors.Is(err, models.ErrNothingToClaim),
		errors.Is(err, models.ErrNumericalOverflow),
		errors.Is(err, models.ErrNumericalUnderflow):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidOracle):
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
