package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/support-console/internal/errs"
)

// respondError maps command errors to HTTP statuses. Backend failures the
// console cannot fix itself become 502.
func respondError(c *gin.Context, err error) {
	var v *errs.ValidationError
	var apiErr *errs.APIError
	switch {
	case errors.As(err, &v):
		c.JSON(http.StatusBadRequest, gin.H{"error": v.Message, "field": v.Field})
	case errors.Is(err, errs.ErrNotAdmin):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrUnauthorized), errors.Is(err, errs.ErrNoSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "login": true})
	case errors.Is(err, errs.ErrTicketNotFound), errors.Is(err, errs.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest:
		c.JSON(http.StatusBadRequest, gin.H{"error": apiErr.Message})
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": apiErr.Message})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
}
