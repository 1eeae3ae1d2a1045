package handlers

import (
	"errors"
	"log"
	"net/http"

	"yarukoto-api/internal/apperr"

	"github.com/gin-gonic/gin"
)

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError converts any failure into the tagged error contract. Internal
// causes are logged here and never reach the client.
func respondError(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal(err)
	}
	if ae.Kind == apperr.KindInternal {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(statusFor(ae.Kind), gin.H{
		"error": ae.Message,
		"code":  ae.Kind,
	})
}

// requireUser reads the authenticated user id set by the JWT middleware.
func requireUser(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
		return "", false
	}
	return userID, true
}
