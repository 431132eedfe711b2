package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the wire shape of every error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondWithError sends a JSON error body with the given status.
func RespondWithError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{Error: message})
}

func RespondWithBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, message)
}

func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, message)
}

func RespondWithTooManyRequests(c *gin.Context, message string) {
	RespondWithError(c, http.StatusTooManyRequests, message)
}

func RespondWithInternalError(c *gin.Context, message string) {
	RespondWithError(c, http.StatusInternalServerError, message)
}

func RespondWithBadGateway(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadGateway, message)
}

func RespondWithGatewayTimeout(c *gin.Context, message string) {
	RespondWithError(c, http.StatusGatewayTimeout, message)
}
