package handlers

import (
	"apartmenthub/middleware"
	"apartmenthub/service"
	"apartmenthub/validation"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// uploadMessages is the client-facing wording for upload rejections.
var uploadMessages = map[error]string{
	service.ErrNoFiles:              "No files uploaded",
	service.ErrTooManyFiles:         "Too many files: at most 4 images may be uploaded",
	service.ErrUnsupportedImageType: "Only JPEG, PNG, and WebP images are allowed",
	service.ErrImageTooLarge:        "File too large: each image must be at most 5MB",
}

// respondError writes the status and body for err. Unexpected errors are
// logged and reported without detail.
func respondError(c *gin.Context, err error) {
	var verrs validation.Errors
	var maxBytes *http.MaxBytesError

	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verrs})
	case errors.Is(err, service.ErrInvalidInput):
		middleware.Logger(c).Warn("store rejected input", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: a value is out of range or malformed"})
	case errors.Is(err, service.ErrApartmentNotFound), errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateUnitNumber):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoFiles):
		c.JSON(http.StatusBadRequest, gin.H{"error": uploadMessages[service.ErrNoFiles]})
	case errors.Is(err, service.ErrTooManyFiles):
		c.JSON(http.StatusBadRequest, gin.H{"error": uploadMessages[service.ErrTooManyFiles]})
	case errors.Is(err, service.ErrUnsupportedImageType):
		c.JSON(http.StatusBadRequest, gin.H{"error": uploadMessages[service.ErrUnsupportedImageType]})
	case errors.Is(err, service.ErrImageTooLarge), errors.As(err, &maxBytes):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": uploadMessages[service.ErrImageTooLarge]})
	default:
		middleware.Logger(c).Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
