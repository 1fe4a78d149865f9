package handlers

import (
	"apartmenthub/models"
	"apartmenthub/service"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	imagesField = "images"
	// maxUploadBody bounds the whole multipart body: four full-size images
	// plus room for part headers.
	maxUploadBody = models.MaxImages*service.MaxImageSize + 1<<20
)

// ImageUploader stores a batch of uploaded images and returns their URLs.
type ImageUploader interface {
	Upload(ctx context.Context, files []service.ImageFile) ([]string, error)
}

func UploadImages(uploader ImageUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)

		form, err := c.MultipartForm()
		if err != nil {
			if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
				respondError(c, service.ErrNoFiles)
				return
			}
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				respondError(c, err)
				return
			}
			respondError(c, errors.Join(service.ErrNoFiles, err))
			return
		}
		defer form.RemoveAll()

		headers := form.File[imagesField]
		files := make([]service.ImageFile, 0, len(headers))
		for _, fh := range headers {
			files = append(files, imageFile(fh))
		}

		urls, err := uploader.Upload(c.Request.Context(), files)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.UploadImagesResponse{
			Message: "Images uploaded successfully",
			Images:  urls,
		})
	}
}

func imageFile(fh *multipart.FileHeader) service.ImageFile {
	return service.ImageFile{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
