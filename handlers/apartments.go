package handlers

import (
	"apartmenthub/models"
	"apartmenthub/validation"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ApartmentService is what the apartment endpoints need from the service layer.
type ApartmentService interface {
	List(ctx context.Context, q models.ListApartmentsQuery) (*models.PaginatedApartments, error)
	Search(ctx context.Context, text string) ([]models.Apartment, error)
	Get(ctx context.Context, id int64) (*models.Apartment, error)
	Create(ctx context.Context, req models.CreateApartmentRequest) (*models.Apartment, error)
	ListProjects(ctx context.Context) ([]models.ProjectSummary, error)
}

func ListApartments(svc ApartmentService, v *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params models.ListApartmentsParams
		if err := c.ShouldBindQuery(&params); err != nil {
			respondError(c, validation.Single("query", "bind", err.Error()))
			return
		}

		params.Normalize()
		if err := v.Struct(params); err != nil {
			respondError(c, err)
			return
		}

		page, err := svc.List(c.Request.Context(), params.Query())
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, page)
	}
}

func SearchApartments(svc ApartmentService, v *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params models.SearchParams
		if err := c.ShouldBindQuery(&params); err != nil {
			respondError(c, validation.Single("q", "bind", err.Error()))
			return
		}

		params.Normalize()
		if err := v.Struct(params); err != nil {
			respondError(c, err)
			return
		}

		results, err := svc.Search(c.Request.Context(), params.Q)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, results)
	}
}

// GetApartment looks an apartment up by its numeric id.
func GetApartment(svc ApartmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id < 1 {
			respondError(c, validation.Single("id", "id", "id must be a positive integer"))
			return
		}

		apt, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, apt)
	}
}

func CreateApartment(svc ApartmentService, v *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateApartmentRequest
		if err := bindStrictJSON(c, &req); err != nil {
			respondError(c, validation.Single("body", "json", err.Error()))
			return
		}

		req.Normalize()
		if err := v.Struct(req); err != nil {
			respondError(c, err)
			return
		}

		apt, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, apt)
	}
}

func ListProjects(svc ApartmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := svc.ListProjects(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, projects)
	}
}

// bindStrictJSON decodes a single JSON object from the request body into
// obj, rejecting unknown fields and trailing data.
func bindStrictJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil {
		return errors.New("request body is empty")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after the JSON object")
	}
	return nil
}
