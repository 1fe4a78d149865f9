package models

import (
	"strings"
	"time"
)

// ApartmentStatus is the rental state of a unit.
type ApartmentStatus string

const (
	StatusAvailable ApartmentStatus = "available"
	StatusRented    ApartmentStatus = "rented"
	StatusPending   ApartmentStatus = "pending"
)

// Statuses lists every accepted status in display order.
var Statuses = []ApartmentStatus{StatusAvailable, StatusRented, StatusPending}

// Valid reports whether s is one of the enumerated statuses.
func (s ApartmentStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// MaxImages is the number of images an apartment may reference.
const MaxImages = 4

// Apartment is a rental unit. UnitNumber is the unique business key; ID is
// the authoritative key for external lookups.
type Apartment struct {
	ID          int64           `json:"id"`
	UnitName    string          `json:"unit_name"`
	UnitNumber  string          `json:"unit_number"`
	ProjectID   int64           `json:"project_id"`
	Project     *Project        `json:"project,omitempty"`
	Address     string          `json:"address"`
	Price       Amount          `json:"price"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   int             `json:"bathrooms"`
	Area        Amount          `json:"area"`
	Description string          `json:"description"`
	Status      ApartmentStatus `json:"status"`
	Amenities   []string        `json:"amenities"`
	Images      []string        `json:"images"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CreateApartmentRequest is the body of the create endpoint. Project is the
// project name and must resolve to an existing project. Price and Area are
// decimal strings so currency and measurements never round through floats.
// The digit and integer bounds match the apartments columns.
type CreateApartmentRequest struct {
	UnitName    string   `json:"unit_name" validate:"required,utf8,min=3,max=255"`
	UnitNumber  string   `json:"unit_number" validate:"required,utf8,min=1,max=255"`
	Project     string   `json:"project" validate:"required,utf8,min=1,max=255"`
	Address     string   `json:"address" validate:"required,utf8,min=10"`
	Price       string   `json:"price" validate:"required,decimal2=10"`
	Bedrooms    *int     `json:"bedrooms" validate:"required,min=0,max=2147483647"`
	Description string   `json:"description" validate:"required,utf8,min=10,max=255,nohtml"`
	Status      string   `json:"status" validate:"required,oneof=available rented pending"`
	Amenities   []string `json:"amenities" validate:"required,dive,utf8,max=255"`
	Images      []string `json:"images" validate:"required,max=4,dive,utf8,min=1,max=2048"`
	Area        string   `json:"area" validate:"required,decimal2=8"`
	Bathrooms   *int     `json:"bathrooms" validate:"required,min=1,max=2147483647"`
}

// Normalize trims the free-text fields the way the request schema expects
// before validation runs.
func (r *CreateApartmentRequest) Normalize() {
	r.UnitName = strings.TrimSpace(r.UnitName)
	r.UnitNumber = strings.TrimSpace(r.UnitNumber)
	r.Project = strings.TrimSpace(r.Project)
	r.Description = strings.TrimSpace(r.Description)
}

// UploadImagesResponse is returned by the image upload endpoint.
type UploadImagesResponse struct {
	Message string   `json:"message"`
	Images  []string `json:"images"`
}
