package models

import (
	"time"
)

// Project is a named real-estate development grouping apartments.
// Names are unique; apartments reference their project by id.
type Project struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Location    *string   `json:"location" db:"location"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// ProjectSummary is the projects listing row used to populate filters.
type ProjectSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
