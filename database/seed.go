package database

import (
	"apartmenthub/models"
	"context"
	"fmt"
)

// SeedProject is a project row of the starter data set.
type SeedProject struct {
	Name     string
	Location string
}

// SeedApartment is an apartment row of the starter data set. Project is the
// project name.
type SeedApartment struct {
	models.Apartment
	Project string
}

var SeedProjects = []SeedProject{
	{Name: "Sunrise Residency", Location: "Cityville"},
	{Name: "Skyline Towers", Location: "Metropolis"},
	{Name: "Urban Heights", Location: "Metro City"},
	{Name: "Green Valley", Location: "Suburbia"},
	{Name: "Business District", Location: "Financial Center"},
	{Name: "Elite Towers", Location: "Uptown"},
}

var SeedApartments = []SeedApartment{
	{Project: "Sunrise Residency", Apartment: models.Apartment{
		UnitName:    "Garden View A-101",
		UnitNumber:  "A-101",
		Address:     "123 Main St, Cityville",
		Price:       models.MustAmount("120000.00"),
		Bedrooms:    2,
		Bathrooms:   2,
		Area:        models.MustAmount("85.50"),
		Description: "Cozy 2BR with garden view and modern amenities.",
		Status:      models.StatusAvailable,
		Amenities:   []string{"Garden View", "Parking", "Balcony"},
		Images:      seedImages(1, 3),
	}},
	{Project: "Sunrise Residency", Apartment: models.Apartment{
		UnitName:    "Corner Suite A-102",
		UnitNumber:  "A-102",
		Address:     "125 Main St, Cityville",
		Price:       models.MustAmount("150000.00"),
		Bedrooms:    3,
		Bathrooms:   2,
		Area:        models.MustAmount("120.00"),
		Description: "Spacious corner unit with excellent natural light.",
		Status:      models.StatusAvailable,
		Amenities:   []string{"Corner Unit", "Parking", "Balcony", "City View"},
		Images:      seedImages(2, 2),
	}},
	{Project: "Skyline Towers", Apartment: models.Apartment{
		UnitName:    "Penthouse B-201",
		UnitNumber:  "B-201",
		Address:     "500 High St, Metropolis",
		Price:       models.MustAmount("300000.00"),
		Bedrooms:    4,
		Bathrooms:   3,
		Area:        models.MustAmount("200.75"),
		Description: "Penthouse with panoramic city views and luxury finishes.",
		Status:      models.StatusAvailable,
		Amenities:   []string{"Penthouse", "Panoramic View", "Private Elevator", "Terrace", "Parking"},
		Images:      seedImages(3, 2),
	}},
	{Project: "Urban Heights", Apartment: models.Apartment{
		UnitName:    "Modern Studio C-301",
		UnitNumber:  "C-301",
		Address:     "789 Downtown Ave, Metro City",
		Price:       models.MustAmount("95000.00"),
		Bedrooms:    1,
		Bathrooms:   1,
		Area:        models.MustAmount("65.00"),
		Description: "Contemporary studio apartment perfect for young professionals.",
		Status:      models.StatusAvailable,
		Amenities:   []string{"Modern Design", "Gym Access", "Rooftop Terrace"},
		Images:      seedImages(4, 2),
	}},
	{Project: "Green Valley", Apartment: models.Apartment{
		UnitName:    "Family Suite D-102",
		UnitNumber:  "D-102",
		Address:     "456 Park Lane, Suburbia",
		Price:       models.MustAmount("180000.00"),
		Bedrooms:    3,
		Bathrooms:   2,
		Area:        models.MustAmount("140.25"),
		Description: "Family-friendly apartment with park views and playground access.",
		Status:      models.StatusRented,
		Amenities:   []string{"Park View", "Playground", "Family Area", "Storage"},
		Images:      seedImages(5, 3),
	}},
	{Project: "Business District", Apartment: models.Apartment{
		UnitName:    "Executive Loft E-401",
		UnitNumber:  "E-401",
		Address:     "321 Corporate Blvd, Financial Center",
		Price:       models.MustAmount("250000.00"),
		Bedrooms:    2,
		Bathrooms:   2,
		Area:        models.MustAmount("110.00"),
		Description: "Executive loft with high ceilings and premium location.",
		Status:      models.StatusPending,
		Amenities:   []string{"High Ceilings", "Business Center", "Concierge", "Valet"},
		Images:      seedImages(6, 1),
	}},
	{Project: "Elite Towers", Apartment: models.Apartment{
		UnitName:    "Luxury Penthouse F-501",
		UnitNumber:  "F-501",
		Address:     "999 Luxury Lane, Uptown",
		Price:       models.MustAmount("450000.00"),
		Bedrooms:    4,
		Bathrooms:   4,
		Area:        models.MustAmount("280.50"),
		Description: "Ultra-luxury penthouse with private pool and 360-degree views.",
		Status:      models.StatusAvailable,
		Amenities:   []string{"Private Pool", "360 Views", "Wine Cellar", "Smart Home", "Private Garage"},
		Images:      seedImages(7, 3),
	}},
}

func seedImages(n, count int) []string {
	images := make([]string, count)
	for i := range images {
		images[i] = fmt.Sprintf("/images/apartments/apartment(%d-%d).webp", n, i+1)
	}
	return images
}

// Seed upserts the starter projects and apartments. Running it twice leaves
// the same rows in place.
func (db *DB) Seed(ctx context.Context) error {
	ids := make(map[string]int64, len(SeedProjects))
	for _, p := range SeedProjects {
		location := p.Location
		project, err := db.UpsertProject(ctx, p.Name, nil, &location)
		if err != nil {
			return fmt.Errorf("seed project %q: %w", p.Name, err)
		}
		ids[p.Name] = project.ID
	}

	for _, s := range SeedApartments {
		projectID, ok := ids[s.Project]
		if !ok {
			return fmt.Errorf("seed apartment %q: unknown project %q", s.UnitNumber, s.Project)
		}
		apt := s.Apartment
		apt.ProjectID = projectID
		if _, err := db.UpsertApartment(ctx, apt); err != nil {
			return fmt.Errorf("seed apartment %q: %w", s.UnitNumber, err)
		}
	}

	db.logger.Info("seed complete", "projects", len(SeedProjects), "apartments", len(SeedApartments))
	return nil
}
