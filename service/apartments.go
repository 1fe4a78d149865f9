package service

import (
	"apartmenthub/database"
	"apartmenthub/models"
	"apartmenthub/validation"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// apartmentRepository is the subset of database.DB that ApartmentService requires.
type apartmentRepository interface {
	ListApartments(ctx context.Context, filter database.ApartmentFilter, limit, offset int) ([]models.Apartment, int64, error)
	GetApartment(ctx context.Context, id int64) (*models.Apartment, error)
	GetApartmentByUnitNumber(ctx context.Context, unitNumber string) (*models.Apartment, error)
	UnitNumberExists(ctx context.Context, unitNumber string) (bool, error)
	CreateApartment(ctx context.Context, apt models.Apartment) (*models.Apartment, error)
}

// projectRepository is the subset of database.DB that ApartmentService requires.
type projectRepository interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProjectByName(ctx context.Context, name string) (*models.Project, error)
}

type ApartmentService struct {
	apartments apartmentRepository
	projects   projectRepository
	logger     *slog.Logger
}

func NewApartmentService(apartments apartmentRepository, projects projectRepository, logger *slog.Logger) *ApartmentService {
	return &ApartmentService{
		apartments: apartments,
		projects:   projects,
		logger:     logger,
	}
}

// List returns one page of apartments matching q. Zero page or page size
// fall back to the defaults.
func (s *ApartmentService) List(ctx context.Context, q models.ListApartmentsQuery) (*models.PaginatedApartments, error) {
	if q.Page < 1 {
		q.Page = models.DefaultPage
	}
	if q.PerPage < 1 {
		q.PerPage = models.DefaultPerPage
	}

	data, total, err := s.apartments.ListApartments(ctx, database.ApartmentFilterFrom(q), q.PerPage, q.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list apartments: %w", storeError(err))
	}
	if data == nil {
		data = []models.Apartment{}
	}

	return &models.PaginatedApartments{
		Data:       data,
		Page:       q.Page,
		PerPage:    q.PerPage,
		Total:      &total,
		TotalPages: models.TotalPages(total, q.PerPage),
	}, nil
}

// Search runs the free-text predicate alone and returns the first page at
// the largest page size.
func (s *ApartmentService) Search(ctx context.Context, text string) ([]models.Apartment, error) {
	data, _, err := s.apartments.ListApartments(ctx, database.ApartmentFilter{Search: text}, models.MaxPerPage, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to search apartments: %w", storeError(err))
	}
	if data == nil {
		data = []models.Apartment{}
	}
	return data, nil
}

func (s *ApartmentService) Get(ctx context.Context, id int64) (*models.Apartment, error) {
	apt, err := s.apartments.GetApartment(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrApartmentNotFound, id)
	}
	return apt, err
}

func (s *ApartmentService) GetByUnitNumber(ctx context.Context, unitNumber string) (*models.Apartment, error) {
	apt, err := s.apartments.GetApartmentByUnitNumber(ctx, unitNumber)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: unit_number %s", ErrApartmentNotFound, unitNumber)
	}
	return apt, err
}

// Create persists a validated request. The unit number pre-check gives the
// common case a clean conflict; the unique index catches the race.
func (s *ApartmentService) Create(ctx context.Context, req models.CreateApartmentRequest) (*models.Apartment, error) {
	exists, err := s.apartments.UnitNumberExists(ctx, req.UnitNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateUnitNumber, req.UnitNumber)
	}

	project, err := s.projects.GetProjectByName(ctx, req.Project)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, req.Project)
	}
	if err != nil {
		return nil, err
	}

	apt, err := newApartment(req, project.ID)
	if err != nil {
		return nil, err
	}

	created, err := s.apartments.CreateApartment(ctx, apt)
	switch {
	case errors.Is(err, database.ErrDuplicate):
		return nil, fmt.Errorf("%w: %s", ErrDuplicateUnitNumber, req.UnitNumber)
	case errors.Is(err, database.ErrNotFound):
		// Project removed between lookup and insert.
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, req.Project)
	case errors.Is(err, database.ErrInvalidInput):
		return nil, storeError(err)
	case err != nil:
		s.logger.Error("failed to create apartment", "unit_number", req.UnitNumber, "error", err)
		return nil, err
	}

	s.logger.Info("created apartment", "id", created.ID, "unit_number", created.UnitNumber)
	return created, nil
}

// ListProjects returns the id and name of every project, ordered by name.
func (s *ApartmentService) ListProjects(ctx context.Context) ([]models.ProjectSummary, error) {
	projects, err := s.projects.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	summaries := make([]models.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, models.ProjectSummary{ID: p.ID, Name: p.Name})
	}
	return summaries, nil
}

// storeError marks values the database refused as client input errors.
func storeError(err error) error {
	if errors.Is(err, database.ErrInvalidInput) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func newApartment(req models.CreateApartmentRequest, projectID int64) (models.Apartment, error) {
	price, err := models.ParseAmount(req.Price)
	if err != nil {
		return models.Apartment{}, validation.Single("price", "decimal2", "price must be a decimal with at most 2 fraction digits")
	}
	area, err := models.ParseAmount(req.Area)
	if err != nil {
		return models.Apartment{}, validation.Single("area", "decimal2", "area must be a decimal with at most 2 fraction digits")
	}

	apt := models.Apartment{
		UnitName:    req.UnitName,
		UnitNumber:  req.UnitNumber,
		ProjectID:   projectID,
		Address:     req.Address,
		Price:       price,
		Area:        area,
		Description: req.Description,
		Status:      models.ApartmentStatus(req.Status),
		Amenities:   req.Amenities,
		Images:      req.Images,
	}
	if req.Bedrooms != nil {
		apt.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		apt.Bathrooms = *req.Bathrooms
	}
	return apt, nil
}
