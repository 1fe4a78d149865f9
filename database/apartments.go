package database

import (
	"apartmenthub/models"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

const apartmentColumns = `
	a.id, a.unit_name, a.unit_number, a.project_id, a.address,
	a.price, a.bedrooms, a.bathrooms, a.area, a.description,
	a.status, a.amenities, a.images, a.created_at,
	p.id, p.name, p.description, p.location, p.created_at, p.updated_at`

const apartmentsFrom = `FROM apartments a JOIN projects p ON p.id = a.project_id`

// ListApartments returns one page of apartments matching filter, newest
// first, and the number of apartments matching filter overall. The page and
// the count run concurrently on separate pool connections.
//
// Returns an empty slice (not nil) if nothing matches.
func (db *DB) ListApartments(ctx context.Context, filter ApartmentFilter, limit, offset int) ([]models.Apartment, int64, error) {
	start := time.Now()
	defer func() {
		db.logger.Debug("ListApartments",
			"duration", time.Since(start),
			"search", filter.Search, "project", filter.Project, "status", filter.Status,
			"limit", limit, "offset", offset)
	}()

	qb := BuildApartmentFilter(filter)
	whereClause := qb.WhereClause()

	var (
		apartments []models.Apartment
		total      int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// SAFETY: All user input is parameterized. whereClause only contains
		// column names and operators from BuildApartmentFilter.
		query := fmt.Sprintf(`
			SELECT %s
			%s
			%s
			ORDER BY %s DESC, a.id DESC
			LIMIT $%d OFFSET $%d
		`, apartmentColumns, apartmentsFrom, whereClause, columnCreatedAt, qb.NextArgNum(), qb.NextArgNum()+1)

		args := append(slices.Clone(qb.Args()), limit, offset)

		rows, err := db.Pool.Query(gctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to query apartments: %w", err)
		}
		defer rows.Close()

		apartments, err = scanApartments(rows)
		return err
	})

	g.Go(func() error {
		query := fmt.Sprintf(`SELECT COUNT(*) %s %s`, apartmentsFrom, whereClause)
		if err := db.Pool.QueryRow(gctx, query, qb.Args()...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count apartments: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, translateError(err)
	}

	return apartments, total, nil
}

func (db *DB) GetApartment(ctx context.Context, id int64) (*models.Apartment, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE a.id = $1`, apartmentColumns, apartmentsFrom)

	apartment, err := scanApartment(db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get apartment %d: %w", id, translateError(err))
	}
	return apartment, nil
}

func (db *DB) GetApartmentByUnitNumber(ctx context.Context, unitNumber string) (*models.Apartment, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE a.unit_number = $1`, apartmentColumns, apartmentsFrom)

	apartment, err := scanApartment(db.Pool.QueryRow(ctx, query, unitNumber))
	if err != nil {
		return nil, fmt.Errorf("failed to get apartment %q: %w", unitNumber, translateError(err))
	}
	return apartment, nil
}

func (db *DB) UnitNumberExists(ctx context.Context, unitNumber string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM apartments WHERE unit_number = $1)`, unitNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check unit number: %w", err)
	}
	return exists, nil
}

// CreateApartment inserts apt and returns the stored row with its project.
// The unique index on unit_number backs the caller's duplicate pre-check:
// a concurrent insert of the same unit number fails with ErrDuplicate.
// An unknown project_id fails with ErrNotFound.
func (db *DB) CreateApartment(ctx context.Context, apt models.Apartment) (*models.Apartment, error) {
	start := time.Now()
	defer func() {
		db.logger.Debug("CreateApartment", "duration", time.Since(start), "unit_number", apt.UnitNumber)
	}()

	query := `
		INSERT INTO apartments (
			unit_name, unit_number, project_id, address, price,
			bedrooms, bathrooms, area, description, status, amenities, images
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	var id int64
	err := db.Pool.QueryRow(ctx, query, apartmentArgs(apt)...).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create apartment: %w", translateError(err))
	}

	return db.GetApartment(ctx, id)
}

// UpsertApartment inserts apt or, when its unit number exists, overwrites
// the stored attributes. Used by the seed command.
func (db *DB) UpsertApartment(ctx context.Context, apt models.Apartment) (*models.Apartment, error) {
	query := `
		INSERT INTO apartments (
			unit_name, unit_number, project_id, address, price,
			bedrooms, bathrooms, area, description, status, amenities, images
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (unit_number) DO UPDATE SET
			unit_name = EXCLUDED.unit_name,
			project_id = EXCLUDED.project_id,
			address = EXCLUDED.address,
			price = EXCLUDED.price,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			area = EXCLUDED.area,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			amenities = EXCLUDED.amenities,
			images = EXCLUDED.images
		RETURNING id
	`

	var id int64
	if err := db.Pool.QueryRow(ctx, query, apartmentArgs(apt)...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to upsert apartment %q: %w", apt.UnitNumber, translateError(err))
	}

	return db.GetApartment(ctx, id)
}

// Helper functions

// apartmentArgs orders apt's columns for the insert statements. Amounts are
// sent as text so NUMERIC parses them exactly.
func apartmentArgs(apt models.Apartment) []any {
	amenities := apt.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	images := apt.Images
	if images == nil {
		images = []string{}
	}
	return []any{
		apt.UnitName, apt.UnitNumber, apt.ProjectID, apt.Address, apt.Price.String(),
		apt.Bedrooms, apt.Bathrooms, apt.Area.String(), apt.Description, string(apt.Status),
		amenities, images,
	}
}

func scanApartment(row rowScanner) (*models.Apartment, error) {
	var apt models.Apartment
	var project models.Project
	err := row.Scan(
		&apt.ID, &apt.UnitName, &apt.UnitNumber, &apt.ProjectID, &apt.Address,
		&apt.Price, &apt.Bedrooms, &apt.Bathrooms, &apt.Area, &apt.Description,
		&apt.Status, &apt.Amenities, &apt.Images, &apt.CreatedAt,
		&project.ID, &project.Name, &project.Description, &project.Location,
		&project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	apt.Project = &project
	return &apt, nil
}

func scanApartments(rows rowsScanner) ([]models.Apartment, error) {
	apartments := []models.Apartment{}
	for rows.Next() {
		apt, err := scanApartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan apartment: %w", err)
		}
		apartments = append(apartments, *apt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating apartments: %w", err)
	}

	return apartments, nil
}
