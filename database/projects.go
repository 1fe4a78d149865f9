package database

import (
	"apartmenthub/models"
	"context"
	"fmt"
)

const projectColumns = `id, name, description, location, created_at, updated_at`

// ListProjects returns every project ordered by name.
func (db *DB) ListProjects(ctx context.Context) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY name ASC`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

func (db *DB) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", id, translateError(err))
	}
	return project, nil
}

// GetProjectByName matches the exact, case-sensitive project name.
func (db *DB) GetProjectByName(ctx context.Context, name string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE name = $1`

	project, err := scanProject(db.Pool.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("failed to get project %q: %w", name, translateError(err))
	}
	return project, nil
}

func (db *DB) CreateProject(ctx context.Context, name string, description, location *string) (*models.Project, error) {
	query := `
		INSERT INTO projects (name, description, location)
		VALUES ($1, $2, $3)
		RETURNING ` + projectColumns

	project, err := scanProject(db.Pool.QueryRow(ctx, query, name, description, location))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", translateError(err))
	}

	db.logger.Info("created project", "id", project.ID, "name", project.Name)
	return project, nil
}

// UpsertProject creates the named project or refreshes its description and
// location.
func (db *DB) UpsertProject(ctx context.Context, name string, description, location *string) (*models.Project, error) {
	query := `
		INSERT INTO projects (name, description, location)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			location = EXCLUDED.location,
			updated_at = NOW()
		RETURNING ` + projectColumns

	project, err := scanProject(db.Pool.QueryRow(ctx, query, name, description, location))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert project %q: %w", name, translateError(err))
	}
	return project, nil
}

// Helper functions

func scanProject(row rowScanner) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Location,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func scanProjects(rows rowsScanner) ([]models.Project, error) {
	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}
