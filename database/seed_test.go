package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedImages(t *testing.T) {
	assert.Equal(t, []string{
		"/images/apartments/apartment(5-1).webp",
		"/images/apartments/apartment(5-2).webp",
	}, seedImages(5, 2))
}

func TestSeedData_ProjectsResolve(t *testing.T) {
	names := make(map[string]bool)
	for _, p := range SeedProjects {
		names[p.Name] = true
	}
	for _, apt := range SeedApartments {
		assert.True(t, names[apt.Project], "apartment %s references unknown project %s", apt.UnitNumber, apt.Project)
		assert.LessOrEqual(t, len(apt.Images), 4)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db := RequireTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Seed(ctx))
	require.NoError(t, db.Seed(ctx))

	projects, err := db.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, len(SeedProjects))

	apartments, total, err := db.ListApartments(ctx, ApartmentFilter{}, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(len(SeedApartments)), total)
	assert.Len(t, apartments, len(SeedApartments))

	penthouse, err := db.GetApartmentByUnitNumber(ctx, "F-501")
	require.NoError(t, err)
	require.NotNil(t, penthouse.Project)
	assert.Equal(t, "Elite Towers", penthouse.Project.Name)
	assert.Equal(t, "450000.00", penthouse.Price.String())
}
