package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/equirecords/internal/cache"
	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/testutil"
)

func TestRadiationRatio(t *testing.T) {
	assert.Equal(t, 0.0, RadiationRatio(0, 0))
	assert.Equal(t, 25.0, RadiationRatio(1, 3))
	assert.Equal(t, 33.3, RadiationRatio(1, 2))
	assert.Equal(t, 100.0, RadiationRatio(4, 0))
}

func TestBuildDashboardEmpty(t *testing.T) {
	db := testutil.NewTestDB(t)

	d, err := BuildDashboard(db)
	require.NoError(t, err)
	assert.Zero(t, d.TotalHorses)
	assert.Zero(t, d.RadiatedHorses)
	assert.Equal(t, 0.0, d.RadiationRatio)
	assert.Empty(t, d.RadiationReasons)
	assert.Empty(t, d.TopPathologies)
	assert.Equal(t, HealthCounts{}, d.HealthStatus)
}

func TestBuildDashboard(t *testing.T) {
	db := testutil.NewTestDB(t)
	a := testutil.CreateHorse(t, db, "A")
	b := testutil.CreateHorse(t, db, "B", func(h *models.Horse) {
		h.Etat = models.EtatMalade
		h.Race = "Arabe"
	})
	testutil.CreateHorse(t, db, "C", func(h *models.Horse) { h.Etat = models.EtatEnRetablissement })
	gone := testutil.CreateHorse(t, db, "Gone")

	testutil.CreateTest(t, db, a, "Colique", testutil.Date(2026, time.January, 1))
	testutil.CreateTest(t, db, b, "Colique", testutil.Date(2026, time.January, 2))
	testutil.CreateTest(t, db, b, "Boiterie", testutil.Date(2026, time.January, 3))
	testutil.CreateTest(t, db, gone, "Fourbure", testutil.Date(2026, time.January, 4))

	_, err := RadiateHorse(db, gone.ID, radiation(models.MotifVente))
	require.NoError(t, err)

	d, err := BuildDashboard(db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), d.TotalHorses)
	assert.Equal(t, int64(1), d.RadiatedHorses)
	assert.Equal(t, 25.0, d.RadiationRatio)
	assert.Equal(t, []CountItem{{ID: models.MotifVente, Count: 1}}, d.RadiationReasons)
	assert.Equal(t, HealthCounts{Malade: 1, Sain: 1, EnRetablissement: 1}, d.HealthStatus)
	assert.Equal(t, []CountItem{{ID: "Barbe", Count: 2}, {ID: "Arabe", Count: 1}}, d.RaceDistribution)
	assert.Equal(t, []CountItem{{ID: "Colique", Count: 2}, {ID: "Boiterie", Count: 1}}, d.TopPathologies)
}

func TestGetDashboardUsesCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateHorse(t, db, "A")
	c := newMemCache()
	ctx := context.Background()

	first, err := GetDashboard(ctx, db, c, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.TotalHorses)
	assert.Equal(t, 1, c.sets)

	testutil.CreateHorse(t, db, "B")
	cached, err := GetDashboard(ctx, db, c, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.TotalHorses)

	InvalidateDashboard(ctx, c)
	fresh, err := GetDashboard(ctx, db, c, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.TotalHorses)

	noop, err := GetDashboard(ctx, db, cache.Noop{}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), noop.TotalHorses)
}
