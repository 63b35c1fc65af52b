package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestNoopNeverHits(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, DashboardKey, map[string]int{"a": 1}, time.Minute))
	var out map[string]int
	hit, err := c.Get(ctx, DashboardKey, &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping redis container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	}()

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	r, err := NewRedis(endpoint, "", 0)
	require.NoError(t, err)
	defer r.Close()

	type dashboard struct {
		Total int `json:"total"`
	}

	var got dashboard
	hit, err := r.Get(ctx, DashboardKey, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, r.Set(ctx, DashboardKey, dashboard{Total: 7}, time.Minute))
	hit, err = r.Get(ctx, DashboardKey, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 7, got.Total)

	require.NoError(t, r.Delete(ctx, DashboardKey))
	hit, err = r.Get(ctx, DashboardKey, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
