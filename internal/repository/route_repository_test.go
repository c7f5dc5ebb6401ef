package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverytrujillo/dispatch/internal/model"
)

func seedRoute(t *testing.T, db *testDB, name, metadata string, createdAt time.Time) *RouteEntity {
	t.Helper()
	e := &RouteEntity{
		RouteName:       name,
		TotalDistanceKm: 10.5,
		RouteStatus:     "planned",
		Metadata:        metadata,
		CreatedAt:       createdAt,
	}
	require.NoError(t, db.rawDB.Create(e).Error)
	return e
}

func TestRouteRepository_Latest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRouteRepository(db.DB)
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		_, err := repo.Latest(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	seedRoute(t, db, "Ruta vieja", "", time.Now().Add(-time.Hour))
	newest := seedRoute(t, db, "Ruta nueva", `{"request_id": "abc", "delivery_count": 3}`, time.Now())

	route, err := repo.Latest(ctx)
	require.NoError(t, err)

	assert.Equal(t, newest.ID, route.ID)
	assert.Equal(t, "abc", route.RequestID())
	assert.Equal(t, 3, route.DeliveryCount())
}

func TestRouteRepository_Latest_MalformedMetadata(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRouteRepository(db.DB)

	seedRoute(t, db, "Ruta", `{broken`, time.Now())

	route, err := repo.Latest(context.Background())
	require.NoError(t, err)

	// Malformed metadata degrades to empty, not to an error.
	assert.Empty(t, route.RequestID())
	assert.Zero(t, route.DeliveryCount())
}

func TestRouteRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRouteRepository(db.DB)
	ctx := context.Background()

	now := time.Now()
	seedRoute(t, db, "Ruta 1", "", now.Add(-48*time.Hour))
	seedRoute(t, db, "Ruta 2", "", now.Add(-24*time.Hour))
	seedRoute(t, db, "Ruta 3", "", now)

	t.Run("newest first", func(t *testing.T) {
		items, total, err := repo.List(ctx, model.RouteFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 3)
		assert.Equal(t, "Ruta 3", items[0].RouteName)
	})

	t.Run("time range", func(t *testing.T) {
		from := now.Add(-36 * time.Hour)
		items, total, err := repo.List(ctx, model.RouteFilter{From: &from})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 2)
	})
}

func TestRouteRepository_GetWithDeliveries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRouteRepository(db.DB)
	deliveryRepo := NewDeliveryRepository(db.DB)
	ctx := context.Background()

	first, err := deliveryRepo.Create(ctx, newDelivery("TRU2506151001", "María Torres", "Trujillo Centro", model.DeliveryStatusAssigned))
	require.NoError(t, err)
	second, err := deliveryRepo.Create(ctx, newDelivery("TRU2506151002", "Pedro Vargas", "Huanchaco", model.DeliveryStatusAssigned))
	require.NoError(t, err)

	route := seedRoute(t, db, "Ruta norte", "", time.Now())
	require.NoError(t, db.rawDB.Create(&RouteDeliveryEntity{RouteID: route.ID, DeliveryID: second.ID, SequenceOrder: 1}).Error)
	require.NoError(t, db.rawDB.Create(&RouteDeliveryEntity{RouteID: route.ID, DeliveryID: first.ID, SequenceOrder: 2}).Error)

	got, rds, err := repo.GetWithDeliveries(ctx, route.ID)
	require.NoError(t, err)

	assert.Equal(t, "Ruta norte", got.RouteName)
	require.Len(t, rds, 2)
	assert.Equal(t, second.ID, rds[0].DeliveryID, "join rows follow sequence order")
	assert.Equal(t, first.ID, rds[1].DeliveryID)
}

func TestRouteRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRouteRepository(db.DB)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
