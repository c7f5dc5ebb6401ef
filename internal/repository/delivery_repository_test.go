package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverytrujillo/dispatch/internal/model"
)

func newDelivery(tracking, name, district string, status model.DeliveryStatus) *model.Delivery {
	lat, lon := -8.1092, -79.0215
	return &model.Delivery{
		TrackingNumber:    tracking,
		CustomerName:      name,
		CustomerPhone:     "+51 944 000 000",
		CustomerAddress:   "Av. España 123",
		District:          district,
		CustomerLatitude:  &lat,
		CustomerLongitude: &lon,
		PackageWeight:     1.5,
		Priority:          3,
		Status:            status,
	}
}

func TestDeliveryRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeliveryRepository(db.DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, newDelivery("TRU2506151001", "María Torres", "Trujillo Centro", model.DeliveryStatusPending))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "TRU2506151001", got.TrackingNumber)
	assert.Equal(t, "María Torres", got.CustomerName)
	assert.Equal(t, model.DeliveryStatusPending, got.Status)
	require.NotNil(t, got.CustomerLatitude)
	assert.Equal(t, -8.1092, *got.CustomerLatitude)
}

func TestDeliveryRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeliveryRepository(db.DB)

	_, err := repo.GetByID(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeliveryRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeliveryRepository(db.DB)
	ctx := context.Background()

	fixtures := []*model.Delivery{
		newDelivery("TRU2506151001", "María Torres", "Trujillo Centro", model.DeliveryStatusPending),
		newDelivery("TRU2506151002", "Pedro Vargas", "Huanchaco", model.DeliveryStatusPending),
		newDelivery("TRU2506151003", "Ana Díaz", "Huanchaco", model.DeliveryStatusDelivered),
	}
	for _, d := range fixtures {
		_, err := repo.Create(ctx, d)
		require.NoError(t, err)
	}

	t.Run("status filter", func(t *testing.T) {
		status := model.DeliveryStatusPending
		items, total, err := repo.List(ctx, model.DeliveryFilter{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 2)
	})

	t.Run("district filter", func(t *testing.T) {
		district := "Huanchaco"
		items, total, err := repo.List(ctx, model.DeliveryFilter{District: &district})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, d := range items {
			assert.Equal(t, "Huanchaco", d.District)
		}
	})

	t.Run("combined filters", func(t *testing.T) {
		status := model.DeliveryStatusDelivered
		district := "Huanchaco"
		items, total, err := repo.List(ctx, model.DeliveryFilter{Status: &status, District: &district})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "TRU2506151003", items[0].TrackingNumber)
	})

	t.Run("pagination", func(t *testing.T) {
		items, total, err := repo.List(ctx, model.DeliveryFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, items, 1)
	})
}

func TestDeliveryRepository_GetByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeliveryRepository(db.DB)
	ctx := context.Background()

	first, err := repo.Create(ctx, newDelivery("TRU2506151001", "María Torres", "Moche", model.DeliveryStatusPending))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newDelivery("TRU2506151002", "Pedro Vargas", "Moche", model.DeliveryStatusPending))
	require.NoError(t, err)

	items, err := repo.GetByIDs(ctx, []int64{first.ID, 9999})
	require.NoError(t, err)

	// Unknown ids are simply absent from the result.
	require.Len(t, items, 1)
	assert.Equal(t, first.ID, items[0].ID)
}

func TestDeliveryRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeliveryRepository(db.DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, newDelivery("TRU2506151001", "María Torres", "Laredo", model.DeliveryStatusPending))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, created.ID, model.DeliveryStatusInTransit))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryStatusInTransit, got.Status)

	err = repo.UpdateStatus(ctx, 9999, model.DeliveryStatusDelivered)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeliveryRepository_ListOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeliveryRepository(db.DB)
	ctx := context.Background()

	old := newDelivery("TRU2506141001", "Vieja Entrega", "Poroto", model.DeliveryStatusPending)
	old.CreatedAt = time.Now().Add(-24 * time.Hour)
	_, err := repo.Create(ctx, old)
	require.NoError(t, err)

	_, err = repo.Create(ctx, newDelivery("TRU2506151001", "Nueva Entrega", "Poroto", model.DeliveryStatusPending))
	require.NoError(t, err)

	items, _, err := repo.List(ctx, model.DeliveryFilter{Desc: true})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "TRU2506151001", items[0].TrackingNumber)
}
