package repository

import (
	"context"
	"errors"

	"github.com/deliverytrujillo/dispatch/internal/model"
	"github.com/deliverytrujillo/dispatch/pkg/pg"
	"gorm.io/gorm"
)

// Vehicles and drivers are read-only collections from this service's
// perspective.

type VehicleRepository struct {
	*pg.DB
}

func NewVehicleRepository(db *pg.DB) *VehicleRepository {
	return &VehicleRepository{
		db,
	}
}

func (r *VehicleRepository) List(ctx context.Context, status *string) ([]*model.Vehicle, error) {
	q := r.Read(ctx).Model(&VehicleEntity{})
	if status != nil && *status != "" {
		q = q.Where("status = ?", *status)
	}

	var entities []*VehicleEntity
	if err := q.Order("id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}

	vehicles := make([]*model.Vehicle, len(entities))
	for i, e := range entities {
		vehicles[i] = toVehicleModel(e)
	}
	return vehicles, nil
}

type DriverRepository struct {
	*pg.DB
}

func NewDriverRepository(db *pg.DB) *DriverRepository {
	return &DriverRepository{
		db,
	}
}

func (r *DriverRepository) List(ctx context.Context, status *string) ([]*model.Driver, error) {
	q := r.Read(ctx).Model(&DriverEntity{})
	if status != nil && *status != "" {
		q = q.Where("status = ?", *status)
	}

	var entities []*DriverEntity
	if err := q.Order("id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}

	drivers := make([]*model.Driver, len(entities))
	for i, e := range entities {
		drivers[i] = toDriverModel(e)
	}
	return drivers, nil
}

func (r *DriverRepository) GetByID(ctx context.Context, id int64) (*model.Driver, error) {
	var entity DriverEntity
	err := r.Read(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDriverModel(&entity), nil
}
