package services

import (
	"context"
	"errors"

	"github.com/deliverytrujillo/dispatch/internal/model"
	"github.com/deliverytrujillo/dispatch/internal/repository"
)

var ErrDriverNotFound = errors.New("driver not found")

type VehicleRepository interface {
	List(ctx context.Context, status *string) ([]*model.Vehicle, error)
}

type DriverRepository interface {
	List(ctx context.Context, status *string) ([]*model.Driver, error)
	GetByID(ctx context.Context, id int64) (*model.Driver, error)
}

// FleetService reads vehicles and drivers. The fleet is managed by another
// system; these are lookups for assignment pickers.
type FleetService struct {
	vehicleRepo VehicleRepository
	driverRepo  DriverRepository
}

func NewFleetService(vehicleRepo VehicleRepository, driverRepo DriverRepository) *FleetService {
	return &FleetService{
		vehicleRepo: vehicleRepo,
		driverRepo:  driverRepo,
	}
}

func (s *FleetService) Vehicles(ctx context.Context, status *string) ([]*model.Vehicle, error) {
	return s.vehicleRepo.List(ctx, status)
}

func (s *FleetService) Drivers(ctx context.Context, status *string) ([]*model.Driver, error) {
	return s.driverRepo.List(ctx, status)
}

func (s *FleetService) Driver(ctx context.Context, id int64) (*model.Driver, error) {
	d, err := s.driverRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrDriverNotFound
	}
	return d, err
}
