package fixtures

import (
	"github.com/deliverytrujillo/dispatch/internal/model"
)

var (
	TestDriverCarlos = model.Driver{
		ID:            1,
		Name:          "Carlos Paredes",
		LicenseNumber: "Q12345678",
		Status:        model.FleetStatusAvailable,
	}

	TestDriverRosa = model.Driver{
		ID:            2,
		Name:          "Rosa Gamboa",
		LicenseNumber: "Q87654321",
		Status:        model.FleetStatusAvailable,
	}

	TestVehicleVan = model.Vehicle{
		ID:           1,
		LicensePlate: "T4K-519",
		VehicleType:  "van",
		Status:       model.FleetStatusAvailable,
	}

	TestVehicleMoto = model.Vehicle{
		ID:           2,
		LicensePlate: "M2B-204",
		VehicleType:  "motorcycle",
		Status:       "in_route",
	}
)

func NewTestDeliveryCreateRequest(name, street, district string) model.DeliveryCreateRequest {
	return model.DeliveryCreateRequest{
		CustomerName:  name,
		CustomerPhone: "+51 944 123 456",
		Street:        street,
		District:      district,
		PackageWeight: 2.5,
		Priority:      3,
	}
}

func NewTestDelivery(tracking, name, district string, status model.DeliveryStatus) *model.Delivery {
	lat, lon := -8.1092, -79.0215
	return &model.Delivery{
		TrackingNumber:    tracking,
		CustomerName:      name,
		CustomerPhone:     "+51 944 123 456",
		CustomerAddress:   "Av. España 123",
		District:          district,
		CustomerLatitude:  &lat,
		CustomerLongitude: &lon,
		PackageWeight:     2.5,
		Priority:          3,
		Status:            status,
	}
}
