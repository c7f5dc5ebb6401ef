package repository

import (
	"time"

	"github.com/deliverytrujillo/dispatch/internal/model"
)

type VehicleEntity struct {
	ID           int64     `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	LicensePlate string    `db:"license_plate" gorm:"column:license_plate;not null;uniqueIndex"`
	VehicleType  string    `db:"vehicle_type"  gorm:"column:vehicle_type;not null"`
	Status       string    `db:"status"        gorm:"column:status;not null;default:available"`
	CreatedAt    time.Time `db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (VehicleEntity) TableName() string {
	return "vehicles"
}

type DriverEntity struct {
	ID            int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	Name          string    `db:"name"           gorm:"column:name;not null"`
	LicenseNumber string    `db:"license_number" gorm:"column:license_number;not null"`
	Status        string    `db:"status"         gorm:"column:status;not null;default:available"`
	CreatedAt     time.Time `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (DriverEntity) TableName() string {
	return "drivers"
}

func toVehicleModel(e *VehicleEntity) *model.Vehicle {
	if e == nil {
		return nil
	}
	return &model.Vehicle{
		ID:           e.ID,
		LicensePlate: e.LicensePlate,
		VehicleType:  e.VehicleType,
		Status:       e.Status,
		CreatedAt:    e.CreatedAt,
	}
}

func toDriverModel(e *DriverEntity) *model.Driver {
	if e == nil {
		return nil
	}
	return &model.Driver{
		ID:            e.ID,
		Name:          e.Name,
		LicenseNumber: e.LicenseNumber,
		Status:        e.Status,
		CreatedAt:     e.CreatedAt,
	}
}
