package model

import "time"

// Vehicles and drivers are managed elsewhere; this service only reads them
// to offer assignment choices for a route.

const FleetStatusAvailable = "available"

type Vehicle struct {
	ID           int64     `json:"id"`
	LicensePlate string    `json:"license_plate"`
	VehicleType  string    `json:"vehicle_type"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type Driver struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	LicenseNumber string    `json:"license_number"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
