package model

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// DeliveryStatus is the lifecycle state of a delivery. Deliveries are never
// hard-deleted; cancellation is a status transition.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusAssigned  DeliveryStatus = "assigned"
	DeliveryStatusInTransit DeliveryStatus = "in_transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
)

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusAssigned, DeliveryStatusInTransit,
		DeliveryStatusDelivered, DeliveryStatusFailed, DeliveryStatusCancelled:
		return true
	}
	return false
}

type Delivery struct {
	ID                  int64          `json:"id"`
	TrackingNumber      string         `json:"tracking_number"`
	CustomerName        string         `json:"customer_name"`
	CustomerPhone       string         `json:"customer_phone"`
	CustomerEmail       *string        `json:"customer_email,omitempty"`
	CustomerAddress     string         `json:"customer_address"`
	District            string         `json:"district"`
	CustomerLatitude    *float64       `json:"customer_latitude,omitempty"`
	CustomerLongitude   *float64       `json:"customer_longitude,omitempty"`
	PackageDescription  *string        `json:"package_description,omitempty"`
	PackageWeight       float64        `json:"package_weight"`
	Priority            int            `json:"priority"`
	Status              DeliveryStatus `json:"status"`
	SpecialInstructions *string        `json:"special_instructions,omitempty"`
	AssignedDriverID    *int64         `json:"assigned_driver_id,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

// HasCoordinates reports whether the delivery was geolocated. Coordinates,
// once set, are authoritative; nothing re-geocodes them.
func (d *Delivery) HasCoordinates() bool {
	return d.CustomerLatitude != nil && d.CustomerLongitude != nil
}

// DeliveryCreateRequest is the input for creating a delivery. Street and
// district are required separately so the full address can be composed and
// the district can drive the coordinate fallback.
type DeliveryCreateRequest struct {
	CustomerName        string
	CustomerPhone       string
	CustomerEmail       string
	Street              string
	Urbanization        string
	District            string
	PackageDescription  string
	PackageWeight       float64
	Priority            int
	SpecialInstructions string

	// Pre-resolved coordinates, carried explicitly with the request instead
	// of ambient session state. When set, the resolver is skipped.
	Latitude  *float64
	Longitude *float64
}

func (p DeliveryCreateRequest) Validate() error {
	if strings.TrimSpace(p.CustomerName) == "" {
		return errors.New("customer_name is required")
	}
	if strings.TrimSpace(p.CustomerPhone) == "" {
		return errors.New("customer_phone is required")
	}
	if strings.TrimSpace(p.Street) == "" {
		return errors.New("street is required")
	}
	if strings.TrimSpace(p.District) == "" {
		return errors.New("district is required")
	}
	if p.PackageWeight <= 0 {
		return errors.New("package_weight must be greater than zero")
	}
	if p.Priority < 1 || p.Priority > 5 {
		return errors.New("priority must be between 1 and 5")
	}
	return nil
}

// DeliveryFilter controls List queries. Status, priority and district are
// equality filters pushed to the store; Search is matched service-side
// against customer name, tracking number and address.
type DeliveryFilter struct {
	Status   *DeliveryStatus
	Priority *int
	District *string
	DriverID *int64
	Search   string
	Limit    int
	Offset   int
	Desc     bool
}

// NewTrackingNumber builds a human-readable delivery identifier encoding the
// creation date: "TRU" + yymmdd + 4 random digits.
func NewTrackingNumber(now time.Time) string {
	return fmt.Sprintf("TRU%s%d", now.Format("060102"), 1000+rand.Intn(9000))
}
