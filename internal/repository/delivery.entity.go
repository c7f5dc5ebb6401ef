package repository

import (
	"time"

	"github.com/deliverytrujillo/dispatch/internal/model"
)

type DeliveryEntity struct {
	ID                  int64     `db:"id"                   gorm:"primaryKey;autoIncrement;column:id"`
	TrackingNumber      string    `db:"tracking_number"      gorm:"column:tracking_number;not null;uniqueIndex"`
	CustomerName        string    `db:"customer_name"        gorm:"column:customer_name;not null"`
	CustomerPhone       string    `db:"customer_phone"       gorm:"column:customer_phone;not null"`
	CustomerEmail       *string   `db:"customer_email"       gorm:"column:customer_email"`
	CustomerAddress     string    `db:"customer_address"     gorm:"column:customer_address;not null"`
	District            string    `db:"district"             gorm:"column:district;index"`
	CustomerLatitude    *float64  `db:"customer_latitude"    gorm:"column:customer_latitude"`
	CustomerLongitude   *float64  `db:"customer_longitude"   gorm:"column:customer_longitude"`
	PackageDescription  *string   `db:"package_description"  gorm:"column:package_description"`
	PackageWeight       float64   `db:"package_weight"       gorm:"column:package_weight;not null"`
	Priority            int       `db:"priority"             gorm:"column:priority;not null;default:3"`
	Status              string    `db:"status"               gorm:"column:status;not null;index;default:pending"`
	SpecialInstructions *string   `db:"special_instructions" gorm:"column:special_instructions"`
	AssignedDriverID    *int64    `db:"assigned_driver_id"   gorm:"column:assigned_driver_id;index"`
	CreatedAt           time.Time `db:"created_at"           gorm:"column:created_at;autoCreateTime"`
}

func (DeliveryEntity) TableName() string {
	return "deliveries"
}

func toDeliveryEntity(d *model.Delivery) *DeliveryEntity {
	if d == nil {
		return nil
	}
	return &DeliveryEntity{
		ID:                  d.ID,
		TrackingNumber:      d.TrackingNumber,
		CustomerName:        d.CustomerName,
		CustomerPhone:       d.CustomerPhone,
		CustomerEmail:       d.CustomerEmail,
		CustomerAddress:     d.CustomerAddress,
		District:            d.District,
		CustomerLatitude:    d.CustomerLatitude,
		CustomerLongitude:   d.CustomerLongitude,
		PackageDescription:  d.PackageDescription,
		PackageWeight:       d.PackageWeight,
		Priority:            d.Priority,
		Status:              string(d.Status),
		SpecialInstructions: d.SpecialInstructions,
		AssignedDriverID:    d.AssignedDriverID,
		CreatedAt:           d.CreatedAt,
	}
}

func toDeliveryModel(e *DeliveryEntity) *model.Delivery {
	if e == nil {
		return nil
	}
	return &model.Delivery{
		ID:                  e.ID,
		TrackingNumber:      e.TrackingNumber,
		CustomerName:        e.CustomerName,
		CustomerPhone:       e.CustomerPhone,
		CustomerEmail:       e.CustomerEmail,
		CustomerAddress:     e.CustomerAddress,
		District:            e.District,
		CustomerLatitude:    e.CustomerLatitude,
		CustomerLongitude:   e.CustomerLongitude,
		PackageDescription:  e.PackageDescription,
		PackageWeight:       e.PackageWeight,
		Priority:            e.Priority,
		Status:              model.DeliveryStatus(e.Status),
		SpecialInstructions: e.SpecialInstructions,
		AssignedDriverID:    e.AssignedDriverID,
		CreatedAt:           e.CreatedAt,
	}
}

func toDeliveryModels(entities []*DeliveryEntity) []*model.Delivery {
	if entities == nil {
		return nil
	}
	models := make([]*model.Delivery, len(entities))
	for i, e := range entities {
		models[i] = toDeliveryModel(e)
	}
	return models
}
