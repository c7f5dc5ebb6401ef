package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deliverytrujillo/dispatch/internal/geocode"
	"github.com/deliverytrujillo/dispatch/internal/model"
	"github.com/deliverytrujillo/dispatch/internal/repository"
	"github.com/deliverytrujillo/dispatch/pkg/prom"
)

var (
	ErrInvalidStatus = errors.New("invalid delivery status")
	ErrNotFound      = errors.New("delivery not found")
)

type DeliveryRepository interface {
	Create(ctx context.Context, d *model.Delivery) (*model.Delivery, error)
	List(ctx context.Context, f model.DeliveryFilter) ([]*model.Delivery, int64, error) // results, totalCount
	GetByID(ctx context.Context, id int64) (*model.Delivery, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Delivery, error)
	UpdateStatus(ctx context.Context, id int64, status model.DeliveryStatus) error
}

// CoordinateResolver is the fallback chain that turns an address into a
// point. It is total; the source names which step answered.
type CoordinateResolver interface {
	Resolve(ctx context.Context, address, district string) (geocode.Point, string)
}

type DeliveryService struct {
	deliveryRepo DeliveryRepository
	resolver     CoordinateResolver
}

// nowFunc is swapped in tests that assert on tracking numbers and filenames.
var nowFunc = time.Now

func NewDeliveryService(deliveryRepo DeliveryRepository, resolver CoordinateResolver) *DeliveryService {
	return &DeliveryService{
		deliveryRepo: deliveryRepo,
		resolver:     resolver,
	}
}

// Create registers a delivery. Coordinates present on the request are
// trusted as-is; otherwise the resolver chain produces them, so creation
// never fails for geocoding reasons.
func (s *DeliveryService) Create(ctx context.Context, p model.DeliveryCreateRequest) (*model.Delivery, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	address := geocode.ComposeAddress(p.Street, p.Urbanization, p.District)

	d := &model.Delivery{
		TrackingNumber:  model.NewTrackingNumber(nowFunc()),
		CustomerName:    strings.TrimSpace(p.CustomerName),
		CustomerPhone:   strings.TrimSpace(p.CustomerPhone),
		CustomerAddress: address,
		District:        strings.TrimSpace(p.District),
		PackageWeight:   p.PackageWeight,
		Priority:        p.Priority,
		Status:          model.DeliveryStatusPending,
	}
	if v := strings.TrimSpace(p.CustomerEmail); v != "" {
		d.CustomerEmail = &v
	}
	if v := strings.TrimSpace(p.PackageDescription); v != "" {
		d.PackageDescription = &v
	}
	if v := strings.TrimSpace(p.SpecialInstructions); v != "" {
		d.SpecialInstructions = &v
	}

	if p.Latitude != nil && p.Longitude != nil {
		d.CustomerLatitude = p.Latitude
		d.CustomerLongitude = p.Longitude
	} else {
		point, _ := s.resolver.Resolve(ctx, address, d.District)
		d.CustomerLatitude = &point.Lat
		d.CustomerLongitude = &point.Lon
	}

	created, err := s.deliveryRepo.Create(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}
	prom.AddDeliveryCreated(created.District)
	return created, nil
}

// List applies the store filters, then matches Search service-side against
// customer name, tracking number and address. Search narrows the page the
// store returned; the total still reflects the store filters.
func (s *DeliveryService) List(ctx context.Context, f model.DeliveryFilter) ([]*model.Delivery, int64, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}

	items, total, err := s.deliveryRepo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	if q := strings.TrimSpace(f.Search); q != "" {
		items = filterSearch(items, q)
	}
	return items, total, nil
}

func (s *DeliveryService) Get(ctx context.Context, id int64) (*model.Delivery, error) {
	d, err := s.deliveryRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return d, err
}

// StatusUpdateResult reports a batch update per id so partial success is
// visible to the caller.
type StatusUpdateResult struct {
	Updated  []int64 `json:"updated"`
	NotFound []int64 `json:"not_found"`
}

// UpdateStatus transitions each selected delivery. Unknown ids are reported,
// not fatal; an invalid status rejects the whole batch.
func (s *DeliveryService) UpdateStatus(ctx context.Context, ids []int64, status model.DeliveryStatus) (*StatusUpdateResult, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if len(ids) == 0 {
		return nil, errors.New("no delivery ids given")
	}

	res := &StatusUpdateResult{}
	for _, id := range ids {
		err := s.deliveryRepo.UpdateStatus(ctx, id, status)
		if errors.Is(err, repository.ErrNotFound) {
			res.NotFound = append(res.NotFound, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update delivery %d: %w", id, err)
		}
		res.Updated = append(res.Updated, id)
	}
	return res, nil
}


func filterSearch(items []*model.Delivery, q string) []*model.Delivery {
	q = strings.ToLower(q)
	out := make([]*model.Delivery, 0, len(items))
	for _, d := range items {
		if strings.Contains(strings.ToLower(d.CustomerName), q) ||
			strings.Contains(strings.ToLower(d.TrackingNumber), q) ||
			strings.Contains(strings.ToLower(d.CustomerAddress), q) {
			out = append(out, d)
		}
	}
	return out
}
