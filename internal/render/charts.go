package render

import (
	"sort"
	"time"

	"github.com/deliverytrujillo/dispatch/internal/model"
)

// Chart series for the dashboard. The frontend renders these verbatim, so
// the shapes stay flat and stable.

type PieSlice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type DriverSeries struct {
	DriverID int64      `json:"driver_id"`
	Driver   string     `json:"driver"`
	Days     []DayCount `json:"days"`
}

const dayFormat = "2006-01-02"

// StatusBreakdown counts deliveries per status. Slices are ordered by the
// status lifecycle, not by count, so the legend stays stable across loads.
func StatusBreakdown(deliveries []*model.Delivery) []PieSlice {
	counts := make(map[model.DeliveryStatus]int)
	for _, d := range deliveries {
		counts[d.Status]++
	}

	order := []model.DeliveryStatus{
		model.DeliveryStatusPending,
		model.DeliveryStatusAssigned,
		model.DeliveryStatusInTransit,
		model.DeliveryStatusDelivered,
		model.DeliveryStatusFailed,
		model.DeliveryStatusCancelled,
	}

	slices := make([]PieSlice, 0, len(order))
	for _, s := range order {
		if counts[s] == 0 {
			continue
		}
		slices = append(slices, PieSlice{
			Label: string(s),
			Value: counts[s],
			Color: statusColor(s),
		})
	}
	return slices
}

// DeliveriesPerDay buckets deliveries by creation date, ascending.
func DeliveriesPerDay(deliveries []*model.Delivery) []DayCount {
	counts := make(map[string]int)
	for _, d := range deliveries {
		counts[d.CreatedAt.Format(dayFormat)]++
	}
	return sortedDayCounts(counts)
}

// DriverDeliveriesPerDay builds one per-day series per driver, covering
// deliveries that are assigned to someone. Drivers without deliveries get no
// series.
func DriverDeliveriesPerDay(deliveries []*model.Delivery, drivers []*model.Driver) []DriverSeries {
	names := make(map[int64]string, len(drivers))
	for _, dr := range drivers {
		names[dr.ID] = dr.Name
	}

	perDriver := make(map[int64]map[string]int)
	for _, d := range deliveries {
		if d.AssignedDriverID == nil {
			continue
		}
		id := *d.AssignedDriverID
		if perDriver[id] == nil {
			perDriver[id] = make(map[string]int)
		}
		perDriver[id][d.CreatedAt.Format(dayFormat)]++
	}

	out := make([]DriverSeries, 0, len(perDriver))
	for id, days := range perDriver {
		name := names[id]
		if name == "" {
			name = "unknown"
		}
		out = append(out, DriverSeries{
			DriverID: id,
			Driver:   name,
			Days:     sortedDayCounts(days),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out
}

// DriverDayWindow restricts a series to the last n days ending today.
func DriverDayWindow(series []DayCount, now time.Time, n int) []DayCount {
	cutoff := now.AddDate(0, 0, -n).Format(dayFormat)
	out := make([]DayCount, 0, len(series))
	for _, dc := range series {
		if dc.Day > cutoff {
			out = append(out, dc)
		}
	}
	return out
}

func sortedDayCounts(counts map[string]int) []DayCount {
	out := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, DayCount{Day: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
