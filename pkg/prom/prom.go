package prom

import (
	"sync"

	xhttp "github.com/deliverytrujillo/dispatch/pkg/http"
	"github.com/deliverytrujillo/dispatch/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemGeocode   = "geocode"
	SystemOptimizer = "optimizer"
	SystemDelivery  = "delivery"
)

const (
	MetricGeocodeResolutions   = "resolutions_total"
	MetricOptimizerTriggers    = "triggers_total"
	MetricDeliveriesCreated    = "created_total"
	MetricOptimizerPollSeconds = "poll_duration_seconds"
)

var lockCreateMetric = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionHistogram = make(map[string]prometheus.Histogram)

var defaultLabels prometheus.Labels

// Create registers the service metrics. Label "source" on geocode
// resolutions distinguishes provider / district / jitter hits; "outcome" on
// optimizer triggers distinguishes accepted / rejected / failed.
func Create(host string, env string, nameSpace string) error {
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounterVec(SystemGeocode, MetricGeocodeResolutions, []string{"source"}))
	hasError(createCounterVec(SystemOptimizer, MetricOptimizerTriggers, []string{"outcome"}))
	hasError(createCounterVec(SystemDelivery, MetricDeliveriesCreated, []string{"district"}))
	hasError(createHistogram(SystemOptimizer, MetricOptimizerPollSeconds))

	return err
}

func ListenAndServer(port string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "url", url)
	if err := s.ListenAndServe(port); err != nil {
		logger.Panic("[metrics-server] http listen error", "error", err)
	}
}

func createCounterVec(subsystem, name string, labels []string) error {
	lockCreateMetric.Lock()
	defer lockCreateMetric.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionCounterVec[subsystem+name])
}

func createHistogram(subsystem, name string) error {
	lockCreateMetric.Lock()
	defer lockCreateMetric.Unlock()
	MetricCollectionHistogram[subsystem+name] = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	})
	return prometheus.Register(MetricCollectionHistogram[subsystem+name])
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Inc()
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func AddHistogram(subsystem, name string, number float64) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionHistogram[subsystem+name]; ok {
		v.Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram not found", "subsystem", subsystem, "name", name)
}

func AddGeocodeResolution(source string) {
	IncCounterVec(SystemGeocode, MetricGeocodeResolutions, source)
}

func AddOptimizerTrigger(outcome string) {
	IncCounterVec(SystemOptimizer, MetricOptimizerTriggers, outcome)
}

func AddDeliveryCreated(district string) {
	IncCounterVec(SystemDelivery, MetricDeliveriesCreated, district)
}

func AddOptimizerPollDuration(seconds float64) {
	AddHistogram(SystemOptimizer, MetricOptimizerPollSeconds, seconds)
}
