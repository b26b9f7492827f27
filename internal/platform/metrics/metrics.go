package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersRegistered prometheus.Counter
	Logins          *prometheus.CounterVec
	ClientsCreated  prometheus.Counter
	ClientsUpdated  prometheus.Counter
	VisitsCreated   prometheus.Counter
	GeoLookups      *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	StreamsActive   *prometheus.GaugeVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return newWithRegisterer(prometheus.DefaultRegisterer)
}

// NewForTest creates metrics on a private registry so parallel test suites
// don't collide on the default registerer.
func NewForTest() *Metrics {
	return newWithRegisterer(prometheus.NewRegistry())
}

func newWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "cgl_users_registered_total",
			Help: "Total number of registered users",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cgl_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		ClientsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "cgl_clients_created_total",
			Help: "Total number of clients created",
		}),
		ClientsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "cgl_clients_updated_total",
			Help: "Total number of client updates",
		}),
		VisitsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "cgl_visits_created_total",
			Help: "Total number of visits registered",
		}),
		GeoLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cgl_geo_lookups_total",
			Help: "Geolocation provider lookups by result",
		}, []string{"result"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cgl_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "status"}),
		StreamsActive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cgl_streams_active",
			Help: "Open snapshot stream subscriptions by topic kind",
		}, []string{"kind"}),
	}
}
