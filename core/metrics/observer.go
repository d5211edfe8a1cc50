package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/subject/pkg/broadcast"
)

// Observer records broadcast actor activity. It implements broadcast.Observer.
type Observer struct {
	Subscribers prometheus.Gauge
	Broadcasts  prometheus.Counter
	Deliveries  prometheus.Counter
	Pruned      prometheus.Counter
	Stops       *prometheus.CounterVec
}

var _ broadcast.Observer = (*Observer)(nil)

// NewObserver creates and registers subject metrics on reg.
// Every series carries a "subject" label set to name.
func NewObserver(reg prometheus.Registerer, name string) *Observer {
	labels := prometheus.Labels{"subject": name}

	o := &Observer{
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "subscribers",
			Help:        "Number of registered subscribers.",
			ConstLabels: labels,
		}),
		Broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "broadcasts_total",
			Help:        "Total number of values fanned out.",
			ConstLabels: labels,
		}),
		Deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "deliveries_total",
			Help:        "Total number of values handed to subscribers.",
			ConstLabels: labels,
		}),
		Pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "pruned_total",
			Help:        "Total number of abandoned subscribers removed.",
			ConstLabels: labels,
		}),
		Stops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "stops_total",
			Help:        "Total number of actor exits by reason.",
			ConstLabels: labels,
		}, []string{"reason"}),
	}

	reg.MustRegister(o.Subscribers, o.Broadcasts, o.Deliveries, o.Pruned, o.Stops)
	return o
}

func (o *Observer) Subscribed(subscribers int) {
	o.Subscribers.Set(float64(subscribers))
}

func (o *Observer) Broadcast(delivered, pruned int) {
	o.Broadcasts.Inc()
	o.Deliveries.Add(float64(delivered))
	if pruned > 0 {
		o.Pruned.Add(float64(pruned))
		o.Subscribers.Sub(float64(pruned))
	}
}

func (o *Observer) Stopped(reason broadcast.StopReason) {
	o.Subscribers.Set(0)
	o.Stops.WithLabelValues(reason.String()).Inc()
}
