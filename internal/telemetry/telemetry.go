// Package telemetry exports control loop state as prometheus metrics.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/san-kum/pidroad/internal/sim"
)

const namespace = "pidroad"

// Collector is a sim.Observer that mirrors every tick into prometheus
// gauges and counters.
type Collector struct {
	correction  prometheus.Gauge
	accumulator prometheus.Gauge
	errorGauge  prometheus.Gauge
	position    prometheus.Gauge
	ticks       prometheus.Counter
	saturated   prometheus.Counter
	resets      prometheus.Counter
}

func NewCollector() *Collector {
	return &Collector{
		correction: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "correction",
			Help:      "Correction returned by the controller on the last tick.",
		}),
		accumulator: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accumulator",
			Help:      "Integral accumulator after the last tick.",
		}),
		errorGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "error",
			Help:      "Distance from the setpoint measured on the last tick.",
		}),
		position: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "position",
			Help:      "Car position measured on the last tick.",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Count of control ticks.",
		}),
		saturated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saturated_total",
			Help:      "Count of ticks where the output clamp engaged.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Count of zero-crossing accumulator resets.",
		}),
	}
}

// Register adds all metrics to reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, m := range []prometheus.Collector{
		c.correction, c.accumulator, c.errorGauge, c.position,
		c.ticks, c.saturated, c.resets,
	} {
		if err := reg.Register(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) OnTick(s sim.Sample) {
	c.correction.Set(s.Correction)
	c.accumulator.Set(s.Accumulator)
	c.errorGauge.Set(s.Error)
	c.position.Set(s.Position)
	c.ticks.Inc()
	if s.Saturated {
		c.saturated.Inc()
	}
	if s.Reset {
		c.resets.Inc()
	}
}

// Serve exposes reg on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
