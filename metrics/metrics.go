// Prometheus 指标：计算次数、耗时、随机化迭代数与工作协程数
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 计算类型
const (
	KindCompute   = "compute"
	KindRandomize = "randomize"
)

// 计算结果
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

type Collector struct {
	gatherer prometheus.Gatherer

	Runs         *prometheus.CounterVec
	RunDurations *prometheus.HistogramVec
	Iterations   prometheus.Counter
	Workers      prometheus.Gauge
	SweepPoints  prometheus.Gauge
}

// NewCollector 注册指标，reg 为 nil 时使用全局注册表
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tmm_runs_total",
		Help: "Number of finished computations, labeled by kind and outcome.",
	}, []string{"kind", "outcome"}), "tmm_runs_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tmm_run_duration_seconds",
		Help:    "Computation wall time in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"kind"}), "tmm_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	iterations, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tmm_randomization_iterations_total",
		Help: "Number of completed Monte-Carlo iterations.",
	}), "tmm_randomization_iterations_total")
	if err != nil {
		return nil, err
	}

	workers, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tmm_randomization_workers",
		Help: "Number of Monte-Carlo workers currently running.",
	}), "tmm_randomization_workers")
	if err != nil {
		return nil, err
	}

	points, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tmm_sweep_points",
		Help: "Number of wavelength points in the current sweep.",
	}), "tmm_sweep_points")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:     gatherer,
		Runs:         runs,
		RunDurations: durations,
		Iterations:   iterations,
		Workers:      workers,
		SweepPoints:  points,
	}, nil
}

// Handler /metrics
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// 以下方法允许 c 为 nil，此时不记录

func (c *Collector) ObserveRun(kind, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues(kind, outcome).Inc()
	c.RunDurations.WithLabelValues(kind).Observe(d.Seconds())
}

func (c *Collector) AddIterations(n int) {
	if c == nil {
		return
	}
	c.Iterations.Add(float64(n))
}

func (c *Collector) AddWorkers(delta int) {
	if c == nil {
		return
	}
	c.Workers.Add(float64(delta))
}

func (c *Collector) SetSweepPoints(n int) {
	if c == nil {
		return
	}
	c.SweepPoints.Set(float64(n))
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
