package calculator

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"tmm/layer"
	"tmm/metrics"
	"tmm/mirror"
	"tmm/model"
	"tmm/optics"
	"tmm/randomizer"
	"tmm/structure"
)

type calculator struct {
	mu    sync.Mutex
	state State

	cfg      Config
	data     data
	hub      *CalcHub
	executor *executor
	metrics  *metrics.Collector
}

// NewCalculator collector 可以为 nil
func NewCalculator(cfg Config, collector *metrics.Collector) Calculator {
	return &calculator{
		state:    newState(cfg),
		cfg:      cfg,
		hub:      NewCalcHub(),
		executor: newExecutor(cfg.Workers),
		metrics:  collector,
	}
}

func (c *calculator) GetCalcHub() *CalcHub {
	return c.hub
}

func (c *calculator) Data() model.Spectrum {
	return c.data.get()
}

// 计算前的检查：只与第一层有关的模式需要非空结构，散射模式需要第一层能给出散射系数
func validate(s State) error {
	if err := validateRange(s.Range); err != nil {
		return err
	}
	if !s.Mode.UsesFirstLayer() {
		return nil
	}
	first, err := s.Structure.FirstLayer()
	if err != nil {
		return model.Invalidf("mode", model.ErrEmptyStructure, "%v needs at least one layer", s.Mode)
	}
	if s.Mode == optics.ScatteringCoefficient {
		if _, ok := first.(layer.Scatterer); !ok {
			return model.Invalid("mode", model.ErrNotScattering)
		}
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	}
	return metrics.OutcomeError
}

// Compute 可变参数取均值，逐个波长计算
func (c *calculator) Compute(ctx context.Context) (model.Spectrum, error) {
	start := time.Now()
	spectrum, err := c.compute(ctx)
	c.metrics.ObserveRun(metrics.KindCompute, outcome(err), time.Since(start))
	return spectrum, err
}

func (c *calculator) compute(ctx context.Context) (model.Spectrum, error) {
	st := c.snapshot()
	if err := validate(st); err != nil {
		return model.Spectrum{}, err
	}

	s := st.Structure.Copy()
	s.MaterializeMeans()
	m := mirror.New(s, st.Left, st.Right)

	x := wavelengths(st.Range)
	c.metrics.SetSweepPoints(len(x))
	re := make([]float64, len(x))
	var im []float64
	if st.Mode.IsComplex() {
		im = make([]float64, len(x))
	}
	err := c.executor.dispatchTask(ctx, len(x), func(i int) {
		v := m.Compute(st.Mode, st.light(x[i]))
		re[i] = real(v)
		if im != nil {
			im[i] = imag(v)
		}
	})
	if err != nil {
		return model.Spectrum{}, err
	}

	spectrum := model.Spectrum{X: x, YReal: re, YImaginary: im}
	c.data.commit(spectrum)
	log.WithFields(log.Fields{
		"Mode":   st.Mode,
		"Points": len(x),
	}).Info("计算完成")
	return spectrum.Copy(), nil
}

// 一次迭代：在取值后的结构副本上扫描全部波长
func sweep(st State, x []float64) randomizer.Evaluator {
	return func(s *structure.Structure) []float64 {
		m := mirror.New(s, st.Left, st.Right)
		n := len(x)
		if st.Mode.IsComplex() {
			n *= 2
		}
		y := make([]float64, n)
		for i, wl := range x {
			v := m.Compute(st.Mode, st.light(wl))
			y[i] = real(v)
			if st.Mode.IsComplex() {
				y[len(x)+i] = imag(v)
			}
		}
		return y
	}
}

// Randomize 各周期的可变参数独立随机，结果为多次计算的平均
// 取消或出错时保留之前的结果
func (c *calculator) Randomize(ctx context.Context, progress chan<- int) (model.Spectrum, error) {
	st := c.snapshot()
	if err := validate(st); err != nil {
		if progress != nil {
			close(progress)
		}
		c.metrics.ObserveRun(metrics.KindRandomize, metrics.OutcomeError, 0)
		return model.Spectrum{}, err
	}

	x := wavelengths(st.Range)
	c.metrics.SetSweepPoints(len(x))
	runner := &randomizer.Runner{
		Iterations:  st.Random.Iterations,
		Parallelism: st.Random.Parallelism,
		Seed:        st.Random.Seed,
		Recorder:    c.metrics,
	}
	res, err := runner.Run(ctx, st.Structure.Flatten(), sweep(st, x), progress)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			c.metrics.ObserveRun(metrics.KindRandomize, metrics.OutcomeError, 0)
		}
		return model.Spectrum{}, err
	}

	re, im := split(res.Y, st.Mode.IsComplex())
	spectrum := model.Spectrum{X: x, YReal: re, YImaginary: im}
	c.data.commit(spectrum)
	log.WithFields(log.Fields{
		"run":        res.RunID,
		"Mode":       st.Mode,
		"Iterations": st.Random.Iterations,
	}).Info("随机化结果已更新")
	return spectrum.Copy(), nil
}
