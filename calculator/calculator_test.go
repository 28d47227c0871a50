package calculator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"

	"tmm/model"
)

const slab = `{"blocks":[{"repeat":1,"layers":[{"type":"const_n","d":100,"re":3.6}]}]}`

const variableSlab = `{"blocks":[{"repeat":2,"layers":[
  {"type":"const_n","d":{"mean":100,"deviation":2,"variable":true},"re":3.6},
  {"type":"const_n","d":80,"re":1.45}
]}]}`

const mie = `{"blocks":[{"repeat":1,"layers":[{"type":"mie","d":200,"f":0.01,"r":5,"orders":1,
  "medium":{"type":"const_n","re":3.5},
  "particle":{"type":"drude","w_plasma":9,"gamma":0.1,"eps_inf":1}}]}]}`

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Workers = 3
	cfg.Parallelism = 2
	cfg.Iterations = 20
	return cfg
}

func env(mode string, start, end, step float64) model.Env {
	return model.Env{
		Range:        model.Range{Start: start, End: end, Step: step},
		Mode:         mode,
		Polarization: "S",
		Temperature:  model.DefaultTemp,
		LeftMedium:   model.Medium{Type: "air"},
		RightMedium:  model.Medium{Type: "air"},
	}
}

func newCalculator(t *testing.T, desc string, e model.Env) Calculator {
	c := NewCalculator(testConfig(), nil)
	require.NoError(t, c.SetEnv(e))
	var sd model.StructureDescription
	require.NoError(t, json.Unmarshal([]byte(desc), &sd))
	require.NoError(t, c.SetStructure(sd))
	return c
}

func TestWavelengths(t *testing.T) {
	require.Equal(t, []float64{400, 400.5, 401, 401.5, 402}, wavelengths(model.Range{Start: 400, End: 402, Step: 0.5}))
	require.Equal(t, []float64{800}, wavelengths(model.Range{Start: 800, End: 800, Step: 1}))
	require.Len(t, wavelengths(model.Range{Start: 400, End: 1000, Step: 1}), 601)

	// 小步长不丢失终点，也没有累加误差
	x := wavelengths(model.Range{Start: 400, End: 401, Step: 0.1})
	require.Len(t, x, 11)
	require.InDelta(t, 401, x[10], 1e-12)
	x = wavelengths(model.Range{Start: 400, End: 1000, Step: 0.1})
	require.Len(t, x, 6001)
	require.InDelta(t, 1000, x[6000], 1e-9)
	x = wavelengths(model.Range{Start: 1, End: 2, Step: 0.01})
	require.Len(t, x, 101)
	require.InDelta(t, 2, x[100], 1e-12)

	// 终点不在网格上时不超过 end
	x = wavelengths(model.Range{Start: 400, End: 400.96, Step: 0.1})
	require.Len(t, x, 10)
	require.LessOrEqual(t, x[9], 400.96)
}

func TestCompute(t *testing.T) {
	c := newCalculator(t, slab, env("reflectance", 800, 800, 1))
	s, err := c.Compute(context.Background())
	require.NoError(t, err)
	require.Equal(t, []float64{800}, s.X)
	require.InDelta(t, 0.7139425567422965, s.YReal[0], 1e-12)
	require.Nil(t, s.YImaginary)

	require.Equal(t, s, c.Data())
}

func TestComputeSweepMatchesPointwise(t *testing.T) {
	c := newCalculator(t, variableSlab, env("transmittance", 500, 900, 10))
	all, err := c.Compute(context.Background())
	require.NoError(t, err)
	require.Len(t, all.X, 41)

	require.NoError(t, c.SetRange(model.Range{Start: 700, End: 700, Step: 1}))
	one, err := c.Compute(context.Background())
	require.NoError(t, err)
	require.Equal(t, all.YReal[20], one.YReal[0])
}

func TestComputeComplexMode(t *testing.T) {
	c := newCalculator(t, slab, env("refractive_index", 500, 600, 50))
	s, err := c.Compute(context.Background())
	require.NoError(t, err)
	require.Len(t, s.YImaginary, len(s.X))
	require.InDelta(t, 3.6, s.YReal[1], 1e-12)
}

func TestComputeValidation(t *testing.T) {
	c := NewCalculator(testConfig(), nil)
	require.NoError(t, c.SetEnv(env("permittivity", 500, 600, 10)))
	_, err := c.Compute(context.Background())
	require.ErrorIs(t, err, model.ErrEmptyStructure)

	c = newCalculator(t, slab, env("scattering coefficient", 500, 600, 10))
	_, err = c.Compute(context.Background())
	require.ErrorIs(t, err, model.ErrNotScattering)

	c = newCalculator(t, mie, env("scattering coefficient", 500, 600, 10))
	s, err := c.Compute(context.Background())
	require.NoError(t, err)
	require.Greater(t, s.YReal[0], 0.0)

	// 空结构下反射率等模式可以计算
	c = NewCalculator(testConfig(), nil)
	require.NoError(t, c.SetEnv(env("reflectance", 500, 600, 10)))
	s, err = c.Compute(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 0, s.YReal[0], 1e-12)
}

func TestSetEnvValidation(t *testing.T) {
	c := NewCalculator(testConfig(), nil)

	e := env("reflectance", 600, 500, 10)
	require.ErrorIs(t, c.SetEnv(e), model.ErrBadRange)

	e = env("reflectance", 500, 600, 0)
	require.ErrorIs(t, c.SetEnv(e), model.ErrBadRange)

	e = env("reflectance", 400, 1000, 1e-9)
	require.ErrorIs(t, c.SetEnv(e), model.ErrTooManyPoints)
	require.ErrorIs(t, c.SetRange(model.Range{Start: 400, End: 1000, Step: 1e-9}), model.ErrTooManyPoints)
	require.NoError(t, c.SetRange(model.Range{Start: 400, End: 1000, Step: 0.01}))

	e = env("colour", 500, 600, 10)
	require.ErrorIs(t, c.SetEnv(e), model.ErrUnknownMode)

	e = env("reflectance", 500, 600, 10)
	e.Angle = 90
	require.ErrorIs(t, c.SetEnv(e), model.ErrBadAngle)

	e = env("reflectance", 500, 600, 10)
	e.Polarization = "TM"
	require.ErrorIs(t, c.SetEnv(e), model.ErrUnknownPolarization)

	e = env("reflectance", 500, 600, 10)
	e.RightMedium = model.Medium{Type: "gold"}
	require.ErrorIs(t, c.SetEnv(e), model.ErrUnknownMedium)

	require.ErrorIs(t, c.SetRandomization(model.RandomizationParams{Iterations: 0, Parallelism: 1}), model.ErrBadIterations)
	require.NoError(t, c.SetRandomization(model.RandomizationParams{Iterations: 10, Parallelism: 1}))
}

func TestRandomizeWithoutVariables(t *testing.T) {
	c := newCalculator(t, slab, env("reflectance", 800, 800, 1))
	before, err := c.Compute(context.Background())
	require.NoError(t, err)

	progress := make(chan int, 10)
	_, err = c.Randomize(context.Background(), progress)
	require.ErrorIs(t, err, model.ErrNoVariableParameters)
	_, open := <-progress
	require.False(t, open)
	require.Equal(t, before, c.Data())
}

func TestRandomize(t *testing.T) {
	c := newCalculator(t, variableSlab, env("reflectance", 600, 700, 25))
	mean, err := c.Compute(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.SetRandomization(model.RandomizationParams{Iterations: 40, Parallelism: 4, Seed: 11}))
	progress := make(chan int, 100)
	a, err := c.Randomize(context.Background(), progress)
	require.NoError(t, err)
	require.Equal(t, mean.X, a.X)
	require.Len(t, a.YReal, len(a.X))
	require.Equal(t, a, c.Data())

	ticks := 0
	for range progress {
		ticks++
	}
	require.Equal(t, 40, ticks)

	// 小偏差时接近均值结果
	for i := range a.YReal {
		require.InDelta(t, mean.YReal[i], a.YReal[i], 0.1)
	}

	b, err := c.Randomize(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestRandomizeComplexMode(t *testing.T) {
	c := newCalculator(t, variableSlab, env("permittivity", 600, 700, 50))
	require.NoError(t, c.SetRandomization(model.RandomizationParams{Iterations: 5, Parallelism: 1, Seed: 2}))
	s, err := c.Randomize(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, s.YReal, 3)
	require.Len(t, s.YImaginary, 3)
	require.InDelta(t, 3.6*3.6, s.YReal[0], 1e-9)
}

func TestRandomizeCanceledKeepsPreviousResult(t *testing.T) {
	c := newCalculator(t, variableSlab, env("reflectance", 600, 700, 25))
	before, err := c.Compute(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Randomize(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, before, c.Data())
}

func TestCalcHub(t *testing.T) {
	h := NewCalcHub()
	require.False(t, h.StopSignal())

	ctx, err := h.StartSignal(context.Background())
	require.NoError(t, err)
	require.True(t, h.Running())

	_, err = h.StartSignal(context.Background())
	require.ErrorIs(t, err, ErrBusy)

	require.True(t, h.StopSignal())
	<-ctx.Done()
	h.FinishSignal()
	require.False(t, h.Running())

	_, err = h.StartSignal(context.Background())
	require.NoError(t, err)
	h.FinishSignal()
}

func TestExecutorTasks(t *testing.T) {
	e := newExecutor(4)
	for _, total := range []int{0, 1, 7, 8, 9, 100, 601} {
		tasks := e.tasks(total)
		covered := 0
		for i, tk := range tasks {
			if i > 0 {
				require.Equal(t, tasks[i-1].end, tk.start)
			}
			covered += tk.end - tk.start
		}
		require.Equal(t, total, covered)
	}

	hits := make([]int, 50)
	require.NoError(t, e.dispatchTask(context.Background(), len(hits), func(i int) { hits[i]++ }))
	for _, h := range hits {
		require.Equal(t, 1, h)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, e.dispatchTask(ctx, len(hits), func(i int) { hits[i]++ }), context.Canceled)
	for _, h := range hits {
		require.Equal(t, 1, h)
	}
}

func TestLoadConfig(t *testing.T) {
	file, err := ini.Load([]byte(`
[computation]
Workers = 2
Start = 300
End = 900
Step = 2
Temperature = 77

[randomization]
Iterations = 500
Parallelism = 3
Seed = 99
`))
	require.NoError(t, err)
	cfg := LoadConfig(file)
	require.Equal(t, 2, cfg.Workers)
	require.Equal(t, model.Range{Start: 300, End: 900, Step: 2}, cfg.Range)
	require.Equal(t, 77.0, cfg.Temperature)
	require.Equal(t, 500, cfg.Iterations)
	require.Equal(t, 3, cfg.Parallelism)
	require.Equal(t, uint64(99), cfg.Seed)

	def := DefaultConfig()
	require.Equal(t, model.DefaultTemp, def.Temperature)
	require.Equal(t, 100, def.Iterations)
}
