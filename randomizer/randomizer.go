// Monte-Carlo 随机化
//
// 每次迭代按正态分布为结构中所有可变参数取值，计算一次光谱，最后取平均。
// 迭代区间切分给若干 worker，每个 worker 持有结构的独立副本和自己的随机数发生器。
// 随机数发生器在每次迭代开始时由 (Seed, 迭代序号) 重新设定种子，
// 因此每次迭代的取值只与序号有关，与切分方式和调度顺序无关。

package randomizer

import (
	"context"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"tmm/layer"
	"tmm/metrics"
	"tmm/model"
	"tmm/structure"
)

// Evaluator 在取值完成的结构副本上计算一次结果
type Evaluator func(s *structure.Structure) []float64

type Recorder interface {
	ObserveRun(kind, outcome string, d time.Duration)
	AddIterations(n int)
	AddWorkers(delta int)
}

type Runner struct {
	Iterations  int
	Parallelism int
	Seed        uint64

	// CPU 数，0 表示 runtime.NumCPU()
	Hardware int

	Recorder Recorder
}

type Result struct {
	RunID   string
	Workers int
	Y       []float64
}

func (r *Runner) hardware() int {
	if r.Hardware > 0 {
		return r.Hardware
	}
	return runtime.NumCPU()
}

func (r *Runner) observe(outcome string, start time.Time) {
	if r.Recorder != nil {
		r.Recorder.ObserveRun(metrics.KindRandomize, outcome, time.Since(start))
	}
}

// Run 执行随机化，返回各次迭代结果的逐点平均
//
// progress 可以为 nil；否则每完成一次迭代发送一次已完成的总数。
// worker 不等待 progress 的读取方：计数先进入容量为 Iterations 的缓冲，
// 再由单独的协程转发，全部转发完（或 ctx 取消）后关闭 progress。
// 校验失败时 Run 返回前关闭 progress。
// ctx 取消后各 worker 在当前迭代结束时退出，已有的部分结果丢弃。
func (r *Runner) Run(ctx context.Context, s *structure.Structure, eval Evaluator, progress chan<- int) (*Result, error) {
	if err := r.validate(s); err != nil {
		if progress != nil {
			close(progress)
		}
		return nil, err
	}
	return r.run(ctx, s, eval, progress)
}

func (r *Runner) validate(s *structure.Structure) error {
	if r.Iterations <= 0 || r.Parallelism <= 0 {
		return model.Invalidf("randomize", model.ErrBadIterations, "iterations %d, parallelism %d", r.Iterations, r.Parallelism)
	}
	if r.Iterations > model.MaxIterations {
		return model.Invalidf("randomize", model.ErrBadIterations, "iterations %d exceeds %d", r.Iterations, model.MaxIterations)
	}
	if !s.IsVariable() {
		return model.Invalid("randomize", model.ErrNoVariableParameters)
	}
	return nil
}

// 转发进度：ticks 关闭或 ctx 取消后关闭 progress
func forward(ctx context.Context, ticks <-chan int, progress chan<- int) {
	defer close(progress)
	for cnt := range ticks {
		select {
		case progress <- cnt:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Runner) run(ctx context.Context, s *structure.Structure, eval Evaluator, progress chan<- int) (*Result, error) {
	start := time.Now()
	n := r.Iterations
	tasks := partition(n, workers(n, r.Parallelism, r.hardware()))
	id := uuid.NewString()

	logger := log.WithFields(log.Fields{
		"run":        id,
		"iterations": n,
		"workers":    len(tasks),
		"seed":       r.Seed,
		"variables":  len(s.Vars()),
	})
	logger.Info("随机化开始")

	var (
		wg    sync.WaitGroup
		done  int64
		accs  = make([][]float64, len(tasks))
		ticks chan int
	)
	if progress != nil {
		ticks = make(chan int, n)
		go forward(ctx, ticks, progress)
		defer close(ticks)
	}
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task, s *structure.Structure) {
			defer wg.Done()
			if r.Recorder != nil {
				r.Recorder.AddWorkers(1)
				defer r.Recorder.AddWorkers(-1)
			}
			accs[i] = r.work(ctx, t, s, eval, func() {
				cnt := atomic.AddInt64(&done, 1)
				if r.Recorder != nil {
					r.Recorder.AddIterations(1)
				}
				if ticks != nil {
					// 每次迭代一个计数，缓冲不会满
					ticks <- int(cnt)
				}
			})
		}(i, t, s.Copy())
	}
	wg.Wait()

	if err := ctx.Err(); err != nil && atomic.LoadInt64(&done) < int64(n) {
		logger.WithField("completed", atomic.LoadInt64(&done)).Warn("随机化已取消")
		r.observe(metrics.OutcomeCanceled, start)
		return nil, err
	}

	y := reduce(accs)
	floats.Scale(1/float64(n), y)

	logger.WithField("elapsed", time.Since(start)).Info("随机化完成")
	r.observe(metrics.OutcomeOK, start)
	return &Result{RunID: id, Workers: len(tasks), Y: y}, nil
}

// 单个 worker：在自己的结构副本上依次执行区间内的迭代，返回结果之和
func (r *Runner) work(ctx context.Context, t task, s *structure.Structure, eval Evaluator, tick func()) []float64 {
	src := rand.NewPCG(r.Seed, 0)
	rng := rand.New(src)

	var acc []float64
	for i := t.start; i < t.end; i++ {
		if ctx.Err() != nil {
			return nil
		}
		src.Seed(r.Seed, uint64(i))
		s.Materialize(func(p layer.Param) float64 { return draw(rng, p) })
		y := eval(s)
		if acc == nil {
			acc = make([]float64, len(y))
		}
		if len(y) != len(acc) {
			model.Invariant("randomizer: iteration %d produced %d points, want %d", i, len(y), len(acc))
		}
		floats.Add(acc, y)
		tick()
	}
	return acc
}

// 正态分布取值
func draw(rng *rand.Rand, p layer.Param) float64 {
	return p.Mean + p.Deviation*rng.NormFloat64()
}

// 逐点求和，各 worker 结果长度必须一致
func reduce(accs [][]float64) []float64 {
	var res []float64
	for i, acc := range accs {
		if res == nil {
			res = make([]float64, len(acc))
		}
		if len(acc) != len(res) {
			model.Invariant("randomizer: worker %d accumulated %d points, want %d", i, len(acc), len(res))
		}
		floats.Add(res, acc)
	}
	return res
}
