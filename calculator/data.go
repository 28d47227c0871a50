package calculator

import (
	"math"
	"sync"

	"tmm/model"
)

// 最近一次成功计算的结果
type data struct {
	mu       sync.RWMutex
	spectrum model.Spectrum
}

func (d *data) get() model.Spectrum {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.spectrum.Copy()
}

func (d *data) commit(s model.Spectrum) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spectrum = s
}

// 波长点数，(end-start)/step 的小数误差在 1e-9 以内时计入 end
func points(r model.Range) float64 {
	return math.Floor((r.End-r.Start)/r.Step+1e-9) + 1
}

// 波长序列 start, start+step, ... 不超过 end
// 每个点由下标直接算出，避免累加误差
func wavelengths(r model.Range) []float64 {
	n := int(points(r))
	x := make([]float64, n)
	for i := range x {
		x[i] = r.Start + float64(i)*r.Step
	}
	return x
}

// 复数模式下前一半为实部，后一半为虚部
func split(y []float64, complexMode bool) (re, im []float64) {
	if !complexMode {
		return y, nil
	}
	half := len(y) / 2
	return y[:half], y[half:]
}
