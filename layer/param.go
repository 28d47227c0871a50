// 可变参数
//
// 层本身只保存参数的"形状"（均值、偏差、是否可变以及槽位下标），
// 当前取值保存在独立的 Values 缓冲区中，每个计算副本各持有一份。
// 这样随机化时不需要重建层对象，各 worker 之间也不共享可写状态。

package layer

import "tmm/model"

type Param struct {
	Mean      float64
	Deviation float64
	Variable  bool
	slot      int
}

// 常量参数，不占用槽位
func Const(value float64) Param {
	return Param{Mean: value, slot: -1}
}

func (p Param) Slot() int { return p.slot }

// 当前取值，可变参数从 Values 中读取
func (p Param) Value(v *Values) float64 {
	if !p.Variable {
		return p.Mean
	}
	return v.Get(p.slot)
}

// Registry 为可变参数分配槽位
type Registry struct {
	vars []Param
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Var(mean, deviation float64) Param {
	p := Param{Mean: mean, Deviation: deviation, Variable: true, slot: len(r.vars)}
	r.vars = append(r.vars, p)
	return p
}

// Rebind 为可变参数分配一个新的槽位，常量原样返回
func (r *Registry) Rebind(p Param) Param {
	if !p.Variable {
		return p
	}
	return r.Var(p.Mean, p.Deviation)
}

func (r *Registry) Vars() []Param {
	return append([]Param(nil), r.vars...)
}

func (r *Registry) Len() int { return len(r.vars) }

// Values 可变参数的当前取值，按槽位寻址
type Values struct {
	x   []float64
	set []bool
}

func NewValues(n int) *Values {
	return &Values{x: make([]float64, n), set: make([]bool, n)}
}

func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.x)
}

func (v *Values) Get(slot int) float64 {
	if slot < 0 || slot >= v.Len() {
		model.Invariant("layer: parameter slot %d out of range [0, %d)", slot, v.Len())
	}
	if !v.set[slot] {
		model.Invariant("layer: parameter slot %d read before materialization", slot)
	}
	return v.x[slot]
}

func (v *Values) Set(slot int, value float64) {
	if slot < 0 || slot >= v.Len() {
		model.Invariant("layer: parameter slot %d out of range [0, %d)", slot, v.Len())
	}
	v.x[slot] = value
	v.set[slot] = true
}

func (v *Values) Clone() *Values {
	if v == nil {
		return nil
	}
	return &Values{
		x:   append([]float64(nil), v.x...),
		set: append([]bool(nil), v.set...),
	}
}
