package model

import "encoding/json"

// 光学计算参数配置，由前端下发
type Env struct {
	Range        Range   `json:"range"`
	Mode         string  `json:"mode"`
	Polarization string  `json:"polarization"`
	Angle        float64 `json:"angle"`       // 入射角，度
	Temperature  float64 `json:"temperature"` // 温度，K
	LeftMedium   Medium  `json:"left_medium"`
	RightMedium  Medium  `json:"right_medium"`
}

// 波长范围，单位 nm
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Step  float64 `json:"step"`
}

// 外部介质（半无限）
type Medium struct {
	Type  string  `json:"type"` // air 或 custom
	NReal float64 `json:"n_real"`
	NImag float64 `json:"n_imag"`
}

// 随机化计算参数
type RandomizationParams struct {
	Iterations  int    `json:"iterations"`
	Parallelism int    `json:"parallelism"`
	Seed        uint64 `json:"seed"`
}

// 结构描述：按顺序排列的 block
type StructureDescription struct {
	Blocks []BlockDescription `json:"blocks"`
}

type BlockDescription struct {
	Repeat int                `json:"repeat"`
	Layers []LayerDescription `json:"layers"`
}

// 层描述，不同类型使用不同字段
type LayerDescription struct {
	Type string `json:"type"`

	D *Param `json:"d,omitempty"` // 厚度，nm

	// const_n / const_eps
	Re *Param `json:"re,omitempty"`
	Im *Param `json:"im,omitempty"`

	// drude，能量单位 eV
	WPlasma *Param `json:"w_plasma,omitempty"`
	Gamma   *Param `json:"gamma,omitempty"`
	EpsInf  *Param `json:"eps_inf,omitempty"`

	// effective_medium / mie
	Medium   *LayerDescription `json:"medium,omitempty"`
	Particle *LayerDescription `json:"particle,omitempty"`
	F        *Param            `json:"f,omitempty"`
	R        *Param            `json:"r,omitempty"`
	Orders   int               `json:"orders,omitempty"`

	// mie：吸收系数中计入基体吸收
	MediumAbsorption bool `json:"medium_absorption,omitempty"`

	// excitonic
	Exciton *ExcitonDescription `json:"exciton,omitempty"`
}

// 激子参数，c_re / c_im 可省略（为 0）
type ExcitonDescription struct {
	W0 *Param `json:"w0"`
	G0 *Param `json:"g0"`
	G  *Param `json:"g"`
	Wb *Param `json:"wb"`
	Gb *Param `json:"gb"`
	B  *Param `json:"b"`
	CR *Param `json:"c_re,omitempty"`
	CI *Param `json:"c_im,omitempty"`
}

// 标量参数：Variable 为 true 时参与随机化
// JSON 中也可以直接写一个数字，表示常量
type Param struct {
	Mean      float64 `json:"mean"`
	Deviation float64 `json:"deviation"`
	Variable  bool    `json:"variable"`
}

func (p *Param) UnmarshalJSON(data []byte) error {
	var value float64
	if err := json.Unmarshal(data, &value); err == nil {
		*p = Param{Mean: value}
		return nil
	}
	type plain Param
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Param(v)
	return nil
}

// 计算结果：x 为波长，复数模式下 YImaginary 非空
type Spectrum struct {
	X          []float64 `json:"x"`
	YReal      []float64 `json:"y_real"`
	YImaginary []float64 `json:"y_imaginary,omitempty"`
}

func (s Spectrum) Copy() Spectrum {
	return Spectrum{
		X:          append([]float64(nil), s.X...),
		YReal:      append([]float64(nil), s.YReal...),
		YImaginary: append([]float64(nil), s.YImaginary...),
	}
}

// 前后端通信消息结构
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}
