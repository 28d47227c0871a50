// 传输矩阵的组装与反射、透射、吸收的计算
//
// 矩阵约定：后经过的层左乘，即 M = I(last, right) · ... · M2 · I(1, 2) · M1 · I(left, 1)

package mirror

import (
	"math/cmplx"

	"tmm/layer"
	"tmm/matrix"
	"tmm/model"
	"tmm/optics"
	"tmm/structure"
)

type Mirror struct {
	Structure *structure.Structure
	Left      layer.Layer
	Right     layer.Layer
}

func New(s *structure.Structure, left, right layer.Layer) *Mirror {
	if s == nil {
		s = structure.Empty()
	}
	return &Mirror{Structure: s, Left: left, Right: right}
}

func (m *Mirror) values() *layer.Values {
	return m.Structure.Values()
}

// 入射介质折射率写入 Light，Snell 定律均以其为参考
func (m *Mirror) light(l optics.Light) optics.Light {
	l.Incidence = layer.N(m.Left, l.Wavelength, l.Temperature, nil)
	return l
}

// Matrix 整个结构（含两侧介质界面）的传输矩阵
func (m *Mirror) Matrix(l optics.Light) matrix.Matrix {
	l = m.light(l)
	v := m.values()

	res := matrix.Identity()
	prev := m.Left
	for _, b := range m.Structure.Blocks {
		if b.Repeat <= 0 {
			model.Invariant("mirror: block with repeat %d reached the assembler", b.Repeat)
		}
		if len(b.Layers) == 0 {
			continue
		}
		beforeFirst := prev
		first := b.Layers[0]
		last := b.Layers[len(b.Layers)-1]

		// 第一层的入射界面在周期闭合后再乘
		period := first.Matrix(l, v).Mul(matrix.Identity())
		for i := 1; i < len(b.Layers); i++ {
			cur := b.Layers[i]
			period = cur.Matrix(l, v).Mul(m.interfaceMatrix(b.Layers[i-1], cur, l)).Mul(period)
		}
		if b.Repeat > 1 {
			wrap := m.interfaceMatrix(last, first, l).Mul(period)
			period = period.Mul(wrap.Pow(b.Repeat - 1))
		}
		period = period.Mul(m.interfaceMatrix(beforeFirst, first, l))

		res = period.Mul(res)
		prev = last
	}
	res = m.interfaceMatrix(prev, m.Right, l).Mul(res)
	return res.Checked()
}

// 界面矩阵，反对角元的符号按两侧等效折射率实部的大小选择
func (m *Mirror) interfaceMatrix(left, right layer.Layer, l optics.Light) matrix.Matrix {
	v := m.values()
	n1 := layer.N(left, l.Wavelength, l.Temperature, v)
	n2 := layer.N(right, l.Wavelength, l.Temperature, v)
	cos1 := optics.CosThetaInLayer(l.Incidence, n1, l.Angle)
	cos2 := optics.CosThetaInLayer(l.Incidence, n2, l.Angle)

	var n1e, n2e complex128
	if l.Polarization == optics.P {
		n1e, n2e = n1/cos1, n2/cos2
	} else {
		n1e, n2e = n1*cos1, n2*cos2
	}

	diff := n2e - n1e
	if real(n2e) > real(n1e) {
		diff = n1e - n2e
	}

	res := matrix.Blank()
	res.SetDiagonal((n2e + n1e) / (2 * n2e))
	res.SetAntiDiagonal(diff / (2 * n2e))
	return res
}

// 复振幅反射系数
func (m *Mirror) R(l optics.Light) complex128 {
	mx := m.Matrix(l)
	return -mx.At(1, 0) / mx.At(1, 1)
}

// 复振幅透射系数
func (m *Mirror) T(l optics.Light) complex128 {
	mx := m.Matrix(l)
	return mx.Det() / mx.At(1, 1)
}

func (m *Mirror) Reflectance(l optics.Light) float64 {
	r := cmplx.Abs(m.R(l))
	return r * r
}

func (m *Mirror) Transmittance(l optics.Light) float64 {
	l = m.light(l)
	t := cmplx.Abs(m.T(l))

	nLeft := l.Incidence
	nRight := layer.N(m.Right, l.Wavelength, l.Temperature, nil)
	cosInc := optics.CosThetaIncident(l.Angle)
	cosRight := optics.CosThetaInLayer(nLeft, nRight, l.Angle)

	var factor complex128
	if l.Polarization == optics.P {
		factor = nRight * cosInc / (nLeft * cosRight)
	} else {
		factor = nRight * cosRight / (nLeft * cosInc)
	}
	return t * t * real(factor)
}

func (m *Mirror) Absorbance(l optics.Light) float64 {
	return 1 - m.Reflectance(l) - m.Transmittance(l)
}

func (m *Mirror) firstLayer() layer.Layer {
	first, err := m.Structure.FirstLayer()
	if err != nil {
		model.Invariant("mirror: first-layer quantity requested for an empty structure")
	}
	return first
}

// 以下只与第一层有关

// 介电常数取 n²，n 的虚部非负
func (m *Mirror) Permittivity(l optics.Light) complex128 {
	n := m.RefractiveIndex(l)
	return n * n
}

func (m *Mirror) RefractiveIndex(l optics.Light) complex128 {
	return layer.N(m.firstLayer(), l.Wavelength, l.Temperature, m.values())
}

func (m *Mirror) ExtinctionCoefficient(l optics.Light) float64 {
	return layer.ExtinctionCoefficient(m.firstLayer(), l.Wavelength, l.Temperature, m.values())
}

func (m *Mirror) ScatteringCoefficient(l optics.Light) float64 {
	s, ok := m.firstLayer().(layer.Scatterer)
	if !ok {
		model.Invariant("mirror: first layer has no scattering coefficient")
	}
	return s.ScatteringCoefficient(l.Wavelength, l.Temperature, m.values())
}

// Compute 按计算模式返回结果，实数模式虚部为 0
func (m *Mirror) Compute(mode optics.Mode, l optics.Light) complex128 {
	switch mode {
	case optics.Reflectance:
		return complex(m.Reflectance(l), 0)
	case optics.Transmittance:
		return complex(m.Transmittance(l), 0)
	case optics.Absorbance:
		return complex(m.Absorbance(l), 0)
	case optics.Permittivity:
		return m.Permittivity(l)
	case optics.RefractiveIndex:
		return m.RefractiveIndex(l)
	case optics.ExtinctionCoefficient:
		return complex(m.ExtinctionCoefficient(l), 0)
	case optics.ScatteringCoefficient:
		return complex(m.ScatteringCoefficient(l), 0)
	}
	model.Invariant("mirror: unknown mode %v", mode)
	return 0
}
