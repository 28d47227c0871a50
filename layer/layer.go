package layer

import (
	"math"
	"math/cmplx"

	"tmm/matrix"
	"tmm/optics"
)

// Layer 光学层（或半无限介质）需要提供的能力
// 具体的色散模型都实现这个接口，传输矩阵的组装只依赖这里
type Layer interface {
	// 介电常数
	Permittivity(wl, temperature float64, v *Values) complex128

	// 层自身的传输矩阵
	Matrix(l optics.Light, v *Values) matrix.Matrix

	// 层中所有参数（包括常量）
	Params() []Param

	// 复制一份层，参数经过 f 映射
	Remap(f func(Param) Param) Layer
}

// 层自己定义吸收系数（如 Mie 散射层）
type Extincter interface {
	ExtinctionCoefficient(wl, temperature float64, v *Values) float64
}

type Scatterer interface {
	ScatteringCoefficient(wl, temperature float64, v *Values) float64
}

// 折射率
func N(l Layer, wl, temperature float64, v *Values) complex128 {
	return optics.ToRefractiveIndex(l.Permittivity(wl, temperature, v))
}

func ExtinctionCoefficient(l Layer, wl, temperature float64, v *Values) float64 {
	if e, ok := l.(Extincter); ok {
		return e.ExtinctionCoefficient(wl, temperature, v)
	}
	return optics.ToExtinctionCoefficient(N(l, wl, temperature, v), wl)
}

// 是否含可变参数
func IsVariable(l Layer) bool {
	for _, p := range l.Params() {
		if p.Variable {
			return true
		}
	}
	return false
}

// 非共振层的传输矩阵 diag(exp(iφ), exp(-iφ))
func layerMatrix(d float64, n complex128, l optics.Light) matrix.Matrix {
	cos := optics.CosThetaInLayer(l.Incidence, n, l.Angle)
	phi := complex(2*math.Pi*d/l.Wavelength, 0) * n * cos
	// 厚的吸收层中 Im(φ) < 0 会导致数值发散
	if imag(phi) < 0 {
		phi = -phi
	}
	return matrix.Diagonal(cmplx.Exp(phi*1i), cmplx.Exp(-phi*1i))
}

func remapAll(ps []*Param, f func(Param) Param) {
	for _, p := range ps {
		*p = f(*p)
	}
}
