package layer

import (
	"math"
	"math/cmplx"

	"tmm/matrix"
	"tmm/optics"
)

// 激子参数，能量单位 eV，均可参与随机化
// W0 共振频率，G0 辐射展宽，G 非辐射展宽，
// Wb = W0 + 激子束缚能，Gb 连续谱展宽，B 幅度系数，CReal + i·CImag 背景修正
type Exciton struct {
	W0, G0, G    Param
	Wb, Gb, B    Param
	CReal, CImag Param
}

func (x *Exciton) params() []*Param {
	return []*Param{&x.W0, &x.G0, &x.G, &x.Wb, &x.Gb, &x.B, &x.CReal, &x.CImag}
}

// 取值后的激子参数
type excitonValues struct {
	w0, g0, g float64
	wb, gb, b float64
	c         complex128
}

func (x *Exciton) values(v *Values) excitonValues {
	return excitonValues{
		w0: x.W0.Value(v), g0: x.G0.Value(v), g: x.G.Value(v),
		wb: x.Wb.Value(v), gb: x.Gb.Value(v), b: x.B.Value(v),
		c: complex(x.CReal.Value(v), x.CImag.Value(v)),
	}
}

// Excitonic 量子阱层，传输矩阵带有激子共振项
type Excitonic struct {
	D       Param
	Medium  Layer
	Exciton Exciton
}

func (e *Excitonic) Permittivity(wl, temperature float64, v *Values) complex128 {
	epsM := e.Medium.Permittivity(wl, temperature, v)
	return epsM * (e.contribution(wl, temperature, v) + 1 + e.Exciton.values(v).c)
}

func (e *Excitonic) Matrix(l optics.Light, v *Values) matrix.Matrix {
	x := e.Exciton.values(v)
	n := N(e, l.Wavelength, l.Temperature, v)
	cos := optics.CosThetaInLayer(l.Incidence, n, l.Angle)

	var gamma0e float64
	if l.Polarization == optics.P {
		gamma0e = x.g0 * real(cos)
	} else {
		gamma0e = x.g0 * real(1/cos)
	}
	phi := complex(2*math.Pi*e.D.Value(v)/l.Wavelength, 0) * n * cos
	s := complex(gamma0e, 0) / complex(optics.ToEnergy(l.Wavelength)-x.w0, x.g)

	m := matrix.Blank()
	m.Set(0, 0, cmplx.Exp(phi*1i)*complex(1+imag(s), -real(s)))
	m.Set(0, 1, complex(imag(s), -real(s)))
	m.Set(1, 0, complex(-imag(s), real(s)))
	m.Set(1, 1, cmplx.Exp(-phi*1i)*complex(1-imag(s), real(s)))
	return m.Checked()
}

func (e *Excitonic) Params() []Param {
	ps := []Param{e.D}
	for _, p := range e.Exciton.params() {
		ps = append(ps, *p)
	}
	return append(ps, e.Medium.Params()...)
}

func (e *Excitonic) Remap(f func(Param) Param) Layer {
	cp := *e
	cp.D = f(e.D)
	remapAll(cp.Exciton.params(), f)
	cp.Medium = e.Medium.Remap(f)
	return &cp
}

// 激子对量子阱介电常数的贡献（含连续谱吸收）
func (e *Excitonic) contribution(wl, temperature float64, v *Values) complex128 {
	x := e.Exciton.values(v)
	w := optics.ToEnergy(wl)

	waveVector := N(e.Medium, wl, temperature, v) * complex(2*math.Pi/optics.ToWavelength(x.w0), 0)
	wEff := complex(2*x.g0, 0) / cmplx.Sin(waveVector*complex(e.D.Value(v), 0))

	root := cmplx.Sqrt(complex(-w*w, -x.gb*w))
	continuum := cmplx.Atan(complex(x.wb, 0) / root)
	epsContinuum := (complex(math.Pi/2, 0) - continuum) / root

	return wEff * complex(x.w0*2/x.b, 0) * epsContinuum
}
