package layer

import (
	"math"
	"math/cmplx"

	"tmm/matrix"
	"tmm/optics"
)

// 复合层：基体中分布着颗粒（颗粒只用到其介电常数）
type composite struct {
	D        Param
	Medium   Layer
	Particle Layer
	F        Param // 体积分数
}

func (c *composite) mediumPermittivity(wl, temperature float64, v *Values) complex128 {
	return c.Medium.Permittivity(wl, temperature, v)
}

func (c *composite) particlePermittivity(wl, temperature float64, v *Values) complex128 {
	return c.Particle.Permittivity(wl, temperature, v)
}

func (c *composite) params() []Param {
	ps := []Param{c.D, c.F}
	ps = append(ps, c.Medium.Params()...)
	return append(ps, c.Particle.Params()...)
}

func (c composite) remap(f func(Param) Param) composite {
	remapAll([]*Param{&c.D, &c.F}, f)
	c.Medium = c.Medium.Remap(f)
	c.Particle = c.Particle.Remap(f)
	return c
}

// EffectiveMedium 有效介质近似（Maxwell-Garnett）
type EffectiveMedium struct {
	composite
}

func NewEffectiveMedium(d Param, medium, particle Layer, f Param) *EffectiveMedium {
	return &EffectiveMedium{composite{D: d, Medium: medium, Particle: particle, F: f}}
}

func (e *EffectiveMedium) Permittivity(wl, temperature float64, v *Values) complex128 {
	epsM := e.mediumPermittivity(wl, temperature, v)
	epsP := e.particlePermittivity(wl, temperature, v)
	f := complex(e.F.Value(v), 0)
	numerator := (epsP-epsM)*2*f + epsP + 2*epsM
	denominator := 2*epsM + epsP - (epsP-epsM)*f
	return epsM * numerator / denominator
}

func (e *EffectiveMedium) Matrix(l optics.Light, v *Values) matrix.Matrix {
	return layerMatrix(e.D.Value(v), N(e, l.Wavelength, l.Temperature, v), l)
}

func (e *EffectiveMedium) Params() []Param { return e.params() }

func (e *EffectiveMedium) Remap(f func(Param) Param) Layer {
	return &EffectiveMedium{e.remap(f)}
}

// Mie 小颗粒 Mie 散射，保留一阶或前两阶系数
// 介电常数取基体的，吸收与散射由 Mie 系数给出
type Mie struct {
	composite
	R      Param // 颗粒半径，nm
	Orders int   // 1 或 2

	// 吸收系数中是否计入基体自身的吸收
	IncludeMediumAbsorption bool
}

func NewMie(d Param, medium, particle Layer, f, r Param, orders int) *Mie {
	if orders != 2 {
		orders = 1
	}
	return &Mie{composite: composite{D: d, Medium: medium, Particle: particle, F: f}, R: r, Orders: orders}
}

func (m *Mie) Permittivity(wl, temperature float64, v *Values) complex128 {
	return m.mediumPermittivity(wl, temperature, v)
}

func (m *Mie) Matrix(l optics.Light, v *Values) matrix.Matrix {
	return layerMatrix(m.D.Value(v), N(m, l.Wavelength, l.Temperature, v), l)
}

func (m *Mie) Params() []Param {
	return append(m.params(), m.R)
}

func (m *Mie) Remap(f func(Param) Param) Layer {
	cp := *m
	cp.composite = m.remap(f)
	cp.R = f(m.R)
	return &cp
}

func (m *Mie) ExtinctionCoefficient(wl, temperature float64, v *Values) float64 {
	epsM := m.mediumPermittivity(wl, temperature, v)
	ext, _ := m.coefficients(wl, temperature, v)
	if m.IncludeMediumAbsorption {
		ext += optics.ToExtinctionCoefficient(optics.ToRefractiveIndex(epsM), wl)
	}
	return ext
}

func (m *Mie) ScatteringCoefficient(wl, temperature float64, v *Values) float64 {
	_, sca := m.coefficients(wl, temperature, v)
	return sca
}

// 返回 (alphaExt, alphaSca)，单位 cm^-1
func (m *Mie) coefficients(wl, temperature float64, v *Values) (float64, float64) {
	epsM := m.mediumPermittivity(wl, temperature, v)
	epsP := m.particlePermittivity(wl, temperature, v)
	rCm := optics.ToCm(m.R.Value(v))

	k := 2 * math.Pi * real(optics.ToRefractiveIndex(epsM)) / optics.ToCm(wl)
	x := k * rCm
	mSq := epsP / epsM

	a, b := mieA(x, mSq), mieB(x, mSq)
	if m.Orders == 1 {
		a, b = a[:1], b[:1]
	}

	var cExt, cSca float64
	for i := range a {
		order := float64(2*(i+1) + 1)
		cExt += order * real(a[i]+b[i])
		cSca += order * (sq(cmplx.Abs(a[i])) + sq(cmplx.Abs(b[i])))
	}
	common1 := 2 * math.Pi / (k * k)
	common2 := 3.0 / 4.0 * m.F.Value(v) / (math.Pi * rCm * rCm * rCm)
	return common2 * common1 * cExt, common2 * common1 * cSca
}

func mieA(x float64, mSq complex128) []complex128 {
	c1 := (mSq - 1) / (mSq + 2)
	a1 := -1i*complex(2.0/3.0*math.Pow(x, 3), 0)*c1 -
		1i*complex(2.0/5.0*math.Pow(x, 5), 0)*(mSq-2)/(mSq+2)*c1 +
		complex(4.0/9.0*math.Pow(x, 6), 0)*c1*c1
	a2 := -1i * complex(math.Pow(x, 5)/15, 0) * (mSq - 1) / (mSq*2 + 3)
	return []complex128{a1, a2}
}

func mieB(x float64, mSq complex128) []complex128 {
	b1 := -1i * complex(math.Pow(x, 5)/45, 0) * (mSq - 1)
	return []complex128{b1, 0}
}

func sq(x float64) float64 { return x * x }
