package layer

import (
	"tmm/matrix"
	"tmm/optics"
)

// Drude 模型，能量单位 eV
// ε = ε∞ - ωp² / (ω(ω + iγ))
type Drude struct {
	D       Param
	WPlasma Param
	Gamma   Param
	EpsInf  Param
}

func (d *Drude) Permittivity(wl, _ float64, v *Values) complex128 {
	w := complex(optics.ToEnergy(wl), 0)
	wp := d.WPlasma.Value(v)
	numerator := complex(wp*wp, 0)
	denominator := w * (w + complex(0, d.Gamma.Value(v)))
	return complex(d.EpsInf.Value(v), 0) - numerator/denominator
}

func (d *Drude) Matrix(l optics.Light, v *Values) matrix.Matrix {
	return layerMatrix(d.D.Value(v), N(d, l.Wavelength, l.Temperature, v), l)
}

func (d *Drude) Params() []Param {
	return []Param{d.D, d.WPlasma, d.Gamma, d.EpsInf}
}

func (d *Drude) Remap(f func(Param) Param) Layer {
	cp := *d
	remapAll([]*Param{&cp.D, &cp.WPlasma, &cp.Gamma, &cp.EpsInf}, f)
	return &cp
}
