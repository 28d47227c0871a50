package layer

import (
	"tmm/matrix"
	"tmm/model"
	"tmm/optics"
)

// 折射率恒定的层
type ConstRefractiveIndex struct {
	D      Param
	NReal  Param
	NImage Param
}

func (c *ConstRefractiveIndex) n(v *Values) complex128 {
	return complex(c.NReal.Value(v), c.NImage.Value(v))
}

func (c *ConstRefractiveIndex) Permittivity(_, _ float64, v *Values) complex128 {
	n := c.n(v)
	return n * n
}

func (c *ConstRefractiveIndex) Matrix(l optics.Light, v *Values) matrix.Matrix {
	return layerMatrix(c.D.Value(v), c.n(v), l)
}

func (c *ConstRefractiveIndex) Params() []Param {
	return []Param{c.D, c.NReal, c.NImage}
}

func (c *ConstRefractiveIndex) Remap(f func(Param) Param) Layer {
	cp := *c
	remapAll([]*Param{&cp.D, &cp.NReal, &cp.NImage}, f)
	return &cp
}

// 介电常数恒定的层
type ConstPermittivity struct {
	D        Param
	EpsReal  Param
	EpsImage Param
}

func (c *ConstPermittivity) Permittivity(_, _ float64, v *Values) complex128 {
	return complex(c.EpsReal.Value(v), c.EpsImage.Value(v))
}

func (c *ConstPermittivity) Matrix(l optics.Light, v *Values) matrix.Matrix {
	return layerMatrix(c.D.Value(v), N(c, l.Wavelength, l.Temperature, v), l)
}

func (c *ConstPermittivity) Params() []Param {
	return []Param{c.D, c.EpsReal, c.EpsImage}
}

func (c *ConstPermittivity) Remap(f func(Param) Param) Layer {
	cp := *c
	remapAll([]*Param{&cp.D, &cp.EpsReal, &cp.EpsImage}, f)
	return &cp
}

// Medium 结构两侧的半无限介质，只参与界面矩阵
type Medium struct {
	Index complex128
}

func Air() *Medium {
	return &Medium{Index: 1}
}

func (m *Medium) Permittivity(_, _ float64, _ *Values) complex128 {
	return m.Index * m.Index
}

func (m *Medium) Matrix(_ optics.Light, _ *Values) matrix.Matrix {
	model.Invariant("layer: semi-infinite medium has no own transfer matrix")
	return matrix.Blank()
}

func (m *Medium) Params() []Param { return nil }

func (m *Medium) Remap(_ func(Param) Param) Layer {
	cp := *m
	return &cp
}

// 由前端的介质描述构造
func NewMedium(desc model.Medium) (*Medium, error) {
	switch desc.Type {
	case "", "air":
		return Air(), nil
	case "custom":
		if desc.NReal <= 0 {
			return nil, model.Invalidf("medium", model.ErrUnknownMedium, "custom medium needs positive n, got %v", desc.NReal)
		}
		return &Medium{Index: complex(desc.NReal, desc.NImag)}, nil
	}
	return nil, model.Invalidf("medium", model.ErrUnknownMedium, "%q", desc.Type)
}
