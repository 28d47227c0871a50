package structure

import (
	"tmm/layer"
	"tmm/model"
)

// 层类型名称，与前端约定
const (
	TypeConstN          = "const_n"
	TypeConstEps        = "const_eps"
	TypeDrude           = "drude"
	TypeEffectiveMedium = "effective_medium"
	TypeMie             = "mie"
	TypeExcitonic       = "excitonic"
)

// Build 由前端下发的结构描述构造 Structure
// repeat = 0 或不含层的 block 在这里直接丢弃
func Build(desc model.StructureDescription) (*Structure, error) {
	b := &builder{reg: layer.NewRegistry()}
	var blocks []Block
	for i, bd := range desc.Blocks {
		if bd.Repeat < 0 {
			return nil, model.Invalidf("structure", model.ErrBadRepeat, "block %d: repeat %d", i, bd.Repeat)
		}
		if bd.Repeat == 0 || len(bd.Layers) == 0 {
			continue
		}
		layers := make([]layer.Layer, 0, len(bd.Layers))
		for j := range bd.Layers {
			l, err := b.layer(&bd.Layers[j], true)
			if err != nil {
				return nil, err
			}
			layers = append(layers, l)
		}
		blocks = append(blocks, Block{Repeat: bd.Repeat, Layers: layers})
	}
	return New(blocks, b.reg), nil
}

type builder struct {
	reg *layer.Registry
}

func (b *builder) param(p *model.Param, field, typ string) (layer.Param, error) {
	if p == nil {
		return layer.Param{}, model.Invalidf("structure", model.ErrMissingField, "%s: %s", typ, field)
	}
	if p.Variable {
		return b.reg.Var(p.Mean, p.Deviation), nil
	}
	return layer.Const(p.Mean), nil
}

// thickness 颗粒与复合层的基体不需要厚度
func (b *builder) thickness(d *model.Param, typ string, needed bool) (layer.Param, error) {
	if d == nil && !needed {
		return layer.Const(0), nil
	}
	p, err := b.param(d, "d", typ)
	if err != nil {
		return p, err
	}
	if p.Mean < 0 {
		return p, model.Invalidf("structure", model.ErrBadThickness, "%s: d = %v", typ, p.Mean)
	}
	return p, nil
}

func (b *builder) layer(ld *model.LayerDescription, needD bool) (layer.Layer, error) {
	if ld == nil {
		return nil, model.Invalidf("structure", model.ErrMissingField, "nested layer")
	}
	switch ld.Type {
	case TypeConstN, TypeConstEps, TypeDrude, TypeEffectiveMedium, TypeMie, TypeExcitonic:
	default:
		return nil, model.Invalidf("structure", model.ErrUnknownLayerType, "%q", ld.Type)
	}
	d, err := b.thickness(ld.D, ld.Type, needD)
	if err != nil {
		return nil, err
	}

	switch ld.Type {
	case TypeConstN, TypeConstEps:
		re, err := b.param(ld.Re, "re", ld.Type)
		if err != nil {
			return nil, err
		}
		im := layer.Const(0)
		if ld.Im != nil {
			if im, err = b.param(ld.Im, "im", ld.Type); err != nil {
				return nil, err
			}
		}
		if ld.Type == TypeConstN {
			return &layer.ConstRefractiveIndex{D: d, NReal: re, NImage: im}, nil
		}
		return &layer.ConstPermittivity{D: d, EpsReal: re, EpsImage: im}, nil

	case TypeDrude:
		wp, err := b.param(ld.WPlasma, "w_plasma", ld.Type)
		if err != nil {
			return nil, err
		}
		gamma, err := b.param(ld.Gamma, "gamma", ld.Type)
		if err != nil {
			return nil, err
		}
		epsInf, err := b.param(ld.EpsInf, "eps_inf", ld.Type)
		if err != nil {
			return nil, err
		}
		return &layer.Drude{D: d, WPlasma: wp, Gamma: gamma, EpsInf: epsInf}, nil

	case TypeEffectiveMedium, TypeMie:
		medium, err := b.layer(ld.Medium, false)
		if err != nil {
			return nil, err
		}
		particle, err := b.layer(ld.Particle, false)
		if err != nil {
			return nil, err
		}
		f, err := b.param(ld.F, "f", ld.Type)
		if err != nil {
			return nil, err
		}
		if ld.Type == TypeEffectiveMedium {
			return layer.NewEffectiveMedium(d, medium, particle, f), nil
		}
		r, err := b.param(ld.R, "r", ld.Type)
		if err != nil {
			return nil, err
		}
		mie := layer.NewMie(d, medium, particle, f, r, ld.Orders)
		mie.IncludeMediumAbsorption = ld.MediumAbsorption
		return mie, nil

	case TypeExcitonic:
		medium, err := b.layer(ld.Medium, false)
		if err != nil {
			return nil, err
		}
		if ld.Exciton == nil {
			return nil, model.Invalidf("structure", model.ErrMissingField, "%s: exciton", ld.Type)
		}
		exciton, err := b.exciton(ld.Exciton, ld.Type)
		if err != nil {
			return nil, err
		}
		return &layer.Excitonic{D: d, Medium: medium, Exciton: exciton}, nil
	}
	return nil, model.Invalidf("structure", model.ErrUnknownLayerType, "%q", ld.Type)
}

func (b *builder) exciton(x *model.ExcitonDescription, typ string) (layer.Exciton, error) {
	var e layer.Exciton
	required := []struct {
		dst   *layer.Param
		src   *model.Param
		field string
	}{
		{&e.W0, x.W0, "w0"}, {&e.G0, x.G0, "g0"}, {&e.G, x.G, "g"},
		{&e.Wb, x.Wb, "wb"}, {&e.Gb, x.Gb, "gb"}, {&e.B, x.B, "b"},
	}
	for _, r := range required {
		p, err := b.param(r.src, "exciton."+r.field, typ)
		if err != nil {
			return e, err
		}
		*r.dst = p
	}
	e.CReal, e.CImag = layer.Const(0), layer.Const(0)
	var err error
	if x.CR != nil {
		if e.CReal, err = b.param(x.CR, "exciton.c_re", typ); err != nil {
			return e, err
		}
	}
	if x.CI != nil {
		if e.CImag, err = b.param(x.CI, "exciton.c_im", typ); err != nil {
			return e, err
		}
	}
	return e, nil
}
