package structure

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"tmm/layer"
	"tmm/model"
)

const twoBlocks = `{
  "blocks": [
    {"repeat": 3, "layers": [
      {"type": "const_n", "d": {"mean": 100, "deviation": 5, "variable": true}, "re": 3.6},
      {"type": "const_eps", "d": 50, "re": 2.1, "im": 0.01}
    ]},
    {"repeat": 0, "layers": [{"type": "const_n", "d": 10, "re": 1.5}]},
    {"repeat": 1, "layers": [
      {"type": "mie", "d": 200, "f": 0.01, "r": 5, "orders": 2,
       "medium": {"type": "const_n", "re": 3.5},
       "particle": {"type": "drude", "w_plasma": 9, "gamma": 0.1, "eps_inf": 1}}
    ]}
  ]
}`

func build(t *testing.T, src string) *Structure {
	var desc model.StructureDescription
	require.NoError(t, json.Unmarshal([]byte(src), &desc))
	s, err := Build(desc)
	require.NoError(t, err)
	return s
}

func TestBuild(t *testing.T) {
	s := build(t, twoBlocks)

	// repeat = 0 的 block 被丢弃
	require.Len(t, s.Blocks, 2)
	require.Equal(t, 3, s.Blocks[0].Repeat)
	require.Equal(t, 7, s.Len())

	require.True(t, s.IsVariable())
	vars := s.Vars()
	require.Len(t, vars, 1)
	require.Equal(t, 100.0, vars[0].Mean)
	require.Equal(t, 5.0, vars[0].Deviation)

	first, err := s.FirstLayer()
	require.NoError(t, err)
	require.IsType(t, &layer.ConstRefractiveIndex{}, first)

	mie, ok := s.Blocks[1].Layers[0].(*layer.Mie)
	require.True(t, ok)
	require.Equal(t, 2, mie.Orders)
	require.False(t, mie.IncludeMediumAbsorption)

	withHost := build(t, `{"blocks":[{"repeat":1,"layers":[
	  {"type":"mie","d":200,"f":0.01,"r":5,"medium_absorption":true,
	   "medium":{"type":"const_n","re":3.5,"im":0.01},
	   "particle":{"type":"drude","w_plasma":9,"gamma":0.1,"eps_inf":1}}]}]}`)
	require.True(t, withHost.Blocks[0].Layers[0].(*layer.Mie).IncludeMediumAbsorption)
}

const quantumWell = `{"blocks":[{"repeat":2,"layers":[
  {"type":"excitonic","d":3,"medium":{"type":"const_n","re":2.6},
   "exciton":{"w0":{"mean":1.5,"deviation":0.01,"variable":true},
              "g0":0.0001,"g":0.01,"wb":1.52,"gb":0.01,"b":1000,"c_re":0.1}}]}]}`

func TestBuildVariableExciton(t *testing.T) {
	s := build(t, quantumWell)
	vars := s.Vars()
	require.Len(t, vars, 1)
	require.Equal(t, 1.5, vars[0].Mean)
	require.Equal(t, 0.01, vars[0].Deviation)

	qw, ok := s.Blocks[0].Layers[0].(*layer.Excitonic)
	require.True(t, ok)
	require.Equal(t, 0.1, qw.Exciton.CReal.Mean)
	require.Equal(t, 0.0, qw.Exciton.CImag.Mean)
	require.False(t, qw.Exciton.G0.Variable)

	// 每个周期的 w0 独立
	require.Len(t, s.Flatten().Vars(), 2)
}

func TestBuildValidation(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  error
	}{
		{"unknown type", `{"blocks":[{"repeat":1,"layers":[{"type":"graphene","d":1}]}]}`, model.ErrUnknownLayerType},
		{"missing d", `{"blocks":[{"repeat":1,"layers":[{"type":"const_n","re":2}]}]}`, model.ErrMissingField},
		{"missing re", `{"blocks":[{"repeat":1,"layers":[{"type":"const_n","d":2}]}]}`, model.ErrMissingField},
		{"negative repeat", `{"blocks":[{"repeat":-1,"layers":[{"type":"const_n","d":1,"re":2}]}]}`, model.ErrBadRepeat},
		{"negative d", `{"blocks":[{"repeat":1,"layers":[{"type":"const_n","d":-1,"re":2}]}]}`, model.ErrBadThickness},
		{"no exciton", `{"blocks":[{"repeat":1,"layers":[{"type":"excitonic","d":3,"medium":{"type":"const_n","re":2.6}}]}]}`, model.ErrMissingField},
		{"no exciton w0", `{"blocks":[{"repeat":1,"layers":[{"type":"excitonic","d":3,"medium":{"type":"const_n","re":2.6},"exciton":{"g0":0.0001,"g":0.01,"wb":1.52,"gb":0.01,"b":1000}}]}]}`, model.ErrMissingField},
		{"no particle", `{"blocks":[{"repeat":1,"layers":[{"type":"effective_medium","d":3,"f":0.1,"medium":{"type":"const_n","re":2.6}}]}]}`, model.ErrMissingField},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var desc model.StructureDescription
			require.NoError(t, json.Unmarshal([]byte(c.src), &desc))
			_, err := Build(desc)
			require.ErrorIs(t, err, c.err)
			var ve *model.ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}
}

func TestEmpty(t *testing.T) {
	s := build(t, `{"blocks":[{"repeat":0,"layers":[{"type":"const_n","d":1,"re":2}]}]}`)
	require.True(t, s.IsEmpty())
	require.True(t, Empty().IsEmpty())
	_, err := s.FirstLayer()
	require.ErrorIs(t, err, model.ErrEmptyStructure)
}

func TestFlattenGivesEveryRepetitionItsOwnSlots(t *testing.T) {
	s := build(t, twoBlocks)
	flat := s.Flatten()

	require.Len(t, flat.Blocks, 1)
	require.Equal(t, 1, flat.Blocks[0].Repeat)
	require.Equal(t, s.Len(), flat.Len())

	vars := flat.Vars()
	require.Len(t, vars, 3)
	for i, p := range vars {
		require.Equal(t, i, p.Slot())
		require.Equal(t, 100.0, p.Mean)
	}

	// 各周期厚度取值互相独立
	flat.Materialize(func(p layer.Param) float64 { return float64(p.Slot()) })
	ls := flat.Blocks[0].Layers
	require.Equal(t, 0.0, ls[0].Params()[0].Value(flat.Values()))
	require.Equal(t, 1.0, ls[2].Params()[0].Value(flat.Values()))
	require.Equal(t, 2.0, ls[4].Params()[0].Value(flat.Values()))
}

func TestBlockFlatten(t *testing.T) {
	a := &layer.ConstRefractiveIndex{D: layer.Const(1), NReal: layer.Const(2), NImage: layer.Const(0)}
	b := &layer.ConstRefractiveIndex{D: layer.Const(3), NReal: layer.Const(4), NImage: layer.Const(0)}
	flat := Block{Repeat: 3, Layers: []layer.Layer{a, b}}.Flatten()
	require.Equal(t, 1, flat.Repeat)
	require.Equal(t, []layer.Layer{a, b, a, b, a, b}, flat.Layers)
}

func TestCopyIsIndependent(t *testing.T) {
	s := build(t, twoBlocks).Flatten()
	s.MaterializeMeans()

	cp := s.Copy()
	cp.Materialize(func(p layer.Param) float64 { return -1 })

	d := s.Blocks[0].Layers[0].Params()[0]
	require.Equal(t, 100.0, d.Value(s.Values()))
	require.Equal(t, -1.0, d.Value(cp.Values()))
}

func TestUnmaterializedReadPanics(t *testing.T) {
	s := build(t, twoBlocks)
	d := s.Blocks[0].Layers[0].Params()[0]
	require.Panics(t, func() { _ = d.Value(s.Values()) })
}
