// 多层结构：由若干 block 组成，每个 block 是一组重复 Repeat 次的层
//
// 层对象创建后不再修改，可变参数的取值保存在 Structure 自己的 Values 中，
// Copy() 得到的副本共享层对象，各自拥有独立的取值。

package structure

import (
	"tmm/layer"
	"tmm/model"
)

type Block struct {
	Repeat int
	Layers []layer.Layer
}

// 展开为 Repeat = 1 的 block，层序列重复 Repeat 次
func (b Block) Flatten() Block {
	layers := make([]layer.Layer, 0, len(b.Layers)*b.Repeat)
	for i := 0; i < b.Repeat; i++ {
		layers = append(layers, b.Layers...)
	}
	return Block{Repeat: 1, Layers: layers}
}

type Structure struct {
	Blocks []Block

	vars   []layer.Param
	values *layer.Values
}

// New 由已分配槽位的层构造结构，reg 为分配槽位的 Registry（没有可变参数时可为 nil）
func New(blocks []Block, reg *layer.Registry) *Structure {
	s := &Structure{Blocks: blocks}
	if reg != nil {
		s.vars = reg.Vars()
	}
	s.values = layer.NewValues(len(s.vars))
	return s
}

// 空结构，只剩左右两侧介质
func Empty() *Structure {
	return New(nil, nil)
}

func (s *Structure) IsEmpty() bool {
	for _, b := range s.Blocks {
		if b.Repeat > 0 && len(b.Layers) > 0 {
			return false
		}
	}
	return true
}

func (s *Structure) Values() *layer.Values { return s.values }

// 可变参数，按槽位顺序
func (s *Structure) Vars() []layer.Param {
	return append([]layer.Param(nil), s.vars...)
}

func (s *Structure) IsVariable() bool { return len(s.vars) > 0 }

// 为每个可变参数写入取值，按槽位顺序调用 f
func (s *Structure) Materialize(f func(layer.Param) float64) {
	for _, p := range s.vars {
		s.values.Set(p.Slot(), f(p))
	}
}

// 所有可变参数取均值
func (s *Structure) MaterializeMeans() {
	s.Materialize(func(p layer.Param) float64 { return p.Mean })
}

// Copy 深拷贝：层对象只读可共享，取值缓冲区独立
func (s *Structure) Copy() *Structure {
	blocks := make([]Block, len(s.Blocks))
	for i, b := range s.Blocks {
		blocks[i] = Block{Repeat: b.Repeat, Layers: append([]layer.Layer(nil), b.Layers...)}
	}
	return &Structure{
		Blocks: blocks,
		vars:   s.Vars(),
		values: s.values.Clone(),
	}
}

// Flatten 将整个结构展开为一个 Repeat = 1 的 block
// 每次重复中的层都分配新的槽位，使各周期的参数可以独立随机化
func (s *Structure) Flatten() *Structure {
	reg := layer.NewRegistry()
	var layers []layer.Layer
	for _, b := range s.Blocks {
		for i := 0; i < b.Repeat; i++ {
			for _, l := range b.Layers {
				layers = append(layers, l.Remap(reg.Rebind))
			}
		}
	}
	if len(layers) == 0 {
		return Empty()
	}
	return New([]Block{{Repeat: 1, Layers: layers}}, reg)
}

// 第一层，用于只与第一层有关的计算模式
func (s *Structure) FirstLayer() (layer.Layer, error) {
	for _, b := range s.Blocks {
		if b.Repeat > 0 && len(b.Layers) > 0 {
			return b.Layers[0], nil
		}
	}
	return nil, model.Invalid("first layer", model.ErrEmptyStructure)
}

// 层的总数（按重复次数展开后）
func (s *Structure) Len() int {
	n := 0
	for _, b := range s.Blocks {
		n += b.Repeat * len(b.Layers)
	}
	return n
}
