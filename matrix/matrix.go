// 2x2 复数矩阵，用于传输矩阵计算
//
// 每个元素记录是否已经赋值。Blank() 得到的矩阵元素为 NaN 且未赋值，
// 在全部元素赋值之前参与任何运算都会 panic，防止 NaN 混入最终结果。

package matrix

import (
	"fmt"
	"math"
	"math/cmplx"

	"tmm/model"
)

const full = 0xf

type Matrix struct {
	v        [2][2]complex128
	assigned uint8 // 每一位对应一个元素
}

// 单位矩阵
func Identity() Matrix {
	return New(1, 0, 0, 1)
}

// 占位矩阵，使用前必须显式赋值
func Blank() Matrix {
	nan := cmplx.NaN()
	return Matrix{v: [2][2]complex128{{nan, nan}, {nan, nan}}}
}

func New(m00, m01, m10, m11 complex128) Matrix {
	return Matrix{
		v:        [2][2]complex128{{m00, m01}, {m10, m11}},
		assigned: full,
	}
}

func Diagonal(d0, d1 complex128) Matrix {
	return New(d0, 0, 0, d1)
}

func bit(i, j int) uint8 {
	return 1 << uint(i*2+j)
}

// 是否所有元素都已赋值
func (m Matrix) IsSet() bool {
	return m.assigned == full
}

func (m Matrix) At(i, j int) complex128 {
	if m.assigned&bit(i, j) == 0 {
		model.Invariant("matrix: read of unassigned entry (%d, %d)", i, j)
	}
	return m.v[i][j]
}

func (m *Matrix) Set(i, j int, value complex128) {
	m.v[i][j] = value
	m.assigned |= bit(i, j)
}

func (m *Matrix) SetDiagonal(value complex128) {
	m.Set(0, 0, value)
	m.Set(1, 1, value)
}

func (m *Matrix) SetAntiDiagonal(value complex128) {
	m.Set(0, 1, value)
	m.Set(1, 0, value)
}

// Checked 用于结果出口处，未赋值的矩阵不允许流出
func (m Matrix) Checked() Matrix {
	m.mustBeSet()
	return m
}

func (m Matrix) mustBeSet() {
	if !m.IsSet() {
		model.Invariant("matrix: blank matrix used in computation (assigned mask %04b)", m.assigned)
	}
}

// Mul 返回 m * that，顺序不可交换
func (m Matrix) Mul(that Matrix) Matrix {
	m.mustBeSet()
	that.mustBeSet()
	a, b := &m.v, &that.v
	return New(
		a[0][0]*b[0][0]+a[0][1]*b[1][0],
		a[0][0]*b[0][1]+a[0][1]*b[1][1],
		a[1][0]*b[0][0]+a[1][1]*b[1][0],
		a[1][0]*b[0][1]+a[1][1]*b[1][1],
	)
}

func (m Matrix) Scale(c complex128) Matrix {
	m.mustBeSet()
	return New(m.v[0][0]*c, m.v[0][1]*c, m.v[1][0]*c, m.v[1][1]*c)
}

// Pow 逐次相乘，结果与 n 次 Mul 完全一致
func (m Matrix) Pow(n int) Matrix {
	m.mustBeSet()
	if n < 0 {
		panic(fmt.Sprintf("matrix: negative power %d", n))
	}
	res := Identity()
	for i := 0; i < n; i++ {
		res = res.Mul(m)
	}
	return res
}

func (m Matrix) Det() complex128 {
	m.mustBeSet()
	return m.v[0][0]*m.v[1][1] - m.v[0][1]*m.v[1][0]
}

// 是否含 NaN
func (m Matrix) HasNaN() bool {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if cmplx.IsNaN(m.v[i][j]) {
				return true
			}
		}
	}
	return false
}

// 逐元素比较，用于测试
func (m Matrix) EqualApprox(that Matrix, tol float64) bool {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			d := cmplx.Abs(m.v[i][j] - that.v[i][j])
			scale := math.Max(1, math.Max(cmplx.Abs(m.v[i][j]), cmplx.Abs(that.v[i][j])))
			if !(d <= tol*scale) {
				return false
			}
		}
	}
	return m.assigned == that.assigned
}

func (m Matrix) String() string {
	return fmt.Sprintf("Matrix[(0, 0): %v, (0, 1): %v, (1, 0): %v, (1, 1): %v]",
		m.v[0][0], m.v[0][1], m.v[1][0], m.v[1][1])
}
