package matrix

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"tmm/model"
)

const tol = 1e-12

func sample() Matrix {
	return New(complex(1.5, -0.2), complex(0.3, 0.7), complex(-0.4, 0.1), complex(0.9, 0.25))
}

func other() Matrix {
	return New(complex(0.2, 1.1), complex(-1.3, 0), complex(0.05, -0.6), complex(2, 0.4))
}

func TestIdentityLaw(t *testing.T) {
	m := sample()
	require.Equal(t, m, Identity().Mul(m))
	require.Equal(t, m, m.Mul(Identity()))
}

func TestMulIsOrderPreserving(t *testing.T) {
	a, b := sample(), other()
	require.False(t, a.Mul(b).EqualApprox(b.Mul(a), tol))
	ab := a.Mul(b)
	require.InDelta(t, 0, cmplx.Abs(a.At(0, 0)*b.At(0, 1)+a.At(0, 1)*b.At(1, 1)-ab.At(0, 1)), tol)
	require.InDelta(t, 0, cmplx.Abs(a.At(1, 0)*b.At(0, 0)+a.At(1, 1)*b.At(1, 0)-ab.At(1, 0)), tol)
}

func TestDetIsMultiplicative(t *testing.T) {
	a, b := sample(), other()
	got := a.Mul(b).Det()
	want := a.Det() * b.Det()
	require.InDelta(t, 0, cmplx.Abs(got-want), tol)
}

func TestPowLaw(t *testing.T) {
	m := sample()
	for a := 0; a < 5; a++ {
		for b := 0; b < 5; b++ {
			require.True(t, m.Pow(a+b).EqualApprox(m.Pow(a).Mul(m.Pow(b)), tol), "a=%d b=%d", a, b)
		}
	}
}

func TestPowMatchesRepeatedMul(t *testing.T) {
	m := sample()
	naive := Identity()
	for i := 0; i < 7; i++ {
		naive = naive.Mul(m)
	}
	require.Equal(t, naive, m.Pow(7))
	require.Equal(t, Identity(), m.Pow(0))
}

func TestScale(t *testing.T) {
	m := sample().Scale(complex(0, 2))
	require.Equal(t, sample().At(1, 1)*complex(0, 2), m.At(1, 1))
}

func TestDiagonalSetters(t *testing.T) {
	m := Blank()
	require.False(t, m.IsSet())
	m.SetDiagonal(2)
	require.False(t, m.IsSet())
	m.SetAntiDiagonal(complex(0, -1))
	require.True(t, m.IsSet())
	require.Equal(t, New(2, complex(0, -1), complex(0, -1), 2), m)
}

func TestBlankNeverComputes(t *testing.T) {
	b := Blank()
	require.True(t, b.HasNaN())

	var invariant *model.InternalInvariantError
	require.PanicsWithError(t, (&model.InternalInvariantError{Msg: "matrix: blank matrix used in computation (assigned mask 0000)"}).Error(), func() {
		_ = b.Mul(Identity())
	})
	require.Panics(t, func() { _ = b.Checked() })
	require.Panics(t, func() { _ = b.Det() })
	require.Panics(t, func() { _ = b.At(0, 0) })

	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r)
			require.ErrorAs(t, r.(error), &invariant)
		}()
		_ = Identity().Mul(b)
	}()
}

func TestNaNIsNotCoerced(t *testing.T) {
	m := New(cmplx.NaN(), 0, 0, 1)
	require.True(t, m.Mul(Identity()).HasNaN())
	require.True(t, cmplx.IsNaN(m.Det()))
}

func BenchmarkMul(b *testing.B) {
	m, o := sample(), other()
	for i := 0; i < b.N; i++ {
		m = m.Mul(o).Scale(0.5)
	}
}
