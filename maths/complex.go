package maths

import (
	"errors"
	"math"
	"math/cmplx"
	"strconv"
)

// Epsilon 浮点比较容差
const Epsilon = 1e-12

// ErrDivideByZero 复数除零
var ErrDivideByZero = errors.New("复数除零")

// Complex 复数，实部与虚部
// 底层使用 complex128，保留原生运算能力
type Complex complex128

// New 通过实部和虚部创建复数
func New(re, im float64) Complex { return Complex(complex(re, im)) }

// Real 实部
func (z Complex) Real() float64 { return real(z) }

// Imag 虚部
func (z Complex) Imag() float64 { return imag(z) }

// SetReal 返回替换实部后的复数
func (z Complex) SetReal(re float64) Complex { return New(re, z.Imag()) }

// SetImag 返回替换虚部后的复数
func (z Complex) SetImag(im float64) Complex { return New(z.Real(), im) }

// Add 加法
func (z Complex) Add(z2 Complex) Complex {
	return New(z.Real()+z2.Real(), z.Imag()+z2.Imag())
}

// Sub 减法
func (z Complex) Sub(z2 Complex) Complex {
	return New(z.Real()-z2.Real(), z.Imag()-z2.Imag())
}

// Mul 乘法
// (a+bi)(c+di) = (ac-bd) + (ad+bc)i
func (z Complex) Mul(z2 Complex) Complex {
	a, b, c, d := z.Real(), z.Imag(), z2.Real(), z2.Imag()
	return New(a*c-b*d, a*d+b*c)
}

// Div 除法
// x/y = x·conj(y) / |y|²
func (z Complex) Div(z2 Complex) (Complex, error) {
	if z2.IsZero() {
		return 0, ErrDivideByZero
	}
	denom := z2.Real()*z2.Real() + z2.Imag()*z2.Imag()
	num := z.Mul(z2.Conjugate())
	return New(num.Real()/denom, num.Imag()/denom), nil
}

// Inv 倒数
func (z Complex) Inv() (Complex, error) { return New(1, 0).Div(z) }

// Scale 实数缩放
func (z Complex) Scale(k float64) Complex { return New(z.Real()*k, z.Imag()*k) }

// Modulus 模
func (z Complex) Modulus() float64 { return math.Hypot(z.Real(), z.Imag()) }

// Argument 辐角(弧度)
func (z Complex) Argument() float64 { return math.Atan2(z.Imag(), z.Real()) }

// ArgumentDeg 辐角(角度)
func (z Complex) ArgumentDeg() float64 { return z.Argument() * 180 / math.Pi }

// Conjugate 共轭
func (z Complex) Conjugate() Complex { return New(z.Real(), -z.Imag()) }

// IsZero 是否为零
func (z Complex) IsZero() bool { return z.Real() == 0 && z.Imag() == 0 }

// IsInf 是否为无穷
func (z Complex) IsInf() bool { return cmplx.IsInf(complex128(z)) }

// Equal 容差比较
func (z Complex) Equal(z2 Complex, tolerance float64) bool {
	return math.Abs(z.Real()-z2.Real()) <= tolerance && math.Abs(z.Imag()-z2.Imag()) <= tolerance
}

// String 格式化为 a+bi / a-bi
func (z Complex) String() string {
	re := strconv.FormatFloat(z.Real(), 'g', 6, 64)
	im := strconv.FormatFloat(math.Abs(z.Imag()), 'g', 6, 64)
	if z.Imag() < 0 {
		return re + "-" + im + "i"
	}
	return re + "+" + im + "i"
}
