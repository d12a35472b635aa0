package element

import (
	"fmt"
	"math"
)

// Base 元件公共数据，具体元件嵌入使用
type Base struct {
	ElementType Type    // 元件类型
	Name        string  // 标签
	Val         float64 // 元件值
	Freq        float64 // 当前频率(Hz)
}

// NewBase 初始化公共数据
func NewBase(t Type, value float64) Base {
	return Base{ElementType: t, Val: value}
}

// Type 元件类型
func (base *Base) Type() Type { return base.ElementType }

// Label 标签
func (base *Base) Label() string { return base.Name }

// SetLabel 修改标签
func (base *Base) SetLabel(label string) { base.Name = label }

// Value 元件值
func (base *Base) Value() float64 { return base.Val }

// Frequency 当前频率
func (base *Base) Frequency() float64 { return base.Freq }

// SetFrequency 设置频率
func (base *Base) SetFrequency(frequency float64) { base.Freq = frequency }

// Omega 角频率 ω = 2πf
func Omega(frequency float64) float64 { return 2 * math.Pi * frequency }

// CheckFrequency 检查频率与元件值
func (base *Base) CheckFrequency(frequency float64) error {
	if frequency < 0 || math.IsNaN(frequency) || math.IsInf(frequency, 0) {
		return fmt.Errorf("%w: 频率 %g", ErrInvalidValue, frequency)
	}
	if base.Val < 0 || math.IsNaN(base.Val) {
		return fmt.Errorf("%w: %s 值 %g", ErrInvalidValue, base.Name, base.Val)
	}
	return nil
}
