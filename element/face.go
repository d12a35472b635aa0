package element

import (
	"accircuit/maths"
	"errors"
)

// 元件错误定义
var (
	ErrOpenCircuit  = errors.New("开路(阻抗无穷大)")
	ErrInvalidValue = errors.New("无效元件参数")
	ErrUnknownType  = errors.New("未知的元件类型")
)

// Component 元件接口
// 电阻、电容、电感等叶子元件都实现此接口
type Component interface {
	Type() Type                                         // 元件类型标识
	Label() string                                      // 元件标签(如 R1)
	SetLabel(label string)                              // 修改标签
	Value() float64                                     // 元件值(SI 单位: Ω F H)
	Frequency() float64                                 // 当前所在电路的频率
	SetFrequency(frequency float64)                     // 设置频率
	Impedance(frequency float64) (maths.Complex, error) // 指定频率下的阻抗
}

// ImpedanceNow 元件在自身当前频率下的阻抗
func ImpedanceNow(c Component) (maths.Complex, error) {
	return c.Impedance(c.Frequency())
}

// PhaseDifference 元件阻抗相位差(角度)
func PhaseDifference(c Component) float64 {
	if config := c.Type().Config(); config != nil {
		return config.Phase
	}
	return 0
}
