package resistor

import (
	"accircuit/element"
	"accircuit/maths"
)

// Type 元件类型
const Type element.Type = 1

func init() {
	element.AddElement(Type, &element.Config{
		Name:   "resistor",
		Prefix: "R",
		Unit:   "Ω",
		Phase:  0,
		New:    New,
	})
}

// Resistor 电阻
type Resistor struct {
	element.Base
}

// New 创建电阻，resistance 单位 Ω
func New(resistance float64) element.Component {
	return &Resistor{Base: element.NewBase(Type, resistance)}
}

// Resistance 电阻值
func (r *Resistor) Resistance() float64 { return r.Val }

// Impedance 阻抗 Z = R，与频率无关
func (r *Resistor) Impedance(frequency float64) (maths.Complex, error) {
	if err := r.CheckFrequency(frequency); err != nil {
		return 0, err
	}
	return maths.New(r.Val, 0), nil
}
