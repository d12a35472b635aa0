package inductor

import (
	"accircuit/element"
	"accircuit/maths"
)

// Type 元件类型
const Type element.Type = 3

func init() {
	element.AddElement(Type, &element.Config{
		Name:   "inductor",
		Prefix: "L",
		Unit:   "H",
		Phase:  90,
		New:    New,
	})
}

// Inductor 电感
type Inductor struct {
	element.Base
}

// New 创建电感，inductance 单位 H
func New(inductance float64) element.Component {
	return &Inductor{Base: element.NewBase(Type, inductance)}
}

// Inductance 电感值
func (l *Inductor) Inductance() float64 { return l.Val }

// Impedance 阻抗 Z = jωL
func (l *Inductor) Impedance(frequency float64) (maths.Complex, error) {
	if err := l.CheckFrequency(frequency); err != nil {
		return 0, err
	}
	return maths.New(0, element.Omega(frequency)*l.Val), nil
}
