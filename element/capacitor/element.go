package capacitor

import (
	"accircuit/element"
	"accircuit/maths"
	"fmt"
)

// Type 元件类型
const Type element.Type = 2

func init() {
	element.AddElement(Type, &element.Config{
		Name:   "capacitor",
		Prefix: "C",
		Unit:   "F",
		Phase:  -90,
		New:    New,
	})
}

// Capacitor 电容
type Capacitor struct {
	element.Base
}

// New 创建电容，capacitance 单位 F
func New(capacitance float64) element.Component {
	return &Capacitor{Base: element.NewBase(Type, capacitance)}
}

// Capacitance 电容值
func (c *Capacitor) Capacitance() float64 { return c.Val }

// Impedance 阻抗 Z = -j/(ωC)
// 直流或电容为零时开路
func (c *Capacitor) Impedance(frequency float64) (maths.Complex, error) {
	if err := c.CheckFrequency(frequency); err != nil {
		return 0, err
	}
	if frequency == 0 || c.Val == 0 {
		return 0, fmt.Errorf("%w: %s 在 %gHz", element.ErrOpenCircuit, c.Name, frequency)
	}
	return maths.New(0, -1/(element.Omega(frequency)*c.Val)), nil
}
