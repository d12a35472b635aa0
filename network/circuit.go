package network

import (
	"accircuit/element"
	"accircuit/maths"
	"errors"
	"fmt"
)

// 电路错误定义
var (
	ErrCycle           = errors.New("子电路形成环路")
	ErrEmptyCircuit    = errors.New("电路没有元件")
	ErrDuplicateMember = errors.New("元件已在电路中")
	ErrNilMember       = errors.New("空元件")
)

// Circuit 串联或并联电路，可以嵌套子电路
type Circuit struct {
	label       string
	connection  Connection
	frequency   float64
	components  []element.Component
	subcircuits []*Circuit
}

// New 创建电路
func New(connection Connection, frequency float64) *Circuit {
	return &Circuit{connection: connection, frequency: frequency}
}

// Label 标签
func (c *Circuit) Label() string { return c.label }

// SetLabel 修改标签
func (c *Circuit) SetLabel(label string) { c.label = label }

// Connection 连接方式
func (c *Circuit) Connection() Connection { return c.connection }

// Frequency 频率(Hz)
func (c *Circuit) Frequency() float64 { return c.frequency }

// SetFrequency 设置频率并向下传递到所有子电路和元件
func (c *Circuit) SetFrequency(frequency float64) {
	c.frequency = frequency
	for _, comp := range c.components {
		comp.SetFrequency(frequency)
	}
	for _, sub := range c.subcircuits {
		sub.SetFrequency(frequency)
	}
}

// AddComponent 添加元件，元件频率同步为电路频率
func (c *Circuit) AddComponent(comp element.Component) error {
	if comp == nil {
		return ErrNilMember
	}
	for _, v := range c.components {
		if v == comp {
			return fmt.Errorf("%w: %s 已在 %s", ErrDuplicateMember, comp.Label(), c.label)
		}
	}
	comp.SetFrequency(c.frequency)
	c.components = append(c.components, comp)
	return nil
}

// AddSubcircuit 添加子电路，子电路频率同步为本电路频率
// 子电路不能是自身，也不能(间接)包含自身
func (c *Circuit) AddSubcircuit(sub *Circuit) error {
	if sub == nil {
		return ErrNilMember
	}
	if sub == c || sub.containsCircuit(c) {
		return fmt.Errorf("%w: %s -> %s", ErrCycle, c.label, sub.label)
	}
	for _, v := range c.subcircuits {
		if v == sub {
			return fmt.Errorf("%w: %s 已在 %s", ErrDuplicateMember, sub.label, c.label)
		}
	}
	sub.SetFrequency(c.frequency)
	c.subcircuits = append(c.subcircuits, sub)
	return nil
}

// containsCircuit 递归判断是否包含指定电路
func (c *Circuit) containsCircuit(target *Circuit) bool {
	for _, sub := range c.subcircuits {
		if sub == target || sub.containsCircuit(target) {
			return true
		}
	}
	return false
}

// Contains 判断电路(含子电路)中是否有指定标签的元件或电路
func (c *Circuit) Contains(label string) bool {
	for _, comp := range c.components {
		if comp.Label() == label {
			return true
		}
	}
	for _, sub := range c.subcircuits {
		if sub.label == label || sub.Contains(label) {
			return true
		}
	}
	return false
}

// Len 元件与子电路总数
func (c *Circuit) Len() int { return len(c.components) + len(c.subcircuits) }

// Components 直接包含的元件
func (c *Circuit) Components() []element.Component {
	return append([]element.Component(nil), c.components...)
}

// Subcircuits 直接包含的子电路
func (c *Circuit) Subcircuits() []*Circuit {
	return append([]*Circuit(nil), c.subcircuits...)
}

// Members 成员标签，元件在前子电路在后
func (c *Circuit) Members() []string {
	labels := make([]string, 0, c.Len())
	for _, comp := range c.components {
		labels = append(labels, comp.Label())
	}
	for _, sub := range c.subcircuits {
		labels = append(labels, sub.label)
	}
	return labels
}

// Walk 深度优先遍历电路树，fn 返回 false 时不再深入该子电路
func (c *Circuit) Walk(fn func(circuit *Circuit, depth int) bool) {
	c.walk(fn, 0)
}

func (c *Circuit) walk(fn func(circuit *Circuit, depth int) bool, depth int) {
	if !fn(c, depth) {
		return
	}
	for _, sub := range c.subcircuits {
		sub.walk(fn, depth+1)
	}
}

// Impedance 当前频率下的总阻抗
func (c *Circuit) Impedance() (maths.Complex, error) {
	return c.ImpedanceAt(c.frequency)
}

// Magnitude 当前频率下总阻抗的模
func (c *Circuit) Magnitude() (float64, error) {
	z, err := c.Impedance()
	if err != nil {
		return 0, err
	}
	return z.Modulus(), nil
}

// Phase 当前频率下总阻抗的相位(角度)
func (c *Circuit) Phase() (float64, error) {
	z, err := c.Impedance()
	if err != nil {
		return 0, err
	}
	return z.ArgumentDeg(), nil
}

// ImpedanceAt 指定频率下的总阻抗，不修改电路状态
// 串联: Z = ΣZi
// 并联: Z = 1/Σ(1/Zi)
func (c *Circuit) ImpedanceAt(frequency float64) (maths.Complex, error) {
	if c.Len() == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyCircuit, c.label)
	}
	branches := make([]maths.Complex, 0, c.Len())
	open := make([]bool, 0, c.Len())
	add := func(z maths.Complex, err error) error {
		switch {
		case errors.Is(err, element.ErrOpenCircuit):
			branches, open = append(branches, 0), append(open, true)
		case err != nil:
			return err
		default:
			branches, open = append(branches, z), append(open, false)
		}
		return nil
	}
	for _, comp := range c.components {
		if err := add(comp.Impedance(frequency)); err != nil {
			return 0, err
		}
	}
	for _, sub := range c.subcircuits {
		if err := add(sub.ImpedanceAt(frequency)); err != nil {
			return 0, err
		}
	}
	switch c.connection {
	case Series:
		return c.series(branches, open)
	case Parallel:
		return c.parallel(branches, open)
	}
	return 0, fmt.Errorf("未知的连接方式: %d", c.connection)
}

// series 串联阻抗求和，任一支路开路则整体开路
func (c *Circuit) series(branches []maths.Complex, open []bool) (maths.Complex, error) {
	var sum maths.Complex
	for i, z := range branches {
		if open[i] {
			return 0, fmt.Errorf("%w: %s", element.ErrOpenCircuit, c.label)
		}
		sum = sum.Add(z)
	}
	return sum, nil
}

// parallel 并联导纳求和
// 开路支路导纳为零，短路支路使整体短路
func (c *Circuit) parallel(branches []maths.Complex, open []bool) (maths.Complex, error) {
	var admittance maths.Complex
	for i, z := range branches {
		if open[i] {
			continue
		}
		if z.IsZero() {
			return 0, nil
		}
		y, err := z.Inv()
		if err != nil {
			return 0, err
		}
		admittance = admittance.Add(y)
	}
	z, err := admittance.Inv()
	if errors.Is(err, maths.ErrDivideByZero) {
		// 全部开路或谐振抵消
		return 0, fmt.Errorf("%w: %s", element.ErrOpenCircuit, c.label)
	}
	return z, err
}
