// Package accircuit 交流电路工程：元件库与电路库的管理、按标签查找以及存档读写。
package accircuit

import (
	"accircuit/element"
	"accircuit/network"
	"accircuit/utils"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode"

	_ "accircuit/element/register"
)

// 工程错误定义
var (
	ErrNotFound         = errors.New("标签不存在")
	ErrDuplicateLabel   = errors.New("标签已存在")
	ErrInUse            = errors.New("仍被电路引用")
	ErrInvalidFrequency = errors.New("无效频率")
	ErrInvalidLabel     = errors.New("无效标签")
	ErrSubcircuit       = errors.New("子电路频率由父电路决定")
)

// circuitCounter 串联与并联电路共用的计数器键
const circuitCounter = "circuit"

// Project 元件库与电路库
type Project struct {
	components []element.Component // 元件库，按创建顺序
	circuits   []*network.Circuit  // 电路库，按创建顺序
	counters   map[string]int      // 各前缀已分配的最大编号
}

// NewProject 创建空工程
func NewProject() *Project {
	return &Project{counters: map[string]int{}}
}

// nextLabel 分配下一个未被占用的标签
func (p *Project) nextLabel(prefix, counter string) string {
	for {
		p.counters[counter]++
		label := fmt.Sprintf("%s%d", prefix, p.counters[counter])
		if !p.exists(label) {
			return label
		}
	}
}

// bump 载入已有标签后调整计数器，保证后续分配不冲突
func (p *Project) bump(label, counter string) {
	if _, id := utils.SplitLabel(label); id > p.counters[counter] {
		p.counters[counter] = id
	}
}

// exists 标签是否已被元件或电路占用
func (p *Project) exists(label string) bool {
	_, _, err := p.Lookup(label)
	return err == nil
}

// AddComponent 创建元件并加入元件库，标签按类型自动编号(R1 R2 C1 ...)
func (p *Project) AddComponent(t element.Type, value float64) (element.Component, error) {
	comp, err := element.New(t, value)
	if err != nil {
		return nil, err
	}
	comp.SetLabel(p.nextLabel(t.Prefix(), t.Prefix()))
	p.components = append(p.components, comp)
	return comp, nil
}

// AddCircuit 创建电路并加入电路库，串联与并联共用编号(S1 P2 S3 ...)
func (p *Project) AddCircuit(connection network.Connection, frequency float64) (*network.Circuit, error) {
	if err := checkFrequency(frequency); err != nil {
		return nil, err
	}
	if connection.Prefix() == "" {
		return nil, fmt.Errorf("未知的连接方式: %d", connection)
	}
	c := network.New(connection, frequency)
	c.SetLabel(p.nextLabel(connection.Prefix(), circuitCounter))
	p.circuits = append(p.circuits, c)
	return c, nil
}

// Attach 将元件或子电路按标签加入电路
// 遇到第一个错误即停止，之前加入的成员保留
func (p *Project) Attach(circuitLabel string, members ...string) error {
	c, err := p.Circuit(circuitLabel)
	if err != nil {
		return err
	}
	for _, label := range members {
		comp, sub, err := p.Lookup(label)
		if err != nil {
			return err
		}
		if comp != nil {
			err = c.AddComponent(comp)
		} else {
			err = c.AddSubcircuit(sub)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Component 按标签查找元件
func (p *Project) Component(label string) (element.Component, error) {
	for _, comp := range p.components {
		if comp.Label() == label {
			return comp, nil
		}
	}
	return nil, fmt.Errorf("%w: 元件 %s", ErrNotFound, label)
}

// Circuit 按标签查找电路
func (p *Project) Circuit(label string) (*network.Circuit, error) {
	for _, c := range p.circuits {
		if c.Label() == label {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: 电路 %s", ErrNotFound, label)
}

// Lookup 在元件库与电路库中查找标签，找到其一
func (p *Project) Lookup(label string) (element.Component, *network.Circuit, error) {
	if comp, err := p.Component(label); err == nil {
		return comp, nil, nil
	}
	if c, err := p.Circuit(label); err == nil {
		return nil, c, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, label)
}

// referencedBy 直接引用该标签的电路
func (p *Project) referencedBy(label string) []string {
	var users []string
	for _, c := range p.circuits {
		if slices.Contains(c.Members(), label) {
			users = append(users, c.Label())
		}
	}
	return users
}

// Remove 从库中删除元件或电路，仍被引用时拒绝
func (p *Project) Remove(label string) error {
	if users := p.referencedBy(label); len(users) > 0 {
		return fmt.Errorf("%w: %s 被 %s 使用", ErrInUse, label, strings.Join(users, " "))
	}
	for i, comp := range p.components {
		if comp.Label() == label {
			p.components = slices.Delete(p.components, i, i+1)
			return nil
		}
	}
	for i, c := range p.circuits {
		if c.Label() == label {
			p.circuits = slices.Delete(p.circuits, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, label)
}

// Rename 修改标签，新标签不能与已有标签重复
func (p *Project) Rename(oldLabel, newLabel string) error {
	if err := checkLabel(newLabel); err != nil {
		return err
	}
	comp, c, err := p.Lookup(oldLabel)
	if err != nil {
		return err
	}
	if oldLabel == newLabel {
		return nil
	}
	if p.exists(newLabel) {
		return fmt.Errorf("%w: %s", ErrDuplicateLabel, newLabel)
	}
	if comp != nil {
		comp.SetLabel(newLabel)
		p.bump(newLabel, comp.Type().Prefix())
		return nil
	}
	c.SetLabel(newLabel)
	p.bump(newLabel, circuitCounter)
	return nil
}

// Components 元件库，按标签自然顺序排序(R2 在 R10 之前)
func (p *Project) Components() []element.Component {
	list := slices.Clone(p.components)
	slices.SortStableFunc(list, func(a, b element.Component) int {
		return CompareLabels(a.Label(), b.Label())
	})
	return list
}

// Circuits 电路库，按创建顺序
func (p *Project) Circuits() []*network.Circuit {
	return slices.Clone(p.circuits)
}

// SetFrequency 修改顶层电路频率并向下传递
// 子电路的频率总是跟随父电路，不能单独修改
func (p *Project) SetFrequency(label string, frequency float64) error {
	if err := checkFrequency(frequency); err != nil {
		return err
	}
	c, err := p.Circuit(label)
	if err != nil {
		return err
	}
	if users := p.referencedBy(label); len(users) > 0 {
		return fmt.Errorf("%w: %s 属于 %s", ErrSubcircuit, label, strings.Join(users, " "))
	}
	c.SetFrequency(frequency)
	return nil
}

// checkFrequency 频率必须是非负有限值
func checkFrequency(frequency float64) error {
	if frequency < 0 || math.IsNaN(frequency) || math.IsInf(frequency, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidFrequency, frequency)
	}
	return nil
}

// checkLabel 标签在存档中是单个字段，不能含空白、括号或注释符
func checkLabel(label string) error {
	if label == "" ||
		strings.ContainsFunc(label, unicode.IsSpace) ||
		strings.ContainsAny(label, "()#") ||
		strings.Contains(label, "//") {
		return fmt.Errorf("%w %q", ErrInvalidLabel, label)
	}
	return nil
}

// CompareLabels 标签自然排序：先比较前缀，再比较编号
func CompareLabels(a, b string) int {
	pa, ia := utils.SplitLabel(a)
	pb, ib := utils.SplitLabel(b)
	if c := strings.Compare(pa, pb); c != 0 {
		return c
	}
	if ia != ib {
		if ia < ib {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
