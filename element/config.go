package element

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Type 元件类型标识，使用无符号整数表示
// 每个元件类型都有一个唯一的Type值，用于在ElementList中标识和查找
type Type uint

// Config 元件类型配置，注册后保持不变
type Config struct {
	Name   string                        // 元件名称(如 "resistor")
	Prefix string                        // 标签前缀(如 "R")
	Unit   string                        // 元件值单位
	Phase  float64                       // 理想元件相位差(角度)
	New    func(value float64) Component // 构造函数
}

// ElementList 元件类型注册表
var ElementList = map[Type]*Config{}

// ElementListName 名称与前缀到类型的映射，键均为大写
var ElementListName = map[string]Type{}

// AddElement 注册元件类型到全局元件列表
// 类型、名称或前缀重复时 panic
func AddElement(t Type, config *Config) Type {
	if _, ok := ElementList[t]; ok {
		panic(fmt.Errorf("元件重复注册: %d", t))
	}
	name, prefix := strings.ToUpper(config.Name), strings.ToUpper(config.Prefix)
	if _, ok := ElementListName[name]; ok {
		panic(fmt.Errorf("元件名称重复注册: %s", config.Name))
	}
	if _, ok := ElementListName[prefix]; ok {
		panic(fmt.Errorf("元件前缀重复注册: %s", config.Prefix))
	}
	ElementList[t] = config
	ElementListName[name] = t
	ElementListName[prefix] = t
	return t
}

// Config 获取类型配置，未注册返回nil
func (t Type) Config() *Config {
	return ElementList[t]
}

// String 元件名称
func (t Type) String() string {
	if config := t.Config(); config != nil {
		return config.Name
	}
	return "unknown"
}

// Prefix 标签前缀
func (t Type) Prefix() string {
	if config := t.Config(); config != nil {
		return config.Prefix
	}
	return ""
}

// Unit 元件值单位
func (t Type) Unit() string {
	if config := t.Config(); config != nil {
		return config.Unit
	}
	return ""
}

// TypeByName 通过名称或前缀查找类型，不区分大小写
func TypeByName(name string) (Type, error) {
	if t, ok := ElementListName[strings.ToUpper(name)]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w '%s'", ErrUnknownType, name)
}

// TypeByPrefix 通过标签前缀查找类型
func TypeByPrefix(prefix string) (Type, error) {
	t, err := TypeByName(prefix)
	if err != nil || !strings.EqualFold(t.Prefix(), prefix) {
		return 0, fmt.Errorf("%w '%s'", ErrUnknownType, prefix)
	}
	return t, nil
}

// Types 已注册的类型，按标识排序
func Types() []Type {
	list := make([]Type, 0, len(ElementList))
	for t := range ElementList {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// New 根据类型创建元件
func New(t Type, value float64) (Component, error) {
	config := t.Config()
	if config == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("%w: %s 值 %g", ErrInvalidValue, config.Name, value)
	}
	return config.New(value), nil
}
