package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NetList 存档文件中一行的字段
type NetList []string

// Fields 按空白切分一行
func Fields(line string) NetList {
	return NetList(strings.Fields(line))
}

// SplitLabel 分离标签前缀与编号
// 没有数字后缀时编号为 0
func SplitLabel(label string) (typeName string, id int) {
	nameStr := strings.ToUpper(label)
	for i, char := range nameStr {
		if char >= '0' && char <= '9' {
			typeName = nameStr[:i]
			id, _ = strconv.Atoi(nameStr[i:])
			break
		}
	}
	if typeName == "" && id == 0 {
		typeName = nameStr
	}
	return typeName, id
}

// ParseString 安全获取字符串
func (value NetList) ParseString(i int, defaultValue string) string {
	if i < len(value) {
		return value[i]
	}
	return defaultValue
}

// Value 解析第 i 个字段为数值，缺失或格式错误时返回错误
func (value NetList) Value(i int) (float64, error) {
	if i >= len(value) {
		return 0, fmt.Errorf("缺少第 %d 个字段", i+1)
	}
	return ParseValue(value[i])
}

// suffixes 工程单位后缀，按长度优先匹配
var suffixes = []struct {
	name  string
	scale float64
}{
	{"meg", 1e6},
	{"mil", 25.4e-6},
	{"f", 1e-15},
	{"p", 1e-12},
	{"n", 1e-9},
	{"u", 1e-6},
	{"µ", 1e-6},
	{"m", 1e-3},
	{"k", 1e3},
	{"g", 1e9},
	{"t", 1e12},
}

// ParseValue 解析带工程后缀的数值，如 4.7k 10u 1meg
// 后缀之后的单位字母(Ω F H Hz)会被忽略，NaN 与 Inf 视为错误
func ParseValue(s string) (float64, error) {
	str := strings.TrimSpace(s)
	if str == "" {
		return 0, fmt.Errorf("空数值")
	}
	if val, err := strconv.ParseFloat(str, 64); err == nil {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, fmt.Errorf("无效数值 %q", s)
		}
		return val, nil
	}
	// 分离数字部分
	end := 0
	for end < len(str) && strings.ContainsRune("0123456789+-.eE", rune(str[end])) {
		// 指数只在后面跟数字或符号时成立
		if (str[end] == 'e' || str[end] == 'E') && (end+1 >= len(str) || !strings.ContainsRune("0123456789+-", rune(str[end+1]))) {
			break
		}
		end++
	}
	num, err := strconv.ParseFloat(str[:end], 64)
	if err != nil {
		return 0, fmt.Errorf("无效数值 %q", s)
	}
	rest := strings.ToLower(str[end:])
	for _, suffix := range suffixes {
		if strings.HasPrefix(rest, suffix.name) {
			unit := rest[len(suffix.name):]
			if !isUnit(unit) {
				return 0, fmt.Errorf("无效单位 %q", s)
			}
			return num * suffix.scale, nil
		}
	}
	if !isUnit(rest) {
		return 0, fmt.Errorf("无效单位 %q", s)
	}
	return num, nil
}

// isUnit 可忽略的单位字母
func isUnit(s string) bool {
	switch s {
	case "", "ω", "ohm", "f", "h", "hz":
		return true
	}
	return false
}

// FormatValue 以工程后缀格式化数值，如 4700 -> 4.7k
// 兆写作 meg，输出可以直接交给 ParseValue
func FormatValue(v float64) string {
	if v == 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', 4, 64)
	}
	scales := []struct {
		name  string
		scale float64
	}{
		{"T", 1e12}, {"G", 1e9}, {"meg", 1e6}, {"k", 1e3}, {"", 1},
		{"m", 1e-3}, {"µ", 1e-6}, {"n", 1e-9}, {"p", 1e-12}, {"f", 1e-15},
	}
	abs := math.Abs(v)
	for _, s := range scales {
		if abs >= s.scale*0.9995 {
			return strconv.FormatFloat(v/s.scale, 'g', 4, 64) + s.name
		}
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}
