package maths

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax 复数格式错误
var ErrSyntax = errors.New("复数格式错误")

// Parse 解析复数字符串
// 支持 a+bi a-bi a+ib a-ib 以及纯实数 a 和纯虚数 bi
func Parse(s string) (Complex, error) {
	str := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if str == "" {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	k := splitIndex(str)
	if k < 0 {
		// 单独实部或虚部
		if strings.ContainsRune(str, 'i') {
			im, err := parseImag(str)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", ErrSyntax, s)
			}
			return New(0, im), nil
		}
		re, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrSyntax, s)
		}
		return New(re, 0), nil
	}
	re, err := strconv.ParseFloat(str[:k], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	im, err := parseImag(str[k:])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	return New(re, im), nil
}

// splitIndex 实部与虚部之间的符号位置，指数符号除外
func splitIndex(s string) int {
	for i := len(s) - 1; i > 0; i-- {
		if s[i] != '+' && s[i] != '-' {
			continue
		}
		if prev := s[i-1]; prev == 'e' || prev == 'E' {
			continue
		}
		return i
	}
	return -1
}

// parseImag 解析 ±bi 或 ±ib
func parseImag(t string) (float64, error) {
	sign := ""
	if t != "" && (t[0] == '+' || t[0] == '-') {
		sign, t = t[:1], t[1:]
	}
	switch {
	case strings.HasPrefix(t, "i"):
		t = t[1:]
	case strings.HasSuffix(t, "i"):
		t = t[:len(t)-1]
	default:
		return 0, ErrSyntax
	}
	if t == "" {
		t = "1"
	}
	return strconv.ParseFloat(sign+t, 64)
}
