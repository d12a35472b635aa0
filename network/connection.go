package network

import (
	"fmt"
	"strings"
)

// Connection 连接方式
type Connection uint8

const (
	Series   Connection = iota + 1 // 串联
	Parallel                       // 并联
)

// String 连接名称
func (c Connection) String() string {
	switch c {
	case Series:
		return "series"
	case Parallel:
		return "parallel"
	}
	return "unknown"
}

// Prefix 标签前缀
func (c Connection) Prefix() string {
	switch c {
	case Series:
		return "S"
	case Parallel:
		return "P"
	}
	return ""
}

// ParseConnection 解析连接方式，支持全称与前缀
func ParseConnection(s string) (Connection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "series", "s":
		return Series, nil
	case "parallel", "p":
		return Parallel, nil
	}
	return 0, fmt.Errorf("未知的连接方式 '%s'", s)
}
