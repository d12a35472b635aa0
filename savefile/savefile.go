// Package savefile 提供工程存档文件的读写。
// 存档为按行组织的文本，字段以空白分隔：
//
//	#SaveFile 19-10-2026 14:03:11
//	[Components]
//	R1 resistor 100
//	C1 capacitor 1e-06
//	[Circuits]
//	S1 series 50 ( R1 C1 )
//	P2 parallel 50 ( S1 R1 )
//	[End]
//
// 本包只负责语法，标签引用与元件类型的校验由工程加载时完成。
package savefile

import (
	"accircuit/utils"
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// 常量定义
const (
	tokenHeader     = "#SaveFile"    // 文件头
	tokenComponents = "[Components]" // 元件段
	tokenCircuits   = "[Circuits]"   // 电路段
	tokenEnd        = "[End]"        // 结束
	tokenLParen     = "("            // 成员列表开始
	tokenRParen     = ")"            // 成员列表结束
	tokenComment    = "//"           // 行注释

	// TimeLayout 存档时间格式(日-月-年 时:分:秒)
	TimeLayout = "02-01-2006 15:04:05"
)

// ErrInvalidSaveFile 存档格式错误
var ErrInvalidSaveFile = errors.New("无效的存档文件")

// ComponentRecord 元件记录
type ComponentRecord struct {
	Label string  // 标签
	Kind  string  // 元件类型名称
	Value float64 // 元件值(SI 单位)
	Line  int     // 行号
}

// CircuitRecord 电路记录
type CircuitRecord struct {
	Label      string   // 标签
	Connection string   // 连接方式
	Frequency  float64  // 频率(Hz)
	Members    []string // 成员标签
	Line       int      // 行号
}

// Document 存档内容
type Document struct {
	SavedAt    time.Time         // 存档时间
	Components []ComponentRecord // 元件列表
	Circuits   []CircuitRecord   // 电路列表
}

// state 解析状态
type state int

const (
	stateHeader state = iota
	stateInitial
	stateComponents
	stateCircuits
	stateEnd
)

// ParseString 解析存档字符串
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Parse 解析存档
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{}
	st := stateHeader
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if st != stateHeader {
			if i := strings.Index(text, tokenComment); i >= 0 {
				text = strings.TrimSpace(text[:i])
			}
		}
		if text == "" {
			continue
		}
		switch {
		case st == stateHeader:
			// 第一行必须为文件头
			if !strings.HasPrefix(text, tokenHeader) {
				return nil, fmt.Errorf("%w: 第 %d 行: 缺少 %s 文件头", ErrInvalidSaveFile, line, tokenHeader)
			}
			stamp := strings.TrimSpace(strings.TrimPrefix(text, tokenHeader))
			if stamp != "" {
				t, err := time.ParseInLocation(TimeLayout, stamp, time.Local)
				if err != nil {
					return nil, fmt.Errorf("%w: 第 %d 行: 存档时间 %q", ErrInvalidSaveFile, line, stamp)
				}
				doc.SavedAt = t
			}
			st = stateInitial
		case text == tokenComponents:
			if st != stateInitial {
				return nil, fmt.Errorf("%w: 第 %d 行: %s 位置错误", ErrInvalidSaveFile, line, tokenComponents)
			}
			st = stateComponents
		case text == tokenCircuits:
			if st != stateComponents {
				return nil, fmt.Errorf("%w: 第 %d 行: %s 位置错误", ErrInvalidSaveFile, line, tokenCircuits)
			}
			st = stateCircuits
		case text == tokenEnd:
			if st != stateCircuits {
				return nil, fmt.Errorf("%w: 第 %d 行: %s 位置错误", ErrInvalidSaveFile, line, tokenEnd)
			}
			st = stateEnd
		case st == stateComponents:
			rec, err := parseComponent(utils.Fields(text))
			if err != nil {
				return nil, fmt.Errorf("%w: 第 %d 行: %v", ErrInvalidSaveFile, line, err)
			}
			rec.Line = line
			doc.Components = append(doc.Components, rec)
		case st == stateCircuits:
			rec, err := parseCircuit(utils.Fields(text))
			if err != nil {
				return nil, fmt.Errorf("%w: 第 %d 行: %v", ErrInvalidSaveFile, line, err)
			}
			rec.Line = line
			doc.Circuits = append(doc.Circuits, rec)
		case st == stateEnd:
			// 结束后的内容忽略
		default:
			return nil, fmt.Errorf("%w: 第 %d 行: 无法识别 %q", ErrInvalidSaveFile, line, text)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	switch st {
	case stateHeader:
		return nil, fmt.Errorf("%w: 空文件", ErrInvalidSaveFile)
	case stateEnd:
		return doc, nil
	}
	return nil, fmt.Errorf("%w: 缺少 %s", ErrInvalidSaveFile, tokenEnd)
}

// parseComponent 解析元件行: 标签 类型 值
func parseComponent(fields utils.NetList) (ComponentRecord, error) {
	if len(fields) != 3 {
		return ComponentRecord{}, fmt.Errorf("元件行需要 3 个字段，得到 %d", len(fields))
	}
	value, err := fields.Value(2)
	if err != nil {
		return ComponentRecord{}, err
	}
	return ComponentRecord{
		Label: fields.ParseString(0, ""),
		Kind:  fields.ParseString(1, ""),
		Value: value,
	}, nil
}

// parseCircuit 解析电路行: 标签 连接方式 频率 ( 成员... )
func parseCircuit(fields utils.NetList) (CircuitRecord, error) {
	if len(fields) < 4 {
		return CircuitRecord{}, fmt.Errorf("电路行字段不足")
	}
	frequency, err := fields.Value(2)
	if err != nil {
		return CircuitRecord{}, err
	}
	// 成员列表，括号可以与标签相连
	list := strings.Join(fields[3:], " ")
	if !strings.HasPrefix(list, tokenLParen) || !strings.HasSuffix(list, tokenRParen) {
		return CircuitRecord{}, fmt.Errorf("成员列表需要以括号包围")
	}
	list = strings.TrimSuffix(strings.TrimPrefix(list, tokenLParen), tokenRParen)
	return CircuitRecord{
		Label:      fields.ParseString(0, ""),
		Connection: fields.ParseString(1, ""),
		Frequency:  frequency,
		Members:    strings.Fields(list),
	}, nil
}

// Write 写出存档
func (doc *Document) Write(w io.Writer) error {
	writer := bufio.NewWriter(w)
	savedAt := doc.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	fmt.Fprintf(writer, "%s %s\n", tokenHeader, savedAt.Format(TimeLayout))
	fmt.Fprintln(writer, tokenComponents)
	for _, rec := range doc.Components {
		fmt.Fprintf(writer, "%s %s %s\n", rec.Label, rec.Kind, formatFloat(rec.Value))
	}
	fmt.Fprintln(writer, tokenCircuits)
	for _, rec := range doc.Circuits {
		fmt.Fprintf(writer, "%s %s %s %s", rec.Label, rec.Connection, formatFloat(rec.Frequency), tokenLParen)
		for _, m := range rec.Members {
			fmt.Fprintf(writer, " %s", m)
		}
		fmt.Fprintf(writer, " %s\n", tokenRParen)
	}
	fmt.Fprintln(writer, tokenEnd)
	return writer.Flush()
}

// formatFloat 以最短精确形式输出数值
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
