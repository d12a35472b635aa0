package render

import (
	"accircuit/element"
	"accircuit/network"
	"accircuit/utils"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// 表格样式
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff9e64")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
)

// emptyText 空库提示
const emptyText = "空。"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// ComponentTable 元件库表格：标签、类型、元件值
func ComponentTable(comps []element.Component) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("元件库") + "\n")
	if len(comps) == 0 {
		sb.WriteString(emptyText + "\n")
		return sb.String()
	}
	t := newTable("ID", "类型", "值")
	for _, comp := range comps {
		t.Row(comp.Label(), comp.Type().String(), utils.FormatValue(comp.Value())+comp.Type().Unit())
	}
	sb.WriteString(t.Render() + "\n")
	return sb.String()
}

// CircuitTable 电路库表格：标签、频率、阻抗模、成员
// 没有成员的电路不列出
func CircuitTable(circuits []*network.Circuit) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("电路库") + "\n")
	t := newTable("ID", "频率", "|Z|", "成员")
	rows := 0
	for _, c := range circuits {
		if c.Len() == 0 {
			continue
		}
		rows++
		t.Row(c.Label(), utils.FormatValue(c.Frequency())+"Hz", circuitMagnitude(c),
			"( "+strings.Join(c.Members(), " ")+" )")
	}
	if rows == 0 {
		sb.WriteString(emptyText + "\n")
		return sb.String()
	}
	sb.WriteString(t.Render() + "\n")
	return sb.String()
}
