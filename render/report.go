package render

import (
	"accircuit/analysis"
	"accircuit/element"
	"accircuit/network"
	"accircuit/utils"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// ReportData 报告内容
type ReportData struct {
	Title      string
	Components []element.Component
	Circuits   []*network.Circuit
	Sweeps     []*analysis.Result // 可选，每个电路的扫描结果
}

// Markdown 生成 Markdown 报告
func Markdown(data ReportData) string {
	var sb strings.Builder
	title := data.Title
	if title == "" {
		title = "交流电路报告"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	sb.WriteString("## 元件库\n\n")
	if len(data.Components) == 0 {
		sb.WriteString(emptyText + "\n\n")
	} else {
		sb.WriteString("| ID | 类型 | 值 | 相位差 |\n|---|---|---|---|\n")
		for _, comp := range data.Components {
			fmt.Fprintf(&sb, "| %s | %s | %s%s | %g° |\n",
				comp.Label(), comp.Type(), utils.FormatValue(comp.Value()), comp.Type().Unit(),
				element.PhaseDifference(comp))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## 电路库\n\n")
	if len(data.Circuits) == 0 {
		sb.WriteString(emptyText + "\n\n")
	}
	for _, c := range data.Circuits {
		fmt.Fprintf(&sb, "### %s\n\n", c.Label())
		fmt.Fprintf(&sb, "- 连接方式: %s\n", c.Connection())
		fmt.Fprintf(&sb, "- 频率: %sHz\n", utils.FormatValue(c.Frequency()))
		fmt.Fprintf(&sb, "- 成员: %s\n", strings.Join(c.Members(), " "))
		if z, err := c.Impedance(); err != nil {
			fmt.Fprintf(&sb, "- 阻抗: %v\n", err)
		} else {
			fmt.Fprintf(&sb, "- 阻抗: %s Ω\n", z)
			fmt.Fprintf(&sb, "- |Z| = %s, φ = %.2f°\n", Magnitude(z.Modulus(), nil), z.ArgumentDeg())
		}
		if c.Len() > 0 {
			sb.WriteString("\n```\n" + DrawString(c) + "```\n")
		}
		sb.WriteString("\n")
	}

	for _, res := range data.Sweeps {
		fmt.Fprintf(&sb, "## 扫描 %s\n\n", res.Label)
		if p, ok := analysis.Resonance(res.Points); ok {
			fmt.Fprintf(&sb, "- 最接近纯阻性: %sHz, |Z| = %s\n", utils.FormatValue(p.Frequency), Magnitude(p.Magnitude(), nil))
		}
		if p, ok := analysis.MinMagnitude(res.Points); ok {
			fmt.Fprintf(&sb, "- 最小阻抗: %sHz, |Z| = %s\n", utils.FormatValue(p.Frequency), Magnitude(p.Magnitude(), nil))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Report 渲染为终端格式，width 为换行宽度
func Report(data ReportData, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(Markdown(data))
}

// ReportAuto 按终端背景自动选择样式
func ReportAuto(data ReportData, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(Markdown(data))
}
