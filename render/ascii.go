// Package render 电路与分析结果的输出：字符图、表格、曲线与报告。
package render

import (
	"accircuit/element"
	"accircuit/element/capacitor"
	"accircuit/element/inductor"
	"accircuit/element/resistor"
	"accircuit/network"
	"accircuit/utils"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"
)

// Magnitude 阻抗模文本，开路显示 ∞
func Magnitude(mag float64, err error) string {
	switch {
	case errors.Is(err, element.ErrOpenCircuit):
		return "∞Ω"
	case err != nil:
		return "-"
	case math.IsInf(mag, 1):
		return "∞Ω"
	}
	return utils.FormatValue(mag) + "Ω"
}

// componentMagnitude 元件在指定频率下的阻抗模文本
func componentMagnitude(comp element.Component, frequency float64) string {
	z, err := comp.Impedance(frequency)
	return Magnitude(z.Modulus(), err)
}

// circuitMagnitude 电路总阻抗模文本
func circuitMagnitude(c *network.Circuit) string {
	mag, err := c.Magnitude()
	return Magnitude(mag, err)
}

// Draw 绘制电路字符图，元件在前，子电路以方框表示
func Draw(w io.Writer, c *network.Circuit) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "电路 %s (%s, %sHz) 总阻抗 |Z| = %s\n\n",
		c.Label(), c.Connection(), utils.FormatValue(c.Frequency()), circuitMagnitude(c))
	switch c.Connection() {
	case network.Series:
		drawSeries(&sb, c)
	case network.Parallel:
		drawParallel(&sb, c)
	default:
		return fmt.Errorf("未知的连接方式: %d", c.Connection())
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// DrawString 绘制电路字符图并返回文本
func DrawString(c *network.Circuit) string {
	var sb strings.Builder
	if err := Draw(&sb, c); err != nil {
		return err.Error()
	}
	return sb.String()
}

// drawSeries 串联：元件沿右侧导线依次排列
func drawSeries(sb *strings.Builder, c *network.Circuit) {
	f := c.Frequency()
	sb.WriteString("+--(~)--+\n")
	for _, comp := range c.Components() {
		label, mag := comp.Label(), componentMagnitude(comp, f)
		sb.WriteString("|       |\n")
		switch comp.Type() {
		case resistor.Type:
			fmt.Fprintf(sb, "|      .+.\n|      | | %s\n|      '+' |Z|=%s\n", label, mag)
		case capacitor.Type:
			fmt.Fprintf(sb, "|       |\n|      === %s\n|       |  |Z|=%s\n", label, mag)
		case inductor.Type:
			fmt.Fprintf(sb, "|       $\n|       $  %s\n|       $  |Z|=%s\n", label, mag)
		default:
			fmt.Fprintf(sb, "|      [?] %s\n|       |  |Z|=%s\n", label, mag)
		}
	}
	for _, sub := range c.Subcircuits() {
		label := sub.Label()
		inner := max(3, utf8.RuneCountInString(label))
		edge := "-+" + strings.Repeat("-", inner-2)
		sb.WriteString("|       |\n")
		fmt.Fprintf(sb, "|     .%s.\n", edge)
		fmt.Fprintf(sb, "|     |%-*s|\n", inner, label)
		fmt.Fprintf(sb, "|     '%s' |Z|=%s\n", edge, circuitMagnitude(sub))
	}
	sb.WriteString("|       |\n+-------+\n")
}

// drawParallel 并联：每条支路一行横跨两侧导线
func drawParallel(sb *strings.Builder, c *network.Circuit) {
	f := c.Frequency()
	inner := 8
	for _, sub := range c.Subcircuits() {
		inner = max(inner, utf8.RuneCountInString(sub.Label())+6)
	}
	row := func(edge, fill, content string) string {
		n := inner - utf8.RuneCountInString(content)
		left := n / 2
		return edge + strings.Repeat(fill, left) + content + strings.Repeat(fill, n-left) + edge
	}
	blank := row("|", " ", "")
	sb.WriteString(row("+", "-", "(~)") + "\n")
	for _, comp := range c.Components() {
		label, mag := comp.Label(), componentMagnitude(comp, f)
		sb.WriteString(blank + "\n")
		switch comp.Type() {
		case resistor.Type:
			sb.WriteString(row("|", " ", "____") + "\n")
			sb.WriteString(row("+", "-", "+____+") + " " + label + "\n")
		case capacitor.Type:
			sb.WriteString(blank + "\n")
			sb.WriteString(row("+", "-", "||") + " " + label + "\n")
		case inductor.Type:
			sb.WriteString(blank + "\n")
			sb.WriteString(row("+", "-", `+/\/\+`) + " " + label + "\n")
		default:
			sb.WriteString(blank + "\n")
			sb.WriteString(row("+", "-", "[?]") + " " + label + "\n")
		}
		sb.WriteString(blank + " |Z|=" + mag + "\n")
	}
	for _, sub := range c.Subcircuits() {
		label := sub.Label()
		n := utf8.RuneCountInString(label)
		sb.WriteString(blank + "\n")
		sb.WriteString(row("|", " ", "."+strings.Repeat("-", n+2)+".") + "\n")
		sb.WriteString(row("+", "-", "+ "+label+" +") + " |Z|=" + circuitMagnitude(sub) + "\n")
		sb.WriteString(row("|", " ", "'"+strings.Repeat("-", n+2)+"'") + "\n")
	}
	sb.WriteString(blank + "\n")
	sb.WriteString(row("+", "-", "") + "\n")
}
