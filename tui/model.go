// Package tui 交互式菜单：建立元件与电路、打印、保存与载入。
package tui

import (
	"accircuit"
	"accircuit/element"
	"accircuit/element/capacitor"
	"accircuit/element/inductor"
	"accircuit/element/resistor"
	"accircuit/network"
	"accircuit/render"
	"accircuit/utils"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// state 当前等待的输入
type state int

const (
	stateMenu           state = iota // 主菜单选项
	stateAddKind                     // 元件类型 r c l
	stateAddValue                    // 元件值
	stateCircuitFreq                 // 新电路频率
	stateCircuitMembers              // 新电路成员标签
	statePrintCircuit                // 要打印的电路标签
	stateSave                        // 存档文件名
	stateLoad                        // 载入文件名
)

// menuItems 主菜单
var menuItems = []struct {
	key  string
	text string
}{
	{"1", "添加元件"},
	{"2", "打印元件库"},
	{"3", "创建串联电路"},
	{"4", "创建并联电路"},
	{"5", "打印电路库"},
	{"6", "打印电路"},
	{"7", "保存工程"},
	{"8", "载入工程"},
	{"0", "退出"},
}

// kindKeys 元件类型快捷键
var kindKeys = map[string]element.Type{
	"r": resistor.Type,
	"c": capacitor.Type,
	"l": inductor.Type,
}

// Options 界面参数
type Options struct {
	Frequency float64 // 新电路默认频率
	SaveFile  string  // 默认存档文件
	Logger    *zap.Logger
}

// Model 界面状态
type Model struct {
	project    *accircuit.Project
	opts       Options
	input      textinput.Model
	state      state
	kind       element.Type       // 正在添加的元件类型
	connection network.Connection // 正在创建的电路连接方式
	current    *network.Circuit   // 正在添加成员的电路
	output     string             // 最近一次打印内容
	status     string
	err        string
	width      int
	quitting   bool
}

// New 创建界面
func New(p *accircuit.Project, opts Options) Model {
	if p == nil {
		p = accircuit.NewProject()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SaveFile == "" {
		opts.SaveFile = "project.sav"
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()
	m := Model{project: p, opts: opts, input: ti, width: 80}
	m.enter(stateMenu)
	return m
}

// Project 当前工程
func (m Model) Project() *accircuit.Project { return m.project }

// Run 运行界面直到退出，返回最终工程
func Run(p *accircuit.Project, opts Options) (*accircuit.Project, error) {
	final, err := tea.NewProgram(New(p, opts), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	return final.(Model).Project(), nil
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			if m.state != stateMenu {
				m.finishCircuit()
				m.enter(stateMenu)
				return m, nil
			}
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			m.status, m.err = "", ""
			m.submit(value)
			if m.quitting {
				return m, tea.Quit
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// enter 切换状态并设置输入提示
func (m *Model) enter(s state) {
	m.state = s
	m.input.Placeholder = ""
	switch s {
	case stateCircuitFreq:
		m.input.Placeholder = fmt.Sprintf("%g", m.opts.Frequency)
	case stateSave, stateLoad:
		m.input.Placeholder = m.opts.SaveFile
	}
}

// submit 处理一行输入，错误输入只提示不退出
func (m *Model) submit(value string) {
	switch m.state {
	case stateMenu:
		m.menu(value)
	case stateAddKind:
		m.addKind(value)
	case stateAddValue:
		m.addValue(value)
	case stateCircuitFreq:
		m.circuitFrequency(value)
	case stateCircuitMembers:
		m.circuitMembers(value)
	case statePrintCircuit:
		m.printCircuit(value)
	case stateSave:
		m.save(value)
	case stateLoad:
		m.load(value)
	}
}

func (m *Model) fail(format string, args ...any) {
	m.err = fmt.Sprintf(format, args...)
	m.opts.Logger.Debug("输入错误", zap.String("state", m.prompt()), zap.String("error", m.err))
}

func (m *Model) menu(value string) {
	switch value {
	case "0":
		m.quitting = true
	case "1":
		m.enter(stateAddKind)
	case "2":
		m.output = render.ComponentTable(m.project.Components())
	case "3":
		m.connection = network.Series
		m.enter(stateCircuitFreq)
	case "4":
		m.connection = network.Parallel
		m.enter(stateCircuitFreq)
	case "5":
		m.output = render.CircuitTable(m.project.Circuits())
	case "6":
		m.output = render.CircuitTable(m.project.Circuits())
		m.enter(statePrintCircuit)
	case "7":
		m.enter(stateSave)
	case "8":
		m.enter(stateLoad)
	default:
		m.fail("无效选项 %q，请输入 0-8", value)
	}
}

func (m *Model) addKind(value string) {
	key := strings.ToLower(value)
	if key == "q" {
		m.enter(stateMenu)
		return
	}
	t, ok := kindKeys[key]
	if !ok {
		m.fail("无效类型 %q，请输入 r c l 或 q", value)
		return
	}
	m.kind = t
	m.enter(stateAddValue)
}

func (m *Model) addValue(value string) {
	v, err := utils.ParseValue(value)
	if err != nil {
		m.fail("%v", err)
		return
	}
	comp, err := m.project.AddComponent(m.kind, v)
	if err != nil {
		m.fail("%v", err)
		return
	}
	m.status = fmt.Sprintf("已添加 %s = %s%s", comp.Label(), utils.FormatValue(v), m.kind.Unit())
	m.enter(stateAddKind)
}

func (m *Model) circuitFrequency(value string) {
	f := m.opts.Frequency
	if value != "" {
		v, err := utils.ParseValue(value)
		if err != nil {
			m.fail("%v", err)
			return
		}
		f = v
	}
	c, err := m.project.AddCircuit(m.connection, f)
	if err != nil {
		m.fail("%v", err)
		return
	}
	m.current = c
	m.output = render.ComponentTable(m.project.Components()) + "\n" + render.CircuitTable(m.project.Circuits())
	m.status = fmt.Sprintf("已创建%s电路 %s (%sHz)", connectionName(m.connection), c.Label(), utils.FormatValue(f))
	m.enter(stateCircuitMembers)
}

func (m *Model) circuitMembers(value string) {
	if strings.EqualFold(value, "q") {
		m.finishCircuit()
		m.enter(stateMenu)
		return
	}
	var added, failed []string
	for _, label := range strings.Fields(value) {
		if err := m.project.Attach(m.current.Label(), label); err != nil {
			failed = append(failed, err.Error())
			continue
		}
		added = append(added, label)
	}
	if len(added) > 0 {
		m.status = fmt.Sprintf("已加入 %s", strings.Join(added, " "))
		if m.hasSubcircuit(added) {
			m.status += fmt.Sprintf("，子电路频率已同步为 %sHz", utils.FormatValue(m.current.Frequency()))
		}
	}
	if len(failed) > 0 {
		m.fail("%s", strings.Join(failed, "; "))
	}
}

// hasSubcircuit 新加入的成员中是否有子电路
func (m *Model) hasSubcircuit(labels []string) bool {
	for _, label := range labels {
		if _, err := m.project.Circuit(label); err == nil {
			return true
		}
	}
	return false
}

// finishCircuit 结束成员输入并打印新电路
func (m *Model) finishCircuit() {
	if m.current == nil {
		return
	}
	m.output = render.DrawString(m.current)
	m.current = nil
}

func (m *Model) printCircuit(value string) {
	m.enter(stateMenu)
	c, err := m.project.Circuit(value)
	if err != nil {
		m.fail("%v", err)
		return
	}
	m.output = render.DrawString(c)
}

func (m *Model) save(value string) {
	if value == "" {
		value = m.opts.SaveFile
	}
	m.enter(stateMenu)
	if err := m.project.SaveFile(value); err != nil {
		m.fail("保存失败: %v", err)
		return
	}
	m.opts.Logger.Info("工程已保存", zap.String("path", value))
	m.status = fmt.Sprintf("已保存到 %s", value)
}

func (m *Model) load(value string) {
	if value == "" {
		value = m.opts.SaveFile
	}
	m.enter(stateMenu)
	p, err := accircuit.LoadFile(value)
	if err != nil {
		m.fail("载入失败: %v", err)
		return
	}
	m.project = p
	m.opts.Logger.Info("工程已载入", zap.String("path", value))
	m.status = fmt.Sprintf("已载入 %s: %d 个元件, %d 个电路", value, len(p.Components()), len(p.Circuits()))
	m.output = render.ComponentTable(p.Components()) + "\n" + render.CircuitTable(p.Circuits())
}

func connectionName(c network.Connection) string {
	if c == network.Parallel {
		return "并联"
	}
	return "串联"
}

// prompt 当前输入提示
func (m Model) prompt() string {
	switch m.state {
	case stateAddKind:
		return "添加电阻(r)、电容(c)或电感(l)？输入 q 返回"
	case stateAddValue:
		return fmt.Sprintf("输入%s值(%s)，可带后缀如 4.7k 10u", m.kind, m.kind.Unit())
	case stateCircuitFreq:
		return fmt.Sprintf("输入%s电路频率(Hz)", connectionName(m.connection))
	case stateCircuitMembers:
		return fmt.Sprintf("输入要加入 %s 的元件或子电路标签，以空格分隔；输入 q 完成", m.current.Label())
	case statePrintCircuit:
		return "输入要打印的电路标签"
	case stateSave:
		return "输入保存的文件名"
	case stateLoad:
		return "输入要载入的文件名"
	}
	return "选择选项"
}

func (m Model) renderMenu() string {
	lines := make([]string, 0, len(menuItems))
	for _, item := range menuItems {
		lines = append(lines, menuKeyStyle.Render(item.key)+"  "+menuNormalStyle.Render(item.text))
	}
	return menuBorderStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) View() string {
	if m.quitting {
		return "退出\n"
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("交流电路工具") + "\n\n")
	if m.output != "" {
		out := lipgloss.JoinHorizontal(lipgloss.Top, m.renderMenu(), " ", outputStyle.Render(strings.TrimRight(m.output, "\n")))
		sb.WriteString(out + "\n")
	} else {
		sb.WriteString(m.renderMenu() + "\n")
	}
	if m.status != "" {
		sb.WriteString(statusStyle.Render(m.status) + "\n")
	}
	if m.err != "" {
		sb.WriteString(errorStyle.Render(m.err) + "\n")
	}
	sb.WriteString(promptStyle.Render(m.prompt()) + "\n")
	sb.WriteString(m.input.View() + "\n")
	sb.WriteString(dimStyle.Render("enter 确认 · esc 返回菜单 · ctrl+c 退出") + "\n")
	return sb.String()
}
