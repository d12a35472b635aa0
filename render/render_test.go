package render

import (
	"accircuit/analysis"
	"accircuit/element"
	"accircuit/element/capacitor"
	"accircuit/element/inductor"
	"accircuit/element/resistor"
	"accircuit/network"
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labeled(c element.Component, label string) element.Component {
	c.SetLabel(label)
	return c
}

// fixture 构建 S1 = R1 + C1 + L1 + P2(R2 || C2)
func fixture(t *testing.T) (*network.Circuit, *network.Circuit) {
	t.Helper()
	p := network.New(network.Parallel, 50)
	p.SetLabel("P2")
	require.NoError(t, p.AddComponent(labeled(resistor.New(100), "R2")))
	require.NoError(t, p.AddComponent(labeled(capacitor.New(1e-6), "C2")))
	require.NoError(t, p.AddComponent(labeled(inductor.New(1e-3), "L2")))

	s := network.New(network.Series, 50)
	s.SetLabel("S1")
	require.NoError(t, s.AddComponent(labeled(resistor.New(100), "R1")))
	require.NoError(t, s.AddComponent(labeled(capacitor.New(1e-6), "C1")))
	require.NoError(t, s.AddComponent(labeled(inductor.New(1e-3), "L1")))
	require.NoError(t, s.AddSubcircuit(p))
	return s, p
}

func TestDrawSeries(t *testing.T) {
	s, _ := fixture(t)
	out := DrawString(s)
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "S1")
	assert.Contains(t, out, "+--(~)--+")
	assert.Contains(t, out, "|      | | R1")
	assert.Contains(t, out, "|      === C1")
	assert.Contains(t, out, "|       $  L1")
	assert.Contains(t, out, "|     .-+-.")
	assert.Contains(t, out, "|     |P2 |")
	assert.Contains(t, out, "|Z|=100Ω")
	assert.True(t, strings.HasSuffix(out, "+-------+\n"))
}

func TestDrawParallel(t *testing.T) {
	_, p := fixture(t)
	out := DrawString(p)
	assert.Contains(t, out, "+--(~)---+")
	assert.Contains(t, out, "+-+____+-+ R2")
	assert.Contains(t, out, "+---||---+ C2")
	assert.Contains(t, out, `+-+/\/\+-+ L2`)
	assert.True(t, strings.HasSuffix(out, "+--------+\n"))
}

func TestDrawParallelWideLabel(t *testing.T) {
	sub := network.New(network.Series, 50)
	sub.SetLabel("S123")
	require.NoError(t, sub.AddComponent(labeled(resistor.New(1), "R1")))
	p := network.New(network.Parallel, 50)
	p.SetLabel("P2")
	require.NoError(t, p.AddSubcircuit(sub))

	out := DrawString(p)
	assert.Contains(t, out, "+-+ S123 +-+ |Z|=1Ω")
	// 所有行左右导线对齐
	for _, line := range strings.Split(strings.TrimSpace(out), "\n")[2:] {
		assert.GreaterOrEqual(t, len(line), 12, line)
	}
}

func TestDrawOpenCircuit(t *testing.T) {
	s := network.New(network.Series, 0)
	s.SetLabel("S1")
	require.NoError(t, s.AddComponent(labeled(capacitor.New(1e-6), "C1")))
	assert.Contains(t, DrawString(s), "|Z| = ∞Ω")
}

func TestTables(t *testing.T) {
	s, p := fixture(t)
	comps := append(s.Components(), p.Components()...)
	out := ComponentTable(comps)
	for _, want := range []string{"R1", "capacitor", "1µF", "1mH", "100Ω"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, ComponentTable(nil), emptyText)

	empty := network.New(network.Series, 50)
	empty.SetLabel("S9")
	out = CircuitTable([]*network.Circuit{s, p, empty})
	assert.Contains(t, out, "( R1 C1 L1 P2 )")
	assert.Contains(t, out, "50Hz")
	assert.NotContains(t, out, "S9")
	assert.Contains(t, CircuitTable([]*network.Circuit{empty}), emptyText)
}

func sweep(t *testing.T, c *network.Circuit) *analysis.Result {
	t.Helper()
	res, err := analysis.Sweep(context.Background(), c, analysis.Range{Start: 10, Stop: 1e5, Points: 40})
	require.NoError(t, err)
	return res
}

func TestPlot(t *testing.T) {
	s, _ := fixture(t)
	res := sweep(t, s)

	var png bytes.Buffer
	require.NoError(t, Plot(&png, res, DefaultPlotOptions()))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))

	o := DefaultPlotOptions()
	o.Format = FormatFromPath("bode.SVG")
	var svg bytes.Buffer
	require.NoError(t, Plot(&svg, res, o))
	assert.Contains(t, svg.String(), "<svg")

	o.Format = "bmp"
	assert.Error(t, Plot(&bytes.Buffer{}, res, o))

	open := &analysis.Result{Label: "C1", Points: []analysis.Point{{Frequency: 1, Open: true}}}
	assert.ErrorIs(t, Plot(&bytes.Buffer{}, open, DefaultPlotOptions()), ErrNoData)
}

func TestCharts(t *testing.T) {
	s, p := fixture(t)
	c := &Charts{Results: []*analysis.Result{sweep(t, s), sweep(t, p)}}

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))
	assert.Contains(t, buf.String(), "阻抗曲线")
	assert.Contains(t, buf.String(), "echarts")

	rec := httptest.NewRecorder()
	c.Handler(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "相位曲线")
}

func TestReport(t *testing.T) {
	s, p := fixture(t)
	data := ReportData{
		Title:      "测试",
		Components: append(s.Components(), p.Components()...),
		Circuits:   []*network.Circuit{p, s},
		Sweeps:     []*analysis.Result{sweep(t, s)},
	}
	md := Markdown(data)
	assert.Contains(t, md, "# 测试")
	assert.Contains(t, md, "### S1")
	assert.Contains(t, md, "-90°")
	assert.Contains(t, md, "## 扫描 S1")

	out, err := Report(data, 100)
	require.NoError(t, err)
	assert.Contains(t, out, "S1")
	assert.Contains(t, out, "R1")
}

func TestMagnitude(t *testing.T) {
	assert.Equal(t, "4.7kΩ", Magnitude(4700, nil))
	assert.Equal(t, "∞Ω", Magnitude(0, element.ErrOpenCircuit))
	assert.Equal(t, "-", Magnitude(0, network.ErrEmptyCircuit))
}
