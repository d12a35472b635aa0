package render

import (
	"accircuit/analysis"
	"accircuit/utils"
	"io"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// Charts 扫描结果网页曲线
type Charts struct {
	Results []*analysis.Result
}

// newLine 曲线公共配置
func newLine(title, subtitle, yName string, yLog bool) *charts.Line {
	line := charts.NewLine()
	yAxis := opts.YAxis{Name: yName, Scale: opts.Bool(true)}
	if yLog {
		yAxis.Type = "log"
	}
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "f (Hz)"}),
		charts.WithYAxisOpts(yAxis),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithAnimation(true),
	)
	return line
}

// Render 输出 HTML 页面
// 各结果横轴使用第一个结果的频率点，开路点留空
func (c *Charts) Render(w io.Writer) error {
	positive := true
	for _, res := range c.Results {
		for _, p := range res.Points {
			positive = positive && (p.Open || p.Magnitude() > 0)
		}
	}
	lineZ := newLine("阻抗曲线", "阻抗模随频率变化", "|Z| (Ω)", positive)
	lineP := newLine("相位曲线", "阻抗相位随频率变化", "φ (°)", false)
	if len(c.Results) > 0 {
		axis := make([]string, len(c.Results[0].Points))
		for i, p := range c.Results[0].Points {
			axis[i] = utils.FormatValue(p.Frequency)
		}
		lineZ.SetXAxis(axis)
		lineP.SetXAxis(axis)
	}
	for _, res := range c.Results {
		itemsZ := make([]opts.LineData, len(res.Points))
		itemsP := make([]opts.LineData, len(res.Points))
		for i, p := range res.Points {
			if p.Open {
				itemsZ[i].Value = "-"
				itemsP[i].Value = "-"
				continue
			}
			itemsZ[i].Value = round(p.Magnitude())
			itemsP[i].Value = round(p.Phase())
		}
		lineZ.AddSeries(res.Label, itemsZ)
		lineP.AddSeries(res.Label, itemsP)
	}
	page := components.NewPage()
	page.PageTitle = "阻抗扫描"
	page.AddCharts(lineZ, lineP)
	return page.Render(w)
}

// Handler 发布到网页面
func (c *Charts) Handler(w http.ResponseWriter, _ *http.Request) {
	if err := c.Render(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// round 保留 6 位有效数字
func round(v float64) float64 {
	if v == 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	scale := math.Pow(10, 5-math.Floor(math.Log10(math.Abs(v))))
	return math.Round(v*scale) / scale
}
