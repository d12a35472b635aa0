package render

import (
	"accircuit/analysis"
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData 扫描结果中没有可绘制的点
var ErrNoData = errors.New("没有可绘制的数据")

// PlotOptions 曲线图参数
type PlotOptions struct {
	Width  vg.Length // 图宽
	Height vg.Length // 图高
	Format string    // png svg pdf 等
}

// DefaultPlotOptions 默认 16cm x 12cm PNG
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 16 * vg.Centimeter, Height: 12 * vg.Centimeter, Format: "png"}
}

// FormatFromPath 由文件扩展名推断图片格式
func FormatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// bodePlots 构建阻抗模与相位两张曲线，横轴为对数频率
func bodePlots(res *analysis.Result) (*plot.Plot, *plot.Plot, error) {
	mag := make(plotter.XYs, 0, len(res.Points))
	phase := make(plotter.XYs, 0, len(res.Points))
	positive := true
	for _, p := range res.Points {
		if p.Open {
			continue
		}
		m := p.Magnitude()
		positive = positive && m > 0
		mag = append(mag, plotter.XY{X: p.Frequency, Y: m})
		phase = append(phase, plotter.XY{X: p.Frequency, Y: p.Phase()})
	}
	if len(mag) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoData, res.Label)
	}

	pm := plot.New()
	pm.Title.Text = fmt.Sprintf("%s 阻抗", res.Label)
	pm.X.Label.Text = "f (Hz)"
	pm.Y.Label.Text = "|Z| (Ω)"
	pm.X.Scale = plot.LogScale{}
	pm.X.Tick.Marker = plot.LogTicks{Prec: -1}
	if positive {
		pm.Y.Scale = plot.LogScale{}
		pm.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	pm.Add(plotter.NewGrid())
	lm, err := plotter.NewLine(mag)
	if err != nil {
		return nil, nil, err
	}
	lm.Color = color.RGBA{R: 0x7a, G: 0xa2, B: 0xf7, A: 0xff}
	pm.Add(lm)

	pp := plot.New()
	pp.X.Label.Text = "f (Hz)"
	pp.Y.Label.Text = "φ (°)"
	pp.X.Scale = plot.LogScale{}
	pp.X.Tick.Marker = plot.LogTicks{Prec: -1}
	pp.Y.Min, pp.Y.Max = -90, 90
	pp.Add(plotter.NewGrid())
	lp, err := plotter.NewLine(phase)
	if err != nil {
		return nil, nil, err
	}
	lp.Color = color.RGBA{R: 0xff, G: 0x9e, B: 0x64, A: 0xff}
	pp.Add(lp)
	return pm, pp, nil
}

// Plot 绘制阻抗模与相位曲线并按格式写出
func Plot(w io.Writer, res *analysis.Result, o PlotOptions) error {
	pm, pp, err := bodePlots(res)
	if err != nil {
		return err
	}
	canvas, err := draw.NewFormattedCanvas(o.Width, o.Height, o.Format)
	if err != nil {
		return err
	}
	plots := [][]*plot.Plot{{pm}, {pp}}
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Millimeter * 2}
	canvases := plot.Align(plots, tiles, draw.New(canvas))
	pm.Draw(canvases[0][0])
	pp.Draw(canvases[1][0])
	_, err = canvas.WriteTo(w)
	return err
}
