package main

import (
	"accircuit"
	"accircuit/analysis"
	"accircuit/config"
	"accircuit/element"
	"accircuit/maths"
	"accircuit/render"
	"accircuit/utils"
	"accircuit/watch"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
)

// listCmd 打印元件库与电路库
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "打印元件库与电路库",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(false)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, render.ComponentTable(p.Components()))
		fmt.Fprintln(out, render.CircuitTable(p.Circuits()))
		return nil
	},
}

// impedanceCmd 计算阻抗
var impedanceCmd = &cobra.Command{
	Use:   "impedance [label...]",
	Short: "计算元件或电路的复阻抗",
	Long: `计算指定标签的复阻抗、模与相位。不指定标签时计算全部电路。
--frequency 指定计算频率，不修改存档中的电路频率。`,
	RunE: runImpedance,
}

// drawCmd 字符电路图
var drawCmd = &cobra.Command{
	Use:   "draw <circuit>",
	Short: "绘制电路字符图",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(false)
		if err != nil {
			return err
		}
		c, err := p.Circuit(args[0])
		if err != nil {
			return err
		}
		return render.Draw(cmd.OutOrStdout(), c)
	},
}

// sweepCmd 频率扫描
var sweepCmd = &cobra.Command{
	Use:   "sweep <label...>",
	Short: "对数频率扫描阻抗，输出曲线图或网页",
	Long: `在 --start 到 --stop 之间按对数等间隔计算阻抗。
--png/--svg 写出 |Z| 与相位曲线图，--html 写出网页曲线，--serve 在指定地址发布网页。`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSweep,
}

// reportCmd 工程报告
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "生成工程报告",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

// watchCmd 监视存档
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "监视存档文件，变化时重新计算并打印电路库",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

// calcCmd 复数计算
var calcCmd = &cobra.Command{
	Use:   "calc <a> <op> <b> | calc <op> <a>",
	Short: "复数计算",
	Long: `复数四则运算与单目运算，复数写作 3+4i、-2i、5 等形式。
以 - 开头的操作数需放在 -- 之后，否则会被当作选项。

  calc 3+4i + 1-2i
  calc -- -2i * -1+i
  calc 1 / 0+1i
  calc mod 3+4i     (模)
  calc arg 3+4i     (辐角，度)
  calc conj 3+4i    (共轭)
  calc conj -- -2i  (共轭)
  calc inv 3+4i     (倒数)`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runCalc,
}

// configCmd 配置
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "配置文件",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "写出默认配置文件",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !forceInit {
			return fmt.Errorf("%s 已存在，使用 --force 覆盖", configPath)
		}
		if err := config.DefaultConfig().Save(configPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已写出 %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "显示生效的配置",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "frequency: %g\nsave_file: %s\n", cfg.Frequency, cfg.SaveFile)
		fmt.Fprintf(out, "sweep: %g..%g (%d 点, %d 并发)\n", cfg.Sweep.Start, cfg.Sweep.Stop, cfg.Sweep.Points, cfg.Sweep.Workers)
		fmt.Fprintf(out, "plot: %gcm x %gcm %s\n", cfg.Plot.WidthCM, cfg.Plot.HeightCM, cfg.Plot.Format)
		fmt.Fprintf(out, "store: %s\nlog: %s %s\n", cfg.Store.Path, cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

var (
	frequency   float64
	sweepStart  string
	sweepStop   string
	points      int
	workers     int
	pngPath     string
	svgPath     string
	htmlPath    string
	serveAddr   string
	reportOut   string
	reportSweep bool
	forceInit   bool
)

func init() {
	impedanceCmd.Flags().Float64Var(&frequency, "frequency", -1, "计算频率(Hz)，默认为电路自身频率")

	sweepCmd.Flags().StringVar(&sweepStart, "start", "", "起始频率，如 10 或 1k")
	sweepCmd.Flags().StringVar(&sweepStop, "stop", "", "终止频率，如 1meg")
	sweepCmd.Flags().IntVar(&points, "points", 0, "采样点数")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "并发数")
	sweepCmd.Flags().StringVar(&pngPath, "png", "", "写出 PNG 曲线图")
	sweepCmd.Flags().StringVar(&svgPath, "svg", "", "写出 SVG 曲线图")
	sweepCmd.Flags().StringVar(&htmlPath, "html", "", "写出网页曲线")
	sweepCmd.Flags().StringVar(&serveAddr, "serve", "", "发布网页曲线的地址，如 :8080")

	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "写出 Markdown 文件而不在终端渲染")
	reportCmd.Flags().BoolVar(&reportSweep, "sweep", false, "包含每个电路的频率扫描")

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "覆盖已有配置")
	configCmd.AddCommand(configInitCmd, configShowCmd)

	rootCmd.AddCommand(listCmd, impedanceCmd, drawCmd, sweepCmd, reportCmd, watchCmd, calcCmd, configCmd)
}

func runImpedance(cmd *cobra.Command, args []string) error {
	p, err := loadProject(false)
	if err != nil {
		return err
	}
	labels := args
	if len(labels) == 0 {
		for _, c := range p.Circuits() {
			labels = append(labels, c.Label())
		}
	}
	out := cmd.OutOrStdout()
	for _, label := range labels {
		target, f, err := lookupTarget(p, label)
		if err != nil {
			return err
		}
		if frequency >= 0 {
			f = frequency
		}
		z, err := target.ImpedanceAt(f)
		switch {
		case errors.Is(err, element.ErrOpenCircuit):
			fmt.Fprintf(out, "%-6s %10sHz  开路\n", label, utils.FormatValue(f))
		case err != nil:
			fmt.Fprintf(out, "%-6s %10sHz  %v\n", label, utils.FormatValue(f), err)
		default:
			fmt.Fprintf(out, "%-6s %10sHz  Z = %s Ω  |Z| = %s  φ = %.2f°\n",
				label, utils.FormatValue(f), z, render.Magnitude(z.Modulus(), nil), z.ArgumentDeg())
		}
	}
	return nil
}

// lookupTarget 按标签取元件或电路，返回其当前频率
func lookupTarget(p *accircuit.Project, label string) (analysis.Impedancer, float64, error) {
	comp, c, err := p.Lookup(label)
	if err != nil {
		return nil, 0, err
	}
	if comp != nil {
		return analysis.FromComponent(comp), comp.Frequency(), nil
	}
	return c, c.Frequency(), nil
}

// sweepRange 命令行参数覆盖配置
func sweepRange() (analysis.Range, error) {
	r := cfg.SweepRange()
	for _, v := range []struct {
		text string
		dst  *float64
	}{{sweepStart, &r.Start}, {sweepStop, &r.Stop}} {
		if v.text == "" {
			continue
		}
		f, err := utils.ParseValue(v.text)
		if err != nil {
			return r, err
		}
		*v.dst = f
	}
	if points > 0 {
		r.Points = points
	}
	if workers > 0 {
		r.Workers = workers
	}
	return r, r.Validate()
}

func runSweep(cmd *cobra.Command, args []string) error {
	p, err := loadProject(false)
	if err != nil {
		return err
	}
	r, err := sweepRange()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	results := make([]*analysis.Result, 0, len(args))
	for _, label := range args {
		target, _, err := lookupTarget(p, label)
		if err != nil {
			return err
		}
		start := time.Now()
		res, err := analysis.Sweep(ctx, target, r)
		if err != nil {
			return err
		}
		logger.Debug("扫描完成",
			zap.String("label", label),
			zap.Int("points", len(res.Points)),
			zap.Duration("elapsed", time.Since(start)))
		results = append(results, res)
		printSweep(out, res)
	}

	for _, img := range []struct{ path, format string }{{pngPath, "png"}, {svgPath, "svg"}} {
		if img.path == "" {
			continue
		}
		o := render.PlotOptions{
			Width:  vg.Length(cfg.Plot.WidthCM) * vg.Centimeter,
			Height: vg.Length(cfg.Plot.HeightCM) * vg.Centimeter,
			Format: img.format,
		}
		// 多个标签时各写一张，文件名加标签
		for _, res := range results {
			path := img.path
			if len(results) > 1 {
				path = strings.TrimSuffix(path, "."+img.format) + "-" + res.Label + "." + img.format
			}
			if err := writeFile(path, func(w io.Writer) error { return render.Plot(w, res, o) }); err != nil {
				return err
			}
			fmt.Fprintf(out, "已写出 %s\n", path)
		}
	}

	charts := &render.Charts{Results: results}
	if htmlPath != "" {
		if err := writeFile(htmlPath, charts.Render); err != nil {
			return err
		}
		fmt.Fprintf(out, "已写出 %s\n", htmlPath)
	}
	if serveAddr != "" {
		return serve(ctx, serveAddr, charts)
	}
	return nil
}

func printSweep(out io.Writer, res *analysis.Result) {
	fmt.Fprintf(out, "%s: %d 点\n", res.Label, len(res.Points))
	if pt, ok := analysis.Resonance(res.Points); ok {
		fmt.Fprintf(out, "  最接近纯阻性  %sHz  |Z| = %s  φ = %.2f°\n",
			utils.FormatValue(pt.Frequency), render.Magnitude(pt.Magnitude(), nil), pt.Phase())
	}
	if pt, ok := analysis.MinMagnitude(res.Points); ok {
		fmt.Fprintf(out, "  最小阻抗      %sHz  |Z| = %s\n",
			utils.FormatValue(pt.Frequency), render.Magnitude(pt.Magnitude(), nil))
	}
}

// serve 发布网页曲线直到中断
func serve(ctx context.Context, addr string, charts *render.Charts) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", charts.Handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("网页曲线已发布", zap.String("addr", addr))
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}

func writeFile(path string, write func(w io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func runReport(cmd *cobra.Command, args []string) error {
	p, err := loadProject(false)
	if err != nil {
		return err
	}
	data := render.ReportData{
		Title:      "交流电路报告: " + saveFile,
		Components: p.Components(),
		Circuits:   p.Circuits(),
	}
	if reportSweep {
		r, err := sweepRange()
		if err != nil {
			return err
		}
		for _, c := range p.Circuits() {
			if c.Len() == 0 {
				continue
			}
			res, err := analysis.Sweep(cmd.Context(), c, r)
			if err != nil {
				logger.Warn("扫描失败", zap.String("label", c.Label()), zap.Error(err))
				continue
			}
			data.Sweeps = append(data.Sweeps, res)
		}
	}
	if reportOut != "" {
		if err := os.WriteFile(reportOut, []byte(render.Markdown(data)), 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已写出 %s\n", reportOut)
		return nil
	}
	text, err := render.ReportAuto(data, 100)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	show := func(p *accircuit.Project) {
		fmt.Fprintf(out, "\n[%s] %s\n", time.Now().Format(time.TimeOnly), saveFile)
		fmt.Fprintln(out, render.ComponentTable(p.Components()))
		fmt.Fprintln(out, render.CircuitTable(p.Circuits()))
	}
	w, err := watch.New(saveFile, watch.Options{
		Debounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		OnReload: show,
		OnError: func(err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "错误: %v\n", err)
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()
	// 先显示当前内容
	w.Reload()
	<-ctx.Done()
	return nil
}

func runCalc(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 2 {
		z, err := maths.Parse(args[1])
		if err != nil {
			return err
		}
		switch strings.ToLower(args[0]) {
		case "mod":
			fmt.Fprintf(out, "%g\n", z.Modulus())
		case "arg":
			fmt.Fprintf(out, "%g°\n", z.ArgumentDeg())
		case "conj":
			fmt.Fprintln(out, z.Conjugate())
		case "inv":
			inv, err := z.Inv()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, inv)
		default:
			return fmt.Errorf("未知运算 %q", args[0])
		}
		return nil
	}
	a, err := maths.Parse(args[0])
	if err != nil {
		return err
	}
	b, err := maths.Parse(args[2])
	if err != nil {
		return err
	}
	var z maths.Complex
	switch args[1] {
	case "+":
		z = a.Add(b)
	case "-":
		z = a.Sub(b)
	case "*", "x":
		z = a.Mul(b)
	case "/":
		if z, err = a.Div(b); err != nil {
			return err
		}
	default:
		return fmt.Errorf("未知运算 %q", args[1])
	}
	fmt.Fprintln(out, z)
	return nil
}
