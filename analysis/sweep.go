// Package analysis 提供电路阻抗的频率扫描。
package analysis

import (
	"accircuit/element"
	"accircuit/maths"
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalidRange 扫描范围错误
var ErrInvalidRange = errors.New("无效扫描范围")

// Impedancer 可在任意频率下计算阻抗的对象
// *network.Circuit 与 element.Component 均满足
type Impedancer interface {
	Label() string
	ImpedanceAt(frequency float64) (maths.Complex, error)
}

// componentAdapter 将元件适配为 Impedancer
type componentAdapter struct{ element.Component }

func (c componentAdapter) ImpedanceAt(frequency float64) (maths.Complex, error) {
	return c.Impedance(frequency)
}

// FromComponent 元件扫描
func FromComponent(c element.Component) Impedancer { return componentAdapter{c} }

// Range 扫描参数
type Range struct {
	Start   float64 // 起始频率(Hz)，必须大于0
	Stop    float64 // 终止频率(Hz)
	Points  int     // 采样点数，至少2
	Workers int     // 并发数，0 表示 CPU 数
}

// Validate 校验扫描参数
func (r Range) Validate() error {
	switch {
	case r.Start <= 0 || math.IsNaN(r.Start) || math.IsInf(r.Start, 0):
		return fmt.Errorf("%w: 起始频率 %g", ErrInvalidRange, r.Start)
	case r.Stop <= r.Start || math.IsInf(r.Stop, 0):
		return fmt.Errorf("%w: 终止频率 %g 不大于起始频率 %g", ErrInvalidRange, r.Stop, r.Start)
	case r.Points < 2:
		return fmt.Errorf("%w: 采样点数 %d", ErrInvalidRange, r.Points)
	}
	return nil
}

// Frequencies 对数等间隔频率
func (r Range) Frequencies() []float64 {
	return floats.LogSpan(make([]float64, r.Points), r.Start, r.Stop)
}

// Point 扫描结果
type Point struct {
	Frequency float64       // 频率(Hz)
	Impedance maths.Complex // 阻抗
	Open      bool          // 开路，阻抗无穷大
}

// Magnitude 阻抗模，开路为 +Inf
func (p Point) Magnitude() float64 {
	if p.Open {
		return math.Inf(1)
	}
	return p.Impedance.Modulus()
}

// Phase 阻抗相位(角度)，开路为 NaN
func (p Point) Phase() float64 {
	if p.Open {
		return math.NaN()
	}
	return p.Impedance.ArgumentDeg()
}

// Result 一次扫描的结果
type Result struct {
	Label  string  // 被扫描对象标签
	Points []Point // 按频率升序
}

// Sweep 在对数频率点上计算阻抗
// 各点相互独立，按 Workers 并发计算；开路点保留并标记
func Sweep(ctx context.Context, target Impedancer, r Range) (*Result, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	freqs := r.Frequencies()
	points := make([]Point, len(freqs))
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range freqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			z, err := target.ImpedanceAt(f)
			switch {
			case errors.Is(err, element.ErrOpenCircuit):
				points[i] = Point{Frequency: f, Open: true}
			case err != nil:
				return fmt.Errorf("%s 在 %gHz: %w", target.Label(), f, err)
			default:
				points[i] = Point{Frequency: f, Impedance: z}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Result{Label: target.Label(), Points: points}, nil
}

// Resonance 相位绝对值最小的点，即最接近纯阻性的频率
func Resonance(points []Point) (Point, bool) {
	best, found := Point{}, false
	for _, p := range points {
		if p.Open {
			continue
		}
		if !found || math.Abs(p.Phase()) < math.Abs(best.Phase()) {
			best, found = p, true
		}
	}
	return best, found
}

// MinMagnitude 阻抗模最小的点
func MinMagnitude(points []Point) (Point, bool) {
	best, found := Point{}, false
	for _, p := range points {
		if p.Open {
			continue
		}
		if !found || p.Magnitude() < best.Magnitude() {
			best, found = p, true
		}
	}
	return best, found
}
