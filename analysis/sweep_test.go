package analysis

import (
	"accircuit/element/capacitor"
	"accircuit/element/inductor"
	"accircuit/element/resistor"
	"accircuit/network"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesRLC(t *testing.T) *network.Circuit {
	t.Helper()
	c := network.New(network.Series, 50)
	c.SetLabel("S1")
	require.NoError(t, c.AddComponent(resistor.New(10)))
	require.NoError(t, c.AddComponent(inductor.New(1e-3)))
	require.NoError(t, c.AddComponent(capacitor.New(1e-6)))
	return c
}

func TestRangeValidate(t *testing.T) {
	assert.NoError(t, Range{Start: 1, Stop: 1e6, Points: 10}.Validate())
	for _, r := range []Range{
		{Start: 0, Stop: 10, Points: 10},
		{Start: 10, Stop: 10, Points: 10},
		{Start: 1, Stop: 10, Points: 1},
	} {
		assert.ErrorIs(t, r.Validate(), ErrInvalidRange)
	}
}

func TestFrequenciesAreLogSpaced(t *testing.T) {
	freqs := Range{Start: 1, Stop: 1000, Points: 4}.Frequencies()
	require.Len(t, freqs, 4)
	for i, want := range []float64{1, 10, 100, 1000} {
		assert.InDelta(t, want, freqs[i], want*1e-9)
	}
}

func TestSweepSeriesRLC(t *testing.T) {
	c := seriesRLC(t)
	res, err := Sweep(context.Background(), c, Range{Start: 100, Stop: 100e3, Points: 301, Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, "S1", res.Label)
	require.Len(t, res.Points, 301)

	// 升序
	for i := 1; i < len(res.Points); i++ {
		assert.Greater(t, res.Points[i].Frequency, res.Points[i-1].Frequency)
	}

	// 谐振频率 f0 = 1/(2π√LC) ≈ 5033Hz，阻抗接近 R
	f0 := 1 / (2 * math.Pi * math.Sqrt(1e-3*1e-6))
	p, ok := Resonance(res.Points)
	require.True(t, ok)
	assert.InEpsilon(t, f0, p.Frequency, 0.03)
	m, ok := MinMagnitude(res.Points)
	require.True(t, ok)
	assert.InDelta(t, 10, m.Magnitude(), 1)

	// 扫描不改变电路频率
	assert.Equal(t, 50.0, c.Frequency())
}

func TestSweepComponent(t *testing.T) {
	l := inductor.New(1e-3)
	l.SetLabel("L1")
	res, err := Sweep(context.Background(), FromComponent(l), Range{Start: 10, Stop: 1000, Points: 3})
	require.NoError(t, err)
	assert.Equal(t, "L1", res.Label)
	assert.InDelta(t, 2*math.Pi*100*1e-3, res.Points[1].Impedance.Imag(), 1e-9)
}

func TestSweepOpenPoints(t *testing.T) {
	// 空电容值在任何频率下都开路
	c := network.New(network.Series, 50)
	require.NoError(t, c.AddComponent(capacitor.New(0)))
	res, err := Sweep(context.Background(), c, Range{Start: 1, Stop: 10, Points: 5})
	require.NoError(t, err)
	for _, p := range res.Points {
		assert.True(t, p.Open)
		assert.True(t, math.IsInf(p.Magnitude(), 1))
		assert.True(t, math.IsNaN(p.Phase()))
	}
	_, ok := Resonance(res.Points)
	assert.False(t, ok)
}

func TestSweepPropagatesErrors(t *testing.T) {
	_, err := Sweep(context.Background(), network.New(network.Series, 50), Range{Start: 1, Stop: 10, Points: 5})
	assert.ErrorIs(t, err, network.ErrEmptyCircuit)
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sweep(ctx, seriesRLC(t), Range{Start: 1, Stop: 10, Points: 50, Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
