package accircuit

import (
	"accircuit/element"
	"accircuit/element/capacitor"
	"accircuit/element/inductor"
	"accircuit/element/resistor"
	"accircuit/network"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(comps []element.Component) []string {
	out := make([]string, len(comps))
	for i, c := range comps {
		out[i] = c.Label()
	}
	return out
}

func TestLabelAssignment(t *testing.T) {
	p := NewProject()
	r1, err := p.AddComponent(resistor.Type, 100)
	require.NoError(t, err)
	c1, err := p.AddComponent(capacitor.Type, 1e-6)
	require.NoError(t, err)
	r2, err := p.AddComponent(resistor.Type, 220)
	require.NoError(t, err)
	l1, err := p.AddComponent(inductor.Type, 1e-3)
	require.NoError(t, err)

	assert.Equal(t, "R1", r1.Label())
	assert.Equal(t, "C1", c1.Label())
	assert.Equal(t, "R2", r2.Label())
	assert.Equal(t, "L1", l1.Label())

	// 串联与并联共用编号
	s, err := p.AddCircuit(network.Series, 50)
	require.NoError(t, err)
	q, err := p.AddCircuit(network.Parallel, 50)
	require.NoError(t, err)
	s2, err := p.AddCircuit(network.Series, 50)
	require.NoError(t, err)
	assert.Equal(t, "S1", s.Label())
	assert.Equal(t, "P2", q.Label())
	assert.Equal(t, "S3", s2.Label())
}

func TestAddValidation(t *testing.T) {
	p := NewProject()
	_, err := p.AddComponent(resistor.Type, -1)
	assert.ErrorIs(t, err, element.ErrInvalidValue)
	_, err = p.AddComponent(element.Type(42), 1)
	assert.ErrorIs(t, err, element.ErrUnknownType)
	_, err = p.AddCircuit(network.Series, -50)
	assert.ErrorIs(t, err, ErrInvalidFrequency)
	assert.Empty(t, p.Components())
	assert.Empty(t, p.Circuits())
}

func TestAttachAndImpedance(t *testing.T) {
	p := NewProject()
	_, err := p.AddComponent(resistor.Type, 100)
	require.NoError(t, err)
	_, err = p.AddComponent(resistor.Type, 100)
	require.NoError(t, err)
	_, err = p.AddCircuit(network.Parallel, 50)
	require.NoError(t, err)
	require.NoError(t, p.Attach("P1", "R1", "R2"))

	_, err = p.AddComponent(resistor.Type, 25)
	require.NoError(t, err)
	_, err = p.AddCircuit(network.Series, 60)
	require.NoError(t, err)
	require.NoError(t, p.Attach("S2", "R3", "P1"))

	s, err := p.Circuit("S2")
	require.NoError(t, err)
	z, err := s.Impedance()
	require.NoError(t, err)
	assert.InDelta(t, 75, z.Real(), 1e-9)

	// 子电路频率同步为父电路
	sub, err := p.Circuit("P1")
	require.NoError(t, err)
	assert.Equal(t, 60.0, sub.Frequency())

	assert.ErrorIs(t, p.Attach("S2", "X9"), ErrNotFound)
	assert.ErrorIs(t, p.Attach("S9", "R1"), ErrNotFound)
	assert.ErrorIs(t, p.Attach("P1", "S2"), network.ErrCycle)
}

func TestLookup(t *testing.T) {
	p := NewProject()
	_, err := p.AddComponent(inductor.Type, 1e-3)
	require.NoError(t, err)
	_, err = p.AddCircuit(network.Series, 50)
	require.NoError(t, err)

	comp, c, err := p.Lookup("L1")
	require.NoError(t, err)
	assert.NotNil(t, comp)
	assert.Nil(t, c)

	comp, c, err = p.Lookup("S1")
	require.NoError(t, err)
	assert.Nil(t, comp)
	assert.NotNil(t, c)

	_, _, err = p.Lookup("R1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = p.Component("S1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemove(t *testing.T) {
	p := NewProject()
	_, err := p.AddComponent(resistor.Type, 1)
	require.NoError(t, err)
	_, err = p.AddComponent(resistor.Type, 2)
	require.NoError(t, err)
	_, err = p.AddCircuit(network.Series, 50)
	require.NoError(t, err)
	require.NoError(t, p.Attach("S1", "R1"))

	assert.ErrorIs(t, p.Remove("R1"), ErrInUse)
	require.NoError(t, p.Remove("R2"))
	assert.ErrorIs(t, p.Remove("R2"), ErrNotFound)
	require.NoError(t, p.Remove("S1"))
	require.NoError(t, p.Remove("R1"))
	assert.Empty(t, p.Components())

	// 删除后编号不回收
	r, err := p.AddComponent(resistor.Type, 3)
	require.NoError(t, err)
	assert.Equal(t, "R3", r.Label())
}

func TestRename(t *testing.T) {
	p := NewProject()
	_, err := p.AddComponent(resistor.Type, 1)
	require.NoError(t, err)
	_, err = p.AddComponent(resistor.Type, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, p.Rename("R1", "R2"), ErrDuplicateLabel)
	assert.ErrorIs(t, p.Rename("R7", "R8"), ErrNotFound)
	for _, bad := range []string{"", "bad label", "R\t1", "R//x", "R#1", "(R1)", "R\u00a01"} {
		assert.ErrorIs(t, p.Rename("R1", bad), ErrInvalidLabel, bad)
	}

	require.NoError(t, p.Rename("R1", "R5"))
	r, err := p.AddComponent(resistor.Type, 3)
	require.NoError(t, err)
	assert.Equal(t, "R6", r.Label())
}

func TestComponentsNaturalOrder(t *testing.T) {
	p := NewProject()
	for range 10 {
		_, err := p.AddComponent(resistor.Type, 1)
		require.NoError(t, err)
	}
	_, err := p.AddComponent(capacitor.Type, 1e-6)
	require.NoError(t, err)

	got := labels(p.Components())
	assert.Equal(t, []string{"C1", "R1", "R2", "R3", "R4", "R5", "R6", "R7", "R8", "R9", "R10"}, got)
}

func TestSetFrequency(t *testing.T) {
	p := NewProject()
	_, err := p.AddCircuit(network.Series, 50)
	require.NoError(t, err)
	require.NoError(t, p.SetFrequency("S1", 400))
	c, err := p.Circuit("S1")
	require.NoError(t, err)
	assert.Equal(t, 400.0, c.Frequency())
	assert.ErrorIs(t, p.SetFrequency("S1", -1), ErrInvalidFrequency)
	assert.ErrorIs(t, p.SetFrequency("S1", math.NaN()), ErrInvalidFrequency)
	assert.ErrorIs(t, p.SetFrequency("S1", math.Inf(1)), ErrInvalidFrequency)
}

func TestSetFrequencySubcircuit(t *testing.T) {
	p := NewProject()
	_, err := p.AddComponent(resistor.Type, 1)
	require.NoError(t, err)
	_, err = p.AddCircuit(network.Parallel, 50)
	require.NoError(t, err)
	_, err = p.AddCircuit(network.Series, 50)
	require.NoError(t, err)
	require.NoError(t, p.Attach("P1", "R1"))
	require.NoError(t, p.Attach("S2", "P1"))

	// 子电路频率只能随父电路修改
	assert.ErrorIs(t, p.SetFrequency("P1", 1000), ErrSubcircuit)
	require.NoError(t, p.SetFrequency("S2", 1000))
	sub, err := p.Circuit("P1")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, sub.Frequency())
}

func TestAddComponentNonFinite(t *testing.T) {
	p := NewProject()
	_, err := p.AddComponent(resistor.Type, math.Inf(1))
	assert.ErrorIs(t, err, element.ErrInvalidValue)
	_, err = p.AddComponent(capacitor.Type, math.NaN())
	assert.ErrorIs(t, err, element.ErrInvalidValue)
	_, err = p.AddCircuit(network.Series, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidFrequency)
	assert.Empty(t, p.Components())
}

func TestCompareLabels(t *testing.T) {
	assert.Negative(t, CompareLabels("R2", "R10"))
	assert.Positive(t, CompareLabels("R1", "C9"))
	assert.Zero(t, CompareLabels("S3", "S3"))
}
