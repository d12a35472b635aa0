package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// env 单个测试的工作目录
type env struct {
	dir  string
	file string
	conf string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ACCIRCUIT_STORE", filepath.Join(dir, "snapshots.db"))
	return env{
		dir:  dir,
		file: filepath.Join(dir, "project.sav"),
		conf: filepath.Join(dir, "accircuit.yaml"),
	}
}

// run 执行命令并返回标准输出
func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// 重置上一次执行留下的参数
	saveFile, verbose, frequency = "", false, -1
	sweepStart, sweepStop, points, workers = "", "", 0, 0
	pngPath, svgPath, htmlPath, serveAddr = "", "", "", ""
	reportOut, reportSweep, forceInit, circuitFreq = "", false, false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", e.conf, "--file", e.file}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, out)
	return out
}

// build 建立 S3 = R1 + (R2 || C1)
func (e env) build(t *testing.T) {
	t.Helper()
	assert.Equal(t, "R1\n", e.mustRun(t, "add", "component", "resistor", "100"))
	assert.Equal(t, "R2\n", e.mustRun(t, "add", "component", "R", "1k"))
	assert.Equal(t, "C1\n", e.mustRun(t, "add", "component", "capacitor", "1u"))
	assert.Equal(t, "P1\n", e.mustRun(t, "add", "circuit", "parallel", "R2", "C1"))
	assert.Equal(t, "S2\n", e.mustRun(t, "add", "circuit", "series", "--frequency", "1k", "R1", "P1"))
}

func TestEditAndList(t *testing.T) {
	e := newEnv(t)
	e.build(t)

	out := e.mustRun(t, "list")
	assert.Contains(t, out, "1kΩ")
	assert.Contains(t, out, "( R1 P1 )")

	e.mustRun(t, "rename", "R1", "R9")
	e.mustRun(t, "freq", "S2", "50")
	_, err := e.run(t, "freq", "P1", "400")
	assert.Error(t, err)
	_, err = e.run(t, "rename", "R2", "R//2")
	assert.Error(t, err)
	_, err = e.run(t, "remove", "R2")
	assert.Error(t, err)
	e.mustRun(t, "add", "component", "inductor", "10m")
	e.mustRun(t, "attach", "S2", "L1")

	out = e.mustRun(t, "list")
	assert.Contains(t, out, "( R9 L1 P1 )")
	assert.Contains(t, out, "50Hz")

	_, err = e.run(t, "add", "component", "transistor", "1")
	assert.Error(t, err)
}

func TestImpedanceAndDraw(t *testing.T) {
	e := newEnv(t)
	e.build(t)

	out := e.mustRun(t, "impedance", "R1", "S2")
	assert.Contains(t, out, "R1")
	assert.Contains(t, out, "|Z| = 100Ω")
	assert.Contains(t, out, "S2")

	out = e.mustRun(t, "impedance", "--frequency", "0", "C1")
	assert.Contains(t, out, "开路")

	out = e.mustRun(t, "draw", "S2")
	assert.Contains(t, out, "+--(~)--+")
	assert.Contains(t, out, "|     |P1 |")

	_, err := e.run(t, "draw", "S7")
	assert.Error(t, err)
}

func TestSweepOutputs(t *testing.T) {
	e := newEnv(t)
	e.build(t)
	png := filepath.Join(e.dir, "bode.png")
	html := filepath.Join(e.dir, "bode.html")

	out := e.mustRun(t, "sweep", "S2", "--start", "10", "--stop", "100k", "--points", "31", "--png", png, "--html", html)
	assert.Contains(t, out, "S2: 31 点")
	assert.FileExists(t, png)
	assert.FileExists(t, html)

	_, err := e.run(t, "sweep", "S2", "--start", "100", "--stop", "10")
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	e := newEnv(t)
	e.build(t)
	md := filepath.Join(e.dir, "report.md")
	e.mustRun(t, "report", "--sweep", "--out", md)
	data, err := os.ReadFile(md)
	require.NoError(t, err)
	assert.Contains(t, string(data), "### S2")
	assert.Contains(t, string(data), "## 扫描 S2")
}

func TestSnapshots(t *testing.T) {
	e := newEnv(t)
	e.build(t)

	id := strings.TrimSpace(e.mustRun(t, "snapshot", "save", "v1"))
	assert.Len(t, id, 36)
	assert.Contains(t, e.mustRun(t, "snapshot", "list"), "v1")

	require.NoError(t, os.Remove(e.file))
	e.mustRun(t, "snapshot", "load", "v1")
	assert.Contains(t, e.mustRun(t, "list"), "( R1 P1 )")

	e.mustRun(t, "snapshot", "delete", id)
	_, err := e.run(t, "snapshot", "load", id)
	assert.Error(t, err)
}

func TestCalc(t *testing.T) {
	e := newEnv(t)
	cases := map[string][]string{
		"4+2i\n":  {"calc", "3+4i", "+", "1-2i"},
		"-5+10i\n": {"calc", "1+2i", "*", "3+4i"},
		"0-1i\n":  {"calc", "1", "/", "i"},
		"5\n":     {"calc", "mod", "3+4i"},
		"3-4i\n":  {"calc", "conj", "3+4i"},
		"0+2i\n":  {"calc", "conj", "--", "-2i"},
		"2+2i\n":  {"calc", "--", "-2i", "*", "-1+i"},
	}
	for want, args := range cases {
		assert.Equal(t, want, e.mustRun(t, args...), args)
	}
	_, err := e.run(t, "calc", "1", "/", "0")
	assert.Error(t, err)
	_, err = e.run(t, "calc", "1", "%", "2")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "config", "init")
	assert.FileExists(t, e.conf)
	_, err := e.run(t, "config", "init")
	assert.Error(t, err)
	e.mustRun(t, "config", "init", "--force")
	assert.Contains(t, e.mustRun(t, "config", "show"), "frequency: 50")
}
