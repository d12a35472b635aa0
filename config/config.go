// Package config 读取与保存 accircuit.yaml 配置。
package config

import (
	"accircuit/analysis"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// 环境变量
const (
	EnvLogLevel  = "ACCIRCUIT_LOG_LEVEL"
	EnvStorePath = "ACCIRCUIT_STORE"
	EnvFrequency = "ACCIRCUIT_FREQUENCY"
)

// DefaultPath 默认配置文件
const DefaultPath = "accircuit.yaml"

// Config 全部配置
type Config struct {
	// 新建电路的默认频率(Hz)
	Frequency float64 `yaml:"frequency"`
	// 默认存档文件
	SaveFile string `yaml:"save_file"`

	Sweep   SweepConfig   `yaml:"sweep"`
	Plot    PlotConfig    `yaml:"plot"`
	Store   StoreConfig   `yaml:"store"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// SweepConfig 频率扫描
type SweepConfig struct {
	Start   float64 `yaml:"start"`
	Stop    float64 `yaml:"stop"`
	Points  int     `yaml:"points"`
	Workers int     `yaml:"workers"` // 0 表示 CPU 数
}

// PlotConfig 曲线图
type PlotConfig struct {
	WidthCM  float64 `yaml:"width_cm"`
	HeightCM float64 `yaml:"height_cm"`
	Format   string  `yaml:"format"` // png svg pdf
}

// StoreConfig 快照数据库
type StoreConfig struct {
	Path string `yaml:"path"`
}

// WatchConfig 文件监视
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// LoggingConfig 日志
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug info warn error
	Format string `yaml:"format"` // json console
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Frequency: 50,
		SaveFile:  "project.sav",
		Sweep: SweepConfig{
			Start:  1,
			Stop:   1e6,
			Points: 201,
		},
		Plot: PlotConfig{
			WidthCM:  16,
			HeightCM: 12,
			Format:   "png",
		},
		Store: StoreConfig{
			Path: ".accircuit/snapshots.db",
		},
		Watch: WatchConfig{
			DebounceMS: 200,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load 读取配置文件，文件不存在时使用默认值
// 环境变量优先于文件内容
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("读取配置失败: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置失败: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save 写出配置文件
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入配置失败: %w", err)
	}
	return nil
}

// applyEnvOverrides 环境变量覆盖
func (c *Config) applyEnvOverrides() error {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if path := os.Getenv(EnvStorePath); path != "" {
		c.Store.Path = path
	}
	if freq := os.Getenv(EnvFrequency); freq != "" {
		f, err := strconv.ParseFloat(freq, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFrequency, err)
		}
		c.Frequency = f
	}
	return nil
}

// ValidLevels 支持的日志级别
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Frequency < 0 {
		return fmt.Errorf("无效频率: %g", c.Frequency)
	}
	if err := c.SweepRange().Validate(); err != nil {
		return err
	}
	if c.Plot.WidthCM <= 0 || c.Plot.HeightCM <= 0 {
		return fmt.Errorf("无效图片尺寸: %gx%g", c.Plot.WidthCM, c.Plot.HeightCM)
	}
	valid := false
	for _, l := range ValidLevels {
		if c.Logging.Level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("无效日志级别: %s (可选: %v)", c.Logging.Level, ValidLevels)
	}
	return nil
}

// SweepRange 扫描参数
func (c *Config) SweepRange() analysis.Range {
	return analysis.Range{
		Start:   c.Sweep.Start,
		Stop:    c.Sweep.Stop,
		Points:  c.Sweep.Points,
		Workers: c.Sweep.Workers,
	}
}
