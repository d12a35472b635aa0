// accircuit 交流电路命令行工具。
// 不带参数运行时进入交互菜单。
package main

import (
	"accircuit"
	"accircuit/config"
	"accircuit/logging"
	"accircuit/tui"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// 全局参数
	configPath string
	saveFile   string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "accircuit",
	Short: "交流电路阻抗计算工具",
	Long: `accircuit 管理电阻、电容、电感元件库，以串联与并联方式组合成电路(可嵌套)，
计算各频率下的复阻抗，并输出字符电路图、表格、曲线与报告。

不带参数运行时进入交互菜单。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if saveFile == "" {
			saveFile = cfg.SaveFile
		}
		// 交互界面占用终端，不输出日志
		if cmd == cmd.Root() && !verbose {
			logger = zap.NewNop()
			return nil
		}
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("初始化日志失败: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(true)
		if err != nil {
			return err
		}
		_, err = tui.Run(p, tui.Options{
			Frequency: cfg.Frequency,
			SaveFile:  saveFile,
			Logger:    logger,
		})
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "配置文件")
	rootCmd.PersistentFlags().StringVarP(&saveFile, "file", "f", "", "工程存档文件(默认取配置)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
}

// loadProject 读取存档，allowMissing 时文件不存在返回空工程
func loadProject(allowMissing bool) (*accircuit.Project, error) {
	p, err := accircuit.LoadFile(saveFile)
	if errors.Is(err, os.ErrNotExist) && allowMissing {
		logger.Debug("存档不存在，使用空工程", zap.String("file", saveFile))
		return accircuit.NewProject(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取存档 %s: %w", saveFile, err)
	}
	logger.Debug("存档已读取",
		zap.String("file", saveFile),
		zap.Int("components", len(p.Components())),
		zap.Int("circuits", len(p.Circuits())))
	return p, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
