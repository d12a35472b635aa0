package main

import (
	"accircuit/element"
	"accircuit/network"
	"accircuit/utils"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// addCmd 向存档添加元件或电路
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "添加元件或电路",
}

var addComponentCmd = &cobra.Command{
	Use:   "component <resistor|capacitor|inductor|R|C|L> <value>",
	Short: "添加元件，值可带工程后缀如 4.7k 10u",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := element.TypeByName(args[0])
		if err != nil {
			if t, err = element.TypeByPrefix(args[0]); err != nil {
				return err
			}
		}
		value, err := utils.ParseValue(args[1])
		if err != nil {
			return err
		}
		p, err := loadProject(true)
		if err != nil {
			return err
		}
		comp, err := p.AddComponent(t, value)
		if err != nil {
			return err
		}
		if err := p.SaveFile(saveFile); err != nil {
			return err
		}
		logger.Info("元件已添加", zap.String("label", comp.Label()), zap.Float64("value", value))
		fmt.Fprintln(cmd.OutOrStdout(), comp.Label())
		return nil
	},
}

var addCircuitCmd = &cobra.Command{
	Use:   "circuit <series|parallel> [member...]",
	Short: "创建电路并加入成员",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := network.ParseConnection(args[0])
		if err != nil {
			return err
		}
		f := cfg.Frequency
		if circuitFreq != "" {
			if f, err = utils.ParseValue(circuitFreq); err != nil {
				return err
			}
		}
		p, err := loadProject(true)
		if err != nil {
			return err
		}
		c, err := p.AddCircuit(conn, f)
		if err != nil {
			return err
		}
		if err := p.Attach(c.Label(), args[1:]...); err != nil {
			return err
		}
		if err := p.SaveFile(saveFile); err != nil {
			return err
		}
		logger.Info("电路已创建", zap.String("label", c.Label()), zap.Strings("members", c.Members()))
		fmt.Fprintln(cmd.OutOrStdout(), c.Label())
		return nil
	},
}

// attachCmd 向已有电路加入成员
var attachCmd = &cobra.Command{
	Use:   "attach <circuit> <member...>",
	Short: "向电路加入元件或子电路",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(false)
		if err != nil {
			return err
		}
		if err := p.Attach(args[0], args[1:]...); err != nil {
			return err
		}
		return p.SaveFile(saveFile)
	},
}

// removeCmd 删除
var removeCmd = &cobra.Command{
	Use:   "remove <label...>",
	Short: "删除未被引用的元件或电路",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(false)
		if err != nil {
			return err
		}
		for _, label := range args {
			if err := p.Remove(label); err != nil {
				return err
			}
		}
		return p.SaveFile(saveFile)
	},
}

// renameCmd 改标签
var renameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "修改标签",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(false)
		if err != nil {
			return err
		}
		if err := p.Rename(args[0], args[1]); err != nil {
			return err
		}
		return p.SaveFile(saveFile)
	},
}

// freqCmd 修改电路频率
var freqCmd = &cobra.Command{
	Use:   "freq <circuit> <frequency>",
	Short: "修改电路频率，向下传递到子电路",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := utils.ParseValue(args[1])
		if err != nil {
			return err
		}
		p, err := loadProject(false)
		if err != nil {
			return err
		}
		if err := p.SetFrequency(args[0], f); err != nil {
			return err
		}
		return p.SaveFile(saveFile)
	},
}

var circuitFreq string

func init() {
	addCircuitCmd.Flags().StringVar(&circuitFreq, "frequency", "", "电路频率，默认取配置")
	addCmd.AddCommand(addComponentCmd, addCircuitCmd)
	rootCmd.AddCommand(addCmd, attachCmd, removeCmd, renameCmd, freqCmd)
}
