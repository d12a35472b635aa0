package main

import (
	"accircuit/store"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// snapshotCmd 快照数据库
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "将工程快照保存到 SQLite 数据库",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "保存当前存档为快照",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(false)
		if err != nil {
			return err
		}
		return withStore(cmd, func(s *store.Store) error {
			id, err := s.Save(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var snapshotLoadCmd = &cobra.Command{
	Use:   "load <name|id>",
	Short: "由快照恢复存档文件",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			p, err := s.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := p.SaveFile(saveFile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已恢复到 %s\n", saveFile)
			return nil
		})
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出快照",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			list, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "没有快照")
				return nil
			}
			t := table.New().Border(lipgloss.NormalBorder()).Headers("ID", "名称", "时间", "元件", "电路")
			for _, snap := range list {
				t.Row(snap.ID, snap.Name, snap.SavedAt.Format(time.DateTime),
					strconv.Itoa(snap.Components), strconv.Itoa(snap.Circuits))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		})
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id|name...>",
	Short: "删除快照，按名称时删除最新一次",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			for _, ref := range args {
				if err := s.Delete(cmd.Context(), ref); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

// withStore 打开配置中的快照数据库
func withStore(cmd *cobra.Command, fn func(s *store.Store) error) error {
	s, err := store.Open(cmd.Context(), cfg.Store.Path, logger)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func init() {
	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotLoadCmd, snapshotListCmd, snapshotDeleteCmd)
	rootCmd.AddCommand(snapshotCmd)
}
