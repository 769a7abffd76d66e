package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "costetl",
		Short:         "成本报表 (Excel) 星型模型 ETL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "配置文件路径（不存在时使用默认配置）")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newReconcileCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

// Execute 执行根命令，出错时以状态码 1 退出
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
