package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"costetl/internal/integrate"
)

func newReconcileCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:       "reconcile {vendors|projects}",
		Short:     "导出未关联既存系统的实体",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"vendors", "projects"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()
			log := a.log.Entry()

			if args[0] == "projects" {
				log.Info("project reconciliation is not supported; unmatched projects keep a NULL existing_project_id")
				return nil
			}

			names, err := a.store.UnmatchedVendorNames(ctx)
			if err != nil {
				return err
			}
			rows := integrate.BuildUnmatchedReport(ctx, a.matcher, names)
			if len(rows) == 0 {
				log.Info("no unmatched vendors found")
				return nil
			}

			if output == "" {
				output = filepath.Join(a.cfg.App.LogDir,
					fmt.Sprintf("unmatched_vendors_%s.csv", time.Now().Format("20060102_150405")))
			}
			if err := integrate.WriteUnmatchedReport(output, rows); err != nil {
				return err
			}
			log.WithField("rows", len(rows)).Infof("unmatched vendors report generated: %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV 输出路径（默认 log_dir/unmatched_vendors_<时间>.csv）")
	return cmd
}
