package main

import (
	"github.com/spf13/cobra"

	"costetl/internal/exporter"
	"costetl/internal/model"
	"costetl/internal/store"
)

func newExportCmd() *cobra.Command {
	var (
		output     string
		measure    string
		account    string
		sourceFile string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出成本事实到 Excel",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()
			log := a.log.Entry()

			file, err := exporter.NewExporter(a.store).Export(ctx, exporter.ExportOptions{
				Filter: store.FactFilter{
					Measure:     model.Measure(measure),
					AccountCode: account,
					SourceFile:  sourceFile,
				},
			}, func(e exporter.ProgressEvent) {
				log.WithField("rows", e.Rows).Debugf("%s %d%%", e.Stage, e.Percent)
			})
			if err != nil {
				return err
			}
			defer file.Close()

			if err := file.SaveAs(output); err != nil {
				return err
			}
			log.WithField("path", output).Info("facts exported")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "cost_facts.xlsx", "输出文件")
	cmd.Flags().StringVar(&measure, "measure", "", "口径过滤（budget/actual_or_plan/confirmed）")
	cmd.Flags().StringVar(&account, "account", "", "科目代码过滤")
	cmd.Flags().StringVar(&sourceFile, "source-file", "", "来源文件过滤")
	return cmd
}
