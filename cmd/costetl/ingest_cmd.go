package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"costetl/internal/importer"
	"costetl/internal/logging"
)

func newIngestCmd() *cobra.Command {
	var (
		input    string
		sheet    string
		expected string
		dryRun   bool
		archive  bool
	)

	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "导入 Excel 成本报表",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, !dryRun)
			if err != nil {
				return err
			}
			defer a.Close()
			log := a.log.Entry()

			totals, err := loadExpectedTotals(expected)
			if err != nil {
				return err
			}

			files, err := collectInputs(args, input, a.cfg.App.InputDir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				log.Info("no Excel files found to process")
				return nil
			}
			log.WithField("files", files).Infof("found %d files to process", len(files))

			coordinator, err := a.coordinator(nil)
			if err != nil {
				return err
			}

			opts := importer.ImportOptions{
				RunID:          a.log.RunID,
				Files:          files,
				Sheet:          sheet,
				DryRun:         dryRun,
				ExpectedTotals: totals,
			}
			if archive {
				opts.ArchiveDir = a.cfg.App.ArchiveDir
				opts.RejectDir = a.cfg.App.RejectDir
			}
			report := coordinator.Run(ctx, opts)

			path, err := logging.SaveSummary(a.cfg.App.LogDir, a.log.RunID, report.Summary)
			if err != nil {
				log.WithError(err).Warn("failed to save summary")
			} else {
				log.WithField("path", path).Info("summary saved")
			}

			s := report.Summary
			log.WithFields(logrus.Fields{
				"files_processed": s.FilesProcessed,
				"files_failed":    s.FilesFailed,
				"files_skipped":   s.FilesSkipped,
				"total_facts":     s.TotalFacts,
				"loaded_facts":    s.LoadedFacts,
				"skipped_facts":   s.SkippedFacts,
				"errors":          s.Errors,
			}).Info("ingestion finished")

			if s.FilesFailed > 0 {
				return fmt.Errorf("%d file(s) failed", s.FilesFailed)
			}
			if s.ValidationFail > 0 {
				return fmt.Errorf("%d file(s) failed totals validation", s.ValidationFail)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Excel 文件或目录（默认 input_dir）")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet 名称（默认 default_sheet）")
	cmd.Flags().StringVar(&expected, "expected", "", "期望合计 YAML 文件")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "只抽取和校验，不写数据库")
	cmd.Flags().BoolVar(&archive, "archive", false, "入库后移动到 archive_dir，失败的移动到 reject_dir")
	return cmd
}
