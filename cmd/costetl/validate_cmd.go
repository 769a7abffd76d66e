package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var (
		input    string
		sheet    string
		expected string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "校验 Excel 文件结构与合计",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			totals, err := loadExpectedTotals(expected)
			if err != nil {
				return err
			}
			coordinator, err := a.coordinator(nil)
			if err != nil {
				return err
			}

			result := coordinator.ValidateFile(input, sheet, totals)
			if !result.Passed {
				if len(result.MissingKeywords) > 0 {
					a.log.Entry().WithField("missing", result.MissingKeywords).Error("required columns missing")
				}
				return errors.New("validation failed")
			}
			a.log.Entry().Info("validation passed")
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "要校验的 Excel 文件")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet 名称（默认 default_sheet）")
	cmd.Flags().StringVar(&expected, "expected", "", "期望合计 YAML 文件")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
