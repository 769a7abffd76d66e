package main

import (
	"github.com/spf13/cobra"

	"costetl/internal/integrate"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "seed {projects|vendors} <file.csv>",
		Short:     "从 CSV 写入本地既存系统参照表",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(2)(cmd, args); err != nil {
				return err
			}
			return cobra.OnlyValidArgs(cmd, args[:1])
		},
		ValidArgs: []string{"projects", "vendors"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()
			log := a.log.Entry().WithField("file", args[1])

			switch args[0] {
			case "projects":
				projects, err := integrate.ReadReferenceProjects(args[1])
				if err != nil {
					return err
				}
				if err := a.store.SeedReferenceProjects(ctx, projects); err != nil {
					return err
				}
				log.WithField("rows", len(projects)).Info("reference projects seeded")
			case "vendors":
				vendors, err := integrate.ReadReferenceVendors(args[1])
				if err != nil {
					return err
				}
				if err := a.store.SeedReferenceVendors(ctx, vendors); err != nil {
					return err
				}
				log.WithField("rows", len(vendors)).Info("reference vendors seeded")
			}
			return nil
		},
	}
	return cmd
}
