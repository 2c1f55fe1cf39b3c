package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NethermindEth/genaiterest/pkg/gallery/pipeline"
	"github.com/NethermindEth/genaiterest/pkg/gallery/render"
	"github.com/NethermindEth/genaiterest/pkg/gallery/style"
)

func newGenerateCmd() *cobra.Command {
	var (
		out     string
		columns int
		count   int
	)

	cmd := &cobra.Command{
		Use:     "generate [category...]",
		Short:   "Generate one gallery into a directory",
		Example: `  genaiterest generate architecture "tilt shift photography" --out ./gallery`,
		Args:    cobra.MinimumNArgs(1),

		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			var names []string
			for _, c := range style.All() {
				names = append(names, c.String())
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := parseCategories(args)
			if err != nil {
				return err
			}

			setupResult, cleanup, err := loadSetup(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			client, err := setupResult.NewClient()
			if err != nil {
				return err
			}
			defer client.Close()

			opts := setupResult.PipelineOptions()
			if columns > 0 {
				opts.Columns = columns
			}
			if count > 0 {
				opts.SubjectCount = count
			}

			dir, err := render.NewDir(out, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), setupResult.Config.GenerationTimeout)
			defer cancel()

			report, err := pipeline.NewCoordinator(client, opts).Generate(ctx, categories, dir)
			if report != nil {
				if werr := dir.WriteReport(report); werr != nil {
					return werr
				}
			}
			if err != nil {
				return fmt.Errorf("failed to generate gallery: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "gallery", "output directory")
	cmd.Flags().IntVar(&columns, "columns", 0, "grid columns, overrides GRID_COLUMNS")
	cmd.Flags().IntVar(&count, "count", 0, "subjects per category, overrides SUBJECT_COUNT")

	return cmd
}

func parseCategories(args []string) ([]style.Category, error) {
	categories, err := style.ParseAll(args)
	if err != nil {
		return nil, err
	}
	return style.Dedupe(categories), nil
}
