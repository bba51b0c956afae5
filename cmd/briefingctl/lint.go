package main

import (
	"errors"
	"fmt"

	"github.com/arcflow/arcflow-backend/pkg/briefing/catalog"
	"github.com/arcflow/arcflow-backend/pkg/briefing/schema"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func lintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <schema-file>...",
		Short: "Check schema documents for authoring errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				s, err := schema.LoadFile(path, catalog.NewCheckRegistry())
				if err == nil {
					fmt.Fprintf(out, "%s %s: %s v%s, %d sections, %d questions\n",
						color.New(color.FgGreen).Sprint("OK  "), path, s.Key, s.Version, len(s.Sections), s.QuestionCount())
					continue
				}

				failed++
				var loadErr *schema.SchemaLoadError
				if !errors.As(err, &loadErr) {
					fmt.Fprintf(out, "%s %s: %v\n", color.New(color.FgRed).Sprint("FAIL"), path, err)
					continue
				}
				fmt.Fprintf(out, "%s %s: %d problem(s)\n", color.New(color.FgRed).Sprint("FAIL"), path, len(loadErr.Problems))
				for _, p := range loadErr.Problems {
					fmt.Fprintf(out, "  %s [%s] %s\n", p.Location, color.New(color.FgYellow).Sprint(p.Code), p.Message)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d schema(s) failed", failed, len(args))
			}
			return nil
		},
	}
}
