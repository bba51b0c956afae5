package main

import (
	"fmt"
	"strings"

	"github.com/arcflow/arcflow-backend/pkg/briefing/catalog"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog [key]",
		Short: "List the embedded schemas or print one of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				data, err := catalog.Source(args[0] + ".yaml")
				if err != nil {
					return fmt.Errorf("schema %q not in catalog", args[0])
				}
				_, err = out.Write(data)
				return err
			}

			for _, name := range catalog.Files() {
				key := strings.TrimSuffix(name, ".yaml")
				s, err := catalog.Load(key, catalog.NewCheckRegistry())
				if err != nil {
					fmt.Fprintf(out, "%s %s: %v\n", color.New(color.FgRed).Sprint("✗"), key, err)
					continue
				}
				fmt.Fprintf(out, "%s %s v%s (%d sections): %s\n", color.New(color.FgGreen).Sprint("✓"), key, s.Version, len(s.Sections), s.Name)
			}
			return nil
		},
	}
	return cmd
}
