package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/briefing/catalog"
	"github.com/arcflow/arcflow-backend/pkg/briefing/engine"
	"github.com/arcflow/arcflow-backend/pkg/briefing/exporter"
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("schema", "s", "", "schema file or catalog key")
	cmd.Flags().StringP("answers", "a", "", "answers file (JSON or YAML)")
}

func loadInterview(cmd *cobra.Command) (*engine.Interview, error) {
	schemaRef, _ := cmd.Flags().GetString("schema")
	answersPath, _ := cmd.Flags().GetString("answers")

	s, err := loadSchema(schemaRef)
	if err != nil {
		return nil, err
	}
	answers, err := loadAnswers(answersPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("interview loaded", slog.String("schemaKey", s.Key), slog.String("version", s.Version), slog.Int("answers", len(answers)))
	return engine.NewInterview(s, answers), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the sections and questions visible for an answer set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			iv, err := loadInterview(cmd)
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]interface{}{"visible": iv.Visible(), "progress": iv.Progress()})
			}

			answers := iv.Store().Snapshot()
			for _, section := range iv.Visible() {
				fmt.Fprintf(out, "%s %s\n", color.New(color.Bold).Sprint(section.ID), section.Name)
				for _, q := range section.Questions {
					marker := " "
					if v, ok := answers[q.ID]; ok && !v.IsEmpty() {
						marker = color.New(color.FgGreen).Sprint("✓")
					}
					required := ""
					if q.Required {
						required = color.New(color.FgYellow).Sprint(" *")
					}
					fmt.Fprintf(out, "  %s %s. %s%s\n", marker, q.ID, q.Text, required)
				}
			}
			p := iv.Progress()
			fmt.Fprintf(out, "\n%d/%d answered (%d%%), %d/%d required\n",
				p.AnsweredQuestions, p.VisibleQuestions, p.Percent, p.RequiredAnswered, p.RequiredQuestions)
			return nil
		},
	}
	addInputFlags(cmd)
	cmd.Flags().Bool("json", false, "print the visible schema as JSON")
	return cmd
}

func printIssues(w io.Writer, issues []types.ValidationIssue) {
	for _, issue := range issues {
		reason := color.New(color.FgRed).Sprint(issue.Reason)
		if issue.Message != "" {
			fmt.Fprintf(w, "  %s/%s [%s] %s\n", issue.SectionID, issue.QuestionID, reason, issue.Message)
			continue
		}
		fmt.Fprintf(w, "  %s/%s [%s]\n", issue.SectionID, issue.QuestionID, reason)
	}
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an answer set against a schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			iv, err := loadInterview(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			issues := iv.Validate()
			if len(issues) == 0 {
				fmt.Fprintf(out, "%s answers are complete\n", color.New(color.FgGreen).Sprint("✓"))
				return nil
			}
			fmt.Fprintf(out, "%s %d issue(s):\n", color.New(color.FgRed).Sprint("✗"), len(issues))
			printIssues(out, issues)
			return fmt.Errorf("answers have %d issue(s)", len(issues))
		},
	}
	addInputFlags(cmd)
	return cmd
}

// finalizeBriefing validates the answers of the command's inputs and builds
// the briefing a submit would store.
func finalizeBriefing(cmd *cobra.Command, project string, client string) (*types.Schema, *types.Briefing, error) {
	iv, err := loadInterview(cmd)
	if err != nil {
		return nil, nil, err
	}
	answers, issues := iv.Finalize()
	if len(issues) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %d issue(s):\n", color.New(color.FgRed).Sprint("✗"), len(issues))
		printIssues(cmd.ErrOrStderr(), issues)
		return nil, nil, fmt.Errorf("answers have %d issue(s), nothing exported", len(issues))
	}

	s := iv.Schema()
	records := exporter.Export(s, answers, catalog.Classifier())
	if project == "" {
		project = exporter.DefaultProjectName(records)
	}
	return s, &types.Briefing{
		SchemaKey:     s.Key,
		SchemaVersion: s.Version,
		ProjectName:   project,
		ClientName:    client,
		SubmittedBy:   "briefingctl",
		SubmittedAt:   time.Now().Unix(),
		Answers:       answers,
		Records:       records,
	}, nil
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Finalize an answer set and write it as a briefing export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			project, _ := cmd.Flags().GetString("project")
			client, _ := cmd.Flags().GetString("client")
			separator, _ := cmd.Flags().GetString("list-separator")

			if !exporter.IsValidFormat(format) {
				return fmt.Errorf("unknown format %q\nHint: use wide, long or json", format)
			}

			s, briefing, err := finalizeBriefing(cmd, project, client)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			bw, err := exporter.NewBriefingWriter(s, out, format, separator)
			if err != nil {
				return err
			}
			if err := bw.WriteBriefing(briefing); err != nil {
				return err
			}
			if err := bw.Finish(); err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s wrote %d records to %s\n", color.New(color.FgGreen).Sprint("✓"), len(briefing.Records), output)
			}
			return nil
		},
	}
	addInputFlags(cmd)
	cmd.Flags().StringP("format", "f", exporter.FORMAT_WIDE, "export format: wide, long or json")
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	cmd.Flags().String("project", "", "project name (default: first text answer)")
	cmd.Flags().String("client", "", "client name")
	cmd.Flags().String("list-separator", exporter.DEFAULT_LIST_SEPARATOR, "separator for multi choice answers")
	return cmd
}
