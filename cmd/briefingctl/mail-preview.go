package main

import (
	"errors"

	"github.com/arcflow/arcflow-backend/pkg/notifications"
	"github.com/jordan-wright/email"
	"github.com/spf13/cobra"
)

func mailPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail-preview",
		Short: "Render the submission notification of an answer set as an .eml message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetStringSlice("to")
			lang, _ := cmd.Flags().GetString("lang")
			templateFile, _ := cmd.Flags().GetString("template")
			project, _ := cmd.Flags().GetString("project")
			client, _ := cmd.Flags().GetString("client")

			if len(to) == 0 {
				return errors.New("at least one --to address is required")
			}

			tmpl := notifications.DefaultBriefingSubmittedTemplate
			if templateFile != "" {
				loaded, err := notifications.LoadTemplateFromFile(templateFile)
				if err != nil {
					return err
				}
				if err := notifications.CheckAllTranslationsParsable(*loaded); err != nil {
					return err
				}
				tmpl = *loaded
			}

			s, briefing, err := finalizeBriefing(cmd, project, client)
			if err != nil {
				return err
			}
			subject, content, err := notifications.RenderBriefingSubmitted(tmpl, lang, s.Name, *briefing)
			if err != nil {
				return err
			}

			e := email.NewEmail()
			e.From = from
			e.To = to
			e.Subject = subject
			e.HTML = []byte(content)
			raw, err := e.Bytes()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
	addInputFlags(cmd)
	cmd.Flags().String("from", "briefings@localhost", "sender address")
	cmd.Flags().StringSlice("to", nil, "recipient addresses")
	cmd.Flags().String("lang", "", "template language (default: template default)")
	cmd.Flags().String("template", "", "notification template file")
	cmd.Flags().String("project", "", "project name (default: first text answer)")
	cmd.Flags().String("client", "", "client name")
	return cmd
}
