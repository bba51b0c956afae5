package notifications

import (
	"errors"
	"log/slog"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	smtp_client "github.com/arcflow/arcflow-backend/pkg/smtp-client"
)

type Mailer interface {
	SendMail(to []string, subject string, htmlContent string, overrides *smtp_client.HeaderOverrides) error
}

type NotificationConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language"`
	// Recipients per office id
	Recipients   map[string][]string          `yaml:"recipients"`
	Overrides    *smtp_client.HeaderOverrides `yaml:"overrides"`
	TemplateFile string                       `yaml:"template_file"`
}

type RecordView struct {
	QuestionText string
	Value        string
	Importance   string
}

type SectionView struct {
	Name    string
	Records []RecordView
}

type SubmittedBriefingData struct {
	SchemaName  string
	ProjectName string
	ClientName  string
	SubmittedBy string
	SubmittedAt string
	Sections    []SectionView
}

// NewSubmittedBriefingData groups the records of a briefing by section,
// keeping their export order.
func NewSubmittedBriefingData(schemaName string, b types.Briefing) SubmittedBriefingData {
	data := SubmittedBriefingData{
		SchemaName:  schemaName,
		ProjectName: b.ProjectName,
		ClientName:  b.ClientName,
		SubmittedBy: b.SubmittedBy,
		SubmittedAt: time.Unix(b.SubmittedAt, 0).UTC().Format("2006-01-02 15:04 MST"),
		Sections:    []SectionView{},
	}
	for _, r := range b.Records {
		n := len(data.Sections)
		if n == 0 || data.Sections[n-1].Name != r.SectionName {
			data.Sections = append(data.Sections, SectionView{Name: r.SectionName})
			n++
		}
		data.Sections[n-1].Records = append(data.Sections[n-1].Records, RecordView{
			QuestionText: r.QuestionText,
			Value:        r.Value.String(),
			Importance:   string(r.Importance),
		})
	}
	return data
}

// RenderBriefingSubmitted resolves subject and HTML body of the notification
// for a submitted briefing in the given language.
func RenderBriefingSubmitted(tmpl MessageTemplate, lang string, schemaName string, b types.Briefing) (subject string, content string, err error) {
	translation := GetTemplateTranslation(tmpl, lang)
	content, err = ResolveTemplate(tmpl.MessageType+translation.Lang, translation.TemplateDef, NewSubmittedBriefingData(schemaName, b))
	if err != nil {
		return "", "", err
	}

	subject = translation.Subject
	if b.ProjectName != "" {
		subject += ": " + b.ProjectName
	}
	return subject, content, nil
}

type Notifier struct {
	mailer   Mailer
	config   NotificationConfig
	template MessageTemplate
}

func NewNotifier(mailer Mailer, config NotificationConfig, tmpl *MessageTemplate) (*Notifier, error) {
	if mailer == nil {
		return nil, errors.New("mailer is required")
	}
	t := DefaultBriefingSubmittedTemplate
	if tmpl != nil {
		t = *tmpl
	}
	if err := CheckAllTranslationsParsable(t); err != nil {
		return nil, err
	}
	return &Notifier{mailer: mailer, config: config, template: t}, nil
}

// BriefingSubmitted mails the export of a new briefing to the office's
// recipients. Offices without recipients are skipped.
func (n *Notifier) BriefingSubmitted(officeID string, schemaName string, b types.Briefing) error {
	recipients := n.config.Recipients[officeID]
	if len(recipients) == 0 {
		slog.Debug("no notification recipients for office", slog.String("officeID", officeID))
		return nil
	}

	subject, content, err := RenderBriefingSubmitted(n.template, n.config.Language, schemaName, b)
	if err != nil {
		return err
	}
	if err := n.mailer.SendMail(recipients, subject, content, n.config.Overrides); err != nil {
		return err
	}
	slog.Info("briefing notification sent", slog.String("officeID", officeID), slog.String("briefingID", b.ID.Hex()), slog.Int("recipients", len(recipients)))
	return nil
}
