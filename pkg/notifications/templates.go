package notifications

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

const MESSAGE_TYPE_BRIEFING_SUBMITTED = "briefing-submitted"

type LocalizedTemplate struct {
	Lang        string `yaml:"lang"`
	Subject     string `yaml:"subject"`
	TemplateDef string `yaml:"template"`
}

type MessageTemplate struct {
	MessageType     string              `yaml:"message_type"`
	DefaultLanguage string              `yaml:"default_language"`
	Translations    []LocalizedTemplate `yaml:"translations"`
}

func GetTemplateTranslation(tDef MessageTemplate, lang string) LocalizedTemplate {
	var defaultTranslation LocalizedTemplate
	for _, tr := range tDef.Translations {
		if tr.Lang == lang {
			return tr
		} else if tr.Lang == tDef.DefaultLanguage {
			defaultTranslation = tr
		}
	}
	return defaultTranslation
}

func ResolveTemplate(tempName string, templateDef string, data interface{}) (content string, err error) {
	if strings.TrimSpace(templateDef) == "" {
		return "", errors.New("empty template `" + tempName + "`")
	}
	tmpl, err := template.New(tempName).Parse(templateDef)
	if err != nil {
		return "", fmt.Errorf("error when parsing template %s: %v", tempName, err)
	}
	var tpl bytes.Buffer
	if err = tmpl.Execute(&tpl, data); err != nil {
		return "", fmt.Errorf("error during executing template %s: %v", tempName, err)
	}
	return tpl.String(), nil
}

// LoadTemplateFromFile reads a MessageTemplate definition from yaml and
// checks that all translations can be rendered.
func LoadTemplateFromFile(path string) (*MessageTemplate, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t MessageTemplate
	if err := yaml.UnmarshalStrict(content, &t); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if t.MessageType == "" {
		t.MessageType = MESSAGE_TYPE_BRIEFING_SUBMITTED
	}
	if err := CheckAllTranslationsParsable(t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CheckAllTranslationsParsable executes every translation with empty data.
func CheckAllTranslationsParsable(tDef MessageTemplate) error {
	if len(tDef.Translations) == 0 {
		return errors.New("template `" + tDef.MessageType + "`: translation list is empty")
	}
	for _, tr := range tDef.Translations {
		if _, err := ResolveTemplate(tDef.MessageType+tr.Lang, tr.TemplateDef, SubmittedBriefingData{}); err != nil {
			return fmt.Errorf("could not resolve template for `%s`: %w", tr.Lang, err)
		}
	}
	return nil
}

var DefaultBriefingSubmittedTemplate = MessageTemplate{
	MessageType:     MESSAGE_TYPE_BRIEFING_SUBMITTED,
	DefaultLanguage: "pt-BR",
	Translations: []LocalizedTemplate{
		{
			Lang:    "pt-BR",
			Subject: "Novo briefing recebido",
			TemplateDef: `<h2>Briefing {{.SchemaName}}</h2>
<p>Projeto: <b>{{.ProjectName}}</b>{{if .ClientName}} | Cliente: {{.ClientName}}{{end}}</p>
<p>Enviado por {{.SubmittedBy}} em {{.SubmittedAt}}</p>
{{range .Sections}}<h3>{{.Name}}</h3><ul>{{range .Records}}<li{{if eq .Importance "high"}} style="font-weight:bold"{{end}}>{{.QuestionText}}: {{.Value}}</li>{{end}}</ul>
{{end}}`,
		},
		{
			Lang:    "en",
			Subject: "New briefing received",
			TemplateDef: `<h2>Briefing {{.SchemaName}}</h2>
<p>Project: <b>{{.ProjectName}}</b>{{if .ClientName}} | Client: {{.ClientName}}{{end}}</p>
<p>Submitted by {{.SubmittedBy}} at {{.SubmittedAt}}</p>
{{range .Sections}}<h3>{{.Name}}</h3><ul>{{range .Records}}<li{{if eq .Importance "high"}} style="font-weight:bold"{{end}}>{{.QuestionText}}: {{.Value}}</li>{{end}}</ul>
{{end}}`,
		},
	},
}
