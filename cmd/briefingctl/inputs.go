package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/arcflow/arcflow-backend/pkg/briefing/catalog"
	"github.com/arcflow/arcflow-backend/pkg/briefing/schema"
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	"gopkg.in/yaml.v2"
)

const ENV_DEFAULT_SCHEMA = "BRIEFINGCTL_SCHEMA"

// loadSchema reads a schema file, or an embedded catalog schema when ref is
// not an existing file.
func loadSchema(ref string) (*types.Schema, error) {
	if ref == "" {
		ref = os.Getenv(ENV_DEFAULT_SCHEMA)
	}
	if ref == "" {
		return nil, fmt.Errorf("no schema given\nHint: use --schema or set %s", ENV_DEFAULT_SCHEMA)
	}
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return schema.LoadFile(ref, catalog.NewCheckRegistry())
	}
	return catalog.Load(ref, catalog.NewCheckRegistry())
}

// loadAnswers reads an answer file: a JSON or YAML map from question id to a
// string or a list of strings.
func loadAnswers(path string) (types.Answers, error) {
	if path == "" {
		return types.Answers{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	answers, err := parseAnswers(data, schema.DetectFormat(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return answers, nil
}

// yamlAnswer keeps scalars as written, so yes/no/on/off stay text instead of
// becoming booleans.
type yamlAnswer struct {
	value types.AnswerValue
	set   bool
}

func (a *yamlAnswer) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var items []string
	if err := unmarshal(&items); err == nil {
		selected := make([]string, 0, len(items))
		for _, item := range items {
			if item != "" {
				selected = append(selected, item)
			}
		}
		a.value, a.set = types.ListValue(selected...), true
		return nil
	}
	var text string
	if err := unmarshal(&text); err != nil {
		return errors.New("must be a string or a list of strings")
	}
	a.value, a.set = types.TextValue(strings.TrimSuffix(text, "\n")), true
	return nil
}

func parseAnswers(data []byte, format string) (types.Answers, error) {
	answers := types.Answers{}
	if format == schema.FORMAT_JSON {
		if err := json.Unmarshal(data, &answers); err != nil {
			return nil, err
		}
		return answers, nil
	}

	raw := map[string]yamlAnswer{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("answers: %w", err)
	}
	for id, a := range raw {
		// null answers are left out
		if a.set {
			answers[id] = a.value
		}
	}
	return answers, nil
}
