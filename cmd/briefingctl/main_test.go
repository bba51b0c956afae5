package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arcflow/arcflow-backend/pkg/briefing/catalog"
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

const completeAnswersYAML = `
1: Residência Silva
2: João Silva
4: Residencial unifamiliar
5: "250,5"
6: 2
26:
  - Água fria (abastecimento e distribuição)
  - Água quente (aquecimento e distribuição)
27: VRF
28:
  - Força e iluminação básica
  - Automação residencial/predial
29: Sim
30: Rede pública
32: Solar
35: 127/220 V
40: Salas e dormitórios
43: Leve
44: [Extintores]
46: KNX
50: Até R$ 100 mil
51: 90
52: Sem observações
`

const validSchemaYAML = `
key: small-briefing
version: "1"
name: Small
sections:
  - id: s1
    name: First
    questions:
      - id: q1
        text: Name
        kind: text
        required: true
`

const brokenSchemaYAML = `
key: broken-briefing
name: Broken
sections:
  - id: s1
    name: First
    questions:
      - id: q1
        text: Level
        kind: slider
`

func writeTempFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCmd(args ...string) (string, error) {
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseAnswers(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		answers, err := parseAnswers([]byte(completeAnswersYAML), "yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v := answers["6"]; v.IsList || v.Text != "2" {
			t.Errorf("unexpected value for 6: %+v", v)
		}
		if v := answers["44"]; !v.IsList || len(v.Selected) != 1 {
			t.Errorf("unexpected value for 44: %+v", v)
		}
		if v := answers["5"]; v.Text != "250,5" {
			t.Errorf("unexpected value for 5: %+v", v)
		}
	})

	t.Run("json", func(t *testing.T) {
		answers, err := parseAnswers([]byte(`{"1": "Casa", "28": ["Automação"]}`), "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !answers["28"].Equal(types.ListValue("Automação")) {
			t.Errorf("unexpected value for 28: %+v", answers["28"])
		}
	})

	t.Run("nested object", func(t *testing.T) {
		if _, err := parseAnswers([]byte("1:\n  a: b\n"), "yaml"); err == nil {
			t.Error("expected error for nested object")
		}
	})

	t.Run("yaml scalars stay as written", func(t *testing.T) {
		input := "1: yes\n2: no\n3: on\n4: off\n5: 2\n6: 250.50\n7:\n8: [yes, Automação]\n9: |\n  linha\n"
		answers, err := parseAnswers([]byte(input), "yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tests := []struct {
			id   string
			want types.AnswerValue
		}{
			{id: "1", want: types.TextValue("yes")},
			{id: "2", want: types.TextValue("no")},
			{id: "3", want: types.TextValue("on")},
			{id: "4", want: types.TextValue("off")},
			{id: "5", want: types.TextValue("2")},
			{id: "6", want: types.TextValue("250.50")},
			{id: "8", want: types.ListValue("yes", "Automação")},
			{id: "9", want: types.TextValue("linha")},
		}
		for _, tt := range tests {
			if got, ok := answers[tt.id]; !ok || !got.Equal(tt.want) {
				t.Errorf("answer %s: got %+v, want %+v", tt.id, got, tt.want)
			}
		}
		if _, ok := answers["7"]; ok {
			t.Error("null answer should be skipped")
		}
	})

	t.Run("list of objects", func(t *testing.T) {
		if _, err := parseAnswers([]byte("28:\n  - a: b\n"), "yaml"); err == nil {
			t.Error("expected error for list of objects")
		}
	})
}

func TestLoadSchema(t *testing.T) {
	if _, err := loadSchema(catalog.KEY_INSTALACOES_COMPLETO); err != nil {
		t.Errorf("catalog key: unexpected error: %v", err)
	}
	path := writeTempFile(t, "small.yaml", validSchemaYAML)
	s, err := loadSchema(path)
	if err != nil {
		t.Fatalf("file: unexpected error: %v", err)
	}
	if s.Key != "small-briefing" {
		t.Errorf("unexpected key: %s", s.Key)
	}

	t.Setenv(ENV_DEFAULT_SCHEMA, "")
	if _, err := loadSchema(""); err == nil {
		t.Error("expected error without schema")
	}
	t.Setenv(ENV_DEFAULT_SCHEMA, path)
	if _, err := loadSchema(""); err != nil {
		t.Errorf("env default: unexpected error: %v", err)
	}
}

func TestLintCommand(t *testing.T) {
	valid := writeTempFile(t, "valid.yaml", validSchemaYAML)
	broken := writeTempFile(t, "broken.yaml", brokenSchemaYAML)

	out, err := runCmd("lint", valid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "small-briefing v1, 1 sections, 1 questions") {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = runCmd("lint", valid, broken)
	if err == nil {
		t.Fatal("expected error for broken schema")
	}
	if !strings.Contains(out, "invalid_kind") {
		t.Errorf("problem code missing from output: %s", out)
	}
}

func TestResolveCommand(t *testing.T) {
	answers := writeTempFile(t, "answers.yaml", "28: [Força e iluminação básica]\n")

	out, err := runCmd("resolve", "--schema", catalog.KEY_INSTALACOES_COMPLETO, "--answers", answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, " 46. ") {
		t.Errorf("automation questions should be hidden: %s", out)
	}

	out, err = runCmd("resolve", "-s", catalog.KEY_INSTALACOES_COMPLETO, "-a", answers, "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Visible  []types.VisibleSection `json:"visible"`
		Progress struct {
			AnsweredQuestions int `json:"answeredQuestions"`
		} `json:"progress"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if len(resp.Visible) == 0 || resp.Progress.AnsweredQuestions != 1 {
		t.Errorf("unexpected resolve result: %d sections, %d answered", len(resp.Visible), resp.Progress.AnsweredQuestions)
	}
}

func TestValidateCommand(t *testing.T) {
	complete := writeTempFile(t, "complete.yaml", completeAnswersYAML)
	partial := writeTempFile(t, "partial.json", `{"1": "Casa"}`)

	if _, err := runCmd("validate", "-s", catalog.KEY_INSTALACOES_COMPLETO, "-a", complete); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	out, err := runCmd("validate", "-s", catalog.KEY_INSTALACOES_COMPLETO, "-a", partial)
	if err == nil {
		t.Fatal("expected error for partial answers")
	}
	if !strings.Contains(out, string(types.ISSUE_MISSING_REQUIRED)) {
		t.Errorf("missing issue reason in output: %s", out)
	}
}

func TestExportCommand(t *testing.T) {
	complete := writeTempFile(t, "complete.yaml", completeAnswersYAML)

	t.Run("wide to file", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "out.csv")
		if _, err := runCmd("export", "-s", catalog.KEY_INSTALACOES_COMPLETO, "-a", complete, "-o", output, "--client", "Silva"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(output)
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected header and one row, got %d lines", len(lines))
		}
		if !strings.HasPrefix(lines[0], "briefingId,schemaKey") {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if !strings.Contains(lines[1], "Residência Silva") || !strings.Contains(lines[1], "Silva") {
			t.Errorf("unexpected row: %s", lines[1])
		}
	})

	t.Run("json to stdout", func(t *testing.T) {
		out, err := runCmd("export", "-s", catalog.KEY_INSTALACOES_COMPLETO, "-a", complete, "-f", "json", "--project", "Obra 7")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var resp struct {
			Briefings []types.Briefing `json:"briefings"`
		}
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("invalid json output: %v", err)
		}
		if len(resp.Briefings) != 1 || resp.Briefings[0].ProjectName != "Obra 7" {
			t.Errorf("unexpected export: %+v", resp.Briefings)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := runCmd("export", "-s", catalog.KEY_INSTALACOES_COMPLETO, "-a", complete, "-f", "xml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})

	t.Run("incomplete answers", func(t *testing.T) {
		partial := writeTempFile(t, "partial.json", `{"1": "Casa"}`)
		out, err := runCmd("export", "-s", catalog.KEY_INSTALACOES_COMPLETO, "-a", partial)
		if err == nil {
			t.Fatal("expected error for incomplete answers")
		}
		if out != "" {
			t.Errorf("nothing should be exported, got %s", out)
		}
	})
}

func TestCatalogCommand(t *testing.T) {
	out, err := runCmd("catalog")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, catalog.KEY_INSTALACOES_COMPLETO) {
		t.Errorf("catalog key missing: %s", out)
	}

	out, err = runCmd("catalog", catalog.KEY_INSTALACOES_COMPLETO)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "key: instalacoes-completo") {
		t.Errorf("unexpected source: %.40s", out)
	}

	if _, err := runCmd("catalog", "unknown"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestMailPreviewCommand(t *testing.T) {
	complete := writeTempFile(t, "complete.yaml", completeAnswersYAML)

	out, err := runCmd("mail-preview", "-s", catalog.KEY_INSTALACOES_COMPLETO, "-a", complete, "--to", "office@example.com", "--lang", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "To: <office@example.com>") && !strings.Contains(out, "To: office@example.com") {
		t.Errorf("recipient header missing: %.200s", out)
	}
	if !strings.Contains(out, "Subject: ") {
		t.Errorf("subject header missing: %.200s", out)
	}
	if !strings.Contains(out, "text/html") {
		t.Errorf("html part missing")
	}

	if _, err := runCmd("mail-preview", "-s", catalog.KEY_INSTALACOES_COMPLETO, "-a", complete); err == nil {
		t.Error("expected error without recipients")
	}
}
