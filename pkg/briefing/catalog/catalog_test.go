package catalog

import (
	"testing"

	"github.com/arcflow/arcflow-backend/pkg/briefing/engine"
	"github.com/arcflow/arcflow-backend/pkg/briefing/exporter"
	"github.com/arcflow/arcflow-backend/pkg/briefing/schema"
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

const (
	optColdWater  = "Água fria (abastecimento e distribuição)"
	optHotWater   = "Água quente (aquecimento e distribuição)"
	optBasicPower = "Força e iluminação básica"
	optAutomation = "Automação residencial/predial"
)

func loadCatalog(t *testing.T) *types.Schema {
	t.Helper()
	s, err := Load(KEY_INSTALACOES_COMPLETO, NewCheckRegistry())
	if err != nil {
		t.Fatalf("failed to load catalog schema: %v", err)
	}
	return s
}

func hasSection(visible []types.VisibleSection, name string) bool {
	for _, s := range visible {
		if s.Name == name {
			return true
		}
	}
	return false
}

func TestCatalogRegister(t *testing.T) {
	r, err := schema.NewRegistry(NewCheckRegistry(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := Register(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keys := r.Keys()
	if len(keys) != 1 || keys[0] != KEY_INSTALACOES_COMPLETO {
		t.Errorf("unexpected keys: %v", keys)
	}
	if _, err := Load("unknown", nil); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestCatalogSections(t *testing.T) {
	s := loadCatalog(t)
	want := []string{"projeto", "sistemas", "hidraulica", "eletrica", "climatizacao", "incendio", "automacao", "orcamento"}
	if len(s.Sections) != len(want) {
		t.Fatalf("unexpected section count: %d", len(s.Sections))
	}
	for i, id := range want {
		if s.Sections[i].ID != id {
			t.Errorf("section %d: got %s, want %s", i, s.Sections[i].ID, id)
		}
		if len(s.Sections[i].Questions) == 0 {
			t.Errorf("section %s has no questions", id)
		}
	}
}

func TestCatalogScenarios(t *testing.T) {
	s := loadCatalog(t)

	t.Run("question 28 and 26 live in Sistemas", func(t *testing.T) {
		for _, id := range []string{"26", "28"} {
			_, section, ok := s.FindQuestion(id)
			if !ok || section.Name != "Sistemas" {
				t.Errorf("question %s not found in Sistemas", id)
			}
		}
	})

	t.Run("automation section gated by 28", func(t *testing.T) {
		visible := engine.ResolveVisible(s, types.Answers{"28": types.ListValue(optBasicPower)})
		if hasSection(visible, "Automação Predial") {
			t.Error("Automação Predial should be hidden")
		}
		visible = engine.ResolveVisible(s, types.Answers{"28": types.ListValue(optAutomation)})
		if !hasSection(visible, "Automação Predial") {
			t.Error("Automação Predial should be visible")
		}
	})

	t.Run("46 required only while visible", func(t *testing.T) {
		hidden := types.Answers{"28": types.ListValue(optBasicPower)}
		for _, issue := range engine.Validate(engine.ResolveVisible(s, hidden), hidden) {
			if issue.QuestionID == "46" {
				t.Errorf("46 validated while hidden: %+v", issue)
			}
		}

		shown := types.Answers{"28": types.ListValue(optAutomation)}
		count := 0
		for _, issue := range engine.Validate(engine.ResolveVisible(s, shown), shown) {
			if issue.QuestionID == "46" {
				count++
				if issue.Reason != types.ISSUE_MISSING_REQUIRED {
					t.Errorf("unexpected reason: %s", issue.Reason)
				}
			}
		}
		if count != 1 {
			t.Errorf("expected exactly one issue for 46, got %d", count)
		}
	})

	t.Run("cold water does not show hot water questions", func(t *testing.T) {
		ids := engine.VisibleQuestionIDs(s, types.Answers{"26": types.ListValue(optColdWater)})
		if ids["32"] || ids["33"] {
			t.Errorf("hot water questions should be hidden: %v", ids)
		}
		if !ids["30"] {
			t.Error("cold water question should be visible")
		}
	})
}

func fullAnswers() types.Answers {
	return types.Answers{
		"1":  types.TextValue("Residência Silva"),
		"2":  types.TextValue("João Silva"),
		"4":  types.TextValue("Residencial unifamiliar"),
		"5":  types.TextValue("250,5"),
		"6":  types.TextValue("2"),
		"26": types.ListValue(optColdWater, optHotWater),
		"27": types.TextValue("VRF"),
		"28": types.ListValue(optBasicPower, optAutomation),
		"29": types.TextValue("Sim"),
		"30": types.TextValue("Rede pública"),
		"32": types.TextValue("Solar"),
		"35": types.TextValue("127/220 V"),
		"40": types.TextValue("Salas e dormitórios"),
		"43": types.TextValue("Leve"),
		"44": types.ListValue("Extintores"),
		"46": types.TextValue("KNX"),
		"50": types.TextValue("Até R$ 100 mil"),
		"51": types.TextValue("90"),
		"52": types.TextValue("Sem observações"),
	}
}

func TestCatalogCompleteBriefing(t *testing.T) {
	s := loadCatalog(t)
	iv := engine.NewInterview(s, fullAnswers())

	answers, issues := iv.Finalize()
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}

	records := exporter.Export(s, answers, Classifier())
	if len(records) != len(answers) {
		t.Errorf("expected one record per answer, got %d for %d answers", len(records), len(answers))
	}
	previous := -1
	for _, r := range records {
		ordinal := questionOrdinal(s, r.QuestionID)
		if ordinal <= previous {
			t.Errorf("record %s out of authoring order", r.QuestionID)
		}
		previous = ordinal
	}

	importance := map[string]types.Importance{}
	for _, r := range records {
		importance[r.QuestionID] = r.Importance
	}
	expected := map[string]types.Importance{
		"1":  types.IMPORTANCE_HIGH,   // section metadata
		"52": types.IMPORTANCE_LOW,    // question metadata
		"35": types.IMPORTANCE_HIGH,   // keyword "tensão"
		"46": types.IMPORTANCE_HIGH,   // keyword "protocolo"
		"30": types.IMPORTANCE_MEDIUM, // no rule
	}
	for id, imp := range expected {
		if importance[id] != imp {
			t.Errorf("question %s: importance %s, expected %s", id, importance[id], imp)
		}
	}
}

func questionOrdinal(s *types.Schema, id string) int {
	i := 0
	for _, section := range s.Sections {
		for _, q := range section.Questions {
			if q.ID == id {
				return i
			}
			i++
		}
	}
	return -1
}

func TestChecks(t *testing.T) {
	tests := []struct {
		name    string
		check   types.AnswerCheck
		value   types.AnswerValue
		params  map[string]string
		wantErr bool
	}{
		{name: "positive number", check: positiveNumber, value: types.TextValue("250"), wantErr: false},
		{name: "positive decimal comma", check: positiveNumber, value: types.TextValue("1.250,5"), wantErr: false},
		{name: "positive with unit", check: positiveNumber, value: types.TextValue("80 m²"), wantErr: false},
		{name: "zero area", check: positiveNumber, value: types.TextValue("0"), wantErr: true},
		{name: "negative area", check: positiveNumber, value: types.TextValue("-3"), wantErr: true},
		{name: "not a number", check: positiveNumber, value: types.TextValue("grande"), wantErr: true},
		{name: "list value", check: positiveNumber, value: types.ListValue("1"), wantErr: true},
		{name: "days in range", check: daysRange, value: types.TextValue("90"), params: map[string]string{"min": "15", "max": "730"}, wantErr: false},
		{name: "days too short", check: daysRange, value: types.TextValue("10"), params: map[string]string{"min": "15", "max": "730"}, wantErr: true},
		{name: "days too long", check: daysRange, value: types.TextValue("1000"), params: map[string]string{"min": "15", "max": "730"}, wantErr: true},
		{name: "days default bounds", check: daysRange, value: types.TextValue("0"), wantErr: true},
		{name: "integer without bounds", check: integerRange, value: types.TextValue("7"), wantErr: false},
		{name: "integer fraction", check: integerRange, value: types.TextValue("2.5"), wantErr: true},
		{name: "integer bad param", check: integerRange, value: types.TextValue("2"), params: map[string]string{"min": "x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.value, tt.params)
			if (err != nil) != tt.wantErr {
				t.Errorf("unexpected result: %v", err)
			}
		})
	}
}
