package engine

import (
	"reflect"
	"testing"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

func TestResolveVisible(t *testing.T) {
	schema := testSchema()

	t.Run("nil schema", func(t *testing.T) {
		visible := ResolveVisible(nil, types.Answers{})
		if visible == nil || len(visible) != 0 {
			t.Errorf("expected empty result, got %v", visible)
		}
	})

	t.Run("automation section hidden without selection", func(t *testing.T) {
		visible := ResolveVisible(schema, types.Answers{"28": types.ListValue(optBasicPower)})
		ids := sectionIDs(visible)
		if containsString(ids, "automacao") {
			t.Errorf("automation section should be hidden: %v", ids)
		}
	})

	t.Run("automation section shown with selection", func(t *testing.T) {
		visible := ResolveVisible(schema, types.Answers{"28": types.ListValue(optAutomation)})
		ids := sectionIDs(visible)
		if !containsString(ids, "automacao") {
			t.Errorf("automation section should be visible: %v", ids)
		}
	})

	t.Run("question condition without intersection", func(t *testing.T) {
		visible := ResolveVisible(schema, types.Answers{"26": types.ListValue(optColdWater)})
		ids := VisibleQuestionIDs(schema, types.Answers{"26": types.ListValue(optColdWater)})
		if ids["27"] {
			t.Error("question 27 should be hidden")
		}
		if CountQuestions(visible) != 4 {
			t.Errorf("unexpected number of visible questions: %d", CountQuestions(visible))
		}
	})

	t.Run("authoring order kept", func(t *testing.T) {
		answers := types.Answers{
			"26": types.ListValue(optHotWater),
			"28": types.ListValue(optAutomation),
			"46": types.TextValue("Outro"),
		}
		visible := ResolveVisible(schema, answers)
		order := []string{}
		for _, s := range visible {
			for _, q := range s.Questions {
				order = append(order, q.ID)
			}
		}
		expected := []string{"1", "2", "26", "27", "28", "46", "47"}
		if !reflect.DeepEqual(order, expected) {
			t.Errorf("unexpected order: %v", order)
		}
	})

	t.Run("hidden controller hides dependants", func(t *testing.T) {
		// 46 keeps its answer while the automation section is hidden
		answers := types.Answers{
			"28": types.ListValue(optBasicPower),
			"46": types.TextValue("Outro"),
		}
		ids := VisibleQuestionIDs(schema, answers)
		if ids["46"] || ids["47"] {
			t.Errorf("questions of the hidden section should not be visible: %v", ids)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		answers := types.Answers{"28": types.ListValue(optAutomation), "26": types.ListValue(optHotWater)}
		first := ResolveVisible(schema, answers)
		for i := 0; i < 5; i++ {
			again := ResolveVisible(schema, answers)
			if !reflect.DeepEqual(sectionIDs(first), sectionIDs(again)) || CountQuestions(first) != CountQuestions(again) {
				t.Fatalf("run %d differs", i)
			}
		}
	})
}

func TestResolveVisibleRestoresHiddenAnswers(t *testing.T) {
	schema := testSchema()
	store := NewAnswerStore(nil)
	_ = store.Set("28", types.ListValue(optAutomation))
	_ = store.Set("46", types.TextValue("KNX"))

	_ = store.Set("28", types.ListValue(optBasicPower))
	if VisibleQuestionIDs(schema, store.Snapshot())["46"] {
		t.Fatal("46 should be hidden")
	}
	if v, ok := store.Get("46"); !ok || v.Text != "KNX" {
		t.Errorf("hidden answer should be retained, got %v", v)
	}

	_ = store.Set("28", types.ListValue(optAutomation))
	if !VisibleQuestionIDs(schema, store.Snapshot())["46"] {
		t.Fatal("46 should be visible again")
	}
	if v, _ := store.Get("46"); v.Text != "KNX" {
		t.Errorf("answer not restored: %v", v)
	}
}
