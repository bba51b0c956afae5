package types

import (
	"encoding/json"
	"testing"
)

func TestAnswerValueIsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		value    AnswerValue
		expected bool
	}{
		{name: "zero value", value: AnswerValue{}, expected: true},
		{name: "whitespace text", value: TextValue("  \t"), expected: true},
		{name: "text", value: TextValue("120"), expected: false},
		{name: "empty list", value: ListValue(), expected: true},
		{name: "list", value: ListValue("a"), expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.IsEmpty() != tt.expected {
				t.Errorf("IsEmpty() = %v, expected %v", tt.value.IsEmpty(), tt.expected)
			}
		})
	}
}

func TestAnswersUnmarshalJSON(t *testing.T) {
	var answers Answers
	err := json.Unmarshal([]byte(`{"1": "Casa", "26": ["a", "b"], "30": 120, "31": [], "32": null, "33": [1, true]}`), &answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answers["1"].IsList || answers["1"].Text != "Casa" {
		t.Errorf("unexpected text answer: %+v", answers["1"])
	}
	if !answers["26"].IsList || len(answers["26"].Selected) != 2 {
		t.Errorf("unexpected list answer: %+v", answers["26"])
	}
	if answers["30"].Text != "120" {
		t.Errorf("number should be kept as text: %+v", answers["30"])
	}
	if !answers["31"].IsList || !answers["31"].IsEmpty() {
		t.Errorf("empty list expected: %+v", answers["31"])
	}
	if !answers["32"].IsEmpty() {
		t.Errorf("null should be empty: %+v", answers["32"])
	}
	if answers["33"].Join(",") != "1,true" {
		t.Errorf("unexpected list conversion: %+v", answers["33"])
	}

	if err := json.Unmarshal([]byte(`{"1": {"a": 1}}`), &answers); err == nil {
		t.Error("object answer should be rejected")
	}
}
