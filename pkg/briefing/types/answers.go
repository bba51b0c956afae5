package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// AnswerValue holds either a scalar answer (text, textarea, single choice) or
// the selection of a multi choice question.
type AnswerValue struct {
	Text     string
	Selected []string
	IsList   bool
}

func TextValue(text string) AnswerValue {
	return AnswerValue{Text: text}
}

func ListValue(items ...string) AnswerValue {
	selected := make([]string, len(items))
	copy(selected, items)
	return AnswerValue{Selected: selected, IsList: true}
}

// IsEmpty is true for whitespace-only text and for an empty selection.
func (v AnswerValue) IsEmpty() bool {
	if v.IsList {
		return len(v.Selected) == 0
	}
	return strings.TrimSpace(v.Text) == ""
}

func (v AnswerValue) Clone() AnswerValue {
	if !v.IsList {
		return v
	}
	return ListValue(v.Selected...)
}

func (v AnswerValue) Equal(other AnswerValue) bool {
	if v.IsList != other.IsList {
		return false
	}
	if !v.IsList {
		return v.Text == other.Text
	}
	if len(v.Selected) != len(other.Selected) {
		return false
	}
	for i := range v.Selected {
		if v.Selected[i] != other.Selected[i] {
			return false
		}
	}
	return true
}

// Join renders the value as a single string; list items are joined with sep.
func (v AnswerValue) Join(sep string) string {
	if v.IsList {
		return strings.Join(v.Selected, sep)
	}
	return v.Text
}

func (v AnswerValue) String() string {
	return v.Join("; ")
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.IsList {
		if v.Selected == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Selected)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a string, an array or a bare scalar (number, bool).
// Scalars are kept as their literal text.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || string(raw) == "null" {
		*v = AnswerValue{}
		return nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	case '[':
		var items []interface{}
		if err := json.Unmarshal(raw, &items); err != nil {
			return err
		}
		selected := make([]string, 0, len(items))
		for _, item := range items {
			switch it := item.(type) {
			case string:
				selected = append(selected, it)
			case nil:
				continue
			case float64, bool:
				selected = append(selected, fmt.Sprint(it))
			default:
				return fmt.Errorf("unsupported list item type %T in answer", item)
			}
		}
		*v = AnswerValue{Selected: selected, IsList: true}
	case '{':
		return fmt.Errorf("answer value must be a string or a list of strings")
	default:
		*v = TextValue(string(raw))
	}
	return nil
}

func (v AnswerValue) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if v.IsList {
		selected := v.Selected
		if selected == nil {
			selected = []string{}
		}
		return bson.MarshalValue(selected)
	}
	return bson.MarshalValue(v.Text)
}

func (v *AnswerValue) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*v = AnswerValue{}
	case bsontype.String:
		s, ok := rv.StringValueOK()
		if !ok {
			return fmt.Errorf("invalid string answer value")
		}
		*v = TextValue(s)
	case bsontype.Array:
		selected := []string{}
		if err := rv.Unmarshal(&selected); err != nil {
			return err
		}
		*v = AnswerValue{Selected: selected, IsList: true}
	default:
		return fmt.Errorf("unsupported bson type for answer value: %s", t)
	}
	return nil
}

// Answers is the answer map of one briefing, keyed by question id.
type Answers map[string]AnswerValue

func (a Answers) Get(questionID string) (AnswerValue, bool) {
	v, ok := a[questionID]
	return v, ok
}

// Clone returns a deep copy of the map.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v.Clone()
	}
	return out
}
