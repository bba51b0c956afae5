package schema

import (
	"fmt"
	"strings"
)

const (
	PROBLEM_PARSE              = "parse_error"
	PROBLEM_MISSING_KEY        = "missing_key"
	PROBLEM_MISSING_ID         = "missing_id"
	PROBLEM_DUPLICATE_SECTION  = "duplicate_section_id"
	PROBLEM_DUPLICATE_QUESTION = "duplicate_question_id"
	PROBLEM_INVALID_KIND       = "invalid_kind"
	PROBLEM_MISSING_OPTIONS    = "missing_options"
	PROBLEM_INVALID_IMPORTANCE = "invalid_importance"
	PROBLEM_UNKNOWN_VALIDATOR  = "unknown_validator"
	PROBLEM_UNKNOWN_OPERATOR   = "unknown_operator"
	PROBLEM_EMPTY_VALUES       = "empty_condition_values"
	PROBLEM_UNKNOWN_REFERENCE  = "unknown_condition_reference"
	PROBLEM_FORWARD_REFERENCE  = "forward_condition_reference"
	PROBLEM_CYCLE              = "condition_cycle"
)

// SchemaProblem is one authoring error found while loading a schema.
type SchemaProblem struct {
	Code       string `json:"code"`
	Location   string `json:"location"`
	SectionID  string `json:"sectionId,omitempty"`
	QuestionID string `json:"questionId,omitempty"`
	Message    string `json:"message"`
}

func (p SchemaProblem) String() string {
	return fmt.Sprintf("%s: %s", p.Location, p.Message)
}

// SchemaLoadError reports every problem of a schema document that must be
// fixed before any interview can use it.
type SchemaLoadError struct {
	SchemaKey string
	Problems  []SchemaProblem
}

func (e *SchemaLoadError) Error() string {
	key := e.SchemaKey
	if key == "" {
		key = "<unnamed>"
	}
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.String())
	}
	return fmt.Sprintf("schema %s: %d problem(s): %s", key, len(e.Problems), strings.Join(msgs, "; "))
}

// HasProblem reports whether a problem with the given code was recorded.
func (e *SchemaLoadError) HasProblem(code string) bool {
	for _, p := range e.Problems {
		if p.Code == code {
			return true
		}
	}
	return false
}
