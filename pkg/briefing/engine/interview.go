package engine

import (
	"errors"
	"fmt"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

var ErrUnknownQuestion = errors.New("unknown question")

// Progress summarises how far an interview has come over its visible questions.
type Progress struct {
	VisibleQuestions  int `json:"visibleQuestions"`
	AnsweredQuestions int `json:"answeredQuestions"`
	RequiredQuestions int `json:"requiredQuestions"`
	RequiredAnswered  int `json:"requiredAnswered"`
	Percent           int `json:"percent"`
}

// Interview binds an answer store to a schema and keeps the visible schema
// current after every change. Not safe for concurrent use.
type Interview struct {
	schema  *types.Schema
	store   *AnswerStore
	visible []types.VisibleSection
}

func NewInterview(schema *types.Schema, initial types.Answers) *Interview {
	iv := &Interview{
		schema: schema,
		store:  NewAnswerStore(initial),
	}
	iv.recompute()
	iv.store.Subscribe(func(ChangeEvent) {
		iv.recompute()
	})
	return iv
}

func (iv *Interview) recompute() {
	iv.visible = ResolveVisible(iv.schema, iv.store.answers)
}

func (iv *Interview) Schema() *types.Schema {
	return iv.schema
}

func (iv *Interview) Store() *AnswerStore {
	return iv.store
}

// Answer sets the answer of a question declared in the schema.
func (iv *Interview) Answer(questionID string, value types.AnswerValue) error {
	if _, _, ok := iv.schema.FindQuestion(questionID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	return iv.store.Set(questionID, value)
}

func (iv *Interview) Clear(questionID string) error {
	if _, _, ok := iv.schema.FindQuestion(questionID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	return iv.store.Clear(questionID)
}

// Visible returns the visible schema for the current answers.
func (iv *Interview) Visible() []types.VisibleSection {
	return iv.visible
}

func (iv *Interview) Validate() []types.ValidationIssue {
	return Validate(iv.visible, iv.store.answers)
}

func (iv *Interview) Progress() Progress {
	p := Progress{}
	for _, section := range iv.visible {
		for _, q := range section.Questions {
			p.VisibleQuestions++
			answer, ok := iv.store.answers[q.ID]
			answered := ok && !answer.IsEmpty()
			if answered {
				p.AnsweredQuestions++
			}
			if q.Required {
				p.RequiredQuestions++
				if answered {
					p.RequiredAnswered++
				}
			}
		}
	}
	if p.VisibleQuestions > 0 {
		p.Percent = p.AnsweredQuestions * 100 / p.VisibleQuestions
	}
	return p
}

// Finalize validates the answers and, when no issue is left, freezes the store
// and returns the final answer map. With issues the store stays editable.
func (iv *Interview) Finalize() (types.Answers, []types.ValidationIssue) {
	issues := iv.Validate()
	if len(issues) > 0 {
		return nil, issues
	}
	iv.store.Freeze()
	return iv.store.Snapshot(), issues
}
