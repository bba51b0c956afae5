package engine

import (
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

// visibilityPass carries the state of one forward pass over a schema. A
// condition whose controlling question was found hidden earlier in the same
// pass is treated as unanswered, so hiding propagates transitively.
type visibilityPass struct {
	answers types.Answers
	hidden  map[string]bool
}

func newVisibilityPass(answers types.Answers) *visibilityPass {
	return &visibilityPass{
		answers: answers,
		hidden:  map[string]bool{},
	}
}

func (p *visibilityPass) conditionMet(cond *types.Condition) bool {
	if cond == nil {
		return true
	}
	if p.hidden[cond.QuestionID] {
		return false
	}
	return EvaluateCondition(*cond, p.answers)
}

func (p *visibilityPass) hideSection(section *types.Section) {
	for _, q := range section.Questions {
		p.hidden[q.ID] = true
	}
}

// ResolveVisible returns the sections and questions visible for the given
// answers, in authoring order. It keeps no state between calls.
func ResolveVisible(schema *types.Schema, answers types.Answers) []types.VisibleSection {
	result := []types.VisibleSection{}
	if schema == nil {
		return result
	}

	pass := newVisibilityPass(answers)
	for i := range schema.Sections {
		section := &schema.Sections[i]
		if !pass.conditionMet(section.Condition) {
			pass.hideSection(section)
			continue
		}

		vs := types.VisibleSection{
			ID:          section.ID,
			Name:        section.Name,
			Description: section.Description,
			Questions:   []types.Question{},
		}
		for _, q := range section.Questions {
			if !pass.conditionMet(q.Condition) {
				pass.hidden[q.ID] = true
				continue
			}
			vs.Questions = append(vs.Questions, q)
		}
		result = append(result, vs)
	}
	return result
}

// VisibleQuestionIDs returns the set of currently visible question ids.
func VisibleQuestionIDs(schema *types.Schema, answers types.Answers) map[string]bool {
	ids := map[string]bool{}
	for _, section := range ResolveVisible(schema, answers) {
		for _, q := range section.Questions {
			ids[q.ID] = true
		}
	}
	return ids
}

// CountQuestions returns the number of questions in a resolved visible schema.
func CountQuestions(visible []types.VisibleSection) int {
	count := 0
	for _, s := range visible {
		count += len(s.Questions)
	}
	return count
}
