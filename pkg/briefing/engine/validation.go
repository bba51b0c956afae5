package engine

import (
	"fmt"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

// Validate checks the answers of all visible questions. Hidden questions are
// never inspected. All issues are returned at once.
func Validate(visible []types.VisibleSection, answers types.Answers) []types.ValidationIssue {
	issues := []types.ValidationIssue{}
	for _, section := range visible {
		for _, q := range section.Questions {
			answer, ok := answers[q.ID]
			if !ok || answer.IsEmpty() {
				if q.Required {
					issues = append(issues, types.ValidationIssue{
						QuestionID: q.ID,
						SectionID:  section.ID,
						Reason:     types.ISSUE_MISSING_REQUIRED,
						Message:    "answer required",
					})
				}
				continue
			}

			if err := checkAnswerShape(q, answer); err != nil {
				issues = append(issues, types.ValidationIssue{
					QuestionID: q.ID,
					SectionID:  section.ID,
					Reason:     types.ISSUE_MALFORMED,
					Message:    err.Error(),
				})
				continue
			}

			if q.Check != nil {
				var params map[string]string
				if q.Validator != nil {
					params = q.Validator.Params
				}
				if err := q.Check(answer, params); err != nil {
					issues = append(issues, types.ValidationIssue{
						QuestionID: q.ID,
						SectionID:  section.ID,
						Reason:     types.ISSUE_MALFORMED,
						Message:    err.Error(),
					})
				}
			}
		}
	}
	return issues
}

func checkAnswerShape(q types.Question, answer types.AnswerValue) error {
	switch q.Kind {
	case types.QUESTION_KIND_MULTI_CHOICE:
		if !answer.IsList {
			return fmt.Errorf("expected a list of options")
		}
		if len(q.Options) == 0 {
			return nil
		}
		for _, s := range answer.Selected {
			if !q.HasOption(s) {
				return fmt.Errorf("unknown option: %s", s)
			}
		}
	case types.QUESTION_KIND_SINGLE_CHOICE:
		if answer.IsList {
			return fmt.Errorf("expected a single option")
		}
		if len(q.Options) > 0 && !q.HasOption(answer.Text) {
			return fmt.Errorf("unknown option: %s", answer.Text)
		}
	default:
		if answer.IsList {
			return fmt.Errorf("expected a text answer")
		}
	}
	return nil
}
