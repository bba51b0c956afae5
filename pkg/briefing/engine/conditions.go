package engine

import (
	"log/slog"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

// EvaluateCondition reports whether the recorded answer of the controlling
// question satisfies the condition. Missing answers, unknown operators and
// answers of the wrong shape all evaluate to false.
func EvaluateCondition(cond types.Condition, answers types.Answers) bool {
	answer, ok := answers[cond.QuestionID]
	if !ok {
		return false
	}

	op, known := types.CanonicalOperator(cond.Operator)
	if !known {
		slog.Debug("unknown condition operator", slog.String("operator", cond.Operator), slog.String("questionID", cond.QuestionID))
		return false
	}

	switch op {
	case types.OPERATOR_EQUALS:
		return equalsAny(answer, cond.Values)
	case types.OPERATOR_CONTAINS:
		return intersects(answer, cond.Values)
	default:
		return false
	}
}

// equalsAny expects a scalar answer.
func equalsAny(answer types.AnswerValue, values []string) bool {
	if answer.IsList {
		return false
	}
	for _, v := range values {
		if answer.Text == v {
			return true
		}
	}
	return false
}

// intersects expects a list answer.
func intersects(answer types.AnswerValue, values []string) bool {
	if !answer.IsList {
		return false
	}
	for _, selected := range answer.Selected {
		for _, v := range values {
			if selected == v {
				return true
			}
		}
	}
	return false
}
