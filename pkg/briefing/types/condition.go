package types

const (
	OPERATOR_EQUALS       = "equals"
	OPERATOR_CONTAINS     = "contains"
	OPERATOR_CONTAINS_ANY = "contains_any"
)

// Condition gates a section or a question on the answer of an earlier question.
// Operator is always canonical after loading: "equals" or "contains".
type Condition struct {
	QuestionID string   `bson:"questionId" json:"questionId"`
	Values     []string `bson:"values" json:"values"`
	Operator   string   `bson:"operator" json:"operator"`
}

// CanonicalOperator maps accepted operator spellings to the canonical name.
// The second return value is false for unknown operators.
func CanonicalOperator(op string) (string, bool) {
	switch op {
	case OPERATOR_EQUALS, "equal", "eq":
		return OPERATOR_EQUALS, true
	case OPERATOR_CONTAINS, OPERATOR_CONTAINS_ANY:
		return OPERATOR_CONTAINS, true
	}
	return "", false
}

func (c Condition) HasValue(v string) bool {
	for _, cv := range c.Values {
		if cv == v {
			return true
		}
	}
	return false
}
