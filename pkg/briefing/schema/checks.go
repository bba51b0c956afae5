package schema

import (
	"sort"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

// CheckRegistry holds the named answer checks a schema may reference through
// a question's validator field.
type CheckRegistry struct {
	checks map[string]types.AnswerCheck
}

func NewCheckRegistry() *CheckRegistry {
	return &CheckRegistry{checks: map[string]types.AnswerCheck{}}
}

func (r *CheckRegistry) Register(name string, check types.AnswerCheck) {
	r.checks[name] = check
}

func (r *CheckRegistry) Lookup(name string) (types.AnswerCheck, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.checks[name]
	return c, ok
}

func (r *CheckRegistry) Names() []string {
	if r == nil {
		return []string{}
	}
	names := make([]string, 0, len(r.checks))
	for n := range r.checks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
