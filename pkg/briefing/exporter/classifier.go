package exporter

import (
	"strings"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

// Classifier decides the importance of an exported answer. The second return
// value is false when the classifier has no opinion.
type Classifier interface {
	Classify(section types.Section, question types.Question) (types.Importance, bool)
}

// ExplicitClassifier uses importance metadata from the schema: the question's
// own value first, then its section's.
type ExplicitClassifier struct{}

func (ExplicitClassifier) Classify(section types.Section, question types.Question) (types.Importance, bool) {
	if question.Importance != "" {
		return question.Importance, true
	}
	if section.Importance != "" {
		return section.Importance, true
	}
	return "", false
}

// SectionClassifier maps section ids to importance.
type SectionClassifier map[string]types.Importance

func (c SectionClassifier) Classify(section types.Section, _ types.Question) (types.Importance, bool) {
	imp, ok := c[section.ID]
	return imp, ok
}

type KeywordRule struct {
	Importance types.Importance
	Keywords   []string
}

// KeywordClassifier scans the section name and question text for keywords.
// Rules are tried in order; matching is case insensitive.
type KeywordClassifier struct {
	Rules []KeywordRule
}

func (c KeywordClassifier) Classify(section types.Section, question types.Question) (types.Importance, bool) {
	haystack := strings.ToLower(section.Name + " " + question.Text)
	for _, rule := range c.Rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(haystack, strings.ToLower(kw)) {
				return rule.Importance, true
			}
		}
	}
	return "", false
}

// ChainClassifier asks its classifiers in order; the first decision wins.
type ChainClassifier []Classifier

func (c ChainClassifier) Classify(section types.Section, question types.Question) (types.Importance, bool) {
	for _, cl := range c {
		if cl == nil {
			continue
		}
		if imp, ok := cl.Classify(section, question); ok {
			return imp, true
		}
	}
	return "", false
}

// ClassifyOrDefault falls back to medium importance.
func ClassifyOrDefault(c Classifier, section types.Section, question types.Question) types.Importance {
	if c != nil {
		if imp, ok := c.Classify(section, question); ok && types.IsValidImportance(imp) {
			return imp
		}
	}
	return types.IMPORTANCE_MEDIUM
}

func DefaultClassifier() Classifier {
	return ChainClassifier{ExplicitClassifier{}}
}
