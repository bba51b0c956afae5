package types

const (
	QUESTION_KIND_TEXT          = "text"
	QUESTION_KIND_TEXTAREA      = "textarea"
	QUESTION_KIND_SINGLE_CHOICE = "single_choice"
	QUESTION_KIND_MULTI_CHOICE  = "multi_choice"
)

type Importance string

const (
	IMPORTANCE_HIGH   Importance = "high"
	IMPORTANCE_MEDIUM Importance = "medium"
	IMPORTANCE_LOW    Importance = "low"
)

// Schema is one briefing type: an ordered list of sections. It is immutable once loaded.
type Schema struct {
	Key         string    `bson:"key" json:"key"`
	Version     string    `bson:"version,omitempty" json:"version,omitempty"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Sections    []Section `bson:"sections" json:"sections"`
}

type Section struct {
	ID          string     `bson:"id" json:"id"`
	Name        string     `bson:"name" json:"name"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Questions   []Question `bson:"questions" json:"questions"`
	Condition   *Condition `bson:"condition,omitempty" json:"condition,omitempty"`
	Importance  Importance `bson:"importance,omitempty" json:"importance,omitempty"`
}

type Question struct {
	ID          string        `bson:"id" json:"id"`
	Text        string        `bson:"text" json:"text"`
	Kind        string        `bson:"kind" json:"kind"`
	Required    bool          `bson:"required" json:"required"`
	Options     []string      `bson:"options,omitempty" json:"options,omitempty"`
	Placeholder string        `bson:"placeholder,omitempty" json:"placeholder,omitempty"`
	Condition   *Condition    `bson:"condition,omitempty" json:"condition,omitempty"`
	Importance  Importance    `bson:"importance,omitempty" json:"importance,omitempty"`
	Validator   *ValidatorRef `bson:"validator,omitempty" json:"validator,omitempty"`

	// Check is resolved from Validator when the schema is loaded.
	Check AnswerCheck `bson:"-" json:"-"`
}

// ValidatorRef names a registered answer check and its parameters.
type ValidatorRef struct {
	Name   string            `bson:"name" json:"name"`
	Params map[string]string `bson:"params,omitempty" json:"params,omitempty"`
}

// AnswerCheck inspects a non-empty answer of a visible question. A returned
// error marks the answer as malformed; its message is shown to the user.
type AnswerCheck func(value AnswerValue, params map[string]string) error

func IsValidQuestionKind(kind string) bool {
	switch kind {
	case QUESTION_KIND_TEXT, QUESTION_KIND_TEXTAREA, QUESTION_KIND_SINGLE_CHOICE, QUESTION_KIND_MULTI_CHOICE:
		return true
	}
	return false
}

func IsChoiceKind(kind string) bool {
	return kind == QUESTION_KIND_SINGLE_CHOICE || kind == QUESTION_KIND_MULTI_CHOICE
}

func IsValidImportance(i Importance) bool {
	switch i {
	case IMPORTANCE_HIGH, IMPORTANCE_MEDIUM, IMPORTANCE_LOW:
		return true
	}
	return false
}

// QuestionCount returns the number of questions over all sections.
func (s *Schema) QuestionCount() int {
	if s == nil {
		return 0
	}
	count := 0
	for _, section := range s.Sections {
		count += len(section.Questions)
	}
	return count
}

// FindQuestion looks up a question by id and returns it with its enclosing
// section. A nil schema has no questions.
func (s *Schema) FindQuestion(id string) (question *Question, section *Section, ok bool) {
	if s == nil {
		return nil, nil, false
	}
	for i := range s.Sections {
		for j := range s.Sections[i].Questions {
			if s.Sections[i].Questions[j].ID == id {
				return &s.Sections[i].Questions[j], &s.Sections[i], true
			}
		}
	}
	return nil, nil, false
}

func (s *Schema) FindSection(id string) (*Section, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Sections {
		if s.Sections[i].ID == id {
			return &s.Sections[i], true
		}
	}
	return nil, false
}

// HasOption reports whether value is one of the question's options.
func (q *Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o == value {
			return true
		}
	}
	return false
}
