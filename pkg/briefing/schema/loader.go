package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	"gopkg.in/yaml.v2"
)

const (
	FORMAT_YAML = "yaml"
	FORMAT_JSON = "json"
)

// flexString accepts both numbers and strings, so question ids may be written
// as 28 or "28".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(raw) == "null" {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(raw))
	}
	*f = flexString(normalizeNumber(n.String()))
	return nil
}

func normalizeNumber(s string) string {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

type rawCondition struct {
	QuestionID flexString   `json:"questionId" yaml:"questionId"`
	Values     []flexString `json:"values" yaml:"values"`
	Operator   string       `json:"operator" yaml:"operator"`

	// field names of older data files
	PerguntaID flexString   `json:"perguntaId" yaml:"perguntaId"`
	Valores    []flexString `json:"valores" yaml:"valores"`
	Operador   string       `json:"operador" yaml:"operador"`
}

type rawValidator struct {
	Name   string            `json:"name" yaml:"name"`
	Params map[string]string `json:"params" yaml:"params"`
}

type rawQuestion struct {
	ID          flexString    `json:"id" yaml:"id"`
	Text        string        `json:"text" yaml:"text"`
	Kind        string        `json:"kind" yaml:"kind"`
	Required    bool          `json:"required" yaml:"required"`
	Options     []string      `json:"options" yaml:"options"`
	Placeholder string        `json:"placeholder" yaml:"placeholder"`
	Condition   *rawCondition `json:"condition" yaml:"condition"`
	Importance  string        `json:"importance" yaml:"importance"`
	Validator   *rawValidator `json:"validator" yaml:"validator"`
}

type rawSection struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Importance  string        `json:"importance" yaml:"importance"`
	Condition   *rawCondition `json:"condition" yaml:"condition"`
	Questions   []rawQuestion `json:"questions" yaml:"questions"`
}

type rawSchema struct {
	Key         string       `json:"key" yaml:"key"`
	Version     string       `json:"version" yaml:"version"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Sections    []rawSection `json:"sections" yaml:"sections"`
}

// DetectFormat guesses the document format from its first non-blank byte.
func DetectFormat(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FORMAT_JSON
	}
	return FORMAT_YAML
}

func FormatFromFilename(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FORMAT_YAML, true
	case ".json":
		return FORMAT_JSON, true
	}
	return "", false
}

// Load parses a schema document (YAML or JSON) and checks it. Any authoring
// problem is reported as *SchemaLoadError.
func Load(data []byte, checks *CheckRegistry) (*types.Schema, error) {
	return LoadWithFormat(data, DetectFormat(data), checks)
}

func LoadWithFormat(data []byte, format string, checks *CheckRegistry) (*types.Schema, error) {
	var raw rawSchema
	var err error
	switch format {
	case FORMAT_JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&raw)
	case FORMAT_YAML:
		err = yaml.UnmarshalStrict(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported schema format: %s", format)
	}
	if err != nil {
		return nil, &SchemaLoadError{
			Problems: []SchemaProblem{{Code: PROBLEM_PARSE, Location: "document", Message: err.Error()}},
		}
	}
	return compile(raw, checks)
}

func LoadFile(path string, checks *CheckRegistry) (*types.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format, ok := FormatFromFilename(path)
	if !ok {
		format = DetectFormat(data)
	}
	s, err := LoadWithFormat(data, format, checks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

type questionPosition struct {
	sectionIndex int
	ordinal      int
	kind         string
	options      []string
}

type compiler struct {
	checks    *CheckRegistry
	problems  []SchemaProblem
	positions map[string]questionPosition
}

func (c *compiler) addProblem(code, location, sectionID, questionID, msg string) {
	c.problems = append(c.problems, SchemaProblem{
		Code:       code,
		Location:   location,
		SectionID:  sectionID,
		QuestionID: questionID,
		Message:    msg,
	})
}

func compile(raw rawSchema, checks *CheckRegistry) (*types.Schema, error) {
	c := &compiler{
		checks:    checks,
		positions: map[string]questionPosition{},
	}

	out := &types.Schema{
		Key:         strings.TrimSpace(raw.Key),
		Version:     raw.Version,
		Name:        raw.Name,
		Description: raw.Description,
		Sections:    make([]types.Section, 0, len(raw.Sections)),
	}
	if out.Key == "" {
		c.addProblem(PROBLEM_MISSING_KEY, "document", "", "", "schema key is required")
	}

	// first pass: identities and question definitions
	sectionIDs := map[string]int{}
	ordinal := 0
	for si, rs := range raw.Sections {
		loc := fmt.Sprintf("sections[%d]", si)
		sectionID := strings.TrimSpace(rs.ID)
		if sectionID == "" {
			c.addProblem(PROBLEM_MISSING_ID, loc, "", "", "section id is required")
		} else if first, dup := sectionIDs[sectionID]; dup {
			c.addProblem(PROBLEM_DUPLICATE_SECTION, loc, sectionID, "", fmt.Sprintf("section id %s already used by sections[%d]", sectionID, first))
		} else {
			sectionIDs[sectionID] = si
		}

		section := types.Section{
			ID:          sectionID,
			Name:        rs.Name,
			Description: rs.Description,
			Importance:  c.importance(rs.Importance, loc, sectionID, ""),
			Questions:   make([]types.Question, 0, len(rs.Questions)),
		}

		for qi, rq := range rs.Questions {
			qloc := fmt.Sprintf("%s.questions[%d]", loc, qi)
			q := c.question(rq, qloc, sectionID)
			if q.ID != "" {
				if first, dup := c.positions[q.ID]; dup {
					c.addProblem(PROBLEM_DUPLICATE_QUESTION, qloc, sectionID, q.ID, fmt.Sprintf("question id %s already declared in sections[%d]", q.ID, first.sectionIndex))
				} else {
					c.positions[q.ID] = questionPosition{sectionIndex: si, ordinal: ordinal, kind: q.Kind, options: q.Options}
				}
			}
			ordinal++
			section.Questions = append(section.Questions, q)
		}
		out.Sections = append(out.Sections, section)
	}

	// second pass: conditions, which need every question position
	ordinal = 0
	for si, rs := range raw.Sections {
		loc := fmt.Sprintf("sections[%d]", si)
		sectionID := out.Sections[si].ID
		if rs.Condition != nil {
			cond := c.condition(*rs.Condition, loc+".condition", sectionID, "")
			if cond != nil {
				c.checkSectionReference(cond, si, loc+".condition", sectionID)
			}
			out.Sections[si].Condition = cond
		}
		for qi, rq := range rs.Questions {
			if rq.Condition != nil {
				qloc := fmt.Sprintf("%s.questions[%d].condition", loc, qi)
				qID := out.Sections[si].Questions[qi].ID
				cond := c.condition(*rq.Condition, qloc, sectionID, qID)
				if cond != nil {
					c.checkQuestionReference(cond, ordinal, qID, qloc, sectionID)
				}
				out.Sections[si].Questions[qi].Condition = cond
			}
			ordinal++
		}
	}

	if len(c.problems) > 0 {
		return nil, &SchemaLoadError{SchemaKey: out.Key, Problems: c.problems}
	}
	slog.Debug("schema loaded", slog.String("key", out.Key), slog.String("version", out.Version), slog.Int("sections", len(out.Sections)), slog.Int("questions", out.QuestionCount()))
	return out, nil
}

func (c *compiler) importance(value string, loc, sectionID, questionID string) types.Importance {
	if value == "" {
		return ""
	}
	imp := types.Importance(strings.ToLower(strings.TrimSpace(value)))
	if !types.IsValidImportance(imp) {
		c.addProblem(PROBLEM_INVALID_IMPORTANCE, loc, sectionID, questionID, fmt.Sprintf("invalid importance %q", value))
		return ""
	}
	return imp
}

func (c *compiler) question(rq rawQuestion, loc, sectionID string) types.Question {
	q := types.Question{
		ID:          strings.TrimSpace(string(rq.ID)),
		Text:        rq.Text,
		Kind:        strings.TrimSpace(rq.Kind),
		Required:    rq.Required,
		Options:     rq.Options,
		Placeholder: rq.Placeholder,
	}
	if q.ID == "" {
		c.addProblem(PROBLEM_MISSING_ID, loc, sectionID, "", "question id is required")
	}
	if !types.IsValidQuestionKind(q.Kind) {
		c.addProblem(PROBLEM_INVALID_KIND, loc, sectionID, q.ID, fmt.Sprintf("invalid question kind %q", rq.Kind))
	} else if types.IsChoiceKind(q.Kind) && len(q.Options) == 0 {
		c.addProblem(PROBLEM_MISSING_OPTIONS, loc, sectionID, q.ID, "choice question without options")
	}
	q.Importance = c.importance(rq.Importance, loc, sectionID, q.ID)

	if rq.Validator != nil {
		q.Validator = &types.ValidatorRef{Name: rq.Validator.Name, Params: rq.Validator.Params}
		check, ok := c.checks.Lookup(rq.Validator.Name)
		if !ok {
			c.addProblem(PROBLEM_UNKNOWN_VALIDATOR, loc, sectionID, q.ID, fmt.Sprintf("unknown validator %q", rq.Validator.Name))
		}
		q.Check = check
	}
	return q
}

// condition normalizes field aliases and the operator name.
func (c *compiler) condition(rc rawCondition, loc, sectionID, questionID string) *types.Condition {
	target := strings.TrimSpace(string(rc.QuestionID))
	if target == "" {
		target = strings.TrimSpace(string(rc.PerguntaID))
	}
	rawValues := rc.Values
	if len(rawValues) == 0 {
		rawValues = rc.Valores
	}
	op := rc.Operator
	if op == "" {
		op = rc.Operador
	}

	values := make([]string, 0, len(rawValues))
	for _, v := range rawValues {
		values = append(values, string(v))
	}

	ok := true
	if target == "" {
		c.addProblem(PROBLEM_UNKNOWN_REFERENCE, loc, sectionID, questionID, "condition without question id")
		ok = false
	}
	canonical, known := types.CanonicalOperator(strings.TrimSpace(op))
	if !known {
		c.addProblem(PROBLEM_UNKNOWN_OPERATOR, loc, sectionID, questionID, fmt.Sprintf("unknown operator %q", op))
		ok = false
	}
	if len(values) == 0 {
		c.addProblem(PROBLEM_EMPTY_VALUES, loc, sectionID, questionID, "condition without values")
		ok = false
	}
	if !ok {
		return nil
	}
	return &types.Condition{QuestionID: target, Values: values, Operator: canonical}
}

func (c *compiler) checkSectionReference(cond *types.Condition, sectionIndex int, loc, sectionID string) {
	pos, found := c.positions[cond.QuestionID]
	if !found {
		c.addProblem(PROBLEM_UNKNOWN_REFERENCE, loc, sectionID, "", fmt.Sprintf("condition references unknown question %s", cond.QuestionID))
		return
	}
	if pos.sectionIndex == sectionIndex {
		c.addProblem(PROBLEM_CYCLE, loc, sectionID, "", fmt.Sprintf("section is gated by its own question %s", cond.QuestionID))
		return
	}
	if pos.sectionIndex > sectionIndex {
		c.addProblem(PROBLEM_FORWARD_REFERENCE, loc, sectionID, "", fmt.Sprintf("condition references question %s of a later section", cond.QuestionID))
		return
	}
	c.warnOnShape(cond, pos, sectionID, "")
}

func (c *compiler) checkQuestionReference(cond *types.Condition, ordinal int, questionID, loc, sectionID string) {
	pos, found := c.positions[cond.QuestionID]
	if !found {
		c.addProblem(PROBLEM_UNKNOWN_REFERENCE, loc, sectionID, questionID, fmt.Sprintf("condition references unknown question %s", cond.QuestionID))
		return
	}
	if cond.QuestionID == questionID {
		c.addProblem(PROBLEM_CYCLE, loc, sectionID, questionID, "question is gated by itself")
		return
	}
	if pos.ordinal >= ordinal {
		c.addProblem(PROBLEM_FORWARD_REFERENCE, loc, sectionID, questionID, fmt.Sprintf("condition references later question %s", cond.QuestionID))
		return
	}
	c.warnOnShape(cond, pos, sectionID, questionID)
}

// warnOnShape logs conditions that can never be met at runtime. They are legal
// because answers of the wrong shape simply evaluate to false.
func (c *compiler) warnOnShape(cond *types.Condition, target questionPosition, sectionID, questionID string) {
	attrs := []any{
		slog.String("sectionID", sectionID),
		slog.String("questionID", questionID),
		slog.String("target", cond.QuestionID),
	}
	switch {
	case cond.Operator == types.OPERATOR_CONTAINS && target.kind != types.QUESTION_KIND_MULTI_CHOICE:
		slog.Warn("contains condition on a question without list answers", attrs...)
	case cond.Operator == types.OPERATOR_EQUALS && target.kind == types.QUESTION_KIND_MULTI_CHOICE:
		slog.Warn("equals condition on a multi choice question", attrs...)
	}
	if len(target.options) == 0 {
		return
	}
	for _, v := range cond.Values {
		found := false
		for _, o := range target.options {
			if o == v {
				found = true
				break
			}
		}
		if !found {
			slog.Warn("condition value is not an option of the controlling question", append(attrs, slog.String("value", v))...)
		}
	}
}
