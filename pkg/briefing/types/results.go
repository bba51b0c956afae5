package types

// VisibleSection is one entry of the derived visible schema.
type VisibleSection struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
}

type IssueReason string

const (
	ISSUE_MISSING_REQUIRED IssueReason = "missing_required"
	ISSUE_MALFORMED        IssueReason = "malformed"
)

type ValidationIssue struct {
	QuestionID string      `bson:"questionId" json:"questionId"`
	SectionID  string      `bson:"sectionId" json:"sectionId"`
	Reason     IssueReason `bson:"reason" json:"reason"`
	Message    string      `bson:"message,omitempty" json:"message,omitempty"`
}

// ExportRecord is one answered, visible question of a finished briefing.
type ExportRecord struct {
	SectionID    string      `bson:"sectionId" json:"sectionId"`
	SectionName  string      `bson:"sectionName" json:"sectionName"`
	QuestionID   string      `bson:"questionId" json:"questionId"`
	QuestionText string      `bson:"questionText" json:"questionText"`
	Value        AnswerValue `bson:"value" json:"value"`
	Kind         string      `bson:"kind" json:"kind"`
	Importance   Importance  `bson:"importance" json:"importance"`
}
