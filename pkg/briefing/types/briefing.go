package types

import "go.mongodb.org/mongo-driver/bson/primitive"

// Briefing is a submitted interview: the frozen answers plus the export
// computed from them at submission time.
type Briefing struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SchemaKey     string             `bson:"schemaKey" json:"schemaKey"`
	SchemaVersion string             `bson:"schemaVersion,omitempty" json:"schemaVersion,omitempty"`
	ProjectName   string             `bson:"projectName,omitempty" json:"projectName,omitempty"`
	ClientName    string             `bson:"clientName,omitempty" json:"clientName,omitempty"`
	SubmittedBy   string             `bson:"submittedBy" json:"submittedBy"`
	SubmittedAt   int64              `bson:"submittedAt" json:"submittedAt"`
	DraftID       string             `bson:"draftId,omitempty" json:"draftId,omitempty"`
	Answers       Answers            `bson:"answers" json:"answers"`
	Records       []ExportRecord     `bson:"records" json:"records"`
}
