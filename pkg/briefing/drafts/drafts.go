package drafts

import (
	"context"
	"errors"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	"github.com/google/uuid"
)

var ErrDraftNotFound = errors.New("draft not found")

// Draft is an interview in progress. It only carries answers; the visible
// schema is always recomputed from the schema it references.
type Draft struct {
	ID            string        `json:"id"`
	OfficeID      string        `json:"officeId"`
	SchemaKey     string        `json:"schemaKey"`
	SchemaVersion string        `json:"schemaVersion,omitempty"`
	CreatedBy     string        `json:"createdBy"`
	CreatedAt     int64         `json:"createdAt"`
	UpdatedAt     int64         `json:"updatedAt"`
	Answers       types.Answers `json:"answers"`
}

func NewDraft(officeID string, schemaKey string, schemaVersion string, userID string) *Draft {
	now := time.Now().Unix()
	return &Draft{
		ID:            uuid.NewString(),
		OfficeID:      officeID,
		SchemaKey:     schemaKey,
		SchemaVersion: schemaVersion,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Answers:       types.Answers{},
	}
}

// Store keeps drafts between requests. Implementations must return
// ErrDraftNotFound for unknown or expired drafts.
type Store interface {
	Save(ctx context.Context, draft *Draft) error
	Load(ctx context.Context, officeID string, id string) (*Draft, error)
	Delete(ctx context.Context, officeID string, id string) error
}
