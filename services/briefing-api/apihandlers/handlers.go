package apihandlers

import (
	"net/http"

	"github.com/arcflow/arcflow-backend/pkg/briefing/drafts"
	"github.com/arcflow/arcflow-backend/pkg/briefing/exporter"
	"github.com/arcflow/arcflow-backend/pkg/briefing/schema"
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	"github.com/arcflow/arcflow-backend/pkg/db"
	briefingsDB "github.com/arcflow/arcflow-backend/pkg/db/briefings"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

const DEFAULT_MAX_SCHEMA_SIZE = 1 << 20

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// BriefingDB is the part of the briefing database the handlers use.
type BriefingDB interface {
	SaveBriefing(officeID string, briefing types.Briefing) (string, error)
	GetBriefingByID(officeID string, briefingID string) (types.Briefing, error)
	GetBriefings(officeID string, filter bson.M, sort bson.M, page int64, limit int64) ([]types.Briefing, *db.PaginationInfos, error)
	DeleteBriefingByID(officeID string, briefingID string) error
	SaveSchemaDefinition(officeID string, def briefingsDB.SchemaDefinition) (briefingsDB.SchemaDefinition, error)
	GetSchemaKeys(officeID string) ([]string, error)
	GetSchemaVersions(officeID string, key string) ([]string, error)
}

type SubmissionNotifier interface {
	BriefingSubmitted(officeID string, schemaName string, b types.Briefing) error
}

type HttpEndpoints struct {
	briefingDB       BriefingDB
	registry         *schema.Registry
	drafts           drafts.Store
	classifier       exporter.Classifier
	notifier         SubmissionNotifier
	tokenSignKey     string
	allowedOfficeIDs []string
	serviceAPIKeys   []string
	listSeparator    string
	maxSchemaSize    int64
}

func NewHTTPHandler(
	tokenSignKey string,
	briefingDB BriefingDB,
	registry *schema.Registry,
	draftStore drafts.Store,
	classifier exporter.Classifier,
	notifier SubmissionNotifier,
	allowedOfficeIDs []string,
	serviceAPIKeys []string,
	listSeparator string,
	maxSchemaSize int64,
) *HttpEndpoints {
	if classifier == nil {
		classifier = exporter.DefaultClassifier()
	}
	if maxSchemaSize <= 0 {
		maxSchemaSize = DEFAULT_MAX_SCHEMA_SIZE
	}
	return &HttpEndpoints{
		tokenSignKey:     tokenSignKey,
		briefingDB:       briefingDB,
		registry:         registry,
		drafts:           draftStore,
		classifier:       classifier,
		notifier:         notifier,
		allowedOfficeIDs: allowedOfficeIDs,
		serviceAPIKeys:   serviceAPIKeys,
		listSeparator:    listSeparator,
		maxSchemaSize:    maxSchemaSize,
	}
}
