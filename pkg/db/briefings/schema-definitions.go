package briefings

import (
	"errors"
	"sort"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/briefing/schema"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SchemaDefinition is the source document of a schema published by an office.
// The source is stored as written and compiled again when loaded.
type SchemaDefinition struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Key         string             `bson:"key" json:"key"`
	Version     string             `bson:"version" json:"version"`
	Format      string             `bson:"format" json:"format"`
	Source      string             `bson:"source" json:"source"`
	PublishedAt int64              `bson:"publishedAt" json:"publishedAt"`
	PublishedBy string             `bson:"publishedBy,omitempty" json:"publishedBy,omitempty"`
}

var ErrDuplicateVersion = errors.New("schema version already published")

func (dbService *BriefingDBService) SaveSchemaDefinition(officeID string, def SchemaDefinition) (SchemaDefinition, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if def.PublishedAt == 0 {
		def.PublishedAt = time.Now().Unix()
	}
	res, err := dbService.collectionSchemaDefinitions(officeID).InsertOne(ctx, def)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return def, ErrDuplicateVersion
		}
		return def, err
	}
	def.ID = res.InsertedID.(primitive.ObjectID)
	return def, nil
}

// GetLatestSchemaDefinition returns the most recently published definition
// of a key, or mongo.ErrNoDocuments.
func (dbService *BriefingDBService) GetLatestSchemaDefinition(officeID string, key string) (def SchemaDefinition, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{
		{Key: "publishedAt", Value: -1},
		{Key: "_id", Value: -1},
	})
	err = dbService.collectionSchemaDefinitions(officeID).FindOne(ctx, bson.M{"key": key}, opts).Decode(&def)
	return def, err
}

func (dbService *BriefingDBService) GetSchemaKeys(officeID string) ([]string, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	values, err := dbService.collectionSchemaDefinitions(officeID).Distinct(ctx, "key", bson.M{})
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			keys = append(keys, s)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (dbService *BriefingDBService) GetSchemaVersions(officeID string, key string) ([]string, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	values, err := dbService.collectionSchemaDefinitions(officeID).Distinct(ctx, "version", bson.M{"key": key})
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			versions = append(versions, s)
		}
	}
	return versions, nil
}

// DefinitionLookup adapts the schema definitions collection to the schema
// registry.
func (dbService *BriefingDBService) DefinitionLookup() schema.DefinitionLookup {
	return func(officeID string, key string) (*schema.Definition, error) {
		def, err := dbService.GetLatestSchemaDefinition(officeID, key)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, schema.ErrSchemaNotFound
			}
			return nil, err
		}
		return &schema.Definition{
			Key:     def.Key,
			Version: def.Version,
			Format:  def.Format,
			Source:  []byte(def.Source),
		}, nil
	}
}
