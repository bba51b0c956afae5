package briefings

import (
	"context"
	"log/slog"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection names
const (
	COLLECTION_NAME_BRIEFINGS          = "briefings"
	COLLECTION_NAME_SCHEMA_DEFINITIONS = "schemaDefinitions"
)

type BriefingDBService struct {
	DBClient        *mongo.Client
	timeout         time.Duration
	noCursorTimeout bool
	DBNamePrefix    string
	OfficeIDs       []string
}

func NewBriefingDBService(configs db.DBConfig) (*BriefingDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), configs.Timeout)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(configs.IdleConnTimeout),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)
	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), configs.Timeout)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	briefingDBSc := &BriefingDBService{
		DBClient:        dbClient,
		timeout:         configs.Timeout,
		noCursorTimeout: configs.NoCursorTimeout,
		DBNamePrefix:    configs.DBNamePrefix,
		OfficeIDs:       configs.OfficeIDs,
	}

	if configs.RunIndexCreation {
		if err := briefingDBSc.ensureIndexes(); err != nil {
			slog.Error("Error ensuring indexes for briefing DB", slog.String("error", err.Error()))
		}
	}

	return briefingDBSc, nil
}

func (dbService *BriefingDBService) getDBName(officeID string) string {
	return dbService.DBNamePrefix + officeID + "_briefingDB"
}

func (dbService *BriefingDBService) collectionBriefings(officeID string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(officeID)).Collection(COLLECTION_NAME_BRIEFINGS)
}

func (dbService *BriefingDBService) collectionSchemaDefinitions(officeID string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(officeID)).Collection(COLLECTION_NAME_SCHEMA_DEFINITIONS)
}

func (dbService *BriefingDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbService.timeout)
}

func (dbService *BriefingDBService) ensureIndexes() error {
	slog.Debug("Ensuring indexes for briefing DB")
	for _, officeID := range dbService.OfficeIDs {
		if err := dbService.createIndexForBriefingsCollection(officeID); err != nil {
			slog.Error("Error creating indexes for briefings", slog.String("officeID", officeID), slog.String("error", err.Error()))
		}

		ctx, cancel := dbService.getContext()
		_, err := dbService.collectionSchemaDefinitions(officeID).Indexes().CreateOne(
			ctx,
			mongo.IndexModel{
				Keys: bson.D{
					{Key: "key", Value: 1},
					{Key: "version", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		)
		cancel()
		if err != nil {
			slog.Error("Error creating index for schema definitions", slog.String("officeID", officeID), slog.String("error", err.Error()))
		}

		ctx, cancel = dbService.getContext()
		names, err := db.IndexNames(ctx, dbService.collectionBriefings(officeID))
		cancel()
		if err == nil {
			slog.Debug("briefing indexes", slog.String("officeID", officeID), slog.Any("indexes", names))
		}
	}
	return nil
}
