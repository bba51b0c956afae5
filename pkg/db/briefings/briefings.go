package briefings

import (
	"context"
	"log/slog"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	"github.com/arcflow/arcflow-backend/pkg/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (dbService *BriefingDBService) createIndexForBriefingsCollection(officeID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "schemaKey", Value: 1},
				{Key: "submittedAt", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "submittedAt", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "submittedBy", Value: 1},
			},
		},
	}
	_, err := dbService.collectionBriefings(officeID).Indexes().CreateMany(ctx, indexes)
	return err
}

// SaveBriefing stores a submitted briefing and returns its id.
func (dbService *BriefingDBService) SaveBriefing(officeID string, briefing types.Briefing) (string, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if briefing.SubmittedAt == 0 {
		briefing.SubmittedAt = time.Now().Unix()
	}
	res, err := dbService.collectionBriefings(officeID).InsertOne(ctx, briefing)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (dbService *BriefingDBService) GetBriefingByID(officeID string, briefingID string) (briefing types.Briefing, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(briefingID)
	if err != nil {
		return briefing, err
	}

	filter := bson.M{
		"_id": _id,
	}
	err = dbService.collectionBriefings(officeID).FindOne(ctx, filter).Decode(&briefing)
	return briefing, err
}

// get paginated briefings by query
func (dbService *BriefingDBService) GetBriefings(officeID string, filter bson.M, sort bson.M, page int64, limit int64) (briefings []types.Briefing, paginationInfo *db.PaginationInfos, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	totalCount, err := dbService.GetBriefingsCount(officeID, filter)
	if err != nil {
		return briefings, nil, err
	}

	paginationInfo = db.PrepPaginationInfos(
		totalCount,
		page,
		limit,
	)

	skip := (paginationInfo.CurrentPage - 1) * paginationInfo.PageSize
	if sort == nil {
		sort = bson.M{"submittedAt": -1}
	}

	opts := options.Find().SetSort(sort).SetSkip(skip).SetLimit(paginationInfo.PageSize)
	cursor, err := dbService.collectionBriefings(officeID).Find(ctx, filter, opts)
	if err != nil {
		return briefings, nil, err
	}
	defer cursor.Close(ctx)

	briefings = []types.Briefing{}
	if err = cursor.All(ctx, &briefings); err != nil {
		return briefings, nil, err
	}
	return briefings, paginationInfo, nil
}

func (dbService *BriefingDBService) GetBriefingsCount(officeID string, filter bson.M) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	return dbService.collectionBriefings(officeID).CountDocuments(ctx, filter)
}

// execute on briefings by query
func (dbService *BriefingDBService) FindAndExecuteOnBriefings(
	ctx context.Context,
	officeID string,
	filter bson.M,
	sort bson.M,
	returnOnError bool,
	fn func(dbService *BriefingDBService, b types.Briefing, officeID string, args ...interface{}) error,
	args ...interface{},
) error {
	opts := options.Find().SetSort(sort).SetNoCursorTimeout(dbService.noCursorTimeout)

	cursor, err := dbService.collectionBriefings(officeID).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var briefing types.Briefing
		if err = cursor.Decode(&briefing); err != nil {
			slog.Error("Error while decoding briefing", slog.String("error", err.Error()))
			continue
		}

		if err = fn(dbService, briefing, officeID, args...); err != nil {
			slog.Error("Error while executing function on briefing", slog.String("briefingID", briefing.ID.Hex()), slog.String("error", err.Error()))
			if returnOnError {
				return err
			}
			continue
		}
	}
	return nil
}

func (dbService *BriefingDBService) DeleteBriefingByID(officeID string, briefingID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(briefingID)
	if err != nil {
		return err
	}

	res, err := dbService.collectionBriefings(officeID).DeleteOne(ctx, bson.M{"_id": _id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
