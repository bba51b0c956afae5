package db

import (
	"context"
	"errors"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// mongo error code for a namespace that does not exist yet
const ERROR_CODE_NAMESPACE_NOT_FOUND = 26

// IndexNames returns the sorted index names of a collection. A collection
// that was not created yet has none.
func IndexNames(ctx context.Context, collection *mongo.Collection) ([]string, error) {
	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == ERROR_CODE_NAMESPACE_NOT_FOUND {
			return []string{}, nil
		}
		return nil, err
	}
	defer cursor.Close(ctx)

	var indexes []bson.M
	if err := cursor.All(ctx, &indexes); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		if name, ok := idx["name"].(string); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
