package apihelpers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

const MAX_PAGE_SIZE = 100

type PaginatedQuery struct {
	Page   int64
	Limit  int64
	Sort   bson.M
	Filter bson.M
}

var sortableFields = map[string]bool{
	"submittedAt": true,
	"schemaKey":   true,
	"projectName": true,
}

// ParsePaginatedBriefingQueryFromCtx reads page, limit and sort plus the
// filter parameters schemaKey, submittedBy, from and until (unix seconds).
// Filters are built from known fields only.
func ParsePaginatedBriefingQueryFromCtx(c *gin.Context) (*PaginatedQuery, error) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid page: %w", err)
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid limit: %w", err)
	}
	if limit > MAX_PAGE_SIZE {
		limit = MAX_PAGE_SIZE
	}

	sort := bson.M{"submittedAt": -1}
	if sortBy := c.Query("sortBy"); sortBy != "" {
		if !sortableFields[sortBy] {
			return nil, fmt.Errorf("cannot sort by %s", sortBy)
		}
		direction := 1
		if c.DefaultQuery("order", "asc") == "desc" {
			direction = -1
		}
		sort = bson.M{sortBy: direction}
	}

	filter := bson.M{}
	if schemaKey := c.Query("schemaKey"); schemaKey != "" {
		filter["schemaKey"] = schemaKey
	}
	if submittedBy := c.Query("submittedBy"); submittedBy != "" {
		filter["submittedBy"] = submittedBy
	}
	timeRange := bson.M{}
	if from := c.Query("from"); from != "" {
		v, err := strconv.ParseInt(from, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid from: %w", err)
		}
		timeRange["$gte"] = v
	}
	if until := c.Query("until"); until != "" {
		v, err := strconv.ParseInt(until, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid until: %w", err)
		}
		timeRange["$lt"] = v
	}
	if len(timeRange) > 0 {
		filter["submittedAt"] = timeRange
	}

	return &PaginatedQuery{
		Page:   page,
		Limit:  limit,
		Sort:   sort,
		Filter: filter,
	}, nil
}
