package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/briefing/exporter"
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	"go.mongodb.org/mongo-driver/bson"
)

// briefingIterator calls fn for every briefing of an office matching filter,
// ordered by submission time.
type briefingIterator func(ctx context.Context, officeID string, filter bson.M, fn func(b types.Briefing) error) error

type exportJob struct {
	exportPath    string
	overrideOld   bool
	listSeparator string
	getSchema     func(officeID string, key string) (*types.Schema, error)
	iterate       briefingIterator
}

// exportDay writes one file per format for the briefings of a task submitted
// on day. It returns the number of files written.
func (j *exportJob) exportDay(ctx context.Context, task BriefingExportTask, day time.Time) (int, error) {
	s, err := j.getSchema(task.OfficeID, task.SchemaKey)
	if err != nil {
		return 0, fmt.Errorf("schema %s: %w", task.SchemaKey, err)
	}

	filter := bson.M{
		"schemaKey": task.SchemaKey,
		"submittedAt": bson.M{
			"$gte": startOfDay(day).Unix(),
			"$lte": endOfDay(day).Unix(),
		},
	}

	written := 0
	for _, format := range task.ExportFormats {
		target := filepath.Join(j.exportPath, briefingFileName(day, task.OfficeID, task.SchemaKey, format))
		if fileExists(target) && !j.overrideOld {
			slog.Debug("export file already exists, skipping", slog.String("file", target))
			continue
		}

		count, err := j.writeFile(ctx, s, task.OfficeID, filter, format, target)
		if err != nil {
			return written, err
		}
		slog.Info("briefings exported", slog.String("officeID", task.OfficeID), slog.String("schemaKey", task.SchemaKey), slog.String("format", format), slog.Int("count", count), slog.String("file", target))
		written++
	}
	return written, nil
}

// writeFile exports into a temporary file that replaces target only when the
// export completed.
func (j *exportJob) writeFile(ctx context.Context, s *types.Schema, officeID string, filter bson.M, format string, target string) (int, error) {
	tmp, err := os.CreateTemp(j.exportPath, ".briefing-export-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	writer, err := exporter.NewBriefingWriter(s, tmp, format, j.listSeparator)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	err = j.iterate(ctx, officeID, filter, func(b types.Briefing) error {
		return writer.WriteBriefing(&b)
	})
	if err == nil {
		err = writer.Finish()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return 0, err
	}
	return writer.Count(), nil
}
