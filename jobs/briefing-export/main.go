package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	"go.mongodb.org/mongo-driver/bson"

	briefingsDB "github.com/arcflow/arcflow-backend/pkg/db/briefings"
)

func main() {
	setup()

	slog.Info("Starting briefing export job")
	start := time.Now()
	ctx := context.Background()

	job := &exportJob{
		exportPath:    conf.ExportPath,
		overrideOld:   conf.BriefingExports.OverrideOld,
		listSeparator: conf.BriefingExports.ListSeparator,
		getSchema:     schemaRegistry.Get,
		iterate: func(ctx context.Context, officeID string, filter bson.M, fn func(b types.Briefing) error) error {
			return briefingDBService.FindAndExecuteOnBriefings(
				ctx,
				officeID,
				filter,
				bson.M{"submittedAt": 1},
				true,
				func(_ *briefingsDB.BriefingDBService, b types.Briefing, _ string, _ ...interface{}) error {
					return fn(b)
				},
			)
		},
	}

	days := exportDays(start, conf.BriefingExports.LookbackDays)
	for _, task := range conf.BriefingExports.ExportTasks {
		for _, day := range days {
			if _, err := job.exportDay(ctx, task, day); err != nil {
				slog.Error("Error exporting briefings", slog.String("officeID", task.OfficeID), slog.String("schemaKey", task.SchemaKey), slog.String("day", day.Format("2006-01-02")), slog.String("error", err.Error()))
			}
		}
	}

	if err := briefingDBService.DBClient.Disconnect(ctx); err != nil {
		slog.Error("Error closing DB connection", slog.String("error", err.Error()))
	}
	slog.Info("Briefing export job completed", slog.String("duration", time.Since(start).String()))
}
