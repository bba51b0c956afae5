package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/briefing/catalog"
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	"go.mongodb.org/mongo-driver/bson"
)

func testJob(t *testing.T, briefings []types.Briefing) (*exportJob, *[]bson.M) {
	t.Helper()
	s, err := catalog.Load(catalog.KEY_INSTALACOES_COMPLETO, catalog.NewCheckRegistry())
	if err != nil {
		t.Fatal(err)
	}
	filters := []bson.M{}
	job := &exportJob{
		exportPath:    t.TempDir(),
		listSeparator: "; ",
		getSchema: func(officeID string, key string) (*types.Schema, error) {
			if key != s.Key {
				return nil, errors.New("schema not found")
			}
			return s, nil
		},
		iterate: func(ctx context.Context, officeID string, filter bson.M, fn func(b types.Briefing) error) error {
			filters = append(filters, filter)
			for _, b := range briefings {
				if err := fn(b); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return job, &filters
}

func testBriefings() []types.Briefing {
	return []types.Briefing{
		{
			SchemaKey:   catalog.KEY_INSTALACOES_COMPLETO,
			ProjectName: "Residência Silva",
			SubmittedAt: time.Date(2026, time.February, 28, 10, 0, 0, 0, time.UTC).Unix(),
			Records: []types.ExportRecord{
				{SectionID: "projeto", SectionName: "Dados do Projeto", QuestionID: "1", QuestionText: "Nome do projeto", Value: types.TextValue("Residência Silva"), Kind: types.QUESTION_KIND_TEXT, Importance: types.IMPORTANCE_HIGH},
			},
		},
	}
}

func TestExportDay(t *testing.T) {
	day := time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)
	task := BriefingExportTask{OfficeID: "office1", SchemaKey: catalog.KEY_INSTALACOES_COMPLETO, ExportFormats: []string{"wide", "json"}}

	t.Run("writes one file per format", func(t *testing.T) {
		job, filters := testJob(t, testBriefings())
		written, err := job.exportDay(context.Background(), task, day)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if written != 2 {
			t.Errorf("expected 2 files, got %d", written)
		}

		content, err := os.ReadFile(filepath.Join(job.exportPath, briefingFileName(day, "office1", task.SchemaKey, "wide")))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(content), "Residência Silva") {
			t.Errorf("unexpected content: %s", content)
		}

		f := (*filters)[0]
		if f["schemaKey"] != task.SchemaKey {
			t.Errorf("unexpected filter: %v", f)
		}
		timeRange := f["submittedAt"].(bson.M)
		if timeRange["$gte"] != day.Unix() {
			t.Errorf("unexpected range start: %v", timeRange)
		}

		entries, _ := os.ReadDir(job.exportPath)
		if len(entries) != 2 {
			t.Errorf("temporary files left behind: %d entries", len(entries))
		}
	})

	t.Run("keeps existing files", func(t *testing.T) {
		job, _ := testJob(t, testBriefings())
		target := filepath.Join(job.exportPath, briefingFileName(day, "office1", task.SchemaKey, "wide"))
		if err := os.WriteFile(target, []byte("old"), 0o600); err != nil {
			t.Fatal(err)
		}
		written, err := job.exportDay(context.Background(), task, day)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if written != 1 {
			t.Errorf("expected only the json file, got %d", written)
		}
		content, _ := os.ReadFile(target)
		if string(content) != "old" {
			t.Error("existing file was overwritten")
		}

		job.overrideOld = true
		if written, _ := job.exportDay(context.Background(), task, day); written != 2 {
			t.Errorf("expected 2 files with override, got %d", written)
		}
		content, _ = os.ReadFile(target)
		if string(content) == "old" {
			t.Error("existing file should be replaced")
		}
	})

	t.Run("unknown schema", func(t *testing.T) {
		job, _ := testJob(t, nil)
		_, err := job.exportDay(context.Background(), BriefingExportTask{OfficeID: "office1", SchemaKey: "unknown", ExportFormats: []string{"wide"}}, day)
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("failed export leaves no file", func(t *testing.T) {
		job, _ := testJob(t, nil)
		job.iterate = func(ctx context.Context, officeID string, filter bson.M, fn func(b types.Briefing) error) error {
			return errors.New("cursor failed")
		}
		if _, err := job.exportDay(context.Background(), task, day); err == nil {
			t.Fatal("expected error")
		}
		entries, _ := os.ReadDir(job.exportPath)
		if len(entries) != 0 {
			t.Errorf("expected empty export path, got %d entries", len(entries))
		}
	})
}
