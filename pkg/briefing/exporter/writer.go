package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

const (
	FORMAT_WIDE = "wide"
	FORMAT_LONG = "long"
	FORMAT_JSON = "json"

	DEFAULT_LIST_SEPARATOR = "; "
)

var fixedColumns = []string{"briefingId", "schemaKey", "schemaVersion", "projectName", "clientName", "submittedBy", "submittedAt"}

func IsValidFormat(format string) bool {
	switch format {
	case FORMAT_WIDE, FORMAT_LONG, FORMAT_JSON:
		return true
	}
	return false
}

// BriefingWriter streams submitted briefings of one schema into a writer.
type BriefingWriter struct {
	schema        *types.Schema
	writer        io.Writer
	csvWriter     *csv.Writer
	format        string
	listSeparator string
	columns       []string
	counter       int
}

func NewBriefingWriter(
	schema *types.Schema,
	writer io.Writer,
	format string,
	listSeparator string,
) (*BriefingWriter, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is required")
	}
	if listSeparator == "" {
		listSeparator = DEFAULT_LIST_SEPARATOR
	}
	bw := &BriefingWriter{
		schema:        schema,
		writer:        writer,
		format:        format,
		listSeparator: listSeparator,
	}
	if err := bw.init(); err != nil {
		return nil, err
	}
	return bw, nil
}

func (bw *BriefingWriter) init() error {
	var err error
	switch bw.format {
	case FORMAT_WIDE:
		bw.csvWriter = csv.NewWriter(bw.writer)
		bw.columns = []string{}
		for _, s := range bw.schema.Sections {
			for _, q := range s.Questions {
				bw.columns = append(bw.columns, q.ID)
			}
		}
		header := append([]string{}, fixedColumns...)
		header = append(header, bw.columns...)
		err = bw.csvWriter.Write(header)
	case FORMAT_LONG:
		bw.csvWriter = csv.NewWriter(bw.writer)
		header := append([]string{}, fixedColumns...)
		header = append(header, "sectionId", "sectionName", "questionId", "questionText", "kind", "importance", "value")
		err = bw.csvWriter.Write(header)
	case FORMAT_JSON:
		_, err = bw.writer.Write([]byte("{ \"briefings\": ["))
	default:
		return fmt.Errorf("unsupported format: %s", bw.format)
	}
	return err
}

func fixedCells(b *types.Briefing) []string {
	submittedAt := ""
	if b.SubmittedAt > 0 {
		submittedAt = time.Unix(b.SubmittedAt, 0).UTC().Format(time.RFC3339)
	}
	id := ""
	if !b.ID.IsZero() {
		id = b.ID.Hex()
	}
	return []string{id, b.SchemaKey, b.SchemaVersion, b.ProjectName, b.ClientName, b.SubmittedBy, submittedAt}
}

// WriteBriefing writes the export records of a briefing. Answers that were not
// exported (hidden or empty) never show up.
func (bw *BriefingWriter) WriteBriefing(b *types.Briefing) error {
	if b == nil {
		return fmt.Errorf("briefing is nil")
	}
	if bw.writer == nil {
		return fmt.Errorf("writer not initialized")
	}

	switch bw.format {
	case FORMAT_WIDE:
		values := map[string]string{}
		for _, r := range b.Records {
			values[r.QuestionID] = r.Value.Join(bw.listSeparator)
		}
		row := fixedCells(b)
		for _, col := range bw.columns {
			row = append(row, values[col])
		}
		if err := bw.csvWriter.Write(row); err != nil {
			return err
		}
	case FORMAT_LONG:
		fixed := fixedCells(b)
		for _, r := range b.Records {
			row := append([]string{}, fixed...)
			row = append(row, r.SectionID, r.SectionName, r.QuestionID, r.QuestionText, r.Kind, string(r.Importance), r.Value.Join(bw.listSeparator))
			if err := bw.csvWriter.Write(row); err != nil {
				return err
			}
		}
	case FORMAT_JSON:
		obj := struct {
			*types.Briefing
			Answers types.Answers `json:"answers,omitempty"`
			Summary Summary       `json:"summary"`
		}{
			Briefing: b,
			Summary:  Summarize(b.Records),
		}
		rV, err := json.Marshal(obj)
		if err != nil {
			return err
		}
		if bw.counter > 0 {
			if _, err := bw.writer.Write([]byte(",")); err != nil {
				return err
			}
		}
		if _, err := bw.writer.Write(rV); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format: %s", bw.format)
	}

	bw.counter += 1
	return nil
}

func (bw *BriefingWriter) Count() int {
	return bw.counter
}

func (bw *BriefingWriter) Finish() error {
	switch bw.format {
	case FORMAT_WIDE, FORMAT_LONG:
		bw.csvWriter.Flush()
		return bw.csvWriter.Error()
	case FORMAT_JSON:
		_, err := bw.writer.Write([]byte("]}"))
		return err
	}
	return fmt.Errorf("unsupported format: %s", bw.format)
}
