package exporter

import (
	"github.com/arcflow/arcflow-backend/pkg/briefing/engine"
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

// Export lists every visible and answered question of a briefing in section
// and question authoring order. Importance never changes the order.
func Export(schema *types.Schema, answers types.Answers, classifier Classifier) []types.ExportRecord {
	records := []types.ExportRecord{}
	if schema == nil {
		return records
	}

	for _, vs := range engine.ResolveVisible(schema, answers) {
		section, ok := schema.FindSection(vs.ID)
		if !ok {
			continue
		}
		for _, q := range vs.Questions {
			answer, ok := answers[q.ID]
			if !ok || answer.IsEmpty() {
				continue
			}
			records = append(records, types.ExportRecord{
				SectionID:    section.ID,
				SectionName:  section.Name,
				QuestionID:   q.ID,
				QuestionText: q.Text,
				Value:        answer.Clone(),
				Kind:         q.Kind,
				Importance:   ClassifyOrDefault(classifier, *section, q),
			})
		}
	}
	return records
}

type SectionCount struct {
	SectionID   string `json:"sectionId"`
	SectionName string `json:"sectionName"`
	Count       int    `json:"count"`
}

type Summary struct {
	Total        int                      `json:"total"`
	ByImportance map[types.Importance]int `json:"byImportance"`
	BySection    []SectionCount           `json:"bySection"`
}

// Summarize counts records per importance and per section, sections in the
// order they first appear.
func Summarize(records []types.ExportRecord) Summary {
	s := Summary{
		Total: len(records),
		ByImportance: map[types.Importance]int{
			types.IMPORTANCE_HIGH:   0,
			types.IMPORTANCE_MEDIUM: 0,
			types.IMPORTANCE_LOW:    0,
		},
		BySection: []SectionCount{},
	}
	index := map[string]int{}
	for _, r := range records {
		s.ByImportance[r.Importance]++
		i, ok := index[r.SectionID]
		if !ok {
			i = len(s.BySection)
			index[r.SectionID] = i
			s.BySection = append(s.BySection, SectionCount{SectionID: r.SectionID, SectionName: r.SectionName})
		}
		s.BySection[i].Count++
	}
	return s
}

// DefaultProjectName uses the first exported text answer, which is the
// project name question in the shipped schemas.
func DefaultProjectName(records []types.ExportRecord) string {
	for _, r := range records {
		if !r.Value.IsList && r.Kind == types.QUESTION_KIND_TEXT {
			return r.Value.Text
		}
	}
	return ""
}
