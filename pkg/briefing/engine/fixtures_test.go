package engine

import (
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

const (
	optColdWater  = "Água fria (abastecimento e distribuição)"
	optHotWater   = "Água quente (aquecimento e distribuição)"
	optBasicPower = "Força e iluminação básica"
	optAutomation = "Automação residencial/predial"
)

func testSchema() *types.Schema {
	return &types.Schema{
		Key:  "test-installations",
		Name: "Test installations",
		Sections: []types.Section{
			{
				ID:   "projeto",
				Name: "Dados do Projeto",
				Questions: []types.Question{
					{ID: "1", Text: "Nome do projeto", Kind: types.QUESTION_KIND_TEXT, Required: true},
					{ID: "2", Text: "Observações", Kind: types.QUESTION_KIND_TEXTAREA},
				},
			},
			{
				ID:   "sistemas",
				Name: "Sistemas",
				Questions: []types.Question{
					{ID: "26", Text: "Sistemas hidráulicos", Kind: types.QUESTION_KIND_MULTI_CHOICE, Options: []string{optColdWater, optHotWater}},
					{
						ID: "27", Text: "Tipo de aquecimento", Kind: types.QUESTION_KIND_SINGLE_CHOICE,
						Options:   []string{"Solar", "Gás", "Elétrico"},
						Condition: &types.Condition{QuestionID: "26", Values: []string{optHotWater}, Operator: types.OPERATOR_CONTAINS},
					},
					{ID: "28", Text: "Sistemas elétricos", Kind: types.QUESTION_KIND_MULTI_CHOICE, Options: []string{optBasicPower, optAutomation}},
				},
			},
			{
				ID:        "automacao",
				Name:      "Automação Predial",
				Condition: &types.Condition{QuestionID: "28", Values: []string{optAutomation}, Operator: types.OPERATOR_CONTAINS},
				Questions: []types.Question{
					{ID: "46", Text: "Protocolo de automação", Kind: types.QUESTION_KIND_SINGLE_CHOICE, Required: true, Options: []string{"KNX", "Zigbee", "Outro"}},
					{
						ID: "47", Text: "Qual protocolo?", Kind: types.QUESTION_KIND_TEXT, Required: true,
						Condition: &types.Condition{QuestionID: "46", Values: []string{"Outro"}, Operator: types.OPERATOR_EQUALS},
					},
				},
			},
		},
	}
}

func sectionIDs(visible []types.VisibleSection) []string {
	ids := []string{}
	for _, s := range visible {
		ids = append(ids, s.ID)
	}
	return ids
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
