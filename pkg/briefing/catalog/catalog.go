package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/arcflow/arcflow-backend/pkg/briefing/exporter"
	"github.com/arcflow/arcflow-backend/pkg/briefing/schema"
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

const KEY_INSTALACOES_COMPLETO = "instalacoes-completo"

//go:embed schemas/*.yaml
var schemaFiles embed.FS

// Files lists the embedded schema documents.
func Files() []string {
	entries, err := fs.ReadDir(schemaFiles, "schemas")
	if err != nil {
		return []string{}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func Source(name string) ([]byte, error) {
	return schemaFiles.ReadFile(path.Join("schemas", name))
}

// Register compiles every embedded schema into the registry.
func Register(registry *schema.Registry) error {
	for _, name := range Files() {
		data, err := Source(name)
		if err != nil {
			return err
		}
		if _, err := registry.RegisterSource(data, schema.FORMAT_YAML); err != nil {
			return fmt.Errorf("catalog %s: %w", name, err)
		}
	}
	return nil
}

// Load compiles a single embedded schema by key.
func Load(key string, checks *schema.CheckRegistry) (*types.Schema, error) {
	data, err := Source(key + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", schema.ErrSchemaNotFound, key)
	}
	return schema.LoadWithFormat(data, schema.FORMAT_YAML, checks)
}

// LegacyKeywords reproduces the keyword based importance of older briefing
// exports.
var LegacyKeywords = []exporter.KeywordRule{
	{
		Importance: types.IMPORTANCE_HIGH,
		Keywords:   []string{"prazo", "orçamento", "área", "tensão", "potência", "protocolo", "risco", "incêndio"},
	},
	{
		Importance: types.IMPORTANCE_LOW,
		Keywords:   []string{"observações", "comentários", "assistentes de voz"},
	},
}

// Classifier uses schema metadata and falls back to the legacy keywords.
func Classifier() exporter.Classifier {
	return exporter.ChainClassifier{
		exporter.ExplicitClassifier{},
		exporter.KeywordClassifier{Rules: LegacyKeywords},
	}
}
