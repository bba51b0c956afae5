package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Run("register and get static schema", func(t *testing.T) {
		r, err := NewRegistry(testChecks(), 0)
		if err != nil {
			t.Fatal(err)
		}
		s, err := r.RegisterSource([]byte(validYAML), FORMAT_YAML)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := r.Get("office1", s.Key)
		if err != nil || got != s {
			t.Errorf("unexpected result: %v, %v", got, err)
		}
		if _, err := r.RegisterSource([]byte(validYAML), FORMAT_YAML); err == nil {
			t.Error("duplicate key should be rejected")
		}
		if _, err := r.Get("office1", "unknown"); !errors.Is(err, ErrSchemaNotFound) {
			t.Errorf("expected ErrSchemaNotFound, got %v", err)
		}
	})

	t.Run("office definitions take precedence and are cached", func(t *testing.T) {
		r, _ := NewRegistry(testChecks(), 4)
		if _, err := r.RegisterSource([]byte(validYAML), FORMAT_YAML); err != nil {
			t.Fatal(err)
		}
		lookups := 0
		r.UseDefinitions(func(officeID string, key string) (*Definition, error) {
			lookups++
			if officeID != "office2" || key != "json-schema" {
				return nil, ErrSchemaNotFound
			}
			return &Definition{Key: key, Version: "3", Source: []byte(validJSON)}, nil
		})

		first, err := r.Get("office2", "json-schema")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, _ := r.Get("office2", "json-schema")
		if first != second {
			t.Error("compiled definition should be served from cache")
		}
		if lookups != 2 {
			t.Errorf("expected a lookup per call, got %d", lookups)
		}

		static, err := r.Get("office2", "test-installations")
		if err != nil || static.Key != "test-installations" {
			t.Errorf("static fallback failed: %v", err)
		}
	})

	t.Run("lookup failure falls back to static schema", func(t *testing.T) {
		r, _ := NewRegistry(testChecks(), 4)
		_, _ = r.RegisterSource([]byte(validYAML), FORMAT_YAML)
		r.UseDefinitions(func(string, string) (*Definition, error) {
			return nil, errors.New("db down")
		})
		if _, err := r.Get("office1", "test-installations"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if _, err := r.Get("office1", "other"); err == nil {
			t.Error("expected lookup error")
		}
	})
}

func TestRegistryLoadDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.yaml":    validYAML,
		"b.json":    validJSON,
		"notes.txt": "ignored",
		"broken.yml": `
key: broken
sections:
  - {id: A, name: A, questions: [{id: 1, text: q, kind: number}]}
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	r, _ := NewRegistry(testChecks(), 0)
	count, err := r.LoadDir(dir)
	if count != 2 {
		t.Errorf("expected 2 schemas, got %d", count)
	}
	var loadErr *SchemaLoadError
	if !errors.As(err, &loadErr) || loadErr.SchemaKey != "broken" {
		t.Errorf("expected load error for broken schema, got %v", err)
	}
	keys := r.Keys()
	if len(keys) != 2 || keys[0] != "test-installations" || keys[1] != "json-schema" {
		t.Errorf("unexpected keys: %v", keys)
	}
}
