package schema

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DEFAULT_CACHE_SIZE = 256

var ErrSchemaNotFound = errors.New("schema not found")

// Definition is the stored source of a schema published by an office.
type Definition struct {
	Key     string
	Version string
	Format  string
	Source  []byte
}

// DefinitionLookup returns the latest published definition of a schema key for
// an office. It must return ErrSchemaNotFound when none exists.
type DefinitionLookup func(officeID string, key string) (*Definition, error)

// Registry resolves schema keys to compiled schemas. Office definitions take
// precedence over the statically registered ones.
type Registry struct {
	mu     sync.RWMutex
	static map[string]*types.Schema
	order  []string
	checks *CheckRegistry
	lookup DefinitionLookup
	cache  *lru.Cache[string, *types.Schema]
}

func NewRegistry(checks *CheckRegistry, cacheSize int) (*Registry, error) {
	if cacheSize <= 0 {
		cacheSize = DEFAULT_CACHE_SIZE
	}
	cache, err := lru.New[string, *types.Schema](cacheSize)
	if err != nil {
		return nil, err
	}
	if checks == nil {
		checks = NewCheckRegistry()
	}
	return &Registry{
		static: map[string]*types.Schema{},
		order:  []string{},
		checks: checks,
		cache:  cache,
	}, nil
}

func (r *Registry) Checks() *CheckRegistry {
	return r.checks
}

func (r *Registry) UseDefinitions(lookup DefinitionLookup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookup = lookup
}

func (r *Registry) Register(s *types.Schema) error {
	if s == nil || s.Key == "" {
		return errors.New("schema without key")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.static[s.Key]; exists {
		return fmt.Errorf("schema %s already registered", s.Key)
	}
	r.static[s.Key] = s
	r.order = append(r.order, s.Key)
	return nil
}

// RegisterSource compiles and registers a schema document.
func (r *Registry) RegisterSource(data []byte, format string) (*types.Schema, error) {
	s, err := LoadWithFormat(data, format, r.checks)
	if err != nil {
		return nil, err
	}
	if err := r.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadDir registers every .yaml, .yml and .json file of a directory. Files are
// processed in name order and all failures are reported together.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := FormatFromFilename(e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	count := 0
	var errs []error
	for _, name := range names {
		path := filepath.Join(dir, name)
		s, err := LoadFile(path, r.checks)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := r.Register(s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		slog.Info("schema registered", slog.String("key", s.Key), slog.String("version", s.Version), slog.String("file", path))
		count++
	}
	return count, errors.Join(errs...)
}

func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

func (r *Registry) Static(key string) (*types.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.static[key]
	return s, ok
}

// Get returns the schema for an office: its latest published definition if
// there is one, otherwise the static schema with that key.
func (r *Registry) Get(officeID string, key string) (*types.Schema, error) {
	r.mu.RLock()
	lookup := r.lookup
	static, hasStatic := r.static[key]
	r.mu.RUnlock()

	if lookup != nil {
		def, err := lookup(officeID, key)
		switch {
		case err == nil:
			return r.compileDefinition(officeID, def)
		case errors.Is(err, ErrSchemaNotFound):
		default:
			if !hasStatic {
				return nil, err
			}
			slog.Error("failed to look up schema definition, using static schema", slog.String("officeID", officeID), slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	if !hasStatic {
		return nil, ErrSchemaNotFound
	}
	return static, nil
}

func cacheKey(officeID string, key string, version string) string {
	return officeID + "/" + key + "@" + version
}

func (r *Registry) compileDefinition(officeID string, def *Definition) (*types.Schema, error) {
	ck := cacheKey(officeID, def.Key, def.Version)
	if s, ok := r.cache.Get(ck); ok {
		return s, nil
	}
	format := def.Format
	if format == "" {
		format = DetectFormat(def.Source)
	}
	s, err := LoadWithFormat(def.Source, format, r.checks)
	if err != nil {
		return nil, err
	}
	if s.Version == "" {
		s.Version = def.Version
	}
	r.cache.Add(ck, s)
	return s, nil
}
