package apihandlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/briefing/catalog"
	"github.com/arcflow/arcflow-backend/pkg/briefing/drafts"
	"github.com/arcflow/arcflow-backend/pkg/briefing/schema"
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	"github.com/arcflow/arcflow-backend/pkg/db"
	briefingsDB "github.com/arcflow/arcflow-backend/pkg/db/briefings"
	jwthandling "github.com/arcflow/arcflow-backend/pkg/jwt-handling"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testSignKey  = "test-sign-key"
	testOfficeID = "office1"
	testAPIKey   = "service-key"
)

type storedDefinition struct {
	officeID string
	def      briefingsDB.SchemaDefinition
}

type fakeBriefingDB struct {
	mu          sync.Mutex
	briefings   map[string][]types.Briefing
	definitions []storedDefinition
}

func newFakeBriefingDB() *fakeBriefingDB {
	return &fakeBriefingDB{briefings: map[string][]types.Briefing{}}
}

func (f *fakeBriefingDB) SaveBriefing(officeID string, briefing types.Briefing) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	briefing.ID = primitive.NewObjectID()
	f.briefings[officeID] = append(f.briefings[officeID], briefing)
	return briefing.ID.Hex(), nil
}

func (f *fakeBriefingDB) GetBriefingByID(officeID string, briefingID string) (types.Briefing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.briefings[officeID] {
		if b.ID.Hex() == briefingID {
			return b, nil
		}
	}
	return types.Briefing{}, mongo.ErrNoDocuments
}

func (f *fakeBriefingDB) DeleteBriefingByID(officeID string, briefingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.briefings[officeID] {
		if b.ID.Hex() == briefingID {
			f.briefings[officeID] = append(f.briefings[officeID][:i], f.briefings[officeID][i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeBriefingDB) GetBriefings(officeID string, filter bson.M, sort bson.M, page int64, limit int64) ([]types.Briefing, *db.PaginationInfos, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.briefings[officeID]
	info := db.PrepPaginationInfos(int64(len(all)), page, limit)
	start := (info.CurrentPage - 1) * info.PageSize
	if start > int64(len(all)) {
		start = int64(len(all))
	}
	end := start + info.PageSize
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return append([]types.Briefing{}, all[start:end]...), info, nil
}

func (f *fakeBriefingDB) SaveSchemaDefinition(officeID string, def briefingsDB.SchemaDefinition) (briefingsDB.SchemaDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.definitions {
		if d.officeID == officeID && d.def.Key == def.Key && d.def.Version == def.Version {
			return def, briefingsDB.ErrDuplicateVersion
		}
	}
	def.ID = primitive.NewObjectID()
	def.PublishedAt = time.Now().Unix()
	f.definitions = append(f.definitions, storedDefinition{officeID: officeID, def: def})
	return def, nil
}

func (f *fakeBriefingDB) GetSchemaKeys(officeID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := []string{}
	seen := map[string]bool{}
	for _, d := range f.definitions {
		if d.officeID == officeID && !seen[d.def.Key] {
			seen[d.def.Key] = true
			keys = append(keys, d.def.Key)
		}
	}
	return keys, nil
}

func (f *fakeBriefingDB) GetSchemaVersions(officeID string, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	versions := []string{}
	for _, d := range f.definitions {
		if d.officeID == officeID && d.def.Key == key {
			versions = append(versions, d.def.Version)
		}
	}
	return versions, nil
}

func (f *fakeBriefingDB) lookup(officeID string, key string) (*schema.Definition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.definitions) - 1; i >= 0; i-- {
		d := f.definitions[i]
		if d.officeID == officeID && d.def.Key == key {
			return &schema.Definition{Key: d.def.Key, Version: d.def.Version, Format: d.def.Format, Source: []byte(d.def.Source)}, nil
		}
	}
	return nil, schema.ErrSchemaNotFound
}

type fakeNotifier struct {
	mu        sync.Mutex
	submitted []types.Briefing
}

func (n *fakeNotifier) BriefingSubmitted(officeID string, schemaName string, b types.Briefing) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, b)
	return nil
}

type testEnv struct {
	router   *gin.Engine
	db       *fakeBriefingDB
	drafts   *drafts.MemoryStore
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry, err := schema.NewRegistry(catalog.NewCheckRegistry(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := catalog.Register(registry); err != nil {
		t.Fatal(err)
	}
	env := &testEnv{
		db:       newFakeBriefingDB(),
		drafts:   drafts.NewMemoryStore(),
		notifier: &fakeNotifier{},
	}
	registry.UseDefinitions(env.db.lookup)

	h := NewHTTPHandler(
		testSignKey,
		env.db,
		registry,
		env.drafts,
		catalog.Classifier(),
		env.notifier,
		[]string{testOfficeID},
		[]string{testAPIKey},
		"",
		0,
	)
	env.router = gin.New()
	env.router.GET("/", HealthCheckHandle)
	v1 := env.router.Group("/v1")
	h.AddSchemaAPI(v1)
	h.AddSessionAPI(v1)
	h.AddBriefingAPI(v1)
	return env
}

func testToken(t *testing.T, roles ...string) string {
	t.Helper()
	return testUserToken(t, "user1", roles...)
}

func testUserToken(t *testing.T, userID string, roles ...string) string {
	t.Helper()
	token, err := jwthandling.GenerateNewOfficeUserToken(time.Hour, userID, testOfficeID, roles, nil, testSignKey)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func (env *testEnv) request(t *testing.T, method string, path string, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}
