package drafts

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore keeps drafts in process memory. Used by tests and by the CLI.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: map[string][]byte{}}
}

func memoryKey(officeID string, id string) string {
	return officeID + ":" + id
}

// Save stores a serialized copy, so later changes to draft are not visible
// until saved again.
func (s *MemoryStore) Save(_ context.Context, draft *Draft) error {
	draft.UpdatedAt = time.Now().Unix()
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[memoryKey(draft.OfficeID, draft.ID)] = data
	return nil
}

func (s *MemoryStore) Load(_ context.Context, officeID string, id string) (*Draft, error) {
	s.mu.Lock()
	data, ok := s.drafts[memoryKey(officeID, id)]
	s.mu.Unlock()
	if !ok {
		return nil, ErrDraftNotFound
	}
	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *MemoryStore) Delete(_ context.Context, officeID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, memoryKey(officeID, id))
	return nil
}
