package engine

import (
	"errors"

	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

var ErrStoreFrozen = errors.New("answers are frozen")

// ChangeEvent describes one mutation of an AnswerStore.
type ChangeEvent struct {
	QuestionID  string
	Previous    types.AnswerValue
	HadPrevious bool
	Current     types.AnswerValue
	Cleared     bool
}

type ChangeListener func(ev ChangeEvent)

type listenerEntry struct {
	fn     ChangeListener
	active bool
}

// AnswerStore is the mutable answer map of one interview. It is owned by a
// single session and is not safe for concurrent use.
type AnswerStore struct {
	answers        types.Answers
	listeners      []*listenerEntry
	frozen         bool
}

func NewAnswerStore(initial types.Answers) *AnswerStore {
	answers := types.Answers{}
	if initial != nil {
		answers = initial.Clone()
	}
	return &AnswerStore{answers: answers}
}

func (s *AnswerStore) Get(questionID string) (types.AnswerValue, bool) {
	v, ok := s.answers[questionID]
	if !ok {
		return v, false
	}
	return v.Clone(), true
}

// Set records an answer. Listeners are only notified when the value changes.
func (s *AnswerStore) Set(questionID string, value types.AnswerValue) error {
	return s.apply(AnswerUpdate{QuestionID: questionID, Value: value})
}

// Clear removes an answer. Clearing a missing answer is a no-op.
func (s *AnswerStore) Clear(questionID string) error {
	return s.apply(AnswerUpdate{QuestionID: questionID, Clear: true})
}

func (s *AnswerStore) apply(update AnswerUpdate) error {
	if s.frozen {
		return ErrStoreFrozen
	}

	previous, had := s.answers[update.QuestionID]
	if update.Clear {
		if !had {
			return nil
		}
		delete(s.answers, update.QuestionID)
		s.notify(ChangeEvent{QuestionID: update.QuestionID, Previous: previous, HadPrevious: true, Cleared: true})
		return nil
	}

	if had && previous.Equal(update.Value) {
		return nil
	}
	s.answers[update.QuestionID] = update.Value.Clone()
	s.notify(ChangeEvent{
		QuestionID:  update.QuestionID,
		Previous:    previous,
		HadPrevious: had,
		Current:     update.Value.Clone(),
	})
	return nil
}

// notify calls the listeners registered when the change happened. A listener
// removed by an earlier one during the same notification is skipped.
func (s *AnswerStore) notify(ev ChangeEvent) {
	for _, l := range s.listeners {
		if l.active {
			l.fn(ev)
		}
	}
}

// Subscribe registers a listener and returns a function removing it again.
// Unsubscribing is safe from inside a listener.
func (s *AnswerStore) Subscribe(fn ChangeListener) (unsubscribe func()) {
	entry := &listenerEntry{fn: fn, active: true}
	s.listeners = append(s.listeners, entry)
	return func() {
		if !entry.active {
			return
		}
		entry.active = false
		remaining := make([]*listenerEntry, 0, len(s.listeners))
		for _, l := range s.listeners {
			if l != entry {
				remaining = append(remaining, l)
			}
		}
		s.listeners = remaining
	}
}

// Snapshot returns a copy of the current answers.
func (s *AnswerStore) Snapshot() types.Answers {
	return s.answers.Clone()
}

func (s *AnswerStore) Len() int {
	return len(s.answers)
}

func (s *AnswerStore) Freeze() {
	s.frozen = true
}

func (s *AnswerStore) Frozen() bool {
	return s.frozen
}

// AnswerUpdate is a single edit of an answer map.
type AnswerUpdate struct {
	QuestionID string            `json:"questionId"`
	Value      types.AnswerValue `json:"value"`
	Clear      bool              `json:"clear,omitempty"`
}

// ApplyUpdate returns a new answer map with the update applied. The input map
// is left untouched.
func ApplyUpdate(answers types.Answers, update AnswerUpdate) types.Answers {
	out := answers.Clone()
	if update.Clear {
		delete(out, update.QuestionID)
		return out
	}
	out[update.QuestionID] = update.Value.Clone()
	return out
}
