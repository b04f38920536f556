package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/store"
)

type stateKey struct {
	userID uuid.UUID
	itemID uuid.UUID
}

type dataset struct {
	documents   map[uuid.UUID]*domain.Document
	macroTopics map[uuid.UUID]*domain.MacroTopic
	microTopics map[uuid.UUID]*domain.MicroTopic
	cards       map[uuid.UUID]*domain.Card
	cardOrder   []uuid.UUID
	cardStates  map[stateKey]*domain.CardMemoryState
	reviews     []*domain.Review
	topicStates map[stateKey]*domain.TopicMemoryState
}

func newDataset() *dataset {
	return &dataset{
		documents:   make(map[uuid.UUID]*domain.Document),
		macroTopics: make(map[uuid.UUID]*domain.MacroTopic),
		microTopics: make(map[uuid.UUID]*domain.MicroTopic),
		cards:       make(map[uuid.UUID]*domain.Card),
		cardStates:  make(map[stateKey]*domain.CardMemoryState),
		topicStates: make(map[stateKey]*domain.TopicMemoryState),
	}
}

// clone copies the mutable parts of the dataset. Authored content (documents,
// topics, cards) is never modified through the store interfaces, so those
// maps are copied shallowly.
func (d *dataset) clone() *dataset {
	c := &dataset{
		documents:   make(map[uuid.UUID]*domain.Document, len(d.documents)),
		macroTopics: make(map[uuid.UUID]*domain.MacroTopic, len(d.macroTopics)),
		microTopics: make(map[uuid.UUID]*domain.MicroTopic, len(d.microTopics)),
		cards:       make(map[uuid.UUID]*domain.Card, len(d.cards)),
		cardOrder:   append([]uuid.UUID(nil), d.cardOrder...),
		cardStates:  make(map[stateKey]*domain.CardMemoryState, len(d.cardStates)),
		reviews:     append([]*domain.Review(nil), d.reviews...),
		topicStates: make(map[stateKey]*domain.TopicMemoryState, len(d.topicStates)),
	}
	for k, v := range d.documents {
		c.documents[k] = v
	}
	for k, v := range d.macroTopics {
		c.macroTopics[k] = v
	}
	for k, v := range d.microTopics {
		c.microTopics[k] = v
	}
	for k, v := range d.cards {
		c.cards[k] = v
	}
	for k, v := range d.cardStates {
		c.cardStates[k] = v.Clone()
	}
	for k, v := range d.topicStates {
		c.topicStates[k] = cloneTopicState(v)
	}
	return c
}

// Store holds all data in memory.
type Store struct {
	// txMu serializes every write, transactional or not.
	txMu sync.Mutex
	mu   sync.RWMutex
	data *dataset
}

var _ store.Transactor = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{data: newDataset()}
}

// view resolves which dataset an operation works on. Outside a unit of work
// it reads and writes the shared dataset under the store's locks; inside it
// works on the unit's private copy without locking.
type view struct {
	s  *Store
	tx *dataset
}

func (v view) read(fn func(d *dataset)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	fn(v.s.data)
}

func (v view) write(fn func(d *dataset) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.txMu.Lock()
	defer v.s.txMu.Unlock()
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.data)
}

// Stores returns the store set operating on committed data.
func (s *Store) Stores() store.Stores {
	return s.storesFor(view{s: s})
}

func (s *Store) storesFor(v view) store.Stores {
	return store.Stores{
		Cards:       &CardStore{v: v},
		Topics:      &TopicStore{v: v},
		CardStates:  &CardStateStore{v: v},
		Reviews:     &ReviewStore{v: v},
		TopicStates: &TopicStateStore{v: v},
	}
}

// Transact implements store.Transactor. fn must only use the stores it is
// given; calling the store's own writers from inside fn deadlocks.
func (s *Store) Transact(ctx context.Context, fn store.TransactFn) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, s.storesFor(view{s: s, tx: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

func cloneCard(c *domain.Card) *domain.Card {
	if c == nil {
		return nil
	}
	cp := *c
	if c.MicroTopicID != nil {
		id := *c.MicroTopicID
		cp.MicroTopicID = &id
	}
	if c.CorrectOptionIndex != nil {
		idx := *c.CorrectOptionIndex
		cp.CorrectOptionIndex = &idx
	}
	return &cp
}

func cloneTopicState(s *domain.TopicMemoryState) *domain.TopicMemoryState {
	if s == nil {
		return nil
	}
	cp := *s
	if s.LastPracticeAt != nil {
		t := *s.LastPracticeAt
		cp.LastPracticeAt = &t
	}
	return &cp
}
