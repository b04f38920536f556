package memstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/store"
)

// CardStore implements store.CardStore.
type CardStore struct{ v view }

var _ store.CardStore = (*CardStore)(nil)

// GetByID implements store.CardStore.
func (s *CardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	var card *domain.Card
	s.v.read(func(d *dataset) {
		card = cloneCard(d.cards[id])
	})
	if card == nil {
		return nil, store.ErrCardNotFound
	}
	return card, nil
}

// ListByDocument implements store.CardStore.
func (s *CardStore) ListByDocument(_ context.Context, documentID uuid.UUID) ([]*domain.Card, error) {
	return s.filter(func(c *domain.Card) bool { return c.DocumentID == documentID }), nil
}

// ListByMicroTopic implements store.CardStore.
func (s *CardStore) ListByMicroTopic(_ context.Context, microTopicID uuid.UUID) ([]*domain.Card, error) {
	return s.filter(func(c *domain.Card) bool {
		return c.MicroTopicID != nil && *c.MicroTopicID == microTopicID
	}), nil
}

func (s *CardStore) filter(keep func(c *domain.Card) bool) []*domain.Card {
	out := []*domain.Card{}
	s.v.read(func(d *dataset) {
		for _, id := range d.cardOrder {
			if c := d.cards[id]; keep(c) {
				out = append(out, cloneCard(c))
			}
		}
	})
	return out
}

// WithTx implements store.CardStore.
func (s *CardStore) WithTx(_ *sql.Tx) store.CardStore { return s }

// TopicStore implements store.TopicStore.
type TopicStore struct{ v view }

var _ store.TopicStore = (*TopicStore)(nil)

// GetDocument implements store.TopicStore.
func (s *TopicStore) GetDocument(_ context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc *domain.Document
	s.v.read(func(d *dataset) {
		if found, ok := d.documents[id]; ok {
			cp := *found
			doc = &cp
		}
	})
	if doc == nil {
		return nil, store.ErrDocumentNotFound
	}
	return doc, nil
}

// GetMicroTopic implements store.TopicStore.
func (s *TopicStore) GetMicroTopic(_ context.Context, id uuid.UUID) (*domain.MicroTopic, error) {
	var topic *domain.MicroTopic
	s.v.read(func(d *dataset) {
		if found, ok := d.microTopics[id]; ok {
			cp := *found
			topic = &cp
		}
	})
	if topic == nil {
		return nil, store.ErrTopicNotFound
	}
	return topic, nil
}

// ListMicroTopicsByDocument implements store.TopicStore. Topics are ordered by name.
func (s *TopicStore) ListMicroTopicsByDocument(
	_ context.Context,
	documentID uuid.UUID,
) ([]*domain.MicroTopic, error) {
	out := []*domain.MicroTopic{}
	s.v.read(func(d *dataset) {
		for _, t := range d.microTopics {
			if t.DocumentID == documentID {
				cp := *t
				out = append(out, &cp)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// WithTx implements store.TopicStore.
func (s *TopicStore) WithTx(_ *sql.Tx) store.TopicStore { return s }

// CardStateStore implements store.CardStateStore.
type CardStateStore struct{ v view }

var _ store.CardStateStore = (*CardStateStore)(nil)

// Get implements store.CardStateStore.
func (s *CardStateStore) Get(_ context.Context, userID, cardID uuid.UUID) (*domain.CardMemoryState, error) {
	var state *domain.CardMemoryState
	s.v.read(func(d *dataset) {
		state = d.cardStates[stateKey{userID, cardID}].Clone()
	})
	if state == nil {
		return nil, store.ErrCardStateNotFound
	}
	return state, nil
}

// GetForUpdate implements store.CardStateStore. Units of work are already
// serialized, so it is the same as Get.
func (s *CardStateStore) GetForUpdate(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.CardMemoryState, error) {
	return s.Get(ctx, userID, cardID)
}

// ListForCards implements store.CardStateStore.
func (s *CardStateStore) ListForCards(
	_ context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) (map[uuid.UUID]*domain.CardMemoryState, error) {
	out := make(map[uuid.UUID]*domain.CardMemoryState, len(cardIDs))
	s.v.read(func(d *dataset) {
		for _, id := range cardIDs {
			if st, ok := d.cardStates[stateKey{userID, id}]; ok {
				out[id] = st.Clone()
			}
		}
	})
	return out, nil
}

// Create implements store.CardStateStore.
func (s *CardStateStore) Create(_ context.Context, state *domain.CardMemoryState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	return s.v.write(func(d *dataset) error {
		if _, ok := d.cards[state.CardID]; !ok {
			return store.ErrCardNotFound
		}
		key := stateKey{state.UserID, state.CardID}
		if _, ok := d.cardStates[key]; ok {
			return store.ErrCardStateExists
		}
		d.cardStates[key] = state.Clone()
		return nil
	})
}

// Update implements store.CardStateStore.
func (s *CardStateStore) Update(_ context.Context, state *domain.CardMemoryState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	return s.v.write(func(d *dataset) error {
		key := stateKey{state.UserID, state.CardID}
		if _, ok := d.cardStates[key]; !ok {
			return store.ErrCardStateNotFound
		}
		d.cardStates[key] = state.Clone()
		return nil
	})
}

// WithTx implements store.CardStateStore.
func (s *CardStateStore) WithTx(_ *sql.Tx) store.CardStateStore { return s }

// ReviewStore implements store.ReviewStore.
type ReviewStore struct{ v view }

var _ store.ReviewStore = (*ReviewStore)(nil)

// Create implements store.ReviewStore.
func (s *ReviewStore) Create(_ context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	cp := *review
	return s.v.write(func(d *dataset) error {
		if _, ok := d.cards[review.CardID]; !ok {
			return store.ErrCardNotFound
		}
		d.reviews = append(d.reviews, &cp)
		return nil
	})
}

// RecentScoresForTopic implements store.ReviewStore.
func (s *ReviewStore) RecentScoresForTopic(
	_ context.Context,
	userID, microTopicID uuid.UUID,
	limit int,
) ([]int, error) {
	reviews := s.topicReviews(userID, microTopicID)
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Timestamp.After(reviews[j].Timestamp)
	})
	if limit > 0 && len(reviews) > limit {
		reviews = reviews[:limit]
	}
	return scores(reviews), nil
}

// ScoresForTopic implements store.ReviewStore.
func (s *ReviewStore) ScoresForTopic(_ context.Context, userID, microTopicID uuid.UUID) ([]int, error) {
	return scores(s.topicReviews(userID, microTopicID)), nil
}

// topicReviews returns the user's reviews of cards in the topic, most
// recently inserted first.
func (s *ReviewStore) topicReviews(userID, microTopicID uuid.UUID) []*domain.Review {
	var out []*domain.Review
	s.v.read(func(d *dataset) {
		for i := len(d.reviews) - 1; i >= 0; i-- {
			r := d.reviews[i]
			if r.UserID != userID {
				continue
			}
			card := d.cards[r.CardID]
			if card == nil || card.MicroTopicID == nil || *card.MicroTopicID != microTopicID {
				continue
			}
			out = append(out, r)
		}
	})
	return out
}

func scores(reviews []*domain.Review) []int {
	out := make([]int, len(reviews))
	for i, r := range reviews {
		out[i] = r.Score
	}
	return out
}

// WithTx implements store.ReviewStore.
func (s *ReviewStore) WithTx(_ *sql.Tx) store.ReviewStore { return s }

// TopicStateStore implements store.TopicStateStore.
type TopicStateStore struct{ v view }

var _ store.TopicStateStore = (*TopicStateStore)(nil)

// Get implements store.TopicStateStore.
func (s *TopicStateStore) Get(
	_ context.Context,
	userID, microTopicID uuid.UUID,
) (*domain.TopicMemoryState, error) {
	var state *domain.TopicMemoryState
	s.v.read(func(d *dataset) {
		state = cloneTopicState(d.topicStates[stateKey{userID, microTopicID}])
	})
	if state == nil {
		return nil, store.ErrTopicStateNotFound
	}
	return state, nil
}

// ListForDocument implements store.TopicStateStore.
func (s *TopicStateStore) ListForDocument(
	_ context.Context,
	userID, documentID uuid.UUID,
) ([]*domain.TopicMemoryState, error) {
	out := []*domain.TopicMemoryState{}
	s.v.read(func(d *dataset) {
		for key, st := range d.topicStates {
			if key.userID != userID {
				continue
			}
			if t, ok := d.microTopics[key.itemID]; ok && t.DocumentID == documentID {
				out = append(out, cloneTopicState(st))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].MicroTopicID.String() < out[j].MicroTopicID.String()
	})
	return out, nil
}

// Upsert implements store.TopicStateStore.
func (s *TopicStateStore) Upsert(_ context.Context, state *domain.TopicMemoryState) error {
	if state.UserID == uuid.Nil || state.MicroTopicID == uuid.Nil {
		return fmt.Errorf("%w: topic state requires user and topic", store.ErrInvalidEntity)
	}
	return s.v.write(func(d *dataset) error {
		if _, ok := d.microTopics[state.MicroTopicID]; !ok {
			return store.ErrTopicNotFound
		}
		d.topicStates[stateKey{state.UserID, state.MicroTopicID}] = cloneTopicState(state)
		return nil
	})
}

// WithTx implements store.TopicStateStore.
func (s *TopicStateStore) WithTx(_ *sql.Tx) store.TopicStateStore { return s }
