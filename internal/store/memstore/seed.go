package memstore

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/store"
)

// AddDocument registers a document.
func (s *Store) AddDocument(doc *domain.Document) error {
	if doc.ID == uuid.Nil {
		return fmt.Errorf("%w: document ID cannot be empty", store.ErrInvalidEntity)
	}
	cp := *doc
	return view{s: s}.write(func(d *dataset) error {
		if _, ok := d.documents[doc.ID]; ok {
			return fmt.Errorf("%w: document", store.ErrDuplicate)
		}
		d.documents[doc.ID] = &cp
		return nil
	})
}

// AddMacroTopic registers a macro topic of an existing document.
func (s *Store) AddMacroTopic(topic *domain.MacroTopic) error {
	cp := *topic
	return view{s: s}.write(func(d *dataset) error {
		if _, ok := d.documents[topic.DocumentID]; !ok {
			return store.ErrDocumentNotFound
		}
		d.macroTopics[topic.ID] = &cp
		return nil
	})
}

// AddMicroTopic registers a micro topic. Its document is taken from the macro
// topic when one is given.
func (s *Store) AddMicroTopic(topic *domain.MicroTopic) error {
	cp := *topic
	return view{s: s}.write(func(d *dataset) error {
		if topic.MacroTopicID != uuid.Nil {
			macro, ok := d.macroTopics[topic.MacroTopicID]
			if !ok {
				return fmt.Errorf("%w: macro topic", store.ErrNotFound)
			}
			cp.DocumentID = macro.DocumentID
		}
		if _, ok := d.documents[cp.DocumentID]; !ok {
			return store.ErrDocumentNotFound
		}
		d.microTopics[topic.ID] = &cp
		return nil
	})
}

// AddCard registers a validated card.
func (s *Store) AddCard(card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	cp := cloneCard(card)
	return view{s: s}.write(func(d *dataset) error {
		if _, ok := d.documents[card.DocumentID]; !ok {
			return store.ErrDocumentNotFound
		}
		if card.MicroTopicID != nil {
			if _, ok := d.microTopics[*card.MicroTopicID]; !ok {
				return store.ErrTopicNotFound
			}
		}
		if _, ok := d.cards[card.ID]; ok {
			return fmt.Errorf("%w: card", store.ErrDuplicate)
		}
		d.cards[card.ID] = cp
		d.cardOrder = append(d.cardOrder, card.ID)
		return nil
	})
}

// Seed is the JSON layout accepted by LoadSeed.
type Seed struct {
	Documents []SeedDocument `json:"documents"`
}

// SeedDocument is one document with its topic tree.
type SeedDocument struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	MacroTopics []SeedMacroTopic `json:"macro_topics"`
}

// SeedMacroTopic groups micro topics.
type SeedMacroTopic struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	MicroTopics []SeedMicroTopic `json:"micro_topics"`
}

// SeedMicroTopic holds the cards of one concept.
type SeedMicroTopic struct {
	ID    uuid.UUID     `json:"id"`
	Name  string        `json:"name"`
	Cards []domain.Card `json:"cards"`
}

// LoadSeed reads a Seed document and registers everything in it. Missing IDs
// are generated; card document and topic links are filled from the tree.
func (s *Store) LoadSeed(r io.Reader) error {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("failed to decode seed: %w", err)
	}

	now := time.Now().UTC()
	for _, doc := range seed.Documents {
		docID := orNew(doc.ID)
		if err := s.AddDocument(&domain.Document{ID: docID, Title: doc.Title, CreatedAt: now}); err != nil {
			return fmt.Errorf("document %q: %w", doc.Title, err)
		}
		for _, macro := range doc.MacroTopics {
			macroID := orNew(macro.ID)
			if err := s.AddMacroTopic(&domain.MacroTopic{ID: macroID, DocumentID: docID, Name: macro.Name}); err != nil {
				return fmt.Errorf("macro topic %q: %w", macro.Name, err)
			}
			for _, micro := range macro.MicroTopics {
				microID := orNew(micro.ID)
				topic := &domain.MicroTopic{ID: microID, MacroTopicID: macroID, DocumentID: docID, Name: micro.Name}
				if err := s.AddMicroTopic(topic); err != nil {
					return fmt.Errorf("micro topic %q: %w", micro.Name, err)
				}
				for i := range micro.Cards {
					card := micro.Cards[i]
					card.ID = orNew(card.ID)
					card.DocumentID = docID
					card.MicroTopicID = &microID
					if err := s.AddCard(&card); err != nil {
						return fmt.Errorf("card %q: %w", card.Front, err)
					}
				}
			}
		}
	}
	return nil
}

func orNew(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
