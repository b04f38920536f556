package selection

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/platform/logger"
	"github.com/phrazzld/scry-adaptive/internal/store"
)

// Stage names the candidate pool a selection came from.
type Stage string

const (
	StageDueFailed Stage = "due_failed"
	StageDue       Stage = "due"
	StageNew       Stage = "new"
	StageUpcoming  Stage = "upcoming"
	StageFallback  Stage = "fallback"
)

// TopicInitializer creates a user's topic state when none exists yet.
type TopicInitializer interface {
	Recompute(ctx context.Context, userID, topicID uuid.UUID, now time.Time) (*domain.TopicMemoryState, error)
}

// Selection is the outcome of a successful Select.
type Selection struct {
	Card         *domain.Card
	MicroTopicID uuid.UUID
	Stage        Stage
	// Struggling is true when the topic was drawn from the struggling pool.
	Struggling bool
}

// Selector chooses the next card for a user. It is safe for concurrent use.
type Selector struct {
	cards       store.CardStore
	topicStates store.TopicStateStore
	cardStates  store.CardStateStore
	init        TopicInitializer
	cfg         Config
	logger      *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a Selector. A nil rng is seeded from the clock.
func NewSelector(
	stores store.Stores,
	init TopicInitializer,
	cfg Config,
	rng *rand.Rand,
	log *slog.Logger,
) *Selector {
	if stores.Cards == nil || stores.TopicStates == nil || stores.CardStates == nil {
		panic("selector stores cannot be nil")
	}
	if init == nil {
		panic("topic initializer cannot be nil")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		log = slog.Default()
	}
	return &Selector{
		cards:       stores.Cards,
		topicStates: stores.TopicStates,
		cardStates:  stores.CardStates,
		init:        init,
		cfg:         cfg.withDefaults(),
		rng:         rng,
		logger:      log.With(slog.String("component", "card_selector")),
	}
}

// Select returns the next card for the user in the document, or nil when the
// document has nothing to study.
func (s *Selector) Select(
	ctx context.Context,
	userID, documentID uuid.UUID,
	now time.Time,
) (*Selection, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards, err := s.cards.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document cards: %w", err)
	}
	byTopic := groupByTopic(cards)
	if len(byTopic) == 0 {
		return nil, nil
	}

	topics, err := s.candidateTopics(ctx, userID, documentID, byTopic, now)
	if err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return nil, nil
	}

	topic, struggling := s.chooseTopic(topics)

	var eligible []*domain.Card
	for _, c := range byTopic[topic.MicroTopicID] {
		if Allows(topic.KnowledgeScore, c.BaseDifficulty) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		log.Debug("no cards unlocked for topic",
			slog.String("micro_topic_id", topic.MicroTopicID.String()),
			slog.Float64("knowledge_score", topic.KnowledgeScore))
		return nil, nil
	}

	ids := make([]uuid.UUID, len(eligible))
	for i, c := range eligible {
		ids[i] = c.ID
	}
	states, err := s.cardStates.ListForCards(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load card states: %w", err)
	}

	card, stage := s.pickCard(eligible, states, now)
	if card == nil {
		return nil, nil
	}

	log.Debug("card selected",
		slog.String("user_id", userID.String()),
		slog.String("card_id", card.ID.String()),
		slog.String("micro_topic_id", topic.MicroTopicID.String()),
		slog.String("stage", string(stage)),
		slog.Bool("struggling", struggling))

	return &Selection{
		Card:         card,
		MicroTopicID: topic.MicroTopicID,
		Stage:        stage,
		Struggling:   struggling,
	}, nil
}

// candidateTopics loads the user's topic states, initializing any missing
// ones, and keeps only topics that have cards.
func (s *Selector) candidateTopics(
	ctx context.Context,
	userID, documentID uuid.UUID,
	byTopic map[uuid.UUID][]*domain.Card,
	now time.Time,
) ([]*domain.TopicMemoryState, error) {
	states, err := s.topicStates.ListForDocument(ctx, userID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic states: %w", err)
	}

	known := make(map[uuid.UUID]bool, len(states))
	for _, st := range states {
		known[st.MicroTopicID] = true
	}
	for _, topicID := range sortedTopicIDs(byTopic) {
		if known[topicID] {
			continue
		}
		st, err := s.init.Recompute(ctx, userID, topicID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize topic state: %w", err)
		}
		states = append(states, st)
	}

	out := states[:0]
	for _, st := range states {
		if len(byTopic[st.MicroTopicID]) > 0 {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MicroTopicID.String() < out[j].MicroTopicID.String()
	})
	return out, nil
}

// chooseTopic draws a topic, from the struggling pool with probability
// StrugglingRatio and uniformly otherwise.
func (s *Selector) chooseTopic(topics []*domain.TopicMemoryState) (*domain.TopicMemoryState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(topics) == 1 {
		return topics[0], false
	}
	if s.rng.Float64() >= s.cfg.StrugglingRatio {
		return topics[s.rng.Intn(len(topics))], false
	}

	sorted := append([]*domain.TopicMemoryState(nil), topics...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StruggleWeight > sorted[j].StruggleWeight
	})
	size := int(math.Ceil(float64(len(sorted)) * s.cfg.StrugglingPoolFraction))
	if size < s.cfg.MinStrugglingPool {
		size = s.cfg.MinStrugglingPool
	}
	if size > len(sorted) {
		size = len(sorted)
	}
	return weightedChoice(s.rng, sorted[:size]), true
}

func weightedChoice(rng *rand.Rand, pool []*domain.TopicMemoryState) *domain.TopicMemoryState {
	var total float64
	for _, t := range pool {
		total += math.Max(t.StruggleWeight, 0)
	}
	if total <= 0 {
		return pool[rng.Intn(len(pool))]
	}
	r := rng.Float64() * total
	for _, t := range pool {
		r -= math.Max(t.StruggleWeight, 0)
		if r < 0 {
			return t
		}
	}
	return pool[len(pool)-1]
}

// pickCard walks the candidate pools in priority order.
func (s *Selector) pickCard(
	eligible []*domain.Card,
	states map[uuid.UUID]*domain.CardMemoryState,
	now time.Time,
) (*domain.Card, Stage) {
	var fresh []*domain.Card
	for _, c := range eligible {
		if !states[c.ID].ReviewedWithin(s.cfg.RecentExclusion, now) {
			fresh = append(fresh, c)
		}
	}

	interval := func(c *domain.Card) float64 { return states[c.ID].IntervalDays }
	mastery := func(c *domain.Card) float64 { return states[c.ID].Mastery }

	s.mu.Lock()
	defer s.mu.Unlock()

	dueFailed := filterCards(fresh, func(c *domain.Card) bool {
		st := states[c.ID]
		return st.IsDue(now) && st.Mastery < s.cfg.DueFailedMastery
	})
	if len(dueFailed) > 0 {
		sort.SliceStable(dueFailed, func(i, j int) bool {
			return interval(dueFailed[i]) < interval(dueFailed[j])
		})
		return s.pick(dueFailed, s.cfg.DueFailedLimit), StageDueFailed
	}

	due := filterCards(fresh, func(c *domain.Card) bool { return states[c.ID].IsDue(now) })
	if len(due) > 0 {
		sort.SliceStable(due, func(i, j int) bool {
			mi, mj := mastery(due[i]), mastery(due[j])
			if mi != mj {
				return mi < mj
			}
			return interval(due[i]) < interval(due[j])
		})
		return s.pick(due, s.cfg.DueLimit), StageDue
	}

	unseen := filterCards(fresh, func(c *domain.Card) bool { return !states[c.ID].Reviewed() })
	if len(unseen) > 0 {
		return s.pick(unseen, s.cfg.NewLimit), StageNew
	}

	upcoming := filterCards(fresh, func(c *domain.Card) bool { return states[c.ID] != nil })
	if len(upcoming) > 0 {
		sort.SliceStable(upcoming, func(i, j int) bool {
			return dueBefore(states[upcoming[i].ID], states[upcoming[j].ID])
		})
		return s.pick(upcoming, s.cfg.UpcomingLimit), StageUpcoming
	}

	// Everything eligible was answered moments ago.
	return s.pick(eligible, len(eligible)), StageFallback
}

// pick draws uniformly from the first limit cards. Callers hold s.mu.
func (s *Selector) pick(cards []*domain.Card, limit int) *domain.Card {
	if len(cards) == 0 {
		return nil
	}
	if limit > len(cards) {
		limit = len(cards)
	}
	return cards[s.rng.Intn(limit)]
}

// dueBefore orders states by next due time, undated ones last.
func dueBefore(a, b *domain.CardMemoryState) bool {
	switch {
	case a.NextDueAt == nil:
		return false
	case b.NextDueAt == nil:
		return true
	default:
		return a.NextDueAt.Before(*b.NextDueAt)
	}
}

func filterCards(cards []*domain.Card, keep func(*domain.Card) bool) []*domain.Card {
	var out []*domain.Card
	for _, c := range cards {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func groupByTopic(cards []*domain.Card) map[uuid.UUID][]*domain.Card {
	out := make(map[uuid.UUID][]*domain.Card)
	for _, c := range cards {
		if c.MicroTopicID != nil {
			out[*c.MicroTopicID] = append(out[*c.MicroTopicID], c)
		}
	}
	return out
}

func sortedTopicIDs(byTopic map[uuid.UUID][]*domain.Card) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(byTopic))
	for id := range byTopic {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
