package http

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sigboard/sigboard/pkg/signals"
)

// Subscription is a store listener keeping the last batch of matches delivered to it
type Subscription struct {
	mu            sync.Mutex
	id            string
	patterns      []string
	matches       map[string][]string
	notifications int
	updated       time.Time
}

type SubscriptionState struct {
	Id            string              `json:"id"`
	Patterns      []string            `json:"patterns"`
	Notifications int                 `json:"notifications"`
	Updated       *time.Time          `json:"updated,omitempty"`
	Latest        map[string][]string `json:"latest"`
	Current       map[string][]string `json:"current"`
}

func NewSubscription(patterns []string) *Subscription {
	return &Subscription{
		id:       uuid.NewString(),
		patterns: patterns,
		matches:  make(map[string][]string),
	}
}

func (s *Subscription) Id() string {
	return s.id
}

func (s *Subscription) Patterns() []string {
	return s.patterns
}

func (s *Subscription) PatternsMatched(matches map[string][]*signals.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.matches = signalPaths(matches)
	s.notifications++
	s.updated = time.Now()
}

// State describes the subscription. current holds the matches against the whole store.
func (s *Subscription) State(current map[string][]*signals.Signal) *SubscriptionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &SubscriptionState{
		Id:            s.id,
		Patterns:      s.patterns,
		Notifications: s.notifications,
		Latest:        s.matches,
		Current:       signalPaths(current),
	}
	if !s.updated.IsZero() {
		updated := s.updated
		state.Updated = &updated
	}
	return state
}

type subscriptionRegistry struct {
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
}

func newSubscriptionRegistry() *subscriptionRegistry {
	return &subscriptionRegistry{
		subscriptions: make(map[string]*Subscription),
	}
}

func (r *subscriptionRegistry) add(s *Subscription) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subscriptions[s.id] = s
	return len(r.subscriptions)
}

func (r *subscriptionRegistry) get(id string) (*Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.subscriptions[id]
	return s, ok
}

func (r *subscriptionRegistry) remove(id string) (*Subscription, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.subscriptions[id]
	if ok {
		delete(r.subscriptions, id)
	}
	return s, len(r.subscriptions), ok
}

func signalPaths(matches map[string][]*signals.Signal) map[string][]string {
	paths := make(map[string][]string, len(matches))
	for pattern, matched := range matches {
		paths[pattern] = make([]string, len(matched))
		for i, s := range matched {
			paths[pattern][i] = s.Path()
		}
	}
	return paths
}
