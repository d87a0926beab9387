package datastore

import (
	"fmt"

	"github.com/sigboard/sigboard/pkg/dataset"
	"github.com/sigboard/sigboard/pkg/loggers"
	"github.com/sigboard/sigboard/pkg/signals"
	"github.com/sigboard/sigboard/pkg/signaltree"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

// Listener receives the signals matching its subscribed patterns, keyed by pattern.
// PatternsMatched is called synchronously from the store operation that changed the
// collection. Implementations must be comparable, e.g. pointers.
type Listener interface {
	PatternsMatched(matches map[string][]*signals.Signal)
}

// Store owns datasets by display name and the pattern subscriptions of listeners.
// It is not safe for concurrent use.
type Store struct {
	datasets map[string]*dataset.Dataset
	names    []string

	patterns  map[Listener][]string
	listeners []Listener
}

func NewStore() *Store {
	return &Store{
		datasets: make(map[string]*dataset.Dataset),
		patterns: make(map[Listener][]string),
	}
}

// Insert stores ds without notifying listeners and returns the name it was stored under.
// Unless replaceExisting is set a colliding name is incremented until unique, renaming ds.
func (s *Store) Insert(ds *dataset.Dataset, replaceExisting bool) string {
	if !replaceExisting {
		name := ds.Name()
		for s.has(name) {
			name = IncrementName(name)
		}
		if name != ds.Name() {
			ds.SetName(name)
		}
	}

	name := ds.Name()
	if !s.has(name) {
		s.names = append(s.names, name)
	}
	s.datasets[name] = ds

	return name
}

// Add inserts ds and notifies listeners about it
func (s *Store) Add(ds *dataset.Dataset, replaceExisting bool) string {
	name := s.Insert(ds, replaceExisting)
	s.Notify([]*dataset.Dataset{ds})
	return name
}

// Remove drops a dataset and notifies listeners about the remaining collection
func (s *Store) Remove(name string) bool {
	if !s.has(name) {
		return false
	}

	delete(s.datasets, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}

	s.Notify(nil)
	return true
}

func (s *Store) Get(name string) (*dataset.Dataset, bool) {
	ds, ok := s.datasets[name]
	return ds, ok
}

// Datasets returns the datasets in insertion order
func (s *Store) Datasets() []*dataset.Dataset {
	datasets := make([]*dataset.Dataset, 0, len(s.names))
	for _, name := range s.names {
		datasets = append(datasets, s.datasets[name])
	}
	return datasets
}

func (s *Store) Names() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

func (s *Store) Len() int {
	return len(s.names)
}

// Clear drops every dataset. Subscriptions are kept.
func (s *Store) Clear() {
	s.datasets = make(map[string]*dataset.Dataset)
	s.names = nil
}

// RefreshAll refreshes every dataset and returns the datasets that changed, see RefreshWhere
func (s *Store) RefreshAll(overwrite bool) ([]*dataset.Dataset, error) {
	return s.RefreshWhere(overwrite, nil)
}

// RefreshWhere refreshes the datasets accepted by selected, every dataset when selected is nil,
// and returns the datasets that changed.
// Changed datasets replace the original under its name when overwrite is set, otherwise they
// are added next to it under an incremented name unless a dataset of the same file with the
// same fingerprint is already stored. A failing dataset does not stop the others; failures
// are combined and returned after listeners were notified of the changes.
func (s *Store) RefreshWhere(overwrite bool, selected func(ds *dataset.Dataset) bool) ([]*dataset.Dataset, error) {
	var changed []*dataset.Dataset
	var errs error

	for _, name := range s.Names() {
		ds := s.datasets[name]
		if selected != nil && !selected(ds) {
			continue
		}

		refreshed, err := ds.Refresh()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to refresh dataset '%s': %w", name, err))
			continue
		}

		if refreshed == ds {
			zaplog.Sugar().Debugf("dataset '%s' has not changed", name)
			continue
		}

		if overwrite {
			refreshed.SetName(name)
			s.datasets[name] = refreshed
			zaplog.Sugar().Infof("dataset '%s' overwritten", name)
		} else {
			if existing, ok := s.sameContent(refreshed); ok {
				zaplog.Sugar().Debugf("changed '%s' is already loaded as '%s'", name, existing)
				continue
			}
			refreshed.SetName(name)
			added := s.Insert(refreshed, false)
			zaplog.Sugar().Infof("dataset '%s' created from changed '%s'", added, name)
		}

		changed = append(changed, refreshed)
	}

	if len(changed) > 0 {
		s.Notify(changed)
	}

	return changed, errs
}

// Subscribe registers or replaces the patterns of a listener
func (s *Store) Subscribe(listener Listener, patterns []string) {
	if _, ok := s.patterns[listener]; !ok {
		s.listeners = append(s.listeners, listener)
	}

	subscribed := make([]string, len(patterns))
	copy(subscribed, patterns)
	s.patterns[listener] = subscribed
}

func (s *Store) Unsubscribe(listener Listener) {
	if _, ok := s.patterns[listener]; !ok {
		return
	}

	delete(s.patterns, listener)
	for i, l := range s.listeners {
		if l == listener {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			break
		}
	}
}

// Patterns returns the patterns a listener subscribed to
func (s *Store) Patterns(listener Listener) ([]string, bool) {
	patterns, ok := s.patterns[listener]
	return patterns, ok
}

// Notify re-evaluates every listener's patterns against the changed datasets, or against
// the whole store when changed is empty, and delivers the matches in subscription order.
func (s *Store) Notify(changed []*dataset.Dataset) {
	if len(changed) == 0 {
		changed = s.Datasets()
	}

	for _, listener := range s.listeners {
		listener.PatternsMatched(s.MatchAll(s.patterns[listener], changed))
	}
}

// SignalFromPath resolves a canonical signal path "<dataset>/<group>.../<leaf>"
func (s *Store) SignalFromPath(path string) (*signals.Signal, bool) {
	segments := signaltree.Split(path)
	if len(segments) < 2 {
		return nil, false
	}

	ds, ok := s.datasets[segments[0]]
	if !ok {
		return nil, false
	}
	return ds.Root().Lookup(signaltree.Join(segments[1:]...))
}

// sameContent returns the name of a stored dataset read from the same files as ds with the same fingerprint
func (s *Store) sameContent(ds *dataset.Dataset) (string, bool) {
	for _, name := range s.names {
		stored := s.datasets[name]
		if stored.PathData() == ds.PathData() && stored.PathFormat() == ds.PathFormat() && stored.Fingerprint() == ds.Fingerprint() {
			return name, true
		}
	}
	return "", false
}

func (s *Store) has(name string) bool {
	_, ok := s.datasets[name]
	return ok
}
