package datastore

import (
	"strings"

	"github.com/sigboard/sigboard/pkg/dataset"
	"github.com/sigboard/sigboard/pkg/signals"
)

const Wildcard = "*"

// PatternApplies reports whether a signal path matches a pattern. A pattern is an exact path,
// a prefix followed by a single trailing "*" or a suffix preceded by a single leading "*".
func PatternApplies(path string, pattern string) bool {
	if path == pattern {
		return true
	}

	if strings.HasSuffix(pattern, Wildcard) {
		return strings.HasPrefix(path, strings.TrimSuffix(pattern, Wildcard))
	}

	if strings.HasPrefix(pattern, Wildcard) {
		return strings.HasSuffix(path, strings.TrimPrefix(pattern, Wildcard))
	}

	return false
}

// Match returns the signals of datasets matching pattern, in dataset then tree order.
// A nil datasets slice matches against the whole store.
func (s *Store) Match(pattern string, datasets []*dataset.Dataset) []*signals.Signal {
	if datasets == nil {
		datasets = s.Datasets()
	}

	matches := []*signals.Signal{}
	for _, ds := range datasets {
		for _, signal := range ds.Signals() {
			if PatternApplies(signal.Path(), pattern) {
				matches = append(matches, signal)
			}
		}
	}
	return matches
}

// MatchAll matches every pattern, patterns matching nothing map to an empty slice
func (s *Store) MatchAll(patterns []string, datasets []*dataset.Dataset) map[string][]*signals.Signal {
	matches := make(map[string][]*signals.Signal, len(patterns))
	for _, pattern := range patterns {
		matches[pattern] = s.Match(pattern, datasets)
	}
	return matches
}
