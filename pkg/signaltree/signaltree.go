package signaltree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sigboard/sigboard/pkg/signals"
)

const Separator = "/"

var ErrPathConflict = errors.New("path conflicts with an existing node")

// Group is one node of the signal path tree. Child groups and leaf signals live in
// separate maps; keys keeps every child name in insertion order.
type Group struct {
	name    string
	keys    []string
	groups  map[string]*Group
	signals map[string]*signals.Signal
}

// Node is one ordered child of a group: exactly one of Group or Signal is set
type Node struct {
	Name   string
	Group  *Group
	Signal *signals.Signal
}

func NewGroup(name string) *Group {
	return &Group{
		name:    name,
		groups:  make(map[string]*Group),
		signals: make(map[string]*signals.Signal),
	}
}

func (g *Group) Name() string {
	return g.name
}

// Keys returns child names in insertion order
func (g *Group) Keys() []string {
	keys := make([]string, len(g.keys))
	copy(keys, g.keys)
	return keys
}

func (g *Group) Children() []Node {
	nodes := make([]Node, 0, len(g.keys))
	for _, key := range g.keys {
		nodes = append(nodes, Node{
			Name:   key,
			Group:  g.groups[key],
			Signal: g.signals[key],
		})
	}
	return nodes
}

func (g *Group) Group(name string) (*Group, bool) {
	child, ok := g.groups[name]
	return child, ok
}

func (g *Group) Signal(name string) (*signals.Signal, bool) {
	s, ok := g.signals[name]
	return s, ok
}

// Insert places s under the slash-delimited relative path, creating intermediate groups.
// The last segment is the leaf key; an existing leaf with that key is replaced.
func (g *Group) Insert(relativePath string, s *signals.Signal) error {
	segments := Split(relativePath)
	if len(segments) == 0 {
		return fmt.Errorf("insert '%s': empty path", relativePath)
	}

	parent := g
	for i, segment := range segments[:len(segments)-1] {
		if _, ok := parent.signals[segment]; ok {
			return fmt.Errorf("insert '%s': '%s' is a signal: %w", relativePath, strings.Join(segments[:i+1], Separator), ErrPathConflict)
		}

		child, ok := parent.groups[segment]
		if !ok {
			child = NewGroup(segment)
			parent.groups[segment] = child
			parent.keys = append(parent.keys, segment)
		}
		parent = child
	}

	leaf := segments[len(segments)-1]
	if _, ok := parent.groups[leaf]; ok {
		return fmt.Errorf("insert '%s': path is a group: %w", relativePath, ErrPathConflict)
	}
	if _, ok := parent.signals[leaf]; !ok {
		parent.keys = append(parent.keys, leaf)
	}
	parent.signals[leaf] = s

	return nil
}

// Lookup resolves a relative path to a leaf signal, recursing through groups
func (g *Group) Lookup(relativePath string) (*signals.Signal, bool) {
	segments := Split(relativePath)
	if len(segments) == 0 {
		return nil, false
	}

	parent := g
	for _, segment := range segments[:len(segments)-1] {
		child, ok := parent.groups[segment]
		if !ok {
			return nil, false
		}
		parent = child
	}

	return parent.Signal(segments[len(segments)-1])
}

// WalkFunc receives the relative path segments of every leaf
type WalkFunc func(segments []string, s *signals.Signal) error

// Walk visits every leaf depth-first in insertion order and stops at the first error
func (g *Group) Walk(fn WalkFunc) error {
	return g.walk(nil, fn)
}

func (g *Group) walk(prefix []string, fn WalkFunc) error {
	for _, key := range g.keys {
		segments := append(append([]string{}, prefix...), key)

		if s, ok := g.signals[key]; ok {
			if err := fn(segments, s); err != nil {
				return err
			}
			continue
		}

		if err := g.groups[key].walk(segments, fn); err != nil {
			return err
		}
	}
	return nil
}

// Leaves returns every signal in Walk order
func (g *Group) Leaves() []*signals.Signal {
	var leaves []*signals.Signal
	_ = g.Walk(func(_ []string, s *signals.Signal) error {
		leaves = append(leaves, s)
		return nil
	})
	return leaves
}

func (g *Group) Len() int {
	count := len(g.signals)
	for _, child := range g.groups {
		count += child.Len()
	}
	return count
}

// Split breaks a path into its non-empty segments
func Split(path string) []string {
	tokens := strings.Split(path, Separator)
	segments := tokens[:0]
	for _, token := range tokens {
		if token != "" {
			segments = append(segments, token)
		}
	}
	return segments
}

func Join(segments ...string) string {
	return strings.Join(segments, Separator)
}
