package auth

// Package auth contains domain-level types for identities, roles, and
// permissions. It is pure and free of framework/adapter concerns.

import (
	"sort"
	"strings"
)

// TokenSet stores role or permission tokens in insertion order. Every token
// carries a numeric id: either an external database id supplied by the caller
// or an auto-incremented positional id. This lets one container serve both
// the plain name-list shape and the id-keyed map shape.
//
// Names are unique within a set. Adding a present name is a no-op and
// removing an absent name is a no-op.
type TokenSet struct {
	entries []tokenEntry
	nextID  int
}

type tokenEntry struct {
	id   int
	name string
}

// Has reports whether a token with the given name is present.
func (s *TokenSet) Has(name string) bool {
	return s.indexOfName(name) >= 0
}

// HasID reports whether a token with the given numeric id is present.
func (s *TokenSet) HasID(id int) bool {
	return s.indexOfID(id) >= 0
}

// Add appends a token under the next positional id.
func (s *TokenSet) Add(name string) {
	if name == "" || s.Has(name) {
		return
	}
	s.entries = append(s.entries, tokenEntry{id: s.nextID, name: name})
	s.nextID++
}

// AddWithID appends a token under an external numeric id. An existing entry
// with the same id or the same name is replaced rather than duplicated.
func (s *TokenSet) AddWithID(id int, name string) {
	if name == "" {
		return
	}
	if i := s.indexOfName(name); i >= 0 {
		s.entries[i].id = id
		s.bumpNextID(id)
		return
	}
	if i := s.indexOfID(id); i >= 0 {
		s.entries[i].name = name
		return
	}
	s.entries = append(s.entries, tokenEntry{id: id, name: name})
	s.bumpNextID(id)
}

// Remove deletes the token with the given name, if present.
func (s *TokenSet) Remove(name string) {
	if i := s.indexOfName(name); i >= 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
	}
}

// RemoveID deletes the token with the given numeric id, if present.
func (s *TokenSet) RemoveID(id int) {
	if i := s.indexOfID(id); i >= 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
	}
}

// Names returns token names in insertion order.
func (s *TokenSet) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.name
	}
	return names
}

// ByID returns the id-keyed map shape of the set.
func (s *TokenSet) ByID() map[int]string {
	m := make(map[int]string, len(s.entries))
	for _, e := range s.entries {
		m[e.id] = e.name
	}
	return m
}

// Len returns the number of tokens.
func (s *TokenSet) Len() int { return len(s.entries) }

// ReplaceNames replaces the whole set with the given names, assigning fresh
// positional ids.
func (s *TokenSet) ReplaceNames(names []string) {
	s.reset()
	for _, name := range names {
		s.Add(name)
	}
}

// ReplaceCSV replaces the whole set from a comma-separated name list.
func (s *TokenSet) ReplaceCSV(csv string) {
	s.reset()
	if csv == "" {
		return
	}
	for _, name := range strings.Split(csv, ",") {
		s.Add(strings.TrimSpace(name))
	}
}

// ReplaceMap replaces the whole set from an id-keyed map. Entries are kept in
// ascending id order so the resulting name order is deterministic.
func (s *TokenSet) ReplaceMap(m map[int]string) {
	s.reset()
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		s.AddWithID(id, m[id])
	}
}

func (s *TokenSet) reset() {
	s.entries = nil
	s.nextID = 0
}

func (s *TokenSet) bumpNextID(id int) {
	if id >= s.nextID {
		s.nextID = id + 1
	}
}

func (s *TokenSet) indexOfName(name string) int {
	for i, e := range s.entries {
		if e.name == name {
			return i
		}
	}
	return -1
}

func (s *TokenSet) indexOfID(id int) int {
	for i, e := range s.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}
