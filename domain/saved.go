package domain

import "sort"

// SavedIdSet holds the ids of posts and reels the viewer saved
type SavedIdSet map[string]struct{}

func NewSavedIdSet(ids ...string) SavedIdSet {
	s := make(SavedIdSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s SavedIdSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s SavedIdSet) Add(id string) {
	s[id] = struct{}{}
}

func (s SavedIdSet) Remove(id string) {
	delete(s, id)
}

func (s SavedIdSet) Clone() SavedIdSet {
	c := make(SavedIdSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Ids returns the members in sorted order
func (s SavedIdSet) Ids() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
