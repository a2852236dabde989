package search

import "sort"

// IDSet is an unordered set of entity ids.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]

	return ok
}

func (s IDSet) Len() int {
	return len(s)
}

// Intersect returns the ids present in both sets.
func (s IDSet) Intersect(other IDSet) IDSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}

	out := make(IDSet, len(small))

	for id := range small {
		if large.Has(id) {
			out[id] = struct{}{}
		}
	}

	return out
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Candidates is the running set of property ids. The zero value is
// unconstrained: every property is still a candidate.
type Candidates struct {
	constrained bool
	ids         IDSet
}

// Narrow restricts the candidates to ids.
func (c Candidates) Narrow(ids IDSet) Candidates {
	if !c.constrained {
		return Candidates{constrained: true, ids: ids}
	}

	return Candidates{constrained: true, ids: c.ids.Intersect(ids)}
}

func (c Candidates) Constrained() bool {
	return c.constrained
}

// Empty reports whether no property can match any more.
func (c Candidates) Empty() bool {
	return c.constrained && c.ids.Len() == 0
}

func (c Candidates) IDs() IDSet {
	return c.ids
}
