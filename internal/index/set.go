package index

import "github.com/emiliopalmerini/fpstudy/internal/domain"

// Set is a hashed membership index over projected decision rows.
type Set[K comparable] struct {
	m map[K]struct{}
}

// NewSet projects every row with project and indexes the resulting keys.
func NewSet[K comparable](rows []domain.DecisionRow, project func(domain.DecisionRow) K) *Set[K] {
	m := make(map[K]struct{}, len(rows))
	for _, r := range rows {
		m[project(r)] = struct{}{}
	}
	return &Set[K]{m: m}
}

// Contains reports whether k was projected from any row.
func (s *Set[K]) Contains(k K) bool {
	_, ok := s.m[k]
	return ok
}

// Len returns the number of distinct keys.
func (s *Set[K]) Len() int {
	return len(s.m)
}
