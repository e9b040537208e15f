package domain

import (
	"maps"
	"slices"
)

// UserGroups maps a user ID to its group label.
type UserGroups map[int]string

// Users returns the user IDs in ascending order.
func (g UserGroups) Users() []int {
	return slices.Sorted(maps.Keys(g))
}

// Groups returns the distinct group labels in ascending order.
func (g UserGroups) Groups() []string {
	seen := make(map[string]struct{}, len(g))
	for _, group := range g {
		seen[group] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Merge adds every assignment of other into g. It fails on the first user
// whose group differs between the two mappings.
func (g UserGroups) Merge(other UserGroups, source string) error {
	for _, user := range other.Users() {
		group := other[user]
		if have, ok := g[user]; ok && have != group {
			return &GroupConflictError{User: user, Groups: [2]string{have, group}, Source: source}
		}
		g[user] = group
	}
	return nil
}

// Equal reports whether both mappings hold the same assignments.
func (g UserGroups) Equal(other UserGroups) bool {
	return maps.Equal(g, other)
}
