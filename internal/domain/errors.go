package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema reports missing, partial or malformed table columns.
	ErrSchema = errors.New("schema error")
	// ErrSemantic reports rows that contradict their table's meaning, such as
	// a genuine attempt inside the FAR table.
	ErrSemantic = errors.New("semantic error")
	// ErrGroupConflict reports a user assigned to more than one group.
	ErrGroupConflict = errors.New("group conflict")
	// ErrConfiguration reports an invalid run or resource configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrRunNotFound reports a stored run lookup that matched nothing.
	ErrRunNotFound = errors.New("run not found")
)

// GroupConflictError names the user whose group assignment is ambiguous.
type GroupConflictError struct {
	User   int
	Groups [2]string
	Source string
}

func (e *GroupConflictError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("group conflict: user %d is in groups %q and %q (%s)", e.User, e.Groups[0], e.Groups[1], e.Source)
	}
	return fmt.Sprintf("group conflict: user %d is in groups %q and %q", e.User, e.Groups[0], e.Groups[1])
}

func (e *GroupConflictError) Is(target error) bool {
	return target == ErrGroupConflict
}
