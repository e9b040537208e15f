// Package experiment aggregates the decision tables of a fingerprint study,
// validates them against each other and derives the axes the bootstrap
// samplers resample over.
package experiment

import (
	"fmt"
	"maps"
	"slices"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

// Experiment owns at most one FAR table, one FRR table and one explicit
// user-group mapping. Tables are never mutated.
type Experiment struct {
	far    *domain.DecisionTable
	frr    *domain.DecisionTable
	groups domain.UserGroups
}

func New() *Experiment {
	return &Experiment{}
}

// AddFAR sets the impostor attempt table.
func (e *Experiment) AddFAR(t *domain.DecisionTable) {
	e.far = t
}

// AddFRR sets the genuine attempt table.
func (e *Experiment) AddFRR(t *domain.DecisionTable) {
	e.frr = t
}

// AddGroups sets an explicit user-group mapping. The mapping is copied.
func (e *Experiment) AddGroups(g domain.UserGroups) {
	e.groups = maps.Clone(g)
}

func (e *Experiment) HasFAR() bool { return e.far != nil }
func (e *Experiment) HasFRR() bool { return e.frr != nil }

func (e *Experiment) FAR() *domain.DecisionTable { return e.far }
func (e *Experiment) FRR() *domain.DecisionTable { return e.frr }

// HasUserGroups reports whether groups were supplied or can be inferred
// from the group columns of either table.
func (e *Experiment) HasUserGroups() bool {
	if e.groups != nil {
		return true
	}
	return (e.far != nil && e.far.HasGroups()) || (e.frr != nil && e.frr.HasGroups())
}

// Check validates the experiment. It fails with ErrSchema when a table carries
// only one of the group columns, with ErrSemantic when the FAR table holds a
// genuine attempt or the FRR table an impostor attempt, and with a
// *domain.GroupConflictError when the group sources disagree.
func (e *Experiment) Check() error {
	for _, nt := range e.tables() {
		hasEnroll := nt.table.HasColumn(domain.ColEnrollGroup)
		hasVerify := nt.table.HasColumn(domain.ColVerifyGroup)
		if hasEnroll != hasVerify {
			return fmt.Errorf("%w: %s table has only one of %s and %s",
				domain.ErrSchema, nt.name, domain.ColEnrollGroup, domain.ColVerifyGroup)
		}
	}

	if e.far != nil {
		for i, r := range e.far.Rows() {
			if r.IsGenuine() {
				return fmt.Errorf("%w: FAR table row %d is a genuine attempt (user %d finger %d)",
					domain.ErrSemantic, i, r.EnrollUser, r.EnrollFinger)
			}
		}
	}
	if e.frr != nil {
		for i, r := range e.frr.Rows() {
			if r.IsImpostor() {
				return fmt.Errorf("%w: FRR table row %d is an impostor attempt (enroll %d/%d verify %d/%d)",
					domain.ErrSemantic, i, r.EnrollUser, r.EnrollFinger, r.VerifyUser, r.VerifyFinger)
			}
		}
	}

	inferred, err := e.inferGroups()
	if err != nil {
		return err
	}
	if e.groups != nil && inferred != nil {
		merged := maps.Clone(e.groups)
		if err := merged.Merge(inferred, "explicit groups vs decision tables"); err != nil {
			return err
		}
	}
	return nil
}

// UserGroupsTable returns the explicit user groups when supplied, otherwise
// the groups inferred from every enroll and verify (user, group) pair of both
// tables. It returns nil when no source carries groups.
func (e *Experiment) UserGroupsTable() (domain.UserGroups, error) {
	if e.groups != nil {
		return maps.Clone(e.groups), nil
	}
	return e.inferGroups()
}

func (e *Experiment) inferGroups() (domain.UserGroups, error) {
	var result domain.UserGroups
	for _, nt := range e.tables() {
		if !nt.table.HasGroups() {
			continue
		}
		g, err := scanGroups(nt.table, nt.name)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = g
			continue
		}
		if err := result.Merge(g, "FAR vs FRR"); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func scanGroups(t *domain.DecisionTable, name string) (domain.UserGroups, error) {
	g := make(domain.UserGroups)
	assign := func(user int, group string) error {
		if have, ok := g[user]; ok && have != group {
			return &domain.GroupConflictError{User: user, Groups: [2]string{have, group}, Source: name + " table"}
		}
		g[user] = group
		return nil
	}
	for _, r := range t.Rows() {
		if err := assign(r.EnrollUser, r.EnrollGroup); err != nil {
			return nil, err
		}
		if err := assign(r.VerifyUser, r.VerifyGroup); err != nil {
			return nil, err
		}
	}
	return g, nil
}

type namedTable struct {
	name  string
	table *domain.DecisionTable
}

func (e *Experiment) tables() []namedTable {
	var out []namedTable
	if e.far != nil {
		out = append(out, namedTable{name: "FAR", table: e.far})
	}
	if e.frr != nil {
		out = append(out, namedTable{name: "FRR", table: e.frr})
	}
	return out
}

// Users returns the sorted unique enroll and verify user IDs of all tables.
func (e *Experiment) Users() []int {
	return e.axis(func(r domain.DecisionRow, add func(int)) {
		add(r.EnrollUser)
		add(r.VerifyUser)
	})
}

// Fingers returns the sorted unique enroll and verify finger IDs of all tables.
func (e *Experiment) Fingers() []int {
	return e.axis(func(r domain.DecisionRow, add func(int)) {
		add(r.EnrollFinger)
		add(r.VerifyFinger)
	})
}

// Samples returns the sorted unique verify sample indices of all tables.
func (e *Experiment) Samples() []int {
	return e.axis(func(r domain.DecisionRow, add func(int)) {
		add(r.VerifySample)
	})
}

func (e *Experiment) axis(visit func(domain.DecisionRow, func(int))) []int {
	seen := make(map[int]struct{})
	add := func(v int) { seen[v] = struct{}{} }
	for _, nt := range e.tables() {
		for _, r := range nt.table.Rows() {
			visit(r, add)
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// FATable returns the false accepts: FAR rows whose decision is ACCEPT.
func (e *Experiment) FATable() []domain.DecisionRow {
	if e.far == nil {
		return nil
	}
	return e.far.Filter(func(r domain.DecisionRow) bool { return r.Decision == domain.Accept })
}

// FRTable returns the false rejects: FRR rows whose decision is REJECT.
func (e *Experiment) FRTable() []domain.DecisionRow {
	if e.frr == nil {
		return nil
	}
	return e.frr.Filter(func(r domain.DecisionRow) bool { return r.Decision == domain.Reject })
}
