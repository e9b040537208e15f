package domain

import (
	"fmt"
	"slices"
)

// Decision is the recorded outcome of a single verification attempt.
type Decision uint8

const (
	Reject Decision = iota
	Accept
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "ACCEPT"
	case Reject:
		return "REJECT"
	default:
		return fmt.Sprintf("Decision(%d)", uint8(d))
	}
}

// ParseDecision parses the serialized form of a decision.
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "ACCEPT":
		return Accept, nil
	case "REJECT":
		return Reject, nil
	default:
		return Reject, fmt.Errorf("%w: unknown decision %q", ErrSchema, s)
	}
}

// Column is the header name of a decision or user-group table column.
type Column string

const (
	ColEnrollUser   Column = "EnrollUser"
	ColEnrollFinger Column = "EnrollFinger"
	ColVerifyUser   Column = "VerifyUser"
	ColVerifyFinger Column = "VerifyFinger"
	ColVerifySample Column = "VerifySample"
	ColDecision     Column = "Decision"
	ColEnrollGroup  Column = "EnrollGroup"
	ColVerifyGroup  Column = "VerifyGroup"

	ColUser  Column = "User"
	ColGroup Column = "Group"
)

// DecisionColumns are the required decision table columns in canonical order.
var DecisionColumns = []Column{
	ColEnrollUser,
	ColEnrollFinger,
	ColVerifyUser,
	ColVerifyFinger,
	ColVerifySample,
	ColDecision,
}

// GroupColumns are the optional decision table columns. Both or neither must be present.
var GroupColumns = []Column{ColEnrollGroup, ColVerifyGroup}

// UserGroupColumns are the columns of a user-group table.
var UserGroupColumns = []Column{ColUser, ColGroup}

// DecisionRow is one verification attempt: who verified against whose
// enrolled template, with which finger and sample, and the match decision.
type DecisionRow struct {
	EnrollUser   int
	EnrollFinger int
	VerifyUser   int
	VerifyFinger int
	VerifySample int
	Decision     Decision
	EnrollGroup  string
	VerifyGroup  string
}

// IsGenuine reports whether the attempt verified a finger against its own template.
func (r DecisionRow) IsGenuine() bool {
	return r.EnrollUser == r.VerifyUser && r.EnrollFinger == r.VerifyFinger
}

// IsImpostor reports whether the attempt verified against any other template,
// including another finger of the same user.
func (r DecisionRow) IsImpostor() bool {
	return !r.IsGenuine()
}

// DecisionTable is an immutable table of verification attempts together with
// the header it was read with.
type DecisionTable struct {
	columns []Column
	rows    []DecisionRow
}

// NewDecisionTable creates a table with the given header and rows. A nil
// header selects the canonical required columns. The rows slice is copied.
func NewDecisionTable(columns []Column, rows []DecisionRow) *DecisionTable {
	if columns == nil {
		columns = DecisionColumns
	}
	return &DecisionTable{
		columns: slices.Clone(columns),
		rows:    slices.Clone(rows),
	}
}

// NewDecisionTableWithGroups creates a table whose header carries both group columns.
func NewDecisionTableWithGroups(rows []DecisionRow) *DecisionTable {
	return NewDecisionTable(append(slices.Clone(DecisionColumns), GroupColumns...), rows)
}

// Columns returns a copy of the table header.
func (t *DecisionTable) Columns() []Column {
	return slices.Clone(t.columns)
}

// HasColumn reports whether the header contains c.
func (t *DecisionTable) HasColumn(c Column) bool {
	return slices.Contains(t.columns, c)
}

// HasGroups reports whether both group columns are present.
func (t *DecisionTable) HasGroups() bool {
	return t.HasColumn(ColEnrollGroup) && t.HasColumn(ColVerifyGroup)
}

// Len returns the number of rows.
func (t *DecisionTable) Len() int {
	return len(t.rows)
}

// Rows returns the table rows. The returned slice must not be modified.
func (t *DecisionTable) Rows() []DecisionRow {
	return t.rows
}

// Filter returns the rows for which keep returns true.
func (t *DecisionTable) Filter(keep func(DecisionRow) bool) []DecisionRow {
	var out []DecisionRow
	for _, r := range t.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// CountDecision returns the number of rows with decision d.
func (t *DecisionTable) CountDecision(d Decision) int {
	n := 0
	for _, r := range t.rows {
		if r.Decision == d {
			n++
		}
	}
	return n
}
