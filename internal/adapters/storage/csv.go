package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

var knownColumns = append(slices.Clone(domain.DecisionColumns), domain.GroupColumns...)

// ReadDecisionTable parses a comma-delimited decision table. The header is
// kept in the order it was read. Group columns are optional and are not
// checked for pairing here; see Experiment.Check.
func ReadDecisionTable(r io.Reader) (*domain.DecisionTable, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty decision table", domain.ErrSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", domain.ErrSchema, err)
	}

	columns := make([]domain.Column, len(header))
	pos := make(map[domain.Column]int, len(header))
	for i, name := range header {
		c := domain.Column(name)
		if !slices.Contains(knownColumns, c) {
			return nil, fmt.Errorf("%w: unknown column %q", domain.ErrSchema, name)
		}
		if _, dup := pos[c]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", domain.ErrSchema, name)
		}
		columns[i] = c
		pos[c] = i
	}
	for _, c := range domain.DecisionColumns {
		if _, ok := pos[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrSchema, c)
		}
	}

	var rows []domain.DecisionRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSchema, err)
		}
		line, _ := cr.FieldPos(0)

		row, err := parseDecisionRow(rec, pos)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return domain.NewDecisionTable(columns, rows), nil
}

func parseDecisionRow(rec []string, pos map[domain.Column]int) (domain.DecisionRow, error) {
	var (
		row  domain.DecisionRow
		errs []error
	)
	field := func(c domain.Column, dst *int) {
		v, err := strconv.Atoi(rec[pos[c]])
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: column %s: invalid integer %q", domain.ErrSchema, c, rec[pos[c]]))
			return
		}
		*dst = v
	}
	field(domain.ColEnrollUser, &row.EnrollUser)
	field(domain.ColEnrollFinger, &row.EnrollFinger)
	field(domain.ColVerifyUser, &row.VerifyUser)
	field(domain.ColVerifyFinger, &row.VerifyFinger)
	field(domain.ColVerifySample, &row.VerifySample)

	d, err := domain.ParseDecision(rec[pos[domain.ColDecision]])
	if err != nil {
		errs = append(errs, fmt.Errorf("column %s: %w", domain.ColDecision, err))
	}
	row.Decision = d

	if i, ok := pos[domain.ColEnrollGroup]; ok {
		row.EnrollGroup = rec[i]
	}
	if i, ok := pos[domain.ColVerifyGroup]; ok {
		row.VerifyGroup = rec[i]
	}
	return row, errors.Join(errs...)
}

// WriteDecisionTable writes t with its own header order.
func WriteDecisionTable(w io.Writer, t *domain.DecisionTable) error {
	cw := csv.NewWriter(w)
	columns := t.Columns()

	rec := make([]string, len(columns))
	for i, c := range columns {
		rec[i] = string(c)
	}
	if err := cw.Write(rec); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range t.Rows() {
		for i, c := range columns {
			rec[i] = formatColumn(row, c)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatColumn(row domain.DecisionRow, c domain.Column) string {
	switch c {
	case domain.ColEnrollUser:
		return strconv.Itoa(row.EnrollUser)
	case domain.ColEnrollFinger:
		return strconv.Itoa(row.EnrollFinger)
	case domain.ColVerifyUser:
		return strconv.Itoa(row.VerifyUser)
	case domain.ColVerifyFinger:
		return strconv.Itoa(row.VerifyFinger)
	case domain.ColVerifySample:
		return strconv.Itoa(row.VerifySample)
	case domain.ColDecision:
		return row.Decision.String()
	case domain.ColEnrollGroup:
		return row.EnrollGroup
	case domain.ColVerifyGroup:
		return row.VerifyGroup
	}
	return ""
}

// ReadUserGroups parses a User,Group table.
func ReadUserGroups(r io.Reader) (domain.UserGroups, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(domain.UserGroupColumns)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty user group table", domain.ErrSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", domain.ErrSchema, err)
	}
	if domain.Column(header[0]) != domain.ColUser || domain.Column(header[1]) != domain.ColGroup {
		return nil, fmt.Errorf("%w: user group header must be %s,%s, got %v",
			domain.ErrSchema, domain.ColUser, domain.ColGroup, header)
	}

	groups := make(domain.UserGroups)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSchema, err)
		}
		line, _ := cr.FieldPos(0)

		user, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: invalid user %q", line, domain.ErrSchema, rec[0])
		}
		if have, ok := groups[user]; ok && have != rec[1] {
			return nil, &domain.GroupConflictError{User: user, Groups: [2]string{have, rec[1]}, Source: "user group table"}
		}
		groups[user] = rec[1]
	}
	return groups, nil
}

// WriteUserGroups writes g sorted by user.
func WriteUserGroups(w io.Writer, g domain.UserGroups) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{string(domain.ColUser), string(domain.ColGroup)}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, user := range g.Users() {
		if err := cw.Write([]string{strconv.Itoa(user), g[user]}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
