package experiment

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

func farRows() []domain.DecisionRow {
	return []domain.DecisionRow{
		{EnrollUser: 10001, EnrollFinger: 1, VerifyUser: 10002, VerifyFinger: 3, VerifySample: 12, Decision: domain.Reject, EnrollGroup: "A", VerifyGroup: "B"},
		{EnrollUser: 10001, EnrollFinger: 1, VerifyUser: 10002, VerifyFinger: 3, VerifySample: 13, Decision: domain.Reject, EnrollGroup: "A", VerifyGroup: "B"},
	}
}

func frrRows() []domain.DecisionRow {
	return []domain.DecisionRow{
		{EnrollUser: 10001, EnrollFinger: 1, VerifyUser: 10001, VerifyFinger: 1, VerifySample: 25, Decision: domain.Accept, EnrollGroup: "A", VerifyGroup: "A"},
		{EnrollUser: 10002, EnrollFinger: 2, VerifyUser: 10002, VerifyFinger: 2, VerifySample: 25, Decision: domain.Accept, EnrollGroup: "B", VerifyGroup: "B"},
	}
}

func TestHasUserGroups(t *testing.T) {
	bare := domain.NewDecisionTable(nil, nil)
	withGroups := domain.NewDecisionTableWithGroups(nil)

	tests := []struct {
		name  string
		setup func(*Experiment)
		want  bool
	}{
		{"without any tables", func(*Experiment) {}, false},
		{"far without groups", func(e *Experiment) { e.AddFAR(bare) }, false},
		{"far with groups", func(e *Experiment) { e.AddFAR(withGroups) }, true},
		{"frr without groups", func(e *Experiment) { e.AddFRR(bare) }, false},
		{"frr with groups", func(e *Experiment) { e.AddFRR(withGroups) }, true},
		{"explicit groups", func(e *Experiment) { e.AddGroups(domain.UserGroups{1: "A"}) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := New()
			tt.setup(exp)
			assert.Equal(t, tt.want, exp.HasUserGroups())
		})
	}
}

func TestUserGroupsTable_Infer(t *testing.T) {
	want := domain.UserGroups{10001: "A", 10002: "B"}

	t.Run("from frr", func(t *testing.T) {
		exp := New()
		exp.AddFRR(domain.NewDecisionTableWithGroups(frrRows()))
		got, err := exp.UserGroupsTable()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("from far enroll and verify columns", func(t *testing.T) {
		exp := New()
		exp.AddFAR(domain.NewDecisionTableWithGroups(farRows()))
		got, err := exp.UserGroupsTable()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("no groups anywhere", func(t *testing.T) {
		exp := New()
		exp.AddFAR(domain.NewDecisionTable(nil, farRows()))
		got, err := exp.UserGroupsTable()
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("user in two groups within one table", func(t *testing.T) {
		rows := farRows()
		rows[1].EnrollGroup = "C"
		exp := New()
		exp.AddFAR(domain.NewDecisionTableWithGroups(rows))
		_, err := exp.UserGroupsTable()
		require.ErrorIs(t, err, domain.ErrGroupConflict)
	})
}

func TestCheck(t *testing.T) {
	withoutGroups := func(rows []domain.DecisionRow) *domain.DecisionTable {
		for i := range rows {
			rows[i].EnrollGroup, rows[i].VerifyGroup = "", ""
		}
		return domain.NewDecisionTable(nil, rows)
	}
	enrollGroupOnly := domain.NewDecisionTable(
		append(slices.Clone(domain.DecisionColumns), domain.ColEnrollGroup), farRows())

	conflictingFRR := frrRows()
	conflictingFRR[1].EnrollGroup, conflictingFRR[1].VerifyGroup = "C", "C"

	tests := []struct {
		name    string
		far     *domain.DecisionTable
		frr     *domain.DecisionTable
		groups  domain.UserGroups
		wantErr error
	}{
		{
			name: "correct with groups",
			far:  domain.NewDecisionTableWithGroups(farRows()),
			frr:  domain.NewDecisionTableWithGroups(frrRows()),
		},
		{
			name: "correct without groups",
			far:  withoutGroups(farRows()),
			frr:  withoutGroups(frrRows()),
		},
		{
			name: "same user other finger is an impostor attempt",
			far: domain.NewDecisionTable(nil, []domain.DecisionRow{
				{EnrollUser: 10001, EnrollFinger: 1, VerifyUser: 10001, VerifyFinger: 2, VerifySample: 0},
			}),
		},
		{
			name:    "partial groups",
			far:     enrollGroupOnly,
			wantErr: domain.ErrSchema,
		},
		{
			name:    "far table contains frr attempts",
			far:     domain.NewDecisionTableWithGroups(append(farRows(), frrRows()...)),
			wantErr: domain.ErrSemantic,
		},
		{
			name:    "frr table contains far attempts",
			frr:     domain.NewDecisionTableWithGroups(append(frrRows(), farRows()...)),
			wantErr: domain.ErrSemantic,
		},
		{
			name:    "far and frr disagree on groups",
			far:     domain.NewDecisionTableWithGroups(farRows()),
			frr:     domain.NewDecisionTableWithGroups(conflictingFRR),
			wantErr: domain.ErrGroupConflict,
		},
		{
			name:    "explicit groups disagree with tables",
			far:     domain.NewDecisionTableWithGroups(farRows()),
			groups:  domain.UserGroups{10001: "Z"},
			wantErr: domain.ErrGroupConflict,
		},
		{
			name:   "explicit groups agree with tables",
			far:    domain.NewDecisionTableWithGroups(farRows()),
			groups: domain.UserGroups{10001: "A", 10002: "B", 10003: "A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := New()
			if tt.far != nil {
				exp.AddFAR(tt.far)
			}
			if tt.frr != nil {
				exp.AddFRR(tt.frr)
			}
			if tt.groups != nil {
				exp.AddGroups(tt.groups)
			}

			err := exp.Check()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCheck_DoesNotMutate(t *testing.T) {
	far := domain.NewDecisionTableWithGroups(farRows())
	before := slices.Clone(far.Rows())

	exp := New()
	exp.AddFAR(far)
	require.NoError(t, exp.Check())
	assert.Equal(t, before, far.Rows())
}

func TestAxes(t *testing.T) {
	exp := New()
	exp.AddFAR(domain.NewDecisionTable(nil, farRows()))
	exp.AddFRR(domain.NewDecisionTable(nil, frrRows()))

	assert.Equal(t, []int{10001, 10002}, exp.Users())
	assert.Equal(t, []int{1, 2, 3}, exp.Fingers())
	assert.Equal(t, []int{12, 13, 25}, exp.Samples())
}

func TestPositiveTables(t *testing.T) {
	far := farRows()
	far[0].Decision = domain.Accept
	frr := frrRows()
	frr[1].Decision = domain.Reject

	exp := New()
	assert.Empty(t, exp.FATable())
	assert.Empty(t, exp.FRTable())

	exp.AddFAR(domain.NewDecisionTable(nil, far))
	exp.AddFRR(domain.NewDecisionTable(nil, frr))

	require.Len(t, exp.FATable(), 1)
	assert.Equal(t, 12, exp.FATable()[0].VerifySample)
	require.Len(t, exp.FRTable(), 1)
	assert.Equal(t, 10002, exp.FRTable()[0].EnrollUser)

	s := exp.Summary()
	require.NotNil(t, s.FAR)
	require.NotNil(t, s.FRR)
	assert.Equal(t, TableSummary{Attempts: 2, Positives: 1}, *s.FAR)
	assert.Equal(t, TableSummary{Attempts: 2, Positives: 1}, *s.FRR)
	assert.InDelta(t, 0.5, s.FAR.Rate(), 1e-12)
	assert.Equal(t, 2, s.Users)
}
