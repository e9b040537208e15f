package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

const (
	csvFAR = `EnrollUser,EnrollFinger,VerifyUser,VerifyFinger,VerifySample,Decision
10001,1,10002,3,12,REJECT
10001,1,10002,3,13,REJECT
`
	csvFRR = `EnrollUser,EnrollFinger,VerifyUser,VerifyFinger,VerifySample,Decision
10001,1,10001,1,25,ACCEPT
10001,2,10001,2,25,ACCEPT
`
	csvUserGroups = `User,Group
10001,A
10002,B
`
	csvReordered = `Decision,VerifySample,EnrollUser,EnrollFinger,VerifyUser,VerifyFinger,EnrollGroup,VerifyGroup
ACCEPT,25,10001,1,10001,1,A,A
REJECT,26,10002,2,10002,2,B,B
`
)

func TestReadDecisionTable(t *testing.T) {
	table, err := ReadDecisionTable(strings.NewReader(csvFAR))
	require.NoError(t, err)

	assert.Equal(t, domain.DecisionColumns, table.Columns())
	assert.Equal(t, []domain.DecisionRow{
		{EnrollUser: 10001, EnrollFinger: 1, VerifyUser: 10002, VerifyFinger: 3, VerifySample: 12, Decision: domain.Reject},
		{EnrollUser: 10001, EnrollFinger: 1, VerifyUser: 10002, VerifyFinger: 3, VerifySample: 13, Decision: domain.Reject},
	}, table.Rows())
	assert.False(t, table.HasGroups())
}

func TestDecisionTableRoundTrip(t *testing.T) {
	for name, in := range map[string]string{"far": csvFAR, "frr": csvFRR, "reordered": csvReordered} {
		t.Run(name, func(t *testing.T) {
			table, err := ReadDecisionTable(strings.NewReader(in))
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, WriteDecisionTable(&buf, table))
			assert.Equal(t, in, buf.String())
		})
	}
}

func TestWriteDecisionTable(t *testing.T) {
	table := domain.NewDecisionTable(nil, []domain.DecisionRow{
		{EnrollUser: 10001, EnrollFinger: 1, VerifyUser: 10001, VerifyFinger: 1, VerifySample: 25, Decision: domain.Accept},
		{EnrollUser: 10001, EnrollFinger: 2, VerifyUser: 10001, VerifyFinger: 2, VerifySample: 25, Decision: domain.Accept},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteDecisionTable(&buf, table))
	assert.Equal(t, csvFRR, buf.String())
}

func TestReadDecisionTableGroups(t *testing.T) {
	table, err := ReadDecisionTable(strings.NewReader(csvReordered))
	require.NoError(t, err)

	assert.True(t, table.HasGroups())
	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "B", rows[1].EnrollGroup)
	assert.Equal(t, domain.Reject, rows[1].Decision)
	assert.Equal(t, 26, rows[1].VerifySample)
}

func TestReadDecisionTablePartialGroups(t *testing.T) {
	in := "EnrollUser,EnrollFinger,VerifyUser,VerifyFinger,VerifySample,Decision,EnrollGroup\n" +
		"10001,1,10001,1,25,ACCEPT,A\n"

	table, err := ReadDecisionTable(strings.NewReader(in))
	require.NoError(t, err)
	assert.True(t, table.HasColumn(domain.ColEnrollGroup))
	assert.False(t, table.HasGroups())
}

func TestReadDecisionTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantMsg string
	}{
		{"empty", "", "empty"},
		{"missing column", "EnrollUser,EnrollFinger,VerifyUser,VerifyFinger,Decision\n", "VerifySample"},
		{"unknown column", "EnrollUser,EnrollFinger,VerifyUser,VerifyFinger,VerifySample,Decision,Score\n", "Score"},
		{"duplicate column", "EnrollUser,EnrollUser,EnrollFinger,VerifyUser,VerifyFinger,VerifySample,Decision\n", "duplicate"},
		{"bad integer", csvFAR + "10001,x,10002,3,14,REJECT\n", "line 4"},
		{"bad decision", csvFAR + "10001,1,10002,3,14,MAYBE\n", "MAYBE"},
		{"short row", csvFAR + "10001,1,10002\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDecisionTable(strings.NewReader(tt.in))
			require.ErrorIs(t, err, domain.ErrSchema)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestUserGroupsRoundTrip(t *testing.T) {
	groups, err := ReadUserGroups(strings.NewReader(csvUserGroups))
	require.NoError(t, err)
	assert.Equal(t, domain.UserGroups{10001: "A", 10002: "B"}, groups)

	var buf bytes.Buffer
	require.NoError(t, WriteUserGroups(&buf, domain.UserGroups{10002: "B", 10001: "A"}))
	assert.Equal(t, csvUserGroups, buf.String())
}

func TestReadUserGroupsErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", domain.ErrSchema},
		{"bad header", "Group,User\nA,10001\n", domain.ErrSchema},
		{"bad user", "User,Group\nabc,A\n", domain.ErrSchema},
		{"extra field", "User,Group\n10001,A,x\n", domain.ErrSchema},
		{"conflict", "User,Group\n10001,A\n10001,B\n", domain.ErrGroupConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadUserGroups(strings.NewReader(tt.in))
			require.ErrorIs(t, err, tt.want)
		})
	}
}
