package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

func newSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Workshops:     []domain.Workshop{{ID: 1}, {ID: 2}},
		Users:         []domain.User{{ID: 10}, {ID: 11}},
		Participation: []domain.Participation{{UserID: 10, WorkshopID: 1}},
	}
}

func TestMergeParticipationCSV(t *testing.T) {
	s := newSnapshot()
	input := "name,uid,wid\n王伟,10,1\n王伟,10,2\n李静, 11 ,2\n李静,11,2\n未知,99,1\n"

	added, err := MergeParticipationCSV(s, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, []domain.Participation{
		{UserID: 10, WorkshopID: 1},
		{UserID: 10, WorkshopID: 2},
		{UserID: 11, WorkshopID: 2},
	}, s.Participation)
}

func TestMergeParticipationCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "missing column", input: "uid,name\n10,王伟\n"},
		{name: "bad uid", input: "uid,wid\nabc,1\n"},
		{name: "bad wid", input: "uid,wid\n10,\n"},
		{name: "ragged row", input: "uid,wid\n10\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MergeParticipationCSV(newSnapshot(), strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
