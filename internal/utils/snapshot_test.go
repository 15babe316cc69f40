package utils

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

func TestParseBlockTable(t *testing.T) {
	table, err := ParseBlockTable([]byte("[[1, 2], [3], [], null, [], [4]]"))
	require.NoError(t, err)
	assert.Equal(t, domain.BlockTable{{1, 2}, {3}, {}, {}, {}, {4}}, table)

	_, err = ParseBlockTable([]byte("[[1, 2], [3"))
	assert.Error(t, err)
}

func TestReadSnapshot(t *testing.T) {
	input := `{
		"workshops": [{"wid": 1, "name": "图论专题", "lecturers": [2], "disallowed_blocks": [3]}],
		"users": [{"uid": 2, "name": "李静", "start": "2024-07-01"}],
		"participation": [{"uid": 2, "wid": 1}]
	}`
	s, err := ReadSnapshot(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, s.Workshops, 1)
	assert.Equal(t, int64(1), s.Workshops[0].ID)
	assert.Equal(t, []int64{2}, s.Workshops[0].Lecturers)
	assert.Equal(t, []int{3}, s.Workshops[0].DisallowedBlocks)
	assert.Equal(t, "李静", s.Users[0].Name)
	assert.Equal(t, domain.Participation{UserID: 2, WorkshopID: 1}, s.Participation[0])

	_, err = ReadSnapshot(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	s := &domain.Snapshot{
		Workshops:     []domain.Workshop{{ID: 1, Name: "逻辑入门"}},
		Users:         []domain.User{{ID: 5, Name: "张伟"}},
		Participation: []domain.Participation{{UserID: 5, WorkshopID: 1}},
	}
	require.NoError(t, WriteSnapshotFile(path, s))

	got, err := ReadSnapshotFile(path)
	require.NoError(t, err)
	assert.Equal(t, s.Workshops[0].Name, got.Workshops[0].Name)
	assert.Equal(t, s.Participation, got.Participation)

	_, err = ReadSnapshotFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
