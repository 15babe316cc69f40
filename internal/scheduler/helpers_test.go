package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

// 生成 n 个没有任何约束的工作坊，ID 从 1 开始
func plainWorkshops(n int) []domain.Workshop {
	workshops := make([]domain.Workshop, n)
	for i := range workshops {
		workshops[i] = domain.Workshop{ID: int64(i + 1), Name: "工作坊" + string(rune('A'+i))}
	}
	return workshops
}

func newTestReference(t *testing.T, snapshot *domain.Snapshot) *Reference {
	t.Helper()
	ref, err := NewReference(snapshot)
	require.NoError(t, err)
	return ref
}

// 把用户的空闲时间限制为给定的时间块
func restrictAvailability(t *testing.T, ref *Reference, uid int64, blocks ...int) {
	t.Helper()
	uIdx, ok := ref.userIndex[uid]
	require.True(t, ok)

	u := &ref.users[uIdx]
	u.available = [BlockCount]bool{}
	for _, b := range blocks {
		u.available[b] = true
	}
	u.availableCount = len(blocks)
}

// 按 assignment[i] 把第 i 个工作坊放入对应时间块
func planFromBlocks(t *testing.T, ref *Reference, assignment ...int) *Plan {
	t.Helper()
	require.Len(t, assignment, ref.WorkshopCount())

	p := NewPlan(ref)
	for i, block := range assignment {
		require.NoError(t, p.Add(block, ref.workshops[i].ID))
	}
	return p
}

// 检查方案的覆盖不变量：各时间块两两不相交，并集恰好是全部工作坊
func requireCoverage(t *testing.T, ref *Reference, p *Plan) {
	t.Helper()

	table := p.Table()
	require.Len(t, table, BlockCount)

	seen := make(map[int64]int)
	total := 0
	for block, wids := range table {
		require.Equal(t, p.Size(block), len(wids))
		for _, wid := range wids {
			prev, dup := seen[wid]
			require.False(t, dup, "工作坊 %d 同时出现在时间块 %d 和 %d", wid, prev, block)
			seen[wid] = block
			total++
		}
	}
	require.Equal(t, ref.WorkshopCount(), total)
	for _, wid := range ref.WorkshopIDs() {
		_, ok := seen[wid]
		require.True(t, ok, "工作坊 %d 不在任何时间块中", wid)
	}
}
