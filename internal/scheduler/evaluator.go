package scheduler

import (
	"fmt"
	"io"
	"math"
)

// Breakdown 是方案得分的各项组成，每一项都不大于 0
type Breakdown struct {
	Lecturer    int64 `json:"lecturer"`    // 讲师没空
	Disallowed  int64 `json:"disallowed"`  // 放在了禁止的时间块
	Balance     int64 `json:"balance"`     // 各时间块工作坊数量不均衡
	EmptyBlocks int64 `json:"emptyBlocks"` // 用户的空闲时间块
	Collisions  int64 `json:"collisions"`  // 参与者的时间冲突
}

// Base 是除冲突项以外的惩罚之和
func (b Breakdown) Base() int64 {
	return b.Lecturer + b.Disallowed + b.Balance + b.EmptyBlocks
}

func (b Breakdown) Total() int64 {
	return b.Base() + b.Collisions
}

// Score 计算方案的得分，越接近 0 越好
func Score(ref *Reference, p *Plan) (int64, error) {
	b, err := Evaluate(ref, p, nil)
	if err != nil {
		return 0, err
	}
	return b.Total(), nil
}

/**
 * 计算方案得分的各项组成
 * 1. 讲师冲突：讲师不在工作坊所在的时间块有空，每次扣 LecturerConflictPenalty
 * 2. 禁止时间块：工作坊被放在了它禁止的时间块，每次扣 DisallowedBlockPenalty
 * 3. 均衡性：每个时间块扣 |n/6 - size| * BlockBalancePenalty
 * 4. 对每个用户，同一时间块中参与多个工作坊时，这些工作坊的冲突计数各加 1，
 *    另外按空闲时间块数 e 扣 e^e；最后每个工作坊扣冲突计数的平方
 * diag 不为 nil 时输出每一项违规的诊断信息
 */
func Evaluate(ref *Reference, p *Plan, diag io.Writer) (Breakdown, error) {
	var b Breakdown

	if p.ref != ref || len(p.blocks) != ref.WorkshopCount() {
		return b, fmt.Errorf("%w: 方案与参考数据不匹配", ErrMissingWorkshop)
	}
	for idx, block := range p.blocks {
		if block == unassigned {
			return b, fmt.Errorf("%w: 工作坊 %d 没有被分配", ErrMissingWorkshop, ref.workshops[idx].ID)
		}
	}

	for idx, lecturers := range ref.lecturers {
		block := p.blocks[idx]
		for _, uIdx := range lecturers {
			if !ref.users[uIdx].available[block] {
				if diag != nil {
					fmt.Fprintf(diag, "讲师时间冲突\n\tlec_uid=%d wid=%d\n", ref.users[uIdx].id, ref.workshops[idx].ID)
				}
				b.Lecturer -= LecturerConflictPenalty
			}
		}
	}

	for idx, ws := range ref.workshops {
		for _, disallowed := range ws.DisallowedBlocks {
			if int(p.blocks[idx]) == disallowed {
				if diag != nil {
					fmt.Fprintf(diag, "禁止的时间块\n\twid=%d block=%d %s\n", ws.ID, disallowed, ws.Name)
				}
				b.Disallowed -= DisallowedBlockPenalty
			}
		}
	}

	b.Balance = balancePenalty(p, diag)

	collisions := make([]int64, len(p.blocks))
	for _, u := range ref.users {
		var counts [BlockCount]int
		for _, wsIdx := range u.part {
			block := p.blocks[wsIdx]
			if u.available[block] {
				counts[block]++
			}
		}

		used := 0
		for _, c := range counts {
			if c > 0 {
				used++
			}
		}

		for _, wsIdx := range u.part {
			block := p.blocks[wsIdx]
			if u.available[block] && counts[block] > 1 {
				collisions[wsIdx]++
			}
		}

		emptyBlocks := min(u.availableCount, len(u.part)) - used
		if emptyBlocks < 0 {
			return b, fmt.Errorf("%w: 用户 %d 的空闲时间块数量为 %d", ErrInvariantViolation, u.id, emptyBlocks)
		}
		if emptyBlocks > 0 {
			if diag != nil {
				fmt.Fprintf(diag, "%d 个空闲时间块: %s\n\tuid=%d\n", emptyBlocks, u.name, u.id)
			}
			b.EmptyBlocks -= intPow(int64(emptyBlocks), int64(emptyBlocks))
		}
	}

	for _, c := range collisions {
		b.Collisions -= c * c
	}

	return b, nil
}

// sum(|n/6 - size|) * 10000 的精确整数形式：sum(|n - 6*size|) * 10000 / 6，四舍五入
func balancePenalty(p *Plan, diag io.Writer) int64 {
	n := int64(len(p.blocks))
	target := float64(n) / BlockCount

	var deviation int64
	for block, size := range p.sizes {
		d := absInt64(n - BlockCount*int64(size))
		if diag != nil && math.Abs(target-float64(size)) > blockBalanceThreshold {
			fmt.Fprintf(diag, "时间块 %d 中的工作坊数量不正确: %d（目标 %.2f）\n", block, size, target)
		}
		deviation += d
	}

	return -((deviation*BlockBalancePenalty + BlockCount/2) / BlockCount)
}
