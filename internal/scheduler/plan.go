package scheduler

import (
	"fmt"
	"math/rand"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

const unassigned int8 = -1

// Plan 是一个排班方案：每个工作坊被分配到恰好一个时间块
//
// 内部用工作坊下标 -> 时间块的数组表示，各时间块的大小单独计数，
// 因此移动是 O(1) 的，复制也不需要哈希表
type Plan struct {
	ref      *Reference
	blocks   []int8
	sizes    [BlockCount]int
	assigned int
}

func newEmptyPlan(ref *Reference) *Plan {
	blocks := make([]int8, ref.WorkshopCount())
	for i := range blocks {
		blocks[i] = unassigned
	}
	return &Plan{
		ref:    ref,
		blocks: blocks,
	}
}

// NewPlan 创建一个空方案，需要通过 Add 逐个放入工作坊
func NewPlan(ref *Reference) *Plan {
	return newEmptyPlan(ref)
}

// NewRandomPlan 把每个工作坊均匀随机地放入一个时间块
func NewRandomPlan(ref *Reference, rng *rand.Rand) *Plan {
	p := newEmptyPlan(ref)
	for i := range p.blocks {
		p.place(i, rng.Intn(BlockCount))
	}
	return p
}

// FromTable 按时间块表重放 Add 来重建方案，表中缺少工作坊同样视为错误
func FromTable(ref *Reference, table domain.BlockTable) (*Plan, error) {
	if len(table) != BlockCount {
		return nil, fmt.Errorf("%w: 时间块表应包含 %d 个时间块，实际为 %d", ErrInvalidAssignment, BlockCount, len(table))
	}

	p := newEmptyPlan(ref)
	for block, wids := range table {
		for _, wid := range wids {
			if err := p.Add(block, wid); err != nil {
				return nil, err
			}
		}
	}

	if !p.Complete() {
		return nil, fmt.Errorf("%w: 时间块表只包含 %d/%d 个工作坊", ErrMissingWorkshop, p.assigned, len(p.blocks))
	}

	return p, nil
}

func (p *Plan) Add(block int, wid int64) error {
	if block < 0 || block >= BlockCount {
		return fmt.Errorf("%w: 时间块 %d 越界", ErrInvalidAssignment, block)
	}
	idx, ok := p.ref.workshopOrdinal(wid)
	if !ok {
		return fmt.Errorf("%w: 未知的工作坊 %d", ErrInvalidAssignment, wid)
	}
	if p.blocks[idx] != unassigned {
		return fmt.Errorf("%w: 工作坊 %d 已经被分配到时间块 %d", ErrInvalidAssignment, wid, p.blocks[idx])
	}

	p.place(idx, block)
	return nil
}

// Block 返回工作坊所在的时间块
func (p *Plan) Block(wid int64) (int, bool) {
	idx, ok := p.ref.workshopOrdinal(wid)
	if !ok || p.blocks[idx] == unassigned {
		return 0, false
	}
	return int(p.blocks[idx]), true
}

// Size 返回时间块中的工作坊数量
func (p *Plan) Size(block int) int {
	return p.sizes[block]
}

// Complete 表示所有已知工作坊都已经被分配
func (p *Plan) Complete() bool {
	return p.assigned == len(p.blocks)
}

// Relocate 把工作坊随机移动到另外五个时间块之一，返回新的时间块
func (p *Plan) Relocate(rng *rand.Rand, wid int64) (int, error) {
	idx, err := p.assignedOrdinal(wid)
	if err != nil {
		return 0, err
	}

	target := randomOtherBlock(rng, int(p.blocks[idx]))
	p.move(idx, target)
	return target, nil
}

// RelocateTo 把工作坊移动到指定的时间块，目标必须与当前时间块不同
func (p *Plan) RelocateTo(wid int64, block int) error {
	if block < 0 || block >= BlockCount {
		return fmt.Errorf("%w: 时间块 %d 越界", ErrInvalidAssignment, block)
	}
	idx, err := p.assignedOrdinal(wid)
	if err != nil {
		return err
	}
	if int(p.blocks[idx]) == block {
		return fmt.Errorf("%w: 工作坊 %d 已经在时间块 %d 中", ErrInvalidAssignment, wid, block)
	}

	p.move(idx, block)
	return nil
}

// Exchange 交换两个工作坊所在的时间块
func (p *Plan) Exchange(a, b int64) error {
	idxA, err := p.assignedOrdinal(a)
	if err != nil {
		return err
	}
	idxB, err := p.assignedOrdinal(b)
	if err != nil {
		return err
	}

	p.exchange(idxA, idxB)
	return nil
}

// Clone 深拷贝方案，参考数据只读，所以可以共享
func (p *Plan) Clone() *Plan {
	blocks := make([]int8, len(p.blocks))
	copy(blocks, p.blocks)
	return &Plan{
		ref:      p.ref,
		blocks:   blocks,
		sizes:    p.sizes,
		assigned: p.assigned,
	}
}

// Table 返回交给网站后台的时间块表
func (p *Plan) Table() domain.BlockTable {
	table := make(domain.BlockTable, BlockCount)
	for block := range table {
		table[block] = make([]int64, 0, p.sizes[block])
	}
	for idx, block := range p.blocks {
		if block == unassigned {
			continue
		}
		table[block] = append(table[block], p.ref.workshops[idx].ID)
	}
	return table
}

func (p *Plan) assignedOrdinal(wid int64) (int, error) {
	idx, ok := p.ref.workshopOrdinal(wid)
	if !ok {
		return 0, fmt.Errorf("%w: 未知的工作坊 %d", ErrInvalidAssignment, wid)
	}
	if p.blocks[idx] == unassigned {
		return 0, fmt.Errorf("%w: 工作坊 %d 尚未被分配", ErrInvalidAssignment, wid)
	}
	return idx, nil
}

func (p *Plan) place(idx, block int) {
	p.blocks[idx] = int8(block)
	p.sizes[block]++
	p.assigned++
}

func (p *Plan) move(idx, block int) {
	p.sizes[p.blocks[idx]]--
	p.blocks[idx] = int8(block)
	p.sizes[block]++
}

// 两次移动必须顺序执行，且都基于调用前记录的时间块
func (p *Plan) exchange(idxA, idxB int) {
	blockA, blockB := int(p.blocks[idxA]), int(p.blocks[idxB])
	if blockA == blockB {
		return
	}
	p.move(idxA, blockB)
	p.move(idxB, blockA)
}

// 在当前时间块以外均匀随机地选一个时间块
func randomOtherBlock(rng *rand.Rand, current int) int {
	target := rng.Intn(BlockCount)
	for target == current {
		target = rng.Intn(BlockCount)
	}
	return target
}
