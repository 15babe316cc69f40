package scheduler

import (
	"math/rand"
)

// newIndividual 随机初始化第 i 个个体并计算得分，不同个体的游标从不同位置开始
func newIndividual(ref *Reference, i int, seed int64) (*individual, error) {
	rng := rand.New(rand.NewSource(seed))
	plan := NewRandomPlan(ref, rng)

	score, err := Score(ref, plan)
	if err != nil {
		return nil, err
	}

	ind := &individual{
		plan:  plan,
		score: score,
		rng:   rng,
	}
	if n := ref.WorkshopCount(); n > 0 {
		ind.cursor = cursor{workshop: i % n, block: i % BlockCount}
	}
	return ind, nil
}

// 按轮询游标移动一个工作坊，游标每次调用后都会前进
// 游标指向的时间块恰好是当前时间块时改为随机移动，保证不会原地不动
func relocateByCursor(p *Plan, rng *rand.Rand, c *cursor) {
	idx := c.workshop
	if int(p.blocks[idx]) == c.block {
		p.move(idx, randomOtherBlock(rng, c.block))
	} else {
		p.move(idx, c.block)
	}
	c.advance(len(p.blocks))
}

// 随机选两个工作坊交换时间块，两者可能相同，此时相当于什么都不做
func exchangeRandom(p *Plan, rng *rand.Rand) {
	a := rng.Intn(len(p.blocks))
	b := rng.Intn(len(p.blocks))
	p.exchange(a, b)
}

// 变异
// 复制当前方案，执行 1 到 2 次变异（每次以相同概率选择轮询移动或随机交换），
// 新方案不比原方案差时替换原方案
func (ind *individual) improve(ref *Reference) (bool, error) {
	if len(ind.plan.blocks) == 0 {
		return true, nil
	}

	candidate := ind.plan.Clone()
	times := ind.rng.Intn(2) + 1
	for i := 0; i < times; i++ {
		if ind.rng.Intn(2) == 0 {
			relocateByCursor(candidate, ind.rng, &ind.cursor)
		} else {
			exchangeRandom(candidate, ind.rng)
		}
	}

	score, err := Score(ref, candidate)
	if err != nil {
		return false, err
	}

	// 允许得分相同的方案替换，便于在平台上移动
	if score >= ind.score {
		ind.plan = candidate
		ind.score = score
		return true, nil
	}
	return false, nil
}
