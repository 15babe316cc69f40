package domain

import "time"

// BlockTable 按时间块顺序（0..5）列出每个时间块中的工作坊 ID，块内顺序无意义
type BlockTable [][]int64

type PlanResult struct {
	ID          int64      `json:"id"`
	Score       int64      `json:"score"`
	Generations int        `json:"generations"`
	Blocks      BlockTable `json:"blocks"`
	CreatedAt   time.Time  `json:"createdAt"`
}
