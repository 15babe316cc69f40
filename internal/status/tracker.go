package status

import (
	"context"
	"sync"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/scheduler"
)

// State 是某一时刻的搜索状态
type State struct {
	Progress scheduler.Progress `json:"progress"`
	Result   *FinalResult       `json:"result,omitempty"`
}

type FinalResult struct {
	Score       int64             `json:"score"`
	Generations int               `json:"generations"`
	Aborted     bool              `json:"aborted"`
	Blocks      domain.BlockTable `json:"blocks"`
}

// Tracker 记录最新的进度和最终结果，供状态服务读取
type Tracker struct {
	mu       sync.RWMutex
	progress scheduler.Progress
	result   *FinalResult
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Report(_ context.Context, p scheduler.Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress = p
}

func (t *Tracker) SetResult(res *scheduler.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result = &FinalResult{
		Score:       res.Score,
		Generations: res.Generations,
		Aborted:     res.Aborted,
		Blocks:      res.Plan.Table(),
	}
}

func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return State{Progress: t.progress, Result: t.result}
}

// Result 返回最终结果，搜索尚未结束时返回 false
func (t *Tracker) Result() (*FinalResult, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.result, t.result != nil
}
