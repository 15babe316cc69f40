package scheduler

import (
	"context"
	"math/rand"
	"time"
)

// 各项惩罚的权重
const (
	LecturerConflictPenalty int64 = 1_000_000
	DisallowedBlockPenalty  int64 = 1_000
	BlockBalancePenalty     int64 = 10_000

	// 时间块大小与目标值相差超过该阈值时才输出诊断信息（惩罚始终计算）
	blockBalanceThreshold = 0.9
)

const DefaultPopulationSize = 1000

// 搜索参数
type Parameters struct {
	PopulationSize int           // 种群大小
	Workers        int           // 并行的 worker 数量，0 表示使用 GOMAXPROCS
	Seed           int64         // 随机种子，0 表示使用当前时间
	ReportInterval time.Duration // 汇报最好分数的最小间隔
	MaxGenerations int           // 最大迭代次数，0 表示一直运行直到被取消
}

func DefaultParameters() *Parameters {
	return &Parameters{
		PopulationSize: DefaultPopulationSize,
		ReportInterval: time.Second,
	}
}

// Progress 是搜索过程中的一次进度快照
type Progress struct {
	Generation     int           `json:"generation"`
	BestScore      int64         `json:"bestScore"`
	Accepted       uint64        `json:"accepted"` // 累计被接受的变异次数
	Rejected       uint64        `json:"rejected"` // 累计被拒绝的变异次数
	PopulationSize int           `json:"populationSize"`
	Elapsed        time.Duration `json:"elapsed"`
	Done           bool          `json:"done"`
}

// Reporter 接收搜索进度
// Report 在搜索循环以外的 goroutine 中依次调用，来不及汇报的中间进度会被丢弃，
// 最后一次 Done 进度一定会送达
type Reporter interface {
	Report(ctx context.Context, p Progress)
}

type ReporterFunc func(ctx context.Context, p Progress)

func (f ReporterFunc) Report(ctx context.Context, p Progress) {
	f(ctx, p)
}

// Result 是一次搜索的最终结果
type Result struct {
	Plan        *Plan
	Score       int64
	Generations int
	Aborted     bool // 是否因外部取消而结束
	Elapsed     time.Duration
}

// 轮询游标，每次调用后工作坊下标和时间块下标同时前进
type cursor struct {
	workshop int
	block    int
}

// advance 不只是两个下标各自取模：每个个体只有一个游标，工作坊数量是 BlockCount 的
// 倍数时，单纯取模会让每个工作坊永远只被移到同一个时间块，所以每扫完一轮工作坊
// 额外错开一个时间块。不要把它改回单纯取模，TestCursor_ShiftsBlockAfterFullSweep 覆盖了这一点
func (c *cursor) advance(workshopCount int) {
	c.workshop = (c.workshop + 1) % workshopCount
	c.block = (c.block + 1) % BlockCount
	if c.workshop == 0 && workshopCount%BlockCount == 0 {
		c.block = (c.block + 1) % BlockCount
	}
}

// 种群中的一个个体，只属于一条演化线
type individual struct {
	plan   *Plan
	score  int64
	rng    *rand.Rand
	cursor cursor
}
