package scheduler

import "errors"

var (
	// ErrInvalidAssignment 表示非法的分配操作：重复分配、时间块越界或未知的工作坊
	ErrInvalidAssignment = errors.New("非法的工作坊分配")
	// ErrMissingWorkshop 表示被评估的方案没有覆盖全部工作坊
	ErrMissingWorkshop = errors.New("方案中缺少工作坊")
	// ErrInvariantViolation 表示内部逻辑错误（例如空闲时间块数量为负）
	ErrInvariantViolation = errors.New("内部不变量被破坏")
)
