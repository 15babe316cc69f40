package domain

// BlockCount 为活动的时间块数量，固定为 6
const BlockCount = 6

type Workshop struct {
	ID               int64   `json:"wid" validate:"required"`
	Name             string  `json:"name"`
	Lecturers        []int64 `json:"lecturers" validate:"dive,required"`
	DisallowedBlocks []int   `json:"disallowed_blocks" validate:"dive,min=0,max=5"`
}
