package domain

import "encoding/json"

type User struct {
	ID   int64  `json:"uid" validate:"required"`
	Name string `json:"name"`
	// Start 和 End 只是为了兼容导出的数据格式，排班时不使用
	Start json.RawMessage `json:"start,omitempty"`
	End   json.RawMessage `json:"end,omitempty"`
}

type Participation struct {
	UserID     int64 `json:"uid" validate:"required"`
	WorkshopID int64 `json:"wid" validate:"required"`
}
