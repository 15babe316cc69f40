package domain

// Snapshot 是一次排班所需的全部输入数据（由网站后台导出）
type Snapshot struct {
	Workshops     []Workshop      `json:"workshops" validate:"required,dive"`
	Users         []User          `json:"users" validate:"dive"`
	Participation []Participation `json:"participation" validate:"dive"`
}
