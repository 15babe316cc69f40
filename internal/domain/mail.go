package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type PlanResultMailData struct {
	Score       int64  `json:"score"`
	Generations int    `json:"generations"`
	Aborted     bool   `json:"aborted"`
	Table       string `json:"table"`
	Report      string `json:"report"`
}
