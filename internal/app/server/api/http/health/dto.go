package health

import "time"

type Input struct{}

type Output struct {
	Body Response
}

type Response struct {
	Status    string    `json:"status" example:"OK"`
	Database  string    `json:"database,omitempty" example:"OK" doc:"Database status, readiness only"`
	Uptime    string    `json:"uptime" example:"3h12m5s"`
	CheckedAt time.Time `json:"checked_at"`
}
