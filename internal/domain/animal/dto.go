package animal

import "time"

// InsertRequest тело POST /register
type InsertRequest struct {
	Fields
	CreatedAt time.Time `json:"created_at" doc:"Client-side creation time, part of the natural key"`
}

// InsertResponse ответ на POST /register
type InsertResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status" example:"Ok"`
}

// DeleteRequest тело DELETE /register
type DeleteRequest struct {
	AnimalNumber string    `json:"animal_number" minLength:"1"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExportFilter фильтр выгрузки по дате создания, границы включительно
type ExportFilter struct {
	Start *time.Time
	End   *time.Time
}

// ExportResponse ответ GET /export
type ExportResponse struct {
	Count int            `json:"count"`
	Items []Registration `json:"items"`
}

// StatusResponse общий ответ со статусом
type StatusResponse struct {
	Status string `json:"status" example:"Ok"`
}
