package register

import (
	"herdbook/internal/domain/animal"
)

type insertInput struct {
	Body animal.InsertRequest
}

type insertOutput struct {
	Body animal.InsertResponse
}

type updateInput struct {
	ID   int64 `path:"id" example:"1" doc:"Server id of the registration"`
	Body animal.Fields
}

type deleteInput struct {
	Body animal.DeleteRequest
}

type statusOutput struct {
	Body animal.StatusResponse
}

type exportInput struct {
	Format string `query:"format" default:"json" enum:"json" doc:"Export format"`
	Start  string `query:"start" doc:"First creation day, YYYY-MM-DD, inclusive"`
	End    string `query:"end" doc:"Last creation day, YYYY-MM-DD, inclusive"`
}

type exportOutput struct {
	Body animal.ExportResponse
}
