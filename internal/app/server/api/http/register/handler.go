package register

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"herdbook/internal/app/server/api/http/middleware/auth"
	"herdbook/internal/domain/animal"
)

type Handler struct {
	service    animal.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service animal.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "register_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.insertOp(), h.insert)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.exportOp(), h.export)
}

func (h *Handler) insert(ctx context.Context, input *insertInput) (*insertOutput, error) {
	tenantID, ok := auth.GetTenantID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	id, err := h.service.Register(ctx, tenantID, input.Body)
	if err != nil {
		return nil, h.mapError(err)
	}

	return &insertOutput{
		Body: animal.InsertResponse{ID: id, Status: "Ok"},
	}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*statusOutput, error) {
	tenantID, ok := auth.GetTenantID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.Update(ctx, tenantID, input.ID, input.Body); err != nil {
		return nil, h.mapError(err)
	}

	return &statusOutput{Body: animal.StatusResponse{Status: "Ok"}}, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*statusOutput, error) {
	tenantID, ok := auth.GetTenantID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.Delete(ctx, tenantID, input.Body); err != nil {
		return nil, h.mapError(err)
	}

	return &statusOutput{Body: animal.StatusResponse{Status: "Ok"}}, nil
}

func (h *Handler) export(ctx context.Context, input *exportInput) (*exportOutput, error) {
	tenantID, ok := auth.GetTenantID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	filter, err := parseRange(input.Start, input.End)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	resp, err := h.service.Export(ctx, tenantID, filter)
	if err != nil {
		return nil, h.mapError(err)
	}

	return &exportOutput{Body: resp}, nil
}

// parseRange turns day bounds into an inclusive time range
func parseRange(start, end string) (animal.ExportFilter, error) {
	var filter animal.ExportFilter

	if start != "" {
		t, err := time.Parse(animal.BornDateLayout, start)
		if err != nil {
			return filter, errors.New("start must be YYYY-MM-DD")
		}
		filter.Start = &t
	}
	if end != "" {
		t, err := time.Parse(animal.BornDateLayout, end)
		if err != nil {
			return filter, errors.New("end must be YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.End = &t
	}

	return filter, nil
}

func (h *Handler) mapError(err error) error {
	switch {
	case errors.Is(err, animal.ErrNotFound):
		return huma.Error404NotFound("registration not found")
	case errors.Is(err, animal.ErrInvalidFields), errors.Is(err, animal.ErrInvalidRange):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		h.log.Error("request failed", "error", err)
		return huma.Error500InternalServerError("internal error")
	}
}
