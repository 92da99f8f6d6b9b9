package health

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	db         Pinger
	log        *slog.Logger
	middleware huma.Middlewares
	started    time.Time
	now        func() time.Time
}

// NewHandler creates the handler; a nil db makes readiness equal to liveness
func NewHandler(db Pinger, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		db:         db,
		log:        log.With(slog.String("component", "health")),
		middleware: middleware,
		started:    time.Now(),
		now:        time.Now,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.livenessOp(), h.live)
	huma.Register(api, h.readinessOp(), h.ready)
}

func (h *Handler) live(_ context.Context, _ *Input) (*Output, error) {
	return &Output{Body: h.response()}, nil
}

func (h *Handler) ready(ctx context.Context, _ *Input) (*Output, error) {
	out := &Output{Body: h.response()}
	if h.db == nil {
		return out, nil
	}

	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("database ping failed", "error", err)
		return nil, huma.Error503ServiceUnavailable("database unavailable")
	}
	out.Body.Database = "OK"

	return out, nil
}

func (h *Handler) response() Response {
	now := h.now()
	return Response{
		Status:    "OK",
		Uptime:    now.Sub(h.started).Truncate(time.Second).String(),
		CheckedAt: now.UTC(),
	}
}
