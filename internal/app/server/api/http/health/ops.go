package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// livenessOp отвечает, пока процесс жив; клиенты по нему проверяют связь
func (h *Handler) livenessOp() huma.Operation {
	return huma.Operation{
		OperationID: "health-live",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Liveness check",
		Description: "Always OK while the process serves requests. Used by clients to detect connectivity.",
		Tags:        []string{"health"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) readinessOp() huma.Operation {
	return huma.Operation{
		OperationID: "health-ready",
		Method:      http.MethodGet,
		Path:        "/health/ready",
		Summary:     "Readiness check",
		Description: "Checks the database. Returns 503 while it is unreachable.",
		Tags:        []string{"health"},
		Errors:      []int{http.StatusServiceUnavailable},
		Middlewares: h.middleware,
	}
}
