package register

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) insertOp() huma.Operation {
	return huma.Operation{
		OperationID: "register-insert",
		Method:      http.MethodPost,
		Path:        "/register",
		Summary:     "Create a registration",
		Description: "Idempotent on (animal_number, created_at): repeating the call returns the same id.",
		Tags:        []string{"register"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "register-update",
		Method:      http.MethodPut,
		Path:        "/register/{id}",
		Summary:     "Update a registration",
		Tags:        []string{"register"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "register-delete",
		Method:      http.MethodDelete,
		Path:        "/register",
		Summary:     "Delete a registration by natural key",
		Tags:        []string{"register"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) exportOp() huma.Operation {
	return huma.Operation{
		OperationID: "register-export",
		Method:      http.MethodGet,
		Path:        "/export",
		Summary:     "Export registrations",
		Description: "Returns every registration of the tenant, optionally limited by creation day.",
		Tags:        []string{"export"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
