package handler

import (
	"net/http"

	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/server"
	"github.com/deppfellow/pixelmags/internal/service"
	"github.com/deppfellow/pixelmags/internal/validation"
	"github.com/labstack/echo/v4"
)

type ReindexRequest struct {
	Kind string `param:"kind"`
}

func (r *ReindexRequest) Validate() error {
	if r.Kind == "" {
		return nil
	}
	if _, ok := model.ParseKind(r.Kind); !ok {
		return validation.CustomValidationErrors{
			{Field: "kind", Message: "is not a known entity kind"},
		}
	}
	return nil
}

// Kinds returns the kinds to rebuild; empty means all of them.
func (r *ReindexRequest) Kinds() []model.Kind {
	if kind, ok := model.ParseKind(r.Kind); ok {
		return []model.Kind{kind}
	}
	return nil
}

// AdminHandler serves maintenance endpoints.
type AdminHandler struct {
	Handler
	services *service.Services
}

func NewAdminHandler(s *server.Server, services *service.Services) *AdminHandler {
	return &AdminHandler{
		Handler:  NewHandler(s),
		services: services,
	}
}

// Reindex rebuilds one index, or every index when no kind is given, from
// the entity store.
func (h *AdminHandler) Reindex() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *ReindexRequest) ([]service.ReindexResult, error) {
		return h.services.Reindex(c.Request().Context(), req.Kinds()...)
	}, http.StatusOK, func() *ReindexRequest { return &ReindexRequest{} })
}
