package handler

import (
	"fmt"
	"net/http"

	"github.com/deppfellow/pixelmags/internal/errs"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/search"
	"github.com/deppfellow/pixelmags/internal/server"
	"github.com/deppfellow/pixelmags/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// DefaultPageSize is used when a search request does not set size.
const DefaultPageSize = 20

var validate = validator.New()

type IDRequest struct {
	ID int64 `param:"id" validate:"required,min=1"`
}

func (r *IDRequest) Validate() error {
	return validate.Struct(r)
}

type ListRequest struct {
	Filter string `query:"filter"`
}

func (r *ListRequest) Validate() error {
	return nil
}

type SearchRequest struct {
	Query string `query:"query"`
	Page  int    `query:"page" validate:"min=0,max=10000"`
	Size  int    `query:"size" validate:"min=0,max=1000"`
}

func (r *SearchRequest) Validate() error {
	return validate.Struct(r)
}

// Window converts page/size into an offset window.
func (r *SearchRequest) Window() search.Page {
	size := r.Size
	if size == 0 {
		size = DefaultPageSize
	}
	return search.PageAt(r.Page, size)
}

func newIDRequest() *IDRequest { return &IDRequest{} }
func newListRequest() *ListRequest { return &ListRequest{} }
func newSearchRequest() *SearchRequest { return &SearchRequest{} }

// EntityHandler serves the REST resource of one kind. Records are their own
// request bodies.
type EntityHandler[R model.Record] struct {
	Handler
	service   *service.EntityService[R]
	newRecord func() R
}

func NewEntityHandler[R model.Record](s *server.Server, svc *service.EntityService[R], newRecord func() R) *EntityHandler[R] {
	return &EntityHandler[R]{
		Handler:   NewHandler(s),
		service:   svc,
		newRecord: newRecord,
	}
}

func (h *EntityHandler[R]) Kind() model.Kind {
	return h.service.Kind()
}

// Register mounts the collection routes on api and the search route on
// searchGroup, both under the kind's plural name.
func (h *EntityHandler[R]) Register(api, searchGroup *echo.Group) {
	plural := "/" + h.Kind().Plural()

	api.POST(plural, h.Create())
	api.PUT(plural, h.Update())
	api.GET(plural, h.List())
	api.GET(plural+"/:id", h.Get())
	api.DELETE(plural+"/:id", h.Delete())

	searchGroup.GET(plural, h.Search())
}

func (h *EntityHandler[R]) Create() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, record R) (R, error) {
		return h.service.Create(c.Request().Context(), record)
	}, http.StatusCreated, h.newRecord)
}

func (h *EntityHandler[R]) Update() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, record R) (R, error) {
		return h.service.Update(c.Request().Context(), record)
	}, http.StatusOK, h.newRecord)
}

func (h *EntityHandler[R]) List() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *ListRequest) ([]R, error) {
		if req.Filter != "" {
			return h.service.FindAllWhere(c.Request().Context(), req.Filter)
		}
		return h.service.FindAll(c.Request().Context())
	}, http.StatusOK, newListRequest)
}

func (h *EntityHandler[R]) Get() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *IDRequest) (R, error) {
		return h.service.FindOne(c.Request().Context(), req.ID)
	}, http.StatusOK, newIDRequest)
}

func (h *EntityHandler[R]) Delete() echo.HandlerFunc {
	return HandleNoContent(h.Handler, func(c echo.Context, req *IDRequest) error {
		return h.service.Delete(c.Request().Context(), req.ID)
	}, http.StatusNoContent, newIDRequest)
}

func (h *EntityHandler[R]) Search() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *SearchRequest) ([]R, error) {
		return h.service.Search(c.Request().Context(), req.Query, req.Window())
	}, http.StatusOK, newSearchRequest)
}

// IssueHandler adds the cover download to the issue resource.
type IssueHandler struct {
	*EntityHandler[*model.Issue]
}

func (h *IssueHandler) Register(api, searchGroup *echo.Group) {
	h.EntityHandler.Register(api, searchGroup)
	api.GET("/"+h.Kind().Plural()+"/:id/cover", h.Cover())
}

// Cover returns the stored cover image of an issue, or 404 when the issue
// has none.
func (h *IssueHandler) Cover() echo.HandlerFunc {
	return HandleFile(h.Handler, func(c echo.Context, req *IDRequest) (File, error) {
		issue, err := h.service.FindOne(c.Request().Context(), req.ID)
		if err != nil {
			return File{}, err
		}
		if len(issue.Cover) == 0 {
			return File{}, errs.NewNotFoundError("Issue has no cover", true, nil)
		}
		return File{
			Name:        fmt.Sprintf("issue-%d-cover", issue.ID),
			ContentType: issue.CoverContentType,
			Data:        issue.Cover,
		}, nil
	}, http.StatusOK, newIDRequest)
}
