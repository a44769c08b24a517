package handler

import (
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/server"
	"github.com/deppfellow/pixelmags/internal/service"
	"github.com/labstack/echo/v4"
)

// Resource is a REST resource that mounts its own routes.
type Resource interface {
	Kind() model.Kind
	Register(api, searchGroup *echo.Group)
}

// Handlers groups every HTTP handler.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Admin   *AdminHandler

	Customers         *EntityHandler[*model.Customer]
	Devices           *EntityHandler[*model.Device]
	Issues            *IssueHandler
	Logs              *EntityHandler[*model.Log]
	Magazines         *EntityHandler[*model.Magazine]
	Publishers        *EntityHandler[*model.Publisher]
	Purchases         *EntityHandler[*model.Purchase]
	SubscriptionPlans *EntityHandler[*model.SubscriptionPlan]
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Admin:   NewAdminHandler(s, services),

		Customers: NewEntityHandler(s, services.Customers, func() *model.Customer { return &model.Customer{} }),
		Devices:   NewEntityHandler(s, services.Devices, func() *model.Device { return &model.Device{} }),
		Issues: &IssueHandler{
			EntityHandler: NewEntityHandler(s, services.Issues, func() *model.Issue { return &model.Issue{} }),
		},
		Logs:              NewEntityHandler(s, services.Logs, func() *model.Log { return &model.Log{} }),
		Magazines:         NewEntityHandler(s, services.Magazines, func() *model.Magazine { return &model.Magazine{} }),
		Publishers:        NewEntityHandler(s, services.Publishers, func() *model.Publisher { return &model.Publisher{} }),
		Purchases:         NewEntityHandler(s, services.Purchases, func() *model.Purchase { return &model.Purchase{} }),
		SubscriptionPlans: NewEntityHandler(s, services.SubscriptionPlans, func() *model.SubscriptionPlan { return &model.SubscriptionPlan{} }),
	}
}

// Resources lists the entity resources in kind order.
func (h *Handlers) Resources() []Resource {
	return []Resource{
		h.Customers,
		h.Devices,
		h.Issues,
		h.Logs,
		h.Magazines,
		h.Publishers,
		h.Purchases,
		h.SubscriptionPlans,
	}
}
