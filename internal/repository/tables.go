package repository

import (
	"time"

	"github.com/deppfellow/pixelmags/internal/model"
)

// Filter names accepted by FindAllWhere.
const (
	FilterMagazineIsNull = "magazine-is-null"
	FilterPurchaseIsNull = "purchase-is-null"
	FilterCustomerIsNull = "customer-is-null"
)

// nullTime binds zero times as NULL so column defaults apply.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

var customerTable = Table[*model.Customer]{
	Name:    "customer",
	Kind:    model.KindCustomer,
	Columns: []string{"name", "email"},
	New:     func() *model.Customer { return &model.Customer{} },
	Values: func(c *model.Customer) []any {
		return []any{c.Name, c.Email}
	},
	Targets: func(c *model.Customer) []any {
		return []any{&c.Name, &c.Email}
	},
}

var deviceTable = Table[*model.Device]{
	Name:    "device",
	Kind:    model.KindDevice,
	Columns: []string{"identifier", "platform", "customer_id"},
	Filters: map[string]string{
		FilterCustomerIsNull: "customer_id IS NULL",
	},
	New: func() *model.Device { return &model.Device{} },
	Values: func(d *model.Device) []any {
		return []any{d.Identifier, string(d.Platform), d.CustomerID}
	},
	Targets: func(d *model.Device) []any {
		return []any{&d.Identifier, &d.Platform, &d.CustomerID}
	},
}

var issueTable = Table[*model.Issue]{
	Name:    "issue",
	Kind:    model.KindIssue,
	Columns: []string{"number", "title", "published_at", "cover", "cover_content_type", "magazine_id"},
	Filters: map[string]string{
		FilterMagazineIsNull: "magazine_id IS NULL",
	},
	New: func() *model.Issue { return &model.Issue{} },
	Values: func(i *model.Issue) []any {
		return []any{i.Number, i.Title, i.PublishedAt, i.Cover, i.CoverContentType, i.MagazineID}
	},
	Targets: func(i *model.Issue) []any {
		return []any{&i.Number, &i.Title, &i.PublishedAt, &i.Cover, &i.CoverContentType, &i.MagazineID}
	},
}

var logTable = Table[*model.Log]{
	Name:    "log",
	Kind:    model.KindLog,
	Columns: []string{"event", "message", "created_at"},
	Defaults: map[string]string{
		"created_at": "CURRENT_TIMESTAMP",
	},
	New: func() *model.Log { return &model.Log{} },
	Values: func(l *model.Log) []any {
		return []any{l.Event, l.Message, nullTime(l.CreatedAt)}
	},
	Targets: func(l *model.Log) []any {
		return []any{&l.Event, &l.Message, &l.CreatedAt}
	},
}

var magazineTable = Table[*model.Magazine]{
	Name:    "magazine",
	Kind:    model.KindMagazine,
	Columns: []string{"code", "price", "publisher_id"},
	New:     func() *model.Magazine { return &model.Magazine{} },
	Values: func(m *model.Magazine) []any {
		return []any{m.Code, m.Price, m.PublisherID}
	},
	Targets: func(m *model.Magazine) []any {
		return []any{&m.Code, &m.Price, &m.PublisherID}
	},
}

var publisherTable = Table[*model.Publisher]{
	Name:    "publisher",
	Kind:    model.KindPublisher,
	Columns: []string{"name", "registered_at"},
	New:     func() *model.Publisher { return &model.Publisher{} },
	Values: func(p *model.Publisher) []any {
		return []any{p.Name, p.RegisteredAt}
	},
	Targets: func(p *model.Publisher) []any {
		return []any{&p.Name, &p.RegisteredAt}
	},
}

var purchaseTable = Table[*model.Purchase]{
	Name:    "purchase",
	Kind:    model.KindPurchase,
	Columns: []string{"date", "type", "customer_id", "magazine_id", "subscription_plan_id"},
	Filters: map[string]string{
		FilterMagazineIsNull: "magazine_id IS NULL",
	},
	New: func() *model.Purchase { return &model.Purchase{} },
	Values: func(p *model.Purchase) []any {
		return []any{p.Date, string(p.Type), p.CustomerID, p.MagazineID, p.SubscriptionPlanID}
	},
	Targets: func(p *model.Purchase) []any {
		return []any{&p.Date, &p.Type, &p.CustomerID, &p.MagazineID, &p.SubscriptionPlanID}
	},
}

var subscriptionPlanTable = Table[*model.SubscriptionPlan]{
	Name:    "subscription_plan",
	Kind:    model.KindSubscriptionPlan,
	Columns: []string{"name", "duration_months", "price"},
	Filters: map[string]string{
		FilterPurchaseIsNull: "NOT EXISTS (SELECT 1 FROM purchase p WHERE p.subscription_plan_id = subscription_plan.id)",
	},
	New: func() *model.SubscriptionPlan { return &model.SubscriptionPlan{} },
	Values: func(s *model.SubscriptionPlan) []any {
		return []any{s.Name, s.DurationMonths, s.Price}
	},
	Targets: func(s *model.SubscriptionPlan) []any {
		return []any{&s.Name, &s.DurationMonths, &s.Price}
	},
}
