package search

import (
	"github.com/deppfellow/pixelmags/internal/model"
)

var CustomerMapper Mapper[*model.Customer] = &recordMapper[*model.Customer]{
	kind: model.KindCustomer,
	schema: Schema{
		{Name: "name", Type: FieldText},
		{Name: "email", Type: FieldKeyword},
	},
	newR: func() *model.Customer { return &model.Customer{} },
	encode: func(c *model.Customer, w fieldWriter) {
		w.str("name", c.Name)
		w.str("email", c.Email)
	},
	decode: func(c *model.Customer, r *fieldReader) {
		c.Name = r.str("name")
		c.Email = r.str("email")
	},
}

var DeviceMapper Mapper[*model.Device] = &recordMapper[*model.Device]{
	kind: model.KindDevice,
	schema: Schema{
		{Name: "identifier", Type: FieldKeyword},
		{Name: "platform", Type: FieldKeyword},
		{Name: "customerId", Type: FieldKeyword},
	},
	newR: func() *model.Device { return &model.Device{} },
	encode: func(d *model.Device, w fieldWriter) {
		w.str("identifier", d.Identifier)
		w.str("platform", string(d.Platform))
		w.ref("customerId", d.CustomerID)
	},
	decode: func(d *model.Device, r *fieldReader) {
		d.Identifier = r.str("identifier")
		d.Platform = model.Platform(r.str("platform"))
		d.CustomerID = r.ref("customerId")
	},
}

// IssueMapper leaves the cover image out of the index. Issues rebuilt from
// search hits have no Cover or CoverContentType.
var IssueMapper Mapper[*model.Issue] = &recordMapper[*model.Issue]{
	kind: model.KindIssue,
	schema: Schema{
		{Name: "number", Type: FieldNumeric},
		{Name: "title", Type: FieldText},
		{Name: "publishedAt", Type: FieldDateTime},
		{Name: "magazineId", Type: FieldKeyword},
	},
	newR: func() *model.Issue { return &model.Issue{} },
	encode: func(i *model.Issue, w fieldWriter) {
		w.num("number", float64(i.Number))
		w.str("title", i.Title)
		w.time("publishedAt", i.PublishedAt)
		w.ref("magazineId", i.MagazineID)
	},
	decode: func(i *model.Issue, r *fieldReader) {
		i.Number = r.int("number")
		i.Title = r.str("title")
		i.PublishedAt = r.time("publishedAt")
		i.MagazineID = r.ref("magazineId")
	},
}

var LogMapper Mapper[*model.Log] = &recordMapper[*model.Log]{
	kind: model.KindLog,
	schema: Schema{
		{Name: "event", Type: FieldKeyword},
		{Name: "message", Type: FieldText},
		{Name: "createdAt", Type: FieldDateTime},
	},
	newR: func() *model.Log { return &model.Log{} },
	encode: func(l *model.Log, w fieldWriter) {
		w.str("event", l.Event)
		w.str("message", l.Message)
		w.time("createdAt", l.CreatedAt)
	},
	decode: func(l *model.Log, r *fieldReader) {
		l.Event = r.str("event")
		l.Message = r.str("message")
		l.CreatedAt = r.time("createdAt")
	},
}

var MagazineMapper Mapper[*model.Magazine] = &recordMapper[*model.Magazine]{
	kind: model.KindMagazine,
	schema: Schema{
		{Name: "code", Type: FieldKeyword},
		{Name: "price", Type: FieldNumeric},
		{Name: "publisherId", Type: FieldKeyword},
	},
	newR: func() *model.Magazine { return &model.Magazine{} },
	encode: func(m *model.Magazine, w fieldWriter) {
		w.str("code", m.Code)
		w.money("price", m.Price)
		w.ref("publisherId", m.PublisherID)
	},
	decode: func(m *model.Magazine, r *fieldReader) {
		m.Code = r.str("code")
		m.Price = r.money("price")
		m.PublisherID = r.ref("publisherId")
	},
}

var PublisherMapper Mapper[*model.Publisher] = &recordMapper[*model.Publisher]{
	kind: model.KindPublisher,
	schema: Schema{
		{Name: "name", Type: FieldText},
		{Name: "registeredAt", Type: FieldDateTime},
	},
	newR: func() *model.Publisher { return &model.Publisher{} },
	encode: func(p *model.Publisher, w fieldWriter) {
		w.str("name", p.Name)
		w.time("registeredAt", p.RegisteredAt)
	},
	decode: func(p *model.Publisher, r *fieldReader) {
		p.Name = r.str("name")
		p.RegisteredAt = r.time("registeredAt")
	},
}

var PurchaseMapper Mapper[*model.Purchase] = &recordMapper[*model.Purchase]{
	kind: model.KindPurchase,
	schema: Schema{
		{Name: "date", Type: FieldDateTime},
		{Name: "type", Type: FieldKeyword},
		{Name: "customerId", Type: FieldKeyword},
		{Name: "magazineId", Type: FieldKeyword},
		{Name: "subscriptionPlanId", Type: FieldKeyword},
	},
	newR: func() *model.Purchase { return &model.Purchase{} },
	encode: func(p *model.Purchase, w fieldWriter) {
		w.time("date", p.Date)
		w.str("type", string(p.Type))
		w.ref("customerId", p.CustomerID)
		w.ref("magazineId", p.MagazineID)
		w.ref("subscriptionPlanId", p.SubscriptionPlanID)
	},
	decode: func(p *model.Purchase, r *fieldReader) {
		p.Date = r.time("date")
		p.Type = model.PurchaseType(r.str("type"))
		p.CustomerID = r.ref("customerId")
		p.MagazineID = r.ref("magazineId")
		p.SubscriptionPlanID = r.ref("subscriptionPlanId")
	},
}

var SubscriptionPlanMapper Mapper[*model.SubscriptionPlan] = &recordMapper[*model.SubscriptionPlan]{
	kind: model.KindSubscriptionPlan,
	schema: Schema{
		{Name: "name", Type: FieldText},
		{Name: "durationMonths", Type: FieldNumeric},
		{Name: "price", Type: FieldNumeric},
	},
	newR: func() *model.SubscriptionPlan { return &model.SubscriptionPlan{} },
	encode: func(s *model.SubscriptionPlan, w fieldWriter) {
		w.str("name", s.Name)
		w.num("durationMonths", float64(s.DurationMonths))
		w.money("price", s.Price)
	},
	decode: func(s *model.SubscriptionPlan, r *fieldReader) {
		s.Name = r.str("name")
		s.DurationMonths = r.int("durationMonths")
		s.Price = r.money("price")
	},
}

// Schemas maps every kind to its document schema.
var Schemas = map[model.Kind]Schema{
	model.KindCustomer:         CustomerMapper.Schema(),
	model.KindDevice:           DeviceMapper.Schema(),
	model.KindIssue:            IssueMapper.Schema(),
	model.KindLog:              LogMapper.Schema(),
	model.KindMagazine:         MagazineMapper.Schema(),
	model.KindPublisher:        PublisherMapper.Schema(),
	model.KindPurchase:         PurchaseMapper.Schema(),
	model.KindSubscriptionPlan: SubscriptionPlanMapper.Schema(),
}
