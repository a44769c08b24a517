package search

import (
	"context"
	"testing"
	"time"

	"github.com/deppfellow/pixelmags/internal/config"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func configFor(dir string) config.SearchConfig {
	return config.SearchConfig{Path: dir, MaxResults: 100}
}

func ptr[T any](v T) *T {
	return &v
}

func withID[R model.Record](r R, id int64) R {
	r.SetID(id)
	return r
}

// roundTrip checks the mapper directly and through a stored document, which
// adds the JSON encoding of _source.
func roundTrip[R model.Record](t *testing.T, m Mapper[R], record R, opts ...cmp.Option) {
	t.Helper()

	opts = append(opts, decimalEqual)

	doc := m.ToDocument(record)
	assert.Equal(t, FormatID(record.GetID()), doc.ID)

	direct, err := m.ToRecord(doc)
	require.NoError(t, err)
	if diff := cmp.Diff(record, direct, opts...); diff != "" {
		t.Errorf("direct round trip mismatch (-want +got):\n%s", diff)
	}

	index := newTestIndex(t, m.Kind())
	ctx := context.Background()
	require.NoError(t, index.Upsert(ctx, doc))

	hits, err := index.Query(ctx, Query{Text: "id:" + doc.ID, Page: Page{Limit: 1}})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	stored, err := m.ToRecord(hits[0])
	require.NoError(t, err)
	if diff := cmp.Diff(record, stored, opts...); diff != "" {
		t.Errorf("stored round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMappers_RoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 30, 0, 123456789, time.UTC)

	t.Run("customer", func(t *testing.T) {
		roundTrip(t, CustomerMapper, withID(&model.Customer{Name: "Ann Reader", Email: "ann@example.com"}, 1))
	})

	t.Run("device", func(t *testing.T) {
		roundTrip(t, DeviceMapper, withID(&model.Device{Identifier: "dev-1", Platform: model.PlatformIOS, CustomerID: ptr(int64(4))}, 2))
		roundTrip(t, DeviceMapper, withID(&model.Device{Identifier: "dev-2", Platform: model.PlatformWeb}, 3))
	})

	t.Run("issue", func(t *testing.T) {
		issue := withID(&model.Issue{
			Number:           12,
			Title:            "Winter Special",
			PublishedAt:      at,
			Cover:            []byte{1, 2, 3},
			CoverContentType: "image/png",
			MagazineID:       ptr(int64(9)),
		}, 4)
		roundTrip(t, IssueMapper, issue, cmpopts.IgnoreFields(model.Issue{}, "Cover", "CoverContentType"))
	})

	t.Run("log", func(t *testing.T) {
		roundTrip(t, LogMapper, withID(&model.Log{Event: "LOGIN", Message: "signed in", CreatedAt: at}, 5))
	})

	t.Run("magazine", func(t *testing.T) {
		roundTrip(t, MagazineMapper, withID(&model.Magazine{Code: "AAAAAAAAAA", Price: decimal.RequireFromString("19.99"), PublisherID: ptr(int64(2))}, 6))
		roundTrip(t, MagazineMapper, withID(&model.Magazine{Code: "FREE"}, 7))
		roundTrip(t, MagazineMapper, withID(&model.Magazine{Code: "WIDE", Price: decimal.RequireFromString("12345678901234567.89")}, 11))
	})

	t.Run("publisher", func(t *testing.T) {
		roundTrip(t, PublisherMapper, withID(&model.Publisher{Name: "Pixel Press", RegisteredAt: time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)}, 8))
	})

	t.Run("purchase", func(t *testing.T) {
		roundTrip(t, PurchaseMapper, withID(&model.Purchase{
			Date:               time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Type:               model.PurchaseSubscription,
			CustomerID:         ptr(int64(1)),
			SubscriptionPlanID: ptr(int64(3)),
		}, 9))
	})

	t.Run("subscription plan", func(t *testing.T) {
		roundTrip(t, SubscriptionPlanMapper, withID(&model.SubscriptionPlan{Name: "Yearly", DurationMonths: 12, Price: decimal.RequireFromString("49.90")}, 10))
	})
}

func TestIssueMapper_ExcludesCover(t *testing.T) {
	doc := IssueMapper.ToDocument(&model.Issue{Number: 1, Title: "A", Cover: []byte{1}, CoverContentType: "image/png"})

	assert.NotContains(t, doc.Fields, "cover")
	assert.NotContains(t, doc.Fields, "coverContentType")
}

func TestMapper_OmitsAbsentValues(t *testing.T) {
	doc := PurchaseMapper.ToDocument(&model.Purchase{Type: model.PurchaseSingleIssue})

	assert.Equal(t, map[string]any{"type": "SINGLE_ISSUE"}, doc.Fields)
	assert.Equal(t, "0", doc.ID)
}

func TestMoney_ExactAndNumeric(t *testing.T) {
	price := decimal.RequireFromString("12345678901234567.89")
	doc := MagazineMapper.ToDocument(&model.Magazine{Code: "WIDE", Price: price})

	assert.Equal(t, price.InexactFloat64(), doc.Fields["price"])
	assert.Equal(t, "12345678901234567.89", doc.Fields["price_exact"])

	m, err := MagazineMapper.ToRecord(doc)
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567.89", m.Price.String())

	// Documents without the exact companion fall back to the numeric field.
	m, err = MagazineMapper.ToRecord(Document{ID: "1", Fields: map[string]any{"price": 2.5}})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.5").Equal(m.Price))
}

func TestMapper_ToRecordErrors(t *testing.T) {
	_, err := MagazineMapper.ToRecord(Document{ID: "abc"})
	assert.ErrorContains(t, err, "invalid document id")

	_, err = MagazineMapper.ToRecord(Document{ID: "1", Fields: map[string]any{"code": 12.0}})
	assert.ErrorContains(t, err, "field code")

	_, err = PublisherMapper.ToRecord(Document{ID: "1", Fields: map[string]any{"registeredAt": "yesterday"}})
	assert.ErrorContains(t, err, "field registeredAt")

	_, err = MagazineMapper.ToRecord(Document{ID: "1", Fields: map[string]any{"price_exact": "lots"}})
	assert.ErrorContains(t, err, "field price_exact")
}

func TestSchemas_CoverEveryKind(t *testing.T) {
	for _, kind := range model.Kinds {
		schema, ok := Schemas[kind]
		require.True(t, ok, kind)
		assert.NotEmpty(t, schema, kind)
	}
}
