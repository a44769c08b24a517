package model

import (
	"testing"
	"time"

	"github.com/deppfellow/pixelmags/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_Plural(t *testing.T) {
	assert.Equal(t, "subscription-plans", KindSubscriptionPlan.Plural())
	assert.Equal(t, "magazines", KindMagazine.Plural())
}

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds {
		got, ok := ParseKind(kind.String())
		require.True(t, ok)
		assert.Equal(t, kind, got)

		got, ok = ParseKind(kind.Plural())
		require.True(t, ok)
		assert.Equal(t, kind, got)
	}

	_, ok := ParseKind("newspaper")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{"magazine", &Magazine{Code: "AAA", Price: decimal.NewFromInt(1)}, false},
		{"magazine without code", &Magazine{Price: decimal.NewFromInt(1)}, true},
		{"customer with bad email", &Customer{Name: "Ann", Email: "ann"}, true},
		{"device", &Device{Identifier: "abc", Platform: PlatformIOS}, false},
		{"device with unknown platform", &Device{Identifier: "abc", Platform: "PALM"}, true},
		{"issue", &Issue{Number: 1, Title: "Spring", PublishedAt: day}, false},
		{"issue cover without content type", &Issue{Number: 1, Title: "Spring", PublishedAt: day, Cover: []byte{1}}, true},
		{"purchase", &Purchase{Date: day, Type: PurchaseSubscription}, false},
		{"plan too long", &SubscriptionPlan{Name: "Forever", DurationMonths: 121}, true},
		{"log", &Log{Event: "LOGIN"}, false},
		{"publisher without date", &Publisher{Name: "Pixel Press"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_NegativePrice(t *testing.T) {
	err := (&SubscriptionPlan{Name: "Yearly", DurationMonths: 12, Price: decimal.NewFromInt(-1)}).Validate()

	var fieldErrs validation.CustomValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "price", fieldErrs[0].Field)
}

func TestValidate_TagErrors(t *testing.T) {
	err := (&Customer{}).Validate()

	var tagErrs validator.ValidationErrors
	require.ErrorAs(t, err, &tagErrs)
	assert.Len(t, tagErrs, 2)
}

func TestBase_ID(t *testing.T) {
	m := &Magazine{}
	assert.Zero(t, m.GetID())

	m.SetID(42)
	assert.Equal(t, int64(42), m.GetID())
}
