package model

import (
	"time"

	"github.com/deppfellow/pixelmags/internal/validation"
	"github.com/shopspring/decimal"
)

// Publisher owns one or more magazines.
type Publisher struct {
	Base
	Name         string    `json:"name" validate:"required,max=255"`
	RegisteredAt time.Time `json:"registeredAt" validate:"required"`
}

func (p *Publisher) Validate() error {
	return validate.Struct(p)
}

// Magazine is a title sold in the store.
type Magazine struct {
	Base
	Code        string          `json:"code" validate:"required,max=64"`
	Price       decimal.Decimal `json:"price"`
	PublisherID *int64          `json:"publisherId,omitempty"`
}

func (m *Magazine) Validate() error {
	if err := validate.Struct(m); err != nil {
		return err
	}
	return validatePrice(m.Price)
}

// Issue is a single edition of a magazine. Cover holds the image bytes.
type Issue struct {
	Base
	Number           int       `json:"number" validate:"min=1"`
	Title            string    `json:"title" validate:"required,max=255"`
	PublishedAt      time.Time `json:"publishedAt" validate:"required"`
	Cover            []byte    `json:"cover,omitempty"`
	CoverContentType string    `json:"coverContentType,omitempty" validate:"required_with=Cover"`
	MagazineID       *int64    `json:"magazineId,omitempty"`
}

func (i *Issue) Validate() error {
	return validate.Struct(i)
}

// SubscriptionPlan is a recurring offer bought through a purchase.
type SubscriptionPlan struct {
	Base
	Name           string          `json:"name" validate:"required,max=255"`
	DurationMonths int             `json:"durationMonths" validate:"min=1,max=120"`
	Price          decimal.Decimal `json:"price"`
}

func (s *SubscriptionPlan) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	return validatePrice(s.Price)
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return validation.CustomValidationErrors{
			{Field: "price", Message: "must not be negative"},
		}
	}
	return nil
}
