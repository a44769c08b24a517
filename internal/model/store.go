package model

import (
	"time"
)

// PurchaseType distinguishes one-off issue sales from subscriptions.
type PurchaseType string

const (
	PurchaseSingleIssue  PurchaseType = "SINGLE_ISSUE"
	PurchaseSubscription PurchaseType = "SUBSCRIPTION"
)

// Platform is the operating system of a reader device.
type Platform string

const (
	PlatformIOS     Platform = "IOS"
	PlatformAndroid Platform = "ANDROID"
	PlatformWeb     Platform = "WEB"
)

// Customer is a registered reader.
type Customer struct {
	Base
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email"`
}

func (c *Customer) Validate() error {
	return validate.Struct(c)
}

// Device is a reader's registered device.
type Device struct {
	Base
	Identifier string   `json:"identifier" validate:"required,max=255"`
	Platform   Platform `json:"platform" validate:"required,oneof=IOS ANDROID WEB"`
	CustomerID *int64   `json:"customerId,omitempty"`
}

func (d *Device) Validate() error {
	return validate.Struct(d)
}

// Purchase records a sale. A purchase owns at most one subscription plan.
type Purchase struct {
	Base
	Date               time.Time    `json:"date" validate:"required"`
	Type               PurchaseType `json:"type" validate:"required,oneof=SINGLE_ISSUE SUBSCRIPTION"`
	CustomerID         *int64       `json:"customerId,omitempty"`
	MagazineID         *int64       `json:"magazineId,omitempty"`
	SubscriptionPlanID *int64       `json:"subscriptionPlanId,omitempty"`
}

func (p *Purchase) Validate() error {
	return validate.Struct(p)
}

// Log is an audit entry. CreatedAt defaults to the store's clock when zero.
type Log struct {
	Base
	Event     string    `json:"event" validate:"required,max=64"`
	Message   string    `json:"message" validate:"max=4000"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l *Log) Validate() error {
	return validate.Struct(l)
}
