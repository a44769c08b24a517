// Package model defines the catalog's entity kinds.
//
// Every kind is a plain struct implementing Record. Identifiers are assigned
// by the entity store; zero means "not persisted yet".
package model

import (
	"github.com/go-playground/validator/v10"
)

// Record is implemented by every persisted entity kind.
type Record interface {
	GetID() int64
	SetID(id int64)
	Validate() error
}

// Kind names an entity kind. It doubles as the REST path segment and the
// search index name.
type Kind string

const (
	KindCustomer         Kind = "customer"
	KindDevice           Kind = "device"
	KindIssue            Kind = "issue"
	KindLog              Kind = "log"
	KindMagazine         Kind = "magazine"
	KindPublisher        Kind = "publisher"
	KindPurchase         Kind = "purchase"
	KindSubscriptionPlan Kind = "subscription-plan"
)

// Kinds lists every entity kind in a stable order.
var Kinds = []Kind{
	KindCustomer,
	KindDevice,
	KindIssue,
	KindLog,
	KindMagazine,
	KindPublisher,
	KindPurchase,
	KindSubscriptionPlan,
}

// Plural returns the collection name used in REST paths ("subscription-plans").
func (k Kind) Plural() string {
	return string(k) + "s"
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts a kind in singular or plural form.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if s == string(k) || s == k.Plural() {
			return k, true
		}
	}
	return "", false
}

// Base carries the identifier shared by every kind.
type Base struct {
	ID int64 `json:"id"`
}

func (b *Base) GetID() int64 {
	return b.ID
}

func (b *Base) SetID(id int64) {
	b.ID = id
}

var validate = validator.New()
