package repository

import (
	"github.com/deppfellow/pixelmags/internal/database"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/server"
)

// Repositories is a container for the store of every entity kind.
type Repositories struct {
	Customers         *Store[*model.Customer]
	Devices           *Store[*model.Device]
	Issues            *Store[*model.Issue]
	Logs              *Store[*model.Log]
	Magazines         *Store[*model.Magazine]
	Publishers        *Store[*model.Publisher]
	Purchases         *Store[*model.Purchase]
	SubscriptionPlans *Store[*model.SubscriptionPlan]
}

// NewRepositories builds the stores on top of the server's database.
func NewRepositories(s *server.Server) *Repositories {
	return NewRepositoriesFor(s.DB)
}

// NewRepositoriesFor builds the stores on top of db.
func NewRepositoriesFor(db *database.Database) *Repositories {
	exec := newExecutor(db)

	return &Repositories{
		Customers:         NewStore(exec, customerTable),
		Devices:           NewStore(exec, deviceTable),
		Issues:            NewStore(exec, issueTable),
		Logs:              NewStore(exec, logTable),
		Magazines:         NewStore(exec, magazineTable),
		Publishers:        NewStore(exec, publisherTable),
		Purchases:         NewStore(exec, purchaseTable),
		SubscriptionPlans: NewStore(exec, subscriptionPlanTable),
	}
}

var (
	_ EntityStore[*model.Customer]         = (*Store[*model.Customer])(nil)
	_ EntityStore[*model.Device]           = (*Store[*model.Device])(nil)
	_ EntityStore[*model.Issue]            = (*Store[*model.Issue])(nil)
	_ EntityStore[*model.Log]              = (*Store[*model.Log])(nil)
	_ EntityStore[*model.Magazine]         = (*Store[*model.Magazine])(nil)
	_ EntityStore[*model.Publisher]        = (*Store[*model.Publisher])(nil)
	_ EntityStore[*model.Purchase]         = (*Store[*model.Purchase])(nil)
	_ EntityStore[*model.SubscriptionPlan] = (*Store[*model.SubscriptionPlan])(nil)
)
