package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/pixelmags/internal/lib/job"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/repository"
	"github.com/deppfellow/pixelmags/internal/search"
	"github.com/deppfellow/pixelmags/internal/server"
)

// EntityService bundles the write and search paths of one kind.
type EntityService[R model.Record] struct {
	*SyncCoordinator[R]
	*QueryService[R]
}

func NewEntityService[R model.Record](
	store repository.EntityStore[R],
	index search.Index,
	mapper search.Mapper[R],
	reporter SyncReporter,
	maxResults int,
) *EntityService[R] {
	return &EntityService[R]{
		SyncCoordinator: NewSyncCoordinator(store, index, mapper, reporter),
		QueryService:    NewQueryService(index, mapper, maxResults),
	}
}

// Maintainer is the kind-agnostic view of an EntityService used by the
// reindex command and the sync retry worker.
type Maintainer interface {
	Kind() model.Kind
	Resync(ctx context.Context, id int64) error
	Reindex(ctx context.Context) (ReindexResult, error)
}

type Services struct {
	Auth *AuthService
	Job  *job.JobService

	Customers         *EntityService[*model.Customer]
	Devices           *EntityService[*model.Device]
	Issues            *EntityService[*model.Issue]
	Logs              *EntityService[*model.Log]
	Magazines         *EntityService[*model.Magazine]
	Publishers        *EntityService[*model.Publisher]
	Purchases         *EntityService[*model.Purchase]
	SubscriptionPlans *EntityService[*model.SubscriptionPlan]

	maintainers map[model.Kind]Maintainer
}

// NewServices wires the entity services to the server's indexes. Failed index
// writes are logged and, when the retry worker is enabled, queued for resync.
func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	if s.Search == nil {
		return nil, fmt.Errorf("search indexes are not open")
	}

	var reporter SyncReporter = NewLogReporter(s.Logger, s.LoggerService)
	if s.Job != nil {
		reporter = Reporters{reporter, s.Job}
	}

	services := NewEntityServices(repos, s.Search, reporter, s.Config.Search.MaxResults)
	services.Auth = NewAuthService(s)
	services.Job = s.Job

	if s.Job != nil {
		for kind, m := range services.maintainers {
			s.Job.RegisterResyncer(kind, m)
		}
	}

	return services, nil
}

// NewEntityServices builds one EntityService per kind.
func NewEntityServices(repos *repository.Repositories, indexes *search.Indexes, reporter SyncReporter, maxResults int) *Services {
	s := &Services{
		Customers:         NewEntityService(repos.Customers, indexes.Get(model.KindCustomer), search.CustomerMapper, reporter, maxResults),
		Devices:           NewEntityService(repos.Devices, indexes.Get(model.KindDevice), search.DeviceMapper, reporter, maxResults),
		Issues:            NewEntityService(repos.Issues, indexes.Get(model.KindIssue), search.IssueMapper, reporter, maxResults),
		Logs:              NewEntityService(repos.Logs, indexes.Get(model.KindLog), search.LogMapper, reporter, maxResults),
		Magazines:         NewEntityService(repos.Magazines, indexes.Get(model.KindMagazine), search.MagazineMapper, reporter, maxResults),
		Publishers:        NewEntityService(repos.Publishers, indexes.Get(model.KindPublisher), search.PublisherMapper, reporter, maxResults),
		Purchases:         NewEntityService(repos.Purchases, indexes.Get(model.KindPurchase), search.PurchaseMapper, reporter, maxResults),
		SubscriptionPlans: NewEntityService(repos.SubscriptionPlans, indexes.Get(model.KindSubscriptionPlan), search.SubscriptionPlanMapper, reporter, maxResults),
	}

	s.maintainers = map[model.Kind]Maintainer{
		model.KindCustomer:         s.Customers,
		model.KindDevice:           s.Devices,
		model.KindIssue:            s.Issues,
		model.KindLog:              s.Logs,
		model.KindMagazine:         s.Magazines,
		model.KindPublisher:        s.Publishers,
		model.KindPurchase:         s.Purchases,
		model.KindSubscriptionPlan: s.SubscriptionPlans,
	}

	return s
}

// Maintainer returns the maintenance view of kind.
func (s *Services) Maintainer(kind model.Kind) (Maintainer, bool) {
	m, ok := s.maintainers[kind]
	return m, ok
}

// Search runs a query against the index of kind and returns the typed
// records as a slice of that kind.
func (s *Services) Search(ctx context.Context, kind model.Kind, text string, page search.Page) (any, error) {
	switch kind {
	case model.KindCustomer:
		return s.Customers.Search(ctx, text, page)
	case model.KindDevice:
		return s.Devices.Search(ctx, text, page)
	case model.KindIssue:
		return s.Issues.Search(ctx, text, page)
	case model.KindLog:
		return s.Logs.Search(ctx, text, page)
	case model.KindMagazine:
		return s.Magazines.Search(ctx, text, page)
	case model.KindPublisher:
		return s.Publishers.Search(ctx, text, page)
	case model.KindPurchase:
		return s.Purchases.Search(ctx, text, page)
	case model.KindSubscriptionPlan:
		return s.SubscriptionPlans.Search(ctx, text, page)
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
}

// Reindex rebuilds the indexes of kinds, or of every kind when none is given.
// It stops at the first failure and returns the results so far.
func (s *Services) Reindex(ctx context.Context, kinds ...model.Kind) ([]ReindexResult, error) {
	if len(kinds) == 0 {
		kinds = model.Kinds
	}

	results := make([]ReindexResult, 0, len(kinds))
	for _, kind := range kinds {
		m, ok := s.maintainers[kind]
		if !ok {
			return results, fmt.Errorf("unknown kind %q", kind)
		}

		result, err := m.Reindex(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}
