package service

import (
	"context"
	"errors"

	"github.com/deppfellow/people-api/internal/errs"
	"github.com/deppfellow/people-api/internal/model/person"
	"github.com/deppfellow/people-api/internal/repository"
	"github.com/deppfellow/people-api/internal/sqlerr"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//go:generate mockgen -source=person.go -destination=mocks/mocks.go -package=mocks PersonStore

// PersonStore is the storage the person service runs on.
// *repository.PersonRepository implements it.
type PersonStore interface {
	Create(ctx context.Context, p person.Person) (*person.Person, error)
	GetByID(ctx context.Context, id int64) (*person.Person, error)
	Update(ctx context.Context, id int64, fields person.Person) (*person.Person, error)
	Delete(ctx context.Context, id int64) (*person.Person, error)
	List(ctx context.Context) ([]person.Person, error)
}

var (
	personNotFoundCode      = "PERSON_NOT_FOUND"
	personAlreadyExistsCode = sqlerr.GenerateErrorCode(repository.PeopleTable, sqlerr.UniqueViolation)
)

// Metrics counts successful writes.
type Metrics struct {
	Created prometheus.Counter
	Deleted prometheus.Counter
}

// NewMetrics creates the person counters on reg. A nil reg yields working
// but unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Created: factory.NewCounter(prometheus.CounterOpts{
			Name: "people_records_created_total",
			Help: "Total number of person records created",
		}),
		Deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "people_records_deleted_total",
			Help: "Total number of person records deleted",
		}),
	}
}

// PersonService maps storage outcomes onto API errors.
//
// Not-found becomes 404 PERSON_NOT_FOUND. A duplicate id on create stays an
// internal error unless rejectDuplicateIDs is set, in which case it is a
// 409 PERSON_ALREADY_EXISTS.
type PersonService struct {
	store              PersonStore
	metrics            *Metrics
	rejectDuplicateIDs bool
}

func NewPersonService(store PersonStore, metrics *Metrics, rejectDuplicateIDs bool) *PersonService {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &PersonService{
		store:              store,
		metrics:            metrics,
		rejectDuplicateIDs: rejectDuplicateIDs,
	}
}

func (s *PersonService) Create(ctx context.Context, p person.Person) (*person.Person, error) {
	created, err := s.store.Create(ctx, p)
	if err != nil {
		if s.rejectDuplicateIDs && sqlerr.ErrCode(err) == sqlerr.UniqueViolation {
			return nil, errs.NewConflictError("A person with this id already exists", true, &personAlreadyExistsCode)
		}
		return nil, pkgerrors.Wrap(err, "create person")
	}

	s.metrics.Created.Inc()
	return created, nil
}

func (s *PersonService) Get(ctx context.Context, id int64) (*person.Person, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "get person")
	}
	return p, nil
}

func (s *PersonService) Update(ctx context.Context, id int64, fields person.Person) (*person.Person, error) {
	p, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, mapStoreError(err, "update person")
	}
	return p, nil
}

func (s *PersonService) Delete(ctx context.Context, id int64) (*person.Person, error) {
	p, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "delete person")
	}

	s.metrics.Deleted.Inc()
	return p, nil
}

func (s *PersonService) List(ctx context.Context) ([]person.Person, error) {
	people, err := s.store.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list people")
	}
	if people == nil {
		people = []person.Person{}
	}
	return people, nil
}

func mapStoreError(err error, op string) error {
	if errors.Is(err, repository.ErrPersonNotFound) {
		return errs.NewNotFoundError("Person not found", true, &personNotFoundCode)
	}
	return pkgerrors.Wrap(err, op)
}
