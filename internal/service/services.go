// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/deppfellow/people-api/internal/repository"
	"github.com/deppfellow/people-api/internal/server"
)

type Services struct {
	People *PersonService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	people := NewPersonService(
		repos.People,
		NewMetrics(s.Metrics),
		s.Config.API.RejectDuplicateIDs,
	)

	return &Services{
		People: people,
	}, nil
}
