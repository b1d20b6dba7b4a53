// Package repository handles all interactions with the database.
//
// It builds the SQL for each operation, runs it on a single-use session
// and maps rows into model types, keeping SQL away from the service layer.
package repository

import (
	"github.com/deppfellow/people-api/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	People *PersonRepository
}

// NewRepositories constructs the repository container on the server's
// database handle.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		People: NewPersonRepository(s.DB),
	}
}
