package person

import (
	"github.com/deppfellow/people-api/internal/validation"
)

// CreatePersonPayload is the body of POST /people.
//
// Fields are pointers so a missing key is told apart from a zero value:
// `{"id": 0, ...}` is valid, `{...}` without "id" is not.
type CreatePersonPayload struct {
	ID     *int64  `json:"id" validate:"required"`
	Name   *string `json:"name" validate:"required"`
	Age    *int    `json:"age" validate:"required"`
	Gender *string `json:"gender" validate:"required"`
}

func (p *CreatePersonPayload) Validate() error {
	return validation.Struct(p)
}

// Person converts a validated payload into a record.
func (p *CreatePersonPayload) Person() Person {
	return Person{
		ID:     *p.ID,
		Name:   *p.Name,
		Age:    *p.Age,
		Gender: *p.Gender,
	}
}

// GetPersonPayload is the path of GET /people/:id.
type GetPersonPayload struct {
	ID int64 `param:"id" json:"-"`
}

func (p *GetPersonPayload) Validate() error {
	return nil
}

// UpdatePersonPayload is PUT /people/:id: the path id selects the row and
// the body replaces all of its fields. A body id different from the path
// id moves the row to the new id.
type UpdatePersonPayload struct {
	PathID int64 `param:"id" json:"-"`

	ID     *int64  `json:"id" validate:"required"`
	Name   *string `json:"name" validate:"required"`
	Age    *int    `json:"age" validate:"required"`
	Gender *string `json:"gender" validate:"required"`
}

func (p *UpdatePersonPayload) Validate() error {
	return validation.Struct(p)
}

// Fields returns the replacement values for the selected row.
func (p *UpdatePersonPayload) Fields() Person {
	return Person{
		ID:     *p.ID,
		Name:   *p.Name,
		Age:    *p.Age,
		Gender: *p.Gender,
	}
}

// DeletePersonPayload is the path of DELETE /people/:id.
type DeletePersonPayload struct {
	ID int64 `param:"id" json:"-"`
}

func (p *DeletePersonPayload) Validate() error {
	return nil
}

// ListPeoplePayload is GET /people. It carries nothing; List has no
// filtering or pagination.
type ListPeoplePayload struct{}

func (p *ListPeoplePayload) Validate() error {
	return nil
}
