package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/deppfellow/people-api/internal/database"
	"github.com/deppfellow/people-api/internal/model/person"
	"github.com/pkg/errors"
)

// Schema of the people table. The DDL lives in database/schema.sql.
const (
	PeopleTable = "people"

	ColumnID     = "id"
	ColumnName   = "name"
	ColumnAge    = "age"
	ColumnGender = "gender"
)

// personColumns is the select/insert column order.
var personColumns = []string{ColumnID, ColumnName, ColumnAge, ColumnGender}

// ErrPersonNotFound is returned when no row has the requested id. It
// matches sql.ErrNoRows under errors.Is.
var ErrPersonNotFound = fmt.Errorf("person not found: %w", sql.ErrNoRows)

type PersonRepository struct {
	db *database.Database
}

func NewPersonRepository(db *database.Database) *PersonRepository {
	return &PersonRepository{db: db}
}

// Create inserts p and returns the row as stored.
//
// There is no existence check first; a duplicate id fails on the primary
// key and the driver error is returned wrapped.
func (r *PersonRepository) Create(ctx context.Context, p person.Person) (*person.Person, error) {
	sess, err := r.db.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	stmt := r.db.Builder().
		Insert(PeopleTable).
		Columns(personColumns...).
		Values(p.ID, p.Name, p.Age, p.Gender)

	if _, err := sess.Exec(ctx, "create_person", stmt); err != nil {
		return nil, errors.Wrapf(err, "failed to insert person id=%d", p.ID)
	}

	return r.get(ctx, sess, p.ID)
}

// GetByID returns the person with the given id or ErrPersonNotFound.
func (r *PersonRepository) GetByID(ctx context.Context, id int64) (*person.Person, error) {
	sess, err := r.db.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	return r.get(ctx, sess, id)
}

// Update overwrites every column of the row selected by id with the values
// in fields, id included, and returns the row re-read under its new id.
func (r *PersonRepository) Update(ctx context.Context, id int64, fields person.Person) (*person.Person, error) {
	sess, err := r.db.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if _, err := r.get(ctx, sess, id); err != nil {
		return nil, err
	}

	stmt := r.db.Builder().
		Update(PeopleTable).
		SetMap(setClauses(fields)).
		Where(sq.Eq{ColumnID: id})

	if _, err := sess.Exec(ctx, "update_person", stmt); err != nil {
		return nil, errors.Wrapf(err, "failed to update person id=%d", id)
	}

	return r.get(ctx, sess, fields.ID)
}

// Delete removes the row and returns it as it was before deletion.
func (r *PersonRepository) Delete(ctx context.Context, id int64) (*person.Person, error) {
	sess, err := r.db.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	existing, err := r.get(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	stmt := r.db.Builder().
		Delete(PeopleTable).
		Where(sq.Eq{ColumnID: id})

	if _, err := sess.Exec(ctx, "delete_person", stmt); err != nil {
		return nil, errors.Wrapf(err, "failed to delete person id=%d", id)
	}

	return existing, nil
}

// List returns every row in storage order. An empty table yields an empty,
// non-nil slice.
func (r *PersonRepository) List(ctx context.Context) ([]person.Person, error) {
	sess, err := r.db.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	people := []person.Person{}
	stmt := r.db.Builder().
		Select(personColumns...).
		From(PeopleTable)

	if err := sess.Select(ctx, "list_people", &people, stmt); err != nil {
		return nil, errors.Wrap(err, "failed to list people")
	}

	return people, nil
}

func (r *PersonRepository) get(ctx context.Context, sess *database.Session, id int64) (*person.Person, error) {
	var p person.Person
	stmt := r.db.Builder().
		Select(personColumns...).
		From(PeopleTable).
		Where(sq.Eq{ColumnID: id})

	if err := sess.Get(ctx, "get_person", &p, stmt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, errors.Wrapf(err, "failed to get person id=%d", id)
	}

	return &p, nil
}

// setClauses lists the columns an update writes. All four are replaced.
func setClauses(fields person.Person) map[string]any {
	return map[string]any{
		ColumnID:     fields.ID,
		ColumnName:   fields.Name,
		ColumnAge:    fields.Age,
		ColumnGender: fields.Gender,
	}
}
