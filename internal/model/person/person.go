// Package person holds the Person record and the request payloads the
// people API accepts.
package person

// Person is one row of the people table.
//
// ID is chosen by the caller and is the primary key. Updates overwrite
// every field, ID included.
type Person struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Age    int    `json:"age" db:"age"`
	Gender string `json:"gender" db:"gender"`
}
