package entity

import (
	"time"
)

// User is the stored record. Password holds the bcrypt digest and is empty on
// every read path.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string `json:"-"`
	Username  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SortField string

const SortByCreatedAt SortField = "createdAt"

type SortDirection int

const (
	Ascending  SortDirection = 1
	Descending SortDirection = -1
)

func (d SortDirection) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}
