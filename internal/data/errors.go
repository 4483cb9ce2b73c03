package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrEmptyUserName is returned for lookups with a blank username.
	ErrEmptyUserName = errors.New("user_name is required")

	// ErrInvalidTableStructure is returned when a configured table or
	// column name is blank.
	ErrInvalidTableStructure = errors.New("invalid users table structure")
)
