package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrUsernameAlreadyExists is returned when registering a user whose
	// username is already taken.
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// ErrNoUserWasFound is returned when a user lookup produces no rows.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrTokenNotFound is returned when no token matches the given key or
	// user. The token store signals "not found" only through this error.
	ErrTokenNotFound = errors.New("token was not found")

	// ErrTokenAlreadyExists is returned when the user already owns a token
	// or the generated key collides with an existing one.
	ErrTokenAlreadyExists = errors.New("token already exists")

	// ErrUnsupportedDriver is returned by [NewConnect] for an unknown driver.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")
)
