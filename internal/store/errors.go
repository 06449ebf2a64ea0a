package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrUnknownCollection is returned when an operation names a collection
	// outside the four cached entity types.
	ErrUnknownCollection = errors.New("unknown cache collection")

	// ErrMetadataNotFound is returned when a sync-metadata key has never been
	// written. Callers typically treat it as "never synced" rather than a
	// failure.
	ErrMetadataNotFound = errors.New("sync metadata key not found")

	// ErrInvalidOperation is returned when an enqueue attempt carries an
	// operation type outside create/update/delete.
	ErrInvalidOperation = errors.New("invalid pending operation type")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRows is returned when scanning column values during
	// result-set iteration fails.
	ErrScanningRows = errors.New("failed to scan rows")
)
