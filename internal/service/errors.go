package service

import "errors"

var (
	// ErrMissingID is returned when an update or delete is requested for an
	// entity without an id.
	ErrMissingID = errors.New("entity id is required")

	// ErrUnknownTransactionType is returned when a stock transaction carries
	// a type other than in, out or adjust.
	ErrUnknownTransactionType = errors.New("unknown transaction type")
)
