// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

// Package adapter provides transport-layer abstractions for communicating
// with the remote CRUD backend.
//
// The primary abstraction is [RemoteStore], which decouples the sync engine
// from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPRemoteStore]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"
	"encoding/json"

	"github.com/ademidova/go-stock-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// SelectOptions narrows a collection query: row-level filters (column ->
// exact value), nested relation expansion, ordering, and a row limit. The
// zero value selects everything.
type SelectOptions struct {
	Filters   map[string]string
	Expand    []string
	OrderBy   string
	OrderDesc bool
	Limit     int
}

// RemoteStore defines transport-agnostic communication with the hosted CRUD
// backend. Implementations are responsible for serialisation, bearer-token
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
//
// The generic Insert/Update/Delete methods serve queued-operation replay;
// the typed Fetch methods serve the cache refresh queries.
type RemoteStore interface {
	// SetToken stores the bearer token attached to all subsequent requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Authenticate exchanges credentials for an access token and parses the
	// opaque user identity (id + admin flag) from its claims. On success the
	// token is stored via SetToken.
	Authenticate(ctx context.Context, login, password string) (models.Session, error)

	// Insert creates one row in the named collection and returns the row as
	// stored by the server. Rows carry client-generated ids, so the backend
	// treats a repeated insert of the same id as an upsert.
	Insert(ctx context.Context, collection models.Collection, row json.RawMessage) (json.RawMessage, error)

	// Update patches the row identified by id and returns the updated row.
	Update(ctx context.Context, collection models.Collection, id string, patch json.RawMessage) (json.RawMessage, error)

	// Delete removes the row identified by id.
	Delete(ctx context.Context, collection models.Collection, id string) error

	// Select returns the rows of a collection matching opts.
	Select(ctx context.Context, collection models.Collection, opts SelectOptions) ([]json.RawMessage, error)

	// FetchItems returns all items with their category and batches expanded.
	FetchItems(ctx context.Context) ([]models.Item, error)

	// FetchCategories returns all categories.
	FetchCategories(ctx context.Context) ([]models.Category, error)

	// FetchRecentTransactions returns the most recent limit transactions,
	// newest first, with their item expanded.
	FetchRecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error)
}
