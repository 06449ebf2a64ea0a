// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

package models

import "fmt"

// Collection names one of the cached entity types. Every collection shares
// the same cache shape and the same refresh/replay machinery; the only
// collection-specific logic is the remote query used to refresh it.
type Collection string

const (
	CollectionItems        Collection = "items"
	CollectionCategories   Collection = "categories"
	CollectionBatches      Collection = "batches"
	CollectionTransactions Collection = "transactions"
)

// Collections lists every cached collection in refresh order.
func Collections() []Collection {
	return []Collection{
		CollectionItems,
		CollectionCategories,
		CollectionBatches,
		CollectionTransactions,
	}
}

// Valid reports whether c is one of the known collections.
func (c Collection) Valid() bool {
	switch c {
	case CollectionItems, CollectionCategories, CollectionBatches, CollectionTransactions:
		return true
	}
	return false
}

func (c Collection) String() string { return string(c) }

// LastSyncKey returns the sync-metadata key that stores the collection's
// last successful refresh timestamp.
func (c Collection) LastSyncKey() string {
	return fmt.Sprintf("%s_last_sync", c)
}
