// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

package store

const (
	enqueueOperation = `
		INSERT INTO pending_operations (
			type,
			collection,
			data,
			created_at
		) VALUES ($1, $2, $3, $4);`

	listAllOperations = `
		SELECT
			id,
			type,
			collection,
			data,
			created_at
		FROM pending_operations
		ORDER BY id ASC;`

	removeOperation = `
		DELETE FROM pending_operations
		WHERE id = $1;`

	countOperations = `
		SELECT COUNT(*) FROM pending_operations;`
)
