// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

package models

import "time"

// Transaction type values.
const (
	TransactionIn     = "in"
	TransactionOut    = "out"
	TransactionAdjust = "adjust"
)

// Item is a stocked product. IDs are client-generated UUIDs so that a
// replayed insert lands as an upsert on the server instead of a duplicate.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Barcode     string    `json:"barcode,omitempty"`
	CategoryID  string    `json:"category_id,omitempty"`
	Quantity    float64   `json:"quantity"`
	MinQuantity float64   `json:"min_quantity,omitempty"`
	Price       float64   `json:"price,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Batches     []Batch   `json:"batches,omitempty"`
}

// Category groups items.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Batch is a lot of an item with its own quantity and expiry date.
type Batch struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id"`
	LotNumber  string    `json:"lot_number,omitempty"`
	Quantity   float64   `json:"quantity"`
	ExpiryDate time.Time `json:"expiry_date,omitempty"`
}

// Transaction records a single stock movement.
type Transaction struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Type      string    `json:"type"`
	Quantity  float64   `json:"quantity"`
	Note      string    `json:"note,omitempty"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	Item      *Item     `json:"item,omitempty"`
}
