// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

// Package devserver is a small in-memory stand-in for the hosted CRUD
// backend. It exists so the client can be developed and tested without the
// real service: same REST surface, same query parameters, no persistence.
package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/models"
)

// devSigningKey signs dev tokens only. Nothing validates against it outside
// this process.
var devSigningKey = []byte("go-stock-keeper-dev")

type row = map[string]any

// Server holds per-collection in-memory rows behind a chi router.
type Server struct {
	mu   sync.RWMutex
	data map[models.Collection]map[string]row

	logger *logger.Logger
}

func New(log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	data := make(map[models.Collection]map[string]row, len(models.Collections()))
	for _, collection := range models.Collections() {
		data[collection] = make(map[string]row)
	}

	return &Server{data: data, logger: log}
}

// Handler returns the REST surface mirrored from the hosted backend:
// /api/auth/login plus CRUD under /api/{collection}.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Route("/{collection}", func(r chi.Router) {
			r.Post("/", s.handleInsert)
			r.Get("/", s.handleSelect)
			r.Patch("/{id}", s.handlePatch)
			r.Delete("/{id}", s.handleDelete)
		})
	})

	return r
}

// Seed loads one row directly, bypassing HTTP. Test and demo setup only.
func (s *Server) Seed(collection models.Collection, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var stored row
	if err = json.Unmarshal(data, &stored); err != nil {
		return err
	}
	id, _ := stored["id"].(string)
	if id == "" {
		return fmt.Errorf("seed row for %s has no id", collection)
	}

	s.mu.Lock()
	s.data[collection][id] = stored
	s.mu.Unlock()
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Login == "" || creds.Password == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   creds.Login,
		"admin": true,
		"iat":   time.Now().Unix(),
	})
	signed, err := token.SignedString(devSigningKey)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", "Bearer "+signed)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) collection(r *http.Request) (models.Collection, bool) {
	collection := models.Collection(chi.URLParam(r, "collection"))
	return collection, collection.Valid()
}

// handleInsert honours client-generated ids; inserting an id that already
// exists overwrites the stored row, which makes replayed creates idempotent.
func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	collection, ok := s.collection(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var incoming row
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	id, _ := incoming["id"].(string)
	if id == "" {
		id = uuid.NewString()
		incoming["id"] = id
	}

	s.mu.Lock()
	s.data[collection][id] = incoming
	s.mu.Unlock()

	s.logger.Info().
		Str("func", "Server.handleInsert").
		Str("collection", collection.String()).
		Str("id", id).
		Msg("row stored")

	writeJSON(w, http.StatusCreated, incoming)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	collection, ok := s.collection(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := chi.URLParam(r, "id")

	var patch row
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	stored, exists := s.data[collection][id]
	if !exists {
		s.mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
		return
	}
	for k, v := range patch {
		stored[k] = v
	}
	stored["id"] = id
	s.data[collection][id] = stored
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, stored)
}

// handleDelete is idempotent: deleting an id that is already gone succeeds,
// so a replayed offline delete never wedges the queue.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	collection, ok := s.collection(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	delete(s.data[collection], id)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	collection, ok := s.collection(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	expand := splitParam(query.Get("expand"))
	orderBy, orderDesc := parseOrder(query.Get("order"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	filters := map[string]string{}
	for key, values := range query {
		switch key {
		case "expand", "order", "limit":
			continue
		}
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}

	s.mu.RLock()
	rows := make([]row, 0, len(s.data[collection]))
	for _, stored := range s.data[collection] {
		if !matchesFilters(stored, filters) {
			continue
		}
		rows = append(rows, cloneRow(stored))
	}
	for i := range rows {
		s.expandRow(collection, rows[i], expand)
	}
	s.mu.RUnlock()

	if orderBy != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			less := compareValues(rows[i][orderBy], rows[j][orderBy])
			if orderDesc {
				return !less && !equalValues(rows[i][orderBy], rows[j][orderBy])
			}
			return less
		})
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	writeJSON(w, http.StatusOK, rows)
}

// expandRow resolves nested relations the way the hosted backend does:
// item rows can carry their category and batches, transaction rows their
// item. Callers hold at least a read lock.
func (s *Server) expandRow(collection models.Collection, stored row, expand []string) {
	for _, relation := range expand {
		switch {
		case collection == models.CollectionItems && relation == "category":
			if categoryID, _ := stored["category_id"].(string); categoryID != "" {
				if category, ok := s.data[models.CollectionCategories][categoryID]; ok {
					stored["category"] = cloneRow(category)
				}
			}
		case collection == models.CollectionItems && relation == "batches":
			itemID, _ := stored["id"].(string)
			batches := make([]row, 0)
			for _, batch := range s.data[models.CollectionBatches] {
				if batchItemID, _ := batch["item_id"].(string); batchItemID == itemID {
					batches = append(batches, cloneRow(batch))
				}
			}
			stored["batches"] = batches
		case collection == models.CollectionTransactions && relation == "item":
			if itemID, _ := stored["item_id"].(string); itemID != "" {
				if item, ok := s.data[models.CollectionItems][itemID]; ok {
					stored["item"] = cloneRow(item)
				}
			}
		}
	}
}

func matchesFilters(stored row, filters map[string]string) bool {
	for column, want := range filters {
		value, exists := stored[column]
		if !exists {
			return false
		}
		if fmt.Sprint(value) != want {
			return false
		}
	}
	return true
}

func cloneRow(stored row) row {
	out := make(row, len(stored))
	for k, v := range stored {
		out[k] = v
	}
	return out
}

func splitParam(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

func parseOrder(value string) (column string, desc bool) {
	if value == "" {
		return "", false
	}
	column, direction, found := strings.Cut(value, ".")
	if found && direction == "desc" {
		return column, true
	}
	return column, false
}

func compareValues(a, b any) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func equalValues(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
