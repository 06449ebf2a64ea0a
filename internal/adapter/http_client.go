package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ademidova/go-stock-keeper/models"
)

type HTTPClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

type httpRemoteStore struct {
	client *resty.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPRemoteStore(cfg HTTPClientConfig) RemoteStore {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &httpRemoteStore{client: cli}
}

func (h *httpRemoteStore) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpRemoteStore) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpRemoteStore) Authenticate(ctx context.Context, login, password string) (models.Session, error) {
	body := map[string]string{"login": login, "password": password}

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/api/auth/login")
	if err != nil {
		return models.Session{}, fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Session{}, err
	}

	token, err := parseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Session{}, fmt.Errorf("login parse bearer token: %w", err)
	}
	session, err := parseSessionFromJWT(token)
	if err != nil {
		return models.Session{}, fmt.Errorf("login parse session: %w", err)
	}

	h.SetToken(token)
	return session, nil
}

func (h *httpRemoteStore) Insert(ctx context.Context, collection models.Collection, row json.RawMessage) (json.RawMessage, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(row).
		Post("/api/" + collection.String())
	if err != nil {
		return nil, fmt.Errorf("insert %s request: %w", collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return json.RawMessage(resp.Body()), nil
}

func (h *httpRemoteStore) Update(ctx context.Context, collection models.Collection, id string, patch json.RawMessage) (json.RawMessage, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(patch).
		Patch("/api/" + collection.String() + "/" + id)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s request: %w", collection, id, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return json.RawMessage(resp.Body()), nil
}

func (h *httpRemoteStore) Delete(ctx context.Context, collection models.Collection, id string) error {
	resp, err := h.authedRequest(ctx).
		Delete("/api/" + collection.String() + "/" + id)
	if err != nil {
		return fmt.Errorf("delete %s/%s request: %w", collection, id, err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteStore) Select(ctx context.Context, collection models.Collection, opts SelectOptions) ([]json.RawMessage, error) {
	req := h.authedRequest(ctx)

	for column, value := range opts.Filters {
		req.SetQueryParam(column, value)
	}
	if len(opts.Expand) > 0 {
		req.SetQueryParam("expand", strings.Join(opts.Expand, ","))
	}
	if opts.OrderBy != "" {
		direction := "asc"
		if opts.OrderDesc {
			direction = "desc"
		}
		req.SetQueryParam("order", opts.OrderBy+"."+direction)
	}
	if opts.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(opts.Limit))
	}

	resp, err := req.Get("/api/" + collection.String())
	if err != nil {
		return nil, fmt.Errorf("select %s request: %w", collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var rows []json.RawMessage
	if err = json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("decode %s select response: %w", collection, err)
	}

	return rows, nil
}

func (h *httpRemoteStore) FetchItems(ctx context.Context) ([]models.Item, error) {
	rows, err := h.Select(ctx, models.CollectionItems, SelectOptions{
		Expand: []string{"category", "batches"},
	})
	if err != nil {
		return nil, err
	}

	return decodeRows[models.Item](models.CollectionItems, rows)
}

func (h *httpRemoteStore) FetchCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := h.Select(ctx, models.CollectionCategories, SelectOptions{})
	if err != nil {
		return nil, err
	}

	return decodeRows[models.Category](models.CollectionCategories, rows)
}

func (h *httpRemoteStore) FetchRecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	rows, err := h.Select(ctx, models.CollectionTransactions, SelectOptions{
		Expand:    []string{"item"},
		OrderBy:   "created_at",
		OrderDesc: true,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	return decodeRows[models.Transaction](models.CollectionTransactions, rows)
}

func decodeRows[T any](collection models.Collection, rows []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var v T
		if err := json.Unmarshal(row, &v); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (h *httpRemoteStore) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	}
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
}

func parseBearerToken(value string) (string, error) {
	parts := strings.Split(strings.TrimSpace(value), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

// parseSessionFromJWT extracts the opaque identity the backend encodes in
// its access tokens: the subject claim and an "admin" boolean. The token is
// not verified here; the server remains the authority on every request.
func parseSessionFromJWT(tokenString string) (models.Session, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return models.Session{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Session{}, errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return models.Session{}, err
	}
	if sub == "" {
		return models.Session{}, errors.New("token has no subject")
	}

	admin, _ := claims["admin"].(bool)

	return models.Session{UserID: sub, Admin: admin, Token: tokenString}, nil
}
