// Package identity — HTTP-клиент справочника пользователей.
// Сервис сессий не хранит пользователей: роль, права и профиль
// перечитываются из внешнего сервиса на каждой ротации.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-news-aggregator/session-service/internal/models"
)

// ErrUnknownUser — пользователь отсутствует в справочнике
// (удалён или заблокирован после выпуска сессии).
var ErrUnknownUser = errors.New("unknown user")

// Client — клиент users-сервиса.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient возвращает клиент справочника по базовому URL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("identity.NewClient: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}, nil
}

type userAccessResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
}

// UserAccess возвращает актуальные роль и права пользователя.
func (c *Client) UserAccess(ctx context.Context, userID uuid.UUID) (*models.UserAccess, error) {
	const op = "identity.client.UserAccess"

	endpoint := fmt.Sprintf("%s/users/%s/access", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", op, ErrUnknownUser)
	default:
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var body userAccessResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	role := models.RoleUser
	if body.Role == string(models.RoleAdmin) {
		role = models.RoleAdmin
	}

	return &models.UserAccess{
		Role:        role,
		Permissions: body.Permissions,
		Name:        body.Name,
		Email:       body.Email,
	}, nil
}
