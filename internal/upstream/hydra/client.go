package hydra

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmcdole/warden/internal/domain"
	"github.com/mmcdole/warden/internal/pagination"
	"github.com/mmcdole/warden/internal/upstream/rest"
)

// Client implements domain.OAuth2Repository against the Hydra admin API
type Client struct {
	rest *rest.Client
}

// NewClient creates a new Hydra admin client
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{rest: rest.NewClient("hydra", baseURL, token, logger)}
}

// Transport exposes the underlying HTTP client
func (c *Client) Transport() *rest.Client {
	return c.rest
}

// ListClients returns one page of OAuth2 clients
func (c *Client) ListClients(ctx context.Context, cursor pagination.Cursor, pageSize int) (pagination.Response[*domain.OAuth2Client], error) {
	query := url.Values{}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}
	cursor.Apply(query)

	resp, err := c.rest.Do(ctx, rest.Request{
		Method: http.MethodGet,
		Path:   "/admin/clients",
		Query:  query,
	})
	if err != nil {
		return pagination.Response[*domain.OAuth2Client]{}, err
	}

	var dtos []ClientDTO
	if err := rest.DecodeJSON(resp, &dtos); err != nil {
		return pagination.Response[*domain.OAuth2Client]{}, err
	}
	return pagination.Response[*domain.OAuth2Client]{
		Items: MapClients(dtos),
		Link:  resp.Header.Get("Link"),
	}, nil
}

// DeleteClient removes an OAuth2 client. A client that is already gone counts as deleted.
func (c *Client) DeleteClient(ctx context.Context, clientID string) error {
	_, err := c.rest.Do(ctx, rest.Request{
		Method: http.MethodDelete,
		Path:   "/admin/clients/" + url.PathEscape(clientID),
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// IntrospectToken asks the authorization server about an access or refresh token
func (c *Client) IntrospectToken(ctx context.Context, token string) (*domain.Introspection, error) {
	form := url.Values{}
	form.Set("token", token)

	resp, err := c.rest.Do(ctx, rest.Request{
		Method:      http.MethodPost,
		Path:        "/admin/oauth2/introspect",
		Body:        []byte(form.Encode()),
		ContentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		return nil, err
	}

	var dto IntrospectionDTO
	if err := rest.DecodeJSON(resp, &dto); err != nil {
		return nil, err
	}
	return MapIntrospection(dto), nil
}

var _ domain.OAuth2Repository = (*Client)(nil)
