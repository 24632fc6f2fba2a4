package kratos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmcdole/warden/internal/domain"
	"github.com/mmcdole/warden/internal/pagination"
	"github.com/mmcdole/warden/internal/upstream/rest"
)

// Client implements domain.IdentityRepository and domain.IdentityAdmin
// against the Kratos admin API
type Client struct {
	rest *rest.Client
}

// NewClient creates a new Kratos admin client
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{rest: rest.NewClient("kratos", baseURL, token, logger)}
}

// Transport exposes the underlying HTTP client
func (c *Client) Transport() *rest.Client {
	return c.rest
}

func pageQuery(cursor pagination.Cursor, pageSize int) url.Values {
	query := url.Values{}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}
	cursor.Apply(query)
	return query
}

// ListIdentities returns one page of identities
func (c *Client) ListIdentities(ctx context.Context, cursor pagination.Cursor, pageSize int) (pagination.Response[*domain.Identity], error) {
	resp, err := c.rest.Do(ctx, rest.Request{
		Method: http.MethodGet,
		Path:   "/admin/identities",
		Query:  pageQuery(cursor, pageSize),
	})
	if err != nil {
		return pagination.Response[*domain.Identity]{}, err
	}

	var dtos []IdentityDTO
	if err := rest.DecodeJSON(resp, &dtos); err != nil {
		return pagination.Response[*domain.Identity]{}, err
	}
	return pagination.Response[*domain.Identity]{
		Items: MapIdentities(dtos),
		Link:  resp.Header.Get("Link"),
	}, nil
}

// GetIdentity returns a single identity
func (c *Client) GetIdentity(ctx context.Context, id string) (*domain.Identity, error) {
	resp, err := c.rest.Do(ctx, rest.Request{
		Method: http.MethodGet,
		Path:   "/admin/identities/" + url.PathEscape(id),
	})
	if err != nil {
		return nil, err
	}

	var dto IdentityDTO
	if err := rest.DecodeJSON(resp, &dto); err != nil {
		return nil, err
	}
	return MapIdentity(dto), nil
}

// ListSessions returns one page of active sessions across all identities
func (c *Client) ListSessions(ctx context.Context, cursor pagination.Cursor, pageSize int) (pagination.Response[*domain.Session], error) {
	query := pageQuery(cursor, pageSize)
	query.Set("active", "true")
	query.Set("expand", "Identity")

	resp, err := c.rest.Do(ctx, rest.Request{
		Method: http.MethodGet,
		Path:   "/admin/sessions",
		Query:  query,
	})
	if err != nil {
		return pagination.Response[*domain.Session]{}, err
	}

	var dtos []SessionDTO
	if err := rest.DecodeJSON(resp, &dtos); err != nil {
		return pagination.Response[*domain.Session]{}, err
	}
	return pagination.Response[*domain.Session]{
		Items: MapSessions(dtos),
		Link:  resp.Header.Get("Link"),
	}, nil
}

// ListIdentitySessions returns every session of one identity
func (c *Client) ListIdentitySessions(ctx context.Context, identityID string) ([]*domain.Session, error) {
	resp, err := c.rest.Do(ctx, rest.Request{
		Method: http.MethodGet,
		Path:   "/admin/identities/" + url.PathEscape(identityID) + "/sessions",
	})
	if err != nil {
		// An identity without sessions answers 404
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var dtos []SessionDTO
	if err := rest.DecodeJSON(resp, &dtos); err != nil {
		return nil, err
	}
	sessions := MapSessions(dtos)
	for _, s := range sessions {
		if s.IdentityID == "" {
			s.IdentityID = identityID
		}
	}
	return sessions, nil
}

// DeleteIdentity removes an identity. An identity that is already gone counts as deleted.
func (c *Client) DeleteIdentity(ctx context.Context, id string) error {
	_, err := c.rest.Do(ctx, rest.Request{
		Method: http.MethodDelete,
		Path:   "/admin/identities/" + url.PathEscape(id),
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// RevokeSessions revokes every session of an identity
func (c *Client) RevokeSessions(ctx context.Context, id string) error {
	_, err := c.rest.Do(ctx, rest.Request{
		Method: http.MethodDelete,
		Path:   "/admin/identities/" + url.PathEscape(id) + "/sessions",
	})
	return err
}

// SetState replaces the identity state with a JSON patch
func (c *Client) SetState(ctx context.Context, id string, state domain.IdentityState) error {
	if !state.Valid() {
		return fmt.Errorf("invalid identity state %q", state)
	}

	body, err := json.Marshal([]patchOp{{Op: "replace", Path: "/state", Value: string(state)}})
	if err != nil {
		return err
	}

	_, err = c.rest.Do(ctx, rest.Request{
		Method:      http.MethodPatch,
		Path:        "/admin/identities/" + url.PathEscape(id),
		Body:        body,
		ContentType: "application/json",
	})
	return err
}

// Version returns the server version string
func (c *Client) Version(ctx context.Context) (string, error) {
	resp, err := c.rest.Do(ctx, rest.Request{Method: http.MethodGet, Path: "/version"})
	if err != nil {
		return "", err
	}
	var v VersionDTO
	if err := rest.DecodeJSON(resp, &v); err != nil {
		return "", err
	}
	return v.Version, nil
}

var (
	_ domain.IdentityRepository = (*Client)(nil)
	_ domain.IdentityAdmin      = (*Client)(nil)
)
