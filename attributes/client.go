// Package attributes proxies reads and writes of named user attributes to the
// attribute service.
package attributes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/jrsteele09/go-account-api/downstream"
	"github.com/jrsteele09/go-account-api/sessions"
	"golang.org/x/sync/errgroup"
)

// UnknownAttributeNamesError lists requested names missing from the registry
type UnknownAttributeNamesError struct {
	Names []string
}

func (e *UnknownAttributeNamesError) Error() string {
	return "unknown attribute names: " + strings.Join(e.Names, ", ")
}

// Client reads and writes attributes through the authenticated executor
type Client struct {
	baseURL  string
	registry *Registry
	exec     *downstream.Executor
}

// NewClient creates a Client for the attribute service at baseURL
func NewClient(baseURL string, registry *Registry, exec *downstream.Executor) *Client {
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), registry: registry, exec: exec}
}

// Registry is the set of names the client accepts
func (c *Client) Registry() *Registry {
	return c.registry
}

// Fetch reads the named attributes concurrently. Attributes the service does
// not have are left out of the result. Every name is checked against the
// registry before any request is made.
func (c *Client) Fetch(ctx context.Context, names []string, session sessions.Session) (map[string]Value, sessions.Session, error) {
	if undefined := c.registry.Undefined(names); len(undefined) > 0 {
		return nil, session, &UnknownAttributeNamesError{Names: undefined}
	}
	names = unique(names)

	scope := c.exec.NewScope(session)
	found := make([]*Value, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			v, ok, err := c.fetchOne(gctx, scope, name)
			if err != nil {
				return err
			}
			if ok {
				found[i] = &v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, scope.Session(), err
	}

	values := make(map[string]Value, len(names))
	for i, name := range names {
		if found[i] != nil {
			values[name] = *found[i]
		}
	}
	return values, scope.Session(), nil
}

func (c *Client) fetchOne(ctx context.Context, scope *downstream.Scope, name string) (Value, bool, error) {
	res, err := scope.Do(ctx, downstream.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/v1/attributes/" + url.PathEscape(name),
	})
	if err != nil {
		return Value{}, false, err
	}
	if res.StatusCode == http.StatusNotFound {
		return Value{}, false, nil
	}
	if err := res.Err("get attribute " + name); err != nil {
		return Value{}, false, err
	}

	raw, ok := res.Body["claim_value"]
	if !ok {
		return Value{}, false, nil
	}
	v, err := ParseValue(raw)
	if err != nil {
		return Value{}, false, fmt.Errorf("attribute %q: %w", name, err)
	}
	if v.Kind() == KindNull {
		return Value{}, false, nil
	}
	return v, true, nil
}

type updateRequest struct {
	Attributes map[string]string `json:"attributes"`
}

// Update writes the attributes in one batch. Each value is encoded to its own
// JSON string so values of different shapes survive the trip unchanged.
func (c *Client) Update(ctx context.Context, attrs map[string]Value, session sessions.Session) (sessions.Session, error) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	if undefined := c.registry.Undefined(names); len(undefined) > 0 {
		return session, &UnknownAttributeNamesError{Names: undefined}
	}

	payload := updateRequest{Attributes: make(map[string]string, len(attrs))}
	for name, v := range attrs {
		encoded, err := json.Marshal(v)
		if err != nil {
			return session, fmt.Errorf("attribute %q: %w", name, err)
		}
		payload.Attributes[name] = string(encoded)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return session, fmt.Errorf("failed to encode attributes: %w", err)
	}

	res, session, err := c.exec.Execute(ctx, downstream.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/v1/attributes",
		Body:   body,
	}, session)
	if err != nil {
		return session, err
	}
	return session, res.Err("update attributes")
}

func unique(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
