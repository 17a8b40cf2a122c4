// Package client is a Go client for the storefront HTTP API.
//
// It keeps the session and the shopping cart locally, persisting both in a
// pluggable Store so a restarted client picks up where it left off. The cart
// is a *cart.Cart owned by a single goroutine; the rest of the client is safe
// for concurrent use.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/pkg/cart"
)

const (
	sessionKey = "session"
	cartKey    = "cart"

	defaultTimeout = 10 * time.Second
)

// ErrNoSession is returned by calls that need a login when none is held.
var ErrNoSession = errors.New("storefront: not logged in")

// Fallback names the dataset served when the catalog cannot be reached.
type Fallback int

const (
	// FallbackNone surfaces transport errors to the caller.
	FallbackNone Fallback = iota
	// FallbackSample serves the built-in sample catalog.
	FallbackSample
)

// Mode reports whether catalog data came from the server.
type Mode int

const (
	ModeOnline Mode = iota
	ModeDegraded
)

func (m Mode) String() string {
	if m == ModeDegraded {
		return "degraded"
	}
	return "online"
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithStore sets the local cache. Defaults to a MemoryStore.
func WithStore(s Store) Option {
	return func(c *Client) { c.store = s }
}

func WithFallback(f Fallback) Option {
	return func(c *Client) { c.fallback = f }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

type Client struct {
	baseURL  *url.URL
	http     *http.Client
	store    Store
	fallback Fallback
	log      zerolog.Logger
	now      func() time.Time

	mu      sync.RWMutex
	session *Session
	mode    Mode

	cart *cart.Cart
}

// New builds a client for baseURL and restores any cached session and cart.
// An expired cached session is discarded.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		store:   NewMemoryStore(),
		log:     zerolog.Nop(),
		now:     time.Now,
		cart:    cart.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.restore(); err != nil {
		return nil, err
	}
	c.cart.Subscribe(func(cart.Event) { c.persistCart() })
	return c, nil
}

func (c *Client) restore() error {
	if raw, ok, err := c.store.Get(sessionKey); err != nil {
		return fmt.Errorf("read cached session: %w", err)
	} else if ok {
		var s Session
		if err := json.Unmarshal(raw, &s); err != nil || s.Expired(c.now()) {
			c.log.Debug().Msg("dropping unusable cached session")
			_ = c.store.Delete(sessionKey)
		} else {
			c.session = &s
		}
	}

	if raw, ok, err := c.store.Get(cartKey); err != nil {
		return fmt.Errorf("read cached cart: %w", err)
	} else if ok {
		var snap cart.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			c.log.Debug().Err(err).Msg("dropping unreadable cached cart")
			_ = c.store.Delete(cartKey)
		} else {
			c.cart.Restore(snap)
		}
	}
	return nil
}

func (c *Client) persistCart() {
	raw, err := json.Marshal(c.cart.Snapshot())
	if err == nil {
		err = c.store.Set(cartKey, raw)
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to persist cart")
	}
}

// Cart returns the local cart. Mutations are persisted automatically.
func (c *Client) Cart() *cart.Cart { return c.cart }

// Session returns a copy of the current session, or nil.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Mode reports whether the last catalog read was served by the server.
func (c *Client) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

func (c *Client) setMode(m Mode) {
	c.mu.Lock()
	c.mode = m
	c.mu.Unlock()
}

func (c *Client) setSession(s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	return c.store.Set(sessionKey, raw)
}

// --- Accounts ---

func (c *Client) Signup(ctx context.Context, name, email, password string) (*User, error) {
	return c.startSession(ctx, http.MethodPost, "/auth/signup", map[string]string{
		"name": name, "email": email, "password": password,
	}, false)
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.startSession(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": password,
	}, false)
}

// UpdateProfile changes the account and stores the refreshed token.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	return c.startSession(ctx, http.MethodPut, "/me", update, true)
}

func (c *Client) startSession(ctx context.Context, method, path string, body any, auth bool) (*User, error) {
	var s Session
	if err := c.do(ctx, method, path, body, auth, nil, &s); err != nil {
		return nil, err
	}
	if err := c.setSession(&s); err != nil {
		return nil, fmt.Errorf("cache session: %w", err)
	}
	u := s.User
	return &u, nil
}

// Me fetches the current user and refreshes the cached copy.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/me", nil, true, nil, &u); err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.session != nil {
		c.session.User = u
	}
	s := c.session
	c.mu.Unlock()
	if s != nil {
		if err := c.setSession(s); err != nil {
			c.log.Warn().Err(err).Msg("failed to cache refreshed user")
		}
	}
	return &u, nil
}

// Users lists every account. Admin only.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Logout forgets the session and empties the cart. The token itself stays
// valid on the server until it expires.
func (c *Client) Logout() error {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	c.cart.Clear()
	return errors.Join(c.store.Delete(sessionKey), c.store.Delete(cartKey))
}

// --- Catalog ---

// Products lists the catalog. With FallbackSample a transport failure yields
// the filtered sample catalog and switches Mode to ModeDegraded.
func (c *Client) Products(ctx context.Context, q ProductQuery) ([]Product, error) {
	params := url.Values{}
	set := func(k, v string) {
		if v != "" {
			params.Set(k, v)
		}
	}
	set("category", q.Category)
	set("brand", q.Brand)
	set("search", q.Search)
	set("sort", q.Sort)
	if q.MinPrice != nil {
		params.Set("min_price", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		params.Set("max_price", q.MaxPrice.String())
	}

	var out []Product
	err := c.do(ctx, http.MethodGet, "/products", nil, false, params, &out)
	if c.degrade(err) {
		return sampleProducts(q), nil
	}
	if err != nil {
		return nil, err
	}
	c.setMode(ModeOnline)
	return out, nil
}

// Product fetches one product, falling back like Products.
func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	var out Product
	err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, false, nil, &out)
	if c.degrade(err) {
		for _, p := range sampleProducts(ProductQuery{}) {
			if p.ID == id {
				return &p, nil
			}
		}
		return nil, &APIError{Status: http.StatusNotFound, Message: domain.ErrProductNotFound.Error()}
	}
	if err != nil {
		return nil, err
	}
	c.setMode(ModeOnline)
	return &out, nil
}

// degrade switches to ModeDegraded when err is a transport failure and the
// sample fallback is enabled.
func (c *Client) degrade(err error) bool {
	var te *transportError
	if c.fallback != FallbackSample || !errors.As(err, &te) {
		return false
	}
	c.log.Warn().Err(err).Msg("catalog unreachable, serving sample data")
	c.setMode(ModeDegraded)
	return true
}

func sampleProducts(q ProductQuery) []Product {
	var out []Product
	for _, p := range domain.SampleProducts() {
		if !matches(p, q) {
			continue
		}
		out = append(out, productFromDomain(p))
	}
	return out
}

func matches(p domain.Product, q ProductQuery) bool {
	contains := func(s, sub string) bool {
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}
	switch {
	case q.Category != "" && !contains(p.Category, q.Category):
		return false
	case q.Brand != "" && !contains(p.Brand, q.Brand):
		return false
	case q.MinPrice != nil && p.Price.LessThan(*q.MinPrice):
		return false
	case q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice):
		return false
	case q.Search != "" && !contains(p.Name, q.Search) && !contains(p.Brand, q.Search) &&
		!contains(p.Model, q.Search) && !contains(p.Category, q.Search):
		return false
	}
	return true
}

// --- Orders ---

type orderItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type orderRequest struct {
	Items []orderItem `json:"items"`
	Total string      `json:"total"`
}

// Checkout submits the cart and empties it once the order is accepted.
// Reusing idempotencyKey after a network failure returns the original order
// instead of placing a second one.
func (c *Client) Checkout(ctx context.Context, idempotencyKey string) (*Order, error) {
	lines := c.cart.Lines()
	req := orderRequest{
		Items: make([]orderItem, 0, len(lines)),
		Total: cart.Subtotal(lines).StringFixed(2),
	}
	for _, l := range lines {
		req.Items = append(req.Items, orderItem{ID: l.Product.ID, Quantity: l.Quantity})
	}

	var headers http.Header
	if idempotencyKey != "" {
		headers = http.Header{"Idempotency-Key": []string{idempotencyKey}}
	}
	var out Order
	if err := c.doWithHeaders(ctx, http.MethodPost, "/orders", req, true, nil, headers, &out); err != nil {
		return nil, err
	}
	c.cart.Clear()
	return &out, nil
}

// MyOrders lists the caller's orders, newest first. Zero page or limit uses
// the server default.
func (c *Client) MyOrders(ctx context.Context, page, limit int) (*OrderPage, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out OrderPage
	if err := c.do(ctx, http.MethodGet, "/orders/mine", nil, true, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Transport ---

// transportError marks failures where no HTTP response was received.
type transportError struct{ err error }

func (e *transportError) Error() string { return "storefront: transport: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func (c *Client) do(ctx context.Context, method, path string, body any, auth bool, params url.Values, out any) error {
	return c.doWithHeaders(ctx, method, path, body, auth, params, nil, out)
}

func (c *Client) doWithHeaders(ctx context.Context, method, path string, body any, auth bool, params url.Values, headers http.Header, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if auth {
		s := c.Session()
		if s == nil {
			return ErrNoSession
		}
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
