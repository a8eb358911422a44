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
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
	"github.com/dmitrijs2005/gophrecharge/internal/logging"
	"github.com/dmitrijs2005/gophrecharge/internal/metrics"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

const (
	DefaultBaseURL = "http://www.gs.montviewfarm.net/api/"
	DefaultTimeout = 15 * time.Second

	defaultPerPage   = 10
	maxResponseBytes = 1 << 20
)

// TokenStore is the part of the token store the client depends on.
type TokenStore interface {
	Set(ctx context.Context, token string)
	Credential(ctx context.Context) (models.Credential, bool)
	Clear(ctx context.Context)
}

// BreakerSettings tunes the circuit breaker around the transport.
type BreakerSettings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	Store   TokenStore
	Logger  logging.Logger
	Metrics *metrics.Metrics
	Breaker *BreakerSettings

	// HTTPClient overrides the underlying client; Timeout is ignored then.
	HTTPClient *http.Client
}

// HTTPClient is the JSON/HTTP implementation of Client.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	store   TokenStore
	log     logging.Logger
	metrics *metrics.Metrics

	// credMu serialises credential writes so a late login cannot store a
	// token after Logout or a 401 cleared it.
	credMu sync.Mutex

	mu     sync.RWMutex
	bearer string
	gen    uint64

	listenersMu sync.Mutex
	listeners   map[int]func(ctx context.Context)
	nextID      int
}

var _ Client = (*HTTPClient)(nil)

func New(opts Options) (*HTTPClient, error) {
	if opts.Store == nil {
		return nil, errors.New("token store is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}
	// Endpoints are resolved relative to the base, so it must end in a slash.
	if len(base.Path) == 0 || base.Path[len(base.Path)-1] != '/' {
		base.Path += "/"
	}

	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	log := opts.Logger.With("component", "api")

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	bs := DefaultBreakerSettings()
	if opts.Breaker != nil {
		bs = *opts.Breaker
	}

	c := &HTTPClient{
		baseURL:   base,
		http:      hc,
		store:     opts.Store,
		log:       log,
		metrics:   opts.Metrics,
		listeners: make(map[int]func(ctx context.Context)),
	}

	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "recharge-api",
		MaxRequests: bs.MaxRequests,
		Interval:    bs.Interval,
		Timeout:     bs.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
	})

	return c, nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.LoginCredentials) (*models.LoginResponse, error) {
	const op = "login"
	if err := c.validate(op, creds); err != nil {
		return nil, err
	}

	gen := c.generation()
	var resp models.LoginResponse
	if err := c.do(ctx, op, http.MethodPost, "login", nil, creds, &resp); err != nil {
		return nil, err
	}

	if !c.setToken(ctx, resp.Token, gen) {
		return nil, ErrSuperseded
	}
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, data models.RegisterData) (*models.RegisterResponse, error) {
	const op = "register"
	if err := c.validate(op, data); err != nil {
		return nil, err
	}

	gen := c.generation()
	var resp models.RegisterResponse
	if err := c.do(ctx, op, http.MethodPost, "register", nil, data, &resp); err != nil {
		return nil, err
	}

	if len(resp.Errors) > 0 {
		return nil, &ServerError{Status: http.StatusOK, Message: resp.Errors[0], Kind: ErrServer}
	}

	if !c.setToken(ctx, resp.Token, gen) {
		return nil, ErrSuperseded
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, data models.ProfileUpdate) (*models.ProfileResponse, error) {
	const op = "profile"
	if data.Empty() {
		c.metrics.APIRequest(op, "validation")
		return nil, &ValidationError{Message: "no profile fields to update"}
	}
	if err := c.validate(op, data); err != nil {
		return nil, err
	}

	var resp models.ProfileResponse
	if err := c.do(ctx, op, http.MethodPost, "profile", nil, data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRechargeHistory fetches one page of the user's recharges. Page and
// perPage default to 1 and 10 when not positive.
func (c *HTTPClient) GetRechargeHistory(ctx context.Context, userID int64, page, perPage int) (*models.Page[models.Recharge], error) {
	const op = "history"
	if userID == 0 {
		c.metrics.APIRequest(op, "validation")
		return nil, &ValidationError{Field: "userId", Message: "is required"}
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var resp models.Page[models.Recharge]
	path := "recharges/" + strconv.FormatInt(userID, 10)
	if err := c.do(ctx, op, http.MethodGet, path, q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) MakeRecharge(ctx context.Context, data models.RechargeRequest) (*models.RechargeResponse, error) {
	const op = "recharge"
	if err := c.validate(op, data); err != nil {
		return nil, err
	}

	var resp models.RechargeResponse
	if err := c.do(ctx, op, http.MethodPost, "recharge", nil, data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var resp models.MeResponse
	if err := c.do(ctx, "me", http.MethodGet, "auth/me", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *HTTPClient) ServerLogout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "auth/logout", nil, nil, nil)
}

func (c *HTTPClient) Logout(ctx context.Context) {
	c.revoke(ctx)
}

func (c *HTTPClient) RestoreToken(ctx context.Context) bool {
	cred, ok := c.store.Credential(ctx)
	c.mu.Lock()
	c.bearer = cred.Value
	c.mu.Unlock()
	return ok
}

func (c *HTTPClient) OnUnauthorized(fn func(ctx context.Context)) func() {
	c.listenersMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.listeners, id)
		c.listenersMu.Unlock()
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// generation identifies the current credential. Logout and a 401 advance
// it, so a token issued to a request started earlier is never applied.
func (c *HTTPClient) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// setToken stores token and attaches it to later requests unless the
// credential was revoked since gen was read. An empty token is a no-op.
func (c *HTTPClient) setToken(ctx context.Context, token string, gen uint64) bool {
	c.credMu.Lock()
	defer c.credMu.Unlock()

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return false
	}
	if token != "" {
		c.bearer = token
	}
	c.mu.Unlock()

	if token != "" {
		c.store.Set(ctx, token)
	}
	return true
}

// revoke forgets the credential and advances the generation.
func (c *HTTPClient) revoke(ctx context.Context) {
	c.credMu.Lock()
	defer c.credMu.Unlock()

	c.store.Clear(ctx)
	c.mu.Lock()
	c.bearer = ""
	c.gen++
	c.mu.Unlock()
}

func (c *HTTPClient) authHeader() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bearer == "" {
		return ""
	}
	return "Bearer " + c.bearer
}

func (c *HTTPClient) validate(op string, in any) error {
	if err := validateInput(in); err != nil {
		c.metrics.APIRequest(op, "validation")
		return err
	}
	return nil
}

// errServerStatus marks a 5xx response as a breaker failure.
var errServerStatus = errors.New("server status")

func (c *HTTPClient) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if auth := c.authHeader(); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	ctx = logging.WithRequestID(ctx, requestID)
	start := time.Now()

	var resp *http.Response
	_, err = c.breaker.Execute(func() (*http.Response, error) {
		r, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		resp = r
		if r.StatusCode >= http.StatusInternalServerError {
			return r, errServerStatus
		}
		return r, nil
	})
	if err != nil && !errors.Is(err, errServerStatus) {
		if resp != nil {
			resp.Body.Close()
		}
		return c.transportError(ctx, op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.transportError(ctx, op, err)
	}

	c.log.Debug(ctx, "api request", "op", op, "method", method,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx)
		c.metrics.APIRequest(op, "unauthorized")
		return &ServerError{
			Status:  resp.StatusCode,
			Message: serverMessage(raw, http.StatusText(resp.StatusCode)),
			Kind:    ErrUnauthorized,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.APIRequest(op, "error")
		return &ServerError{
			Status:  resp.StatusCode,
			Message: serverMessage(raw, http.StatusText(resp.StatusCode)),
			Kind:    ErrServer,
		}
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			c.metrics.APIRequest(op, "error")
			return &ServerError{
				Status:  resp.StatusCode,
				Message: "malformed response from server",
				Kind:    ErrServer,
				Err:     err,
			}
		}
	}

	c.metrics.APIRequest(op, "ok")
	return nil
}

func (c *HTTPClient) transportError(ctx context.Context, op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.metrics.APIRequest(op, "unavailable")
		return &ServerError{Message: "service temporarily unavailable", Kind: ErrUnavailable, Err: err}
	}

	c.log.Warn(ctx, "api request failed", "op", op, "error", err)
	c.metrics.APIRequest(op, "unavailable")
	return &ServerError{Message: err.Error(), Kind: ErrUnavailable, Err: err}
}

// handleUnauthorized forgets the credential and tells subscribers. It runs
// before the error reaches the caller.
func (c *HTTPClient) handleUnauthorized(ctx context.Context) {
	c.revoke(ctx)
	c.metrics.Unauthorized()
	c.log.Info(ctx, "credential rejected by server, cleared")

	c.listenersMu.Lock()
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(ctx context.Context), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.listeners[id])
	}
	c.listenersMu.Unlock()

	for _, fn := range fns {
		fn(ctx)
	}
}

type errorBody struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

// serverMessage extracts the human-readable message from an error body:
// "message" first, then the first entry of "errors" (a list, or a map of
// field to list), else fallback.
func serverMessage(raw []byte, fallback string) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return fallback
	}
	if body.Message != "" {
		return body.Message
	}
	if len(body.Errors) == 0 {
		return fallback
	}

	var list []string
	if err := json.Unmarshal(body.Errors, &list); err == nil && len(list) > 0 {
		return list[0]
	}

	var fields map[string][]string
	if err := json.Unmarshal(body.Errors, &fields); err == nil && len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if len(fields[k]) > 0 {
				return fields[k][0]
			}
		}
	}
	return fallback
}
