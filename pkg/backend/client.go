package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lunamercado/storefront-gateway/internal/credentials"
	"github.com/lunamercado/storefront-gateway/pkg/config"
	pkgerrors "github.com/lunamercado/storefront-gateway/pkg/errors"
	"github.com/lunamercado/storefront-gateway/pkg/logger"
	"github.com/lunamercado/storefront-gateway/pkg/metrics"
	"github.com/lunamercado/storefront-gateway/pkg/token"
)

// Service names one of the REST backends the gateway composes.
type Service string

const (
	ServiceUser      Service = "user"
	ServiceOrder     Service = "order"
	ServiceProduct   Service = "product"
	ServiceAnalytics Service = "analytics"
	ServiceOther     Service = "other"
)

const (
	authorizationHeader = "Authorization"
	refreshTokenHeader  = "X-Refresh-Token"
	refreshPath         = "/auth/refresh/token"

	// CodeTokenExpired is the marker the backends place in the error
	// envelope when the presented access credential is stale.
	CodeTokenExpired = "TOKEN_EXPIRED"

	errorBodyReadLimit int64 = 4096
)

var errCredentialStoreRequired = errors.New("credential store is required")

// Client performs calls against the named backend services, attaching the
// session's access credential and recovering from an expired credential
// exactly once per call. All recovery is expressed as typed errors; the
// client never navigates or touches anything beyond the credential store.
type Client struct {
	httpClient  *http.Client
	baseURLs    map[Service]string
	creds       credentials.Store
	logger      *logger.Logger
	metrics     *metrics.BackendMetrics
	refreshSkew time.Duration
	now         func() time.Time
	refreshing  singleflight.Group
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithClock overrides the time source used for proactive refresh decisions.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds the backend client from the configured base URLs.
func NewClient(cfg config.BackendsConfig, creds credentials.Store, logg *logger.Logger, m *metrics.BackendMetrics, refreshSkew time.Duration, opts ...Option) (*Client, error) {
	if creds == nil {
		return nil, errCredentialStoreRequired
	}

	baseURLs := map[Service]string{}
	for service, raw := range map[Service]string{
		ServiceUser:      cfg.UserBaseURL,
		ServiceOrder:     cfg.OrderBaseURL,
		ServiceProduct:   cfg.ProductBaseURL,
		ServiceAnalytics: cfg.AnalyticsBaseURL,
		ServiceOther:     cfg.OtherBaseURL,
	} {
		trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
		if trimmed != "" {
			baseURLs[service] = trimmed
		}
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURLs:    baseURLs,
		creds:       creds,
		logger:      logg,
		metrics:     m,
		refreshSkew: refreshSkew,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Do performs an authenticated call and decodes the envelope's data field
// into out. A missing or expiring access credential triggers a refresh before
// the call; a TOKEN_EXPIRED response triggers a refresh and a single replay.
// Both paths return the same unwrapped shape as the normal path.
func (c *Client) Do(ctx context.Context, method, path string, service Service, body, out any) error {
	sessionKey := credentials.SessionKeyFromContext(ctx)
	if sessionKey == "" {
		return pkgerrors.New(pkgerrors.CodeSessionExpired, "no storefront session")
	}

	pair, err := c.creds.Get(ctx, sessionKey)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading credentials")
	}

	if strings.TrimSpace(pair.AccessToken) == "" || token.ExpiresWithin(pair.AccessToken, c.now(), c.refreshSkew) {
		return c.refreshAndCall(ctx, sessionKey, method, path, service, body, out)
	}

	err = c.call(ctx, method, path, service, bearerAuth(pair.AccessToken), body, out)
	if isTokenExpired(err) {
		return c.refreshAndCall(ctx, sessionKey, method, path, service, body, out)
	}
	return err
}

// Public performs the same call without attaching any credential and without
// refresh recovery. Used for unauthenticated endpoints.
func (c *Client) Public(ctx context.Context, method, path string, service Service, body, out any) error {
	return c.call(ctx, method, path, service, nil, body, out)
}

func (c *Client) refreshAndCall(ctx context.Context, sessionKey, method, path string, service Service, body, out any) error {
	if err := c.refreshCredentials(ctx, sessionKey, service); err != nil {
		return err
	}
	pair, err := c.creds.Get(ctx, sessionKey)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading refreshed credentials")
	}
	return c.call(ctx, method, path, service, bearerAuth(pair.AccessToken), body, out)
}

// refreshCredentials rotates the session's token pair through the backend's
// refresh endpoint. Concurrent attempts for the same session collapse into
// one upstream call.
func (c *Client) refreshCredentials(ctx context.Context, sessionKey string, service Service) error {
	_, err, _ := c.refreshing.Do(sessionKey, func() (any, error) {
		// The collapsed refresh serves every waiting caller, so it must not
		// die with whichever one happened to start it.
		ctx := context.WithoutCancel(ctx)
		pair, err := c.creds.Get(ctx, sessionKey)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading credentials")
		}
		if strings.TrimSpace(pair.RefreshToken) == "" {
			_ = c.creds.Clear(ctx, sessionKey)
			c.metrics.IncRefresh("logged_out")
			return nil, pkgerrors.New(pkgerrors.CodeSessionExpired, "session expired")
		}

		var rotated struct {
			NewAccessToken  string `json:"newAccessToken"`
			NewRefreshToken string `json:"newRefreshToken"`
		}
		err = c.call(ctx, http.MethodGet, refreshPath, service, headerAuth(refreshTokenHeader, pair.RefreshToken), nil, &rotated)
		if err != nil || rotated.NewAccessToken == "" || rotated.NewRefreshToken == "" {
			_ = c.creds.Clear(ctx, sessionKey)
			c.metrics.IncRefresh("failure")
			if c.logger != nil {
				c.logger.Warn(c.logger.WithBackend(ctx, string(service)), "credential refresh failed, session cleared")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeSessionExpired, err, "session expired")
		}

		if err := c.creds.Set(ctx, sessionKey, credentials.Pair{
			AccessToken:  rotated.NewAccessToken,
			RefreshToken: rotated.NewRefreshToken,
		}); err != nil {
			c.metrics.IncRefresh("failure")
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting refreshed credentials")
		}
		c.metrics.IncRefresh("success")
		return nil, nil
	})
	return err
}

type authSetter func(*http.Request)

func bearerAuth(accessToken string) authSetter {
	return func(req *http.Request) {
		req.Header.Set(authorizationHeader, "Bearer "+accessToken)
	}
}

func headerAuth(header, value string) authSetter {
	return func(req *http.Request) {
		req.Header.Set(header, value)
	}
}

// call performs one HTTP round trip and normalizes the response: errors map
// to typed codes carrying a BackendDetail, successes unwrap the data field.
func (c *Client) call(ctx context.Context, method, path string, service Service, auth authSetter, body, out any) error {
	baseURL, ok := c.baseURLs[service]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("no base url configured for %s service", service))
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), baseURL+"/"+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != nil {
		auth(req)
	}

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(string(service), "transport_error", time.Since(start))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s against %s service failed", strings.ToUpper(method), path, service))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		c.metrics.ObserveRequest(string(service), "error", time.Since(start))
		return c.errorFromResponse(service, resp)
	}
	c.metrics.ObserveRequest(string(service), "success", time.Since(start))

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDecoding, err, fmt.Sprintf("decode %s response envelope", service))
	}
	if len(envelope.Data) == 0 {
		return pkgerrors.New(pkgerrors.CodeDecoding, fmt.Sprintf("%s response missing data field", service))
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDecoding, err, fmt.Sprintf("decode %s response data", service))
	}
	return nil
}

func (c *Client) errorFromResponse(service Service, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	detail := &pkgerrors.BackendDetail{
		Service: string(service),
		Status:  resp.StatusCode,
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		detail.Code = envelope.Error.Code
		detail.Message = envelope.Error.Message
	} else {
		detail.Message = strings.TrimSpace(string(raw))
	}

	code := codeForStatus(resp.StatusCode)
	if detail.Code == CodeTokenExpired {
		code = pkgerrors.CodeUnauthorized
	}
	return pkgerrors.Wrap(code, detail, fmt.Sprintf("%s service returned %d", service, resp.StatusCode))
}

// isTokenExpired reports whether the error carries the backend's stale
// credential marker. Only that marker triggers refresh-and-retry; every other
// failure propagates unchanged.
func isTokenExpired(err error) bool {
	if err == nil {
		return false
	}
	var detail *pkgerrors.BackendDetail
	return errors.As(err, &detail) && detail.Code == CodeTokenExpired
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
