// Package api is the typed client for the pupusería backend. Every
// response is decoded in a single step against an explicit shape; a
// mismatched payload is a decode error, never silently-empty data.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/dmcastellon/pupusapos/pkg/errors"
	"github.com/dmcastellon/pupusapos/pkg/logger"
	"github.com/dmcastellon/pupusapos/pkg/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultTimeout bounds every backend call unless configured otherwise.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies credentials for authenticated calls. The session
// manager implements it; Refresh must coalesce concurrent callers.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// Options configures the client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource
	Logger  *logger.Logger
	Metrics *metrics.ClientMetrics

	// HTTPClient overrides the default transport, used by tests.
	HTTPClient *http.Client
}

// Client talks to the backend. Tokens and Metrics are optional: without
// a token source every call goes out unauthenticated.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	logg     *logger.Logger
	metrics  *metrics.ClientMetrics
	validate *validator.Validate
}

// New builds a client for the given backend.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = timeout

	return &Client{
		baseURL:  base,
		http:     httpClient,
		tokens:   opts.Tokens,
		logg:     opts.Logger,
		metrics:  opts.Metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

type requestSpec struct {
	method string
	path   string
	query  url.Values
	body   any
	authed bool
	// header carries explicit credentials for calls the session manager
	// drives itself (logout, profile), bypassing the token source.
	header http.Header
}

// do executes one logical request: validate, send, and on a 401 perform
// exactly one coalesced refresh followed by one retry. Timeouts and
// transport failures never trigger the refresh path.
func (c *Client) do(ctx context.Context, spec requestSpec, out any) error {
	raw, err := c.roundTrip(ctx, spec, false)
	if err != nil {
		if pkgerrors.IsAuthFailure(err) && spec.authed && c.tokens != nil {
			if _, refreshErr := c.tokens.Refresh(ctx); refreshErr != nil {
				return refreshErr
			}
			raw, err = c.roundTrip(ctx, spec, true)
		}
		if err != nil {
			return err
		}
	}
	if out == nil {
		return nil
	}
	return unmarshalEnvelope(raw, out)
}

// doBare is do without the success envelope: auth endpoints respond with
// bare objects.
func (c *Client) doBare(ctx context.Context, spec requestSpec, out any) error {
	raw, err := c.roundTrip(ctx, spec, false)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decoding response body")
	}
	return nil
}

// doRaw returns the body verbatim, for file downloads.
func (c *Client) doRaw(ctx context.Context, spec requestSpec) ([]byte, error) {
	raw, err := c.roundTrip(ctx, spec, false)
	if err != nil && pkgerrors.IsAuthFailure(err) && spec.authed && c.tokens != nil {
		if _, refreshErr := c.tokens.Refresh(ctx); refreshErr != nil {
			return nil, refreshErr
		}
		raw, err = c.roundTrip(ctx, spec, true)
	}
	return raw, err
}

func (c *Client) roundTrip(ctx context.Context, spec requestSpec, isRetry bool) ([]byte, error) {
	if spec.body != nil {
		if err := c.validate.Struct(spec.body); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, firstValidationMessage(err))
		}
	}

	var reader io.Reader
	if spec.body != nil {
		encoded, err := json.Marshal(spec.body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encoding request body")
		}
		reader = bytes.NewReader(encoded)
	}

	target := c.baseURL + spec.path
	if len(spec.query) > 0 {
		target += "?" + spec.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, spec.method, target, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	for key, values := range spec.header {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}

	if spec.authed && c.tokens != nil {
		access, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, err
		}
		if access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	ctx = c.logg.WithEndpoint(ctx, spec.method, spec.path)
	ctx = c.logg.WithRequestID(ctx, req.Header.Get("X-Request-ID"))
	if isRetry {
		c.logg.Debug(ctx, "retrying request with refreshed token")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(spec.method, spec.path, 0, time.Since(start))
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.ObserveRequest(spec.method, spec.path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "reading response body")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logg.Debug(ctx, "request completed")
		return body, nil
	}
	return nil, errorFromResponse(resp.StatusCode, body)
}

func classifyTransportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "backend did not respond in time")
	case errors.Is(err, context.Canceled):
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "request canceled")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "could not reach backend")
	}
}

func firstValidationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		// Fail-fast surface: only the first violation reaches the user.
		return fmt.Sprintf("invalid value for %s", fieldErrs[0].Field())
	}
	return "invalid request"
}
