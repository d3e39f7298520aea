package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/logger"
	"groupkeeper-backend/internal/metrics"
)

const (
	sessionCookieName = ".ROBLOSECURITY"
	csrfHeader        = "X-CSRF-TOKEN"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20
)

// Config holds configuration for creating a Client.
type Config struct {
	// GroupID is the managed group.
	GroupID int64

	// SessionCookie is the platform session credential.
	SessionCookie string

	// Base URLs for the users and groups API hosts. Defaults point at the
	// public platform.
	UsersBaseURL  string
	GroupsBaseURL string

	// HTTPClient is used for all requests. Defaults to a client with a 10s timeout.
	HTTPClient *http.Client

	// Limiter paces outbound requests. Nil means unlimited.
	Limiter *rate.Limiter

	// Metrics records request outcomes. Nil records nothing.
	Metrics *metrics.Metrics
}

// Client talks to the group platform on behalf of one session.
type Client struct {
	groupID    int64
	session    string
	usersURL   string
	groupsURL  string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
}

// NewClient creates a platform client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.GroupID <= 0 {
		return nil, fmt.Errorf("platform: group id is required")
	}
	if strings.TrimSpace(cfg.SessionCookie) == "" {
		return nil, fmt.Errorf("platform: session cookie is required")
	}

	usersURL := cfg.UsersBaseURL
	if usersURL == "" {
		usersURL = "https://users.roblox.com"
	}
	groupsURL := cfg.GroupsBaseURL
	if groupsURL == "" {
		groupsURL = "https://groups.roblox.com"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		groupID:    cfg.GroupID,
		session:    strings.TrimSpace(cfg.SessionCookie),
		usersURL:   strings.TrimRight(usersURL, "/"),
		groupsURL:  strings.TrimRight(groupsURL, "/"),
		httpClient: httpClient,
		limiter:    cfg.Limiter,
		metrics:    cfg.Metrics,
	}, nil
}

// GroupID returns the managed group id.
func (c *Client) GroupID() int64 {
	return c.groupID
}

// response is a fully read platform response.
type response struct {
	status int
	header http.Header
	body   []byte
}

// do executes one logical platform call and returns its final outcome. If the
// first attempt is answered with a CSRF challenge (403 plus a token header),
// the identical request is sent once more carrying the token. A challenge on
// that retry is returned as ErrCSRFRejected; it is never retried again.
//
// Non-2xx outcomes are returned as *APIError. Transport failures are wrapped
// in domain.ErrUpstream, except context cancellation which is returned as the
// context's error.
func (c *Client) do(ctx context.Context, operation, method, url string, requestBody any) (*response, error) {
	var payload []byte
	if requestBody != nil {
		var err error
		payload, err = json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("platform: %s: encoding request: %w", operation, err)
		}
	}

	start := time.Now()
	logger.PlatformCall(operation, method, url)

	resp, err := c.send(ctx, method, url, payload, "")
	if err == nil && isChallenge(resp) {
		token := resp.header.Get(csrfHeader)
		logger.Debug("Platform issued CSRF challenge, retrying once", "operation", operation)
		resp, err = c.send(ctx, method, url, payload, token)
		if err == nil {
			c.metrics.ObserveCSRFRetry(operation, !isChallenge(resp))
		}
		if err == nil && isChallenge(resp) {
			apiErr := newAPIError(operation, resp)
			c.finish(operation, resp.status, start, apiErr)
			return nil, fmt.Errorf("%w: %w", ErrCSRFRejected, apiErr)
		}
	}
	if err != nil {
		err = c.transportError(ctx, operation, err)
		c.finish(operation, 0, start, err)
		return nil, err
	}

	if resp.status < 200 || resp.status >= 300 {
		apiErr := newAPIError(operation, resp)
		c.finish(operation, resp.status, start, apiErr)
		return nil, apiErr
	}

	c.finish(operation, resp.status, start, nil)
	return resp, nil
}

// send performs a single HTTP attempt and reads the body.
func (c *Client) send(ctx context.Context, method, url string, payload []byte, csrfToken string) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cookie", sessionCookieName+"="+c.session)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if csrfToken != "" {
		req.Header.Set(csrfHeader, csrfToken)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return &response{status: httpResp.StatusCode, header: httpResp.Header, body: data}, nil
}

func (c *Client) transportError(ctx context.Context, operation string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("platform: %s: %w", operation, ctxErr)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrUpstream, operation, err)
}

func (c *Client) finish(operation string, status int, start time.Time, err error) {
	c.metrics.ObservePlatformRequest(operation, status, time.Since(start).Seconds())
	logger.PlatformResult(operation, status, err, "duration_ms", time.Since(start).Milliseconds())
}

func isChallenge(resp *response) bool {
	return resp.status == http.StatusForbidden && resp.header.Get(csrfHeader) != ""
}

func newAPIError(operation string, resp *response) *APIError {
	apiErr := &APIError{Operation: operation, StatusCode: resp.status}
	var envelope errorEnvelope
	if err := json.Unmarshal(resp.body, &envelope); err == nil && len(envelope.Errors) > 0 {
		apiErr.Code = envelope.Errors[0].Code
		apiErr.Message = envelope.Errors[0].Message
	}
	return apiErr
}

// decode unmarshals a successful response body into target.
func decode(operation string, resp *response, target any) error {
	if err := json.Unmarshal(resp.body, target); err != nil {
		return fmt.Errorf("%w: %s: malformed response body: %w", domain.ErrUpstream, operation, err)
	}
	return nil
}
