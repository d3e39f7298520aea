package platform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/metrics"
)

const testGroupID = 4242

// recorded is one request seen by the fake platform.
type recorded struct {
	Method string
	Path   string
	Cookie string
	Token  string
	Body   string
}

// fakePlatform is an httptest server that records requests and replies with
// scripted responses.
type fakePlatform struct {
	mu       sync.Mutex
	requests []recorded
	handler  func(w http.ResponseWriter, r *http.Request, attempt int)
}

func (f *fakePlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Cookie: r.Header.Get("Cookie"),
		Token:  r.Header.Get(csrfHeader),
		Body:   string(body),
	})
	attempt := len(f.requests)
	f.mu.Unlock()
	f.handler(w, r, attempt)
}

func (f *fakePlatform) seen() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recorded, len(f.requests))
	copy(out, f.requests)
	return out
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, attempt int)) (*Client, *fakePlatform) {
	t.Helper()
	fake := &fakePlatform{handler: handler}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		GroupID:       testGroupID,
		SessionCookie: "secret-cookie",
		UsersBaseURL:  server.URL,
		GroupsBaseURL: server.URL,
		HTTPClient:    server.Client(),
		Metrics:       metrics.New(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return client, fake
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func challenge(w http.ResponseWriter, token string) {
	w.Header().Set(csrfHeader, token)
	writeJSON(w, http.StatusForbidden, map[string]any{
		"errors": []map[string]any{{"code": 0, "message": "Token Validation Failed"}},
	})
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{SessionCookie: "x"})
	assert.Error(t, err)

	_, err = NewClient(Config{GroupID: 1, SessionCookie: "  "})
	assert.Error(t, err)

	c, err := NewClient(Config{GroupID: 1, SessionCookie: "x"})
	require.NoError(t, err)
	assert.Equal(t, "https://groups.roblox.com", c.groupsURL)
	assert.Equal(t, int64(1), c.GroupID())
}

func TestClient_CSRFRetrySucceeds(t *testing.T) {
	client, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request, attempt int) {
		if r.Header.Get(csrfHeader) == "" {
			challenge(w, "tok-123")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	err := client.SetRole(context.Background(), 55, 3)
	require.NoError(t, err)

	reqs := fake.seen()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].Token)
	assert.Equal(t, "tok-123", reqs[1].Token)
	for _, r := range reqs {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/groups/4242/users/55", r.Path)
		assert.Equal(t, ".ROBLOSECURITY=secret-cookie", r.Cookie)
		assert.JSONEq(t, `{"roleId":3}`, r.Body)
	}
}

func TestClient_CSRFRetryReturnsSecondOutcome(t *testing.T) {
	client, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request, attempt int) {
		if attempt == 1 {
			challenge(w, "tok")
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errors": []map[string]any{{"code": 3, "message": "The user is invalid or does not exist."}},
		})
	})

	err := client.AcceptJoinRequest(context.Background(), 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotErrorIs(t, err, ErrCSRFRejected)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, 3, apiErr.Code)
	assert.Len(t, fake.seen(), 2)
}

func TestClient_SecondChallengeIsHardFailure(t *testing.T) {
	client, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request, attempt int) {
		challenge(w, "always")
	})

	err := client.RemoveMember(context.Background(), 77)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCSRFRejected)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Len(t, fake.seen(), 2, "must retry exactly once")
}

func TestClient_ForbiddenWithoutTokenIsNotRetried(t *testing.T) {
	client, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request, attempt int) {
		writeJSON(w, http.StatusForbidden, map[string]any{})
	})

	err := client.RemoveMember(context.Background(), 77)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Len(t, fake.seen(), 1)
}

func TestClient_ServerErrorIsNotRetried(t *testing.T) {
	client, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request, attempt int) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := client.AcceptJoinRequest(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Len(t, fake.seen(), 1)
}

func TestClient_ContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, attempt int) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.CurrentRole(ctx, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.NotErrorIs(t, err, domain.ErrUpstream)
}

func TestClient_TransportFailureIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient(Config{GroupID: 1, SessionCookie: "x", GroupsBaseURL: url, UsersBaseURL: url})
	require.NoError(t, err)

	err = client.AcceptJoinRequest(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
