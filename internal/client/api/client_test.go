package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	c.TokenFunc = func(ctx context.Context) string { return "tok-123" }

	require.NoError(t, c.Get(context.Background(), "/api/users/me", &struct{}{}))
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_ToleratesPrefixedToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	c.TokenFunc = func(ctx context.Context) string { return "Bearer tok-123" }

	require.NoError(t, c.Get(context.Background(), "/api/users/me", &struct{}{}))
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	c.TokenFunc = func(ctx context.Context) string { return "" }

	require.NoError(t, c.Get(context.Background(), "/api/ads", &struct{}{}))
	assert.Empty(t, gotAuth)
}

func TestClient_DecodesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"validation","message":"validation failed","fields":{"email":"invalid email address"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	err := c.Post(context.Background(), "/api/auth/register", map[string]string{}, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation", apiErr.Code)
	assert.Equal(t, "invalid email address", apiErr.Fields["email"])
}

func TestClient_AuthFailureTriggersTeardown(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":"unauthorized","message":"unauthorized"}`))
		}))

		var torndown bool
		c := NewClient(srv.URL, nil)
		c.LocationFunc = func() string { return "/feed" }
		c.OnAuthFailure = func(ctx context.Context) { torndown = true }

		err := c.Get(context.Background(), "/api/ads", nil)
		assert.True(t, IsAuthError(err), "status %d", status)
		assert.True(t, torndown, "status %d", status)
		srv.Close()
	}
}

func TestClient_AuthFailureExemptOnLoginAndRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized","message":"invalid email/password"}`))
	}))
	defer srv.Close()

	for _, location := range []string{"/login", "/register"} {
		var torndown bool
		c := NewClient(srv.URL, nil)
		c.LocationFunc = func() string { return location }
		c.OnAuthFailure = func(ctx context.Context) { torndown = true }

		err := c.Post(context.Background(), "/api/auth/login", map[string]string{}, nil)
		assert.True(t, IsAuthError(err), "location %s", location)
		assert.False(t, torndown, "teardown must not fire on %s", location)
	}
}

func TestClient_NotFoundIsNotAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not_found","message":"ad 4 not found"}`))
	}))
	defer srv.Close()

	var torndown bool
	c := NewClient(srv.URL, nil)
	c.OnAuthFailure = func(ctx context.Context) { torndown = true }

	err := c.Get(context.Background(), "/api/ads/4", nil)
	assert.False(t, IsAuthError(err))
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.False(t, torndown)
}
