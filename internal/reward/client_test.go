package reward

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"cgtminer/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClientForTest(baseURL string) *Client {
	cfg := config.Default().Reward
	cfg.BaseURL = baseURL
	return NewClient(cfg, log.New(io.Discard, "", 0))
}

func TestSubmitWork_UsesOracleYield(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/submit-work", r.URL.Path)

		var req workRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(10), req.Power)

		json.NewEncoder(w).Encode(workResponse{Yield: 42})
	}))
	defer srv.Close()

	yield, err := newClientForTest(srv.URL).SubmitWork(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, float64(42), yield)
}

func TestSubmitWork_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(workResponse{Yield: 1})
	}))
	defer srv.Close()

	cfg := config.Default().Reward
	cfg.BaseURL = srv.URL
	cfg.AuthToken = "sekrit"
	c := NewClient(cfg, log.New(io.Discard, "", 0))

	_, err := c.SubmitWork(context.Background(), 1)
	require.NoError(t, err)
}

func TestSubmitWork_NoBaseURLFallsBackLocally(t *testing.T) {
	yield, err := newClientForTest("").SubmitWork(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, float64(15), yield)
}

func TestSubmitWork_ServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	yield, err := newClientForTest(srv.URL).SubmitWork(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, float64(15), yield)
}

func TestSubmitWork_GarbageResponseFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "{not json")
	}))
	defer srv.Close()

	yield, err := newClientForTest(srv.URL).SubmitWork(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, float64(15), yield)
}

func TestSubmitWork_NegativeYieldFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(workResponse{Yield: -5})
	}))
	defer srv.Close()

	yield, err := newClientForTest(srv.URL).SubmitWork(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, float64(15), yield)
}

func TestSubmitWork_UnreachableOracleFallsBack(t *testing.T) {
	yield, err := newClientForTest("http://127.0.0.1:1").SubmitWork(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, float64(15), yield)
}

func TestLocalSubmitter(t *testing.T) {
	yield, err := LocalSubmitter{Factor: 2}.SubmitWork(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, float64(16), yield)
}
