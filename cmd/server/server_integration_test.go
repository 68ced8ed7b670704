package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cgtminer/internal/config"
	"cgtminer/internal/engine"
	"cgtminer/internal/ledger"
	"cgtminer/internal/reward"
	"cgtminer/internal/server"
	"cgtminer/internal/telemetry"
)

func TestServer_HealthAndReadinessExposeRequestID(t *testing.T) {
	app := newTestApp(t, t.TempDir())

	for _, path := range []string{"/healthz", "/readyz"} {
		res := app.request(http.MethodGet, path, nil)
		if res.Code != http.StatusOK {
			t.Fatalf("%s expected 200, got %d body=%s", path, res.Code, res.Body.String())
		}
		if rid := strings.TrimSpace(res.Header().Get("X-Request-Id")); rid == "" {
			t.Fatalf("%s missing X-Request-Id header", path)
		}
	}
}

func TestServer_MineBuyRelocateRoundTrip(t *testing.T) {
	app := newTestApp(t, t.TempDir())

	mineRes := app.json(http.MethodPost, "/api/mine", nil)
	if mineRes.Code != http.StatusOK {
		t.Fatalf("mine expected 200, got %d body=%s", mineRes.Code, mineRes.Body.String())
	}
	mineBody := decodeBodyMap(t, mineRes)
	earned, _ := mineBody["earned"].(float64)
	if earned <= 0 {
		t.Fatalf("expected positive mine yield, body=%s", mineRes.Body.String())
	}

	app.mineUntil(t, 10)
	buyRes := app.json(http.MethodPost, "/api/upgrades/buy", map[string]any{"id": "click_power"})
	if buyRes.Code != http.StatusOK {
		t.Fatalf("buy click_power expected 200, got %d body=%s", buyRes.Code, buyRes.Body.String())
	}

	relocateRes := app.json(http.MethodPost, "/api/sectors/relocate", map[string]any{"x": 2, "y": 3})
	if relocateRes.Code != http.StatusOK {
		t.Fatalf("relocate expected 200, got %d body=%s", relocateRes.Code, relocateRes.Body.String())
	}

	stateRes := app.request(http.MethodGet, "/api/state", nil)
	if stateRes.Code != http.StatusOK {
		t.Fatalf("state expected 200, got %d body=%s", stateRes.Code, stateRes.Body.String())
	}
	state := decodeBodyMap(t, stateRes)
	upgrades := asMap(t, state["upgrades"])
	if lvl, _ := upgrades["click_power"].(float64); lvl != 1 {
		t.Fatalf("expected click_power level 1, got %v", upgrades["click_power"])
	}
	sector := asMap(t, state["current_sector"])
	if x, _ := sector["x"].(float64); x != 2 {
		t.Fatalf("expected sector x=2, got %v", sector["x"])
	}

	statsRes := app.request(http.MethodGet, "/api/stats", nil)
	if statsRes.Code != http.StatusOK {
		t.Fatalf("stats expected 200, got %d body=%s", statsRes.Code, statsRes.Body.String())
	}
	stats := decodeBodyMap(t, statsRes)
	if mines, _ := stats["manual_mines"].(float64); mines < 2 {
		t.Fatalf("expected at least 2 manual mines in stats, got %v", stats["manual_mines"])
	}
}

func TestServer_SaveSurvivesRestart(t *testing.T) {
	dataDir := t.TempDir()

	app := newTestApp(t, dataDir)
	app.mineUntil(t, 10)
	buyRes := app.json(http.MethodPost, "/api/upgrades/buy", map[string]any{"id": "click_power"})
	if buyRes.Code != http.StatusOK {
		t.Fatalf("buy click_power expected 200, got %d body=%s", buyRes.Code, buyRes.Body.String())
	}

	before := decodeBodyMap(t, app.request(http.MethodGet, "/api/state", nil))
	totalBefore, _ := before["total_cgt_mined"].(float64)
	if totalBefore <= 0 {
		t.Fatalf("expected lifetime CGT before restart, got %v", before["total_cgt_mined"])
	}

	restarted := newTestApp(t, dataDir)
	after := decodeBodyMap(t, restarted.request(http.MethodGet, "/api/state", nil))
	if totalAfter, _ := after["total_cgt_mined"].(float64); totalAfter != totalBefore {
		t.Fatalf("lifetime CGT changed across restart: before=%v after=%v", totalBefore, totalAfter)
	}
	upgrades := asMap(t, after["upgrades"])
	if lvl, _ := upgrades["click_power"].(float64); lvl != 1 {
		t.Fatalf("expected click_power level 1 after restart, got %v", upgrades["click_power"])
	}
}

type testApp struct {
	handler http.Handler
}

// newTestApp wires the full stack the way main does, minus the
// listener and the background scheduler.
func newTestApp(t *testing.T, dataDir string) *testApp {
	t.Helper()

	cfg := config.Default()
	cfg.Events.Breach.Chance = 0
	cfg.Events.Boss.Chance = 0
	cfg.Events.Overdrive.Chance = 0
	for i := range cfg.Relics {
		cfg.Relics[i].DropChance = 0
	}

	logger := log.New(io.Discard, "", 0)

	repo, err := ledger.NewFileRepo(dataDir, cfg.SaveKey, logger)
	if err != nil {
		t.Fatalf("NewFileRepo: %v", err)
	}

	events := telemetry.NewMemoryRepository()
	eng, err := engine.New(context.Background(), engine.Options{
		Config:  cfg,
		Repo:    repo,
		Rewards: reward.NewClient(cfg.Reward, logger),
		Events:  events,
		Rand:    rand.New(rand.NewSource(7)),
		Log:     logger,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	h := server.NewHandler(server.Options{
		App: &server.App{
			Engine: eng,
			Events: events,
			Config: cfg,
			Logger: logger,
		},
		Port: "0",
	})
	return &testApp{handler: h}
}

func (a *testApp) json(method, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	return a.request(method, path, bytes.NewReader(b))
}

func (a *testApp) request(method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// mineUntil clicks until the wallet holds at least want CGT.
func (a *testApp) mineUntil(t *testing.T, want float64) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		res := a.json(http.MethodPost, "/api/mine", nil)
		if res.Code != http.StatusOK {
			t.Fatalf("mine expected 200, got %d body=%s", res.Code, res.Body.String())
		}
		state := decodeBodyMap(t, a.request(http.MethodGet, "/api/state", nil))
		if cgt, _ := state["cgt"].(float64); cgt >= want {
			return
		}
	}
	t.Fatalf("never reached %v CGT", want)
}

func decodeBodyMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode json body failed: %v body=%s", err, rec.Body.String())
	}
	return out
}

func asMap(t *testing.T, v any) map[string]any {
	t.Helper()
	out, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected map[string]any, got %T (%v)", v, v)
	}
	return out
}
