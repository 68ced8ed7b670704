package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"cgtminer/internal/boss"
	"cgtminer/internal/breach"
	"cgtminer/internal/config"
	"cgtminer/internal/engine"
	"cgtminer/internal/httpmw"
	"cgtminer/internal/telemetry"
)

// App holds what the handlers depend on.
type App struct {
	Engine *engine.Engine
	Events telemetry.Repository
	Hub    *Hub
	Config *config.Config
	Logger *log.Logger

	BootNow time.Time
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// httpStatusFor maps engine errors onto API status codes. Anything
// unrecognized is the server's fault.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnknownUpgrade),
		errors.Is(err, engine.ErrUnknownBooster),
		errors.Is(err, engine.ErrUnknownCompanion):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrCompanionOwned),
		errors.Is(err, engine.ErrNoLiveBreach),
		errors.Is(err, engine.ErrNoLiveBoss),
		errors.Is(err, engine.ErrPrestigeNotReady),
		errors.Is(err, boss.ErrStrikeNotCharged),
		errors.Is(err, breach.ErrScanning),
		errors.Is(err, breach.ErrTerminated),
		errors.Is(err, breach.ErrExpired):
		return http.StatusConflict
	case errors.Is(err, engine.ErrCompanionMissing),
		errors.Is(err, engine.ErrSectorOutOfRange):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func apiError(w http.ResponseWriter, err error) {
	status := httpStatusFor(err)
	if status == http.StatusInternalServerError {
		// Gameplay rejections carry their message; real failures
		// also include insufficient-funds style errors from Debit.
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

func RegisterAPIRoutes(mux *http.ServeMux, rr *RouteRegistry, app *App) {
	eng := app.Engine

	Handle(mux, rr, "GET /api/state", "Current simulation snapshot", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, eng.Snapshot())
	})

	Handle(mux, rr, "GET /api/catalog", "Upgrade, booster, relic and companion definitions", "", func(w http.ResponseWriter, r *http.Request) {
		cat := eng.Catalog()
		writeJSON(w, map[string]any{
			"upgrades":       cat.Upgrades(),
			"drone_upgrades": cat.DroneUpgrades(),
			"boosters":       cat.Boosters(),
			"relics":         cat.Relics(),
			"companions":     cat.Companions(),
		})
	})

	Handle(mux, rr, "POST /api/mine", "One manual mining pulse", "", func(w http.ResponseWriter, r *http.Request) {
		res, err := eng.Click(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, res)
	})

	Handle(mux, rr, "POST /api/upgrades/buy", "Buy the next level of an upgrade", `{"id":"click_power"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", 400)
			return
		}
		if body.ID == "" {
			http.Error(w, "id is required", 400)
			return
		}
		res, err := eng.Purchase(r.Context(), body.ID)
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, res)
	})

	Handle(mux, rr, "POST /api/market/buy", "Buy a timed booster", `{"id":"data_surge"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", 400)
			return
		}
		expiry, err := eng.BuyBooster(r.Context(), body.ID)
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, map[string]any{"booster_id": body.ID, "expires_at": expiry})
	})

	Handle(mux, rr, "POST /api/companions/buy", "Buy a companion", `{"id":"pulse_core"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", 400)
			return
		}
		if err := eng.BuyCompanion(r.Context(), body.ID); err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, eng.Snapshot())
	})

	Handle(mux, rr, "POST /api/companions/activate", "Switch the active companion; empty id benches all", `{"id":"pulse_core"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", 400)
			return
		}
		if err := eng.ActivateCompanion(r.Context(), body.ID); err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, eng.Snapshot())
	})

	Handle(mux, rr, "POST /api/sectors/relocate", "Move the rig to another sector", `{"x":3,"y":4}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			X int `json:"x"`
			Y int `json:"y"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", 400)
			return
		}
		if err := eng.Relocate(r.Context(), body.X, body.Y); err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, eng.Snapshot())
	})

	Handle(mux, rr, "POST /api/prestige", "Trade the run for permanent forge cores", "", func(w http.ResponseWriter, r *http.Request) {
		res, err := eng.Prestige(r.Context())
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, res)
	})

	Handle(mux, rr, "POST /api/breach/input", "Tap one cell of the breach pattern", `{"x":1,"y":2}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			X int `json:"x"`
			Y int `json:"y"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", 400)
			return
		}
		res, err := eng.SubmitBreachInput(r.Context(), breach.Cell{X: body.X, Y: body.Y})
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, res)
	})

	Handle(mux, rr, "POST /api/boss/strike", "Fire the charged satellite cannon", "", func(w http.ResponseWriter, r *http.Request) {
		res, err := eng.TriggerSatelliteStrike(r.Context())
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, res)
	})

	Handle(mux, rr, "GET /api/stats", "Gameplay stats since boot", "", func(w http.ResponseWriter, r *http.Request) {
		events, err := app.Events.GetEvents(app.BootNow, nil)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		stats, err := telemetry.CalculateStats(events, app.BootNow)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, stats)
	})

	Handle(mux, rr, "GET /api/config", "Active game balance", "", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(app.Config); err != nil {
			http.Error(w, err.Error(), 500)
		}
	})

	if app.Hub != nil {
		Handle(mux, rr, "GET /ws", "Live snapshot feed (websocket)", "", func(w http.ResponseWriter, r *http.Request) {
			app.Hub.ServeWs(w, r)
		})
	}
}

// Options configures the full HTTP handler.
type Options struct {
	App  *App
	Port string
}

// NewHandler wires routes, health probes, the admin page and the
// middleware chain into one handler.
func NewHandler(opts Options) http.Handler {
	app := opts.App
	if app.Logger == nil {
		app.Logger = log.Default()
	}
	if app.BootNow.IsZero() {
		app.BootNow = time.Now()
	}

	mux := http.NewServeMux()
	rr := &RouteRegistry{}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"ok":      true,
			"service": "cgtminer",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		// The engine serving a snapshot proves the save loaded.
		snap := app.Engine.Snapshot()
		writeJSON(w, map[string]any{
			"ok":      true,
			"service": "cgtminer",
			"uptime":  time.Since(app.BootNow).String(),
			"total":   snap.TotalMined,
		})
	})

	RegisterAPIRoutes(mux, rr, app)
	RegisterAdminUI(mux, rr, opts.Port)

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(app.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(app.Logger),
	)
}
