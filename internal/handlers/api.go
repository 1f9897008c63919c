package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fakeam/internal/engine"
	"fakeam/internal/logger"
	"fakeam/internal/models"
)

// API serves the Alertmanager-compatible HTTP surface over the store.
// All domain decisions live in the engine; handlers only parse, dispatch
// and serialize.
type API struct {
	store        *engine.Store
	defaultTTL   time.Duration
	pickReceiver func() models.Receiver
	receivers    []string
	now          func() time.Time
	started      time.Time
	log          zerolog.Logger
}

// Config holds API construction parameters.
type Config struct {
	Store *engine.Store

	// PickReceiver assigns a receiver to externally submitted alerts,
	// which carry none on the wire.
	PickReceiver func() models.Receiver

	// Receivers is the full receiver name pool, served by the receivers
	// endpoint.
	Receivers []string

	// DefaultAlertTTL fills endsAt for submissions that omit it. Zero
	// means one hour.
	DefaultAlertTTL time.Duration

	// Now overrides wall-clock sampling for handler-assigned timestamps,
	// for tests. Nil means time.Now.
	Now func() time.Time
}

// New creates the API.
func New(cfg Config) *API {
	if cfg.DefaultAlertTTL <= 0 {
		cfg.DefaultAlertTTL = time.Hour
	}
	pick := cfg.PickReceiver
	if pick == nil {
		pick = func() models.Receiver { return models.Receiver{Name: "web.hook"} }
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &API{
		store:        cfg.Store,
		defaultTTL:   cfg.DefaultAlertTTL,
		pickReceiver: pick,
		receivers:    cfg.Receivers,
		now:          now,
		started:      now().UTC(),
		log:          logger.WithComponent("api"),
	}
}

// Register installs all routes on the mux. The v1 paths are aliases kept
// for backward compatibility.
func (a *API) Register(mux *http.ServeMux) {
	for _, prefix := range []string{"/api/v2", "/api/v1"} {
		mux.HandleFunc("GET "+prefix+"/alerts", a.handleListAlerts)
		mux.HandleFunc("POST "+prefix+"/alerts", a.handleCreateAlerts)
		mux.HandleFunc("GET "+prefix+"/alerts/groups", a.handleListGroups)
		mux.HandleFunc("GET "+prefix+"/silences", a.handleListSilences)
		mux.HandleFunc("POST "+prefix+"/silences", a.handleCreateSilence)
		mux.HandleFunc("GET "+prefix+"/silence/{silenceID}", a.handleGetSilence)
		mux.HandleFunc("DELETE "+prefix+"/silence/{silenceID}", a.handleDeleteSilence)
		mux.HandleFunc("GET "+prefix+"/status", a.handleStatus)
		mux.HandleFunc("GET "+prefix+"/receivers", a.handleReceivers)
	}
	mux.HandleFunc("GET /-/healthy", a.handleHealthy)
	mux.HandleFunc("GET /-/ready", a.handleReady)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// writeDomainError maps engine errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case models.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// parseBoolParam reads a boolean query parameter. Absent means true; any
// present value other than a case-insensitive "true" means false.
func parseBoolParam(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return true
	}
	return strings.ToLower(v) == "true"
}

// parseAlertFilter builds the alert predicate stack from query params.
func parseAlertFilter(r *http.Request) *engine.AlertFilter {
	f := engine.NewAlertFilter()
	f.Active = parseBoolParam(r, "active")
	f.Silenced = parseBoolParam(r, "silenced")
	f.Unprocessed = parseBoolParam(r, "unprocessed")
	f.Inhibited = parseBoolParam(r, "inhibited")
	f.Receiver = r.URL.Query().Get("receiver")
	f.Clauses = parseFilterClauses(r)
	return f
}

// parseFilterClauses reads the repeated filter=label=value parameters.
// Parameters without an equals sign are ignored.
func parseFilterClauses(r *http.Request) []engine.LabelClause {
	var clauses []engine.LabelClause
	for _, raw := range r.URL.Query()["filter"] {
		if c, ok := engine.ParseLabelClause(raw); ok {
			clauses = append(clauses, c)
		}
	}
	return clauses
}
