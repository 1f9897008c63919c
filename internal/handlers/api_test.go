package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fakeam/internal/engine"
	"fakeam/internal/models"
)

func testMux(t *testing.T) (*http.ServeMux, *engine.Store) {
	t.Helper()
	st := engine.NewStore(engine.Config{})
	api := New(Config{
		Store:     st,
		Receivers: []string{"web.hook", "pagerduty"},
	})
	mux := http.NewServeMux()
	api.Register(mux)
	return mux, st
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func postableAlert(alertname string) map[string]interface{} {
	return map[string]interface{}{
		"labels": map[string]string{
			"alertname": alertname,
			"severity":  "warning",
			"instance":  "server-1.example.com",
		},
		"annotations": map[string]string{"summary": "test"},
	}
}

func postableSilence(alertname string) map[string]interface{} {
	return map[string]interface{}{
		"matchers": []map[string]interface{}{
			{"name": "alertname", "value": alertname, "isRegex": false},
		},
		"startsAt":  "2024-06-01T00:00:00Z",
		"endsAt":    "2030-06-01T00:00:00Z",
		"createdBy": "tester@example.com",
		"comment":   "test silence",
	}
}

func TestCreateAndListAlerts(t *testing.T) {
	mux, _ := testMux(t)

	rec := doJSON(t, mux, "POST", "/api/v2/alerts", []interface{}{
		postableAlert("HighCPUUsage"),
		postableAlert("DiskSpaceLow"),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST alerts: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, mux, "GET", "/api/v2/alerts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET alerts: %d", rec.Code)
	}
	var alerts []models.Alert
	decodeInto(t, rec, &alerts)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	for _, a := range alerts {
		if a.Status.State != models.AlertStateActive {
			t.Errorf("expected active, got %s", a.Status.State)
		}
		if a.Fingerprint == "" {
			t.Error("expected fingerprint on listed alert")
		}
		if len(a.Receivers) == 0 {
			t.Error("expected a receiver assigned")
		}
	}
}

func TestCreateAlertsRejectsBadBodies(t *testing.T) {
	mux, st := testMux(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"object instead of list", postableAlert("A")},
		{"empty list", []interface{}{}},
		{"missing labels", []interface{}{map[string]interface{}{"annotations": map[string]string{}}}},
		{"bad timestamp", []interface{}{map[string]interface{}{
			"labels":   map[string]string{"alertname": "A"},
			"startsAt": "whenever",
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, mux, "POST", "/api/v2/alerts", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
	if got := st.Counts().Alerts; got != 0 {
		t.Errorf("rejected submissions mutated the store: %d alerts", got)
	}
}

func TestCreateAlertsRejectsWholeBatchOnOneBadElement(t *testing.T) {
	mux, st := testMux(t)

	rec := doJSON(t, mux, "POST", "/api/v2/alerts", []interface{}{
		postableAlert("GoodAlert"),
		map[string]interface{}{"labels": map[string]string{}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := st.Counts().Alerts; got != 0 {
		t.Errorf("expected no partial writes, got %d alerts", got)
	}
}

func TestListAlertsFilters(t *testing.T) {
	mux, st := testMux(t)

	seed := func(alertname, severity string) {
		rec := doJSON(t, mux, "POST", "/api/v2/alerts", []interface{}{
			map[string]interface{}{
				"labels": map[string]string{
					"alertname": alertname,
					"severity":  severity,
				},
			},
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("seed %s: %d", alertname, rec.Code)
		}
	}
	seed("CriticalAlert", "critical")
	seed("WarningAlert", "warning")

	// suppress one via a silence
	rec := doJSON(t, mux, "POST", "/api/v2/silences", postableSilence("CriticalAlert"))
	if rec.Code != http.StatusOK {
		t.Fatalf("POST silence: %d %s", rec.Code, rec.Body.String())
	}
	if got := st.ListAlerts(nil); len(got) != 2 {
		t.Fatalf("expected 2 alerts stored, got %d", len(got))
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"default returns all", "", []string{"CriticalAlert", "WarningAlert"}},
		{"silenced=false hides suppressed", "?silenced=false", []string{"WarningAlert"}},
		{"active=false hides active", "?active=false", []string{"CriticalAlert"}},
		{"label clause", "?filter=severity=warning", []string{"WarningAlert"}},
		{"clause plus flag", "?filter=severity=critical&silenced=false", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, mux, "GET", "/api/v2/alerts"+tt.query, nil)
			var alerts []models.Alert
			decodeInto(t, rec, &alerts)

			var names []string
			for _, a := range alerts {
				names = append(names, a.Name())
			}
			if fmt.Sprint(names) != fmt.Sprint(tt.want) {
				t.Errorf("got %v, want %v", names, tt.want)
			}
		})
	}
}

func TestListGroups(t *testing.T) {
	mux, _ := testMux(t)

	rec := doJSON(t, mux, "POST", "/api/v2/alerts", []interface{}{
		postableAlert("HighCPUUsage"),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST alerts: %d", rec.Code)
	}

	rec = doJSON(t, mux, "GET", "/api/v2/alerts/groups", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET groups: %d", rec.Code)
	}
	var groups []models.AlertGroup
	decodeInto(t, rec, &groups)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if got := string(groups[0].Labels["alertname"]); got != "HighCPUUsage" {
		t.Errorf("unexpected group alertname %s", got)
	}
	if len(groups[0].Alerts) != 1 {
		t.Errorf("expected 1 member, got %d", len(groups[0].Alerts))
	}
}

func TestSilenceLifecycle(t *testing.T) {
	mux, _ := testMux(t)

	// create
	rec := doJSON(t, mux, "POST", "/api/v2/silences", postableSilence("HighCPUUsage"))
	if rec.Code != http.StatusOK {
		t.Fatalf("POST silence: %d %s", rec.Code, rec.Body.String())
	}
	var created map[string]string
	decodeInto(t, rec, &created)
	id := created["silenceID"]
	if id == "" {
		t.Fatal("expected silenceID in response")
	}

	// get
	rec = doJSON(t, mux, "GET", "/api/v2/silence/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET silence: %d", rec.Code)
	}
	var got models.Silence
	decodeInto(t, rec, &got)
	if got.ID != id || got.Status.State != models.SilenceStateActive {
		t.Errorf("unexpected silence %+v", got)
	}

	// upsert with the same id replaces it
	update := postableSilence("DiskSpaceLow")
	update["id"] = id
	rec = doJSON(t, mux, "POST", "/api/v2/silences", update)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST silence update: %d", rec.Code)
	}
	var updated map[string]string
	decodeInto(t, rec, &updated)
	if updated["silenceID"] != id {
		t.Errorf("upsert returned new id %s, want %s", updated["silenceID"], id)
	}

	rec = doJSON(t, mux, "GET", "/api/v2/silences", nil)
	var silences []models.Silence
	decodeInto(t, rec, &silences)
	if len(silences) != 1 {
		t.Fatalf("expected 1 silence after upsert, got %d", len(silences))
	}
	if silences[0].Matchers[0].Value != "DiskSpaceLow" {
		t.Errorf("upsert did not replace matchers: %+v", silences[0].Matchers)
	}

	// delete
	rec = doJSON(t, mux, "DELETE", "/api/v2/silence/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE silence: %d", rec.Code)
	}
	rec = doJSON(t, mux, "GET", "/api/v2/silence/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestSilenceValidationErrors(t *testing.T) {
	mux, _ := testMux(t)

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"no matchers", func(m map[string]interface{}) { delete(m, "matchers") }},
		{"empty matchers", func(m map[string]interface{}) { m["matchers"] = []interface{}{} }},
		{"no comment", func(m map[string]interface{}) { delete(m, "comment") }},
		{"bad startsAt", func(m map[string]interface{}) { m["startsAt"] = "someday" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := postableSilence("A")
			tt.mutate(body)
			rec := doJSON(t, mux, "POST", "/api/v2/silences", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSilenceNotFound(t *testing.T) {
	mux, _ := testMux(t)

	rec := doJSON(t, mux, "GET", "/api/v2/silence/no-such-id", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET: expected 404, got %d", rec.Code)
	}
	rec = doJSON(t, mux, "DELETE", "/api/v2/silence/no-such-id", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("DELETE: expected 404, got %d", rec.Code)
	}
}

func TestListSilencesFilter(t *testing.T) {
	mux, _ := testMux(t)

	for _, name := range []string{"HighCPUUsage", "DiskSpaceLow"} {
		rec := doJSON(t, mux, "POST", "/api/v2/silences", postableSilence(name))
		if rec.Code != http.StatusOK {
			t.Fatalf("POST silence %s: %d", name, rec.Code)
		}
	}

	rec := doJSON(t, mux, "GET", "/api/v2/silences?filter=alertname=HighCPUUsage", nil)
	var silences []models.Silence
	decodeInto(t, rec, &silences)
	if len(silences) != 1 {
		t.Fatalf("expected 1 filtered silence, got %d", len(silences))
	}
	if silences[0].Matchers[0].Value != "HighCPUUsage" {
		t.Errorf("wrong silence returned: %+v", silences[0].Matchers)
	}
}

func TestV1PathsAlias(t *testing.T) {
	mux, _ := testMux(t)

	rec := doJSON(t, mux, "POST", "/api/v1/alerts", []interface{}{postableAlert("A")})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST v1 alerts: %d", rec.Code)
	}
	rec = doJSON(t, mux, "GET", "/api/v1/alerts", nil)
	var alerts []models.Alert
	decodeInto(t, rec, &alerts)
	if len(alerts) != 1 {
		t.Errorf("expected the v2-created alert via v1, got %d", len(alerts))
	}
}

func TestStatusAndHealthEndpoints(t *testing.T) {
	mux, _ := testMux(t)

	rec := doJSON(t, mux, "GET", "/api/v2/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status: %d", rec.Code)
	}
	var status map[string]interface{}
	decodeInto(t, rec, &status)
	if _, ok := status["cluster"]; !ok {
		t.Error("expected cluster section in status")
	}
	if _, ok := status["versionInfo"]; !ok {
		t.Error("expected versionInfo section in status")
	}

	rec = doJSON(t, mux, "GET", "/api/v2/receivers", nil)
	var receivers []models.Receiver
	decodeInto(t, rec, &receivers)
	if len(receivers) != 2 {
		t.Errorf("expected 2 receivers, got %d", len(receivers))
	}

	for _, path := range []string{"/-/healthy", "/-/ready"} {
		rec = doJSON(t, mux, "GET", path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: %d", path, rec.Code)
		}
	}
}

func TestBoolParamOnlyTrueIsTrue(t *testing.T) {
	mux, st := testMux(t)

	rec := doJSON(t, mux, "POST", "/api/v2/alerts", []interface{}{postableAlert("A")})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST alerts: %d", rec.Code)
	}
	if st.Counts().Alerts != 1 {
		t.Fatal("expected one stored alert")
	}

	tests := []struct {
		query string
		want  int
	}{
		{"?active=true", 1},
		{"?active=TRUE", 1}, // case insensitive
		{"?active=false", 0},
		{"?active=0", 0},
		{"?active=yes", 0}, // anything but "true" is false
		{"?active=1", 0},
		{"", 1}, // absent defaults to true
	}
	for _, tt := range tests {
		rec := doJSON(t, mux, "GET", "/api/v2/alerts"+tt.query, nil)
		var alerts []models.Alert
		decodeInto(t, rec, &alerts)
		if len(alerts) != tt.want {
			t.Errorf("query %q: got %d alerts, want %d", tt.query, len(alerts), tt.want)
		}
	}
}

func TestHandlerTimestampsUseInjectedClock(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	st := engine.NewStore(engine.Config{Clock: func() time.Time { return fixed }})
	api := New(Config{
		Store:           st,
		DefaultAlertTTL: 2 * time.Hour,
		Now:             func() time.Time { return fixed },
	})
	mux := http.NewServeMux()
	api.Register(mux)

	rec := doJSON(t, mux, "POST", "/api/v2/alerts", []interface{}{postableAlert("A")})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST alerts: %d", rec.Code)
	}

	rec = doJSON(t, mux, "GET", "/api/v2/alerts", nil)
	var alerts []models.Alert
	decodeInto(t, rec, &alerts)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if !alerts[0].StartsAt.Equal(fixed) {
		t.Errorf("startsAt %v, want injected clock %v", alerts[0].StartsAt, fixed)
	}
	if !alerts[0].EndsAt.Equal(fixed.Add(2 * time.Hour)) {
		t.Errorf("endsAt %v, want injected clock + ttl", alerts[0].EndsAt)
	}

	rec = doJSON(t, mux, "POST", "/api/v2/silences", postableSilence("A"))
	if rec.Code != http.StatusOK {
		t.Fatalf("POST silence: %d", rec.Code)
	}
	rec = doJSON(t, mux, "GET", "/api/v2/silences", nil)
	var silences []models.Silence
	decodeInto(t, rec, &silences)
	if len(silences) != 1 {
		t.Fatalf("expected 1 silence, got %d", len(silences))
	}
	if !silences[0].UpdatedAt.Equal(fixed) {
		t.Errorf("updatedAt %v, want injected clock %v", silences[0].UpdatedAt, fixed)
	}
}

func TestReceiverFilterParam(t *testing.T) {
	mux, _ := testMux(t)

	rec := doJSON(t, mux, "POST", "/api/v2/alerts", []interface{}{postableAlert("A")})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST alerts: %d", rec.Code)
	}

	// default receiver pick is web.hook
	rec = doJSON(t, mux, "GET", "/api/v2/alerts?receiver=hook", nil)
	var alerts []models.Alert
	decodeInto(t, rec, &alerts)
	if len(alerts) != 1 {
		t.Errorf("substring receiver filter missed the alert: %d", len(alerts))
	}

	rec = doJSON(t, mux, "GET", "/api/v2/alerts?receiver=slack", nil)
	decodeInto(t, rec, &alerts)
	if len(alerts) != 0 {
		t.Errorf("expected no alerts for unmatched receiver, got %d", len(alerts))
	}
}
