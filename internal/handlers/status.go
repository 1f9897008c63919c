package handlers

import (
	"net/http"
	"time"

	"fakeam/internal/models"
)

const fakeConfig = "global:\n  smtp_smarthost: 'localhost:587'\n" +
	"route:\n  group_by: ['alertname']\n  receiver: 'web.hook'\n" +
	"receivers:\n- name: 'web.hook'\n  webhook_configs:\n  - url: 'http://localhost:5001/'"

// handleStatus serves a static cluster/version payload shaped like the
// real status endpoint, so clients probing it see a plausible instance.
func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cluster": map[string]interface{}{
			"name":   "fake-alertmanager-cluster",
			"status": "ready",
			"peers": []map[string]string{
				{
					"name":    "fake-alertmanager-1",
					"address": "127.0.0.1:9093",
				},
			},
		},
		"versionInfo": map[string]string{
			"version":   "0.26.0-fake",
			"revision":  "fake-revision-12345",
			"branch":    "main",
			"buildUser": "fake-user@example.com",
			"buildDate": "2024-01-01T00:00:00Z",
			"goVersion": "go1.23.0",
		},
		"config": map[string]string{
			"original": fakeConfig,
		},
		"uptime": models.NewTime(a.started),
	})
}

// handleReceivers lists the known receiver names.
func (a *API) handleReceivers(w http.ResponseWriter, r *http.Request) {
	receivers := make([]models.Receiver, 0, len(a.receivers))
	for _, name := range a.receivers {
		receivers = append(receivers, models.Receiver{Name: name})
	}
	writeJSON(w, http.StatusOK, receivers)
}

func (a *API) handleHealthy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Uptime reports how long the API has been serving.
func (a *API) Uptime() time.Duration {
	return time.Since(a.started)
}
