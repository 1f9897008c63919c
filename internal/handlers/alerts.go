package handlers

import (
	"encoding/json"
	"net/http"

	"fakeam/internal/models"
)

// handleListAlerts returns the filtered alert list.
func (a *API) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	filter := parseAlertFilter(r)
	writeJSON(w, http.StatusOK, a.store.ListAlerts(filter))
}

// handleCreateAlerts accepts a JSON array of postable alerts. The batch is
// validated in full before the store is touched, so a bad element rejects
// the whole submission without partial writes.
func (a *API) handleCreateAlerts(w http.ResponseWriter, r *http.Request) {
	var postables []models.PostableAlert
	if err := json.NewDecoder(r.Body).Decode(&postables); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a list of alerts")
		return
	}
	if len(postables) == 0 {
		writeError(w, http.StatusBadRequest, "no alerts provided")
		return
	}

	now := models.NewTime(a.now())
	batch := make([]*models.Alert, 0, len(postables))
	for i := range postables {
		alert, err := postables[i].ToAlert(now, a.defaultTTL, a.pickReceiver())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		batch = append(batch, alert)
	}

	if err := a.store.CreateAlerts(batch); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Alerts created successfully",
	})
}

// handleListGroups returns the filtered alert groups. Groups whose
// filtered member list is empty are dropped by the store.
func (a *API) handleListGroups(w http.ResponseWriter, r *http.Request) {
	filter := parseAlertFilter(r)
	writeJSON(w, http.StatusOK, a.store.ListGroups(filter))
}
