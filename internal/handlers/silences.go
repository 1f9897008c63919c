package handlers

import (
	"encoding/json"
	"net/http"

	"fakeam/internal/engine"
	"fakeam/internal/models"
)

// handleListSilences returns silences, optionally filtered by matcher
// equality clauses from repeated filter=name=value parameters.
func (a *API) handleListSilences(w http.ResponseWriter, r *http.Request) {
	filter := &engine.SilenceFilter{Clauses: parseFilterClauses(r)}
	writeJSON(w, http.StatusOK, a.store.ListSilences(filter))
}

// handleCreateSilence creates or updates a silence. A submission carrying
// the id of an existing silence replaces it in place.
func (a *API) handleCreateSilence(w http.ResponseWriter, r *http.Request) {
	var postable models.PostableSilence
	if err := json.NewDecoder(r.Body).Decode(&postable); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a silence object")
		return
	}

	silence, err := postable.ToSilence(models.NewTime(a.now()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	id, err := a.store.CreateOrUpdateSilence(silence)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"silenceID": id})
}

// handleGetSilence returns a silence by id.
func (a *API) handleGetSilence(w http.ResponseWriter, r *http.Request) {
	silence, err := a.store.GetSilence(r.PathValue("silenceID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, silence)
}

// handleDeleteSilence deletes a silence by id. Suppression state of
// affected alerts is reverted immediately, not on the next tick.
func (a *API) handleDeleteSilence(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteSilence(r.PathValue("silenceID")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Silence deleted successfully",
	})
}
