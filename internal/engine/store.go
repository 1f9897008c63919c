package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"fakeam/internal/events"
	"fakeam/internal/logger"
	"fakeam/internal/metrics"
	"fakeam/internal/models"
)

// Config holds store construction parameters.
type Config struct {
	// MaxAlerts caps the stored alert count; the oldest alert is dropped
	// when the cap is exceeded. Zero means the default of 100.
	MaxAlerts int

	// Events receives lifecycle events. Sends never block: a full channel
	// drops the event. Nil disables emission.
	Events chan<- *events.Event

	// Clock overrides wall-clock sampling, for tests. Nil means time.Now.
	Clock func() time.Time
}

// Store is the single shared collection of alerts and silences. All
// mutations, including the periodic tick, are serialized through one
// mutex; reads operate on deep copies taken under the same lock.
type Store struct {
	mu        sync.RWMutex
	clock     func() time.Time
	maxAlerts int
	events    chan<- *events.Event

	alerts       []*models.Alert
	alertsByFP   map[string]*models.Alert
	silences     []*models.Silence
	silencesByID map[string]*models.Silence
	groups       []*models.AlertGroup
}

// NewStore creates an empty store.
func NewStore(cfg Config) *Store {
	if cfg.MaxAlerts <= 0 {
		cfg.MaxAlerts = 100
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		clock:        clock,
		maxAlerts:    cfg.MaxAlerts,
		events:       cfg.Events,
		alerts:       make([]*models.Alert, 0),
		alertsByFP:   make(map[string]*models.Alert),
		silences:     make([]*models.Silence, 0),
		silencesByID: make(map[string]*models.Silence),
		groups:       make([]*models.AlertGroup, 0),
	}
}

func (st *Store) now() time.Time {
	return st.clock().UTC()
}

// CreateAlerts validates and stores a batch of alerts. The whole batch is
// validated before any mutation, so a rejected batch leaves the store
// unchanged. An alert whose label fingerprint already exists is refreshed
// in place rather than duplicated, keeping fingerprints unique across the
// store; a resolved alert refreshed this way becomes active again as a new
// occurrence.
func (st *Store) CreateAlerts(batch []*models.Alert) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, a := range batch {
		if err := a.Validate(); err != nil {
			return err
		}
	}

	now := st.now()
	for _, a := range batch {
		if a.Fingerprint == "" {
			a.Fingerprint = a.LabelFingerprint()
		}
		normalizeStatus(a)

		if existing, ok := st.alertsByFP[a.Fingerprint]; ok {
			st.refreshAlertLocked(existing, a, now)
			continue
		}

		st.alerts = append(st.alerts, a)
		st.alertsByFP[a.Fingerprint] = a
		metrics.AlertsCreatedTotal.Inc()
		st.emitLocked(&events.Event{
			Type:  events.TypeAlertCreated,
			At:    models.NewTime(now),
			Alert: a.Clone(),
		})
	}

	st.enforceCapLocked(now)
	st.regroupLocked()
	st.updateGaugesLocked()
	return nil
}

// refreshAlertLocked folds a resubmitted label set into the stored alert.
func (st *Store) refreshAlertLocked(existing, incoming *models.Alert, now time.Time) {
	existing.Annotations = incoming.Annotations
	existing.EndsAt = incoming.EndsAt
	existing.UpdatedAt = models.NewTime(now)
	if incoming.GeneratorURL != "" {
		existing.GeneratorURL = incoming.GeneratorURL
	}
	if existing.Status.State == models.AlertStateResolved {
		existing.Status.State = models.AlertStateActive
		existing.StartsAt = incoming.StartsAt
	}
	st.emitLocked(&events.Event{
		Type:  events.TypeAlertUpdated,
		At:    models.NewTime(now),
		Alert: existing.Clone(),
	})
}

func normalizeStatus(a *models.Alert) {
	if a.Status.State == "" {
		a.Status.State = models.AlertStateActive
	}
	if a.Status.SilencedBy == nil {
		a.Status.SilencedBy = []string{}
	}
	if a.Status.InhibitedBy == nil {
		a.Status.InhibitedBy = []string{}
	}
	if a.Status.MutedBy == nil {
		a.Status.MutedBy = []string{}
	}
}

// ListAlerts returns deep copies of the alerts passing the filter, in
// insertion order.
func (st *Store) ListAlerts(f *AlertFilter) []*models.Alert {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]*models.Alert, 0)
	for _, a := range st.alerts {
		if f.Matches(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

// ListGroups returns deep copies of the alert groups with the filter
// applied to each group's members. Groups whose filtered member list is
// empty are dropped.
func (st *Store) ListGroups(f *AlertFilter) []*models.AlertGroup {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]*models.AlertGroup, 0)
	for _, g := range st.groups {
		members := make([]*models.Alert, 0, len(g.Alerts))
		for _, a := range g.Alerts {
			if f.Matches(a) {
				members = append(members, a.Clone())
			}
		}
		if len(members) == 0 {
			continue
		}
		out = append(out, &models.AlertGroup{
			Labels:   g.Labels.Clone(),
			Receiver: g.Receiver,
			Alerts:   members,
		})
	}
	return out
}

// CreateOrUpdateSilence stores a silence. An empty id gets a generated
// one; a known id replaces the existing silence in place, never errors.
// Coverage is recomputed eagerly so reads are consistent before the next
// tick.
func (st *Store) CreateOrUpdateSilence(s *models.Silence) (string, error) {
	if len(s.Matchers) == 0 {
		return "", models.NewValidationError("matchers", "must not be empty")
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.UpdatedAt = models.NewTime(now)
	s.Status.State = models.SilenceStateActive

	if _, ok := st.silencesByID[s.ID]; ok {
		for i, old := range st.silences {
			if old.ID == s.ID {
				st.silences[i] = s
				break
			}
		}
		st.silencesByID[s.ID] = s
		st.emitLocked(&events.Event{
			Type:    events.TypeSilenceUpdated,
			At:      models.NewTime(now),
			Silence: s.Clone(),
		})
	} else {
		st.silences = append(st.silences, s)
		st.silencesByID[s.ID] = s
		metrics.SilencesCreatedTotal.Inc()
		st.emitLocked(&events.Event{
			Type:    events.TypeSilenceCreated,
			At:      models.NewTime(now),
			Silence: s.Clone(),
		})
	}

	st.applySilencesLocked(now)
	st.updateGaugesLocked()
	return s.ID, nil
}

// GetSilence returns a deep copy of the silence with the given id.
func (st *Store) GetSilence(id string) (*models.Silence, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.silencesByID[id]
	if !ok {
		return nil, &models.NotFoundError{Kind: "silence", ID: id}
	}
	return s.Clone(), nil
}

// DeleteSilence removes a silence and eagerly strips its id from every
// alert's silencedBy, reverting alerts left uncovered to active.
func (st *Store) DeleteSilence(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.silencesByID[id]; !ok {
		return &models.NotFoundError{Kind: "silence", ID: id}
	}

	now := st.now()
	delete(st.silencesByID, id)
	for i, s := range st.silences {
		if s.ID == id {
			st.silences = append(st.silences[:i], st.silences[i+1:]...)
			break
		}
	}

	st.stripSilenceLocked(id, now)
	metrics.SilencesDeletedTotal.Inc()
	st.emitLocked(&events.Event{
		Type:      events.TypeSilenceDeleted,
		At:        models.NewTime(now),
		SilenceID: id,
	})
	st.updateGaugesLocked()
	return nil
}

// ListSilences returns deep copies of the silences passing the filter, in
// insertion order.
func (st *Store) ListSilences(f *SilenceFilter) []*models.Silence {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]*models.Silence, 0)
	for _, s := range st.silences {
		if f.Matches(s) {
			out = append(out, s.Clone())
		}
	}
	return out
}

// Tick advances silence bookkeeping and recomputes suppression for the
// whole store. Callers must supply monotonically non-decreasing now
// values; the store assumes no particular cadence.
func (st *Store) Tick(now time.Time) {
	start := time.Now()
	st.mu.Lock()
	defer st.mu.Unlock()

	now = now.UTC()
	st.expireSilencesLocked(now)
	st.applySilencesLocked(now)
	st.updateGaugesLocked()

	metrics.TicksTotal.Inc()
	metrics.TickDuration.Observe(time.Since(start).Seconds())
}

// Snapshot returns deep copies of all stored alerts, for driver-side
// decisions such as resolution sweeps.
func (st *Store) Snapshot() []*models.Alert {
	return st.ListAlerts(nil)
}

// PromoteUnprocessed moves the given alerts from unprocessed to active,
// modeling the periodic processing pass. Alerts in any other state are
// left untouched. Returns the number of alerts promoted.
func (st *Store) PromoteUnprocessed(fingerprints []string) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	promoted := 0
	for _, fp := range fingerprints {
		a, ok := st.alertsByFP[fp]
		if !ok || a.Status.State != models.AlertStateUnprocessed {
			continue
		}
		a.Status.State = models.AlertStateActive
		a.UpdatedAt = models.NewTime(now)
		promoted++
	}
	return promoted
}

// ResolveAlerts resolves the given alerts. Only alerts in the active state
// are eligible; resolution sets endsAt and updatedAt to now. Returns the
// number of alerts resolved.
func (st *Store) ResolveAlerts(fingerprints []string) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	resolved := 0
	for _, fp := range fingerprints {
		a, ok := st.alertsByFP[fp]
		if !ok || a.Status.State != models.AlertStateActive {
			continue
		}
		a.Status.State = models.AlertStateResolved
		a.EndsAt = models.NewTime(now)
		a.UpdatedAt = models.NewTime(now)
		resolved++
		metrics.AlertsResolvedTotal.Inc()
		st.emitLocked(&events.Event{
			Type:  events.TypeAlertResolved,
			At:    models.NewTime(now),
			Alert: a.Clone(),
		})
	}
	return resolved
}

// GC removes resolved alerts whose endsAt is older than the retention
// threshold. Returns the number of alerts removed.
func (st *Store) GC(retention time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	cutoff := now.Add(-retention)
	removed := 0

	kept := st.alerts[:0]
	for _, a := range st.alerts {
		if a.Status.State == models.AlertStateResolved && a.EndsAt.Before(cutoff) {
			delete(st.alertsByFP, a.Fingerprint)
			removed++
			metrics.AlertsDeletedTotal.Inc()
			st.emitLocked(&events.Event{
				Type:  events.TypeAlertDeleted,
				At:    models.NewTime(now),
				Alert: a.Clone(),
			})
			continue
		}
		kept = append(kept, a)
	}
	st.alerts = kept

	if removed > 0 {
		st.regroupLocked()
		st.updateGaugesLocked()
	}
	return removed
}

// DropOldest removes the oldest stored alert, if any. Workload-generation
// housekeeping, mirroring the reference's occasional trim.
func (st *Store) DropOldest() bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.alerts) == 0 {
		return false
	}
	st.dropAlertAtLocked(0, st.now())
	st.regroupLocked()
	st.updateGaugesLocked()
	return true
}

// Stats is a point-in-time count of stored entities.
type Stats struct {
	Alerts   int
	Silences int
	Groups   int
}

// Counts returns current store statistics.
func (st *Store) Counts() Stats {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return Stats{
		Alerts:   len(st.alerts),
		Silences: len(st.silences),
		Groups:   len(st.groups),
	}
}

func (st *Store) enforceCapLocked(now time.Time) {
	for len(st.alerts) > st.maxAlerts {
		st.dropAlertAtLocked(0, now)
	}
}

func (st *Store) dropAlertAtLocked(i int, now time.Time) {
	a := st.alerts[i]
	delete(st.alertsByFP, a.Fingerprint)
	st.alerts = append(st.alerts[:i], st.alerts[i+1:]...)
	metrics.AlertsDeletedTotal.Inc()
	st.emitLocked(&events.Event{
		Type:  events.TypeAlertDeleted,
		At:    models.NewTime(now),
		Alert: a.Clone(),
	})
}

func (st *Store) regroupLocked() {
	st.groups = buildGroups(st.alerts)
}

func (st *Store) updateGaugesLocked() {
	metrics.StoreAlerts.Set(float64(len(st.alerts)))
	metrics.StoreSilences.Set(float64(len(st.silences)))
	metrics.StoreGroups.Set(float64(len(st.groups)))
}

// emitLocked sends an event without ever blocking the store. A full
// channel drops the event and counts it.
func (st *Store) emitLocked(ev *events.Event) {
	if st.events == nil {
		return
	}
	select {
	case st.events <- ev:
		metrics.EventsEmittedTotal.WithLabelValues(string(ev.Type)).Inc()
	default:
		metrics.EventsDroppedTotal.Inc()
		log := logger.WithComponent("store")
		log.Warn().
			Str("event_type", string(ev.Type)).
			Msg("event channel full, dropping event")
	}
}
