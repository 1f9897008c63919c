package engine

import (
	"time"

	"fakeam/internal/events"
	"fakeam/internal/metrics"
	"fakeam/internal/models"
)

// silenceCoversAt reports whether now falls inside the silence's effective
// window [startsAt, endsAt). Coverage is independent of the advisory
// status.state flag: a future-scheduled silence reports active but covers
// nothing until its window opens.
func silenceCoversAt(s *models.Silence, now time.Time) bool {
	return !now.Before(s.StartsAt.Time) && now.Before(s.EndsAt.Time)
}

// expireSilencesLocked advances the advisory state flag: any active
// silence whose endsAt has passed becomes expired. Expiry is terminal.
// Callers hold the store lock.
func (st *Store) expireSilencesLocked(now time.Time) {
	for _, s := range st.silences {
		if s.Status.State != models.SilenceStateActive {
			continue
		}
		if s.EndsAt.After(now) {
			continue
		}
		s.Status.State = models.SilenceStateExpired
		metrics.SilencesExpiredTotal.Inc()
		st.emitLocked(&events.Event{
			Type:    events.TypeSilenceExpired,
			At:      models.NewTime(now),
			Silence: s.Clone(),
		})
	}
}

// applySilencesLocked recomputes silence coverage for every alert in the
// store, regardless of its lifecycle state. An alert covered by at least
// one silence is forced into suppressed; this deliberately overwrites
// resolved and unprocessed alerts too, matching the reference behavior.
// An alert whose coverage drops to empty reverts to active only if it was
// suppressed. Repeated application with unchanged inputs is idempotent.
// Callers hold the store lock.
func (st *Store) applySilencesLocked(now time.Time) {
	for _, a := range st.alerts {
		covering := []string{}
		for _, s := range st.silences {
			if !silenceCoversAt(s, now) {
				continue
			}
			if SilenceMatches(s, a.Labels) {
				covering = append(covering, s.ID)
			}
		}

		a.Status.SilencedBy = covering

		if len(covering) > 0 {
			if a.Status.State != models.AlertStateSuppressed {
				a.Status.State = models.AlertStateSuppressed
				st.emitLocked(&events.Event{
					Type:  events.TypeAlertSuppressed,
					At:    models.NewTime(now),
					Alert: a.Clone(),
				})
			}
		} else if a.Status.State == models.AlertStateSuppressed {
			a.Status.State = models.AlertStateActive
			st.emitLocked(&events.Event{
				Type:  events.TypeAlertUnsuppressed,
				At:    models.NewTime(now),
				Alert: a.Clone(),
			})
		}
	}
}

// stripSilenceLocked eagerly removes a deleted silence's id from every
// alert and reverts alerts left with empty coverage to active, keeping
// read-time state consistent between ticks. Callers hold the store lock.
func (st *Store) stripSilenceLocked(id string, now time.Time) {
	for _, a := range st.alerts {
		kept := a.Status.SilencedBy[:0]
		removed := false
		for _, sid := range a.Status.SilencedBy {
			if sid == id {
				removed = true
				continue
			}
			kept = append(kept, sid)
		}
		if !removed {
			continue
		}

		a.Status.SilencedBy = kept
		if len(kept) == 0 && a.Status.State == models.AlertStateSuppressed {
			a.Status.State = models.AlertStateActive
			st.emitLocked(&events.Event{
				Type:  events.TypeAlertUnsuppressed,
				At:    models.NewTime(now),
				Alert: a.Clone(),
			})
		}
	}
}
