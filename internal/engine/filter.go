package engine

import (
	"strings"

	"github.com/prometheus/common/model"

	"fakeam/internal/models"
)

// LabelClause is one label=value equality clause from a filter query.
type LabelClause struct {
	Name  string
	Value string
}

// ParseLabelClause splits a "name=value" filter parameter. The second
// return is false when the parameter carries no equals sign; such
// parameters are ignored, matching the reference behavior.
func ParseLabelClause(s string) (LabelClause, bool) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return LabelClause{}, false
	}
	return LabelClause{Name: name, Value: value}, true
}

// AlertFilter is the read-time predicate stack for alerts and for group
// members. The four state flags default to true.
type AlertFilter struct {
	Active      bool
	Silenced    bool
	Unprocessed bool
	Inhibited   bool

	// Receiver is a case-sensitive substring matched against any of the
	// alert's receiver names. Empty means no receiver filtering.
	Receiver string

	// Clauses are label equality filters, ANDed together.
	Clauses []LabelClause
}

// NewAlertFilter returns a filter that passes everything.
func NewAlertFilter() *AlertFilter {
	return &AlertFilter{
		Active:      true,
		Silenced:    true,
		Unprocessed: true,
		Inhibited:   true,
	}
}

// Matches applies the state filter, then the receiver filter, then the
// label clauses.
func (f *AlertFilter) Matches(a *models.Alert) bool {
	if f == nil {
		return true
	}
	if !f.matchState(a) {
		return false
	}
	if !f.matchReceiver(a) {
		return false
	}
	return f.matchLabels(a)
}

// matchState excludes an alert only when a flag for its state is false.
// Resolved alerts have no flag and always pass; this is a known gap kept
// for compatibility, not a silent exclusion.
func (f *AlertFilter) matchState(a *models.Alert) bool {
	switch a.Status.State {
	case models.AlertStateActive:
		if !f.Active {
			return false
		}
	case models.AlertStateSuppressed:
		if !f.Silenced {
			return false
		}
	case models.AlertStateUnprocessed:
		if !f.Unprocessed {
			return false
		}
	}
	if len(a.Status.InhibitedBy) > 0 && !f.Inhibited {
		return false
	}
	return true
}

func (f *AlertFilter) matchReceiver(a *models.Alert) bool {
	if f.Receiver == "" {
		return true
	}
	for _, r := range a.Receivers {
		if strings.Contains(r.Name, f.Receiver) {
			return true
		}
	}
	return false
}

func (f *AlertFilter) matchLabels(a *models.Alert) bool {
	for _, c := range f.Clauses {
		if string(a.Labels[model.LabelName(c.Name)]) != c.Value {
			return false
		}
	}
	return true
}

// SilenceFilter selects silences carrying an equality matcher for every
// clause, name and value compared literally.
type SilenceFilter struct {
	Clauses []LabelClause
}

// Matches reports whether the silence has a matcher with the exact name
// and value of each clause.
func (f *SilenceFilter) Matches(s *models.Silence) bool {
	if f == nil {
		return true
	}
	for _, c := range f.Clauses {
		if !hasMatcher(s, c) {
			return false
		}
	}
	return true
}

func hasMatcher(s *models.Silence, c LabelClause) bool {
	for _, m := range s.Matchers {
		if m.Name == c.Name && m.Value == c.Value {
			return true
		}
	}
	return false
}
