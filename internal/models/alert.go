package models

import (
	"time"

	"github.com/prometheus/common/model"
)

// AlertState is the lifecycle state of an alert.
type AlertState string

const (
	AlertStateUnprocessed AlertState = "unprocessed"
	AlertStateActive      AlertState = "active"
	AlertStateSuppressed  AlertState = "suppressed"
	AlertStateResolved    AlertState = "resolved"
)

// IsValid checks if the alert state is a known one
func (s AlertState) IsValid() bool {
	switch s {
	case AlertStateUnprocessed, AlertStateActive, AlertStateSuppressed, AlertStateResolved:
		return true
	default:
		return false
	}
}

// Receiver is a named notification destination. Display-only here.
type Receiver struct {
	Name string `json:"name"`
}

// AlertStatus carries the lifecycle state and the suppression bookkeeping
// of an alert. InhibitedBy and MutedBy are reserved and always empty.
type AlertStatus struct {
	State       AlertState `json:"state"`
	SilencedBy  []string   `json:"silencedBy"`
	InhibitedBy []string   `json:"inhibitedBy"`
	MutedBy     []string   `json:"mutedBy"`
}

// Alert is a single reported condition, identified by its fingerprint.
// The fingerprint is the fingerprint of the alert's label set and is
// assigned once at creation.
type Alert struct {
	Labels       model.LabelSet    `json:"labels"`
	Annotations  map[string]string `json:"annotations"`
	StartsAt     Time              `json:"startsAt"`
	EndsAt       Time              `json:"endsAt"`
	UpdatedAt    Time              `json:"updatedAt"`
	GeneratorURL string            `json:"generatorURL"`
	Fingerprint  string            `json:"fingerprint"`
	Receivers    []Receiver        `json:"receivers"`
	Status       AlertStatus       `json:"status"`
}

// Name returns the alertname label value.
func (a *Alert) Name() string {
	return string(a.Labels[model.AlertNameLabel])
}

// LabelFingerprint computes the stable fingerprint of the alert's labels.
func (a *Alert) LabelFingerprint() string {
	return a.Labels.Fingerprint().String()
}

// Validate checks the data-model invariants required before an alert may
// enter the store.
func (a *Alert) Validate() error {
	if len(a.Labels) == 0 {
		return NewValidationError("labels", "must not be empty")
	}
	if _, ok := a.Labels[model.AlertNameLabel]; !ok {
		return NewValidationError("labels", "missing required label alertname")
	}
	if len(a.Receivers) == 0 {
		return NewValidationError("receivers", "must not be empty")
	}
	if a.Status.State != "" && !a.Status.State.IsValid() {
		return NewValidationError("status.state", "unknown alert state")
	}
	return nil
}

// Clone returns a deep copy of the alert.
func (a *Alert) Clone() *Alert {
	c := *a
	c.Labels = a.Labels.Clone()
	c.Annotations = make(map[string]string, len(a.Annotations))
	for k, v := range a.Annotations {
		c.Annotations[k] = v
	}
	c.Receivers = append([]Receiver(nil), a.Receivers...)
	c.Status.SilencedBy = append([]string{}, a.Status.SilencedBy...)
	c.Status.InhibitedBy = append([]string{}, a.Status.InhibitedBy...)
	c.Status.MutedBy = append([]string{}, a.Status.MutedBy...)
	return &c
}

// AlertGroup is a derived bucket of alerts sharing a receiver and an alert
// name. Groups are recomputed in full from the store, never patched.
type AlertGroup struct {
	Labels   model.LabelSet `json:"labels"`
	Receiver Receiver       `json:"receiver"`
	Alerts   []*Alert       `json:"alerts"`
}

// PostableAlert is the submission form of an alert. Timestamps come as
// strings so malformed values report a ValidationError instead of a bare
// decode failure.
type PostableAlert struct {
	Labels       model.LabelSet    `json:"labels"`
	Annotations  map[string]string `json:"annotations"`
	StartsAt     string            `json:"startsAt,omitempty"`
	EndsAt       string            `json:"endsAt,omitempty"`
	GeneratorURL string            `json:"generatorURL,omitempty"`
}

// ToAlert builds a storable alert from a submission. Missing startsAt
// defaults to now, missing endsAt to now plus defaultTTL. The receiver is
// chosen by the caller; externally submitted alerts begin active.
func (p *PostableAlert) ToAlert(now Time, defaultTTL time.Duration, receiver Receiver) (*Alert, error) {
	if len(p.Labels) == 0 {
		return nil, NewValidationError("labels", "must not be empty")
	}

	startsAt := now
	if p.StartsAt != "" {
		ts, err := ParseTimestamp(p.StartsAt)
		if err != nil {
			return nil, NewValidationError("startsAt", err.Error())
		}
		startsAt = NewTime(ts)
	}

	endsAt := NewTime(now.Add(defaultTTL))
	if p.EndsAt != "" {
		ts, err := ParseTimestamp(p.EndsAt)
		if err != nil {
			return nil, NewValidationError("endsAt", err.Error())
		}
		endsAt = NewTime(ts)
	}

	annotations := p.Annotations
	if annotations == nil {
		annotations = map[string]string{}
	}

	a := &Alert{
		Labels:       p.Labels,
		Annotations:  annotations,
		StartsAt:     startsAt,
		EndsAt:       endsAt,
		UpdatedAt:    now,
		GeneratorURL: p.GeneratorURL,
		Receivers:    []Receiver{receiver},
		Status: AlertStatus{
			State:       AlertStateActive,
			SilencedBy:  []string{},
			InhibitedBy: []string{},
			MutedBy:     []string{},
		},
	}
	a.Fingerprint = a.LabelFingerprint()

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
