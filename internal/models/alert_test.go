package models

import (
	"testing"
	"time"

	"github.com/prometheus/common/model"
)

func TestPostableAlertToAlertDefaults(t *testing.T) {
	now := NewTime(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	recv := Receiver{Name: "web.hook"}

	p := &PostableAlert{
		Labels: model.LabelSet{model.AlertNameLabel: "HighCPUUsage"},
	}
	a, err := p.ToAlert(now, time.Hour, recv)
	if err != nil {
		t.Fatalf("ToAlert: %v", err)
	}

	if !a.StartsAt.Equal(now.Time) {
		t.Errorf("expected startsAt defaulted to now, got %v", a.StartsAt)
	}
	if !a.EndsAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expected endsAt = now + ttl, got %v", a.EndsAt)
	}
	if a.Status.State != AlertStateActive {
		t.Errorf("expected active, got %s", a.Status.State)
	}
	if a.Fingerprint == "" {
		t.Error("expected fingerprint assigned")
	}
	if a.Fingerprint != a.LabelFingerprint() {
		t.Error("fingerprint does not match label fingerprint")
	}
	if len(a.Receivers) != 1 || a.Receivers[0] != recv {
		t.Errorf("expected caller receiver, got %v", a.Receivers)
	}
	if a.Annotations == nil {
		t.Error("expected annotations map initialized")
	}
}

func TestPostableAlertExplicitTimestamps(t *testing.T) {
	now := NewTime(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	p := &PostableAlert{
		Labels:   model.LabelSet{model.AlertNameLabel: "HighCPUUsage"},
		StartsAt: "2024-06-01T10:00:00Z",
		EndsAt:   "2024-06-01T18:00:00Z",
	}
	a, err := p.ToAlert(now, time.Hour, Receiver{Name: "web.hook"})
	if err != nil {
		t.Fatalf("ToAlert: %v", err)
	}
	if !a.StartsAt.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected startsAt %v", a.StartsAt)
	}
	if !a.EndsAt.Equal(time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected endsAt %v", a.EndsAt)
	}
}

func TestPostableAlertRejections(t *testing.T) {
	now := NewTime(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		p    *PostableAlert
	}{
		{"no labels", &PostableAlert{}},
		{"missing alertname", &PostableAlert{Labels: model.LabelSet{"severity": "critical"}}},
		{"bad startsAt", &PostableAlert{
			Labels:   model.LabelSet{model.AlertNameLabel: "A"},
			StartsAt: "whenever",
		}},
		{"bad endsAt", &PostableAlert{
			Labels: model.LabelSet{model.AlertNameLabel: "A"},
			EndsAt: "later",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.p.ToAlert(now, time.Hour, Receiver{Name: "web.hook"}); !IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAlertValidate(t *testing.T) {
	valid := func() *Alert {
		return &Alert{
			Labels:    model.LabelSet{model.AlertNameLabel: "A"},
			Receivers: []Receiver{{Name: "web.hook"}},
			Status:    AlertStatus{State: AlertStateActive},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid alert rejected: %v", err)
	}

	a := valid()
	a.Labels = nil
	if err := a.Validate(); !IsValidation(err) {
		t.Error("expected rejection for empty labels")
	}

	a = valid()
	a.Receivers = nil
	if err := a.Validate(); !IsValidation(err) {
		t.Error("expected rejection for empty receivers")
	}

	a = valid()
	a.Status.State = "bogus"
	if err := a.Validate(); !IsValidation(err) {
		t.Error("expected rejection for unknown state")
	}

	// empty state is allowed; the store defaults it
	a = valid()
	a.Status.State = ""
	if err := a.Validate(); err != nil {
		t.Errorf("empty state rejected: %v", err)
	}
}

func TestAlertCloneIsDeep(t *testing.T) {
	a := &Alert{
		Labels:      model.LabelSet{model.AlertNameLabel: "A", "severity": "warning"},
		Annotations: map[string]string{"summary": "x"},
		Receivers:   []Receiver{{Name: "web.hook"}},
		Status: AlertStatus{
			State:      AlertStateSuppressed,
			SilencedBy: []string{"sil-1"},
		},
	}

	c := a.Clone()
	c.Labels["severity"] = "critical"
	c.Annotations["summary"] = "y"
	c.Status.SilencedBy[0] = "sil-2"

	if a.Labels["severity"] != "warning" {
		t.Error("clone shares labels with original")
	}
	if a.Annotations["summary"] != "x" {
		t.Error("clone shares annotations with original")
	}
	if a.Status.SilencedBy[0] != "sil-1" {
		t.Error("clone shares silencedBy with original")
	}
}
