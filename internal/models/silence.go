package models

import (
	"encoding/json"
)

// SilenceState is the advisory lifecycle flag of a silence. It is surfaced
// to API consumers but does not gate matching: whether a silence covers an
// alert is computed from its time window alone.
type SilenceState string

const (
	SilenceStateActive  SilenceState = "active"
	SilenceStateExpired SilenceState = "expired"
)

// SilenceStatus wraps the silence state for the wire format.
type SilenceStatus struct {
	State SilenceState `json:"state"`
}

// Matcher is one label-comparison clause within a silence. IsEqual false
// negates the match result.
type Matcher struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	IsRegex bool   `json:"isRegex"`
	IsEqual bool   `json:"isEqual"`
}

// UnmarshalJSON defaults a missing isEqual to true, matching the v2 API.
func (m *Matcher) UnmarshalJSON(b []byte) error {
	type plain struct {
		Name    string `json:"name"`
		Value   string `json:"value"`
		IsRegex bool   `json:"isRegex"`
		IsEqual *bool  `json:"isEqual"`
	}
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	m.Name = p.Name
	m.Value = p.Value
	m.IsRegex = p.IsRegex
	m.IsEqual = p.IsEqual == nil || *p.IsEqual
	return nil
}

// Silence is a time-bounded rule that forces matching alerts into the
// suppressed state while its window is in effect.
type Silence struct {
	ID        string        `json:"id"`
	Matchers  []Matcher     `json:"matchers"`
	StartsAt  Time          `json:"startsAt"`
	EndsAt    Time          `json:"endsAt"`
	CreatedBy string        `json:"createdBy"`
	Comment   string        `json:"comment"`
	Status    SilenceStatus `json:"status"`
	UpdatedAt Time          `json:"updatedAt"`
}

// Clone returns a deep copy of the silence.
func (s *Silence) Clone() *Silence {
	c := *s
	c.Matchers = append([]Matcher(nil), s.Matchers...)
	return &c
}

// PostableSilence is the submission form of a silence. Pointer fields
// distinguish absent keys from zero values so missing required fields are
// reported precisely.
type PostableSilence struct {
	ID        string            `json:"id,omitempty"`
	Matchers  []PostableMatcher `json:"matchers"`
	StartsAt  *string           `json:"startsAt"`
	EndsAt    *string           `json:"endsAt"`
	CreatedBy *string           `json:"createdBy"`
	Comment   *string           `json:"comment"`
}

// PostableMatcher is the submission form of a matcher.
type PostableMatcher struct {
	Name    *string `json:"name"`
	Value   *string `json:"value"`
	IsRegex *bool   `json:"isRegex"`
	IsEqual *bool   `json:"isEqual"`
}

// ToSilence validates the submission and builds a silence. The returned
// silence carries the client-supplied id when present; the store assigns
// one otherwise. New and updated silences report the active state.
func (p *PostableSilence) ToSilence(now Time) (*Silence, error) {
	if p.Matchers == nil {
		return nil, NewValidationError("matchers", "missing required field")
	}
	if len(p.Matchers) == 0 {
		return nil, NewValidationError("matchers", "must not be empty")
	}
	if p.StartsAt == nil {
		return nil, NewValidationError("startsAt", "missing required field")
	}
	if p.EndsAt == nil {
		return nil, NewValidationError("endsAt", "missing required field")
	}
	if p.CreatedBy == nil {
		return nil, NewValidationError("createdBy", "missing required field")
	}
	if p.Comment == nil {
		return nil, NewValidationError("comment", "missing required field")
	}

	matchers := make([]Matcher, 0, len(p.Matchers))
	for _, m := range p.Matchers {
		if m.Name == nil {
			return nil, NewValidationError("matchers", "matcher missing name")
		}
		if m.Value == nil {
			return nil, NewValidationError("matchers", "matcher missing value")
		}
		if m.IsRegex == nil {
			return nil, NewValidationError("matchers", "matcher missing isRegex")
		}
		matchers = append(matchers, Matcher{
			Name:    *m.Name,
			Value:   *m.Value,
			IsRegex: *m.IsRegex,
			IsEqual: m.IsEqual == nil || *m.IsEqual,
		})
	}

	startsAt, err := ParseTimestamp(*p.StartsAt)
	if err != nil {
		return nil, NewValidationError("startsAt", err.Error())
	}
	endsAt, err := ParseTimestamp(*p.EndsAt)
	if err != nil {
		return nil, NewValidationError("endsAt", err.Error())
	}

	return &Silence{
		ID:        p.ID,
		Matchers:  matchers,
		StartsAt:  NewTime(startsAt),
		EndsAt:    NewTime(endsAt),
		CreatedBy: *p.CreatedBy,
		Comment:   *p.Comment,
		Status:    SilenceStatus{State: SilenceStateActive},
		UpdatedAt: now,
	}, nil
}
