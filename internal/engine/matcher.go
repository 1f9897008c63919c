package engine

import (
	"regexp"

	"github.com/prometheus/common/model"

	"fakeam/internal/models"
)

// EvaluateMatcher evaluates one matcher against one label value. Regex
// matchers run an unanchored search; a pattern that does not compile never
// matches instead of failing the request. IsEqual false negates the result.
func EvaluateMatcher(m models.Matcher, labelValue string) bool {
	var matched bool
	if m.IsRegex {
		re, err := regexp.Compile(m.Value)
		if err == nil {
			matched = re.MatchString(labelValue)
		}
	} else {
		matched = labelValue == m.Value
	}

	if m.IsEqual {
		return matched
	}
	return !matched
}

// SilenceMatches reports whether every matcher of the silence holds against
// the label set. A label absent from the set evaluates as the empty string.
func SilenceMatches(s *models.Silence, labels model.LabelSet) bool {
	for _, m := range s.Matchers {
		value := string(labels[model.LabelName(m.Name)])
		if !EvaluateMatcher(m, value) {
			return false
		}
	}
	return true
}
