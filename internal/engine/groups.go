package engine

import (
	"github.com/prometheus/common/model"

	"fakeam/internal/models"
)

type groupKey struct {
	receiver  string
	alertname string
}

// buildGroups partitions alerts into display groups keyed by the first
// receiver's name and the alertname label, preserving first-seen order.
// Group labels and the group receiver are captured from the first alert
// encountered for a key; later members are appended without reconciling
// their own job or receiver, so a group's displayed job reflects only the
// first-seen alert.
func buildGroups(alerts []*models.Alert) []*models.AlertGroup {
	order := make([]groupKey, 0)
	byKey := make(map[groupKey]*models.AlertGroup)

	for _, a := range alerts {
		key := groupKey{
			receiver:  a.Receivers[0].Name,
			alertname: a.Name(),
		}

		group, ok := byKey[key]
		if !ok {
			labels := model.LabelSet{
				model.AlertNameLabel: model.LabelValue(key.alertname),
			}
			if job, ok := a.Labels["job"]; ok {
				labels["job"] = job
			}
			group = &models.AlertGroup{
				Labels:   labels,
				Receiver: a.Receivers[0],
				Alerts:   make([]*models.Alert, 0, 1),
			}
			byKey[key] = group
			order = append(order, key)
		}

		group.Alerts = append(group.Alerts, a)
	}

	groups := make([]*models.AlertGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, byKey[key])
	}
	return groups
}
