package generator

import (
	"math/rand"
)

// Template describes one synthetic alert kind. The {instance} token in
// Instance, Description and Summary is substituted at generation time.
type Template struct {
	Alertname   string
	Severity    string
	Instance    string
	Job         string
	Team        string
	Description string
	Summary     string
}

// Templates is the pool of synthetic alert kinds.
var Templates = []Template{
	{
		Alertname:   "HighCPUUsage",
		Severity:    "warning",
		Instance:    "server-{instance}.example.com",
		Job:         "node-exporter",
		Team:        "infrastructure",
		Description: "CPU usage is above 80% for more than 5 minutes",
		Summary:     "High CPU usage on {instance}",
	},
	{
		Alertname:   "DiskSpaceLow",
		Severity:    "critical",
		Instance:    "server-{instance}.example.com",
		Job:         "node-exporter",
		Team:        "infrastructure",
		Description: "Disk space is below 10% on {instance}",
		Summary:     "Low disk space on {instance}",
	},
	{
		Alertname:   "ServiceDown",
		Severity:    "critical",
		Instance:    "service-{instance}.example.com",
		Job:         "blackbox",
		Team:        "platform",
		Description: "Service {instance} is not responding to health checks",
		Summary:     "Service {instance} is down",
	},
	{
		Alertname:   "HighMemoryUsage",
		Severity:    "warning",
		Instance:    "server-{instance}.example.com",
		Job:         "node-exporter",
		Team:        "infrastructure",
		Description: "Memory usage is above 90% for more than 10 minutes",
		Summary:     "High memory usage on {instance}",
	},
	{
		Alertname:   "DatabaseConnectionError",
		Severity:    "critical",
		Instance:    "db-{instance}.example.com",
		Job:         "mysql-exporter",
		Team:        "database",
		Description: "Cannot connect to database {instance}",
		Summary:     "Database connection failed on {instance}",
	},
}

// ReceiverNames is the pool of receiver names alerts are routed to.
var ReceiverNames = []string{
	"web.hook",
	"email-team",
	"slack-critical",
	"pagerduty",
	"discord-alerts",
}

// SeverityWeight is one row of the severity override table.
type SeverityWeight struct {
	Severity string
	Weight   int
}

// DefaultSeverityWeights is the table used for the one-time severity
// override at alert creation.
var DefaultSeverityWeights = []SeverityWeight{
	{Severity: "critical", Weight: 2},
	{Severity: "warning", Weight: 5},
	{Severity: "info", Weight: 3},
}

// PickSeverity selects a severity from a cumulative-weight table using
// the given random source. Returns the empty string for an empty or
// zero-weight table.
func PickSeverity(weights []SeverityWeight, r *rand.Rand) string {
	total := 0
	for _, w := range weights {
		if w.Weight > 0 {
			total += w.Weight
		}
	}
	if total <= 0 {
		return ""
	}

	n := r.Intn(total)
	cumulative := 0
	for _, w := range weights {
		if w.Weight <= 0 {
			continue
		}
		cumulative += w.Weight
		if n < cumulative {
			return w.Severity
		}
	}
	return weights[len(weights)-1].Severity
}
