package generator

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/common/model"
	"github.com/rs/zerolog"

	"fakeam/internal/config"
	"fakeam/internal/engine"
	"fakeam/internal/logger"
	"fakeam/internal/metrics"
	"fakeam/internal/models"
)

// severityOverrideProbability is how often the weighted table overrides a
// template's own severity at creation.
const severityOverrideProbability = 0.3

// lockedSource guards a rand source with a mutex so one *rand.Rand can be
// shared between the driver loop and request goroutines.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source64
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

// Generator produces the synthetic workload: random alerts on a cadence,
// promotion of unprocessed alerts, periodic resolution sweeps, and
// housekeeping of resolved alerts. All randomness flows through one
// injectable source so runs are reproducible under a fixed seed.
type Generator struct {
	store   *engine.Store
	cfg     config.GeneratorConfig
	rng     *rand.Rand
	log     zerolog.Logger
	weights []SeverityWeight

	lastResolve time.Time
}

// New creates a generator. A nil rng gets seeded from cfg.Seed, or from
// the clock when cfg.Seed is zero. The default source serializes access:
// PickReceiver runs on request goroutines while Tick runs on the driver
// loop, and both draw from the same generator.
func New(store *engine.Store, cfg config.GeneratorConfig, rng *rand.Rand) *Generator {
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(&lockedSource{src: rand.NewSource(seed).(rand.Source64)})
	}
	return &Generator{
		store:   store,
		cfg:     cfg,
		rng:     rng,
		log:     logger.WithComponent("generator"),
		weights: DefaultSeverityWeights,
	}
}

// Seed populates the store with an initial set of alerts and silences.
func (g *Generator) Seed(now time.Time) {
	alerts := make([]*models.Alert, 0, g.cfg.SeedAlerts)
	for i := 0; i < g.cfg.SeedAlerts; i++ {
		alerts = append(alerts, g.RandomAlert(now))
	}
	if len(alerts) > 0 {
		if err := g.store.CreateAlerts(alerts); err != nil {
			g.log.Error().Err(err).Msg("failed to seed alerts")
		}
	}

	seedNames := []string{"HighCPUUsage", "DiskSpaceLow"}
	for i := 0; i < g.cfg.SeedSilences; i++ {
		s := &models.Silence{
			Matchers: []models.Matcher{
				{
					Name:    "alertname",
					Value:   seedNames[g.rng.Intn(len(seedNames))],
					IsRegex: false,
					IsEqual: true,
				},
			},
			StartsAt:  models.NewTime(now),
			EndsAt:    models.NewTime(now.Add(2 * time.Hour)),
			CreatedBy: "test-user@example.com",
			Comment:   fmt.Sprintf("Test silence %d", i+1),
		}
		if _, err := g.store.CreateOrUpdateSilence(s); err != nil {
			g.log.Error().Err(err).Msg("failed to seed silence")
		}
	}

	counts := g.store.Counts()
	g.log.Info().
		Int("alerts", counts.Alerts).
		Int("silences", counts.Silences).
		Msg("store seeded")
}

// Tick runs one cadence step: maybe create an alert, promote unprocessed
// alerts, sweep resolutions, trim and collect garbage.
func (g *Generator) Tick(now time.Time) {
	if g.rng.Float64() < g.cfg.CreateProbability {
		a := g.RandomAlert(now)
		if err := g.store.CreateAlerts([]*models.Alert{a}); err != nil {
			g.log.Error().Err(err).Msg("failed to create generated alert")
		} else {
			metrics.GeneratedAlertsTotal.WithLabelValues(
				a.Name(),
				string(a.Labels["severity"]),
			).Inc()
		}
	}

	g.promote()
	g.resolveSweep(now)

	if g.rng.Float64() < g.cfg.DropProbability {
		g.store.DropOldest()
	}

	g.store.GC(g.cfg.Retention)
}

// promote gives every unprocessed alert a chance to become active,
// modeling ingestion delay.
func (g *Generator) promote() {
	var fingerprints []string
	for _, a := range g.store.Snapshot() {
		if a.Status.State != models.AlertStateUnprocessed {
			continue
		}
		if g.rng.Float64() < g.cfg.PromoteProbability {
			fingerprints = append(fingerprints, a.Fingerprint)
		}
	}
	if len(fingerprints) > 0 {
		g.store.PromoteUnprocessed(fingerprints)
	}
}

// resolveSweep periodically resolves a random 30-50% slice of the active
// alerts so resolved-alert handling stays exercised downstream.
func (g *Generator) resolveSweep(now time.Time) {
	if now.Sub(g.lastResolve) < g.cfg.ResolveInterval {
		return
	}
	g.lastResolve = now

	var active []string
	for _, a := range g.store.Snapshot() {
		if a.Status.State == models.AlertStateActive {
			active = append(active, a.Fingerprint)
		}
	}
	if len(active) == 0 {
		g.log.Debug().Msg("no active alerts to resolve")
		return
	}

	fraction := g.cfg.ResolveMinFraction +
		g.rng.Float64()*(g.cfg.ResolveMaxFraction-g.cfg.ResolveMinFraction)
	count := int(float64(len(active)) * fraction)
	if count < 1 {
		count = 1
	}

	g.rng.Shuffle(len(active), func(i, j int) {
		active[i], active[j] = active[j], active[i]
	})

	resolved := g.store.ResolveAlerts(active[:count])
	g.log.Info().Int("resolved", resolved).Msg("resolution sweep completed")
}

// RandomAlert builds one alert from a random template. The template's
// severity may be overridden once, at creation, from the weighted table.
func (g *Generator) RandomAlert(now time.Time) *models.Alert {
	tpl := Templates[g.rng.Intn(len(Templates))]
	instance := strings.ReplaceAll(tpl.Instance, "{instance}", strconv.Itoa(g.rng.Intn(20)+1))

	severity := tpl.Severity
	if g.rng.Float64() < severityOverrideProbability {
		if s := PickSeverity(g.weights, g.rng); s != "" {
			severity = s
		}
	}

	startsAt := now.Add(-time.Duration(g.rng.Intn(30)+1) * time.Minute)
	endsAt := startsAt.Add(time.Duration(g.rng.Intn(6)+1) * time.Hour)

	state := models.AlertStateActive
	if g.rng.Float64() < 1.0/3.0 {
		state = models.AlertStateUnprocessed
	}

	return &models.Alert{
		Labels: model.LabelSet{
			model.AlertNameLabel: model.LabelValue(tpl.Alertname),
			"severity":           model.LabelValue(severity),
			"instance":           model.LabelValue(instance),
			"job":                model.LabelValue(tpl.Job),
			"team":               model.LabelValue(tpl.Team),
		},
		Annotations: map[string]string{
			"description": strings.ReplaceAll(tpl.Description, "{instance}", instance),
			"summary":     strings.ReplaceAll(tpl.Summary, "{instance}", instance),
			"runbook_url": "https://runbooks.example.com/" + strings.ToLower(tpl.Alertname),
		},
		StartsAt:     models.NewTime(startsAt),
		EndsAt:       models.NewTime(endsAt),
		UpdatedAt:    models.NewTime(now),
		GeneratorURL: fmt.Sprintf("http://prometheus:9090/graph?g0.expr=up{job=%q}&g0.tab=1", tpl.Job),
		Receivers:    []models.Receiver{g.PickReceiver()},
		Status: models.AlertStatus{
			State:       state,
			SilencedBy:  []string{},
			InhibitedBy: []string{},
			MutedBy:     []string{},
		},
	}
}

// PickReceiver selects a random receiver from the pool.
func (g *Generator) PickReceiver() models.Receiver {
	return models.Receiver{Name: ReceiverNames[g.rng.Intn(len(ReceiverNames))]}
}
