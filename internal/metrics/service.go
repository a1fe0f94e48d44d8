package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// Service holds the Prometheus collectors of the application.
type Service struct {
	BracketsGenerated  *prometheus.CounterVec
	MatchesCreated     prometheus.Counter
	GenerationFailures *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	ResultsSubmitted   *prometheus.CounterVec
	ConflictsResolved  prometheus.Counter
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the collectors.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		BracketsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "padel_brackets_generated_total",
			Help: "Category draws generated, by tournament format.",
		}, []string{"format"}),
		MatchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_matches_created_total",
			Help: "Match records written by bracket generation.",
		}),
		GenerationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "padel_generation_failures_total",
			Help: "Bracket generation attempts that wrote nothing, by reason.",
		}, []string{"reason"}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "padel_generation_duration_seconds",
			Help:    "Duration of a GenerateBrackets call.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ResultsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "padel_results_submitted_total",
			Help: "Result submissions, by submitter role and outcome.",
		}, []string{"role", "outcome"}),
		ConflictsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_conflicts_resolved_total",
			Help: "Conflicts closed by an organizer.",
		}),
	}

	reg.MustRegister(
		s.BracketsGenerated,
		s.MatchesCreated,
		s.GenerationFailures,
		s.GenerationDuration,
		s.ResultsSubmitted,
		s.ConflictsResolved,
	)

	return s
}

func (s *Service) IncBracketsGenerated(format string) {
	s.BracketsGenerated.WithLabelValues(format).Inc()
}

func (s *Service) AddMatchesCreated(n int) {
	s.MatchesCreated.Add(float64(n))
}

func (s *Service) IncGenerationFailures(reason string) {
	s.GenerationFailures.WithLabelValues(reason).Inc()
}

func (s *Service) ObserveGenerationDuration(seconds float64) {
	s.GenerationDuration.Observe(seconds)
}

func (s *Service) IncResultsSubmitted(role, outcome string) {
	s.ResultsSubmitted.WithLabelValues(role, outcome).Inc()
}

func (s *Service) IncConflictsResolved() {
	s.ConflictsResolved.Inc()
}
