package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	bracketsGenerated   map[string]int
	matchesCreated      int
	generationFailures  map[string]int
	generationDurations []float64
	resultsSubmitted    map[string]int
	conflictsResolved   int
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		bracketsGenerated:  make(map[string]int),
		generationFailures: make(map[string]int),
		resultsSubmitted:   make(map[string]int),
	}
}

func (m *Mock) IncBracketsGenerated(format string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bracketsGenerated[format]++
}

func (m *Mock) AddMatchesCreated(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCreated += n
}

func (m *Mock) IncGenerationFailures(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generationFailures[reason]++
}

func (m *Mock) ObserveGenerationDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generationDurations = append(m.generationDurations, seconds)
}

func (m *Mock) IncResultsSubmitted(role, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsSubmitted[role+"/"+outcome]++
}

func (m *Mock) IncConflictsResolved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflictsResolved++
}

// BracketsGenerated returns the generation count for a format.
func (m *Mock) BracketsGenerated(format string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bracketsGenerated[format]
}

func (m *Mock) MatchesCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCreated
}

func (m *Mock) GenerationFailures(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generationFailures[reason]
}

// GenerationCalls returns how many durations were observed.
func (m *Mock) GenerationCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.generationDurations)
}

func (m *Mock) ResultsSubmitted(role, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsSubmitted[role+"/"+outcome]
}

func (m *Mock) ConflictsResolved() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conflictsResolved
}
