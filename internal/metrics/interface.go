package metrics

// Metrics receives the counters emitted by the tournament services.
type Metrics interface {
	IncBracketsGenerated(format string)
	AddMatchesCreated(n int)
	IncGenerationFailures(reason string)
	ObserveGenerationDuration(seconds float64)
	IncResultsSubmitted(role, outcome string)
	IncConflictsResolved()
}

// Nop discards everything.
type Nop struct{}

var _ Metrics = Nop{}

func (Nop) IncBracketsGenerated(string) {}
func (Nop) AddMatchesCreated(int) {}
func (Nop) IncGenerationFailures(string) {}
func (Nop) ObserveGenerationDuration(float64) {}
func (Nop) IncResultsSubmitted(string, string) {}
func (Nop) IncConflictsResolved() {}
