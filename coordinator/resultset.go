package coordinator

import "github.com/docsift/docsift/core/result"

// TargetResult is one document's slot in a multi-document result set.
type TargetResult struct {
	// Target is the document name.
	Target string

	// Outcome is the target's terminal pipeline outcome, or the failure
	// placeholder when the target could not be processed.
	Outcome result.Outcome
}

// Answer renders the outcome as user-facing text.
func (tr TargetResult) Answer() string { return tr.Outcome.Render() }

// ResultSet is the ordered collection of per-target results for one
// multi-document query. It is created fresh per query and not retained by
// the coordinator; callers that keep history own their copy.
type ResultSet struct {
	// RunID identifies the fan-out across log lines.
	RunID string

	// Query is the question that was asked.
	Query string

	results []TargetResult
}

// Results returns the per-target results in the original target order.
func (rs *ResultSet) Results() []TargetResult {
	results := make([]TargetResult, len(rs.results))
	copy(results, rs.results)
	return results
}

// Lookup returns the result for a target name.
func (rs *ResultSet) Lookup(target string) (TargetResult, bool) {
	for _, targetResult := range rs.results {
		if targetResult.Target == target {
			return targetResult, true
		}
	}
	return TargetResult{}, false
}

// AsMap renders the set as the target → answer mapping the application
// boundary expects. Iteration order is up to the caller; use [Results]
// when order matters.
func (rs *ResultSet) AsMap() map[string]string {
	answers := make(map[string]string, len(rs.results))
	for _, targetResult := range rs.results {
		answers[targetResult.Target] = targetResult.Answer()
	}
	return answers
}

// Len reports the number of targets in the set.
func (rs *ResultSet) Len() int { return len(rs.results) }
