package triage

import "strings"

// Outcome is the classifier's decision about a completion result.
type Outcome string

const (
	OutcomeResolve  Outcome = "resolve"
	OutcomeEscalate Outcome = "escalate"
	OutcomeError    Outcome = "error"
)

// Verdict carries the outcome and, for OutcomeResolve, the suggestion to show.
type Verdict struct {
	Outcome    Outcome
	Suggestion string
}

// Classify turns a completion result into a verdict. The sentinel may appear
// anywhere in the text, in any case, so an escalation wrapped in prose is
// still honored.
func Classify(text string, err error) Verdict {
	if err != nil {
		return Verdict{Outcome: OutcomeError}
	}
	if strings.Contains(strings.ToUpper(text), EscalationSentinel) {
		return Verdict{Outcome: OutcomeEscalate}
	}
	suggestion := strings.TrimSpace(text)
	if suggestion == "" {
		return Verdict{Outcome: OutcomeError}
	}
	return Verdict{Outcome: OutcomeResolve, Suggestion: suggestion}
}
