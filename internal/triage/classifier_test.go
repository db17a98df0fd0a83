package triage

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		err  error
		want Verdict
	}{
		{"plain suggestion", "  Reinicie o roteador.  ", nil, Verdict{Outcome: OutcomeResolve, Suggestion: "Reinicie o roteador."}},
		{"bare sentinel", "ESCALAR_HUMANO", nil, Verdict{Outcome: OutcomeEscalate}},
		{"embedded sentinel", "Aguarde, ESCALAR_HUMANO, contatando agente", nil, Verdict{Outcome: OutcomeEscalate}},
		{"lowercase sentinel", "ok. escalar_humano.", nil, Verdict{Outcome: OutcomeEscalate}},
		{"blank text", " \n\t", nil, Verdict{Outcome: OutcomeError}},
		{"failure", "ESCALAR_HUMANO", errors.New("boom"), Verdict{Outcome: OutcomeError}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.text, tc.err))
		})
	}
}

func TestClassifyEscalatesWheneverSentinelIsEmbedded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.String().Draw(t, "prefix")
		suffix := rapid.String().Draw(t, "suffix")
		got := Classify(prefix+EscalationSentinel+suffix, nil)
		if got.Outcome != OutcomeEscalate {
			t.Fatalf("expected escalate, got %s", got.Outcome)
		}
	})
}

func TestClassifyResolvesTextWithoutSentinel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-z0-9 .,]{1,80}`).Draw(t, "text")
		if strings.TrimSpace(text) == "" || strings.Contains(strings.ToUpper(text), EscalationSentinel) {
			t.Skip("not a suggestion")
		}
		got := Classify(text, nil)
		if got.Outcome != OutcomeResolve || got.Suggestion != strings.TrimSpace(text) {
			t.Fatalf("unexpected verdict %+v for %q", got, text)
		}
	})
}

func TestTriageInstructionCarriesSentinel(t *testing.T) {
	assert.Contains(t, TriageInstruction, EscalationSentinel)
	assert.NotContains(t, AssistantInstruction, EscalationSentinel)
}
