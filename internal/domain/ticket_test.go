package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	cases := map[string]TicketCategory{
		"hardware":  CategoryHardware,
		" Software": CategorySoftware,
		"acesso":    CategoryAccess,
		"ACCESS":    CategoryAccess,
		"rede":      CategoryNetwork,
		"network ":  CategoryNetwork,
	}
	for input, want := range cases {
		got, ok := ParseCategory(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}

	for _, input := range []string{"", "email", "printer"} {
		_, ok := ParseCategory(input)
		assert.False(t, ok, input)
	}
}

func TestParsePriority(t *testing.T) {
	p, ok := ParsePriority("urgent")
	assert.True(t, ok)
	assert.Equal(t, TicketPriorityUrgent, p)

	_, ok = ParsePriority("critical")
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	cases := map[string]TicketStatus{
		"OPEN":         TicketStatusOpen,
		"open":         TicketStatusOpen,
		" in_progress": TicketStatusInProgress,
		"in-progress":  TicketStatusInProgress,
		"Resolved":     TicketStatusResolved,
	}
	for input, want := range cases {
		got, ok := ParseStatus(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}

	_, ok := ParseStatus("closed")
	assert.False(t, ok)
}

func TestParseTicketType(t *testing.T) {
	got, ok := ParseTicketType("Incidente")
	assert.True(t, ok)
	assert.Equal(t, TicketTypeIncident, got)

	got, ok = ParseTicketType("requisição")
	assert.True(t, ok)
	assert.Equal(t, TicketTypeRequest, got)

	got, ok = ParseTicketType("REQUEST")
	assert.True(t, ok)
	assert.Equal(t, TicketTypeRequest, got)

	_, ok = ParseTicketType("problem")
	assert.False(t, ok)
}

func TestParseProtocolNumber(t *testing.T) {
	n, ok := ParseProtocolNumber("REQ-1042")
	assert.True(t, ok)
	assert.EqualValues(t, 1042, n)

	n, ok = ParseProtocolNumber(" req-7 ")
	assert.True(t, ok)
	assert.EqualValues(t, 7, n)

	for _, input := range []string{"", "REQ-", "REQ-abc", "TCK-10", "REQ--3"} {
		_, ok := ParseProtocolNumber(input)
		assert.False(t, ok, input)
	}
}
