package observability

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/supportbox/internal/config"
)

func TestFingerprintIsStableAndShort(t *testing.T) {
	a := Fingerprint("impressora travada")
	b := Fingerprint("  impressora travada \n")
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, Fingerprint("impressora ligada"))
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/x", "GET", 200, time.Millisecond)
		m.RecordError("/x", "GET", "NOT_FOUND")
		m.RecordGatewayCall("success", time.Second)
		m.RecordVerdict("resolve")
		m.RecordResolution("DEFLECTED")
		m.RecordTicketCreated("hardware")
		m.SetActiveSessions(3)
	})
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordVerdict("escalate")
	m.RecordVerdict("escalate")
	m.RecordTicketCreated("network")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.verdicts.WithLabelValues("escalate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticketsCreated.WithLabelValues("network")))
}

func TestRequestLoggerRecordsRoutePattern(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/tickets/:protocol", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/tickets/REQ-1000", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/tickets/:protocol", "GET", "204")))
}

func TestDisabledTracerProvider(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{}, config.AppConfig{Name: "test"})
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(context.Background()))
}
